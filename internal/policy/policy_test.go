package policy

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, body string) string {
	path := filepath.Join(t.TempDir(), "policy.lua")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestGapDistanceUsesScriptOverride(t *testing.T) {
	path := writeScript(t, `
function gap_distance(lat, lon)
  if lat > 60 then
    return 0.01
  end
  return 0.001
end
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Close()

	if !p.HasGapDistance() {
		t.Fatal("expected gap_distance to be defined")
	}

	got, err := p.GapDistance(70, 10, 0.001)
	if err != nil {
		t.Fatalf("GapDistance: %v", err)
	}
	if math.Abs(got-0.01) > 1e-9 {
		t.Errorf("GapDistance(70,10) = %v, want 0.01", got)
	}

	got, err = p.GapDistance(10, 10, 0.001)
	if err != nil {
		t.Fatalf("GapDistance: %v", err)
	}
	if math.Abs(got-0.001) > 1e-9 {
		t.Errorf("GapDistance(10,10) = %v, want 0.001", got)
	}
}

func TestGapDistanceFallsBackWithoutFunction(t *testing.T) {
	path := writeScript(t, `-- no gap_distance defined`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer p.Close()

	if p.HasGapDistance() {
		t.Fatal("expected no gap_distance function")
	}

	got, err := p.GapDistance(1, 2, 0.005)
	if err != nil {
		t.Fatalf("GapDistance: %v", err)
	}
	if got != 0.005 {
		t.Errorf("GapDistance fallback = %v, want 0.005", got)
	}
}
