package gapcloser

import (
	"os"
	"testing"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/policy"
	"github.com/go-coastline/coastline/internal/ring"
	"github.com/go-coastline/coastline/internal/ringcollection"
)

func mustAdd(t *testing.T, c *ringcollection.Collection, w ring.Way) {
	t.Helper()
	if err := c.AddWay(w); err != nil {
		t.Fatalf("AddWay: %v", err)
	}
}

// openRing builds an open two-node way from (startX, startY) to
// (endX, endY). Callers place the two ends far apart so the way's
// self-close distance never competes with the small cross-ring distances
// these tests exercise.
func openRing(startID, endID geom.NodeID, startX, startY, endX, endY float64) ring.Way {
	return ring.Way{
		NodeIDs:   []geom.NodeID{startID, endID},
		Positions: []geom.Position{geom.NewPosition(startX, startY), geom.NewPosition(endX, endY)},
	}
}

func TestCloseRingsMergesWithinThreshold(t *testing.T) {
	c := ringcollection.New()
	mustAdd(t, c, openRing(1, 2, 0, 0, 1000, 1000))
	mustAdd(t, c, openRing(10, 11, 1001, 1001, 2001, 2001))

	report := CloseRings(c, 5)

	if len(report.FixedEndpoints) != 2 {
		t.Errorf("got %d fixed endpoints, want 2", len(report.FixedEndpoints))
	}
	if len(report.AddedLines) != 1 {
		t.Errorf("got %d added lines, want 1", len(report.AddedLines))
	}
	if len(c.Rings()) != 1 {
		t.Fatalf("got %d rings after close, want 1", len(c.Rings()))
	}
	if !c.Rings()[0].Fixed() {
		t.Error("merged ring should be marked fixed")
	}
}

func TestCloseRingsLeavesFarEndpointsOpen(t *testing.T) {
	c := ringcollection.New()
	mustAdd(t, c, openRing(1, 2, 0, 0, 1000, 1000))
	mustAdd(t, c, openRing(10, 11, 5000, 5000, 6000, 6000))

	report := CloseRings(c, 0.5)

	if len(report.FixedEndpoints) != 0 {
		t.Errorf("got %d fixed endpoints, want 0 (distance exceeds threshold)", len(report.FixedEndpoints))
	}
	if len(c.Rings()) != 2 {
		t.Errorf("got %d rings, want 2 (no merge should occur)", len(c.Rings()))
	}
}

func TestCloseRingsPrefersShortestConnectionFirst(t *testing.T) {
	c := ringcollection.New()
	// A ring's own endpoints are placed far apart so the self-close
	// candidate never competes with the intended cross-ring merges below.
	mustAdd(t, c, ring.Way{
		NodeIDs:   []geom.NodeID{1, 2},
		Positions: []geom.Position{geom.NewPosition(0, 0), geom.NewPosition(50, 50)},
	})
	mustAdd(t, c, ring.Way{
		NodeIDs:   []geom.NodeID{10, 11},
		Positions: []geom.Position{geom.NewPosition(51, 51), geom.NewPosition(90, 90)},
	})
	mustAdd(t, c, ring.Way{
		NodeIDs:   []geom.NodeID{20, 21},
		Positions: []geom.Position{geom.NewPosition(65, 65), geom.NewPosition(91, 91)},
	})

	report := CloseRings(c, 100)

	// Node 2's end (50,50) is closest to node 10's start (51,51), distance
	// ~1.41, versus node 20's start (65,65), distance ~21.2. The closer
	// candidate should win, invalidating the other one sharing endpoint 2.
	foundShort := false
	for _, fe := range report.FixedEndpoints {
		if fe.NodeID == 10 {
			foundShort = true
		}
	}
	if !foundShort {
		t.Error("expected the shortest candidate (node 2 -> node 10) to be the one applied")
	}
}

// policyTestRings builds two open rings whose own endpoints are far enough
// apart (~14 and ~1399 units) that neither ring's self-close candidate is
// ever shorter than the ~1.41-unit gap between them, so the first merge
// in these tests can only be the cross-ring connection under test. The
// merged ring's own ends (node 11 at (1000,1000), node 1 at (0,0)) are
// ~1414 units apart and form a second candidate whenever the threshold
// exceeds that.
func policyTestRings(t *testing.T, c *ringcollection.Collection) {
	t.Helper()
	mustAdd(t, c, openRing(1, 2, 0, 0, 10, 10))
	mustAdd(t, c, openRing(10, 11, 11, 11, 1000, 1000))
}

func TestCloseRingsWithPolicyUsesScriptOverride(t *testing.T) {
	script := writeGapScript(t, `
function gap_distance(lat, lon)
  return 2000
end
`)
	pol, err := policy.Load(script)
	if err != nil {
		t.Fatalf("policy.Load: %v", err)
	}
	defer pol.Close()

	c := ringcollection.New()
	policyTestRings(t, c)

	report, err := CloseRingsWithPolicy(c, 0.5, pol)
	if err != nil {
		t.Fatalf("CloseRingsWithPolicy: %v", err)
	}
	// The 2000 override admits the ~1.41 cross-ring gap (merged first) and
	// then the merged ring's own ~1414 gap, which closes it: two merges,
	// two fixed endpoints each.
	if len(report.FixedEndpoints) != 4 {
		t.Errorf("got %d fixed endpoints, want 4 (policy override should widen the threshold enough to merge these rings and close the result)", len(report.FixedEndpoints))
	}
	if len(c.Rings()) != 1 {
		t.Errorf("got %d rings, want 1 after the policy-widened merge", len(c.Rings()))
	}
}

func TestCloseRingsWithPolicyFallsBackWithoutHook(t *testing.T) {
	script := writeGapScript(t, `-- no gap_distance defined`)
	pol, err := policy.Load(script)
	if err != nil {
		t.Fatalf("policy.Load: %v", err)
	}
	defer pol.Close()

	c := ringcollection.New()
	policyTestRings(t, c)

	report, err := CloseRingsWithPolicy(c, 0.5, pol)
	if err != nil {
		t.Fatalf("CloseRingsWithPolicy: %v", err)
	}
	if len(report.FixedEndpoints) != 0 {
		t.Error("without a gap_distance hook the default threshold should apply, leaving these rings open")
	}
}

func writeGapScript(t *testing.T, body string) string {
	t.Helper()
	path := t.TempDir() + "/policy.lua"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}
