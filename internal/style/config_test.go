package style

import "testing"

func TestDefaultConfigMatchesNaturalCoastline(t *testing.T) {
	f := DefaultConfig().CoastlineFilter()

	if !f.Match(map[string]string{"natural": "coastline"}) {
		t.Error("expected natural=coastline to match the default filter")
	}
	if f.Match(map[string]string{"natural": "water"}) {
		t.Error("expected natural=water not to match the default filter")
	}
	if f.Match(map[string]string{"highway": "primary"}) {
		t.Error("expected an unrelated tag set not to match the default filter")
	}
}

func TestCoastlineFilterFallsBackWhenUnset(t *testing.T) {
	cfg := &Config{}
	f := cfg.CoastlineFilter()
	if !f.Match(map[string]string{"natural": "coastline"}) {
		t.Error("expected fallback filter to still match natural=coastline")
	}
}

func TestCoastlineFilterRequireAny(t *testing.T) {
	cfg := &Config{
		Coastline: &FilterConfig{
			RequireAny: []string{"natural"},
			Exclude:    map[string][]string{"natural": {"water"}},
		},
	}
	f := cfg.CoastlineFilter()

	if !f.Match(map[string]string{"natural": "coastline"}) {
		t.Error("expected natural=coastline to pass require_any+exclude")
	}
	if f.Match(map[string]string{"natural": "water"}) {
		t.Error("expected natural=water to be excluded")
	}
	if f.Match(map[string]string{"highway": "primary"}) {
		t.Error("expected a way without any natural tag to fail require_any")
	}
}
