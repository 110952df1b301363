package ringcollection

import (
	"testing"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/ring"
)

func wayOf(ids ...geom.NodeID) ring.Way {
	positions := make([]geom.Position, len(ids))
	for i, id := range ids {
		positions[i] = geom.NewPosition(float64(id), float64(id))
	}
	return ring.Way{NodeIDs: ids, Positions: positions}
}

func TestAddWayCase1CreatesNewOpenRing(t *testing.T) {
	c := New()
	if err := c.AddWay(wayOf(1, 2, 3)); err != nil {
		t.Fatalf("AddWay: %v", err)
	}
	rings := c.Rings()
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if rings[0].IsClosed() {
		t.Error("a fresh 1-2-3 way should not be closed")
	}
	if len(c.OpenEnds()) != 1 || len(c.OpenStarts()) != 1 {
		t.Errorf("expected one open end and one open start, got %d/%d", len(c.OpenEnds()), len(c.OpenStarts()))
	}
}

func TestAddWaySelfClosingWayIsNeverIndexed(t *testing.T) {
	c := New()
	if err := c.AddWay(wayOf(1, 2, 3, 1)); err != nil {
		t.Fatalf("AddWay: %v", err)
	}
	if len(c.OpenEnds()) != 0 || len(c.OpenStarts()) != 0 {
		t.Error("a self-closing way should leave no open endpoint entries")
	}
	if c.RingsFromSingleWay() != 1 {
		t.Errorf("RingsFromSingleWay = %d, want 1", c.RingsFromSingleWay())
	}
}

func TestAddWayCase2AppendsToOpenEnd(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(1, 2, 3))
	mustAdd(t, c, wayOf(3, 4, 5))

	rings := c.Rings()
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if rings[0].Length() != 5 {
		t.Errorf("Length = %d, want 5", rings[0].Length())
	}
}

func TestAddWayCase3PrependsToOpenStart(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(3, 4, 5))
	mustAdd(t, c, wayOf(1, 2, 3))

	rings := c.Rings()
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if rings[0].Length() != 5 {
		t.Errorf("Length = %d, want 5", rings[0].Length())
	}
}

// The second way prepends onto the first ring, so the third way finds the
// same ring at both of its ends (case 4 with prev == next) and closes it.
func TestAddWayCase4ClosesRingWhenBothEndsHitSameRing(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(1, 2, 3))
	mustAdd(t, c, wayOf(5, 6, 1))
	mustAdd(t, c, wayOf(3, 4, 5))

	rings := c.Rings()
	if len(rings) != 1 {
		t.Fatalf("got %d rings, want 1", len(rings))
	}
	if !rings[0].IsClosed() {
		t.Error("joining all three ways should produce a closed ring")
	}
	if len(c.OpenEnds()) != 0 || len(c.OpenStarts()) != 0 {
		t.Error("a fully closed ring should leave no open endpoints indexed")
	}
}

func TestMergeAtGapReportsInvalidatedCandidate(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(1, 2))
	mustAdd(t, c, wayOf(10, 11))

	_, ok := c.MergeAtGap(999, 10)
	if ok {
		t.Error("MergeAtGap should fail when the end id is not registered")
	}
}

func TestMergeAtGapJoinsCrossRingsAndMarksFixed(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(1, 2))
	mustAdd(t, c, wayOf(10, 11))

	outcome, ok := c.MergeAtGap(2, 10)
	if !ok {
		t.Fatal("MergeAtGap should succeed for two distinct open rings")
	}
	if outcome.SelfClose {
		t.Error("merging two distinct rings should not report SelfClose")
	}

	rings := c.Rings()
	if len(rings) != 1 {
		t.Fatalf("got %d rings after merge, want 1", len(rings))
	}
	if !rings[0].Fixed() {
		t.Error("a gap-closed ring should be marked fixed")
	}
}

func TestMergeAtGapSelfCloseSameRing(t *testing.T) {
	c := New()
	mustAdd(t, c, wayOf(1, 2, 3))

	outcome, ok := c.MergeAtGap(3, 1)
	if !ok {
		t.Fatal("MergeAtGap should succeed closing a ring onto itself")
	}
	if !outcome.SelfClose {
		t.Error("merging a ring's own end to its own start should report SelfClose")
	}
	if !c.Rings()[0].IsClosed() {
		t.Error("ring should be closed after self-merge")
	}
}

func mustAdd(t *testing.T, c *Collection, w ring.Way) {
	t.Helper()
	if err := c.AddWay(w); err != nil {
		t.Fatalf("AddWay: %v", err)
	}
}
