package ring

import (
	"testing"

	"github.com/go-coastline/coastline/internal/geom"
)

func wayOf(ids ...geom.NodeID) Way {
	positions := make([]geom.Position, len(ids))
	for i, id := range ids {
		positions[i] = geom.NewPosition(float64(id), float64(id))
	}
	return Way{NodeIDs: ids, Positions: positions}
}

func TestFromWaySetsRingIDToMinNode(t *testing.T) {
	r := FromWay(wayOf(5, 2, 9))
	if r.RingID() != 2 {
		t.Errorf("RingID = %d, want 2", r.RingID())
	}
	if r.WayCount() != 1 {
		t.Errorf("WayCount = %d, want 1", r.WayCount())
	}
}

func TestAppendExtendsChainAndRejectsMismatch(t *testing.T) {
	r := FromWay(wayOf(1, 2, 3))
	if err := r.Append(wayOf(3, 4, 5)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := []geom.NodeID{1, 2, 3, 4, 5}
	if !equalIDs(r.NodeIDs(), want) {
		t.Errorf("NodeIDs = %v, want %v", r.NodeIDs(), want)
	}
	if r.WayCount() != 2 {
		t.Errorf("WayCount = %d, want 2", r.WayCount())
	}

	if err := r.Append(wayOf(9, 10)); err == nil {
		t.Error("Append with mismatched first node should error")
	}
}

func TestPrependExtendsChainFromHead(t *testing.T) {
	r := FromWay(wayOf(3, 4, 5))
	if err := r.Prepend(wayOf(1, 2, 3)); err != nil {
		t.Fatalf("Prepend: %v", err)
	}
	want := []geom.NodeID{1, 2, 3, 4, 5}
	if !equalIDs(r.NodeIDs(), want) {
		t.Errorf("NodeIDs = %v, want %v", r.NodeIDs(), want)
	}
}

func TestJoinPicksCompatibleDirectionAndInvalidatesOther(t *testing.T) {
	r := FromWay(wayOf(1, 2, 3))
	other := FromWay(wayOf(3, 4, 5))

	if err := r.Join(other); err != nil {
		t.Fatalf("Join: %v", err)
	}
	want := []geom.NodeID{1, 2, 3, 4, 5}
	if !equalIDs(r.NodeIDs(), want) {
		t.Errorf("NodeIDs = %v, want %v", r.NodeIDs(), want)
	}
	if other.NodeIDs() != nil {
		t.Error("other should be invalidated after Join")
	}
}

func TestJoinRejectsIncompatibleEndpoints(t *testing.T) {
	r := FromWay(wayOf(1, 2, 3))
	other := FromWay(wayOf(40, 41, 42))
	if err := r.Join(other); err == nil {
		t.Error("Join with disjoint endpoints should error")
	}
}

func TestCloseRingMarksFixedAndClosesChain(t *testing.T) {
	r := FromWay(wayOf(1, 2, 3))
	if r.IsClosed() {
		t.Fatal("ring should not start closed")
	}
	r.CloseRing()
	if !r.IsClosed() {
		t.Error("CloseRing should close the ring")
	}
	if !r.Fixed() {
		t.Error("CloseRing should mark the ring fixed")
	}
	if r.Length() != 4 {
		t.Errorf("Length = %d, want 4 (original 3 + repeated first)", r.Length())
	}
}

func TestSingleNodeRingIsTriviallyClosed(t *testing.T) {
	r := FromWay(wayOf(1))
	if !r.IsClosed() {
		t.Error("a single-node ring should be trivially closed")
	}
}

func equalIDs(a, b []geom.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
