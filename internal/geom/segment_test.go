package geom

import "testing"

func TestNewUndirectedSegmentCanonicalizes(t *testing.T) {
	a := NewPosition(2, 2)
	b := NewPosition(1, 1)

	ab := NewUndirectedSegment(a, b)
	ba := NewUndirectedSegment(b, a)

	if !ab.Equal(ba) {
		t.Errorf("segment built from either direction should canonicalize to the same undirected segment")
	}
	if !ab.First.Equal(b) || !ab.Second.Equal(a) {
		t.Errorf("First/Second not canonicalized to lexicographic order: got %+v", ab)
	}
}

func TestOutsideXRange(t *testing.T) {
	s1 := NewUndirectedSegment(NewPosition(10, 0), NewPosition(11, 0))
	s2 := NewUndirectedSegment(NewPosition(0, 0), NewPosition(5, 0))

	if !OutsideXRange(s1, s2) {
		t.Error("s1 starts after s2 ends on x; should be outside range")
	}
	if OutsideXRange(s2, s1) {
		t.Error("s2 starts before s1 ends; should not be outside range")
	}
}

func TestYRangeOverlap(t *testing.T) {
	s1 := NewUndirectedSegment(NewPosition(0, 0), NewPosition(0, 5))
	s2 := NewUndirectedSegment(NewPosition(1, 3), NewPosition(1, 8))
	s3 := NewUndirectedSegment(NewPosition(2, 10), NewPosition(2, 20))

	if !YRangeOverlap(s1, s2) {
		t.Error("s1 [0,5] and s2 [3,8] overlap in y")
	}
	if YRangeOverlap(s1, s3) {
		t.Error("s1 [0,5] and s3 [10,20] do not overlap in y")
	}
}
