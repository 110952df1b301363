package geom

// Segment is an ordered pair of positions with the originating node
// identifiers of both endpoints; it carries direction.
type Segment struct {
	A, B  Position
	NodeA NodeID
	NodeB NodeID
}

// UndirectedSegment is a segment canonicalized so its first endpoint is
// lexicographically <= its second endpoint under the (x, y) integer
// ordering. Equality and total order are defined on the canonical pair.
type UndirectedSegment struct {
	First, Second Position
}

// NewUndirectedSegment canonicalizes a directed segment into its
// undirected form.
func NewUndirectedSegment(a, b Position) UndirectedSegment {
	if b.Less(a) {
		return UndirectedSegment{First: b, Second: a}
	}
	return UndirectedSegment{First: a, Second: b}
}

// Equal reports whether two undirected segments are identical as
// undirected segments (i.e. represent an overlap).
func (s UndirectedSegment) Equal(o UndirectedSegment) bool {
	return s.First.Equal(o.First) && s.Second.Equal(o.Second)
}

// Less provides the total order used to sort the sweep's segment list:
// lexicographically by the canonical (first, second) integer endpoint
// pair.
func (s UndirectedSegment) Less(o UndirectedSegment) bool {
	if !s.First.Equal(o.First) {
		return s.First.Less(o.First)
	}
	return s.Second.Less(o.Second)
}

// OutsideXRange reports whether s1 starts strictly after s2 ends on x,
// i.e. sorted order guarantees no undirected segment at or after s1 can
// overlap s2 in x. Used to terminate the sweep's inner loop early.
func OutsideXRange(s1, s2 UndirectedSegment) bool {
	return s1.First.X > s2.Second.X
}

// YRangeOverlap reports whether the y-projections of two undirected
// segments overlap.
func YRangeOverlap(s1, s2 UndirectedSegment) bool {
	tmin, tmax := minMax(s1.First.Y, s1.Second.Y)
	omin, omax := minMax(s2.First.Y, s2.Second.Y)
	if tmin > omax || omin > tmax {
		return false
	}
	return true
}

func minMax(a, b int64) (min, max int64) {
	if a < b {
		return a, b
	}
	return b, a
}
