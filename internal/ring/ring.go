// Package ring implements CoastlineRing, the central entity of the
// coastline engine: an ordered chain of node ids that grows by
// concatenation as ways are stitched together, and that exports itself
// as geometry once closed.
package ring

import (
	"fmt"
	"strings"

	"github.com/go-coastline/coastline/internal/geom"
)

// Way is the minimal shape the ring package needs from an input way:
// an ordered node id chain with parallel resolved positions. It mirrors
// the contract spec.md §6 places on the external reader.
type Way struct {
	NodeIDs   []geom.NodeID
	Positions []geom.Position
}

// FirstNodeID returns the way's first node id.
func (w Way) FirstNodeID() geom.NodeID { return w.NodeIDs[0] }

// LastNodeID returns the way's last node id.
func (w Way) LastNodeID() geom.NodeID { return w.NodeIDs[len(w.NodeIDs)-1] }

// CoastlineRing is a maximal concatenation of ways whose interior
// endpoints match. See spec.md §3 for the invariants this type upholds.
type CoastlineRing struct {
	nodeIDs   []geom.NodeID
	positions []geom.Position
	wayCount  int
	fixed     bool
	outer     bool
	ringID    geom.NodeID
}

// FromWay constructs a new ring from a single way's node-id chain.
func FromWay(w Way) *CoastlineRing {
	r := &CoastlineRing{
		nodeIDs:   append([]geom.NodeID(nil), w.NodeIDs...),
		positions: append([]geom.Position(nil), w.Positions...),
		wayCount:  1,
	}
	r.ringID = minNodeID(r.nodeIDs)
	return r
}

func minNodeID(ids []geom.NodeID) geom.NodeID {
	m := ids[0]
	for _, id := range ids[1:] {
		if id < m {
			m = id
		}
	}
	return m
}

// Append requires w's first node id to equal this ring's current last
// node id, and appends w's remaining node ids to the chain.
func (r *CoastlineRing) Append(w Way) error {
	if w.FirstNodeID() != r.LastNodeID() {
		return fmt.Errorf("ring: append: way first node %d does not match ring last node %d", w.FirstNodeID(), r.LastNodeID())
	}
	r.nodeIDs = append(r.nodeIDs, w.NodeIDs[1:]...)
	r.positions = append(r.positions, w.Positions[1:]...)
	r.wayCount++
	r.lowerRingID(w.NodeIDs)
	return nil
}

// Prepend requires w's last node id to equal this ring's current first
// node id, and prepends w's node ids (minus its own last, which is
// already this ring's first) to the chain.
func (r *CoastlineRing) Prepend(w Way) error {
	if w.LastNodeID() != r.FirstNodeID() {
		return fmt.Errorf("ring: prepend: way last node %d does not match ring first node %d", w.LastNodeID(), r.FirstNodeID())
	}
	head := w.NodeIDs[:len(w.NodeIDs)-1]
	headPos := w.Positions[:len(w.Positions)-1]
	r.nodeIDs = append(append([]geom.NodeID(nil), head...), r.nodeIDs...)
	r.positions = append(append([]geom.Position(nil), headPos...), r.positions...)
	r.wayCount++
	r.lowerRingID(w.NodeIDs)
	return nil
}

// Join concatenates other onto this ring. other's first node id must
// equal this ring's last node id, or other's last node id must equal
// this ring's first node id; the compatible direction is chosen. other
// is invalid after this call.
func (r *CoastlineRing) Join(other *CoastlineRing) error {
	switch {
	case other.FirstNodeID() == r.LastNodeID():
		r.nodeIDs = append(r.nodeIDs, other.nodeIDs[1:]...)
		r.positions = append(r.positions, other.positions[1:]...)
	case other.LastNodeID() == r.FirstNodeID():
		head := other.nodeIDs[:len(other.nodeIDs)-1]
		headPos := other.positions[:len(other.positions)-1]
		r.nodeIDs = append(append([]geom.NodeID(nil), head...), r.nodeIDs...)
		r.positions = append(append([]geom.Position(nil), headPos...), r.positions...)
	default:
		return fmt.Errorf("ring: join: endpoints do not match (ring %v/%v, other %v/%v)",
			r.FirstNodeID(), r.LastNodeID(), other.FirstNodeID(), other.LastNodeID())
	}
	r.wayCount += other.wayCount
	r.lowerRingID(other.nodeIDs)
	r.fixed = r.fixed || other.fixed
	other.invalidate()
	return nil
}

// CloseRing appends a node id equal to the first node id to make the
// ring formally closed. Sets fixed.
func (r *CoastlineRing) CloseRing() {
	r.nodeIDs = append(r.nodeIDs, r.nodeIDs[0])
	if len(r.positions) > 0 {
		r.positions = append(r.positions, r.positions[0])
	}
	r.fixed = true
}

// JoinOverGap concatenates other after this ring without requiring
// endpoint equality, for use by the gap closer. Sets fixed.
func (r *CoastlineRing) JoinOverGap(other *CoastlineRing) {
	r.nodeIDs = append(r.nodeIDs, other.nodeIDs...)
	r.positions = append(r.positions, other.positions...)
	r.wayCount += other.wayCount
	r.lowerRingID(other.nodeIDs)
	r.fixed = true
	other.invalidate()
}

// FakeClose marks a ring closed that became closed because a gap-close
// merged two rings whose opposite endpoints happened to already
// coincide. Idempotent with CloseRing/JoinOverGap's fixed flag.
func (r *CoastlineRing) FakeClose() {
	r.fixed = true
}

func (r *CoastlineRing) lowerRingID(ids []geom.NodeID) {
	m := minNodeID(ids)
	if m < r.ringID {
		r.ringID = m
	}
}

func (r *CoastlineRing) invalidate() {
	r.nodeIDs = nil
	r.positions = nil
}

// IsClosed reports whether the first and last node ids coincide. A
// single-node chain is trivially closed (npoints() == 1 in the
// original), which is how a degenerate single-point "ring" is
// represented.
func (r *CoastlineRing) IsClosed() bool {
	if len(r.nodeIDs) == 0 {
		return false
	}
	return r.nodeIDs[0] == r.nodeIDs[len(r.nodeIDs)-1]
}

// Length returns the chain length in nodes.
func (r *CoastlineRing) Length() int { return len(r.nodeIDs) }

// WayCount returns how many original ways contributed to this ring.
func (r *CoastlineRing) WayCount() int { return r.wayCount }

// RingID returns the smallest node id ever seen in this ring.
func (r *CoastlineRing) RingID() geom.NodeID { return r.ringID }

// Fixed reports whether the ring was closed by the gap closer rather
// than naturally.
func (r *CoastlineRing) Fixed() bool { return r.fixed }

// Outer reports whether the ring has been classified as an outer (land)
// boundary by the external polygon classifier.
func (r *CoastlineRing) Outer() bool { return r.outer }

// SetOuter marks the ring as an outer ring.
func (r *CoastlineRing) SetOuter() { r.outer = true }

// FirstNodeID returns the ring's current first node id.
func (r *CoastlineRing) FirstNodeID() geom.NodeID { return r.nodeIDs[0] }

// LastNodeID returns the ring's current last node id.
func (r *CoastlineRing) LastNodeID() geom.NodeID { return r.nodeIDs[len(r.nodeIDs)-1] }

// FirstPosition returns the position of the ring's first node.
func (r *CoastlineRing) FirstPosition() geom.Position { return r.positions[0] }

// LastPosition returns the position of the ring's last node.
func (r *CoastlineRing) LastPosition() geom.Position { return r.positions[len(r.positions)-1] }

// NodeIDs returns the ring's node id chain. The returned slice must not
// be mutated by the caller.
func (r *CoastlineRing) NodeIDs() []geom.NodeID { return r.nodeIDs }

// Positions returns the ring's position chain, parallel to NodeIDs. The
// returned slice must not be mutated by the caller.
func (r *CoastlineRing) Positions() []geom.Position { return r.positions }

// AppendSegmentsTo emits one undirected segment for each consecutive
// pair of positions in the chain.
func (r *CoastlineRing) AppendSegmentsTo(segs []geom.UndirectedSegment) []geom.UndirectedSegment {
	for i := 0; i+1 < len(r.positions); i++ {
		segs = append(segs, geom.NewUndirectedSegment(r.positions[i], r.positions[i+1]))
	}
	return segs
}

// ToPolygon renders the ring as a WKT POLYGON, preserving chain order
// exactly. The caller is responsible for ensuring the ring is closed.
func (r *CoastlineRing) ToPolygon() string {
	var b strings.Builder
	b.WriteString("POLYGON((")
	writeCoords(&b, r.positions)
	b.WriteString("))")
	return b.String()
}

// ToLineString renders the ring as a WKT LINESTRING.
func (r *CoastlineRing) ToLineString() string {
	var b strings.Builder
	b.WriteString("LINESTRING(")
	writeCoords(&b, r.positions)
	b.WriteString(")")
	return b.String()
}

// PointSelector chooses which end of a ring ToPoint renders.
type PointSelector int

const (
	First PointSelector = iota
	Last
)

// ToPoint renders one end of the ring as a WKT POINT.
func (r *CoastlineRing) ToPoint(which PointSelector) string {
	p := r.positions[0]
	if which == Last {
		p = r.positions[len(r.positions)-1]
	}
	return fmt.Sprintf("POINT(%g %g)", p.Lon, p.Lat)
}

// IsClockwise reports whether the ring's exterior winds clockwise
// (the land-vs-water convention output_layers.cpp uses), via the
// shoelace sign. Assumes the ring is closed.
func (r *CoastlineRing) IsClockwise() bool {
	var sum float64
	for i := 0; i+1 < len(r.positions); i++ {
		a, b := r.positions[i], r.positions[i+1]
		sum += (b.Lon - a.Lon) * (b.Lat + a.Lat)
	}
	return sum > 0
}

func writeCoords(b *strings.Builder, positions []geom.Position) {
	for i, p := range positions {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(FormatXY(p))
	}
}

// FormatXY renders a position as the "lon lat" pair WKT coordinate
// lists use.
func FormatXY(p geom.Position) string {
	return fmt.Sprintf("%g %g", p.Lon, p.Lat)
}
