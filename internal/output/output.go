// Package output implements the output driver of spec.md §4.F: turning
// the ring collection's final state (plus the sweep's and gap closer's
// reports) into the ring/error_point/error_line feature set described
// in spec.md §6, grounded on output_layers.cpp's LayerRings/
// LayerErrorPoints/LayerErrorLines.
package output

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/go-coastline/coastline/internal/gapcloser"
	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/geomvalidate"
	"github.com/go-coastline/coastline/internal/ring"
	"github.com/go-coastline/coastline/internal/ringcollection"
	"github.com/go-coastline/coastline/internal/sweep"
)

// Error reason strings, matching the vocabulary of spec.md §6.
const (
	ReasonSinglePointInRing = "single_point_in_ring"
	ReasonNotARing          = "not_a_ring"
	ReasonEndPoint          = "end_point"
	ReasonIntersection      = "intersection"
	ReasonFixedEndPoint     = "fixed_end_point"
	ReasonDoubleNode        = "double_node"
	ReasonSelfIntersection  = "self_intersection"
	ReasonNotClosed         = "not_closed"
	ReasonOverlap           = "overlap"
	ReasonAddedLine         = "added_line"
	ReasonQuestionable      = "questionable"
)

// RingFeature is one emitted "ring" polygon feature.
type RingFeature struct {
	RingID    geom.NodeID
	WKT       string
	Positions []geom.Position
	NWays     int
	NPoints   int
	Fixed     bool
	Land      bool
	Valid     bool
}

// ErrorPoint is one emitted "error_point" feature.
type ErrorPoint struct {
	Position geom.Position
	OSMID    geom.NodeID
	Reason   string
}

// ErrorLine is one emitted "error_line" feature.
type ErrorLine struct {
	WKT       string
	Positions []geom.Position
	OSMID     geom.NodeID
	Reason    string
}

// Stats counts everything the driver emitted, plus the warning total
// spec.md §6 requires alongside the collection's own counters.
type Stats struct {
	RingsEmitted    int
	ErrorPoints     int
	ErrorLines      int
	Warnings        int
	InvalidPolygons int
	RepairedPolygons int
}

// Result is everything the output driver produced, ready for a sink to
// persist.
type Result struct {
	Rings       []RingFeature
	ErrorPoints []ErrorPoint
	ErrorLines  []ErrorLine
	Stats       Stats
}

// EmitRings implements spec.md §4.F's emit_rings: for every ring in the
// collection, emit either a polygon feature or the appropriate
// degenerate/unclosed error features.
func EmitRings(rings []*ring.CoastlineRing) *Result {
	res := &Result{}
	for _, r := range rings {
		switch {
		case r.IsClosed() && r.Length() >= 4:
			res.Rings = append(res.Rings, RingFeature{
				RingID:    r.RingID(),
				WKT:       r.ToPolygon(),
				Positions: r.Positions(),
				NWays:     r.WayCount(),
				NPoints:   r.Length(),
				Fixed:     r.Fixed(),
				Land:      r.IsClockwise(),
				Valid:     true, // placeholder; ApplyValidity overwrites this with EmitPolygonsForClassifier's verdict
			})
			res.Stats.RingsEmitted++

		case r.IsClosed():
			// Degenerate closed ring: length 1, 2, or 3.
			if r.Length() == 1 {
				res.ErrorPoints = append(res.ErrorPoints, ErrorPoint{
					Position: r.FirstPosition(),
					OSMID:    r.RingID(),
					Reason:   ReasonSinglePointInRing,
				})
			} else {
				res.ErrorLines = append(res.ErrorLines, ErrorLine{
					WKT:       r.ToLineString(),
					Positions: r.Positions(),
					OSMID:     r.RingID(),
					Reason:    ReasonNotARing,
				})
				res.ErrorPoints = append(res.ErrorPoints,
					ErrorPoint{Position: r.FirstPosition(), OSMID: r.FirstNodeID(), Reason: ReasonEndPoint},
					ErrorPoint{Position: r.LastPosition(), OSMID: r.LastNodeID(), Reason: ReasonEndPoint},
				)
			}
			res.Stats.Warnings++

		default:
			// Still open: never properly closed nor gap-repaired.
			res.ErrorLines = append(res.ErrorLines, ErrorLine{
				WKT:       r.ToLineString(),
				Positions: r.Positions(),
				OSMID:     r.RingID(),
				Reason:    ReasonNotClosed,
			})
			res.ErrorPoints = append(res.ErrorPoints,
				ErrorPoint{Position: r.FirstPosition(), OSMID: r.FirstNodeID(), Reason: ReasonEndPoint},
				ErrorPoint{Position: r.LastPosition(), OSMID: r.LastNodeID(), Reason: ReasonEndPoint},
			)
			res.Stats.Warnings++
		}
	}
	return res
}

// EmitPolygonsForClassifier implements spec.md §4.F's
// emit_polygons_for_classifier: build the candidate polygon list handed
// to the external classifier, validating (and attempting to repair)
// each one first. On a dropped polygon it both appends the error point
// spec.md §6 requires and logs one diagnostic naming the ring id and
// reason, the way output_layers.cpp's LayerRings::add logs to std::cerr
// before discarding. The returned validity map (keyed by ring_id) covers
// every ring EmitRings would also have turned into a RingFeature (closed,
// length >= 4); ApplyValidity reconciles it onto that feature set so the
// sink's "valid" column reflects this pass's verdict instead of the
// EmitRings placeholder.
func EmitPolygonsForClassifier(log *zap.Logger, rings []*ring.CoastlineRing) ([]*ring.CoastlineRing, []ErrorPoint, Stats, map[geom.NodeID]bool) {
	var candidates []*ring.CoastlineRing
	var errPoints []ErrorPoint
	var stats Stats
	validity := make(map[geom.NodeID]bool)

	for _, r := range rings {
		if !r.IsClosed() || r.Length() < 4 {
			continue
		}

		valid, reason, flaw := geomvalidate.Validate(r)
		if valid {
			candidates = append(candidates, r)
			validity[r.RingID()] = true
			continue
		}

		stats.InvalidPolygons++
		if _, ok := geomvalidate.Repair(r); ok {
			stats.RepairedPolygons++
			candidates = append(candidates, r)
			validity[r.RingID()] = true
			continue
		}

		validity[r.RingID()] = false
		log.Error("ignoring invalid polygon geometry",
			zap.Int64("ring_id", int64(r.RingID())),
			zap.Error(fmt.Errorf("%s", reason)),
		)

		errPoints = append(errPoints, ErrorPoint{
			Position: flaw,
			OSMID:    r.RingID(),
			Reason:   reason,
		})
	}

	return candidates, errPoints, stats, validity
}

// ApplyValidity overwrites each ring feature's Valid field with the
// classifier's verdict from EmitPolygonsForClassifier's validity map,
// leaving the EmitRings placeholder in place for any ring the map
// doesn't cover (there should be none, since both walk the same
// closed-and-length>=4 predicate).
func ApplyValidity(res *Result, validity map[geom.NodeID]bool) {
	for i := range res.Rings {
		if v, ok := validity[res.Rings[i].RingID]; ok {
			res.Rings[i].Valid = v
		}
	}
}

// EmitQuestionable implements spec.md §4.F's emit_questionable: after
// the external classifier has tagged outer rings (via
// ring.CoastlineRing.SetOuter), every inner ring of plausible "real
// gap" size (4..999 nodes) is reported as questionable; larger inner
// rings are assumed to be lakes and exempted.
func EmitQuestionable(rings []*ring.CoastlineRing) []ErrorLine {
	var lines []ErrorLine
	for _, r := range rings {
		if r.Outer() {
			continue
		}
		if r.Length() < 4 || r.Length() >= 1000 {
			continue
		}
		lines = append(lines, ErrorLine{
			WKT:       r.ToLineString(),
			Positions: r.Positions(),
			OSMID:     r.RingID(),
			Reason:    ReasonQuestionable,
		})
	}
	return lines
}

// EmitSweepResult turns a sweep.Result into error_point/error_line
// features: one error line per overlap segment, one error point per
// crossing.
func EmitSweepResult(res sweep.Result) ([]ErrorLine, []ErrorPoint) {
	var lines []ErrorLine
	for _, o := range res.Overlaps {
		positions := []geom.Position{o.Segment.First, o.Segment.Second}
		lines = append(lines, ErrorLine{
			WKT:       segmentWKT(positions),
			Positions: positions,
			Reason:    ReasonOverlap,
		})
	}
	var points []ErrorPoint
	for _, x := range res.Crossings {
		points = append(points, ErrorPoint{Position: x.Point, Reason: ReasonIntersection})
	}
	return lines, points
}

func segmentWKT(positions []geom.Position) string {
	return "LINESTRING(" + ring.FormatXY(positions[0]) + "," + ring.FormatXY(positions[1]) + ")"
}

// EmitGapCloserReport turns a gapcloser.Report into error_point/
// error_line features: "fixed_end_point" for every fixed endpoint,
// "added_line" for every inserted connecting segment, and
// "double_node" for every coincident-endpoint repair.
func EmitGapCloserReport(report gapcloser.Report) ([]ErrorPoint, []ErrorLine) {
	var points []ErrorPoint
	for _, fe := range report.FixedEndpoints {
		points = append(points, ErrorPoint{Position: fe.Position, OSMID: fe.NodeID, Reason: ReasonFixedEndPoint})
	}
	for _, dn := range report.DoubleNodes {
		points = append(points, ErrorPoint{Position: dn.Position, OSMID: dn.NodeID, Reason: ReasonDoubleNode})
	}

	var lines []ErrorLine
	for _, al := range report.AddedLines {
		positions := []geom.Position{al.From, al.To}
		lines = append(lines, ErrorLine{
			WKT:       segmentWKT(positions),
			Positions: positions,
			Reason:    ReasonAddedLine,
		})
	}
	return points, lines
}

// CollectionCounters mirrors the collection's own counters for
// end-of-run logging, per spec.md §6.
type CollectionCounters struct {
	Ways               int
	RingsFromSingleWay int
	FixedRings         int
}

// Counters reads the counters off a live collection.
func Counters(c *ringcollection.Collection) CollectionCounters {
	return CollectionCounters{
		Ways:               c.Ways(),
		RingsFromSingleWay: c.RingsFromSingleWay(),
		FixedRings:         c.FixedRings(),
	}
}
