// Package gapcloser implements the heuristic repair described in
// spec.md §4.E: merging rings whose free endpoints are close enough to
// be considered accidentally unclosed.
package gapcloser

import (
	"sort"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/policy"
	"github.com/go-coastline/coastline/internal/ringcollection"
)

// connection is a candidate merge between an open end and an open
// start within the distance threshold.
type connection struct {
	distance float64
	endID    geom.NodeID
	startID  geom.NodeID
}

// FixedEndpoint is one "fixed endpoint" error point emitted for QA.
type FixedEndpoint struct {
	Position geom.Position
	NodeID   geom.NodeID
}

// AddedLine is one "added line" error segment emitted for QA, drawn
// between two endpoints that were not already coincident.
type AddedLine struct {
	From, To geom.Position
}

// DoubleNode is one "double node" error point emitted when closing a
// gap makes a ring's own first and last positions coincide exactly.
type DoubleNode struct {
	Position geom.Position
	NodeID   geom.NodeID
}

// Report collects every QA feature the gap closer produced, in addition
// to the fixed-rings count already tracked on the collection.
type Report struct {
	FixedEndpoints []FixedEndpoint
	AddedLines     []AddedLine
	DoubleNodes    []DoubleNode
}

// CloseRings merges open-ring endpoints within maxDistance of each
// other, greedily, shortest connection first. See spec.md §4.E for the
// termination argument (every sibling connection referencing either
// endpoint of a popped connection is invalidated before the next pop).
//
// All mutation of ring state happens through the collection's
// MergeAtGap, which keeps the endpoint index consistent; this function
// only decides which candidates to try and in what order.
func CloseRings(c *ringcollection.Collection, maxDistance float64) Report {
	return closeRings(c, func(geom.Position) float64 { return maxDistance })
}

// CloseRingsWithPolicy behaves like CloseRings, except the threshold for
// each candidate connection is looked up by calling pol's gap_distance
// script hook (if defined) for the region around the ring's open end,
// falling back to maxDistance when pol is nil or defines no hook. See
// SPEC_FULL.md §4.J: this is an additive override, not a required
// mechanism, and its absence leaves the algorithm below unchanged.
func CloseRingsWithPolicy(c *ringcollection.Collection, maxDistance float64, pol *policy.Policy) (Report, error) {
	var hookErr error
	report := closeRings(c, func(p geom.Position) float64 {
		if pol == nil {
			return maxDistance
		}
		d, err := pol.GapDistance(p.Lat, p.Lon, maxDistance)
		if err != nil && hookErr == nil {
			hookErr = err
		}
		return d
	})
	return report, hookErr
}

func closeRings(c *ringcollection.Collection, maxDistanceAt func(geom.Position) float64) Report {
	var report Report

	ends := c.OpenEnds()
	starts := c.OpenStarts()

	var conns []connection
	for endID, e := range ends {
		for startID, s := range starts {
			d := e.LastPosition().Distance(s.FirstPosition())
			if d < maxDistanceAt(e.LastPosition()) {
				conns = append(conns, connection{distance: d, endID: endID, startID: startID})
			}
		}
	}

	// Sort by distance, shortest last (pop-from-back yields shortest
	// first).
	sort.Slice(conns, func(i, j int) bool { return conns[i].distance > conns[j].distance })

	for len(conns) > 0 {
		cur := conns[len(conns)-1]
		conns = conns[:len(conns)-1]

		// Invalidate all other candidates sharing either endpoint id of
		// cur; they can no longer be merged once cur is applied.
		kept := conns[:0]
		for _, other := range conns {
			if other.endID == cur.endID || other.startID == cur.startID {
				continue
			}
			kept = append(kept, other)
		}
		conns = kept

		outcome, ok := c.MergeAtGap(cur.endID, cur.startID)
		if !ok {
			continue
		}

		report.FixedEndpoints = append(report.FixedEndpoints,
			FixedEndpoint{Position: outcome.EndPosition, NodeID: outcome.EndNodeID},
			FixedEndpoint{Position: outcome.StartPosition, NodeID: outcome.StartNodeID},
		)

		if !outcome.EndPosition.Equal(outcome.StartPosition) {
			report.AddedLines = append(report.AddedLines, AddedLine{From: outcome.EndPosition, To: outcome.StartPosition})
		}

		if outcome.DoubleNode {
			report.DoubleNodes = append(report.DoubleNodes, DoubleNode{Position: outcome.DoubleNodePosition, NodeID: outcome.DoubleNodeID})
		}

		c.IncrementFixedRings()
	}

	return report
}
