// Package ringcollection implements the online stitching algorithm that
// merges coastline ways into closed rings as they arrive, and the
// endpoint index structure that finds the rings a way connects to by map
// lookup rather than by searching every ring.
package ringcollection

import (
	"fmt"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/ring"
)

// ringHandle is an opaque identifier into the collection's arena. Per
// spec.md §9's design note, endpoint indexes map node ids to handles,
// never to raw ring pointers, so a destroyed ring can never be reached
// through a stale index entry.
type ringHandle int

// Collection holds the live set of coastline rings plus the two
// endpoint-to-ring maps that make stitching incremental. See spec.md §3
// for its invariants.
type Collection struct {
	arena      map[ringHandle]*ring.CoastlineRing
	nextHandle ringHandle

	startIndex map[geom.NodeID]ringHandle // first node id of an open ring -> ring
	endIndex   map[geom.NodeID]ringHandle // last node id of an open ring -> ring

	ways               int
	ringsFromSingleWay int
	fixedRings         int
}

// New creates an empty ring collection.
func New() *Collection {
	return &Collection{
		arena:      make(map[ringHandle]*ring.CoastlineRing),
		startIndex: make(map[geom.NodeID]ringHandle),
		endIndex:   make(map[geom.NodeID]ringHandle),
	}
}

// Ways returns the number of ways consumed so far.
func (c *Collection) Ways() int { return c.ways }

// RingsFromSingleWay returns the number of rings born from a single
// already-closed way.
func (c *Collection) RingsFromSingleWay() int { return c.ringsFromSingleWay }

// FixedRings returns the number of rings closed by the gap closer.
func (c *Collection) FixedRings() int { return c.fixedRings }

// IncrementFixedRings is called by the gap closer once per successful
// merge.
func (c *Collection) IncrementFixedRings() { c.fixedRings++ }

// Rings returns every live ring in the collection. Iteration order is
// not semantically meaningful.
func (c *Collection) Rings() []*ring.CoastlineRing {
	out := make([]*ring.CoastlineRing, 0, len(c.arena))
	for _, r := range c.arena {
		out = append(out, r)
	}
	return out
}

// OpenEnds returns every (nodeID, ring) pair currently registered in the
// end index, for use by the gap closer.
func (c *Collection) OpenEnds() map[geom.NodeID]*ring.CoastlineRing {
	out := make(map[geom.NodeID]*ring.CoastlineRing, len(c.endIndex))
	for id, h := range c.endIndex {
		out[id] = c.arena[h]
	}
	return out
}

// OpenStarts returns every (nodeID, ring) pair currently registered in
// the start index, for use by the gap closer.
func (c *Collection) OpenStarts() map[geom.NodeID]*ring.CoastlineRing {
	out := make(map[geom.NodeID]*ring.CoastlineRing, len(c.startIndex))
	for id, h := range c.startIndex {
		out[id] = c.arena[h]
	}
	return out
}

func (c *Collection) insert(r *ring.CoastlineRing) ringHandle {
	h := c.nextHandle
	c.nextHandle++
	c.arena[h] = r
	return h
}

func (c *Collection) destroy(h ringHandle) {
	delete(c.arena, h)
}

// AddWay is the central online stitching algorithm of spec.md §4.C. Let
// f = w.FirstNodeID, l = w.LastNodeID. prev is the open ring ending at
// f, next is the open ring starting at l. Four cases follow.
func (c *Collection) AddWay(w ring.Way) error {
	f := w.FirstNodeID()
	l := w.LastNodeID()

	prevH, prevOK := c.endIndex[f]
	nextH, nextOK := c.startIndex[l]

	c.ways++
	if f == l {
		c.ringsFromSingleWay++
	}

	switch {
	case !prevOK && !nextOK:
		// Case 1: neither hit. Create a fresh ring. If the way closes
		// itself (f == l), it needs no index entry at all — a closed
		// ring is never indexed, even momentarily.
		r := ring.FromWay(w)
		h := c.insert(r)
		if !r.IsClosed() {
			c.startIndex[r.FirstNodeID()] = h
			c.endIndex[r.LastNodeID()] = h
		}
		return nil

	case prevOK && !nextOK:
		// Case 2: only prev hit. Append w to prev.
		prev := c.arena[prevH]
		if err := prev.Append(w); err != nil {
			return fmt.Errorf("ringcollection: add_way case 2: %w", err)
		}
		delete(c.endIndex, f)
		if prev.IsClosed() {
			delete(c.startIndex, prev.FirstNodeID())
		} else {
			c.endIndex[prev.LastNodeID()] = prevH
		}
		return nil

	case !prevOK && nextOK:
		// Case 3: only next hit. Prepend w to next.
		next := c.arena[nextH]
		if err := next.Prepend(w); err != nil {
			return fmt.Errorf("ringcollection: add_way case 3: %w", err)
		}
		delete(c.startIndex, l)
		if next.IsClosed() {
			delete(c.endIndex, next.LastNodeID())
		} else {
			c.startIndex[next.FirstNodeID()] = nextH
		}
		return nil

	default:
		// Case 4: both hit. Append w to prev as in case 2.
		prev := c.arena[prevH]
		if err := prev.Append(w); err != nil {
			return fmt.Errorf("ringcollection: add_way case 4: %w", err)
		}
		delete(c.endIndex, f)

		if !prev.IsClosed() && prevH != nextH {
			next := c.arena[nextH]
			if err := prev.Join(next); err != nil {
				return fmt.Errorf("ringcollection: add_way case 4 join: %w", err)
			}
			c.destroy(nextH)
			delete(c.startIndex, l)
		}
		// prevH == nextH means the way closed the ring onto itself; per
		// spec.md §9's resolved open question, we do not additionally
		// join a ring to itself here — Append already made it closed,
		// or left it open pointing back at the same two ends.

		// Purge any index entries still pointing at the now-destroyed
		// next ring (its old start/end keys may coincide with prev's
		// new endpoints, so these must go before prev is re-registered).
		for id, h := range c.startIndex {
			if h == nextH {
				delete(c.startIndex, id)
			}
		}
		for id, h := range c.endIndex {
			if h == nextH {
				delete(c.endIndex, id)
			}
		}
		if prev.IsClosed() {
			delete(c.startIndex, prev.FirstNodeID())
			delete(c.endIndex, prev.LastNodeID())
		} else {
			c.startIndex[prev.FirstNodeID()] = prevH
			c.endIndex[prev.LastNodeID()] = prevH
		}
		return nil
	}
}
