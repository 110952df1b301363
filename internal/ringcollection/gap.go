package ringcollection

import "github.com/go-coastline/coastline/internal/geom"

// MergeOutcome describes what happened during one gap-closing merge, in
// enough detail for the gap closer to build its QA error features
// without reaching into the collection's internals.
type MergeOutcome struct {
	EndPosition, StartPosition geom.Position
	EndNodeID, StartNodeID     geom.NodeID

	SelfClose bool // the end and start belonged to the same ring

	DoubleNode         bool
	DoubleNodePosition geom.Position
	DoubleNodeID       geom.NodeID
}

// MergeAtGap performs one gap-closing merge between the open end
// registered under endID and the open start registered under startID.
// It returns false if either endpoint is no longer registered — the
// caller's candidate was invalidated by an earlier merge in the same
// pass, and must be skipped per spec.md §4.E.
func (c *Collection) MergeAtGap(endID, startID geom.NodeID) (MergeOutcome, bool) {
	eH, eOK := c.endIndex[endID]
	sH, sOK := c.startIndex[startID]
	if !eOK || !sOK {
		return MergeOutcome{}, false
	}
	e := c.arena[eH]
	s := c.arena[sH]

	outcome := MergeOutcome{
		EndPosition:   e.LastPosition(),
		EndNodeID:     e.LastNodeID(),
		StartPosition: s.FirstPosition(),
		StartNodeID:   s.FirstNodeID(),
	}

	if eH == sH {
		// Self case: connect a ring to itself by closing it.
		e.CloseRing()
		delete(c.endIndex, endID)
		delete(c.startIndex, startID)
		outcome.SelfClose = true
		return outcome, true
	}

	// Cross case: join e over the gap with s; s is destroyed.
	e.JoinOverGap(s)
	c.destroy(sH)

	delete(c.endIndex, endID)
	delete(c.startIndex, startID)

	// s's other endpoint registration may or may not coincide with e's
	// new endpoint; purge it explicitly so no dangling handle survives.
	for id, h := range c.startIndex {
		if h == sH {
			delete(c.startIndex, id)
		}
	}
	for id, h := range c.endIndex {
		if h == sH {
			delete(c.endIndex, id)
		}
	}

	if e.FirstPosition().Equal(e.LastPosition()) {
		// The merge made the surviving ring's own ends coincide.
		e.FakeClose()
		delete(c.startIndex, e.FirstNodeID())
		delete(c.endIndex, e.LastNodeID())
		outcome.DoubleNode = true
		outcome.DoubleNodePosition = e.FirstPosition()
		outcome.DoubleNodeID = e.FirstNodeID()
	} else {
		c.endIndex[e.LastNodeID()] = eH
	}

	return outcome, true
}
