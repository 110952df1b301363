package output

import (
	"testing"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/ring"
)

func square(ids []geom.NodeID) *ring.CoastlineRing {
	positions := make([]geom.Position, len(ids))
	for i := range ids {
		positions[i] = geom.NewPosition(float64(i), float64(i))
	}
	return ring.FromWay(ring.Way{NodeIDs: ids, Positions: positions})
}

func TestEmitRingsDegenerateCounts(t *testing.T) {
	tests := []struct {
		name        string
		ring        *ring.CoastlineRing
		wantRings   int
		wantPoints  int
		wantLines   int
		wantWarning int
	}{
		{
			name:      "closed proper ring",
			ring:      square([]geom.NodeID{1, 2, 3, 4, 1}),
			wantRings: 1,
		},
		{
			name:        "single point ring",
			ring:        square([]geom.NodeID{1}),
			wantPoints:  1,
			wantWarning: 1,
		},
		{
			name:        "degenerate closed ring length 3",
			ring:        square([]geom.NodeID{1, 2, 1}),
			wantLines:   1,
			wantPoints:  2,
			wantWarning: 1,
		},
		{
			name:        "open ring",
			ring:        square([]geom.NodeID{1, 2, 3}),
			wantLines:   1,
			wantPoints:  2,
			wantWarning: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := EmitRings([]*ring.CoastlineRing{tt.ring})
			if len(res.Rings) != tt.wantRings {
				t.Errorf("rings = %d, want %d", len(res.Rings), tt.wantRings)
			}
			if len(res.ErrorPoints) != tt.wantPoints {
				t.Errorf("error points = %d, want %d", len(res.ErrorPoints), tt.wantPoints)
			}
			if len(res.ErrorLines) != tt.wantLines {
				t.Errorf("error lines = %d, want %d", len(res.ErrorLines), tt.wantLines)
			}
			if res.Stats.Warnings != tt.wantWarning {
				t.Errorf("warnings = %d, want %d", res.Stats.Warnings, tt.wantWarning)
			}
		})
	}
}

func TestEmitQuestionableExemptsLargeInnerRings(t *testing.T) {
	small := square([]geom.NodeID{1, 2, 3, 4, 1})

	bigIDs := make([]geom.NodeID, 1001)
	for i := range bigIDs {
		bigIDs[i] = geom.NodeID(i + 100)
	}
	bigIDs[len(bigIDs)-1] = bigIDs[0]
	big := square(bigIDs)

	lines := EmitQuestionable([]*ring.CoastlineRing{small, big})
	if len(lines) != 1 {
		t.Fatalf("questionable lines = %d, want 1", len(lines))
	}
	if lines[0].OSMID != small.RingID() {
		t.Errorf("questionable ring id = %v, want %v", lines[0].OSMID, small.RingID())
	}
}

func TestEmitQuestionableSkipsOuterRings(t *testing.T) {
	r := square([]geom.NodeID{1, 2, 3, 4, 1})
	r.SetOuter()

	lines := EmitQuestionable([]*ring.CoastlineRing{r})
	if len(lines) != 0 {
		t.Fatalf("questionable lines = %d, want 0 for outer ring", len(lines))
	}
}

func TestApplyValidityOverridesPlaceholder(t *testing.T) {
	valid := square([]geom.NodeID{1, 2, 3, 4, 1})
	invalid := square([]geom.NodeID{10, 20, 30, 40, 10})

	res := EmitRings([]*ring.CoastlineRing{valid, invalid})
	for _, rf := range res.Rings {
		if !rf.Valid {
			t.Fatalf("EmitRings placeholder Valid = false for ring %v, want true", rf.RingID)
		}
	}

	ApplyValidity(res, map[geom.NodeID]bool{
		valid.RingID():   true,
		invalid.RingID(): false,
	})

	for _, rf := range res.Rings {
		want := rf.RingID == valid.RingID()
		if rf.Valid != want {
			t.Errorf("ring %v Valid = %v, want %v", rf.RingID, rf.Valid, want)
		}
	}
}
