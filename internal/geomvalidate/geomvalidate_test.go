package geomvalidate

import (
	"testing"

	sfgeom "github.com/peterstace/simplefeatures/geom"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/ring"
)

// bowtieRing builds a closed, self-intersecting ring shaped like a
// bowtie: the segments (10,10)-(12,12) and (12,10)-(10,12) cross at
// (11,11), which is exactly the S6/§4.F case Validate/Repair must
// handle. Offset away from the origin so a fallback flaw position (the
// ring's first point) can never be mistaken for the zero value.
func bowtieRing() *ring.CoastlineRing {
	ids := []geom.NodeID{1, 2, 3, 4, 1}
	positions := []geom.Position{
		geom.NewPosition(10, 10),
		geom.NewPosition(12, 12),
		geom.NewPosition(12, 10),
		geom.NewPosition(10, 12),
		geom.NewPosition(10, 10),
	}
	return ring.FromWay(ring.Way{NodeIDs: ids, Positions: positions})
}

func TestNormalizeReason(t *testing.T) {
	tests := []struct {
		name       string
		msg        string
		wantReason string
		wantFlaw   bool
	}{
		{
			name:       "self intersection with location",
			msg:        "Self-intersection at [12.5 -3.25]",
			wantReason: "self_intersection",
			wantFlaw:   true,
		},
		{
			name:       "self intersection without location",
			msg:        "self intersection detected",
			wantReason: "self_intersection",
			wantFlaw:   false,
		},
		{
			name:       "duplicate points",
			msg:        "duplicate consecutive points in ring",
			wantReason: "duplicate_points",
			wantFlaw:   false,
		},
		{
			name:       "ring not closed",
			msg:        "LinearRing not closed",
			wantReason: "ring_not_closed",
			wantFlaw:   false,
		},
		{
			name:       "too few points",
			msg:        "too few points in ring, need at least 4",
			wantReason: "too_few_points",
			wantFlaw:   false,
		},
		{
			name:       "unrecognized message",
			msg:        "something unexpected happened",
			wantReason: "invalid_geometry",
			wantFlaw:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, flawXY, hasFlaw := normalizeReason(tt.msg)
			if reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", reason, tt.wantReason)
			}
			if hasFlaw != tt.wantFlaw {
				t.Errorf("hasFlaw = %v, want %v", hasFlaw, tt.wantFlaw)
			}
			if hasFlaw && (flawXY[0] != 12.5 || flawXY[1] != -3.25) {
				t.Errorf("flawXY = %v, want [12.5 -3.25]", flawXY)
			}
		})
	}
}

func TestValidateDetectsSelfIntersection(t *testing.T) {
	r := bowtieRing()

	valid, reason, flaw := Validate(r)
	if valid {
		t.Fatalf("Validate(bowtie) = valid, want invalid")
	}
	if reason != "self_intersection" {
		t.Errorf("reason = %q, want %q", reason, "self_intersection")
	}
	if flaw == (geom.Position{}) {
		t.Errorf("flaw = zero value, want a located defect")
	}
}

func TestRepairResolvesSelfIntersection(t *testing.T) {
	r := bowtieRing()

	if valid, _, _ := Validate(r); valid {
		t.Fatalf("precondition failed: bowtie ring reported valid")
	}

	wkt, ok := Repair(r)
	if !ok {
		t.Fatalf("Repair(bowtie) = not ok, want a successful zero-width-buffer repair")
	}
	if wkt == "" {
		t.Errorf("Repair(bowtie) returned an empty polygon WKT")
	}

	if _, err := sfgeom.UnmarshalWKT(wkt); err != nil {
		t.Errorf("repaired WKT %q is still invalid: %v", wkt, err)
	}
}
