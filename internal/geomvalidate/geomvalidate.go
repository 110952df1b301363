// Package geomvalidate adapts github.com/peterstace/simplefeatures/geom as
// the validity and repair engine for closed rings, in the role
// output_layers.cpp's GEOS-backed checks play in the original tool.
package geomvalidate

import (
	"strconv"
	"strings"

	sfgeom "github.com/peterstace/simplefeatures/geom"

	"github.com/go-coastline/coastline/internal/geom"
	"github.com/go-coastline/coastline/internal/ring"
)

// Validate builds a POLYGON from the ring's position chain and asks the
// geometry engine whether it is a simple, valid polygon. UnmarshalWKT
// with no constructor options runs the engine's own OGC-simple-feature
// validation (ring closure, no self-intersection, no duplicate
// consecutive points) as it constructs the geometry, the same validating
// parse the pack's own WKTIsValidGeometry helper uses; a non-nil error
// from that call is the invalidity reason, per spec.md §6. Repair, by
// contrast, deliberately disables this validation so it can hold a
// self-intersecting polygon long enough to heal it (see below) — the two
// must not be confused for each other.
//
// On invalidity, the returned reason is normalized the way
// output_layers.cpp's LayerRings::add does: "Self-intersection" becomes
// "self_intersection", and a bracketed "[x y]" location in the engine's
// message (when present) becomes flaw; absent one, flaw is the ring's
// first position.
func Validate(r *ring.CoastlineRing) (valid bool, reason string, flaw geom.Position) {
	_, err := sfgeom.UnmarshalWKT(r.ToPolygon())
	if err == nil {
		return true, "", geom.Position{}
	}
	reason, flaw = diagnose(r, err)
	return false, reason, flaw
}

func diagnose(r *ring.CoastlineRing, err error) (reason string, flaw geom.Position) {
	reason, flawXY, hasFlaw := normalizeReason(err.Error())
	if hasFlaw {
		flaw = geom.NewPosition(flawXY[0], flawXY[1])
	} else if r.Length() > 0 {
		flaw = r.FirstPosition()
	}
	return reason, flaw
}

// normalizeReason turns a simplefeatures error string into the
// lower_snake_case reason family output_layers.cpp reports
// ("self_intersection", "duplicate_points", "too_few_points", ...; the
// engine's "ring not simple" wording also maps to "self_intersection"), and
// extracts a "[lon lat]" coordinate pair when the message carries one.
func normalizeReason(msg string) (reason string, flawXY [2]float64, hasFlaw bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "self-intersection"), strings.Contains(lower, "self intersection"),
		strings.Contains(lower, "not simple"):
		reason = "self_intersection"
	case strings.Contains(lower, "duplicate"):
		reason = "duplicate_points"
	case strings.Contains(lower, "ring not closed"), strings.Contains(lower, "not closed"):
		reason = "ring_not_closed"
	case strings.Contains(lower, "too few points"), strings.Contains(lower, "insufficient"):
		reason = "too_few_points"
	default:
		reason = "invalid_geometry"
	}

	open := strings.IndexByte(msg, '[')
	shut := strings.IndexByte(msg, ']')
	if open < 0 || shut < 0 || shut < open {
		return reason, flawXY, false
	}
	fields := strings.Fields(msg[open+1 : shut])
	if len(fields) != 2 {
		return reason, flawXY, false
	}
	x, errX := strconv.ParseFloat(fields[0], 64)
	y, errY := strconv.ParseFloat(fields[1], 64)
	if errX != nil || errY != nil {
		return reason, flawXY, false
	}
	return reason, [2]float64{x, y}, true
}

// Repair attempts the zero-width-buffer analogue used by
// output_layers.cpp when a ring fails validity. Validate's validating
// parse would reject the same self-intersecting WKT before Union ever
// ran, so Repair instead parses with sfgeom.NoValidate{} to get
// a raw Polygon holding the defect, then self-unions it through the
// engine's overlay operator, which resolves self-intersections the way a
// zero-width buffer does. The result is accepted only if it is itself a
// single simple polygon with at least four exterior points and no
// interior rings, matching spec.md §4.F's drop criterion — the final
// validating re-parse below confirms the union actually healed it rather
// than just changing shape.
func Repair(r *ring.CoastlineRing) (polygonWKT string, ok bool) {
	g, err := sfgeom.UnmarshalWKT(r.ToPolygon(), sfgeom.NoValidate{})
	if err != nil {
		return "", false
	}

	unioned, err := sfgeom.Union(g, g)
	if err != nil {
		return "", false
	}

	if unioned.Type() != sfgeom.TypePolygon {
		return "", false
	}
	poly := unioned.MustAsPolygon()
	if poly.NumInteriorRings() > 0 {
		return "", false
	}
	if poly.ExteriorRing().Coordinates().Length() < 4 {
		return "", false
	}

	repaired := poly.AsText()
	if _, verr := sfgeom.UnmarshalWKT(repaired); verr != nil {
		return "", false
	}
	return repaired, true
}
