package wkb

import "github.com/go-coastline/coastline/internal/geom"

// flatten converts a position chain into the [lon1, lat1, lon2, lat2,
// ...] layout the encoder's ring methods expect.
func flatten(positions []geom.Position) []float64 {
	coords := make([]float64, 0, len(positions)*2)
	for _, p := range positions {
		coords = append(coords, p.Lon, p.Lat)
	}
	return coords
}

// EncodeRingPolygon encodes a closed ring's position chain as an EWKB
// polygon with no interior rings.
func (e *Encoder) EncodeRingPolygon(positions []geom.Position) []byte {
	return e.EncodePolygon(flatten(positions))
}

// EncodeRingLineString encodes a position chain as an EWKB linestring,
// used for the error_line layer.
func (e *Encoder) EncodeRingLineString(positions []geom.Position) []byte {
	return e.EncodeLineString(flatten(positions))
}

// EncodeRingPoint encodes a single position as an EWKB point, used for
// the error_point layer.
func (e *Encoder) EncodeRingPoint(p geom.Position) []byte {
	return e.EncodePoint(p.Lon, p.Lat)
}
