package geom

// Intersection is the result of testing two directed segments for a
// proper crossing. Defined is false for the undefined sentinel (no
// crossing, or a crossing at a shared endpoint, which is not treated as
// an intersection).
type Intersection struct {
	Point   Position
	Defined bool
}

// Intersect computes whether the open interiors of s1 and s2 meet at a
// single point. If any endpoint of s1 equals any endpoint of s2 (by
// integer equality), the undefined sentinel is returned — shared
// endpoints are not treated as intersections. Uses the signed-area form
// and tests strict interiority without division, only dividing once to
// compute the advisory floating-point intersection point itself.
func Intersect(s1, s2 Segment) Intersection {
	if s1.A.Equal(s2.A) || s1.A.Equal(s2.B) || s1.B.Equal(s2.A) || s1.B.Equal(s2.B) {
		return Intersection{}
	}

	denom := (s2.B.Lat-s2.A.Lat)*(s1.B.Lon-s1.A.Lon) - (s2.B.Lon-s2.A.Lon)*(s1.B.Lat-s1.A.Lat)
	if denom == 0 {
		// Collinear or parallel.
		return Intersection{}
	}

	numeA := (s2.B.Lon-s2.A.Lon)*(s1.A.Lat-s2.A.Lat) - (s2.B.Lat-s2.A.Lat)*(s1.A.Lon-s2.A.Lon)
	numeB := (s1.B.Lon-s1.A.Lon)*(s1.A.Lat-s2.A.Lat) - (s1.B.Lat-s1.A.Lat)*(s1.A.Lon-s2.A.Lon)

	inside := (denom > 0 && numeA >= 0 && numeA <= denom && numeB >= 0 && numeB <= denom) ||
		(denom < 0 && numeA <= 0 && numeA >= denom && numeB <= 0 && numeB >= denom)
	if !inside {
		return Intersection{}
	}

	ua := numeA / denom
	lon := s1.A.Lon + ua*(s1.B.Lon-s1.A.Lon)
	lat := s1.A.Lat + ua*(s1.B.Lat-s1.A.Lat)
	return Intersection{Point: NewPosition(lon, lat), Defined: true}
}
