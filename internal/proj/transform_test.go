package proj

import (
	"math"
	"testing"

	"github.com/go-coastline/coastline/internal/geom"
)

func TestTransformPositionPreservesFixedPointKey(t *testing.T) {
	tr, err := NewTransformer(SRID4326, SRID3857)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}

	p := geom.NewPosition(10, 50)
	out := tr.TransformPosition(p)

	if out.X != p.X || out.Y != p.Y {
		t.Errorf("fixed-point key changed: got (%d,%d), want (%d,%d)", out.X, out.Y, p.X, p.Y)
	}
	if out.Lon == p.Lon && out.Lat == p.Lat {
		t.Error("expected Lon/Lat to be reprojected")
	}

	wantX, wantY := lonLatToWebMercator(10, 50)
	if math.Abs(out.Lon-wantX) > 1e-9 || math.Abs(out.Lat-wantY) > 1e-9 {
		t.Errorf("got (%g,%g), want (%g,%g)", out.Lon, out.Lat, wantX, wantY)
	}
}

func TestTransformPositionIdentityWhenSameSRID(t *testing.T) {
	tr, err := NewTransformer(SRID4326, SRID4326)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}
	p := geom.NewPosition(1, 2)
	if out := tr.TransformPosition(p); out != p {
		t.Errorf("expected identity transform, got %+v", out)
	}
}
