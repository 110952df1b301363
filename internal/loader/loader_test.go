package loader

import (
	"testing"

	"github.com/go-coastline/coastline/internal/config"
	"github.com/go-coastline/coastline/internal/parquet"
)

func TestTableQualifiesWithSchema(t *testing.T) {
	l := &Loader{cfg: &config.Config{DBSchema: "coastline"}}
	got := l.table("rings")
	want := "coastline.rings"
	if got != want {
		t.Errorf("table(%q) = %q, want %q", "rings", got, want)
	}
}

func TestGroupByKindSplitsRows(t *testing.T) {
	rows := []parquet.Row{
		{Kind: parquet.KindRing, OSMID: 1},
		{Kind: parquet.KindErrorPoint, OSMID: 2},
		{Kind: parquet.KindErrorLine, OSMID: 3},
		{Kind: parquet.KindRing, OSMID: 4},
	}

	rings, points, lines := groupByKind(rows)

	if len(rings) != 2 || rings[0].OSMID != 1 || rings[1].OSMID != 4 {
		t.Errorf("rings = %v, want OSMIDs [1 4]", rings)
	}
	if len(points) != 1 || points[0].OSMID != 2 {
		t.Errorf("points = %v, want OSMIDs [2]", points)
	}
	if len(lines) != 1 || lines[0].OSMID != 3 {
		t.Errorf("lines = %v, want OSMIDs [3]", lines)
	}
}

func TestGroupByKindEmpty(t *testing.T) {
	rings, points, lines := groupByKind(nil)
	if rings != nil || points != nil || lines != nil {
		t.Errorf("groupByKind(nil) = %v, %v, %v, want all nil", rings, points, lines)
	}
}
