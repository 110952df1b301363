package sink

import (
	"testing"

	"github.com/go-coastline/coastline/internal/config"
)

func TestSplitTableQualified(t *testing.T) {
	got := splitTable("coastline.rings")
	want := [2]string{"coastline", "rings"}
	if got != want {
		t.Errorf("splitTable(%q) = %v, want %v", "coastline.rings", got, want)
	}
}

func TestSplitTableUnqualified(t *testing.T) {
	got := splitTable("rings")
	want := [2]string{"", "rings"}
	if got != want {
		t.Errorf("splitTable(%q) = %v, want %v", "rings", got, want)
	}
}

func TestTableQualifiesWithSchema(t *testing.T) {
	s := &Sink{cfg: &config.Config{DBSchema: "coastline"}}
	got := s.table("rings")
	want := "coastline.rings"
	if got != want {
		t.Errorf("table(%q) = %q, want %q", "rings", got, want)
	}
}
