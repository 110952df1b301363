package parquet

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staged.parquet")

	w, err := NewWriter(path, 10)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	want := []Row{
		{Kind: KindRing, OSMID: 1, NWays: 2, NPoints: 5, Fixed: true, WKB: []byte{0x01, 0x02}},
		{Kind: KindErrorPoint, OSMID: 2, Reason: "end_point", WKB: []byte{0x03}},
		{Kind: KindErrorLine, OSMID: 3, Reason: "not_closed", WKB: []byte{0x04, 0x05}},
	}
	for _, r := range want {
		if err := w.Write(r); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
	for i, r := range got {
		if r.Kind != want[i].Kind || r.OSMID != want[i].OSMID || r.Reason != want[i].Reason {
			t.Errorf("row %d = %+v, want %+v", i, r, want[i])
		}
	}
}
