// Package nodeindex implements the node-location pass described in
// spec.md §6's reader contract and original_source/src/
// osmcoastline_ways.cpp's two-pass design: a first pass over the PBF
// records every node's position, keyed by node id at a fixed byte
// offset, so the second pass can resolve a way's node ids to positions
// without holding every node in memory.
package nodeindex

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"

	"github.com/go-coastline/coastline/internal/geom"
)

const (
	// Each entry is two int64 fixed-point coordinates (×10^7, matching
	// geom.Position's scale): X then Y, 16 bytes total.
	entrySize = 16
	// Maximum node id supported; large enough for any real OSM extract.
	maxNodeID = 10_000_000_000
)

// Index is a memory-mapped node coordinate index. A node's fixed-point
// position is stored at offset = nodeID * entrySize, giving O(1)
// lookup for any node id without a hash table.
type Index struct {
	file   *os.File
	data   mmap.MMap
	size   int64
	writer bool
}

// New creates a new index backed by a sparse file at path, sized to
// hold any node id up to maxNodeID.
func New(path string) (*Index, error) {
	size := int64(maxNodeID) * entrySize

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("nodeindex: create %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("nodeindex: truncate %s: %w", path, err)
	}

	data, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nodeindex: mmap %s: %w", path, err)
	}

	return &Index{file: f, data: data, size: size, writer: true}, nil
}

// Open opens an existing index file read-only, for a second pass that
// only resolves positions.
func Open(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nodeindex: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nodeindex: stat %s: %w", path, err)
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nodeindex: mmap %s: %w", path, err)
	}

	return &Index{file: f, data: data, size: info.Size(), writer: false}, nil
}

// Put stores a node's position. Out-of-range node ids are silently
// ignored, matching the reader's tolerance for malformed extracts.
func (idx *Index) Put(id geom.NodeID, p geom.Position) {
	if id < 0 || int64(id) >= maxNodeID {
		return
	}
	offset := int64(id) * entrySize
	putInt64(idx.data[offset:], p.X)
	putInt64(idx.data[offset+8:], p.Y)
}

// zeroSentinel is what an empty (never-written) entry reads back as.
// (0, 0) is a legitimate position (the Gulf of Guinea), but coastline
// extracts never legitimately reference that exact fixed-point pair as
// a written node in practice; this mirrors the teacher's accepted
// trade-off for the same ambiguity.
var zeroSentinel = geom.Position{}

// Get retrieves a node's position. ok is false if the node id is out of
// range or was never written.
func (idx *Index) Get(id geom.NodeID) (geom.Position, bool) {
	if id < 0 || int64(id) >= maxNodeID {
		return zeroSentinel, false
	}
	offset := int64(id) * entrySize
	if offset+entrySize > idx.size {
		return zeroSentinel, false
	}

	x := getInt64(idx.data[offset:])
	y := getInt64(idx.data[offset+8:])
	if x == 0 && y == 0 {
		return zeroSentinel, false
	}

	return geom.Position{
		Lon: float64(x) / 1e7,
		Lat: float64(y) / 1e7,
		X:   x,
		Y:   y,
	}, true
}

// Sync flushes changes to disk.
func (idx *Index) Sync() error {
	return idx.data.Flush()
}

// Close unmaps and closes the index.
func (idx *Index) Close() error {
	if err := idx.data.Unmap(); err != nil {
		idx.file.Close()
		return err
	}
	return idx.file.Close()
}

func putInt64(b []byte, v int64) {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		b[i] = byte(u >> (8 * i))
	}
}

func getInt64(b []byte) int64 {
	var u uint64
	for i := 0; i < 8; i++ {
		u |= uint64(b[i]) << (8 * i)
	}
	return int64(u)
}
