// Package parquet implements the optional columnar staging writer of
// SPEC_FULL.md §4.K: every feature the output driver emits (ring,
// error_point, error_line) can be written to a single Parquet file
// before or instead of the database sink, letting a large run be
// inspected or reloaded without re-running the core. Adapted from the
// teacher's internal/parquet/writer.go schema-and-batch pattern (arrow
// RecordBuilder, pqarrow.FileWriter, zstd compression), replaced here
// with one schema for coastline features instead of the teacher's four
// generic OSM object schemas.
package parquet

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/file"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"
)

// FeatureKind distinguishes which of the three output layers a staged
// row belongs to.
type FeatureKind string

const (
	KindRing       FeatureKind = "ring"
	KindErrorPoint FeatureKind = "error_point"
	KindErrorLine  FeatureKind = "error_line"
)

// Schema is the single coastline-feature schema every kind is staged
// under: (feature_kind, osm_id, reason, nways, npoints, fixed, wkb).
// Fields that don't apply to a given kind (nways/npoints/fixed for
// error features) are written as zero/false.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "feature_kind", Type: arrow.BinaryTypes.String, Nullable: false},
	{Name: "osm_id", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
	{Name: "reason", Type: arrow.BinaryTypes.String, Nullable: true},
	{Name: "nways", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	{Name: "npoints", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	{Name: "fixed", Type: arrow.FixedWidthTypes.Boolean, Nullable: false},
	{Name: "wkb", Type: arrow.BinaryTypes.Binary, Nullable: false},
}, nil)

// Row is one staged feature.
type Row struct {
	Kind    FeatureKind
	OSMID   int64
	Reason  string
	NWays   int32
	NPoints int32
	Fixed   bool
	WKB     []byte
}

// Writer stages coastline features to a Parquet file.
type Writer struct {
	file      *os.File
	writer    *pqarrow.FileWriter
	builder   *array.RecordBuilder
	batchSize int
	count     int
}

// NewWriter creates a staging writer at path.
func NewWriter(path string, batchSize int) (*Writer, error) {
	if batchSize <= 0 {
		batchSize = 10000
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: create %s: %w", path, err)
	}

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Zstd),
		parquet.WithDictionaryDefault(false),
	)

	writer, err := pqarrow.NewFileWriter(Schema, f, writerProps, pqarrow.DefaultWriterProps())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("parquet: new file writer: %w", err)
	}

	return &Writer{
		file:      f,
		writer:    writer,
		builder:   array.NewRecordBuilder(memory.DefaultAllocator, Schema),
		batchSize: batchSize,
	}, nil
}

// Write stages one row, flushing the current batch if it's full.
func (w *Writer) Write(r Row) error {
	w.builder.Field(0).(*array.StringBuilder).Append(string(r.Kind))
	w.builder.Field(1).(*array.Int64Builder).Append(r.OSMID)
	if r.Reason == "" {
		w.builder.Field(2).(*array.StringBuilder).AppendNull()
	} else {
		w.builder.Field(2).(*array.StringBuilder).Append(r.Reason)
	}
	w.builder.Field(3).(*array.Int32Builder).Append(r.NWays)
	w.builder.Field(4).(*array.Int32Builder).Append(r.NPoints)
	w.builder.Field(5).(*array.BooleanBuilder).Append(r.Fixed)
	w.builder.Field(6).(*array.BinaryBuilder).Append(r.WKB)

	w.count++
	if w.count >= w.batchSize {
		return w.flush()
	}
	return nil
}

func (w *Writer) flush() error {
	if w.count == 0 {
		return nil
	}
	rec := w.builder.NewRecord()
	defer rec.Release()
	err := w.writer.Write(rec)
	w.count = 0
	return err
}

// Close flushes any pending batch and closes the file. The parquet file
// writer closes its sink itself, so an already-closed file is not an
// error here.
func (w *Writer) Close() error {
	if err := w.flush(); err != nil {
		return err
	}
	if err := w.writer.Close(); err != nil {
		return err
	}
	if err := w.file.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}

// ReadAll reads every staged row back out of a Parquet file written by
// Writer, for the reload path of SPEC_FULL.md §4.K.
func ReadAll(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("parquet: open %s: %w", path, err)
	}
	defer f.Close()

	pf, err := file.NewParquetReader(f)
	if err != nil {
		return nil, fmt.Errorf("parquet: new reader: %w", err)
	}
	defer pf.Close()

	arrowReader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("parquet: new arrow reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("parquet: read table: %w", err)
	}
	defer tbl.Release()

	kindCol := tbl.Column(0).Data()
	idCol := tbl.Column(1).Data()
	reasonCol := tbl.Column(2).Data()
	nwaysCol := tbl.Column(3).Data()
	npointsCol := tbl.Column(4).Data()
	fixedCol := tbl.Column(5).Data()
	wkbCol := tbl.Column(6).Data()

	var rows []Row
	for chunkIdx := 0; chunkIdx < len(kindCol.Chunks()); chunkIdx++ {
		kindChunk := kindCol.Chunk(chunkIdx).(*array.String)
		idChunk := idCol.Chunk(chunkIdx).(*array.Int64)
		reasonChunk := reasonCol.Chunk(chunkIdx).(*array.String)
		nwaysChunk := nwaysCol.Chunk(chunkIdx).(*array.Int32)
		npointsChunk := npointsCol.Chunk(chunkIdx).(*array.Int32)
		fixedChunk := fixedCol.Chunk(chunkIdx).(*array.Boolean)
		wkbChunk := wkbCol.Chunk(chunkIdx).(*array.Binary)

		for i := 0; i < kindChunk.Len(); i++ {
			reason := ""
			if !reasonChunk.IsNull(i) {
				reason = reasonChunk.Value(i)
			}
			rows = append(rows, Row{
				Kind:    FeatureKind(kindChunk.Value(i)),
				OSMID:   idChunk.Value(i),
				Reason:  reason,
				NWays:   nwaysChunk.Value(i),
				NPoints: npointsChunk.Value(i),
				Fixed:   fixedChunk.Value(i),
				WKB:     append([]byte(nil), wkbChunk.Value(i)...),
			})
		}
	}
	return rows, nil
}
