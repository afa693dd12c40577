// Package rasterio abstracts the raw-binary and HDF-EOS file formats
// behind one capability interface, per SPEC_FULL.md §9's design note:
// "raw-binary vs hdf-eos is currently a switch in every I/O site... abstract
// behind a capability interface {open_reader, open_writer, read_row,
// write_row, close, create_grid, create_field} with two implementations;
// the executor becomes format-agnostic."
//
// Grounded structurally on the teacher's cog.Reader (Open/Close/row & tile
// reads over an mmapped file, internal/cog/reader.go) for the Reader side,
// and on pmtiles.Writer's "accumulate, Finalize, Abort on failure" scoped
// lifecycle (internal/pmtiles/writer.go) for the Writer side.
package rasterio

import (
	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
)

// Reader is a row-oriented capability interface over one input tile. All
// rows are returned widened to float64 regardless of the underlying sample
// datatype, per SPEC_FULL.md §4.5's "row buffer accumulated in 64-bit
// floating point" rule.
type Reader interface {
	// Descriptor returns the metadata read when the file was opened.
	Descriptor() *descriptor.TileDescriptor

	// ReadRow reads one row of the given band, 0-indexed, returning
	// NSamples float64 values for that band.
	ReadRow(band, row int) ([]float64, error)

	Close() error
}

// Writer is a row-oriented capability interface over one output mosaic.
// For HDF-EOS outputs, CreateGrid/CreateField group bands by pixel size
// into grids before each band's rows are written; raw-binary writers
// implement both as no-ops since raw-binary files carry no internal grid
// structure.
type Writer interface {
	// CreateGrid starts a new named grid with the given geometry. Called
	// each time a selected band's pixel size differs from the previous
	// selected band's.
	CreateGrid(name string, xdim, ydim int, ul, lr descriptor.Point2D, proj descriptor.ProjectionCode, params [15]float64, zoneCode int) error

	// CreateField declares one band's field within the current grid.
	CreateField(gridName string, band descriptor.BandInfo) error

	// SetAttributes records the source tile's global attributes for
	// lineage preservation. A no-op for formats that carry no attribute
	// block (raw-binary).
	SetAttributes(attrs map[string]string)

	// WriteRow writes one fully-composed output row for the given field.
	WriteRow(gridName, fieldName string, row int, data []float64) error

	Close() error
}

// OpenReader opens path as a tile of the given file type and reads its
// metadata. For raw-binary, meta must be the already-parsed sidecar header
// (see Sidecar); for HDF-EOS it is ignored (the container carries its own
// metadata).
func OpenReader(path string, ft descriptor.FileType, meta *Sidecar) (Reader, error) {
	switch ft {
	case descriptor.RawBinary:
		return openRawBinaryReader(path, meta)
	case descriptor.HDFEOS:
		return openHDFEOSReader(path)
	default:
		return nil, errUnsupportedFileType(ft)
	}
}

// OpenWriter opens an output file of the given type, pre-declaring the
// mosaic geometry it will receive rows for.
func OpenWriter(path string, ft descriptor.FileType, mosaic *descriptor.MosaicDescriptor) (Writer, error) {
	switch ft {
	case descriptor.RawBinary:
		return openRawBinaryWriter(path, mosaic)
	case descriptor.HDFEOS:
		return openHDFEOSWriter(path, mosaic)
	default:
		return nil, errUnsupportedFileType(ft)
	}
}
