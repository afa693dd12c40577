// Package descriptor holds the mosaic engine's core data model: per-tile
// and per-mosaic metadata describing bands, projection, and geometry.
//
// Grounded on the original MosaicDescriptor/TileDescriptor/BandType structs
// (original_source/mrt/mrtmosaic/copy_md.c, output_hdr_mosaic.c) and, for the
// Go shape of a deep-clone-owning-its-data struct, on the teacher's
// cog.GeoInfo/cog.Bounds value types (internal/cog/reader.go).
package descriptor

// FileType identifies the on-disk representation of a tile or mosaic.
type FileType int

const (
	RawBinary FileType = iota
	HDFEOS
)

func (f FileType) String() string {
	if f == HDFEOS {
		return "hdf-eos"
	}
	return "raw-binary"
}

// DataType mirrors the HDF DFNT_* numeric type codes the original engine
// switches on when sizing and narrowing samples.
type DataType int

const (
	Int8 DataType = iota
	UInt8
	Int16
	UInt16
	Int32
	UInt32
	Float32
)

// ByteSize returns sizeof(datatype) as used by the size estimator.
func (d DataType) ByteSize() int {
	switch d {
	case Int8, UInt8:
		return 1
	case Int16, UInt16:
		return 2
	case Int32, UInt32, Float32:
		return 4
	default:
		return 0
	}
}

// ProjectionCode enumerates the GCTP-style projection codes the original
// tool could encounter. Only Sinusoidal and Integerized Sinusoidal are
// ever accepted by the compatibility checker (see internal/compat); the
// others exist so an incompatible input reports "wrong projection" rather
// than "unknown projection".
type ProjectionCode int

const (
	ProjGEO ProjectionCode = iota
	ProjUTM
	ProjSPCS
	ProjALBERS
	ProjLAMCC
	ProjSIN
	ProjISIN
)

func (p ProjectionCode) String() string {
	switch p {
	case ProjGEO:
		return "GEO"
	case ProjUTM:
		return "UTM"
	case ProjSPCS:
		return "SPCS"
	case ProjALBERS:
		return "ALBERS"
	case ProjLAMCC:
		return "LAMCC"
	case ProjSIN:
		return "SIN"
	case ProjISIN:
		return "ISIN"
	default:
		return "UNKNOWN"
	}
}

// Corner indexes the four corners of a projected or geographic extent.
type Corner int

const (
	UL Corner = iota
	UR
	LL
	LR
)

// Point2D is a generic (x, y) or (lon, lat) pair.
type Point2D struct {
	X, Y float64
}

// BandInfo describes one band (data variable) within a tile or mosaic.
type BandInfo struct {
	Name             string
	NLines           int
	NSamples         int
	InputDatatype    DataType
	OutputDatatype   DataType
	PixelSize        float64
	OutputPixelSize  float64
	FieldNum         int
	Rank             int
	Pos              [4]int
	MinValue         float64
	MaxValue         float64
	BackgroundFill   float64
	ScaleFactor      float64
	Offset           float64
	Selected         bool
	HasMinMax        bool
}

// Clone returns an independently-owned copy of b.
func (b BandInfo) Clone() BandInfo {
	return b
}

// TileDescriptor describes one input tile: its file, its bands, and its
// projection/geometry.
type TileDescriptor struct {
	Filename  string
	FileType  FileType
	Horiz     int
	Vert      int
	HasTile   bool // true once (Horiz, Vert) has been attached by the metadata reader

	Bands []BandInfo

	GridNames []string // one per band, HDF-EOS grid each band belongs to

	Projection           ProjectionCode
	DatumCode             int
	ZoneCode              int
	ProjectionParameters [15]float64

	// ProjCorners holds the projected-coordinate (x, y) for each Corner.
	ProjCorners [4]Point2D
	// GeoCorners holds the geographic (lon, lat) for each Corner.
	GeoCorners [4]Point2D

	North, South, East, West float64

	// ModisTile is set by the planner when the longitude-wrap fallback of
	// SPEC_FULL.md §4.3 step 6 was applied to this tile's corners.
	ModisTile bool

	// Attributes holds the tile's HDF-EOS global attributes, keyed by name.
	// Empty for raw-binary tiles, which carry no attribute block.
	Attributes map[string]string
}

// NBands returns the number of bands, mirroring the original's separately
// tracked nbands field (kept here as len(Bands) so it can never drift).
func (t *TileDescriptor) NBands() int { return len(t.Bands) }

// MosaicDescriptor is the planner's output: same shape as a TileDescriptor
// but with per-band dimensions scaled to the full mosaic and corners/bounds
// recomputed across all inputs.
type MosaicDescriptor struct {
	TileDescriptor
}

// Clone performs a full structural deep-copy of m, grounded on
// CopyMosaicDescriptor (original_source/mrt/mrtmosaic/copy_md.c): every
// field is independently owned by the result, including the band slice,
// grid name slice, and the 15-element projection parameter array.
func (m *MosaicDescriptor) Clone(outputFilename string) *MosaicDescriptor {
	out := &MosaicDescriptor{}
	out.Filename = outputFilename
	out.Horiz = m.Horiz
	out.Vert = m.Vert
	out.FileType = m.FileType
	out.HasTile = m.HasTile

	out.Bands = make([]BandInfo, len(m.Bands))
	copy(out.Bands, m.Bands)

	out.GridNames = make([]string, len(m.GridNames))
	copy(out.GridNames, m.GridNames)

	out.Projection = m.Projection
	out.DatumCode = m.DatumCode
	out.ZoneCode = m.ZoneCode
	out.ProjectionParameters = m.ProjectionParameters

	out.ProjCorners = m.ProjCorners
	out.GeoCorners = m.GeoCorners

	out.North = m.North
	out.South = m.South
	out.East = m.East
	out.West = m.West
	out.ModisTile = m.ModisTile

	if m.Attributes != nil {
		out.Attributes = make(map[string]string, len(m.Attributes))
		for k, v := range m.Attributes {
			out.Attributes[k] = v
		}
	}

	return out
}

// EmptyTile is the sentinel marking an absent tile position in a TileGrid.
// The original encodes this as the integer -9; SPEC_FULL.md's design notes
// call for an explicit optional instead, which TileGrid.At/Set provide while
// EmptyTile remains available for code (e.g. tests asserting fill behavior)
// that wants a concrete comparable zero-value-safe marker.
const EmptyTile = -1

// TileGrid is the sparse (v, h) -> input-index mapping computed by the
// planner. Index values are >= 0 for a present tile; IsEmpty reports
// whether a cell has no tile.
type TileGrid struct {
	H, V int
	grid [][]int // grid[v][h]
}

// NewTileGrid allocates a V x H grid with every cell initialized empty.
func NewTileGrid(h, v int) *TileGrid {
	g := &TileGrid{H: h, V: v, grid: make([][]int, v)}
	for i := range g.grid {
		row := make([]int, h)
		for j := range row {
			row[j] = EmptyTile
		}
		g.grid[i] = row
	}
	return g
}

// Set records that input index idx occupies position (v, h).
func (g *TileGrid) Set(v, h, idx int) { g.grid[v][h] = idx }

// At returns the input index at (v, h) and whether that cell is occupied.
func (g *TileGrid) At(v, h int) (idx int, ok bool) {
	idx = g.grid[v][h]
	return idx, idx != EmptyTile
}

// IsEmpty reports whether (v, h) has no tile.
func (g *TileGrid) IsEmpty(v, h int) bool {
	return g.grid[v][h] == EmptyTile
}
