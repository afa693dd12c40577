// Sidecar implements the raw-binary file format's text header: the format
// read by cmd/mrtmosaic for each raw-binary input and written
// by internal/tilesutil.WriteHeader, grounded on ReadHeaderFileMosaic and
// OutputHdrMosaic (original_source/mrt/mrtmosaic/output_hdr_mosaic.c).
//
// The on-disk shape is a flat "KEY = VALUE" text file, one statement per
// line, matching the key=value convention the wider MRT header/parameter
// files use (see original_source/mrt/mrtmosaic/mosaic.h's sibling files);
// this is simpler than the original's fixed-field binary-adjacent layout.
// The header carries projection, datum, zone, projection parameters, the
// north/south/east/west bounds, and per-band dimensions, datatype, pixel
// size and background fill; the four projected and geographic corner
// coordinates are neither written nor read.
package rasterio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// Sidecar is the parsed/to-be-written raw-binary header.
type Sidecar struct {
	Projection           descriptor.ProjectionCode
	DatumCode            int
	ZoneCode             int
	ProjectionParameters [15]float64

	ProjCorners [4]descriptor.Point2D
	GeoCorners  [4]descriptor.Point2D

	Horiz, Vert int
	HasTile     bool

	Bands []descriptor.BandInfo
}

// tileNamePattern matches the h##v## fragment anywhere in a raw-binary
// filename, per SPEC_FULL.md §6.5.
var tileNamePattern = regexp.MustCompile(`[hH](\d{2})[vV](\d{2})`)

// ParseTileNumberFromFilename extracts (horiz, vert) from a raw-binary
// filename's h##v## fragment. Grounded on read_tile_number_rb.
func ParseTileNumberFromFilename(path string) (horiz, vert int, err error) {
	m := tileNamePattern.FindStringSubmatch(path)
	if m == nil {
		return 0, 0, mosaicerr.New(mosaicerr.TileParse, fmt.Sprintf("no h##v## tile fragment found in %q", path)).WithPath(path)
	}
	h, _ := strconv.Atoi(m[1])
	v, _ := strconv.Atoi(m[2])
	if h < 0 || h > 35 || v < 0 || v > 17 {
		return 0, 0, mosaicerr.New(mosaicerr.TileParse, fmt.Sprintf("tile indices out of range: h%02dv%02d", h, v)).WithPath(path)
	}
	return h, v, nil
}

// ReadSidecar parses a raw-binary .hdr file.
func ReadSidecar(r io.Reader) (*Sidecar, error) {
	s := &Sidecar{}
	scanner := bufio.NewScanner(r)
	var curBand *descriptor.BandInfo

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch {
		case key == "BAND_NAME":
			s.Bands = append(s.Bands, descriptor.BandInfo{Name: val})
			curBand = &s.Bands[len(s.Bands)-1]
		case key == "PROJECTION_TYPE":
			s.Projection = parseProjectionName(val)
		case key == "DATUM_CODE":
			s.DatumCode = atoi(val)
		case key == "ZONE_CODE":
			s.ZoneCode = atoi(val)
		case strings.HasPrefix(key, "PROJECTION_PARAMETER_"):
			idx := atoi(strings.TrimPrefix(key, "PROJECTION_PARAMETER_"))
			if idx >= 0 && idx < 15 {
				s.ProjectionParameters[idx] = atof(val)
			}
		case key == "HORIZ_TILE":
			s.Horiz = atoi(val)
			s.HasTile = true
		case key == "VERT_TILE":
			s.Vert = atoi(val)
			s.HasTile = true
		case key == "NORTH_BOUND":
			setCornerBound(s, 'N', atof(val))
		case key == "SOUTH_BOUND":
			setCornerBound(s, 'S', atof(val))
		case key == "EAST_BOUND":
			setCornerBound(s, 'E', atof(val))
		case key == "WEST_BOUND":
			setCornerBound(s, 'W', atof(val))
		case curBand != nil && key == "NLINES":
			curBand.NLines = atoi(val)
		case curBand != nil && key == "NSAMPLES":
			curBand.NSamples = atoi(val)
		case curBand != nil && key == "DATATYPE":
			curBand.InputDatatype = parseDatatypeName(val)
			curBand.OutputDatatype = curBand.InputDatatype
		case curBand != nil && key == "PIXEL_SIZE":
			curBand.PixelSize = atof(val)
			curBand.OutputPixelSize = curBand.PixelSize
		case curBand != nil && key == "BACKGROUND_FILL":
			curBand.BackgroundFill = atof(val)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.ReadError, "reading raw-binary header", err)
	}
	return s, nil
}

// ReadSidecarFile opens and parses path.
func ReadSidecarFile(path string) (*Sidecar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "opening raw-binary header", err).WithPath(path)
	}
	defer f.Close()
	return ReadSidecar(f)
}

func setCornerBound(s *Sidecar, which byte, v float64) {
	// Bounds are carried on Sidecar only for the planner's bounding box;
	// they are stashed in GeoCorners as North=UL.Y, South=LL.Y, East=UR.X
	// and West=UL.X, and openRawBinaryReader lifts them from there into the
	// tile descriptor's North/South/East/West.
	switch which {
	case 'N':
		s.GeoCorners[descriptor.UL].Y = v
	case 'S':
		s.GeoCorners[descriptor.LL].Y = v
	case 'E':
		s.GeoCorners[descriptor.UR].X = v
	case 'W':
		s.GeoCorners[descriptor.UL].X = v
	}
}

// WriteSidecar writes a raw-binary .hdr file describing m, per
// OutputHdrMosaic: coord_origin is always upper-left, every band is marked
// selected in the written header regardless of the run's -s subset.
func WriteSidecar(w io.Writer, m *descriptor.MosaicDescriptor) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "PROJECTION_TYPE = %s\n", m.Projection)
	fmt.Fprintf(bw, "DATUM_CODE = %d\n", m.DatumCode)
	fmt.Fprintf(bw, "ZONE_CODE = %d\n", m.ZoneCode)
	for i, p := range m.ProjectionParameters {
		fmt.Fprintf(bw, "PROJECTION_PARAMETER_%d = %v\n", i, p)
	}
	fmt.Fprintf(bw, "COORD_ORIGIN = UL\n")
	fmt.Fprintf(bw, "NORTH_BOUND = %v\n", m.North)
	fmt.Fprintf(bw, "SOUTH_BOUND = %v\n", m.South)
	fmt.Fprintf(bw, "EAST_BOUND = %v\n", m.East)
	fmt.Fprintf(bw, "WEST_BOUND = %v\n", m.West)

	for _, b := range m.Bands {
		fmt.Fprintf(bw, "BAND_NAME = %s\n", b.Name)
		fmt.Fprintf(bw, "SELECTED = 1\n")
		fmt.Fprintf(bw, "NLINES = %d\n", b.NLines)
		fmt.Fprintf(bw, "NSAMPLES = %d\n", b.NSamples)
		fmt.Fprintf(bw, "DATATYPE = %s\n", datatypeName(b.InputDatatype))
		fmt.Fprintf(bw, "PIXEL_SIZE = %v\n", b.PixelSize)
		fmt.Fprintf(bw, "BACKGROUND_FILL = %v\n", b.BackgroundFill)
	}

	return bw.Flush()
}

// WriteSidecarFile writes m's header to path.
func WriteSidecarFile(path string, m *descriptor.MosaicDescriptor) error {
	f, err := os.Create(path)
	if err != nil {
		return mosaicerr.Wrap(mosaicerr.OpenWrite, "creating raw-binary header", err).WithPath(path)
	}
	defer f.Close()
	return WriteSidecar(f, m)
}

func parseProjectionName(s string) descriptor.ProjectionCode {
	switch strings.ToUpper(s) {
	case "SIN":
		return descriptor.ProjSIN
	case "ISIN":
		return descriptor.ProjISIN
	case "UTM":
		return descriptor.ProjUTM
	case "SPCS":
		return descriptor.ProjSPCS
	case "ALBERS":
		return descriptor.ProjALBERS
	case "LAMCC":
		return descriptor.ProjLAMCC
	default:
		return descriptor.ProjGEO
	}
}

func datatypeName(d descriptor.DataType) string {
	switch d {
	case descriptor.Int8:
		return "INT8"
	case descriptor.UInt8:
		return "UINT8"
	case descriptor.Int16:
		return "INT16"
	case descriptor.UInt16:
		return "UINT16"
	case descriptor.Int32:
		return "INT32"
	case descriptor.UInt32:
		return "UINT32"
	case descriptor.Float32:
		return "FLOAT32"
	default:
		return "UINT8"
	}
}

func parseDatatypeName(s string) descriptor.DataType {
	switch strings.ToUpper(s) {
	case "INT8":
		return descriptor.Int8
	case "UINT8":
		return descriptor.UInt8
	case "INT16":
		return descriptor.Int16
	case "UINT16":
		return descriptor.UInt16
	case "INT32":
		return descriptor.Int32
	case "UINT32":
		return descriptor.UInt32
	case "FLOAT32":
		return descriptor.Float32
	default:
		return descriptor.UInt8
	}
}

func atoi(s string) int {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return v
}

func atof(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v
}
