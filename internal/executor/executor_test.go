package executor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/rasterio"
)

// writeRawTile writes a minimal raw-binary tile file (band-major,
// row-major uint8 samples, no header — the sidecar carries dimensions) for
// use as executor test fixtures.
func writeRawTile(t *testing.T, dir, name string, rows, cols int, fill func(r, c int) byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	buf := make([]byte, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			buf[r*cols+c] = fill(r, c)
		}
	}
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func tileSidecar(rows, cols int, fill float64) *rasterio.Sidecar {
	return &rasterio.Sidecar{
		Bands: []descriptor.BandInfo{
			{Name: "b0", NLines: rows, NSamples: cols, InputDatatype: descriptor.UInt8, OutputDatatype: descriptor.UInt8, BackgroundFill: fill, Selected: true, PixelSize: 1000},
		},
	}
}

func mosaicFor(rows, cols, h, v int, fill float64) *descriptor.MosaicDescriptor {
	m := &descriptor.MosaicDescriptor{}
	m.Bands = []descriptor.BandInfo{
		{Name: "b0", NLines: rows * v, NSamples: cols * h, InputDatatype: descriptor.UInt8, OutputDatatype: descriptor.UInt8, BackgroundFill: fill, Selected: true, PixelSize: 1000},
	}
	return m
}

func readOutput(t *testing.T, path string, rows, cols int) [][]float64 {
	t.Helper()
	meta := &rasterio.Sidecar{Bands: []descriptor.BandInfo{
		{Name: "b0", NLines: rows, NSamples: cols, InputDatatype: descriptor.UInt8},
	}}
	r, err := rasterio.OpenReader(path, descriptor.RawBinary, meta)
	require.NoError(t, err)
	defer r.Close()

	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row, err := r.ReadRow(0, i)
		require.NoErrorf(t, err, "ReadRow(%d)", i)
		out[i] = row
	}
	return out
}

func TestIdentityMosaicSingleTile(t *testing.T) {
	dir := t.TempDir()
	tilePath := writeRawTile(t, dir, "h10v05", 4, 4, func(r, c int) byte { return byte(r*4 + c) })

	grid := descriptor.NewTileGrid(1, 1)
	grid.Set(0, 0, 0)
	mosaic := mosaicFor(4, 4, 1, 1, 255)
	outPath := filepath.Join(dir, "out.raw")

	err := Run(Options{
		Inputs:         []InputSource{{Path: tilePath, Sidecar: tileSidecar(4, 4, 255)}},
		InputFileType:  descriptor.RawBinary,
		Grid:           grid,
		Mosaic:         mosaic,
		OutputPath:     outPath,
		OutputFileType: descriptor.RawBinary,
	})
	require.NoError(t, err)

	got := readOutput(t, outPath, 4, 4)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			assert.Equalf(t, float64(r*4+c), got[r][c], "output[%d][%d]", r, c)
		}
	}
}

func TestFillCompletenessSparseGrid(t *testing.T) {
	dir := t.TempDir()
	const rows, cols = 2, 2
	const fill = 200.0

	tA := writeRawTile(t, dir, "h10v05", rows, cols, func(r, c int) byte { return 1 })
	tB := writeRawTile(t, dir, "h11v05", rows, cols, func(r, c int) byte { return 2 })
	tC := writeRawTile(t, dir, "h10v06", rows, cols, func(r, c int) byte { return 3 })

	// Grid: (v=0,h=0)=A (v=0,h=1)=B (v=1,h=0)=C (v=1,h=1)=empty.
	grid := descriptor.NewTileGrid(2, 2)
	grid.Set(0, 0, 0)
	grid.Set(0, 1, 1)
	grid.Set(1, 0, 2)

	mosaic := mosaicFor(rows, cols, 2, 2, fill)
	outPath := filepath.Join(dir, "out.raw")

	sc := tileSidecar(rows, cols, fill)
	err := Run(Options{
		Inputs: []InputSource{
			{Path: tA, Sidecar: sc},
			{Path: tB, Sidecar: sc},
			{Path: tC, Sidecar: sc},
		},
		InputFileType:  descriptor.RawBinary,
		Grid:           grid,
		Mosaic:         mosaic,
		OutputPath:     outPath,
		OutputFileType: descriptor.RawBinary,
	})
	require.NoError(t, err)

	got := readOutput(t, outPath, rows*2, cols*2)

	// Bottom-right 2x2 block (rows rows..2rows-1, cols cols..2cols-1) must
	// be entirely the background fill value.
	for r := rows; r < rows*2; r++ {
		for c := cols; c < cols*2; c++ {
			assert.Equalf(t, fill, got[r][c], "output[%d][%d]", r, c)
		}
	}

	// Top-left block must be tile A's value (1), top-right tile B's (2).
	assert.Equal(t, 1.0, got[0][0])
	assert.Equal(t, 2.0, got[0][cols])
}

func TestRowOrderLeftPrecedesRight(t *testing.T) {
	dir := t.TempDir()
	const rows, cols = 1, 3
	tA := writeRawTile(t, dir, "h10v05", rows, cols, func(r, c int) byte { return byte(10 + c) })
	tB := writeRawTile(t, dir, "h11v05", rows, cols, func(r, c int) byte { return byte(20 + c) })

	grid := descriptor.NewTileGrid(2, 1)
	grid.Set(0, 0, 0)
	grid.Set(0, 1, 1)

	mosaic := mosaicFor(rows, cols, 2, 1, 0)
	outPath := filepath.Join(dir, "out.raw")

	sc := tileSidecar(rows, cols, 0)
	err := Run(Options{
		Inputs:         []InputSource{{Path: tA, Sidecar: sc}, {Path: tB, Sidecar: sc}},
		InputFileType:  descriptor.RawBinary,
		Grid:           grid,
		Mosaic:         mosaic,
		OutputPath:     outPath,
		OutputFileType: descriptor.RawBinary,
	})
	require.NoError(t, err)

	got := readOutput(t, outPath, rows, cols*2)
	assert.Equal(t, []float64{10, 11, 12, 20, 21, 22}, got[0])
}
