package tilesutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
)

func TestDetermineTilesRawBinaryFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	files := []TileFile{
		{Path: filepath.Join(dir, "MOD09.h10v05.dat"), FileType: descriptor.RawBinary},
		{Path: filepath.Join(dir, "MOD09.h11v05.dat"), FileType: descriptor.RawBinary},
	}
	outPath := filepath.Join(dir, "tile.txt")

	require.NoError(t, DetermineTiles(files, outPath))

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "10, 5\n11, 5\n", string(got))
}

func TestDetermineTilesUnparseableNameFails(t *testing.T) {
	dir := t.TempDir()
	files := []TileFile{{Path: filepath.Join(dir, "no_tile_info.dat"), FileType: descriptor.RawBinary}}
	outPath := filepath.Join(dir, "tile.txt")

	assert.Error(t, DetermineTiles(files, outPath))
}

func TestWriteHeaderWritesSidecarOnly(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "mosaic.hdr")

	m := &descriptor.MosaicDescriptor{}
	m.Projection = descriptor.ProjSIN
	m.Bands = []descriptor.BandInfo{{Name: "b0", NLines: 4, NSamples: 4, InputDatatype: descriptor.UInt8}}

	require.NoError(t, WriteHeader(m, outPath))

	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	// No pixel-data sidecar should exist alongside a -h run.
	_, err = os.Stat(outPath + ".data")
	assert.Error(t, err, "WriteHeader must not create a pixel-data file")
}
