package rasterio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
)

func TestRawBinaryWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "h10v05.out")

	mosaic := &descriptor.MosaicDescriptor{}
	mosaic.Bands = []descriptor.BandInfo{
		{Name: "b0", NLines: 2, NSamples: 3, OutputDatatype: descriptor.UInt8, Selected: true},
	}

	w, err := openRawBinaryWriter(path, mosaic)
	require.NoError(t, err)
	require.NoError(t, w.WriteRow("", "b0", 0, []float64{1, 2, 3}))
	require.NoError(t, w.WriteRow("", "b0", 1, []float64{4, 5, 6}))
	require.NoError(t, w.Close())

	meta := &Sidecar{Bands: []descriptor.BandInfo{
		{Name: "b0", NLines: 2, NSamples: 3, InputDatatype: descriptor.UInt8},
	}}
	r, err := openRawBinaryReader(path, meta)
	require.NoError(t, err)
	defer r.Close()

	row0, err := r.ReadRow(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, row0)

	row1, err := r.ReadRow(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6}, row1)
}

func TestHDFEOSWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mosaic.hdf")

	mosaic := &descriptor.MosaicDescriptor{}
	mosaic.Bands = []descriptor.BandInfo{
		{Name: "b0", NLines: 2, NSamples: 2, OutputDatatype: descriptor.Float32, Selected: true, PixelSize: 1000},
	}

	w, err := openHDFEOSWriter(path, mosaic)
	require.NoError(t, err)
	require.NoError(t, w.CreateGrid("MOD_Grid_1km", 2, 2, descriptor.Point2D{}, descriptor.Point2D{}, descriptor.ProjSIN, [15]float64{}, 0))
	require.NoError(t, w.CreateField("MOD_Grid_1km", mosaic.Bands[0]))
	require.NoError(t, w.WriteRow("MOD_Grid_1km", "b0", 0, []float64{1.5, 2.5}))
	require.NoError(t, w.WriteRow("MOD_Grid_1km", "b0", 1, []float64{3.5, 4.5}))
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
	_, err = os.Stat(path + dataSuffix)
	require.NoError(t, err)

	r, err := openHDFEOSReader(path)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Descriptor().Bands, 1)
	row0, err := r.ReadRow(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, row0)
}

func TestParseTileNumberFromFilename(t *testing.T) {
	tests := []struct {
		name      string
		wantH     int
		wantV     int
		wantError bool
	}{
		{"MOD09.h10v05.hdf", 10, 5, false},
		{"tile_h00v17.out", 0, 17, false},
		{"no_tile_info.out", 0, 0, true},
	}
	for _, tt := range tests {
		h, v, err := ParseTileNumberFromFilename(tt.name)
		if tt.wantError {
			assert.Errorf(t, err, tt.name)
			continue
		}
		require.NoErrorf(t, err, tt.name)
		assert.Equal(t, tt.wantH, h, tt.name)
		assert.Equal(t, tt.wantV, v, tt.name)
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.hdr")

	m := &descriptor.MosaicDescriptor{}
	m.Projection = descriptor.ProjISIN
	m.DatumCode = 12
	m.North, m.South, m.East, m.West = 10, -10, 20, -20
	m.Bands = []descriptor.BandInfo{
		{Name: "b0", NLines: 20, NSamples: 20, InputDatatype: descriptor.UInt8, PixelSize: 1000, BackgroundFill: 255},
	}

	require.NoError(t, WriteSidecarFile(path, m))

	got, err := ReadSidecarFile(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor.ProjISIN, got.Projection)
	assert.Equal(t, 12, got.DatumCode)
	require.Len(t, got.Bands, 1)
	assert.Equal(t, 20, got.Bands[0].NLines)
	assert.Equal(t, 255.0, got.Bands[0].BackgroundFill)
}
