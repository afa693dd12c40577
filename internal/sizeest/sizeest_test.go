package sizeest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

func mosaicWithBands(bands ...descriptor.BandInfo) *descriptor.MosaicDescriptor {
	m := &descriptor.MosaicDescriptor{}
	m.Bands = bands
	return m
}

func TestEstimateSelectedBandsOnly(t *testing.T) {
	m := mosaicWithBands(
		descriptor.BandInfo{NLines: 100, NSamples: 100, OutputDatatype: descriptor.UInt8, Selected: true},
		descriptor.BandInfo{NLines: 100, NSamples: 100, OutputDatatype: descriptor.Float32, Selected: false},
	)
	assert.Equal(t, int64(100*100*1), Estimate(m))
}

func TestEstimateSumsBytesPerSample(t *testing.T) {
	m := mosaicWithBands(
		descriptor.BandInfo{NLines: 10, NSamples: 10, OutputDatatype: descriptor.Int16, Selected: true},
		descriptor.BandInfo{NLines: 10, NSamples: 10, OutputDatatype: descriptor.Float32, Selected: true},
	)
	assert.Equal(t, int64(10*10*2+10*10*4), Estimate(m))
}

func TestCheckExceedsCeiling(t *testing.T) {
	// 50000 x 50000 x 4 bytes = 10,000,000,000 > 2^31-1.
	m := mosaicWithBands(descriptor.BandInfo{NLines: 50000, NSamples: 50000, OutputDatatype: descriptor.Float32, Selected: true})
	_, err := Check(m)
	require.Error(t, err)

	var me *mosaicerr.MosaicError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, mosaicerr.SizeExceeded, me.Kind)
}

func TestCheckWarnsNearCeiling(t *testing.T) {
	// Choose dims so the total is within WarnMarginBytes of the ceiling.
	total := HDFv4MaxBytes - 1000
	m := mosaicWithBands(descriptor.BandInfo{NLines: 1, NSamples: int(total), OutputDatatype: descriptor.UInt8, Selected: true})
	warning, err := Check(m)
	require.NoError(t, err)
	assert.NotEmpty(t, warning)
}

func TestCheckWellBelowCeilingIsClean(t *testing.T) {
	m := mosaicWithBands(descriptor.BandInfo{NLines: 10, NSamples: 10, OutputDatatype: descriptor.UInt8, Selected: true})
	warning, err := Check(m)
	require.NoError(t, err)
	assert.Empty(t, warning)
}
