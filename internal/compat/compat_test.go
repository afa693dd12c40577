package compat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

func validTile(name string, horiz, vert int) *descriptor.TileDescriptor {
	t := &descriptor.TileDescriptor{
		Filename: name,
		FileType: descriptor.RawBinary,
		Horiz:    horiz,
		Vert:     vert,
		Bands: []descriptor.BandInfo{
			{Name: "b0", NLines: 10, NSamples: 10, InputDatatype: descriptor.UInt8, PixelSize: 1000, Rank: 2},
		},
		Projection: descriptor.ProjSIN,
		DatumCode:  12,
	}
	t.ProjectionParameters[0] = 6371007.181
	return t
}

func TestCheckAcceptsValidSet(t *testing.T) {
	tiles := []*descriptor.TileDescriptor{
		validTile("a.hdf", 10, 5),
		validTile("b.hdf", 11, 5),
		validTile("c.hdf", 10, 6),
	}
	assert.NoError(t, Check(tiles))
}

func TestCheckAcceptsAnyPermutation(t *testing.T) {
	base := []*descriptor.TileDescriptor{
		validTile("a.hdf", 10, 5),
		validTile("b.hdf", 11, 5),
		validTile("c.hdf", 10, 6),
	}
	perms := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}}
	for _, perm := range perms {
		tiles := make([]*descriptor.TileDescriptor, len(perm))
		for i, p := range perm {
			tiles[i] = base[p]
		}
		assert.NoErrorf(t, Check(tiles), "permutation %v", perm)
	}
}

func TestCheckRejectsPixelSizeMismatch(t *testing.T) {
	a := validTile("a.hdf", 10, 5)
	b := validTile("b.hdf", 11, 5)
	b.Bands[0].PixelSize = 1000.01

	err := Check([]*descriptor.TileDescriptor{a, b})
	require.Error(t, err)

	var me *mosaicerr.MosaicError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, mosaicerr.MismatchPixelSize, me.Kind)
	assert.Equal(t, 0, me.Band)
	assert.Equal(t, "b.hdf", me.Path)
}

func TestCheckRejectsNonSinIsinProjection(t *testing.T) {
	a := validTile("a.hdf", 10, 5)
	a.Projection = descriptor.ProjUTM

	err := Check([]*descriptor.TileDescriptor{a})
	assert.Error(t, err)
}

func TestCheckRejectsDatumMismatch(t *testing.T) {
	a := validTile("a.hdf", 10, 5)
	b := validTile("b.hdf", 11, 5)
	b.DatumCode = 99

	err := Check([]*descriptor.TileDescriptor{a, b})
	var me *mosaicerr.MosaicError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, mosaicerr.MismatchDatum, me.Kind)
}

func TestCheckRejectsProjectionParamMismatch(t *testing.T) {
	a := validTile("a.hdf", 10, 5)
	b := validTile("b.hdf", 11, 5)
	b.ProjectionParameters[3] = 42

	err := Check([]*descriptor.TileDescriptor{a, b})
	var me *mosaicerr.MosaicError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, mosaicerr.MismatchProjectionParams, me.Kind)
}
