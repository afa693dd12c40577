// Package compat verifies that a heterogeneous set of input tiles can
// legally be mosaicked together.
//
// Grounded on CompareProducts (original_source/mrt/mrtmosaic/mosaic.c),
// which walks every input past the first comparing it field-by-field
// against input 0 and reports the specific mismatched field, band index,
// and both filenames.
package compat

import (
	"fmt"
	"math"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// pixelSizeTolerance mirrors the original's fabs(diff) > 0.000001 check.
const pixelSizeTolerance = 0.000001

// Check verifies every tile in tiles against tiles[0]. An empty slice is
// accepted; a single tile is checked only for a SIN/ISIN projection.
func Check(tiles []*descriptor.TileDescriptor) error {
	if len(tiles) == 0 {
		return nil
	}
	ref := tiles[0]

	if ref.Projection != descriptor.ProjSIN && ref.Projection != descriptor.ProjISIN {
		return mismatch(mosaicerr.MismatchProjection, ref.Filename, ref.Filename, -1,
			fmt.Sprintf("projection %v is neither SIN nor ISIN", ref.Projection))
	}

	for i := 1; i < len(tiles); i++ {
		cur := tiles[i]
		if err := compareOne(ref, cur); err != nil {
			return err
		}
	}
	return nil
}

func compareOne(ref, cur *descriptor.TileDescriptor) error {
	if cur.FileType != ref.FileType {
		return mismatch(mosaicerr.MismatchFileType, ref.Filename, cur.Filename, -1,
			fmt.Sprintf("%v vs %v", ref.FileType, cur.FileType))
	}
	if len(cur.Bands) != len(ref.Bands) {
		return mismatch(mosaicerr.MismatchBandCount, ref.Filename, cur.Filename, -1,
			fmt.Sprintf("%d vs %d", len(ref.Bands), len(cur.Bands)))
	}

	for b := range ref.Bands {
		rb, cb := ref.Bands[b], cur.Bands[b]
		if cb.NLines != rb.NLines || cb.NSamples != rb.NSamples {
			return mismatch(mosaicerr.MismatchDims, ref.Filename, cur.Filename, b,
				fmt.Sprintf("%dx%d vs %dx%d", rb.NLines, rb.NSamples, cb.NLines, cb.NSamples))
		}
		if cb.InputDatatype != rb.InputDatatype {
			return mismatch(mosaicerr.MismatchDatatype, ref.Filename, cur.Filename, b,
				fmt.Sprintf("%v vs %v", rb.InputDatatype, cb.InputDatatype))
		}
		if math.Abs(cb.PixelSize-rb.PixelSize) > pixelSizeTolerance {
			return mismatch(mosaicerr.MismatchPixelSize, ref.Filename, cur.Filename, b,
				fmt.Sprintf("%v vs %v", rb.PixelSize, cb.PixelSize))
		}
		if cb.Rank != rb.Rank {
			return mismatch(mosaicerr.MismatchRank, ref.Filename, cur.Filename, b,
				fmt.Sprintf("%d vs %d", rb.Rank, cb.Rank))
		}
	}

	if cur.Projection != ref.Projection {
		return mismatch(mosaicerr.MismatchProjection, ref.Filename, cur.Filename, -1,
			fmt.Sprintf("%v vs %v", ref.Projection, cur.Projection))
	}
	if cur.Projection != descriptor.ProjSIN && cur.Projection != descriptor.ProjISIN {
		return mismatch(mosaicerr.MismatchProjection, ref.Filename, cur.Filename, -1,
			fmt.Sprintf("projection %v is neither SIN nor ISIN", cur.Projection))
	}
	for p := 0; p < 15; p++ {
		if cur.ProjectionParameters[p] != ref.ProjectionParameters[p] {
			return mismatch(mosaicerr.MismatchProjectionParams, ref.Filename, cur.Filename, -1,
				fmt.Sprintf("parameter %d: %v vs %v", p, ref.ProjectionParameters[p], cur.ProjectionParameters[p]))
		}
	}
	if cur.DatumCode != ref.DatumCode {
		return mismatch(mosaicerr.MismatchDatum, ref.Filename, cur.Filename, -1,
			fmt.Sprintf("%d vs %d", ref.DatumCode, cur.DatumCode))
	}

	return nil
}

func mismatch(kind mosaicerr.Kind, refFile, curFile string, band int, detail string) error {
	e := mosaicerr.New(kind, fmt.Sprintf("%s (comparing %s against %s)", detail, curFile, refFile))
	if band >= 0 {
		e = e.WithBand(band, kind.String())
	}
	return e.WithPath(curFile)
}
