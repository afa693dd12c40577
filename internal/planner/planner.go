// Package planner computes the mosaic's bounding H×V tile grid and the
// output MosaicDescriptor from a compatible set of input tiles.
//
// Grounded on SortProducts (original_source/mrt/mrtmosaic/mosaic.c): the
// min/max (h,v) scan with representative-tile tracking, the sparse
// tile_array allocation, the bounding-box extremum scan, and the
// UL/UR/LL/LR projected-corner assembly from the representative tiles
// followed by per-corner inverse projection with the SIN/ISIN longitude-wrap
// fallback. BoundLong is the original's BOUND_LONG constant.
package planner

import (
	"errors"

	"gonum.org/v1/gonum/floats"

	"github.com/usgs-eros/mrtmosaic/internal/coord"
	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// BoundLong is the longitude magnitude used to clamp a corner whose inverse
// projection failed, per SPEC_FULL.md §4.3 step 6.
const BoundLong = 180.0

// Result is the planner's output: the TileGrid (sparse input index mapping)
// alongside the MosaicDescriptor describing the assembled output.
type Result struct {
	Grid    *descriptor.TileGrid
	Mosaic  *descriptor.MosaicDescriptor
}

// Plan computes the mosaic geometry for a set of already-compatibility-
// checked tiles (internal/compat.Check must be called first; Plan does not
// re-verify compatibility).
func Plan(tiles []*descriptor.TileDescriptor, outputFilename string) (*Result, error) {
	if len(tiles) == 0 {
		return nil, mosaicerr.New(mosaicerr.Geometry, "no input tiles to mosaic")
	}

	minH, maxH := tiles[0].Horiz, tiles[0].Horiz
	minV, maxV := tiles[0].Vert, tiles[0].Vert
	idxMinH, idxMaxH, idxMinV, idxMaxV := 0, 0, 0, 0

	for i, t := range tiles {
		if t.Horiz < minH {
			minH, idxMinH = t.Horiz, i
		}
		if t.Horiz > maxH {
			maxH, idxMaxH = t.Horiz, i
		}
		if t.Vert < minV {
			minV, idxMinV = t.Vert, i
		}
		if t.Vert > maxV {
			maxV, idxMaxV = t.Vert, i
		}
	}

	h := maxH - minH + 1
	v := maxV - minV + 1
	if h < 1 || v < 1 {
		return nil, mosaicerr.New(mosaicerr.Geometry, "invalid tile range: no valid min/max tile bounds")
	}

	grid := descriptor.NewTileGrid(h, v)
	for i, t := range tiles {
		grid.Set(t.Vert-minV, t.Horiz-minH, i)
	}

	base := &descriptor.MosaicDescriptor{TileDescriptor: *tiles[0]}
	mosaic := base.Clone(outputFilename)
	mosaic.Horiz = h
	mosaic.Vert = v
	for i := range mosaic.Bands {
		mosaic.Bands[i].NLines *= v
		mosaic.Bands[i].NSamples *= h
	}

	mosaic.North, mosaic.South = -90, 90
	mosaic.East, mosaic.West = -180, 180
	for _, t := range tiles {
		if t.North > mosaic.North {
			mosaic.North = t.North
		}
		if t.South < mosaic.South {
			mosaic.South = t.South
		}
		if t.East > mosaic.East {
			mosaic.East = t.East
		}
		if t.West < mosaic.West {
			mosaic.West = t.West
		}
	}

	mosaic.ProjCorners[descriptor.UL] = descriptor.Point2D{
		X: tiles[idxMinH].ProjCorners[descriptor.UL].X,
		Y: tiles[idxMinV].ProjCorners[descriptor.UL].Y,
	}
	mosaic.ProjCorners[descriptor.UR] = descriptor.Point2D{
		X: tiles[idxMaxH].ProjCorners[descriptor.UR].X,
		Y: tiles[idxMinV].ProjCorners[descriptor.UR].Y,
	}
	mosaic.ProjCorners[descriptor.LL] = descriptor.Point2D{
		X: tiles[idxMinH].ProjCorners[descriptor.LL].X,
		Y: tiles[idxMaxV].ProjCorners[descriptor.LL].Y,
	}
	mosaic.ProjCorners[descriptor.LR] = descriptor.Point2D{
		X: tiles[idxMaxH].ProjCorners[descriptor.LR].X,
		Y: tiles[idxMaxV].ProjCorners[descriptor.LR].Y,
	}

	if err := computeGeoCorners(mosaic); err != nil {
		return nil, err
	}

	return &Result{Grid: grid, Mosaic: mosaic}, nil
}

// computeGeoCorners inverse-projects each projected corner to (lon, lat),
// applying the SIN/ISIN longitude-wrap fallback on a range error and the
// bounding-box fallback for any other projection, per SPEC_FULL.md §4.3
// step 6 / the original's GetInputGeoCornerMosaic call sites.
func computeGeoCorners(m *descriptor.MosaicDescriptor) error {
	proj := coord.ForCode(m.Projection)
	isModisProjection := m.Projection == descriptor.ProjSIN || m.Projection == descriptor.ProjISIN

	anyFailed := false
	for c := descriptor.UL; c <= descriptor.LR; c++ {
		pc := m.ProjCorners[c]

		var lon, lat float64
		var err error
		if proj != nil {
			lon, lat, err = proj.ToGeographic(pc.X, pc.Y, m.ProjectionParameters)
		} else {
			err = errors.New("no inverse projection implementation for this projection code")
		}

		if err == nil {
			m.GeoCorners[c] = descriptor.Point2D{X: lon, Y: clampLat(lat)}
			continue
		}

		anyFailed = true
		var rangeErr *coord.RangeError
		if isModisProjection && errors.As(err, &rangeErr) {
			m.ModisTile = true
			if lon > 0 {
				lon = -BoundLong
			} else {
				lon = BoundLong
			}
			m.GeoCorners[c] = descriptor.Point2D{X: lon, Y: clampLat(lat)}
			continue
		}

		if !isModisProjection {
			break
		}
		return mosaicerr.New(mosaicerr.Geometry, "inverse projection failed at a corner")
	}

	if anyFailed && !isModisProjection {
		if m.North == 0 && m.South == 0 && m.East == 0 && m.West == 0 {
			return mosaicerr.New(mosaicerr.Geometry,
				"inverse projection failed and no bounding-box fallback is available (all-zero bounds)")
		}
		m.GeoCorners[descriptor.UL] = descriptor.Point2D{X: m.West, Y: m.North}
		m.GeoCorners[descriptor.UR] = descriptor.Point2D{X: m.East, Y: m.North}
		m.GeoCorners[descriptor.LL] = descriptor.Point2D{X: m.West, Y: m.South}
		m.GeoCorners[descriptor.LR] = descriptor.Point2D{X: m.East, Y: m.South}
	}

	return nil
}

// clampLat ensures a computed latitude stays within the valid range; used
// defensively where floating point drift could push it a hair past +/-90
// before formatting. gonum/floats.Max/Min (DOMAIN STACK) stand in for the
// two-argument math.Max/Min the original relied on.
func clampLat(lat float64) float64 {
	return floats.Max([]float64{-90, floats.Min([]float64{90, lat})})
}
