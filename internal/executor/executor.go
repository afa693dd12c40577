// Package executor drives the band-major, row-major streaming mosaic
// loop: for each selected band, open a strip of input readers at a time,
// compose rows (filling background for absent tiles), and write to the
// output.
//
// Grounded on MosaicTiles (original_source/mrt/mrtmosaic/mosaic.c): the
// outer band loop, curr_resolution/change_resolution grid-boundary
// tracking (initialized to 0.0 per SPEC_FULL.md's OPEN QUESTION DECISIONS),
// the per-strip reader open/close discipline, and FillBufferBackground's
// per-empty-tile fill rule. Deliberately single-threaded per SPEC_FULL.md
// §5 — contrast with the teacher's concurrent internal/tile.Generate, whose
// goroutine-pool structure this package does NOT reuse.
package executor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
	"github.com/usgs-eros/mrtmosaic/internal/rasterio"
)

// InputSource supplies everything the executor needs to open one input
// tile: its path plus, for raw-binary inputs, the already-parsed sidecar
// header (nil for HDF-EOS, which carries its own metadata).
type InputSource struct {
	Path    string
	Sidecar *rasterio.Sidecar
}

// Options configures one mosaic run.
type Options struct {
	Inputs         []InputSource
	InputFileType  descriptor.FileType
	Grid           *descriptor.TileGrid
	Mosaic         *descriptor.MosaicDescriptor
	OutputPath     string
	OutputFileType descriptor.FileType
	Log            *logrus.Logger

	// SourceAttributes carries the first input tile's HDF-EOS attributes,
	// copied onto the output (with "Old"-prefixed lineage, see
	// rasterio.CopyAttributesWithLineage) when the output is HDF-EOS.
	SourceAttributes map[string]string
}

// Run executes the full mosaic: opens the output once, iterates every
// selected band, and for each, every vertical strip of input tiles, every
// row within that strip's tiles, and every horizontal tile position,
// composing one output row at a time.
func Run(opts Options) (err error) {
	writer, err := rasterio.OpenWriter(opts.OutputPath, opts.OutputFileType, opts.Mosaic)
	if err != nil {
		return err
	}
	writer.SetAttributes(opts.SourceAttributes)
	defer func() {
		if cerr := writer.Close(); err == nil {
			err = cerr
		}
	}()

	progress := NewProgress(opts.Log)

	currResolution := 0.0
	gridCounter := 0
	curGridName := ""

	for bandIdx := range opts.Mosaic.Bands {
		band := opts.Mosaic.Bands[bandIdx]
		if !band.Selected {
			continue
		}

		if band.PixelSize != currResolution {
			gridCounter++
			curGridName = fmt.Sprintf("Grid_%d", gridCounter)
			ul := opts.Mosaic.ProjCorners[descriptor.UL]
			lr := opts.Mosaic.ProjCorners[descriptor.LR]
			if err := writer.CreateGrid(curGridName, band.NSamples, band.NLines, ul, lr,
				opts.Mosaic.Projection, opts.Mosaic.ProjectionParameters, opts.Mosaic.ZoneCode); err != nil {
				return err
			}
			currResolution = band.PixelSize
		}

		if err := writer.CreateField(curGridName, band); err != nil {
			return err
		}

		if err := runBand(opts, writer, progress, bandIdx, band, curGridName); err != nil {
			return err
		}
	}

	return nil
}

func runBand(opts Options, writer rasterio.Writer, progress *Progress, bandIdx int, band descriptor.BandInfo, gridName string) error {
	v := opts.Grid.V
	h := opts.Grid.H
	if v == 0 || h == 0 {
		return mosaicerr.New(mosaicerr.Geometry, "tile grid has zero extent")
	}
	nrows := band.NLines / v
	ncols := band.NSamples / h

	for vi := 0; vi < v; vi++ {
		readers, err := openStrip(opts, vi, h)
		if err != nil {
			return err
		}

		progress.StartStrip(bandIdx, vi)
		for row := 0; row < nrows; row++ {
			outRow := make([]float64, 0, band.NSamples)
			for hi := 0; hi < h; hi++ {
				if readers[hi] == nil {
					for c := 0; c < ncols; c++ {
						outRow = append(outRow, band.BackgroundFill)
					}
					continue
				}
				vals, err := readers[hi].ReadRow(bandIdx, row)
				if err != nil {
					closeStrip(readers)
					return err
				}
				outRow = append(outRow, vals...)
			}

			outputRow := vi*nrows + row
			if err := writer.WriteRow(gridName, band.Name, outputRow, outRow); err != nil {
				closeStrip(readers)
				return mosaicerr.Wrap(mosaicerr.WriteError,
					fmt.Sprintf("writing row %d of band %q", outputRow, band.Name), err)
			}
			progress.Report(bandIdx, vi, row, nrows)
		}
		progress.FinishStrip(bandIdx, vi)

		closeStrip(readers)
	}
	return nil
}

// openStrip opens up to h input readers for vertical position vi, leaving a
// nil entry at positions the TileGrid marks empty.
func openStrip(opts Options, vi, h int) ([]rasterio.Reader, error) {
	readers := make([]rasterio.Reader, h)
	for hi := 0; hi < h; hi++ {
		idx, ok := opts.Grid.At(vi, hi)
		if !ok {
			continue
		}
		src := opts.Inputs[idx]
		r, err := rasterio.OpenReader(src.Path, opts.InputFileType, src.Sidecar)
		if err != nil {
			closeStrip(readers)
			return nil, err
		}
		readers[hi] = r
	}
	return readers, nil
}

func closeStrip(readers []rasterio.Reader) {
	for _, r := range readers {
		if r != nil {
			r.Close()
		}
	}
}
