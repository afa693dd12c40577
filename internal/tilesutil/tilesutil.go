// Package tilesutil implements the two read-only "short-circuit" run modes
// that bypass the full mosaic pipeline: -t (tile-number determination) and
// -h (header-only output), grounded on determine_tile_numbers.c and
// output_hdr_mosaic.c (original_source/mrt/mrtmosaic).
package tilesutil

import (
	"bufio"
	"fmt"
	"os"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
	"github.com/usgs-eros/mrtmosaic/internal/rasterio"
)

// TileFile identifies one input file and the file type it should be read
// as, so DetermineTiles can dispatch between opening an HDF-EOS input with
// its reader and parsing a raw-binary filename's h##v## fragment. The
// HDF-EOS reader itself takes the tile number from the h##v## fragment of
// the file's name; the HDF-EOS metadata carries no tile number.
type TileFile struct {
	Path     string
	FileType descriptor.FileType
}

// DetermineTiles implements the -t flag: for each input, in order, resolve
// its (horiz, vert) tile number and write one "H, V\n" line to out. HDF-EOS
// inputs report the (Horiz, Vert) attached by the metadata reader;
// raw-binary inputs fall back to parsing the filename's h##v## fragment.
func DetermineTiles(files []TileFile, outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return mosaicerr.Wrap(mosaicerr.OpenWrite, "creating tile number output", err).WithPath(outPath)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, tf := range files {
		horiz, vert, err := resolveTileNumber(tf)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%d, %d\n", horiz, vert); err != nil {
			return mosaicerr.Wrap(mosaicerr.WriteError, "writing tile number line", err).WithPath(outPath)
		}
	}
	return w.Flush()
}

func resolveTileNumber(tf TileFile) (horiz, vert int, err error) {
	switch tf.FileType {
	case descriptor.HDFEOS:
		r, err := rasterio.OpenReader(tf.Path, descriptor.HDFEOS, nil)
		if err != nil {
			return 0, 0, err
		}
		defer r.Close()
		desc := r.Descriptor()
		if !desc.HasTile {
			return 0, 0, mosaicerr.New(mosaicerr.TileParse, "no h##v## tile fragment in HDF-EOS filename").WithPath(tf.Path)
		}
		return desc.Horiz, desc.Vert, nil
	default:
		return rasterio.ParseTileNumberFromFilename(tf.Path)
	}
}

// WriteHeader implements the -h flag: write the raw-binary .hdr sidecar
// describing m to outPath without touching any pixel data, per
// OutputHdrMosaic's header-only early-return path.
func WriteHeader(m *descriptor.MosaicDescriptor, outPath string) error {
	return rasterio.WriteSidecarFile(outPath, m)
}
