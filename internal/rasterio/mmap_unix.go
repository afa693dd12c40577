//go:build unix

// Platform mmap backing for rawbinary.go's tile reader, in the spirit of
// internal/cog/mmap_unix.go (pspoerri-geotiff2pmtiles): a MODIS raw-binary
// tile is read row-by-row without ever needing the whole file resident, the
// same access pattern the teacher's COG reader relies on for GeoTIFFs.
package rasterio

import (
	"syscall"

	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// mmapTile maps path's already-open fd read-only, wrapping any syscall
// failure as a MosaicError so callers never see a bare errno.
func mmapTile(path string, fd uintptr, size int) ([]byte, error) {
	data, err := syscall.Mmap(int(fd), 0, size, syscall.PROT_READ, syscall.MAP_PRIVATE)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "mmapping raw-binary tile", err).WithPath(path)
	}
	return data, nil
}

func munmapTile(data []byte) error {
	return syscall.Munmap(data)
}
