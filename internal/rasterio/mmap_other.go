//go:build !unix

// Non-unix fallback for rawbinary.go's tile reader; mirrors
// internal/cog/mmap_other.go's build-tag split (pspoerri-geotiff2pmtiles).
package rasterio

import "github.com/usgs-eros/mrtmosaic/internal/mosaicerr"

func mmapTile(path string, fd uintptr, size int) ([]byte, error) {
	return nil, mosaicerr.New(mosaicerr.OpenRead, "memory mapping is not supported on this platform").WithPath(path)
}

func munmapTile(data []byte) error {
	return nil
}
