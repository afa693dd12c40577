package rasterio

import (
	"fmt"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

func errUnsupportedFileType(ft descriptor.FileType) error {
	return mosaicerr.New(mosaicerr.General, fmt.Sprintf("unsupported file type %v", ft))
}
