// Package sizeest predicts an HDF-EOS mosaic output's file size and guards
// against the HDF v4 2 GiB ceiling.
//
// Grounded on EstimateFileSize (original_source/mrt/mrtmosaic/mosaic.c):
// sums nlines*nsamples*sizeof(output_datatype) over selected bands only.
// Thousands-separator formatting uses dustin/go-humanize's humanize.Comma,
// a direct corpus-grounded match for the spec's "format with thousands
// separators" requirement (DOMAIN STACK, SPEC_FULL.md).
package sizeest

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// HDFv4MaxBytes is the HDF v4 file-size ceiling, 2^31 - 1 bytes.
const HDFv4MaxBytes = int64(1<<31) - 1

// WarnMarginBytes is the distance from the ceiling at which Check
// returns a non-fatal warning instead of silent success.
const WarnMarginBytes = 150 * 1024

// Estimate sums nlines*nsamples*bytesize over the mosaic's selected bands.
func Estimate(m *descriptor.MosaicDescriptor) int64 {
	var total int64
	for _, b := range m.Bands {
		if !b.Selected {
			continue
		}
		total += int64(b.NLines) * int64(b.NSamples) * int64(b.OutputDatatype.ByteSize())
	}
	return total
}

// Check estimates m's output size and returns a non-empty warning message
// when within WarnMarginBytes of the ceiling, or a fatal SizeExceeded error
// when the ceiling is exceeded. Only meaningful for HDF-EOS outputs; the
// caller (cmd/mrtmosaic) skips this check entirely for raw-binary output,
// which has no comparable per-file size limit.
func Check(m *descriptor.MosaicDescriptor) (warning string, err error) {
	total := Estimate(m)

	if total > HDFv4MaxBytes {
		return "", mosaicerr.New(mosaicerr.SizeExceeded,
			fmt.Sprintf("estimated output size %s bytes exceeds the HDF v4 limit of %s bytes",
				humanize.Comma(total), humanize.Comma(HDFv4MaxBytes)))
	}

	if HDFv4MaxBytes-total <= WarnMarginBytes {
		return fmt.Sprintf("estimated output size %s bytes is within %s bytes of the HDF v4 limit",
			humanize.Comma(total), humanize.Comma(int64(WarnMarginBytes))), nil
	}

	return "", nil
}
