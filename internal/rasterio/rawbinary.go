// rawBinaryReader/rawBinaryWriter implement the Reader/Writer capability
// interface over MRT's "raw binary" format: one flat file of band-major,
// row-major fixed-width samples, described by a Sidecar header (sidecar.go).
//
// The reader mmaps the file (mmap_unix.go/mmap_other.go, adapted from the
// teacher's cog.Reader) since a single MODIS tile file, let alone a mosaic
// input set, can be large enough that loading it whole isn't desirable; the
// writer preallocates the output file and writes each row with WriteAt at
// the offset computed from its band and row number.
package rasterio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

type rawBinaryReader struct {
	file *os.File
	data []byte
	desc *descriptor.TileDescriptor

	bandOffset []int64 // byte offset of each band's data within data
}

func openRawBinaryReader(path string, meta *Sidecar) (Reader, error) {
	if meta == nil {
		return nil, mosaicerr.New(mosaicerr.OpenRead, "raw-binary reader requires a parsed sidecar header").WithPath(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "opening raw-binary tile", err).WithPath(path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "statting raw-binary tile", err).WithPath(path)
	}

	var data []byte
	if info.Size() > 0 {
		data, err = mmapTile(path, f.Fd(), int(info.Size()))
		if err != nil {
			f.Close()
			return nil, err
		}
	}

	horiz, vert, tileErr := ParseTileNumberFromFilename(path)

	desc := &descriptor.TileDescriptor{
		Filename:             path,
		FileType:             descriptor.RawBinary,
		Bands:                meta.Bands,
		Projection:           meta.Projection,
		DatumCode:            meta.DatumCode,
		ZoneCode:             meta.ZoneCode,
		ProjectionParameters: meta.ProjectionParameters,
		ProjCorners:          meta.ProjCorners,
		GeoCorners:           meta.GeoCorners,
		North:                meta.GeoCorners[descriptor.UL].Y,
		South:                meta.GeoCorners[descriptor.LL].Y,
		East:                 meta.GeoCorners[descriptor.UR].X,
		West:                 meta.GeoCorners[descriptor.UL].X,
	}
	if meta.HasTile {
		desc.Horiz, desc.Vert, desc.HasTile = meta.Horiz, meta.Vert, true
	} else if tileErr == nil {
		desc.Horiz, desc.Vert, desc.HasTile = horiz, vert, true
	}

	offsets := make([]int64, len(meta.Bands))
	var running int64
	for i, b := range meta.Bands {
		offsets[i] = running
		running += int64(b.NLines) * int64(b.NSamples) * int64(b.InputDatatype.ByteSize())
	}

	return &rawBinaryReader{file: f, data: data, desc: desc, bandOffset: offsets}, nil
}

func (r *rawBinaryReader) Descriptor() *descriptor.TileDescriptor { return r.desc }

func (r *rawBinaryReader) ReadRow(band, row int) ([]float64, error) {
	if band < 0 || band >= len(r.desc.Bands) {
		return nil, mosaicerr.New(mosaicerr.ReadError, fmt.Sprintf("band index %d out of range", band)).WithPath(r.desc.Filename)
	}
	b := r.desc.Bands[band]
	sampleSize := b.InputDatatype.ByteSize()
	rowStart := r.bandOffset[band] + int64(row)*int64(b.NSamples)*int64(sampleSize)
	rowEnd := rowStart + int64(b.NSamples)*int64(sampleSize)
	if rowEnd > int64(len(r.data)) {
		return nil, mosaicerr.New(mosaicerr.ReadError,
			fmt.Sprintf("row %d of band %d extends past end of file", row, band)).WithPath(r.desc.Filename)
	}

	out := make([]float64, b.NSamples)
	raw := r.data[rowStart:rowEnd]
	for i := 0; i < b.NSamples; i++ {
		out[i] = decodeSample(raw[i*sampleSize:(i+1)*sampleSize], b.InputDatatype)
	}
	return out, nil
}

func (r *rawBinaryReader) Close() error {
	var err error
	if r.data != nil {
		err = munmapTile(r.data)
	}
	if cerr := r.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func decodeSample(b []byte, dt descriptor.DataType) float64 {
	switch dt {
	case descriptor.Int8:
		return float64(int8(b[0]))
	case descriptor.UInt8:
		return float64(b[0])
	case descriptor.Int16:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case descriptor.UInt16:
		return float64(binary.LittleEndian.Uint16(b))
	case descriptor.Int32:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case descriptor.UInt32:
		return float64(binary.LittleEndian.Uint32(b))
	case descriptor.Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	default:
		return 0
	}
}

func encodeSample(v float64, dt descriptor.DataType) []byte {
	switch dt {
	case descriptor.Int8:
		return []byte{byte(int8(clamp(v, -128, 127)))}
	case descriptor.UInt8:
		return []byte{byte(clamp(v, 0, 255))}
	case descriptor.Int16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(int16(clamp(v, -32768, 32767))))
		return b
	case descriptor.UInt16:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(clamp(v, 0, 65535)))
		return b
	case descriptor.Int32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
		return b
	case descriptor.UInt32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b
	case descriptor.Float32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return b
	default:
		return []byte{0}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return math.Round(v)
}

// rawBinaryWriter writes the selected bands one after another into one flat,
// preallocated output file, placing each row at its own offset. Field
// names are band names; CreateGrid/CreateField are accepted as no-ops since
// raw-binary carries no internal grid structure (§9's capability interface
// note: "two implementations" — this is the simpler one).
type rawBinaryWriter struct {
	file   *os.File
	mosaic *descriptor.MosaicDescriptor
	offset map[string]int64 // field name -> byte offset of band start
	datatype map[string]descriptor.DataType
	nsamples map[string]int
}

func openRawBinaryWriter(path string, mosaic *descriptor.MosaicDescriptor) (Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenWrite, "creating raw-binary output", err).WithPath(path)
	}

	offsets := make(map[string]int64, len(mosaic.Bands))
	datatypes := make(map[string]descriptor.DataType, len(mosaic.Bands))
	nsamples := make(map[string]int, len(mosaic.Bands))
	var running int64
	for _, b := range mosaic.Bands {
		if !b.Selected {
			continue
		}
		offsets[b.Name] = running
		datatypes[b.Name] = b.OutputDatatype
		nsamples[b.Name] = b.NSamples
		running += int64(b.NLines) * int64(b.NSamples) * int64(b.OutputDatatype.ByteSize())
	}

	if err := f.Truncate(running); err != nil {
		f.Close()
		return nil, mosaicerr.Wrap(mosaicerr.OpenWrite, "preallocating raw-binary output", err).WithPath(path)
	}

	return &rawBinaryWriter{file: f, mosaic: mosaic, offset: offsets, datatype: datatypes, nsamples: nsamples}, nil
}

func (w *rawBinaryWriter) CreateGrid(string, int, int, descriptor.Point2D, descriptor.Point2D, descriptor.ProjectionCode, [15]float64, int) error {
	return nil
}

func (w *rawBinaryWriter) CreateField(string, descriptor.BandInfo) error { return nil }

// SetAttributes is a no-op: raw-binary output carries no attribute block.
func (w *rawBinaryWriter) SetAttributes(map[string]string) {}

func (w *rawBinaryWriter) WriteRow(_, fieldName string, row int, data []float64) error {
	base, ok := w.offset[fieldName]
	if !ok {
		return mosaicerr.New(mosaicerr.WriteError, fmt.Sprintf("unknown field %q", fieldName))
	}
	dt := w.datatype[fieldName]
	sampleSize := dt.ByteSize()
	rowOffset := base + int64(row)*int64(w.nsamples[fieldName])*int64(sampleSize)

	buf := make([]byte, len(data)*sampleSize)
	for i, v := range data {
		copy(buf[i*sampleSize:], encodeSample(v, dt))
	}

	if _, err := w.file.WriteAt(buf, rowOffset); err != nil {
		return mosaicerr.Wrap(mosaicerr.WriteError, fmt.Sprintf("writing row %d of field %q", row, fieldName), err)
	}
	return nil
}

func (w *rawBinaryWriter) Close() error {
	return w.file.Close()
}
