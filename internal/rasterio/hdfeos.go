// hdfeosReader/hdfeosWriter implement the Reader/Writer capability
// interface for HDF-EOS-shaped output. No real HDF4 binding exists
// anywhere in the retrieved corpus (this is an explicit SPEC_FULL.md
// non-goal), so the container is modeled as a self-describing sidecar: a
// JSON structure describing grids/fields/attributes (mirroring HDF-EOS's
// own grid-and-field data model) next to a flat binary data file holding
// the actual band samples, keyed by the same grid/field offsets the real
// HDF-EOS writer would use internally.
//
// Grounded on pmtiles.Writer's "accumulate, Finalize, Abort on failure"
// lifecycle (internal/pmtiles/writer.go): grids/fields accumulate in memory
// as CreateGrid/CreateField/WriteRow are called, and the JSON metadata is
// only flushed to disk on Close, matching the teacher's own deferred-
// finalization discipline.
package rasterio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/usgs-eros/mrtmosaic/internal/descriptor"
	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// dataSuffix names the sidecar binary blob alongside an HDF-EOS metadata
// file, e.g. "mosaic.hdf" + ".data" -> "mosaic.hdf.data".
const dataSuffix = ".data"

type hdfeosField struct {
	Name       string               `json:"name"`
	Band       descriptor.BandInfo  `json:"band"`
	DataOffset int64                `json:"data_offset"`
}

type hdfeosGrid struct {
	Name      string                    `json:"name"`
	XDim      int                       `json:"xdim"`
	YDim      int                       `json:"ydim"`
	UL        descriptor.Point2D        `json:"ul"`
	LR        descriptor.Point2D        `json:"lr"`
	Proj      descriptor.ProjectionCode `json:"projection"`
	Params    [15]float64               `json:"projection_parameters"`
	ZoneCode  int                       `json:"zone_code"`
	Fields    []hdfeosField             `json:"fields"`
}

// hdfeosMeta is the on-disk JSON structure of an HDF-EOS metadata file.
type hdfeosMeta struct {
	Grids      []hdfeosGrid      `json:"grids"`
	Attributes map[string]string `json:"attributes"`
}

// CopyAttributesWithLineage implements the "Old"-prefixed metadata lineage
// rule of SPEC_FULL.md's SUPPLEMENTED FEATURES section, grounded on
// output_hdr_mosaic.c and update_tile_meta.c/.h: every attribute from the
// source is preserved under its original name, and again under an
// "Old"-prefixed name so downstream tools can recover per-granule lineage
// after the mosaic overwrites the live attribute with mosaic-level values.
func CopyAttributesWithLineage(source map[string]string) map[string]string {
	out := make(map[string]string, len(source)*2)
	for k, v := range source {
		out[k] = v
		out["Old"+k] = v
	}
	return out
}

type hdfeosWriter struct {
	path string
	meta hdfeosMeta
	data *os.File

	// fieldOffset maps "gridName/fieldName" -> byte offset.
	fieldOffset map[string]int64
	fieldInfo   map[string]descriptor.BandInfo
	curGrid     string
}

func openHDFEOSWriter(path string, mosaic *descriptor.MosaicDescriptor) (Writer, error) {
	data, err := os.Create(path + dataSuffix)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenWrite, "creating HDF-EOS data file", err).WithPath(path)
	}
	w := &hdfeosWriter{
		path:        path,
		data:        data,
		fieldOffset: make(map[string]int64),
		fieldInfo:   make(map[string]descriptor.BandInfo),
	}
	return w, nil
}

// SetAttributes applies the "Old"-prefixed lineage rule (see
// CopyAttributesWithLineage) to the source tile's attributes and stores the
// result as the mosaic's own attribute block.
func (w *hdfeosWriter) SetAttributes(attrs map[string]string) {
	if len(attrs) == 0 {
		return
	}
	w.meta.Attributes = CopyAttributesWithLineage(attrs)
}

func (w *hdfeosWriter) CreateGrid(name string, xdim, ydim int, ul, lr descriptor.Point2D, proj descriptor.ProjectionCode, params [15]float64, zoneCode int) error {
	w.meta.Grids = append(w.meta.Grids, hdfeosGrid{
		Name: name, XDim: xdim, YDim: ydim, UL: ul, LR: lr, Proj: proj, Params: params, ZoneCode: zoneCode,
	})
	w.curGrid = name
	return nil
}

func (w *hdfeosWriter) CreateField(gridName string, band descriptor.BandInfo) error {
	for i := range w.meta.Grids {
		if w.meta.Grids[i].Name != gridName {
			continue
		}
		info, err := w.data.Stat()
		if err != nil {
			return mosaicerr.Wrap(mosaicerr.WriteError, "statting HDF-EOS data file", err)
		}
		key := gridName + "/" + band.Name
		w.fieldOffset[key] = info.Size()
		w.fieldInfo[key] = band
		w.meta.Grids[i].Fields = append(w.meta.Grids[i].Fields, hdfeosField{
			Name: band.Name, Band: band, DataOffset: info.Size(),
		})
		// Reserve the field's full extent up front so WriteRow can use
		// WriteAt without growing the file mid-band.
		size := int64(band.NLines) * int64(band.NSamples) * int64(band.OutputDatatype.ByteSize())
		if err := w.data.Truncate(info.Size() + size); err != nil {
			return mosaicerr.Wrap(mosaicerr.WriteError, "reserving HDF-EOS field extent", err)
		}
		return nil
	}
	return mosaicerr.New(mosaicerr.WriteError, fmt.Sprintf("CreateField: unknown grid %q", gridName))
}

func (w *hdfeosWriter) WriteRow(gridName, fieldName string, row int, data []float64) error {
	key := gridName + "/" + fieldName
	base, ok := w.fieldOffset[key]
	if !ok {
		return mosaicerr.New(mosaicerr.WriteError, fmt.Sprintf("WriteRow: unknown field %q", key))
	}
	band := w.fieldInfo[key]
	sampleSize := band.OutputDatatype.ByteSize()
	rowOffset := base + int64(row)*int64(band.NSamples)*int64(sampleSize)

	buf := make([]byte, len(data)*sampleSize)
	for i, v := range data {
		copy(buf[i*sampleSize:], encodeSample(v, band.OutputDatatype))
	}
	if _, err := w.data.WriteAt(buf, rowOffset); err != nil {
		return mosaicerr.Wrap(mosaicerr.WriteError, fmt.Sprintf("writing row %d of %q", row, key), err)
	}
	return nil
}

func (w *hdfeosWriter) Close() error {
	if err := w.data.Close(); err != nil {
		return mosaicerr.Wrap(mosaicerr.WriteError, "closing HDF-EOS data file", err)
	}
	f, err := os.Create(w.path)
	if err != nil {
		return mosaicerr.Wrap(mosaicerr.OpenWrite, "creating HDF-EOS metadata file", err).WithPath(w.path)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(w.meta); err != nil {
		return mosaicerr.Wrap(mosaicerr.WriteError, "encoding HDF-EOS metadata", err)
	}
	return nil
}

type hdfeosReader struct {
	path string
	meta hdfeosMeta
	data *os.File
	desc *descriptor.TileDescriptor

	// bandFieldOffset[bandIndex] is the byte offset of that band's field
	// in data, in the order Descriptor().Bands lists them.
	bandFieldOffset []int64
}

func openHDFEOSReader(path string) (Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "opening HDF-EOS metadata file", err).WithPath(path)
	}
	defer f.Close()

	var meta hdfeosMeta
	if err := json.NewDecoder(f).Decode(&meta); err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.ReadError, "decoding HDF-EOS metadata", err).WithPath(path)
	}

	data, err := os.Open(path + dataSuffix)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "opening HDF-EOS data file", err).WithPath(path)
	}

	desc := &descriptor.TileDescriptor{Filename: path, FileType: descriptor.HDFEOS}
	horiz, vert, tileErr := ParseTileNumberFromFilename(path)
	if tileErr == nil {
		desc.Horiz, desc.Vert, desc.HasTile = horiz, vert, true
	}

	var offsets []int64
	var gridNames []string
	if len(meta.Grids) > 0 {
		desc.Projection = meta.Grids[0].Proj
		desc.ZoneCode = meta.Grids[0].ZoneCode
		desc.ProjectionParameters = meta.Grids[0].Params
		desc.ProjCorners[descriptor.UL] = meta.Grids[0].UL
		desc.ProjCorners[descriptor.LR] = meta.Grids[0].LR
	}
	for _, g := range meta.Grids {
		for _, f := range g.Fields {
			desc.Bands = append(desc.Bands, f.Band)
			offsets = append(offsets, f.DataOffset)
			gridNames = append(gridNames, g.Name)
		}
	}
	desc.GridNames = gridNames
	desc.Attributes = meta.Attributes

	return &hdfeosReader{path: path, meta: meta, data: data, desc: desc, bandFieldOffset: offsets}, nil
}

func (r *hdfeosReader) Descriptor() *descriptor.TileDescriptor { return r.desc }

func (r *hdfeosReader) ReadRow(band, row int) ([]float64, error) {
	if band < 0 || band >= len(r.desc.Bands) {
		return nil, mosaicerr.New(mosaicerr.ReadError, fmt.Sprintf("band index %d out of range", band)).WithPath(r.path)
	}
	b := r.desc.Bands[band]
	sampleSize := b.OutputDatatype.ByteSize()
	if sampleSize == 0 {
		sampleSize = b.InputDatatype.ByteSize()
	}
	rowOffset := r.bandFieldOffset[band] + int64(row)*int64(b.NSamples)*int64(sampleSize)

	buf := make([]byte, b.NSamples*sampleSize)
	if _, err := r.data.ReadAt(buf, rowOffset); err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.ReadError, fmt.Sprintf("reading row %d of band %d", row, band), err).WithPath(r.path)
	}

	dt := b.OutputDatatype
	out := make([]float64, b.NSamples)
	for i := 0; i < b.NSamples; i++ {
		out[i] = decodeSample(buf[i*sampleSize:(i+1)*sampleSize], dt)
	}
	return out, nil
}

func (r *hdfeosReader) Close() error {
	return r.data.Close()
}
