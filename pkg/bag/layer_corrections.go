package bag

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/bagfmt/bag/internal/store"
)

// SurfaceTopography discriminates how a SurfaceCorrectionsLayer's nodes are
// arranged (spec §4.5).
type SurfaceTopography int

const (
	Gridded SurfaceTopography = iota
	IrregularlySpaced
)

// SurfaceCorrectionsLayer carries VerticalDatumCorrectionRecord entries
// (spec §4.5): correctorCount z-offsets plus an (x,y) sample location. Its
// dims may be smaller than the main grid — the correction is a coarser
// surface.
type SurfaceCorrectionsLayer struct {
	layerBase

	CorrectorCount int
	Topography     SurfaceTopography
	VerticalDatums []string
}

func verticalDatumCorrectionRecordSize(correctorCount int) uint32 {
	return uint32(correctorCount)*4 + 16
}

// Read returns packed VerticalDatumCorrectionRecord entries in row-major
// order over the rectangle.
func (l *SurfaceCorrectionsLayer) Read(rowStart, colStart, rowEnd, colEnd uint64) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateRange(rowStart, colStart, rowEnd, colEnd, l.desc.Rows, l.desc.Cols); err != nil {
		return nil, err
	}
	return readRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.desc.ElementSize)
}

// Write accepts the same packing Read returns.
func (l *SurfaceCorrectionsLayer) Write(rowStart, colStart, rowEnd, colEnd uint64, buf []byte) error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if l.dataset.readOnly {
		return newErr(ReadOnly, "write", l.desc.InternalPath, "dataset is read-only", nil)
	}
	if err := validateRange(rowStart, colStart, rowEnd, colEnd, l.desc.Rows, l.desc.Cols); err != nil {
		return err
	}
	want := rectCells(rowStart, colStart, rowEnd, colEnd) * uint64(l.desc.ElementSize)
	if uint64(len(buf)) != want {
		return newErr(InvalidArgument, "write", l.desc.InternalPath, "buffer length mismatch", nil)
	}
	return writeRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.desc.ElementSize, buf)
}

func (l *SurfaceCorrectionsLayer) WriteAttributes() error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	if err := l.writeAttributes(); err != nil {
		return err
	}
	joined := strings.Join(l.VerticalDatums, ";")
	return l.dataset.store.WriteAttribute(l.dsHandle, "verticaldatums", store.StringAttr(joined))
}

// DecodeRecord unpacks one VerticalDatumCorrectionRecord from buf at the
// given record index, using l.CorrectorCount z-offsets.
func (l *SurfaceCorrectionsLayer) DecodeRecord(buf []byte, index int) (z []float32, x, y float64) {
	recSize := int(verticalDatumCorrectionRecordSize(l.CorrectorCount))
	rec := buf[index*recSize : (index+1)*recSize]
	z = make([]float32, l.CorrectorCount)
	for i := 0; i < l.CorrectorCount; i++ {
		z[i] = math.Float32frombits(binary.LittleEndian.Uint32(rec[i*4 : i*4+4]))
	}
	off := l.CorrectorCount * 4
	x = math.Float64frombits(binary.LittleEndian.Uint64(rec[off : off+8]))
	y = math.Float64frombits(binary.LittleEndian.Uint64(rec[off+8 : off+16]))
	return z, x, y
}

// EncodeRecord packs one VerticalDatumCorrectionRecord.
func (l *SurfaceCorrectionsLayer) EncodeRecord(z []float32, x, y float64) []byte {
	recSize := int(verticalDatumCorrectionRecordSize(l.CorrectorCount))
	buf := make([]byte, recSize)
	for i := 0; i < l.CorrectorCount && i < len(z); i++ {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(z[i]))
	}
	off := l.CorrectorCount * 4
	binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(x))
	binary.LittleEndian.PutUint64(buf[off+8:off+16], math.Float64bits(y))
	return buf
}

// QueryBounds returns the row/col indices of every correction node whose
// grid-to-geo position falls within bounds (domain-stack expansion,
// grounded on pkg/s57/s57.go's spatialIndex, same technique as
// TrackingList.QueryBounds).
func (l *SurfaceCorrectionsLayer) QueryBounds(bounds Bounds, nodes [][2]uint64) [][2]uint64 {
	idx := newGeoIndex()
	for _, rc := range nodes {
		x, y := l.dataset.GridToGeo(rc[0], rc[1])
		idx.Insert(rc, x, y)
	}
	results := idx.QueryBounds(bounds)
	out := make([][2]uint64, 0, len(results))
	for _, r := range results {
		out = append(out, r.([2]uint64))
	}
	return out
}
