package bag

import (
	"encoding/binary"
	"math"

	"github.com/bagfmt/bag/internal/types"
)

// SimpleLayer is a 2-D chunked dataset storing the kind's canonical scalar
// element type at the kind's fixed internal path (spec §4.5).
type SimpleLayer struct {
	layerBase
}

func (l *SimpleLayer) Read(rowStart, colStart, rowEnd, colEnd uint64) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateRange(rowStart, colStart, rowEnd, colEnd, l.desc.Rows, l.desc.Cols); err != nil {
		return nil, err
	}
	return readRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.desc.ElementSize)
}

func (l *SimpleLayer) Write(rowStart, colStart, rowEnd, colEnd uint64, buf []byte) error {
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

	l.observeMinMax(buf)

	return writeRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.desc.ElementSize, buf)
}

func (l *SimpleLayer) observeMinMax(buf []byte) {
	switch l.desc.ElementType.Kind {
	case types.Float32:
		for i := 0; i+4 <= len(buf); i += 4 {
			v := math.Float32frombits(binary.LittleEndian.Uint32(buf[i : i+4]))
			l.desc.observe(float64(v), float64(float32NoData))
		}
	case types.UInt32:
		for i := 0; i+4 <= len(buf); i += 4 {
			v := binary.LittleEndian.Uint32(buf[i : i+4])
			if v == uint32NoData {
				continue
			}
			l.desc.observe(float64(v), math.MaxFloat64)
		}
	}
}

func (l *SimpleLayer) WriteAttributes() error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	return l.writeAttributes()
}
