package bag

// CompoundLayer stores a user-declared record with named fields of
// primitive types, laid out in field order with no padding (spec §4.5).
// Field definitions are persisted only as the main dataset's compound
// element type; no auxiliary field-definition dataset is written.
type CompoundLayer struct {
	layerBase
}

func (l *CompoundLayer) Read(rowStart, colStart, rowEnd, colEnd uint64) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateRange(rowStart, colStart, rowEnd, colEnd, l.desc.Rows, l.desc.Cols); err != nil {
		return nil, err
	}
	return readRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.desc.ElementSize)
}

// Write persists buf over the rectangle. Compound records have no single
// numeric value to track a running min/max over, so unlike SimpleLayer
// this does not update the descriptor's min/max (spec §4.5's min/max
// clause applies to the scalar layer kinds it was written against).
func (l *CompoundLayer) Write(rowStart, colStart, rowEnd, colEnd uint64, buf []byte) error {
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

func (l *CompoundLayer) WriteAttributes() error {
	if err := l.checkOpen(); err != nil {
		return err
	}
	return l.writeAttributes()
}
