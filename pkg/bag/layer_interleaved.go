package bag

// InterleavedLegacyLayer is a read-only view over one field of a packed
// legacy record dataset (spec §4.5): the NODE group packs
// HypothesisStrength and NumHypotheses; the ELEVATION group packs
// ShoalElevation, StdDev and NumSoundings (bag_legacy.cpp/.h). Only these
// kinds exist in legacy form; new files never create interleaved layers.
type InterleavedLegacyLayer struct {
	layerBase

	recordSize   uint32
	fieldOffset  uint32
	fieldSize    uint32
}

// Read projects this layer's field out of each packed record in the
// rectangle into a contiguous row-major output buffer.
func (l *InterleavedLegacyLayer) Read(rowStart, colStart, rowEnd, colEnd uint64) ([]byte, error) {
	if err := l.checkOpen(); err != nil {
		return nil, err
	}
	if err := validateRange(rowStart, colStart, rowEnd, colEnd, l.desc.Rows, l.desc.Cols); err != nil {
		return nil, err
	}
	packed, err := readRectangle(l.dataset.store, l.dsHandle, rowStart, colStart, rowEnd, colEnd, l.recordSize)
	if err != nil {
		return nil, err
	}

	cells := rectCells(rowStart, colStart, rowEnd, colEnd)
	out := make([]byte, cells*uint64(l.fieldSize))
	for i := uint64(0); i < cells; i++ {
		src := packed[i*uint64(l.recordSize)+uint64(l.fieldOffset):]
		copy(out[i*uint64(l.fieldSize):(i+1)*uint64(l.fieldSize)], src[:l.fieldSize])
	}
	return out, nil
}

// Write always fails: legacy interleaved layers are read-only (spec §4.5).
func (l *InterleavedLegacyLayer) Write(rowStart, colStart, rowEnd, colEnd uint64, buf []byte) error {
	return newErr(ReadOnly, "write", l.desc.InternalPath, "interleaved legacy layers are read-only", nil)
}

func (l *InterleavedLegacyLayer) WriteAttributes() error {
	return newErr(ReadOnly, "writeAttributes", l.desc.InternalPath, "interleaved legacy layers are read-only", nil)
}
