package bag

import "github.com/bagfmt/bag/internal/store"

// readRectangle and writeRectangle translate the inclusive
// (rowStart,colStart)-(rowEnd,colEnd) rectangle shared by every Layer
// variant's contract into a BackingStore hyperslab call.
func readRectangle(st store.Store, ds store.DatasetHandle, rowStart, colStart, rowEnd, colEnd uint64, elemSize uint32) ([]byte, error) {
	origin := []uint64{rowStart, colStart}
	extent := []uint64{rowEnd - rowStart + 1, colEnd - colStart + 1}
	buf, err := st.ReadSlab(ds, origin, extent)
	if err != nil {
		return nil, newErr(StorageError, "read", "", "", err)
	}
	_ = elemSize
	return buf, nil
}

func writeRectangle(st store.Store, ds store.DatasetHandle, rowStart, colStart, rowEnd, colEnd uint64, elemSize uint32, buf []byte) error {
	origin := []uint64{rowStart, colStart}
	extent := []uint64{rowEnd - rowStart + 1, colEnd - colStart + 1}
	if err := st.WriteSlab(ds, origin, extent, buf); err != nil {
		return newErr(StorageError, "write", "", "", err)
	}
	return nil
}
