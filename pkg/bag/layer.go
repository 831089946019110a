package bag

import (
	"math"

	"github.com/bagfmt/bag/internal/store"
	"github.com/bagfmt/bag/internal/types"
)

// Layer is the shared capability interface every layer variant implements
// (spec §9: "reshape as a tagged variant ... dispatching via a single
// capability interface" — the Go equivalent of the source's virtual
// readProxy/writeProxy/writeAttributesProxy).
type Layer interface {
	Kind() types.LayerKind
	Descriptor() *LayerDescriptor

	// Read returns a row-major owned buffer covering
	// [rowStart,rowEnd]x[colStart,colEnd], inclusive (spec §4.5).
	Read(rowStart, colStart, rowEnd, colEnd uint64) ([]byte, error)

	// Write persists buf over the same inclusive rectangle. SimpleLayer also
	// updates the descriptor's running min/max from the written values.
	Write(rowStart, colStart, rowEnd, colEnd uint64, buf []byte) error

	// WriteAttributes flushes descriptor-level metadata (min, max,
	// compression level, chunk hint) as attributes on the backing dataset.
	WriteAttributes() error
}

// float32NoData and uint32NoData are the per-element-type no-data
// sentinels (spec §9): used only to skip min/max updates, never stripped
// from read buffers.
const float32NoData float32 = 1e6

const uint32NoData uint32 = math.MaxUint32

// layerBase factors the state every variant shares: its descriptor, a
// non-owning borrow of the dataset's store handle and a back-pointer used
// to re-validate the Dataset is still open (spec §9: "layers carry a
// non-owning borrow of the Dataset scoped to the Dataset's lifetime").
type layerBase struct {
	desc     *LayerDescriptor
	dataset  *Dataset
	dsHandle store.DatasetHandle
}

func (b *layerBase) Kind() types.LayerKind      { return b.desc.Kind }
func (b *layerBase) Descriptor() *LayerDescriptor { return b.desc }

func (b *layerBase) checkOpen() error {
	if b.dataset == nil || b.dataset.closed {
		return newErr(StorageError, "layer", b.desc.InternalPath, "dataset closed", nil)
	}
	return nil
}

// validateRange enforces the shared read/write preconditions (spec §4.5):
// rowStart<=rowEnd, colStart<=colEnd, rowEnd<rows, colEnd<cols.
func validateRange(rowStart, colStart, rowEnd, colEnd, rows, cols uint64) error {
	if rowStart > rowEnd || colStart > colEnd {
		return newErr(InvalidArgument, "read/write", "", "start must not exceed end", nil)
	}
	if rowEnd >= rows || colEnd >= cols {
		return newErr(InvalidArgument, "read/write", "", "range exceeds layer dims", nil)
	}
	return nil
}

func rectCells(rowStart, colStart, rowEnd, colEnd uint64) uint64 {
	return (rowEnd - rowStart + 1) * (colEnd - colStart + 1)
}

func (b *layerBase) writeAttributes() error {
	st := b.dataset.store
	if err := st.WriteAttribute(b.dsHandle, "min", store.Float32Attr(float32(b.desc.MinValue))); err != nil {
		return newErr(StorageError, "writeAttributes", b.desc.InternalPath, "", err)
	}
	if err := st.WriteAttribute(b.dsHandle, "max", store.Float32Attr(float32(b.desc.MaxValue))); err != nil {
		return newErr(StorageError, "writeAttributes", b.desc.InternalPath, "", err)
	}
	if err := st.WriteAttribute(b.dsHandle, "chunk size", store.UInt32Attr(uint32(b.desc.ChunkSize))); err != nil {
		return newErr(StorageError, "writeAttributes", b.desc.InternalPath, "", err)
	}
	if err := st.WriteAttribute(b.dsHandle, "compression level", store.UInt32Attr(uint32(b.desc.CompressionLevel))); err != nil {
		return newErr(StorageError, "writeAttributes", b.desc.InternalPath, "", err)
	}
	return nil
}
