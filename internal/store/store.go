// Package store defines the BackingStore abstraction (spec §4.4): the
// contract the BAG core requires from the underlying chunked
// typed-array store, plus a concrete adapter over a real HDF5 binding.
//
// This is the one deliberately narrow seam in the module: everything
// above this package talks to a Store, never to HDF5 directly, so the
// "treat HDF5 as a black-box chunked typed array store" framing in spec
// §1/§6 holds even though internal/store/hdf5store.go does import a real
// HDF5 binding.
package store

import (
	"github.com/bagfmt/bag/internal/types"
)

// Unlimited marks an axis of an Extent's MaxDims as unbounded (an
// HDF5 H5S_UNLIMITED axis), used for the TrackingList's growable 1-D
// dataset (spec §4.6) and for datasets whose grid may later be extended.
const Unlimited = ^uint64(0)

// Extent is a dataset's current shape and (optionally larger or
// unlimited) maximum shape.
type Extent struct {
	Dims    []uint64
	MaxDims []uint64 // nil means MaxDims == Dims (fixed extent)
}

// Handle identifies an open backing-store file.
type Handle interface {
	attrTarget()
	isHandle()
}

// DatasetHandle identifies an open dataset (or variable-length
// one-dimensional dataset) within a file.
type DatasetHandle interface {
	attrTarget()
	ElementType() types.ElementType
	Dims() []uint64
}

// AttrTarget is anything an attribute can be attached to: a file handle or
// a dataset handle.
type AttrTarget interface {
	attrTarget()
}

// AttrKind discriminates the typed attribute value union.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrFloat32
	AttrUInt32
)

// AttrValue is the typed value readAttribute/writeAttribute exchange.
type AttrValue struct {
	Kind AttrKind
	Str  string
	F32  float32
	U32  uint32
}

func StringAttr(s string) AttrValue  { return AttrValue{Kind: AttrString, Str: s} }
func Float32Attr(f float32) AttrValue { return AttrValue{Kind: AttrFloat32, F32: f} }
func UInt32Attr(u uint32) AttrValue  { return AttrValue{Kind: AttrUInt32, U32: u} }

// Mode selects read-only vs read-write access on openFile.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

// Store is the BackingStore contract (spec §4.4). A Store enforces
// at-most-one-writer semantics per file and contiguous hyperslabs; it
// never performs its own file-level locking beyond that (spec §5).
type Store interface {
	// CreateFile creates a new backing-store file, truncating any existing
	// file at path.
	CreateFile(path string) (Handle, error)

	// OpenFile opens an existing backing-store file.
	OpenFile(path string, mode Mode) (Handle, error)

	// Close releases a file handle and everything opened from it.
	Close(h Handle) error

	// CreateDataset creates a typed, chunked, optionally compressed
	// dataset at path. extent.MaxDims may declare an unlimited axis via
	// Unlimited.
	CreateDataset(h Handle, path string, elemType types.ElementType, extent Extent, chunkShape []uint64, compressionLevel int) (DatasetHandle, error)

	// OpenDataset opens an existing dataset, returning a handle that
	// reports its element type and current dims.
	OpenDataset(h Handle, path string) (DatasetHandle, error)

	// ReadSlab reads a contiguous hyperslab starting at originCell,
	// covering extent cells per axis, returning a row-major buffer of
	// len(extent cells)*elementSize bytes.
	ReadSlab(ds DatasetHandle, originCell, extent []uint64) ([]byte, error)

	// WriteSlab writes buf (row-major, extent cells * elementSize bytes)
	// into the hyperslab at originCell..originCell+extent, extending the
	// dataset as needed up to its declared unlimited bound.
	WriteSlab(ds DatasetHandle, originCell, extent []uint64, buf []byte) error

	// Extend grows a dataset's current extent to newDims (each axis must
	// be >= the current size and <= the declared max, or unlimited).
	Extend(ds DatasetHandle, newDims []uint64) error

	// ReadAttribute / WriteAttribute manipulate a named attribute on a
	// file or dataset.
	ReadAttribute(target AttrTarget, name string) (AttrValue, error)
	WriteAttribute(target AttrTarget, name string, value AttrValue) error

	// Exists reports whether path names an existing group or dataset in
	// the file.
	Exists(h Handle, path string) bool
}
