package store

import (
	"fmt"

	"github.com/bagfmt/bag/internal/types"
)

// MemStore is a pure in-memory Store implementation used by tests across
// the module (pkg/bag exercises Dataset/Layer/TrackingList logic against
// it rather than a real HDF5 file, since HDF5Store requires cgo and a
// linked libhdf5). It honors the same contract hdf5store.go does:
// contiguous hyperslabs, typed attributes, extendable datasets.
type MemStore struct {
	files map[string]*memFile
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() *MemStore {
	return &MemStore{files: make(map[string]*memFile)}
}

type memFile struct {
	attrs    map[string]AttrValue
	datasets map[string]*memDataset
}

type memDataset struct {
	elem    types.ElementType
	elemSz  uint32
	dims    []uint64
	maxDims []uint64
	data    []byte
	attrs   map[string]AttrValue
}

type memFileHandle struct{ f *memFile }

func (*memFileHandle) attrTarget() {}
func (*memFileHandle) isHandle()   {}

type memDatasetHandle struct{ ds *memDataset }

func (*memDatasetHandle) attrTarget()                  {}
func (h *memDatasetHandle) ElementType() types.ElementType { return h.ds.elem }
func (h *memDatasetHandle) Dims() []uint64             { return h.ds.dims }

func (s *MemStore) CreateFile(path string) (Handle, error) {
	f := &memFile{attrs: make(map[string]AttrValue), datasets: make(map[string]*memDataset)}
	s.files[path] = f
	return &memFileHandle{f: f}, nil
}

func (s *MemStore) OpenFile(path string, mode Mode) (Handle, error) {
	f, ok := s.files[path]
	if !ok {
		return nil, wrapErr("openFile", path, fmt.Errorf("no such file"))
	}
	return &memFileHandle{f: f}, nil
}

func (s *MemStore) Close(h Handle) error { return nil }

func (s *MemStore) CreateDataset(h Handle, path string, elemType types.ElementType, extent Extent, chunkShape []uint64, compressionLevel int) (DatasetHandle, error) {
	fh := h.(*memFileHandle)
	size, err := types.Size(elemType)
	if err != nil {
		return nil, wrapErr("createDataset", path, err)
	}
	maxDims := extent.MaxDims
	if maxDims == nil {
		maxDims = extent.Dims
	}
	ds := &memDataset{
		elem: elemType, elemSz: size,
		dims: append([]uint64{}, extent.Dims...), maxDims: append([]uint64{}, maxDims...),
		data:  make([]byte, cellCount(extent.Dims)*uint64(size)),
		attrs: make(map[string]AttrValue),
	}
	fh.f.datasets[path] = ds
	return &memDatasetHandle{ds: ds}, nil
}

func (s *MemStore) OpenDataset(h Handle, path string) (DatasetHandle, error) {
	fh := h.(*memFileHandle)
	ds, ok := fh.f.datasets[path]
	if !ok {
		return nil, wrapErr("openDataset", path, fmt.Errorf("no such dataset"))
	}
	return &memDatasetHandle{ds: ds}, nil
}

// strides returns the row-major stride (in cells) of each axis of dims.
func strides(dims []uint64) []uint64 {
	out := make([]uint64, len(dims))
	stride := uint64(1)
	for i := len(dims) - 1; i >= 0; i-- {
		out[i] = stride
		stride *= dims[i]
	}
	return out
}

// offsetsInRect walks every cell of the hyperslab at origin..origin+extent
// over dims in row-major order, calling fn with each cell's flat index.
func offsetsInRect(dims, origin, extent []uint64, fn func(flat uint64)) {
	st := strides(dims)
	cells := cellCount(extent)
	idx := make([]uint64, len(extent))
	for c := uint64(0); c < cells; c++ {
		flat := uint64(0)
		for i := range idx {
			flat += (origin[i] + idx[i]) * st[i]
		}
		fn(flat)
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < extent[i] {
				break
			}
			idx[i] = 0
		}
	}
}

func (s *MemStore) ReadSlab(dh DatasetHandle, originCell, extent []uint64) ([]byte, error) {
	d := dh.(*memDatasetHandle).ds
	out := make([]byte, 0, cellCount(extent)*uint64(d.elemSz))
	var rangeErr error
	offsetsInRect(d.dims, originCell, extent, func(flat uint64) {
		start := flat * uint64(d.elemSz)
		end := start + uint64(d.elemSz)
		if end > uint64(len(d.data)) {
			rangeErr = fmt.Errorf("read out of range")
			return
		}
		out = append(out, d.data[start:end]...)
	})
	if rangeErr != nil {
		return nil, wrapErr("readSlab", "", rangeErr)
	}
	return out, nil
}

func (s *MemStore) WriteSlab(dh DatasetHandle, originCell, extent []uint64, buf []byte) error {
	d := dh.(*memDatasetHandle).ds
	if needsExtend(d.dims, originCell, extent) {
		if err := s.Extend(dh, extendedDims(d.dims, originCell, extent)); err != nil {
			return err
		}
	}
	pos := 0
	var rangeErr error
	offsetsInRect(d.dims, originCell, extent, func(flat uint64) {
		start := flat * uint64(d.elemSz)
		end := start + uint64(d.elemSz)
		if end > uint64(len(d.data)) || pos+int(d.elemSz) > len(buf) {
			rangeErr = fmt.Errorf("write out of range")
			return
		}
		copy(d.data[start:end], buf[pos:pos+int(d.elemSz)])
		pos += int(d.elemSz)
	})
	if rangeErr != nil {
		return wrapErr("writeSlab", "", rangeErr)
	}
	return nil
}

func (s *MemStore) Extend(dh DatasetHandle, newDims []uint64) error {
	d := dh.(*memDatasetHandle).ds
	newData := make([]byte, cellCount(newDims)*uint64(d.elemSz))
	// Copy every existing cell to its row-major position in the new shape,
	// so existing contents survive growth along any axis.
	sz := uint64(d.elemSz)
	var i uint64
	offsetsInRect(newDims, make([]uint64, len(d.dims)), d.dims, func(flat uint64) {
		copy(newData[flat*sz:(flat+1)*sz], d.data[i*sz:(i+1)*sz])
		i++
	})
	d.dims = append([]uint64{}, newDims...)
	d.data = newData
	return nil
}

func (s *MemStore) ReadAttribute(target AttrTarget, name string) (AttrValue, error) {
	attrs, err := memAttrs(target)
	if err != nil {
		return AttrValue{}, wrapErr("readAttribute", name, err)
	}
	v, ok := attrs[name]
	if !ok {
		return AttrValue{}, wrapErr("readAttribute", name, fmt.Errorf("no such attribute"))
	}
	return v, nil
}

func (s *MemStore) WriteAttribute(target AttrTarget, name string, value AttrValue) error {
	attrs, err := memAttrs(target)
	if err != nil {
		return wrapErr("writeAttribute", name, err)
	}
	attrs[name] = value
	return nil
}

func memAttrs(target AttrTarget) (map[string]AttrValue, error) {
	switch t := target.(type) {
	case *memFileHandle:
		return t.f.attrs, nil
	case *memDatasetHandle:
		return t.ds.attrs, nil
	default:
		return nil, fmt.Errorf("unsupported attribute target %T", target)
	}
}

func (s *MemStore) Exists(h Handle, path string) bool {
	fh := h.(*memFileHandle)
	if _, ok := fh.f.datasets[path]; ok {
		return true
	}
	// Groups are implicit: path names a group when a dataset lives beneath it.
	prefix := path + "/"
	for p := range fh.f.datasets {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}
