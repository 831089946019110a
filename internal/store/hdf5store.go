package store

import (
	"fmt"

	"github.com/bagfmt/bag/internal/types"
	"gonum.org/v1/hdf5"
)

// HDF5Store is the concrete BackingStore over a real HDF5 file, via
// gonum.org/v1/hdf5's cgo binding to libhdf5. It is the sole place in the
// module that imports an HDF5 library.
type HDF5Store struct{}

// NewHDF5Store returns the HDF5-backed Store implementation.
func NewHDF5Store() *HDF5Store { return &HDF5Store{} }

type fileHandle struct {
	f *hdf5.File
}

func (*fileHandle) attrTarget() {}
func (*fileHandle) isHandle()   {}

type datasetHandle struct {
	ds      *hdf5.Dataset
	elem    types.ElementType
	dims    []uint64
	maxDims []uint64
}

func (*datasetHandle) attrTarget()                 {}
func (d *datasetHandle) ElementType() types.ElementType { return d.elem }
func (d *datasetHandle) Dims() []uint64            { return d.dims }

func (s *HDF5Store) CreateFile(path string) (Handle, error) {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, wrapErr("createFile", path, err)
	}
	return &fileHandle{f: f}, nil
}

func (s *HDF5Store) OpenFile(path string, mode Mode) (Handle, error) {
	flag := hdf5.F_ACC_RDONLY
	if mode == ReadWrite {
		flag = hdf5.F_ACC_RDWR
	}
	f, err := hdf5.OpenFile(path, flag)
	if err != nil {
		return nil, wrapErr("openFile", path, err)
	}
	return &fileHandle{f: f}, nil
}

func (s *HDF5Store) Close(h Handle) error {
	fh, ok := h.(*fileHandle)
	if !ok {
		return wrapErr("close", "", fmt.Errorf("not an HDF5 file handle"))
	}
	if err := fh.f.Close(); err != nil {
		return wrapErr("close", "", err)
	}
	return nil
}

func hdf5Datatype(t types.ElementType) (*hdf5.Datatype, uint32, error) {
	size, err := types.Size(t)
	if err != nil {
		return nil, 0, err
	}
	switch t.Kind {
	case types.Float32:
		return hdf5.T_NATIVE_FLOAT, size, nil
	case types.UInt32:
		return hdf5.T_NATIVE_UINT32, size, nil
	default:
		// Compound and VerticalDatumCorrection records are built as
		// packed HDF5 compound datatypes by the caller's field layout;
		// see compoundDatatype.
		dt, err := compoundDatatype(t)
		return dt, size, err
	}
}

// compoundDatatype builds a packed HDF5 H5T_COMPOUND datatype matching the
// field layout of a Compound or VerticalDatumCorrection ElementType. Fields
// are inserted at consecutive byte offsets with no padding (spec §3:
// "records are packed").
func compoundDatatype(t types.ElementType) (*hdf5.Datatype, error) {
	size, err := types.Size(t)
	if err != nil {
		return nil, err
	}
	dt, err := hdf5.NewCompoundDatatype(uint(size))
	if err != nil {
		return nil, err
	}
	offset := uint(0)
	insert := func(name string, member *hdf5.Datatype, memberSize uint32) error {
		if err := dt.Insert(name, offset, member); err != nil {
			return err
		}
		offset += uint(memberSize)
		return nil
	}
	switch t.Kind {
	case types.CompoundKind:
		for _, f := range t.Fields {
			member, memberSize := primitiveDatatype(f.Type)
			if err := insert(f.Name, member, memberSize); err != nil {
				return nil, err
			}
		}
	case types.VerticalDatumCorrectionKind:
		zType, err := hdf5.NewArrayDatatype(hdf5.T_NATIVE_FLOAT, []int{t.CorrectorCount})
		if err != nil {
			return nil, err
		}
		if err := insert("z", zType, uint32(t.CorrectorCount)*4); err != nil {
			return nil, err
		}
		if err := insert("x", hdf5.T_NATIVE_DOUBLE, 8); err != nil {
			return nil, err
		}
		if err := insert("y", hdf5.T_NATIVE_DOUBLE, 8); err != nil {
			return nil, err
		}
	}
	return dt, nil
}

func primitiveDatatype(p types.Primitive) (*hdf5.Datatype, uint32) {
	switch p {
	case types.PrimitiveFloat32:
		return hdf5.T_NATIVE_FLOAT, 4
	case types.PrimitiveFloat64:
		return hdf5.T_NATIVE_DOUBLE, 8
	case types.PrimitiveUInt8:
		return hdf5.T_NATIVE_UINT8, 1
	case types.PrimitiveUInt32:
		return hdf5.T_NATIVE_UINT32, 4
	case types.PrimitiveInt16:
		return hdf5.T_NATIVE_INT16, 2
	default:
		return hdf5.T_NATIVE_UINT8, 1
	}
}

func toMaxDims(extent Extent) []uint64 {
	if extent.MaxDims == nil {
		return extent.Dims
	}
	return extent.MaxDims
}

func h5MaxDims(max []uint64) []uint {
	out := make([]uint, len(max))
	for i, v := range max {
		if v == Unlimited {
			out[i] = uint(hdf5.FileSpaceUnlimited)
		} else {
			out[i] = uint(v)
		}
	}
	return out
}

func toUintSlice(in []uint64) []uint {
	out := make([]uint, len(in))
	for i, v := range in {
		out[i] = uint(v)
	}
	return out
}

func (s *HDF5Store) CreateDataset(h Handle, path string, elemType types.ElementType, extent Extent, chunkShape []uint64, compressionLevel int) (DatasetHandle, error) {
	fh := h.(*fileHandle)

	dtype, _, err := hdf5Datatype(elemType)
	if err != nil {
		return nil, wrapErr("createDataset", path, err)
	}

	maxDims := toMaxDims(extent)
	dspace, err := hdf5.NewDataspaceSimple(toUintSlice(extent.Dims), h5MaxDims(maxDims))
	if err != nil {
		return nil, wrapErr("createDataset", path, err)
	}
	defer dspace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, wrapErr("createDataset", path, err)
	}
	if len(chunkShape) > 0 {
		if err := plist.SetChunk(toUintSlice(chunkShape)); err != nil {
			return nil, wrapErr("createDataset", path, err)
		}
		if compressionLevel > 0 {
			if err := plist.SetDeflate(uint(compressionLevel)); err != nil {
				return nil, wrapErr("createDataset", path, err)
			}
		}
	}

	ds, err := createNestedDataset(fh.f, path, dtype, dspace, plist)
	if err != nil {
		return nil, wrapErr("createDataset", path, err)
	}

	return &datasetHandle{ds: ds, elem: elemType, dims: append([]uint64{}, extent.Dims...), maxDims: maxDims}, nil
}

// createNestedDataset creates intermediate groups along path (HDF5 paths
// like "/BAG_root/node/num_hypotheses" require "/BAG_root/node" to exist
// first) before creating the leaf dataset.
func createNestedDataset(f *hdf5.File, path string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace, plist *hdf5.PropList) (*hdf5.Dataset, error) {
	dir, leaf := splitPath(path)
	if dir != "" && dir != "/" {
		ensureGroup(f, dir)
	}
	return f.CreateDatasetWith(joinPath(dir, leaf), dtype, dspace, plist)
}

func ensureGroup(f *hdf5.File, path string) {
	segments := splitSegments(path)
	cur := ""
	for _, seg := range segments {
		cur = cur + "/" + seg
		if !groupExists(f, cur) {
			if g, err := f.CreateGroup(cur); err == nil {
				g.Close()
			}
		}
	}
}

func groupExists(f *hdf5.File, path string) bool {
	g, err := f.OpenGroup(path)
	if err != nil {
		return false
	}
	g.Close()
	return true
}

func (s *HDF5Store) OpenDataset(h Handle, path string) (DatasetHandle, error) {
	fh := h.(*fileHandle)
	ds, err := fh.f.OpenDataset(path)
	if err != nil {
		return nil, wrapErr("openDataset", path, err)
	}
	dspace := ds.Space()
	defer dspace.Close()
	dims, maxDims, err := dspace.SimpleExtentDims()
	if err != nil {
		return nil, wrapErr("openDataset", path, err)
	}
	elem, err := elementTypeOf(ds)
	if err != nil {
		return nil, wrapErr("openDataset", path, err)
	}
	return &datasetHandle{
		ds:      ds,
		elem:    elem,
		dims:    toUint64Slice(dims),
		maxDims: toUint64Slice(maxDims),
	}, nil
}

// elementTypeOf infers the ElementType of an already-open dataset from its
// HDF5 datatype class. The compound case reconstructs field names/types
// from the HDF5 compound member table (the inverse of compoundDatatype).
func elementTypeOf(ds *hdf5.Dataset) (types.ElementType, error) {
	dt := ds.Datatype()
	switch dt.Class() {
	case hdf5.TypeFloat:
		return types.NewFloat32(), nil
	case hdf5.TypeInteger:
		return types.NewUInt32(), nil
	case hdf5.TypeCompound:
		return reconstructCompound(dt)
	default:
		return types.ElementType{}, fmt.Errorf("bag: unsupported HDF5 datatype class %v", dt.Class())
	}
}

func reconstructCompound(dt *hdf5.Datatype) (types.ElementType, error) {
	n := dt.NMembers()
	fields := make([]types.CompoundField, 0, n)
	for i := 0; i < n; i++ {
		name := dt.MemberName(i)
		mt := dt.MemberType(i)
		fields = append(fields, types.CompoundField{Name: name, Type: primitiveFromDatatype(mt)})
	}
	return types.NewCompound(fields), nil
}

func primitiveFromDatatype(dt *hdf5.Datatype) types.Primitive {
	switch dt.Size() {
	case 1:
		return types.PrimitiveUInt8
	case 2:
		return types.PrimitiveInt16
	case 8:
		return types.PrimitiveFloat64
	default:
		if dt.Class() == hdf5.TypeFloat {
			return types.PrimitiveFloat32
		}
		return types.PrimitiveUInt32
	}
}

func toUint64Slice(in []uint) []uint64 {
	out := make([]uint64, len(in))
	for i, v := range in {
		out[i] = uint64(v)
	}
	return out
}

func (s *HDF5Store) ReadSlab(dh DatasetHandle, originCell, extent []uint64) ([]byte, error) {
	d := dh.(*datasetHandle)

	fileSpace := d.ds.Space()
	defer fileSpace.Close()
	if err := fileSpace.SelectHyperslab(toUintSlice(originCell), nil, toUintSlice(extent), nil); err != nil {
		return nil, wrapErr("readSlab", "", err)
	}
	memSpace, err := hdf5.NewDataspaceSimple(toUintSlice(extent), nil)
	if err != nil {
		return nil, wrapErr("readSlab", "", err)
	}
	defer memSpace.Close()

	size, err := types.Size(d.elem)
	if err != nil {
		return nil, wrapErr("readSlab", "", err)
	}
	n := cellCount(extent)
	buf := make([]byte, n*uint64(size))
	if err := d.ds.ReadSubset(&buf, memSpace, fileSpace); err != nil {
		return nil, wrapErr("readSlab", "", err)
	}
	return buf, nil
}

func (s *HDF5Store) WriteSlab(dh DatasetHandle, originCell, extent []uint64, buf []byte) error {
	d := dh.(*datasetHandle)

	if needsExtend(d.dims, originCell, extent) {
		newDims := extendedDims(d.dims, originCell, extent)
		if err := s.Extend(dh, newDims); err != nil {
			return err
		}
	}

	fileSpace := d.ds.Space()
	defer fileSpace.Close()
	if err := fileSpace.SelectHyperslab(toUintSlice(originCell), nil, toUintSlice(extent), nil); err != nil {
		return wrapErr("writeSlab", "", err)
	}
	memSpace, err := hdf5.NewDataspaceSimple(toUintSlice(extent), nil)
	if err != nil {
		return wrapErr("writeSlab", "", err)
	}
	defer memSpace.Close()

	if err := d.ds.WriteSubset(buf, memSpace, fileSpace); err != nil {
		return wrapErr("writeSlab", "", err)
	}
	return nil
}

func needsExtend(dims, origin, extent []uint64) bool {
	for i := range dims {
		if origin[i]+extent[i] > dims[i] {
			return true
		}
	}
	return false
}

func extendedDims(dims, origin, extent []uint64) []uint64 {
	out := append([]uint64{}, dims...)
	for i := range out {
		if need := origin[i] + extent[i]; need > out[i] {
			out[i] = need
		}
	}
	return out
}

func cellCount(extent []uint64) uint64 {
	n := uint64(1)
	for _, e := range extent {
		n *= e
	}
	return n
}

func (s *HDF5Store) Extend(dh DatasetHandle, newDims []uint64) error {
	d := dh.(*datasetHandle)
	if err := d.ds.Resize(toUintSlice(newDims)); err != nil {
		return wrapErr("extend", "", err)
	}
	d.dims = append([]uint64{}, newDims...)
	return nil
}

func (s *HDF5Store) ReadAttribute(target AttrTarget, name string) (AttrValue, error) {
	attr, loc, err := openAttribute(target, name)
	if err != nil {
		return AttrValue{}, wrapErr("readAttribute", name, err)
	}
	defer attr.Close()
	_ = loc

	dt := attr.Datatype()
	switch dt.Class() {
	case hdf5.TypeString:
		var s string
		if err := attr.Read(&s, dt); err != nil {
			return AttrValue{}, wrapErr("readAttribute", name, err)
		}
		return StringAttr(s), nil
	case hdf5.TypeFloat:
		var f float32
		if err := attr.Read(&f, hdf5.T_NATIVE_FLOAT); err != nil {
			return AttrValue{}, wrapErr("readAttribute", name, err)
		}
		return Float32Attr(f), nil
	default:
		var u uint32
		if err := attr.Read(&u, hdf5.T_NATIVE_UINT32); err != nil {
			return AttrValue{}, wrapErr("readAttribute", name, err)
		}
		return UInt32Attr(u), nil
	}
}

func (s *HDF5Store) WriteAttribute(target AttrTarget, name string, value AttrValue) error {
	loc, err := attrLocation(target)
	if err != nil {
		return wrapErr("writeAttribute", name, err)
	}

	var dtype *hdf5.Datatype
	var dspace *hdf5.Dataspace
	switch value.Kind {
	case AttrString:
		dtype, err = hdf5.NewDatatypeFromString(len(value.Str))
		if err != nil {
			return wrapErr("writeAttribute", name, err)
		}
		dspace, err = hdf5.NewDataspace(hdf5.S_SCALAR)
	case AttrFloat32:
		dtype = hdf5.T_NATIVE_FLOAT
		dspace, err = hdf5.NewDataspace(hdf5.S_SCALAR)
	case AttrUInt32:
		dtype = hdf5.T_NATIVE_UINT32
		dspace, err = hdf5.NewDataspace(hdf5.S_SCALAR)
	}
	if err != nil {
		return wrapErr("writeAttribute", name, err)
	}
	defer dspace.Close()

	deleteAttributeIfPresent(loc, name)
	attr, err := loc.CreateAttribute(name, dtype, dspace)
	if err != nil {
		return wrapErr("writeAttribute", name, err)
	}
	defer attr.Close()

	switch value.Kind {
	case AttrString:
		err = attr.Write(&value.Str, dtype)
	case AttrFloat32:
		err = attr.Write(&value.F32, dtype)
	case AttrUInt32:
		err = attr.Write(&value.U32, dtype)
	}
	if err != nil {
		return wrapErr("writeAttribute", name, err)
	}
	return nil
}

// attributable is the minimal surface hdf5.File/hdf5.Dataset/hdf5.Group
// share for attribute manipulation.
type attributable interface {
	CreateAttribute(name string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace) (*hdf5.Attribute, error)
	OpenAttribute(name string) (*hdf5.Attribute, error)
	DeleteAttribute(name string) error
}

func attrLocation(target AttrTarget) (attributable, error) {
	switch t := target.(type) {
	case *fileHandle:
		return t.f, nil
	case *datasetHandle:
		return t.ds, nil
	default:
		return nil, fmt.Errorf("unsupported attribute target %T", target)
	}
}

func openAttribute(target AttrTarget, name string) (*hdf5.Attribute, attributable, error) {
	loc, err := attrLocation(target)
	if err != nil {
		return nil, nil, err
	}
	attr, err := loc.OpenAttribute(name)
	if err != nil {
		return nil, nil, err
	}
	return attr, loc, nil
}

func deleteAttributeIfPresent(loc attributable, name string) {
	if _, err := loc.OpenAttribute(name); err == nil {
		_ = loc.DeleteAttribute(name)
	}
}

func (s *HDF5Store) Exists(h Handle, path string) bool {
	fh := h.(*fileHandle)
	if groupExists(fh.f, path) {
		return true
	}
	if ds, err := fh.f.OpenDataset(path); err == nil {
		ds.Close()
		return true
	}
	return false
}

func splitPath(path string) (dir, leaf string) {
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func joinPath(dir, leaf string) string {
	if dir == "" {
		return leaf
	}
	return dir + "/" + leaf
}

func splitSegments(path string) []string {
	var segs []string
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i > start {
				segs = append(segs, path[start:i])
			}
			start = i + 1
		}
	}
	return segs
}
