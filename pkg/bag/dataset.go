package bag

import (
	"bytes"
	"strings"

	"github.com/bagfmt/bag/internal/store"
	"github.com/bagfmt/bag/internal/types"
	"github.com/bagfmt/bag/internal/xmlmeta"
)

// Version is the fixed root-group version string new files are created
// with (spec §6).
const Version = "1.6.2"

// Dataset is the aggregate root (spec §2, §3): it owns a backing store
// handle, a Descriptor, a registry of layers keyed by kind, a
// TrackingList, and Metadata; it enforces cross-layer invariants and
// provides grid<->geographic coordinate conversion.
type Dataset struct {
	store    store.Store
	handle   store.Handle
	readOnly bool
	closed   bool

	descriptor   *Descriptor
	metadata     *Metadata
	trackingList *TrackingList
	layers       map[types.LayerKind]Layer
}

// builtinScalarKinds are the kinds whose canonical element type and fixed
// internal path TypeCatalog already knows; compound, surface-corrections
// and interleaved-legacy layers need construction parameters the
// uniform createLayer(kind) signature can't carry (see
// CreateCompoundLayer / CreateSurfaceCorrectionsLayer).
var builtinScalarKinds = []types.LayerKind{
	types.Elevation, types.Uncertainty, types.HypothesisStrength,
	types.NumHypotheses, types.ShoalElevation, types.StdDev,
	types.NumSoundings, types.AverageElevation, types.NominalElevation,
}

// OpenFile opens an existing .bag file on disk through the default
// gonum.org/v1/hdf5-backed store (spec §4.4). Use Open directly to supply a
// different Store, e.g. a fake in tests.
func OpenFile(path string, opts OpenOptions) (*Dataset, error) {
	return Open(store.NewHDF5Store(), path, opts)
}

// CreateFile creates a new .bag file on disk through the default
// gonum.org/v1/hdf5-backed store. Use Create directly to supply a different
// Store.
func CreateFile(path string, md *Metadata, opts CreateOptions) (*Dataset, error) {
	return Create(store.NewHDF5Store(), path, md, opts)
}

// Open opens an existing backing-store file, reads root version and XML
// metadata, rebuilds the Descriptor, opens every present Layer (decoding
// internal paths back to kinds), and opens the TrackingList (spec §4.7).
func Open(st store.Store, path string, opts OpenOptions) (*Dataset, error) {
	mode := store.ReadWrite
	if opts.ReadOnly {
		mode = store.ReadOnly
	}
	h, err := st.OpenFile(path, mode)
	if err != nil {
		return nil, newErr(StorageError, "open", path, "", err)
	}

	versionAttr, err := st.ReadAttribute(h, "Bag Version")
	if err != nil {
		return nil, newErr(VersionMismatch, "open", path, "missing Bag Version attribute", err)
	}
	if versionAttr.Str == "" {
		return nil, newErr(VersionMismatch, "open", path, "empty Bag Version attribute", nil)
	}

	md, err := readMetadataXML(st, h, opts.metadataHome(), opts.ValidateMetadata)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		store:    st,
		handle:   h,
		readOnly: opts.ReadOnly,
		metadata: md,
		layers:   make(map[types.LayerKind]Layer),
	}
	ds.descriptor = descriptorFromMetadata(md)

	for _, kind := range builtinScalarKinds {
		path, _ := types.InternalPath(kind)
		if !st.Exists(h, path) {
			continue
		}
		layer, err := openScalarLayer(ds, kind, path)
		if err != nil {
			return nil, err
		}
		ds.layers[kind] = layer
		ds.descriptor.layers[kind] = layer.Descriptor()
	}

	if err := openSurfaceCorrectionsLayer(ds); err != nil {
		return nil, err
	}
	if err := openCompoundLayer(ds); err != nil {
		return nil, err
	}
	if err := openLegacyLayers(ds); err != nil {
		return nil, err
	}

	tl, err := openTrackingList(ds)
	if err != nil {
		return nil, err
	}
	ds.trackingList = tl

	return ds, nil
}

const trackingListPath = "/BAG_root/tracking_list"
const metadataPath = "/BAG_root/metadata"

func readMetadataXML(st store.Store, h store.Handle, metadataHome string, validate bool) (*Metadata, error) {
	if !st.Exists(h, metadataPath) {
		return nil, newErr(NotFound, "open", metadataPath, "metadata dataset missing", nil)
	}
	ds, err := st.OpenDataset(h, metadataPath)
	if err != nil {
		return nil, newErr(StorageError, "open", metadataPath, "", err)
	}
	dims := ds.Dims()
	if len(dims) == 0 || dims[0] == 0 {
		return nil, newErr(InvalidMetadata, "open", metadataPath, "empty metadata document", nil)
	}
	buf, err := st.ReadSlab(ds, []uint64{0}, []uint64{dims[0]})
	if err != nil {
		return nil, newErr(StorageError, "open", metadataPath, "", err)
	}
	md, err := xmlmeta.Import(bytes.NewReader(buf), xmlmeta.ImportOptions{ValidateAgainstSchema: validate, MetadataHome: metadataHome})
	if err != nil {
		return nil, newErr(InvalidMetadata, "open", metadataPath, "", err)
	}
	return md, nil
}

func descriptorFromMetadata(md *Metadata) *Descriptor {
	sp := md.Spatial
	d := &Descriptor{
		Version:                      Version,
		HorizontalReferenceSystemWkt: md.HorizontalReferenceSystem.Definition,
		VerticalReferenceSystemWkt:   md.VerticalReferenceSystem.Definition,
		Rows:                         uint64(sp.Rows),
		Cols:                         uint64(sp.Cols),
		RowResolution:                sp.RowResolution,
		ColResolution:                sp.ColumnResolution,
		OriginX:                      sp.LLCornerX,
		OriginY:                      sp.LLCornerY,
		ProjectedLLX:                 sp.LLCornerX,
		ProjectedLLY:                 sp.LLCornerY,
		ProjectedURX:                 sp.URCornerX,
		ProjectedURY:                 sp.URCornerY,
		layers:                       make(map[types.LayerKind]*LayerDescriptor),
	}
	return d
}

func openScalarLayer(ds *Dataset, kind types.LayerKind, path string) (Layer, error) {
	dsHandle, err := ds.store.OpenDataset(ds.handle, path)
	if err != nil {
		return nil, newErr(StorageError, "open", path, "", err)
	}
	elemType, err := types.CanonicalElementType(kind)
	if err != nil {
		return nil, newErr(InvalidMetadata, "open", path, "", err)
	}
	size, _ := types.Size(elemType)
	dims := dsHandle.Dims()
	desc := &LayerDescriptor{
		Kind:         kind,
		ElementType:  elemType,
		ElementSize:  size,
		InternalPath: path,
		Rows:         dims[0],
		Cols:         dims[1],
	}
	if minAttr, err := ds.store.ReadAttribute(dsHandle, "min"); err == nil {
		desc.MinValue = float64(minAttr.F32)
	}
	if maxAttr, err := ds.store.ReadAttribute(dsHandle, "max"); err == nil {
		desc.MaxValue = float64(maxAttr.F32)
	}
	if chunkAttr, err := ds.store.ReadAttribute(dsHandle, "chunk size"); err == nil {
		desc.ChunkSize = uint64(chunkAttr.U32)
	}
	if compAttr, err := ds.store.ReadAttribute(dsHandle, "compression level"); err == nil {
		desc.CompressionLevel = int(compAttr.U32)
	}
	return &SimpleLayer{layerBase{desc: desc, dataset: ds, dsHandle: dsHandle}}, nil
}

const surfaceCorrectionsPath = "/BAG_root/vertical_datum_corrections"
const compoundLayerPath = "/BAG_root/compound_layer"
const compoundFieldsPath = "/BAG_root/compound_layer_fields"
const nodeGroupPath = "/BAG_root/node"
const elevationSolutionGroupPath = "/BAG_root/elevation_solution"

// openSurfaceCorrectionsLayer reopens a previously created
// vertical_datum_corrections dataset, inferring CorrectorCount back from
// the stored VerticalDatumCorrectionKind element type and the vertical
// datums list from its "verticaldatums" attribute (spec §4.5).
func openSurfaceCorrectionsLayer(ds *Dataset) error {
	if !ds.store.Exists(ds.handle, surfaceCorrectionsPath) {
		return nil
	}
	dsHandle, err := ds.store.OpenDataset(ds.handle, surfaceCorrectionsPath)
	if err != nil {
		return newErr(StorageError, "open", surfaceCorrectionsPath, "", err)
	}
	elemType := dsHandle.ElementType()
	size, _ := types.Size(elemType)
	dims := dsHandle.Dims()
	desc := &LayerDescriptor{
		Kind: types.SurfaceCorrections, ElementType: elemType, ElementSize: size,
		InternalPath: surfaceCorrectionsPath, Rows: dims[0], Cols: dims[1],
	}
	layer := &SurfaceCorrectionsLayer{
		layerBase:      layerBase{desc: desc, dataset: ds, dsHandle: dsHandle},
		CorrectorCount: elemType.CorrectorCount,
	}
	if datumsAttr, err := ds.store.ReadAttribute(dsHandle, "verticaldatums"); err == nil && datumsAttr.Str != "" {
		layer.VerticalDatums = strings.Split(datumsAttr.Str, ";")
	}
	ds.layers[types.SurfaceCorrections] = layer
	ds.descriptor.layers[types.SurfaceCorrections] = desc
	return nil
}

// openCompoundLayer reopens a previously created user-declared compound
// layer, rebuilding its field list from the stored dataset's compound
// element type; no separate field-definition table is read.
func openCompoundLayer(ds *Dataset) error {
	if !ds.store.Exists(ds.handle, compoundLayerPath) {
		return nil
	}
	dsHandle, err := ds.store.OpenDataset(ds.handle, compoundLayerPath)
	if err != nil {
		return newErr(StorageError, "open", compoundLayerPath, "", err)
	}
	elemType := dsHandle.ElementType()
	size, _ := types.Size(elemType)
	dims := dsHandle.Dims()
	desc := &LayerDescriptor{
		Kind: types.Compound, ElementType: elemType, ElementSize: size,
		InternalPath: compoundLayerPath, Rows: dims[0], Cols: dims[1],
	}
	layer := &CompoundLayer{layerBase{desc: desc, dataset: ds, dsHandle: dsHandle}}
	ds.layers[types.Compound] = layer
	ds.descriptor.layers[types.Compound] = desc
	return nil
}

// openLegacyLayers reopens the read-only field-projection views over a
// legacy interleaved NODE and/or ELEVATION dataset, if present (spec §4.5:
// only files produced by the original implementation carry these; Create
// never writes them).
func openLegacyLayers(ds *Dataset) error {
	// The same paths are the parent groups of the optional scalar layers
	// CreateLayer writes; once one of those is open the path is a group.
	registered := func(kinds ...types.LayerKind) bool {
		for _, k := range kinds {
			if _, ok := ds.layers[k]; ok {
				return true
			}
		}
		return false
	}
	if ds.store.Exists(ds.handle, nodeGroupPath) && !registered(types.HypothesisStrength, types.NumHypotheses) {
		if err := openLegacyGroup(ds, nodeGroupPath, []types.LayerKind{types.HypothesisStrength, types.NumHypotheses}); err != nil {
			return err
		}
	}
	if ds.store.Exists(ds.handle, elevationSolutionGroupPath) && !registered(types.ShoalElevation, types.StdDev, types.NumSoundings) {
		if err := openLegacyGroup(ds, elevationSolutionGroupPath, []types.LayerKind{types.ShoalElevation, types.StdDev, types.NumSoundings}); err != nil {
			return err
		}
	}
	return nil
}

func openLegacyGroup(ds *Dataset, path string, kinds []types.LayerKind) error {
	dsHandle, err := ds.store.OpenDataset(ds.handle, path)
	if err != nil {
		return newErr(StorageError, "open", path, "", err)
	}
	elemType := dsHandle.ElementType()
	if elemType.Kind != types.CompoundKind || len(elemType.Fields) != len(kinds) {
		return newErr(InvalidMetadata, "open", path, "legacy record field count mismatch", nil)
	}
	recordSize, _ := types.Size(elemType)
	dims := dsHandle.Dims()

	for i, kind := range kinds {
		offset, err := types.Size(types.NewCompound(elemType.Fields[:i]))
		if err != nil {
			return newErr(InvalidMetadata, "open", path, "", err)
		}
		fieldSize, err := types.Size(types.NewCompound(elemType.Fields[i : i+1]))
		if err != nil {
			return newErr(InvalidMetadata, "open", path, "", err)
		}
		desc := &LayerDescriptor{
			Kind: kind, ElementType: elemType, ElementSize: fieldSize,
			InternalPath: path, Rows: dims[0], Cols: dims[1],
		}
		layer := &InterleavedLegacyLayer{
			layerBase:   layerBase{desc: desc, dataset: ds, dsHandle: dsHandle},
			recordSize:  recordSize,
			fieldOffset: offset,
			fieldSize:   fieldSize,
		}
		ds.layers[kind] = layer
		ds.descriptor.layers[kind] = desc
	}
	return nil
}

func openTrackingList(ds *Dataset) (*TrackingList, error) {
	if !ds.store.Exists(ds.handle, trackingListPath) {
		return nil, newErr(NotFound, "open", trackingListPath, "tracking list missing", nil)
	}
	dsHandle, err := ds.store.OpenDataset(ds.handle, trackingListPath)
	if err != nil {
		return nil, newErr(StorageError, "open", trackingListPath, "", err)
	}
	tl := &TrackingList{dataset: ds, dsHandle: dsHandle}
	if err := tl.load(); err != nil {
		return nil, err
	}
	return tl, nil
}

// Create creates a new backing-store file: serializes metadata, creates
// mandatory Elevation and Uncertainty layers at the grid dims declared in
// metadata, creates an empty TrackingList. No optional layers are created
// (spec §4.7).
func Create(st store.Store, path string, md *Metadata, opts CreateOptions) (*Dataset, error) {
	if err := validateMetadataForCreate(md); err != nil {
		return nil, err
	}

	h, err := st.CreateFile(path)
	if err != nil {
		return nil, newErr(StorageError, "create", path, "", err)
	}
	if err := st.WriteAttribute(h, "Bag Version", store.StringAttr(Version)); err != nil {
		return nil, newErr(StorageError, "create", path, "", err)
	}

	if err := writeMetadataXML(st, h, md); err != nil {
		return nil, err
	}

	ds := &Dataset{
		store:      st,
		handle:     h,
		metadata:   md,
		layers:     make(map[types.LayerKind]Layer),
		descriptor: descriptorFromMetadata(md),
	}

	rows, cols := uint64(md.Spatial.Rows), uint64(md.Spatial.Cols)
	for _, kind := range []types.LayerKind{types.Elevation, types.Uncertainty} {
		layer, err := createScalarLayer(ds, kind, rows, cols, opts.ChunkSize, opts.CompressionLevel)
		if err != nil {
			return nil, err
		}
		ds.layers[kind] = layer
		ds.descriptor.layers[kind] = layer.Descriptor()
	}

	tl, err := createTrackingList(ds, opts.ChunkSize)
	if err != nil {
		return nil, err
	}
	ds.trackingList = tl

	return ds, nil
}

func validateMetadataForCreate(md *Metadata) error {
	if md.Spatial.Rows <= 0 || md.Spatial.Cols <= 0 {
		return newErr(InvalidMetadata, "create", "", "spatial.rows/cols must be positive", nil)
	}
	if md.Identification.West > md.Identification.East || md.Identification.South > md.Identification.North {
		return newErr(InvalidMetadata, "create", "", "bounding box ll > ur", nil)
	}
	return nil
}

func writeMetadataXML(st store.Store, h store.Handle, md *Metadata) error {
	xmlBytes, err := xmlmeta.Export(md)
	if err != nil {
		return newErr(InvalidMetadata, "create", metadataPath, "", err)
	}
	uint8Type := byteElementType()
	dsHandle, err := st.CreateDataset(h, metadataPath, uint8Type, store.Extent{Dims: []uint64{uint64(len(xmlBytes))}}, nil, 0)
	if err != nil {
		return newErr(StorageError, "create", metadataPath, "", err)
	}
	if err := st.WriteSlab(dsHandle, []uint64{0}, []uint64{uint64(len(xmlBytes))}, xmlBytes); err != nil {
		return newErr(StorageError, "create", metadataPath, "", err)
	}
	return nil
}

// byteElementType is the UInt8 element type the metadata XML document is
// stored as (spec §6: "metadata — XML document stored as a 1-D UInt8
// dataset"). TypeCatalog's canonical element types cover layer kinds, not
// this fixed auxiliary dataset, so it's built directly here as a compound
// with a single UInt8 field.
func byteElementType() types.ElementType {
	return types.NewCompound([]types.CompoundField{{Name: "byte", Type: types.PrimitiveUInt8}})
}

func createScalarLayer(ds *Dataset, kind types.LayerKind, rows, cols, chunkSize uint64, compressionLevel int) (Layer, error) {
	path, err := types.InternalPath(kind)
	if err != nil {
		return nil, newErr(InvalidArgument, "createLayer", "", "", err)
	}
	elemType, err := types.CanonicalElementType(kind)
	if err != nil {
		return nil, newErr(InvalidArgument, "createLayer", path, "", err)
	}
	size, _ := types.Size(elemType)

	extent := store.Extent{Dims: []uint64{rows, cols}}
	chunkShape := []uint64{min64(chunkSize, rows), min64(chunkSize, cols)}
	dsHandle, err := ds.store.CreateDataset(ds.handle, path, elemType, extent, chunkShape, compressionLevel)
	if err != nil {
		return nil, newErr(StorageError, "createLayer", path, "", err)
	}

	desc := &LayerDescriptor{
		Kind: kind, ElementType: elemType, ElementSize: size,
		InternalPath: path, ChunkSize: chunkSize, CompressionLevel: compressionLevel,
		Rows: rows, Cols: cols,
	}
	layer := &SimpleLayer{layerBase{desc: desc, dataset: ds, dsHandle: dsHandle}}
	if err := layer.WriteAttributes(); err != nil {
		return nil, err
	}
	return layer, nil
}

func createTrackingList(ds *Dataset, chunkSize uint64) (*TrackingList, error) {
	elemType := types.NewCompound([]types.CompoundField{
		{Name: "row", Type: types.PrimitiveUInt32},
		{Name: "col", Type: types.PrimitiveUInt32},
		{Name: "depth", Type: types.PrimitiveFloat32},
		{Name: "uncertainty", Type: types.PrimitiveFloat32},
		{Name: "track_code", Type: types.PrimitiveUInt8},
		{Name: "list_series", Type: types.PrimitiveInt16},
	})
	extent := store.Extent{Dims: []uint64{0}, MaxDims: []uint64{store.Unlimited}}
	trackChunk := chunkSize
	if trackChunk == 0 || trackChunk > 10 {
		trackChunk = 10
	}
	dsHandle, err := ds.store.CreateDataset(ds.handle, trackingListPath, elemType, extent, []uint64{trackChunk}, 0)
	if err != nil {
		return nil, newErr(StorageError, "create", trackingListPath, "", err)
	}
	if err := ds.store.WriteAttribute(dsHandle, "Tracking List Length", store.UInt32Attr(0)); err != nil {
		return nil, newErr(StorageError, "create", trackingListPath, "", err)
	}
	return &TrackingList{dataset: ds, dsHandle: dsHandle}, nil
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// CreateLayer creates an optional scalar layer by kind. Fails with
// AlreadyExists if already present, ReadOnly on a read-only dataset, and
// InvalidArgument if kind is not creatable this way (InterleavedLegacy and
// the parameterized Compound/SurfaceCorrections kinds use
// CreateCompoundLayer / CreateSurfaceCorrectionsLayer instead).
func (d *Dataset) CreateLayer(kind types.LayerKind, chunkSize uint64, compressionLevel int) (Layer, error) {
	if d.readOnly {
		return nil, newErr(ReadOnly, "createLayer", "", "dataset is read-only", nil)
	}
	if _, exists := d.layers[kind]; exists {
		return nil, newErr(AlreadyExists, "createLayer", "", "", nil)
	}
	if !isOptionalScalarKind(kind) {
		return nil, newErr(InvalidArgument, "createLayer", "", "kind not creatable via CreateLayer", nil)
	}
	if chunkSize == 0 {
		chunkSize = 100
	}
	layer, err := createScalarLayer(d, kind, d.descriptor.Rows, d.descriptor.Cols, chunkSize, compressionLevel)
	if err != nil {
		return nil, err
	}
	d.layers[kind] = layer
	d.descriptor.layers[kind] = layer.Descriptor()
	return layer, nil
}

// CreateCompoundLayer creates the single user-declared CompoundLayer this
// dataset may carry. fields is packed in declared order with no padding
// (spec §4.5). A second call fails with AlreadyExists.
func (d *Dataset) CreateCompoundLayer(fields []types.CompoundField, chunkSize uint64, compressionLevel int) (*CompoundLayer, error) {
	if d.readOnly {
		return nil, newErr(ReadOnly, "createCompoundLayer", "", "dataset is read-only", nil)
	}
	if _, exists := d.layers[types.Compound]; exists {
		return nil, newErr(AlreadyExists, "createCompoundLayer", "", "", nil)
	}
	if len(fields) == 0 {
		return nil, newErr(InvalidArgument, "createCompoundLayer", "", "at least one field required", nil)
	}
	if chunkSize == 0 {
		chunkSize = 100
	}

	elemType := types.NewCompound(fields)
	size, err := types.Size(elemType)
	if err != nil {
		return nil, newErr(InvalidArgument, "createCompoundLayer", "", "", err)
	}

	rows, cols := d.descriptor.Rows, d.descriptor.Cols
	extent := store.Extent{Dims: []uint64{rows, cols}}
	chunkShape := []uint64{min64(chunkSize, rows), min64(chunkSize, cols)}
	dsHandle, err := d.store.CreateDataset(d.handle, compoundLayerPath, elemType, extent, chunkShape, compressionLevel)
	if err != nil {
		return nil, newErr(StorageError, "createCompoundLayer", compoundLayerPath, "", err)
	}

	desc := &LayerDescriptor{
		Kind: types.Compound, ElementType: elemType, ElementSize: size,
		InternalPath: compoundLayerPath, ChunkSize: chunkSize, CompressionLevel: compressionLevel,
		Rows: rows, Cols: cols,
	}
	layer := &CompoundLayer{layerBase{desc: desc, dataset: d, dsHandle: dsHandle}}
	if err := layer.WriteAttributes(); err != nil {
		return nil, err
	}
	d.layers[types.Compound] = layer
	d.descriptor.layers[types.Compound] = desc
	return layer, nil
}

// CreateSurfaceCorrectionsLayer creates the SurfaceCorrections layer over
// its own (possibly coarser) grid of rows x cols nodes, each holding
// correctorCount vertical datum offsets (spec §4.5). A second call fails
// with AlreadyExists.
func (d *Dataset) CreateSurfaceCorrectionsLayer(correctorCount int, rows, cols uint64, verticalDatums []string, topography SurfaceTopography, chunkSize uint64, compressionLevel int) (*SurfaceCorrectionsLayer, error) {
	if d.readOnly {
		return nil, newErr(ReadOnly, "createSurfaceCorrectionsLayer", "", "dataset is read-only", nil)
	}
	if _, exists := d.layers[types.SurfaceCorrections]; exists {
		return nil, newErr(AlreadyExists, "createSurfaceCorrectionsLayer", "", "", nil)
	}
	if correctorCount < 1 || correctorCount > 10 {
		return nil, newErr(InvalidArgument, "createSurfaceCorrectionsLayer", "", "corrector count out of range [1,10]", nil)
	}
	if chunkSize == 0 {
		chunkSize = 100
	}

	elemType := types.NewVerticalDatumCorrection(correctorCount)
	size, err := types.Size(elemType)
	if err != nil {
		return nil, newErr(InvalidArgument, "createSurfaceCorrectionsLayer", "", "", err)
	}

	extent := store.Extent{Dims: []uint64{rows, cols}}
	chunkShape := []uint64{min64(chunkSize, rows), min64(chunkSize, cols)}
	dsHandle, err := d.store.CreateDataset(d.handle, surfaceCorrectionsPath, elemType, extent, chunkShape, compressionLevel)
	if err != nil {
		return nil, newErr(StorageError, "createSurfaceCorrectionsLayer", surfaceCorrectionsPath, "", err)
	}

	desc := &LayerDescriptor{
		Kind: types.SurfaceCorrections, ElementType: elemType, ElementSize: size,
		InternalPath: surfaceCorrectionsPath, ChunkSize: chunkSize, CompressionLevel: compressionLevel,
		Rows: rows, Cols: cols,
	}
	layer := &SurfaceCorrectionsLayer{
		layerBase:      layerBase{desc: desc, dataset: d, dsHandle: dsHandle},
		CorrectorCount: correctorCount,
		Topography:     topography,
		VerticalDatums: verticalDatums,
	}
	if err := layer.WriteAttributes(); err != nil {
		return nil, err
	}
	d.layers[types.SurfaceCorrections] = layer
	d.descriptor.layers[types.SurfaceCorrections] = desc
	return layer, nil
}

func isOptionalScalarKind(kind types.LayerKind) bool {
	switch kind {
	case types.AverageElevation, types.NominalElevation, types.HypothesisStrength,
		types.NumHypotheses, types.ShoalElevation, types.StdDev, types.NumSoundings:
		return true
	default:
		return false
	}
}

// GetLayer returns the open layer for kind, or NotFound.
func (d *Dataset) GetLayer(kind types.LayerKind) (Layer, error) {
	l, ok := d.layers[kind]
	if !ok {
		return nil, newErr(NotFound, "getLayer", "", "", nil)
	}
	return l, nil
}

// GetLayerKinds returns every currently registered layer kind.
func (d *Dataset) GetLayerKinds() []types.LayerKind { return d.descriptor.LayerKinds() }

// GetDescriptor returns a non-owning borrow of the dataset's Descriptor.
func (d *Dataset) GetDescriptor() *Descriptor { return d.descriptor }

// GetMetadata returns a non-owning borrow of the dataset's Metadata.
func (d *Dataset) GetMetadata() *Metadata { return d.metadata }

// GetTrackingList returns a non-owning borrow of the dataset's TrackingList.
func (d *Dataset) GetTrackingList() *TrackingList { return d.trackingList }

// GridToGeo converts a (row, col) cell index to a geographic point:
// x = origin.x + col*colRes, y = origin.y + row*rowRes (spec §4.7).
func (d *Dataset) GridToGeo(row, col uint64) (x, y float64) {
	desc := d.descriptor
	x = desc.OriginX + float64(col)*desc.ColResolution
	y = desc.OriginY + float64(row)*desc.RowResolution
	return x, y
}

// GeoToGrid converts a geographic point to the nearest (row, col) cell,
// clamping out-of-bounds inputs to the nearest edge cell. The conversion
// itself never fails (spec §4.7).
func (d *Dataset) GeoToGrid(x, y float64) (row, col uint64) {
	desc := d.descriptor
	c := roundNearest((x - desc.OriginX) / desc.ColResolution)
	r := roundNearest((y - desc.OriginY) / desc.RowResolution)
	return clampIndex(r, desc.Rows), clampIndex(c, desc.Cols)
}

func roundNearest(v float64) int64 {
	if v >= 0 {
		return int64(v + 0.5)
	}
	return -int64(-v + 0.5)
}

func clampIndex(v int64, dim uint64) uint64 {
	if v < 0 {
		return 0
	}
	if dim == 0 {
		return 0
	}
	if uint64(v) >= dim {
		return dim - 1
	}
	return uint64(v)
}

// Close flushes pending min/max attributes on every layer, flushes the
// TrackingList, and closes the backing store handle (spec §4.7).
func (d *Dataset) Close() error {
	if d.closed {
		return nil
	}
	for _, l := range d.layers {
		if d.readOnly {
			continue
		}
		// InterleavedLegacyLayer always refuses writes; skip it rather than
		// surface a ReadOnly error on an otherwise-clean close.
		if err := l.WriteAttributes(); err != nil {
			if bagErr, ok := err.(*Error); !ok || bagErr.Kind != ReadOnly {
				return err
			}
		}
	}
	if d.trackingList != nil && !d.readOnly {
		if err := d.trackingList.Write(); err != nil {
			return err
		}
	}
	d.closed = true
	return d.store.Close(d.handle)
}
