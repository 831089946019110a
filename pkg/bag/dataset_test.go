package bag

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bagfmt/bag/internal/store"
	"github.com/bagfmt/bag/internal/types"
)

func sampleMetadata(rows, cols int) *Metadata {
	return &Metadata{
		FileIdentifier:          "urn:bag:test-0001",
		CharacterSet:            "utf8",
		HierarchyLevel:          "dataset",
		DateStamp:               "2020-01-15",
		MetadataStandardName:    "ISO 19115",
		MetadataStandardVersion: "2003/Cor.1:2006",
		Contact: ResponsibleParty{
			IndividualName: "J. Hydrographer",
			Role:           "pointOfContact",
		},
		Identification: Identification{
			Title:                      "Test Survey",
			Date:                       "2020-01-10",
			DateType:                   "creation",
			Abstract:                   "A test survey.",
			Status:                     "completed",
			Language:                   "eng",
			TopicCategory:              "elevation",
			West:                       -81.5,
			East:                       -81.0,
			South:                      27.0,
			North:                      27.5,
			VerticalUncertaintyType:    CubeStdDev,
			DepthCorrectionType:        TrueDepth,
			NodeGroupType:              GroupCube,
			ElevationSolutionGroupType: GroupCube,
		},
		Spatial: Spatial{
			Rows: rows, Cols: cols,
			RowResolution: 1.0, ColumnResolution: 1.0,
			CellGeometry: "point",
			LLCornerX:    100.0, LLCornerY: 200.0,
			URCornerX: 100.0 + float64(cols-1), URCornerY: 200.0 + float64(rows-1),
		},
		HorizontalReferenceSystem: ReferenceSystem{Type: "WKT", Definition: `GEOGCS["WGS 84"]`},
		VerticalReferenceSystem:   ReferenceSystem{Type: "WKT", Definition: `VERT_CS["MLLW"]`},
		DataQuality: DataQuality{
			Scope: "dataset",
		},
		LegalConstraints:    "unrestricted",
		SecurityConstraints: "unclassified",
	}
}

func mustCreate(t *testing.T, st store.Store, path string, rows, cols int) *Dataset {
	t.Helper()
	opts := DefaultCreateOptions()
	opts.ChunkSize = 100
	opts.CompressionLevel = 1
	ds, err := Create(st, path, sampleMetadata(rows, cols), opts)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return ds
}

func float32Buf(vals []float32) []byte {
	buf := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

func decodeFloat32Buf(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
	return out
}

// Seed 1 (spec §8): 100x100 file, chunk 100, compression 1; Elevation
// E[r,c] = (c*r) mod 100 + c/100; row 42 read back matches.
func TestSeedElevationRowReadback(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "seed1.bag", 100, 100)
	defer ds.Close()

	layer, err := ds.GetLayer(types.Elevation)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}

	rows, cols := 100, 100
	vals := make([]float32, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			vals[r*cols+c] = float32((c*r)%100) + float32(c)/100
		}
	}
	if err := layer.Write(0, 0, uint64(rows-1), uint64(cols-1), float32Buf(vals)); err != nil {
		t.Fatalf("write: %v", err)
	}

	buf, err := layer.Read(42, 0, 42, uint64(cols-1))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := decodeFloat32Buf(buf)
	for c := 0; c < cols; c++ {
		want := float32((c*42)%100) + float32(c)/100
		if got[c] != want {
			t.Fatalf("row42[%d] = %v, want %v", c, got[c], want)
		}
	}
}

// Seed 2 (spec §8): Uncertainty U[r,c] = ((c*r) mod 100)/1000; descriptor
// max = 99/1000 = 0.099 ((c*r) mod 100 reaches 99, e.g. at r=1, c=99).
func TestSeedUncertaintyMax(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "seed2.bag", 100, 100)
	defer ds.Close()

	layer, err := ds.GetLayer(types.Uncertainty)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}

	rows, cols := 100, 100
	vals := make([]float32, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			vals[r*cols+c] = float32((c*r)%100) / 1000
		}
	}
	if err := layer.Write(0, 0, uint64(rows-1), uint64(cols-1), float32Buf(vals)); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := float32(99) / 1000
	desc := layer.Descriptor()
	if math.Abs(float64(desc.MaxValue)-float64(want)) > 1e-6 {
		t.Fatalf("descriptor.max = %v, want %v", desc.MaxValue, want)
	}
}

// Seed 3 (spec §8): SurfaceCorrections layer 3x3, correctorCount 2, custom
// records, verticalDatums "Test,Unknown"; re-open and verify.
func TestSeedSurfaceCorrectionsRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "seed3.bag", 100, 100)

	layer, err := ds.CreateSurfaceCorrectionsLayer(2, 3, 3, []string{"Test", "Unknown"}, Gridded, 0, 0)
	if err != nil {
		t.Fatalf("createSurfaceCorrectionsLayer: %v", err)
	}

	var buf []byte
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			z0 := -(float32(r) + 0.3333) * float32(c+1)
			z1 := (float32(r) + 0.55) * float32(c+1)
			x := (float64(r) + 10.3333) * float64(c+1)
			y := (float64(r) + 180.3333) * float64(c+1)
			buf = append(buf, layer.EncodeRecord([]float32{z0, z1}, x, y)...)
		}
	}
	if err := layer.Write(0, 0, 2, 2, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(st, "seed3.bag", DefaultOpenOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()

	l2, err := reopened.GetLayer(types.SurfaceCorrections)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}
	corr := l2.(*SurfaceCorrectionsLayer)
	if corr.CorrectorCount != 2 {
		t.Fatalf("correctorCount = %d, want 2", corr.CorrectorCount)
	}
	if len(corr.VerticalDatums) != 2 || corr.VerticalDatums[0] != "Test" || corr.VerticalDatums[1] != "Unknown" {
		t.Fatalf("verticalDatums = %v, want [Test Unknown]", corr.VerticalDatums)
	}

	readBack, err := corr.Read(0, 0, 2, 2)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			idx := r*3 + c
			z, x, y := corr.DecodeRecord(readBack, idx)
			wantZ0 := -(float32(r) + 0.3333) * float32(c+1)
			wantZ1 := (float32(r) + 0.55) * float32(c+1)
			wantX := (float64(r) + 10.3333) * float64(c+1)
			wantY := (float64(r) + 180.3333) * float64(c+1)
			if z[0] != wantZ0 || z[1] != wantZ1 {
				t.Fatalf("record[%d,%d].z = %v, want [%v %v]", r, c, z, wantZ0, wantZ1)
			}
			if x != wantX || y != wantY {
				t.Fatalf("record[%d,%d].(x,y) = (%v,%v), want (%v,%v)", r, c, x, y, wantX, wantY)
			}
		}
	}
}

// Seed 5 (spec §8): append 5 TrackingItems, close, reopen, verify size=5
// and contents.
func TestSeedTrackingListRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "seed5.bag", 10, 10)

	tl := ds.GetTrackingList()
	items := []TrackingItem{
		{Row: 1, Col: 2, Depth: 10.5, Uncertainty: 0.5, TrackCode: 1, ListSeries: 0},
		{Row: 2, Col: 3, Depth: 11.5, Uncertainty: 0.6, TrackCode: 2, ListSeries: 1},
		{Row: 3, Col: 4, Depth: 12.5, Uncertainty: 0.7, TrackCode: 3, ListSeries: 2},
		{Row: 4, Col: 5, Depth: 13.5, Uncertainty: 0.8, TrackCode: 4, ListSeries: 3},
		{Row: 5, Col: 6, Depth: 14.5, Uncertainty: 0.9, TrackCode: 5, ListSeries: 4},
	}
	tl.PushAll(items)
	if err := tl.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(st, "seed5.bag", DefaultOpenOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()

	tl2 := reopened.GetTrackingList()
	if tl2.Size() != 5 {
		t.Fatalf("size = %d, want 5", tl2.Size())
	}
	for i, want := range items {
		got, err := tl2.At(i)
		if err != nil {
			t.Fatalf("at(%d): %v", i, err)
		}
		if got != want {
			t.Fatalf("item[%d] = %+v, want %+v", i, got, want)
		}
	}
}

// Seed 6 (spec §8): read(0,0,rows,0) on a fresh dataset fails with
// InvalidArgument.
func TestSeedOutOfRangeReadRejected(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "seed6.bag", 10, 10)
	defer ds.Close()

	layer, err := ds.GetLayer(types.Elevation)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}

	_, err = layer.Read(0, 0, 10, 0)
	if err == nil {
		t.Fatal("expected InvalidArgument, got nil")
	}
	bagErr, ok := err.(*Error)
	if !ok || bagErr.Kind != InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestBoundaryReadWriteAtCorner(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "boundary.bag", 10, 10)
	defer ds.Close()

	layer, err := ds.GetLayer(types.Elevation)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}
	if err := layer.Write(9, 9, 9, 9, float32Buf([]float32{42.0})); err != nil {
		t.Fatalf("write at corner: %v", err)
	}
	if _, err := layer.Read(10, 10, 10, 10); err == nil {
		t.Fatal("expected InvalidArgument reading past dims")
	}
}

func TestEmptyTrackingListWrite(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "empty-tl.bag", 10, 10)
	defer ds.Close()

	tl := ds.GetTrackingList()
	if err := tl.Write(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if tl.Size() != 0 {
		t.Fatalf("size = %d, want 0", tl.Size())
	}
}

func TestGridGeoRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "geo.bag", 10, 10)
	defer ds.Close()

	for row := uint64(0); row < 10; row++ {
		for col := uint64(0); col < 10; col++ {
			x, y := ds.GridToGeo(row, col)
			r2, c2 := ds.GeoToGrid(x, y)
			if r2 != row || c2 != col {
				t.Fatalf("geoToGrid(gridToGeo(%d,%d)) = (%d,%d)", row, col, r2, c2)
			}
		}
	}
}

func TestGeoToGridClampsOutOfBounds(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "geo-clamp.bag", 10, 10)
	defer ds.Close()

	row, col := ds.GeoToGrid(-1e6, -1e6)
	if row != 0 || col != 0 {
		t.Fatalf("GeoToGrid(far negative) = (%d,%d), want (0,0)", row, col)
	}
	row, col = ds.GeoToGrid(1e9, 1e9)
	if row != 9 || col != 9 {
		t.Fatalf("GeoToGrid(far positive) = (%d,%d), want (9,9)", row, col)
	}
}

func TestCreateLayerDuplicateRejected(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "dup.bag", 10, 10)
	defer ds.Close()

	if _, err := ds.CreateLayer(types.AverageElevation, 0, 0); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := ds.CreateLayer(types.AverageElevation, 0, 0)
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != AlreadyExists {
		t.Fatalf("err = %v, want AlreadyExists", err)
	}
}

func TestReadOnlyDatasetRejectsWrite(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "ro.bag", 10, 10)
	if err := ds.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	opts := DefaultOpenOptions()
	opts.ReadOnly = true
	reopened, err := Open(st, "ro.bag", opts)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()

	layer, err := reopened.GetLayer(types.Elevation)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}
	err = layer.Write(0, 0, 0, 0, float32Buf([]float32{1.0}))
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != ReadOnly {
		t.Fatalf("err = %v, want ReadOnly", err)
	}
}

func TestGetLayerNotFound(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "notfound.bag", 10, 10)
	defer ds.Close()

	_, err := ds.GetLayer(types.NominalElevation)
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != NotFound {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestCompoundLayerRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "compound.bag", 4, 4)
	defer ds.Close()

	fields := []types.CompoundField{
		{Name: "hypothesis_strength", Type: types.PrimitiveFloat32},
		{Name: "num_hypotheses", Type: types.PrimitiveUInt32},
	}
	layer, err := ds.CreateCompoundLayer(fields, 0, 0)
	if err != nil {
		t.Fatalf("createCompoundLayer: %v", err)
	}

	recSize := 8
	buf := make([]byte, recSize*16)
	for i := 0; i < 16; i++ {
		binary.LittleEndian.PutUint32(buf[i*recSize:i*recSize+4], math.Float32bits(float32(i)))
		binary.LittleEndian.PutUint32(buf[i*recSize+4:i*recSize+8], uint32(i*2))
	}
	if err := layer.Write(0, 0, 3, 3, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	readBack, err := layer.Read(0, 0, 3, 3)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(readBack) != len(buf) {
		t.Fatalf("len = %d, want %d", len(readBack), len(buf))
	}
	for i := range buf {
		if readBack[i] != buf[i] {
			t.Fatalf("byte %d mismatch: got %d want %d", i, readBack[i], buf[i])
		}
	}
}

func TestSurfaceCorrectionsCorrectorCountOutOfRangeRejected(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "cc-range.bag", 4, 4)
	defer ds.Close()

	_, err := ds.CreateSurfaceCorrectionsLayer(0, 2, 2, nil, Gridded, 0, 0)
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
	_, err = ds.CreateSurfaceCorrectionsLayer(11, 2, 2, nil, Gridded, 0, 0)
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestSurfaceCorrectionsMaxCorrectorCountRoundTrip(t *testing.T) {
	st := store.NewMemStore()
	ds := mustCreate(t, st, "cc-max.bag", 2, 2)

	layer, err := ds.CreateSurfaceCorrectionsLayer(10, 2, 2, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}, Gridded, 0, 0)
	if err != nil {
		t.Fatalf("createSurfaceCorrectionsLayer: %v", err)
	}
	z := make([]float32, 10)
	for i := range z {
		z[i] = float32(i)
	}
	rec := layer.EncodeRecord(z, 1.0, 2.0)
	var buf []byte
	for i := 0; i < 4; i++ {
		buf = append(buf, rec...)
	}
	if err := layer.Write(0, 0, 1, 1, buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(st, "cc-max.bag", DefaultOpenOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer reopened.Close()
	l, err := reopened.GetLayer(types.SurfaceCorrections)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}
	corr := l.(*SurfaceCorrectionsLayer)
	if corr.CorrectorCount != 10 {
		t.Fatalf("correctorCount = %d, want 10", corr.CorrectorCount)
	}
	if len(corr.VerticalDatums) != 10 {
		t.Fatalf("verticalDatums len = %d, want 10", len(corr.VerticalDatums))
	}
}

func TestInterleavedLegacyLayerReadOnly(t *testing.T) {
	st := store.NewMemStore()
	h, err := st.CreateFile("legacy.bag")
	if err != nil {
		t.Fatalf("createFile: %v", err)
	}
	if err := st.WriteAttribute(h, "Bag Version", store.StringAttr(Version)); err != nil {
		t.Fatalf("writeAttribute: %v", err)
	}
	if err := writeMetadataXML(st, h, sampleMetadata(2, 2)); err != nil {
		t.Fatalf("writeMetadataXML: %v", err)
	}

	elemType := types.NewCompound([]types.CompoundField{
		{Name: "hypothesis_strength", Type: types.PrimitiveFloat32},
		{Name: "num_hypotheses", Type: types.PrimitiveUInt32},
	})
	dsHandle, err := st.CreateDataset(h, "/BAG_root/node", elemType, store.Extent{Dims: []uint64{2, 2}}, []uint64{2, 2}, 0)
	if err != nil {
		t.Fatalf("createDataset: %v", err)
	}
	rec := make([]byte, 8)
	binary.LittleEndian.PutUint32(rec[0:4], math.Float32bits(3.5))
	binary.LittleEndian.PutUint32(rec[4:8], 7)
	var buf []byte
	for i := 0; i < 4; i++ {
		buf = append(buf, rec...)
	}
	if err := st.WriteSlab(dsHandle, []uint64{0, 0}, []uint64{2, 2}, buf); err != nil {
		t.Fatalf("writeSlab: %v", err)
	}

	elevationLayer, err := st.CreateDataset(h, "/BAG_root/elevation", types.NewFloat32(), store.Extent{Dims: []uint64{2, 2}}, []uint64{2, 2}, 0)
	if err != nil {
		t.Fatalf("createDataset elevation: %v", err)
	}
	_ = elevationLayer
	uncertaintyLayer, err := st.CreateDataset(h, "/BAG_root/uncertainty", types.NewFloat32(), store.Extent{Dims: []uint64{2, 2}}, []uint64{2, 2}, 0)
	if err != nil {
		t.Fatalf("createDataset uncertainty: %v", err)
	}
	_ = uncertaintyLayer

	trackElem := types.NewCompound([]types.CompoundField{
		{Name: "row", Type: types.PrimitiveUInt32},
		{Name: "col", Type: types.PrimitiveUInt32},
		{Name: "depth", Type: types.PrimitiveFloat32},
		{Name: "uncertainty", Type: types.PrimitiveFloat32},
		{Name: "track_code", Type: types.PrimitiveUInt8},
		{Name: "list_series", Type: types.PrimitiveInt16},
	})
	trackDs, err := st.CreateDataset(h, trackingListPath, trackElem, store.Extent{Dims: []uint64{0}, MaxDims: []uint64{store.Unlimited}}, []uint64{10}, 0)
	if err != nil {
		t.Fatalf("createDataset tracking_list: %v", err)
	}
	if err := st.WriteAttribute(trackDs, "Tracking List Length", store.UInt32Attr(0)); err != nil {
		t.Fatalf("writeAttribute length: %v", err)
	}

	ds, err := Open(st, "legacy.bag", DefaultOpenOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ds.Close()

	layer, err := ds.GetLayer(types.HypothesisStrength)
	if err != nil {
		t.Fatalf("getLayer: %v", err)
	}
	readBack, err := layer.Read(0, 0, 1, 1)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := decodeFloat32Buf(readBack)
	for _, v := range got {
		if v != 3.5 {
			t.Fatalf("hypothesis_strength = %v, want 3.5", v)
		}
	}

	err = layer.Write(0, 0, 1, 1, readBack)
	if bagErr, ok := err.(*Error); !ok || bagErr.Kind != ReadOnly {
		t.Fatalf("write err = %v, want ReadOnly", err)
	}
}
