package bag

import (
	"fmt"
	"testing"

	"github.com/bagfmt/bag/internal/store"
	"github.com/bagfmt/bag/internal/types"
)

// Benchmarks for the layer read/write and tracking-list hot paths,
// following pkg/s57/spatial_bench_test.go's pattern of comparing an
// indexed path against a linear one.

func BenchmarkSimpleLayerWrite(b *testing.B) {
	st := store.NewMemStore()
	ds, err := Create(st, "bench-write.bag", sampleMetadata(200, 200), DefaultCreateOptions())
	if err != nil {
		b.Fatalf("create: %v", err)
	}
	defer ds.Close()
	layer, err := ds.GetLayer(types.Elevation)
	if err != nil {
		b.Fatalf("getLayer: %v", err)
	}
	buf := float32Buf(make([]float32, 200*200))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := layer.Write(0, 0, 199, 199, buf); err != nil {
			b.Fatalf("write: %v", err)
		}
	}
}

func BenchmarkSimpleLayerReadRow(b *testing.B) {
	st := store.NewMemStore()
	ds, err := Create(st, "bench-read.bag", sampleMetadata(200, 200), DefaultCreateOptions())
	if err != nil {
		b.Fatalf("create: %v", err)
	}
	defer ds.Close()
	layer, err := ds.GetLayer(types.Elevation)
	if err != nil {
		b.Fatalf("getLayer: %v", err)
	}
	if err := layer.Write(0, 0, 199, 199, float32Buf(make([]float32, 200*200))); err != nil {
		b.Fatalf("write: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := layer.Read(100, 0, 100, 199); err != nil {
			b.Fatalf("read: %v", err)
		}
	}
}

func largeTrackingList(b *testing.B, n int) *Dataset {
	b.Helper()
	st := store.NewMemStore()
	ds, err := Create(st, fmt.Sprintf("bench-tl-%d.bag", n), sampleMetadata(1000, 1000), DefaultCreateOptions())
	if err != nil {
		b.Fatalf("create: %v", err)
	}
	tl := ds.GetTrackingList()
	for i := 0; i < n; i++ {
		tl.Push(TrackingItem{
			Row: uint32(i % 1000), Col: uint32((i * 7) % 1000),
			Depth: float32(i), Uncertainty: 0.1, TrackCode: 1, ListSeries: 0,
		})
	}
	return ds
}

// BenchmarkTrackingListQueryBounds_Indexed benchmarks windowed queries over
// a large tracking list via the lazily built R-tree.
func BenchmarkTrackingListQueryBounds_Indexed(b *testing.B) {
	ds := largeTrackingList(b, 10000)
	defer ds.Close()
	tl := ds.GetTrackingList()
	bounds := Bounds{MinLon: 100, MaxLon: 150, MinLat: 200, MaxLat: 250}
	tl.QueryBounds(bounds) // force index build outside the timed loop

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tl.QueryBounds(bounds)
	}
}

// BenchmarkTrackingListQueryBounds_Linear benchmarks the same query via a
// plain linear scan over Iterate's snapshot, for comparison.
func BenchmarkTrackingListQueryBounds_Linear(b *testing.B) {
	ds := largeTrackingList(b, 10000)
	defer ds.Close()
	tl := ds.GetTrackingList()
	bounds := Bounds{MinLon: 100, MaxLon: 150, MinLat: 200, MaxLat: 250}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var matched []TrackingItem
		for _, it := range tl.Iterate() {
			x, y := ds.GridToGeo(uint64(it.Row), uint64(it.Col))
			if bounds.Contains(x, y) {
				matched = append(matched, it)
			}
		}
		_ = matched
	}
}

func BenchmarkTrackingListWrite(b *testing.B) {
	ds := largeTrackingList(b, 1000)
	defer ds.Close()
	tl := ds.GetTrackingList()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := tl.Write(); err != nil {
			b.Fatalf("write: %v", err)
		}
	}
}
