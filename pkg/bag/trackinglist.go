package bag

import (
	"encoding/binary"
	"math"

	"github.com/bagfmt/bag/internal/store"
)

// TrackingItem is the packed per-node override record (spec §3).
type TrackingItem struct {
	Row         uint32
	Col         uint32
	Depth       float32
	Uncertainty float32
	TrackCode   uint8
	ListSeries  int16
}

const trackingItemSize = 19 // 4+4+4+4+1+2, packed (spec §3).

func encodeTrackingItem(it TrackingItem) []byte {
	buf := make([]byte, trackingItemSize)
	binary.LittleEndian.PutUint32(buf[0:4], it.Row)
	binary.LittleEndian.PutUint32(buf[4:8], it.Col)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(it.Depth))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(it.Uncertainty))
	buf[16] = it.TrackCode
	binary.LittleEndian.PutUint16(buf[17:19], uint16(it.ListSeries))
	return buf
}

func decodeTrackingItem(buf []byte) TrackingItem {
	return TrackingItem{
		Row:         binary.LittleEndian.Uint32(buf[0:4]),
		Col:         binary.LittleEndian.Uint32(buf[4:8]),
		Depth:       math.Float32frombits(binary.LittleEndian.Uint32(buf[8:12])),
		Uncertainty: math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])),
		TrackCode:   buf[16],
		ListSeries:  int16(binary.LittleEndian.Uint16(buf[17:19])),
	}
}

// TrackingList is a growable, persistent sequence of TrackingItem (spec
// §4.6). It is not thread-safe; serialization is the caller's
// responsibility.
type TrackingList struct {
	dataset  *Dataset
	dsHandle store.DatasetHandle
	items    []TrackingItem
	index    *geoIndex // built lazily on first QueryBounds call
}

// Push appends a single item to the in-memory list.
func (t *TrackingList) Push(item TrackingItem) {
	t.items = append(t.items, item)
	t.index = nil
}

// PushAll appends every item in items, in order.
func (t *TrackingList) PushAll(items []TrackingItem) {
	t.items = append(t.items, items...)
	t.index = nil
}

// Clear empties the in-memory list. Callers must call Write to persist
// the empty state.
func (t *TrackingList) Clear() {
	t.items = t.items[:0]
	t.index = nil
}

// Size returns the logical item count.
func (t *TrackingList) Size() int { return len(t.items) }

// At returns the item at index i.
func (t *TrackingList) At(i int) (TrackingItem, error) {
	if i < 0 || i >= len(t.items) {
		return TrackingItem{}, newErr(InvalidArgument, "at", "", "index out of range", nil)
	}
	return t.items[i], nil
}

// Iterate returns a snapshot slice of every item, in insertion order.
func (t *TrackingList) Iterate() []TrackingItem {
	out := make([]TrackingItem, len(t.items))
	copy(out, t.items)
	return out
}

// Write is atomic per call (spec §4.6): it updates the "Tracking List Length" attribute,
// extends the dataset to match, then writes the full in-memory vector as a
// single hyperslab.
func (t *TrackingList) Write() error {
	if t.dataset.readOnly {
		return newErr(ReadOnly, "write", "tracking_list", "dataset is read-only", nil)
	}
	st := t.dataset.store
	n := uint64(len(t.items))

	if err := st.WriteAttribute(t.dsHandle, "Tracking List Length", store.UInt32Attr(uint32(n))); err != nil {
		return newErr(StorageError, "write", "tracking_list", "length attribute", err)
	}
	if err := st.Extend(t.dsHandle, []uint64{n}); err != nil {
		return newErr(StorageError, "write", "tracking_list", "extend", err)
	}
	if n == 0 {
		return nil
	}

	buf := make([]byte, 0, n*trackingItemSize)
	for _, it := range t.items {
		buf = append(buf, encodeTrackingItem(it)...)
	}
	if err := st.WriteSlab(t.dsHandle, []uint64{0}, []uint64{n}, buf); err != nil {
		return newErr(StorageError, "write", "tracking_list", "hyperslab", err)
	}
	return nil
}

// load reads the on-disk state back into memory: first the
// "Tracking List Length" attribute, then that
// many records (spec §4.6).
func (t *TrackingList) load() error {
	st := t.dataset.store
	lenAttr, err := st.ReadAttribute(t.dsHandle, "Tracking List Length")
	if err != nil {
		return newErr(StorageError, "open", "tracking_list", "length attribute", err)
	}
	n := uint64(lenAttr.U32)
	if n == 0 {
		t.items = nil
		return nil
	}
	buf, err := st.ReadSlab(t.dsHandle, []uint64{0}, []uint64{n})
	if err != nil {
		return newErr(StorageError, "open", "tracking_list", "hyperslab", err)
	}
	t.items = make([]TrackingItem, n)
	for i := uint64(0); i < n; i++ {
		t.items[i] = decodeTrackingItem(buf[i*trackingItemSize : (i+1)*trackingItemSize])
	}
	return nil
}

// QueryBounds returns every TrackingItem whose grid-to-geo position falls
// within bounds, via the lazily-built R-tree (domain-stack expansion,
// grounded on pkg/s57/s57.go's spatialIndex).
func (t *TrackingList) QueryBounds(bounds Bounds) []TrackingItem {
	if t.index == nil {
		t.index = newGeoIndex()
		for _, it := range t.items {
			x, y := t.dataset.GridToGeo(uint64(it.Row), uint64(it.Col))
			t.index.Insert(it, x, y)
		}
	}
	results := t.index.QueryBounds(bounds)
	out := make([]TrackingItem, 0, len(results))
	for _, r := range results {
		out = append(out, r.(TrackingItem))
	}
	return out
}
