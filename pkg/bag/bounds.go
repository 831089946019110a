package bag

// Bounds is a geographic bounding box, mirroring the teacher pack's
// pkg/v1/spatial.go Bounds shape (MinLon/MaxLon/MinLat/MaxLat), reused
// here for TrackingList and SurfaceCorrections windowed queries.
type Bounds struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
}

// Contains reports whether (lon, lat) falls within b, inclusive.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon && lat >= b.MinLat && lat <= b.MaxLat
}
