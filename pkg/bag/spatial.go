package bag

import "github.com/dhconnelly/rtreego"

// geoIndex is a lazily-built R-tree over geographically addressable
// payloads, grounded directly on pkg/s57/s57.go's spatialIndex/
// indexedFeature pair. The teacher indexes chart features by bounding
// box; BAG has no scattered vector features, but its TrackingList entries
// and SurfaceCorrections nodes are exactly the kind of sparse,
// geographically addressable collection the same technique benefits
// (spec expansion, domain stack).
type geoIndex struct {
	rtree *rtreego.Rtree
}

func newGeoIndex() *geoIndex {
	return &geoIndex{rtree: rtreego.NewTree(2, 25, 50)}
}

// geoPoint wraps a payload at a single geographic point for R-tree
// storage, expanding zero-area points by a small epsilon the way
// indexedFeature does for point features.
type geoPoint struct {
	payload  interface{}
	lon, lat float64
}

const pointEpsilon = 0.0001

func (p *geoPoint) Bounds() rtreego.Rect {
	rect, _ := rtreego.NewRect(rtreego.Point{p.lon, p.lat}, []float64{pointEpsilon, pointEpsilon})
	return rect
}

func (g *geoIndex) Insert(payload interface{}, lon, lat float64) {
	g.rtree.Insert(&geoPoint{payload: payload, lon: lon, lat: lat})
}

// QueryBounds returns every payload whose point falls within b.
func (g *geoIndex) QueryBounds(b Bounds) []interface{} {
	lengths := []float64{b.MaxLon - b.MinLon, b.MaxLat - b.MinLat}
	if lengths[0] <= 0 {
		lengths[0] = pointEpsilon
	}
	if lengths[1] <= 0 {
		lengths[1] = pointEpsilon
	}
	rect, err := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, lengths)
	if err != nil {
		return nil
	}
	results := g.rtree.SearchIntersect(rect)
	out := make([]interface{}, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*geoPoint).payload)
	}
	return out
}
