package bag

import "github.com/bagfmt/bag/internal/types"

// LayerDescriptor is the metadata for a single layer (spec §3): kind,
// element type, storage policy, dims, and the running min/max the layer
// maintains across writes.
type LayerDescriptor struct {
	Kind             types.LayerKind
	ElementType      types.ElementType
	ElementSize      uint32
	InternalPath     string
	ChunkSize        uint64
	CompressionLevel int
	Rows, Cols       uint64
	MinValue         float64
	MaxValue         float64
	Name             string

	minMaxSet bool
}

func (d *LayerDescriptor) observe(v float64, sentinel float64) {
	if v == sentinel {
		return
	}
	if !d.minMaxSet {
		d.MinValue, d.MaxValue = v, v
		d.minMaxSet = true
		return
	}
	if v < d.MinValue {
		d.MinValue = v
	}
	if v > d.MaxValue {
		d.MaxValue = v
	}
}

// Descriptor carries the dataset-wide derived facts (spec §3): grid
// dimensions, spacing, origin, projected and geographic cover, version,
// and the two reference-system WKT strings, plus the layer registry keyed
// by kind.
type Descriptor struct {
	Version                   string
	HorizontalReferenceSystemWkt string
	VerticalReferenceSystemWkt   string

	Rows, Cols     uint64
	RowResolution  float64
	ColResolution  float64
	OriginX        float64
	OriginY        float64

	ProjectedLLX, ProjectedLLY float64
	ProjectedURX, ProjectedURY float64

	layers map[types.LayerKind]*LayerDescriptor
}

// LayerKinds returns the kinds currently registered, in no particular
// order.
func (d *Descriptor) LayerKinds() []types.LayerKind {
	kinds := make([]types.LayerKind, 0, len(d.layers))
	for k := range d.layers {
		kinds = append(kinds, k)
	}
	return kinds
}

func (d *Descriptor) layerDescriptor(k types.LayerKind) (*LayerDescriptor, bool) {
	ld, ok := d.layers[k]
	return ld, ok
}
