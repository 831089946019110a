package types

import "fmt"

// Primitive enumerates the scalar primitives a Compound field can hold.
type Primitive int

const (
	PrimitiveFloat32 Primitive = iota
	PrimitiveFloat64
	PrimitiveUInt8
	PrimitiveUInt32
	PrimitiveInt16
)

func (p Primitive) size() uint32 {
	switch p {
	case PrimitiveFloat32:
		return 4
	case PrimitiveFloat64:
		return 8
	case PrimitiveUInt8:
		return 1
	case PrimitiveUInt32:
		return 4
	case PrimitiveInt16:
		return 2
	default:
		return 0
	}
}

// CompoundField is one named, ordered field of a Compound or
// VerticalDatumCorrection element type.
type CompoundField struct {
	Name string
	Type Primitive
}

// Kind discriminates the ElementType union.
type Kind int

const (
	Float32 Kind = iota
	UInt32
	CompoundKind
	VerticalDatumCorrectionKind
)

// ElementType is the closed union of per-cell storage types a Layer can
// declare: plain scalars, a user-declared Compound record, or the
// VerticalDatumCorrectionRecord used by SurfaceCorrections layers.
//
// Compound sizes are the sum of field sizes with no padding: records are
// packed (spec §3).
type ElementType struct {
	Kind Kind

	// Fields is populated when Kind == CompoundKind.
	Fields []CompoundField

	// CorrectorCount is populated when Kind == VerticalDatumCorrectionKind;
	// it is the number of Float32 z-offsets per record (1..10).
	CorrectorCount int
}

// NewFloat32 returns the canonical Float32 element type.
func NewFloat32() ElementType { return ElementType{Kind: Float32} }

// NewUInt32 returns the canonical UInt32 element type.
func NewUInt32() ElementType { return ElementType{Kind: UInt32} }

// NewCompound returns a Compound element type over the given ordered
// fields.
func NewCompound(fields []CompoundField) ElementType {
	cp := make([]CompoundField, len(fields))
	copy(cp, fields)
	return ElementType{Kind: CompoundKind, Fields: cp}
}

// NewVerticalDatumCorrection returns the VerticalDatumCorrectionRecord
// element type parameterized by correctorCount, the number of z offsets
// per record (1..10, spec §3 / §4.5).
func NewVerticalDatumCorrection(correctorCount int) ElementType {
	return ElementType{Kind: VerticalDatumCorrectionKind, CorrectorCount: correctorCount}
}

// Size returns the deterministic packed byte size of the element type.
func Size(t ElementType) (uint32, error) {
	switch t.Kind {
	case Float32:
		return 4, nil
	case UInt32:
		return 4, nil
	case CompoundKind:
		var total uint32
		for _, f := range t.Fields {
			total += f.Type.size()
		}
		return total, nil
	case VerticalDatumCorrectionKind:
		if t.CorrectorCount < 1 || t.CorrectorCount > 10 {
			return 0, fmt.Errorf("%w: corrector count %d out of range [1,10]", ErrUnknownType, t.CorrectorCount)
		}
		// z: correctorCount x float32, x,y: float64 each.
		return uint32(t.CorrectorCount)*4 + 16, nil
	default:
		return 0, fmt.Errorf("%w: element kind %d", ErrUnknownType, t.Kind)
	}
}

// CanonicalElementType returns the fixed element type a simple scalar
// layer kind must use. Compound and SurfaceCorrections have constructed
// types (callers build them via NewCompound/NewVerticalDatumCorrection) and
// are not covered here; InterleavedLegacy has no element type of its own
// (it is a view over a legacy packed dataset).
func CanonicalElementType(k LayerKind) (ElementType, error) {
	switch k {
	case Elevation, Uncertainty, HypothesisStrength, ShoalElevation, StdDev, AverageElevation, NominalElevation:
		return NewFloat32(), nil
	case NumHypotheses, NumSoundings:
		return NewUInt32(), nil
	default:
		return ElementType{}, fmt.Errorf("%w: kind %s has no canonical scalar type", ErrUnknownKind, k)
	}
}

// InternalPath returns the fixed backing-store path for a layer kind.
// Several kinds share a parent group path (HypothesisStrength and
// NumHypotheses both live under the node group; ShoalElevation, StdDev and
// NumSoundings under the elevation_solution group) but never collide
// because each uses a distinct dataset name inside the group.
func InternalPath(k LayerKind) (string, error) {
	switch k {
	case Elevation:
		return "/BAG_root/elevation", nil
	case Uncertainty:
		return "/BAG_root/uncertainty", nil
	case HypothesisStrength:
		return "/BAG_root/node/hypothesis_strength", nil
	case NumHypotheses:
		return "/BAG_root/node/num_hypotheses", nil
	case ShoalElevation:
		return "/BAG_root/elevation_solution/shoal_elevation", nil
	case StdDev:
		return "/BAG_root/elevation_solution/std_dev", nil
	case NumSoundings:
		return "/BAG_root/elevation_solution/num_soundings", nil
	case AverageElevation:
		return "/BAG_root/average", nil
	case NominalElevation:
		return "/BAG_root/nominal_elevation", nil
	case SurfaceCorrections:
		return "/BAG_root/vertical_datum_corrections", nil
	default:
		return "", fmt.Errorf("%w: kind %s has no fixed internal path", ErrUnknownKind, k)
	}
}
