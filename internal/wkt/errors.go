package wkt

import "errors"

// ErrInvalidDatum and ErrInvalidProjection are the two WktCodec failure
// kinds (spec §4.2, §7). A numeric parse failure during wktToLegacy
// surfaces as ErrInvalidProjection per spec.
var (
	ErrInvalidDatum      = errors.New("bag: invalid datum")
	ErrInvalidProjection = errors.New("bag: invalid projection")
)
