package types

import "errors"

// ErrUnknownKind and ErrUnknownType are programming errors: the catalog was
// asked about a LayerKind/ElementType it has no table entry for. They are
// surfaced, not retried (spec §4.1).
var (
	ErrUnknownKind = errors.New("bag: unknown layer kind")
	ErrUnknownType = errors.New("bag: unknown element type")
)
