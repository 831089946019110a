package bag

// defaultMetadataHome is the process-wide fallback used when a caller does
// not pass an explicit metadata home to Open/Create (spec §9: "reshape
// [BAG_HOME] as explicit configuration ... keep a process-wide default
// only as a convenience fallback").
var defaultMetadataHome string

// SetMetadataHome sets the process-wide default directory the XSD lookup
// falls back to when OpenOptions/CreateOptions don't carry one explicitly.
func SetMetadataHome(path string) { defaultMetadataHome = path }

// OpenOptions configures Open (mirrors pkg/s57/options.go's
// ParseOptions/DefaultParseOptions shape: a plain struct plus a
// Default*Options constructor, no functional-options boilerplate since the
// teacher itself doesn't use one).
type OpenOptions struct {
	ReadOnly bool

	// EagerLayers is not read by Open: Open always opens every present
	// layer immediately, whatever this field holds.
	EagerLayers bool

	// ValidateMetadata requests XSD validation of the stored metadata
	// document against MetadataHome on open.
	ValidateMetadata bool
	MetadataHome     string
}

// DefaultOpenOptions returns the default read-write, non-validating open
// configuration.
func DefaultOpenOptions() OpenOptions {
	return OpenOptions{
		ReadOnly:         false,
		EagerLayers:      false,
		ValidateMetadata: false,
	}
}

// CreateOptions configures Create.
type CreateOptions struct {
	// ChunkSize is the grid cells-per-chunk-edge Create uses for the
	// mandatory Elevation and Uncertainty layers (the tracking list's chunk
	// is capped at 10). The dataset does not keep it:
	// CreateLayer, CreateCompoundLayer and CreateSurfaceCorrectionsLayer
	// use their own chunkSize argument, or 100 when it is 0.
	ChunkSize uint64

	// CompressionLevel is the deflate level (0..9) Create uses for
	// Elevation and Uncertainty. The Create*Layer methods use their own
	// compressionLevel argument as passed.
	CompressionLevel int

	// ValidateMetadata and MetadataHome are not read by Create.
	ValidateMetadata bool
	MetadataHome     string
}

// DefaultCreateOptions returns chunk size 100 and compression level 6,
// the values the original source used as hardcoded per-dataset constants
// before the specification's per-layer-with-defaults redesign (spec §9).
func DefaultCreateOptions() CreateOptions {
	return CreateOptions{
		ChunkSize:        100,
		CompressionLevel: 6,
	}
}

func (o OpenOptions) metadataHome() string {
	if o.MetadataHome != "" {
		return o.MetadataHome
	}
	return defaultMetadataHome
}

func (o CreateOptions) metadataHome() string {
	if o.MetadataHome != "" {
		return o.MetadataHome
	}
	return defaultMetadataHome
}
