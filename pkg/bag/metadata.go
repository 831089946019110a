package bag

import "github.com/bagfmt/bag/internal/xmlmeta"

// Metadata is the typed ISO-19115/19139 record tree (spec §3, §4.3).
// pkg/bag re-exports internal/xmlmeta's type directly: the model itself
// has no BAG-core-specific behavior beyond import/export, which
// internal/xmlmeta already owns.
type Metadata = xmlmeta.Metadata

// Re-exported enums and constructors so callers never need to import
// internal/xmlmeta directly.
type (
	VerticalUncertaintyType = xmlmeta.VerticalUncertaintyType
	DepthCorrectionType     = xmlmeta.DepthCorrectionType
	GroupType               = xmlmeta.GroupType
	ResponsibleParty        = xmlmeta.ResponsibleParty
	Identification          = xmlmeta.Identification
	Spatial                 = xmlmeta.Spatial
	ReferenceSystem         = xmlmeta.ReferenceSystem
	DataQuality             = xmlmeta.DataQuality
	ProcessStep             = xmlmeta.ProcessStep
	SourceInfo              = xmlmeta.SourceInfo
)

const (
	VUnknown         = xmlmeta.VUnknown
	RawStdDev        = xmlmeta.RawStdDev
	CubeStdDev       = xmlmeta.CubeStdDev
	ProductUncert    = xmlmeta.ProductUncert
	AverageTpe       = xmlmeta.AverageTpe
	HistoricalStdDev = xmlmeta.HistoricalStdDev

	DCUnknown          = xmlmeta.DCUnknown
	TrueDepth          = xmlmeta.TrueDepth
	NominalDepthMeters = xmlmeta.NominalDepthMeters
	NominalDepthFeet   = xmlmeta.NominalDepthFeet
	CorrectedCarters   = xmlmeta.CorrectedCarters
	CorrectedMatthews  = xmlmeta.CorrectedMatthews

	GroupUnknown = xmlmeta.GroupUnknown
	GroupCube    = xmlmeta.GroupCube
	GroupProduct = xmlmeta.GroupProduct
	GroupAverage = xmlmeta.GroupAverage
)
