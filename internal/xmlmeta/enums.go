package xmlmeta

import "strings"

// foldKey lower-cases and strips spaces/underscores so both spaced
// ("raw std dev") and camel ("rawstddev") spellings map to the same key
// (spec §4.3).
func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

var verticalUncertaintyTypes = map[string]VerticalUncertaintyType{
	"rawstddev":        RawStdDev,
	"cubestddev":       CubeStdDev,
	"productuncert":    ProductUncert,
	"averagetpe":       AverageTpe,
	"historicalstddev": HistoricalStdDev,
}

// ParseVerticalUncertaintyType case-folds s and maps it to the closed enum,
// defaulting to Unknown for unrecognized spellings (spec §7: unknown enum
// spellings default to Unknown rather than failing import).
func ParseVerticalUncertaintyType(s string) VerticalUncertaintyType {
	if v, ok := verticalUncertaintyTypes[foldKey(s)]; ok {
		return v
	}
	return VUnknown
}

var depthCorrectionTypes = map[string]DepthCorrectionType{
	"truedepth":           TrueDepth,
	"nominaldepthmeters":  NominalDepthMeters,
	"nominaldepthfeet":    NominalDepthFeet,
	"correctedcarters":    CorrectedCarters,
	"correctedmatthews":   CorrectedMatthews,
}

// ParseDepthCorrectionType case-folds s and maps it to the closed enum,
// defaulting to Unknown (spec §7, same rule as ParseVerticalUncertaintyType).
func ParseDepthCorrectionType(s string) DepthCorrectionType {
	if v, ok := depthCorrectionTypes[foldKey(s)]; ok {
		return v
	}
	return DCUnknown
}

var groupTypes = map[string]GroupType{
	"cube":    GroupCube,
	"product": GroupProduct,
	"average": GroupAverage,
}

// ParseGroupType case-folds s and maps it to the shared nodeGroupType /
// elevationSolutionGroupType enum, defaulting to Unknown.
func ParseGroupType(s string) GroupType {
	if v, ok := groupTypes[foldKey(s)]; ok {
		return v
	}
	return GroupUnknown
}

func (v VerticalUncertaintyType) String() string {
	switch v {
	case RawStdDev:
		return "Raw Std Dev"
	case CubeStdDev:
		return "CUBE Std Dev"
	case ProductUncert:
		return "Product Uncert"
	case AverageTpe:
		return "Average TPE"
	case HistoricalStdDev:
		return "Historical Std Dev"
	default:
		return "Unknown"
	}
}

func (d DepthCorrectionType) String() string {
	switch d {
	case TrueDepth:
		return "True Depth"
	case NominalDepthMeters:
		return "Nominal Depth Meters"
	case NominalDepthFeet:
		return "Nominal Depth Feet"
	case CorrectedCarters:
		return "Corrected Carters"
	case CorrectedMatthews:
		return "Corrected Matthews"
	default:
		return "Unknown"
	}
}

func (g GroupType) String() string {
	switch g {
	case GroupCube:
		return "CUBE"
	case GroupProduct:
		return "Product"
	case GroupAverage:
		return "Average"
	default:
		return "Unknown"
	}
}
