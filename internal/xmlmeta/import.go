package xmlmeta

import (
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ImportOptions configures XSD validation during Import (spec §4.3).
type ImportOptions struct {
	// ValidateAgainstSchema requests validation of the document against
	// the bundled XSD, located relative to MetadataHome. Missing schema
	// file surfaces ErrSchemaFileMissing.
	ValidateAgainstSchema bool
	MetadataHome          string
}

// Import reads an ISO-19115/19139 XML metadata document from r and
// discriminates its schema version by root element name: `smXML:MD_Metadata`
// (version 1, legacy) or `gmi:MI_Metadata` (version 2, modern), exactly as
// bag_metadata_import.cpp's readMetadata does (spec §4.3).
func Import(r io.Reader, opts ImportOptions) (*Metadata, error) {
	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("xmlmeta: parse: %w", err)
	}
	root := xmlquery.FindOne(doc, "/*")
	if root == nil {
		return nil, &ErrMissingMandatoryItem{Element: "root element"}
	}

	if opts.ValidateAgainstSchema {
		if err := checkSchemaPresent(opts.MetadataHome, root.Data); err != nil {
			return nil, err
		}
	}

	switch root.Data {
	case "smXML:MD_Metadata":
		return importV1(root)
	case "gmi:MI_Metadata":
		return importV2(root)
	default:
		return nil, &ErrMissingMandatoryItem{Element: "smXML:MD_Metadata or gmi:MI_Metadata root"}
	}
}

func checkSchemaPresent(home, rootName string) error {
	name := "bag_schema_v2.xsd"
	if rootName == "smXML:MD_Metadata" {
		name = "bag_schema_v1.xsd"
	}
	path := home + "/" + name
	if home == "" || !schemaFileExists(path) {
		return &ErrSchemaFileMissing{Path: path}
	}
	return nil
}

// importV1 follows readMetadataV1 in bag_metadata_import.cpp: XPaths rooted
// at /smXML:MD_Metadata, unqualified child element names (the smXML
// namespace has no per-child prefix repetition the way gmd does).
func importV1(root *xmlquery.Node) (*Metadata, error) {
	m := &Metadata{}

	m.Language = queryText(root, "/smXML:MD_Metadata/language")
	m.CharacterSet = "eng"
	m.HierarchyLevel = "dataset"
	m.DateStamp = queryText(root, "/smXML:MD_Metadata/dateStamp")
	m.MetadataStandardName = queryText(root, "/smXML:MD_Metadata/metadataStandardName")
	m.MetadataStandardVersion = queryText(root, "/smXML:MD_Metadata/metadataStandardVersion")

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/contact"); node != nil {
		m.Contact = decodeResponsiblePartyV1(node)
	}

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/identificationInfo"); node != nil {
		m.Identification = decodeIdentificationV1(node)
	} else {
		return nil, &ErrMissingMandatoryItem{Element: "identificationInfo"}
	}

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/spatialRepresentationInfo"); node != nil {
		m.Spatial = decodeSpatialV1(node)
	}

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/referenceSystemInfo[1]"); node != nil {
		m.HorizontalReferenceSystem = decodeReferenceSystemV1(node)
	}
	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/referenceSystemInfo[2]"); node != nil {
		m.VerticalReferenceSystem = decodeReferenceSystemV1(node)
	}

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/dataQualityInfo"); node != nil {
		m.DataQuality = decodeDataQualityV1(node)
	}

	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/metadataConstraints/smXML:MD_LegalConstraints"); node != nil {
		m.LegalConstraints = queryText(node, "useConstraints") + " " + queryText(node, "otherConstraints")
		m.LegalConstraints = strings.TrimSpace(m.LegalConstraints)
	}
	if node := xmlquery.FindOne(root, "/smXML:MD_Metadata/metadataConstraints/smXML:MD_SecurityConstraints"); node != nil {
		m.SecurityConstraints = queryText(node, "classification")
	}

	if err := validateBoundingBox(m.Identification); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeResponsiblePartyV1(node *xmlquery.Node) ResponsibleParty {
	return ResponsibleParty{
		IndividualName:   queryText(node, "smXML:CI_ResponsibleParty/individualName"),
		OrganizationName: queryText(node, "smXML:CI_ResponsibleParty/organisationName"),
		PositionName:     queryText(node, "smXML:CI_ResponsibleParty/positionName"),
		Role:             queryText(node, "smXML:CI_ResponsibleParty/role"),
	}
}

func decodeIdentificationV1(node *xmlquery.Node) Identification {
	var id Identification
	id.Title = queryText(node, "smXML:BAG_DataIdentification/citation/smXML:CI_Citation/title")
	id.Date = queryText(node, "smXML:BAG_DataIdentification/citation/smXML:CI_Citation/date/smXML:CI_Date/date")
	id.DateType = queryText(node, "smXML:BAG_DataIdentification/citation/smXML:CI_Citation/date/smXML:CI_Date/dateType")
	id.Abstract = queryText(node, "smXML:BAG_DataIdentification/abstract")
	id.Status = queryText(node, "smXML:BAG_DataIdentification/status")
	id.Language = queryText(node, "smXML:BAG_DataIdentification/language")
	id.TopicCategory = queryText(node, "smXML:BAG_DataIdentification/topicCategory")

	west := queryText(node, "smXML:BAG_DataIdentification/extent/smXML:EX_Extent/geographicElement/smXML:EX_GeographicBoundingBox/westBoundLongitude")
	east := queryText(node, "smXML:BAG_DataIdentification/extent/smXML:EX_Extent/geographicElement/smXML:EX_GeographicBoundingBox/eastBoundLongitude")
	south := queryText(node, "smXML:BAG_DataIdentification/extent/smXML:EX_Extent/geographicElement/smXML:EX_GeographicBoundingBox/southBoundLatitude")
	north := queryText(node, "smXML:BAG_DataIdentification/extent/smXML:EX_Extent/geographicElement/smXML:EX_GeographicBoundingBox/northBoundLatitude")
	id.West, _ = parseFloat(west)
	id.East, _ = parseFloat(east)
	id.South, _ = parseFloat(south)
	id.North, _ = parseFloat(north)

	id.VerticalUncertaintyType = ParseVerticalUncertaintyType(queryText(node, "smXML:BAG_DataIdentification/verticalUncertaintyType"))
	id.DepthCorrectionType = ParseDepthCorrectionType(queryText(node, "smXML:BAG_DataIdentification/depthCorrectionType"))
	id.NodeGroupType = ParseGroupType(queryText(node, "smXML:BAG_DataIdentification/nodeGroupType"))
	id.ElevationSolutionGroupType = ParseGroupType(queryText(node, "smXML:BAG_DataIdentification/elevationSolutionGroupType"))

	for _, p := range queryAll(node, "smXML:BAG_DataIdentification/citation/smXML:CI_Citation/citedResponsibleParty") {
		id.ResponsibleParties = append(id.ResponsibleParties, decodeResponsiblePartyV1(p))
	}
	return id
}

func decodeSpatialV1(node *xmlquery.Node) Spatial {
	var sp Spatial
	sp.Rows = parseIntOr(queryText(node, "smXML:MD_Georectified/axisDimensionProperties/smXML:MD_Dimension[dimensionName='row']/dimensionSize"), 0)
	sp.Cols = parseIntOr(queryText(node, "smXML:MD_Georectified/axisDimensionProperties/smXML:MD_Dimension[dimensionName='column']/dimensionSize"), 0)
	rowRes := queryText(node, "smXML:MD_Georectified/axisDimensionProperties/smXML:MD_Dimension[dimensionName='row']/resolution/smXML:Measure/smXML:value")
	colRes := queryText(node, "smXML:MD_Georectified/axisDimensionProperties/smXML:MD_Dimension[dimensionName='column']/resolution/smXML:Measure/smXML:value")
	sp.RowResolution, _ = parseFloat(rowRes)
	sp.ColumnResolution, _ = parseFloat(colRes)
	sp.CellGeometry = queryText(node, "smXML:MD_Georectified/cellGeometry")

	if corners := queryText(node, "smXML:MD_Georectified/cornerPoints/gml:Point/gml:coordinates"); corners != "" {
		ll, ur, ok := parseCornerPoints(corners)
		if ok {
			sp.LLCornerX, sp.LLCornerY = ll[0], ll[1]
			sp.URCornerX, sp.URCornerY = ur[0], ur[1]
		}
	}
	return sp
}

func decodeReferenceSystemV1(node *xmlquery.Node) ReferenceSystem {
	ellipsoid := queryText(node, "smXML:MD_CRS/ellipsoid/smXML:RS_Identifier/code")
	if ellipsoid != "" {
		return decodeHorizontalV1(node, ellipsoid)
	}
	// No ellipsoid: this block describes the vertical datum instead
	// (bag_metadata_import.cpp: decodeReferenceSystemInfo's else branch).
	datum := queryText(node, "smXML:MD_CRS/datum/smXML:RS_Identifier/code")
	return decodeVerticalV1(datum)
}

func decodeDataQualityV1(node *xmlquery.Node) DataQuality {
	var dq DataQuality
	dq.Scope = queryText(node, "smXML:DQ_DataQuality/scope/smXML:DQ_Scope/level")
	for _, step := range queryAll(node, "smXML:DQ_DataQuality/lineage/smXML:LI_Lineage/processStep/smXML:BAG_ProcessStep") {
		ps := ProcessStep{
			Description: queryText(step, "description"),
			DateTime:    queryText(step, "dateTime"),
		}
		for _, src := range queryAll(step, "source/smXML:LI_Source") {
			ps.Sources = append(ps.Sources, SourceInfo{Description: queryText(src, "description")})
		}
		dq.ProcessSteps = append(dq.ProcessSteps, ps)
	}
	return dq
}

// importV2 follows readMetadataV2: XPaths rooted at /gmi:MI_Metadata, every
// child qualified with its own gmd:/bag:/gco: prefix and a terminal
// gco:CharacterString-or-codelist leaf.
func importV2(root *xmlquery.Node) (*Metadata, error) {
	m := &Metadata{}

	m.FileIdentifier = queryText(root, "/gmi:MI_Metadata/gmd:fileIdentifier/gco:CharacterString")
	m.CharacterSet = queryText(root, "/gmi:MI_Metadata/gmd:characterSet/gmd:MD_CharacterSetCode")
	m.HierarchyLevel = queryText(root, "/gmi:MI_Metadata/gmd:hierarchyLevel/gmd:MD_ScopeCode")
	m.DateStamp = queryText(root, "/gmi:MI_Metadata/gmd:dateStamp/gco:Date")
	m.MetadataStandardName = queryText(root, "/gmi:MI_Metadata/gmd:metadataStandardName/gco:CharacterString")
	m.MetadataStandardVersion = queryText(root, "/gmi:MI_Metadata/gmd:metadataStandardVersion/gco:CharacterString")

	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:contact"); node != nil {
		m.Contact = decodeResponsiblePartyV2(node)
	}

	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:identificationInfo"); node != nil {
		m.Identification = decodeIdentificationV2(node)
	} else {
		return nil, &ErrMissingMandatoryItem{Element: "gmd:identificationInfo"}
	}

	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:spatialRepresentationInfo"); node != nil {
		m.Spatial = decodeSpatialV2(node)
	}

	refs := queryAll(root, "/gmi:MI_Metadata/gmd:referenceSystemInfo")
	if len(refs) > 0 {
		m.HorizontalReferenceSystem = decodeReferenceSystemV2(refs[0])
	}
	if len(refs) > 1 {
		m.VerticalReferenceSystem = decodeReferenceSystemV2(refs[1])
	}

	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:dataQualityInfo"); node != nil {
		m.DataQuality = decodeDataQualityV2(node)
	}

	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:metadataConstraints/gmd:MD_LegalConstraints"); node != nil {
		m.LegalConstraints = strings.TrimSpace(queryText(node, "gmd:useConstraints/gmd:MD_RestrictionCode") + " " +
			queryText(node, "gmd:otherConstraints/gco:CharacterString"))
	}
	if node := xmlquery.FindOne(root, "/gmi:MI_Metadata/gmd:metadataConstraints/gmd:MD_SecurityConstraints"); node != nil {
		m.SecurityConstraints = queryText(node, "gmd:classification/gmd:MD_ClassificationCode")
	}

	if err := validateBoundingBox(m.Identification); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeResponsiblePartyV2(node *xmlquery.Node) ResponsibleParty {
	return ResponsibleParty{
		IndividualName:   queryText(node, "gmd:CI_ResponsibleParty/gmd:individualName/gco:CharacterString"),
		OrganizationName: queryText(node, "gmd:CI_ResponsibleParty/gmd:organisationName/gco:CharacterString"),
		PositionName:     queryText(node, "gmd:CI_ResponsibleParty/gmd:positionName/gco:CharacterString"),
		Role:             queryText(node, "gmd:CI_ResponsibleParty/gmd:role/gmd:CI_RoleCode"),
	}
}

func decodeIdentificationV2(node *xmlquery.Node) Identification {
	var id Identification
	id.Title = queryText(node, "bag:BAG_DataIdentification/gmd:citation/gmd:CI_Citation/gmd:title/gco:CharacterString")
	id.Date = queryText(node, "bag:BAG_DataIdentification/gmd:citation/gmd:CI_Citation/gmd:CI_Date/gmd:date/gco:Date")
	id.DateType = queryText(node, "bag:BAG_DataIdentification/gmd:citation/gmd:CI_Citation/gmd:CI_Date/gmd:dateType/gmd:CI_DateTypeCode")
	id.Abstract = queryText(node, "bag:BAG_DataIdentification/gmd:abstract/gco:CharacterString")
	id.Status = queryText(node, "bag:BAG_DataIdentification/gmd:status/gmd:MD_ProgressCode")
	id.Language = queryText(node, "bag:BAG_DataIdentification/gmd:language/gmd:LanguageCode")
	id.TopicCategory = queryText(node, "bag:BAG_DataIdentification/gmd:topicCategory/gmd:MD_TopicCategoryCode")

	base := "bag:BAG_DataIdentification/gmd:extent/gmd:EX_Extent/gmd:geographicElement/gmd:EX_GeographicBoundingBox/"
	id.West, _ = parseFloat(queryText(node, base+"gmd:westBoundLongitude/gco:Decimal"))
	id.East, _ = parseFloat(queryText(node, base+"gmd:eastBoundLongitude/gco:Decimal"))
	id.South, _ = parseFloat(queryText(node, base+"gmd:southBoundLatitude/gco:Decimal"))
	id.North, _ = parseFloat(queryText(node, base+"gmd:northBoundLatitude/gco:Decimal"))

	id.VerticalUncertaintyType = ParseVerticalUncertaintyType(queryText(node, "bag:BAG_DataIdentification/bag:verticalUncertaintyType/bag:BAG_VertUncertCode"))
	id.DepthCorrectionType = ParseDepthCorrectionType(queryText(node, "bag:BAG_DataIdentification/bag:depthCorrectionType/bag:BAG_DepthCorrectCode"))
	id.NodeGroupType = ParseGroupType(queryText(node, "bag:BAG_DataIdentification/bag:nodeGroupType/bag:BAG_OptGroupCode"))
	id.ElevationSolutionGroupType = ParseGroupType(queryText(node, "bag:BAG_DataIdentification/bag:elevationSolutionGroupType/bag:BAG_OptGroupCode"))

	for _, p := range queryAll(node, "bag:BAG_DataIdentification/gmd:citation/gmd:CI_Citation/gmd:citedResponsibleParty") {
		id.ResponsibleParties = append(id.ResponsibleParties, decodeResponsiblePartyV2(p))
	}
	return id
}

func decodeSpatialV2(node *xmlquery.Node) Spatial {
	var sp Spatial
	rowSize := "gmd:MD_Georectified/gmd:axisDimensionProperties/gmd:MD_Dimension/gmd:dimensionName/gmd:MD_DimensionNameTypeCode[@codeListValue='row']/parent::*/parent::*/gmd:dimensionSize/gco:Integer"
	colSize := "gmd:MD_Georectified/gmd:axisDimensionProperties/gmd:MD_Dimension/gmd:dimensionName/gmd:MD_DimensionNameTypeCode[@codeListValue='column']/parent::*/parent::*/gmd:dimensionSize/gco:Integer"
	sp.Rows = parseIntOr(queryText(node, rowSize), 0)
	sp.Cols = parseIntOr(queryText(node, colSize), 0)
	rowBase := "gmd:MD_Georectified/gmd:axisDimensionProperties/gmd:MD_Dimension/gmd:dimensionName/gmd:MD_DimensionNameTypeCode[@codeListValue='row']/parent::*/parent::*/gmd:resolution/gco:Measure"
	colBase := "gmd:MD_Georectified/gmd:axisDimensionProperties/gmd:MD_Dimension/gmd:dimensionName/gmd:MD_DimensionNameTypeCode[@codeListValue='column']/parent::*/parent::*/gmd:resolution/gco:Measure"
	sp.RowResolution, _ = parseFloat(queryText(node, rowBase))
	sp.ColumnResolution, _ = parseFloat(queryText(node, colBase))
	sp.CellGeometry = queryText(node, "gmd:MD_Georectified/gmd:cellGeometry/gmd:MD_CellGeometryCode")

	if corners := queryText(node, "gmd:MD_Georectified/gmd:cornerPoints/gml:Point/gml:coordinates"); corners != "" {
		ll, ur, ok := parseCornerPoints(corners)
		if ok {
			sp.LLCornerX, sp.LLCornerY = ll[0], ll[1]
			sp.URCornerX, sp.URCornerY = ur[0], ur[1]
		}
	}
	return sp
}

func decodeReferenceSystemV2(node *xmlquery.Node) ReferenceSystem {
	return ReferenceSystem{
		Definition: queryText(node, "gmd:MD_ReferenceSystem/gmd:referenceSystemIdentifier/gmd:RS_Identifier/gmd:code/gco:CharacterString"),
		Type:       queryText(node, "gmd:MD_ReferenceSystem/gmd:referenceSystemIdentifier/gmd:RS_Identifier/gmd:codeSpace/gco:CharacterString"),
	}
}

func decodeDataQualityV2(node *xmlquery.Node) DataQuality {
	var dq DataQuality
	dq.Scope = queryText(node, "gmd:DQ_DataQuality/gmd:scope/gmd:DQ_Scope/gmd:level/gmd:MD_ScopeCode")
	for _, step := range queryAll(node, "gmd:DQ_DataQuality/gmd:lineage/gmd:LI_Lineage/gmd:processStep/bag:BAG_ProcessStep") {
		ps := ProcessStep{
			Description: queryText(step, "gmd:description/gco:CharacterString"),
			DateTime:    queryText(step, "gmd:dateTime/gco:DateTime"),
		}
		for _, src := range queryAll(step, "gmd:source/gmd:LI_Source") {
			ps.Sources = append(ps.Sources, SourceInfo{Description: queryText(src, "gmd:description/gco:CharacterString")})
		}
		dq.ProcessSteps = append(dq.ProcessSteps, ps)
	}
	return dq
}

// parseCornerPoints parses the `"llx,lly urx,ury"` corner-point text the
// export path writes (spec §4.3) back into two coordinate pairs.
func parseCornerPoints(s string) (ll, ur [2]float64, ok bool) {
	parts := strings.Fields(strings.TrimSpace(s))
	if len(parts) != 2 {
		return ll, ur, false
	}
	llParts := strings.Split(parts[0], ",")
	urParts := strings.Split(parts[1], ",")
	if len(llParts) != 2 || len(urParts) != 2 {
		return ll, ur, false
	}
	var err error
	if ll[0], err = parseFloat(llParts[0]); err != nil {
		return ll, ur, false
	}
	if ll[1], err = parseFloat(llParts[1]); err != nil {
		return ll, ur, false
	}
	if ur[0], err = parseFloat(urParts[0]); err != nil {
		return ll, ur, false
	}
	if ur[1], err = parseFloat(urParts[1]); err != nil {
		return ll, ur, false
	}
	return ll, ur, true
}

func validateBoundingBox(id Identification) error {
	if id.West > id.East || id.South > id.North {
		return &ErrInvalidMetadata{Reason: fmt.Sprintf("bounding box ll > ur: west=%v east=%v south=%v north=%v", id.West, id.East, id.South, id.North)}
	}
	return nil
}
