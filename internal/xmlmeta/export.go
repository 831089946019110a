package xmlmeta

import (
	"fmt"
	"strconv"

	"github.com/beevik/etree"
)

// Export serializes m as UTF-8 ISO-19139/gmi XML in the modern (version 2)
// form (spec §4.3): deterministic element order, fixed-precision decimal
// formatting (12 fractional digits for corner points, 7 for the
// bounding-box coordinates, 15 for resolutions), classic point-decimal, never the
// caller's locale.
func Export(m *Metadata) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("gmi:MI_Metadata")
	root.CreateAttr("xmlns:gmi", "http://www.isotc211.org/2005/gmi")
	root.CreateAttr("xmlns:gmd", "http://www.isotc211.org/2005/gmd")
	root.CreateAttr("xmlns:gco", "http://www.isotc211.org/2005/gco")
	root.CreateAttr("xmlns:bag", "http://www.opennavsurf.org/schema/bag")
	root.CreateAttr("xmlns:gml", "http://www.opengis.net/gml")

	charString(root, "gmd:fileIdentifier", m.FileIdentifier)
	codeElement(root, "gmd:characterSet", "gmd:MD_CharacterSetCode", m.CharacterSet)
	codeElement(root, "gmd:hierarchyLevel", "gmd:MD_ScopeCode", m.HierarchyLevel)

	exportContact(root.CreateElement("gmd:contact"), m.Contact)

	dateElement(root, "gmd:dateStamp", m.DateStamp)
	charString(root, "gmd:metadataStandardName", m.MetadataStandardName)
	charString(root, "gmd:metadataStandardVersion", m.MetadataStandardVersion)

	exportSpatial(root.CreateElement("gmd:spatialRepresentationInfo"), m.Spatial)
	exportReferenceSystem(root.CreateElement("gmd:referenceSystemInfo"), m.HorizontalReferenceSystem)
	exportReferenceSystem(root.CreateElement("gmd:referenceSystemInfo"), m.VerticalReferenceSystem)
	exportIdentification(root.CreateElement("gmd:identificationInfo"), m.Identification)
	exportDataQuality(root.CreateElement("gmd:dataQualityInfo"), m.DataQuality)

	if m.LegalConstraints != "" {
		lc := root.CreateElement("gmd:metadataConstraints").CreateElement("gmd:MD_LegalConstraints")
		charString(lc, "gmd:otherConstraints", m.LegalConstraints)
	}
	if m.SecurityConstraints != "" {
		sc := root.CreateElement("gmd:metadataConstraints").CreateElement("gmd:MD_SecurityConstraints")
		codeElement(sc, "gmd:classification", "gmd:MD_ClassificationCode", m.SecurityConstraints)
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func charString(parent *etree.Element, name, value string) {
	charStringIn(parent.CreateElement(name), "gco:CharacterString", value)
}

func charStringIn(parent *etree.Element, leaf, value string) {
	parent.CreateElement(leaf).SetText(value)
}

func codeElement(parent *etree.Element, name, code, value string) {
	el := parent.CreateElement(name)
	c := el.CreateElement(code)
	c.CreateAttr("codeListValue", value)
	c.SetText(value)
}

func dateElement(parent *etree.Element, name, value string) {
	el := parent.CreateElement(name)
	el.CreateElement("gco:Date").SetText(value)
}

func decimalElement(parent *etree.Element, name string, value float64, precision int) {
	el := parent.CreateElement(name)
	el.CreateElement("gco:Decimal").SetText(formatFixed(value, precision))
}

func measureElement(parent *etree.Element, name string, value float64, precision int) {
	el := parent.CreateElement(name)
	el.CreateElement("gco:Measure").SetText(formatFixed(value, precision))
}

func integerElement(parent *etree.Element, name string, value int) {
	el := parent.CreateElement(name)
	el.CreateElement("gco:Integer").SetText(strconv.Itoa(value))
}

func formatFixed(v float64, precision int) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func exportContact(el *etree.Element, c ResponsibleParty) {
	p := el.CreateElement("gmd:CI_ResponsibleParty")
	charString(p, "gmd:individualName", c.IndividualName)
	charString(p, "gmd:organisationName", c.OrganizationName)
	charString(p, "gmd:positionName", c.PositionName)
	codeElement(p, "gmd:role", "gmd:CI_RoleCode", c.Role)
}

func exportSpatial(el *etree.Element, sp Spatial) {
	g := el.CreateElement("gmd:MD_Georectified")

	rowDim := g.CreateElement("gmd:axisDimensionProperties").CreateElement("gmd:MD_Dimension")
	dn := rowDim.CreateElement("gmd:dimensionName").CreateElement("gmd:MD_DimensionNameTypeCode")
	dn.CreateAttr("codeListValue", "row")
	dn.SetText("row")
	integerElement(rowDim, "gmd:dimensionSize", sp.Rows)
	measureElement(rowDim, "gmd:resolution", sp.RowResolution, 15)

	colDim := g.CreateElement("gmd:axisDimensionProperties").CreateElement("gmd:MD_Dimension")
	dn2 := colDim.CreateElement("gmd:dimensionName").CreateElement("gmd:MD_DimensionNameTypeCode")
	dn2.CreateAttr("codeListValue", "column")
	dn2.SetText("column")
	integerElement(colDim, "gmd:dimensionSize", sp.Cols)
	measureElement(colDim, "gmd:resolution", sp.ColumnResolution, 15)

	codeElement(g, "gmd:cellGeometry", "gmd:MD_CellGeometryCode", sp.CellGeometry)

	coords := g.CreateElement("gmd:cornerPoints").CreateElement("gml:Point").CreateElement("gml:coordinates")
	coords.CreateAttr("decimal", ".")
	coords.CreateAttr("cs", ",")
	coords.CreateAttr("ts", " ")
	coords.SetText(fmt.Sprintf("%s,%s %s,%s",
		formatFixed(sp.LLCornerX, 12), formatFixed(sp.LLCornerY, 12),
		formatFixed(sp.URCornerX, 12), formatFixed(sp.URCornerY, 12)))
}

func exportReferenceSystem(el *etree.Element, rs ReferenceSystem) {
	if rs.Definition == "" {
		return
	}
	id := el.CreateElement("gmd:MD_ReferenceSystem").CreateElement("gmd:referenceSystemIdentifier").CreateElement("gmd:RS_Identifier")
	charString(id, "gmd:code", rs.Definition)
	charString(id, "gmd:codeSpace", rs.Type)
}

func exportIdentification(el *etree.Element, id Identification) {
	di := el.CreateElement("bag:BAG_DataIdentification")

	ci := di.CreateElement("gmd:citation").CreateElement("gmd:CI_Citation")
	charString(ci, "gmd:title", id.Title)
	d := ci.CreateElement("gmd:CI_Date")
	dateElement(d, "gmd:date", id.Date)
	codeElement(d, "gmd:dateType", "gmd:CI_DateTypeCode", id.DateType)
	for _, p := range id.ResponsibleParties {
		exportContact(ci.CreateElement("gmd:citedResponsibleParty"), p)
	}

	charString(di, "gmd:abstract", id.Abstract)
	codeElement(di, "gmd:status", "gmd:MD_ProgressCode", id.Status)
	codeElement(di, "gmd:language", "gmd:LanguageCode", id.Language)
	codeElement(di, "gmd:topicCategory", "gmd:MD_TopicCategoryCode", id.TopicCategory)

	bbox := di.CreateElement("gmd:extent").CreateElement("gmd:EX_Extent").
		CreateElement("gmd:geographicElement").CreateElement("gmd:EX_GeographicBoundingBox")
	decimalElement(bbox, "gmd:westBoundLongitude", id.West, 7)
	decimalElement(bbox, "gmd:eastBoundLongitude", id.East, 7)
	decimalElement(bbox, "gmd:southBoundLatitude", id.South, 7)
	decimalElement(bbox, "gmd:northBoundLatitude", id.North, 7)

	codeElement(di, "bag:verticalUncertaintyType", "bag:BAG_VertUncertCode", id.VerticalUncertaintyType.String())
	codeElement(di, "bag:depthCorrectionType", "bag:BAG_DepthCorrectCode", id.DepthCorrectionType.String())
	codeElement(di, "bag:nodeGroupType", "bag:BAG_OptGroupCode", id.NodeGroupType.String())
	codeElement(di, "bag:elevationSolutionGroupType", "bag:BAG_OptGroupCode", id.ElevationSolutionGroupType.String())
}

func exportDataQuality(el *etree.Element, dq DataQuality) {
	dqi := el.CreateElement("gmd:DQ_DataQuality")
	codeElement(dqi.CreateElement("gmd:scope").CreateElement("gmd:DQ_Scope"), "gmd:level", "gmd:MD_ScopeCode", dq.Scope)

	lineage := dqi.CreateElement("gmd:lineage").CreateElement("gmd:LI_Lineage")
	for _, ps := range dq.ProcessSteps {
		step := lineage.CreateElement("gmd:processStep").CreateElement("bag:BAG_ProcessStep")
		charString(step, "gmd:description", ps.Description)
		step.CreateElement("gmd:dateTime").CreateElement("gco:DateTime").SetText(ps.DateTime)
		for _, src := range ps.Sources {
			charString(step.CreateElement("gmd:source").CreateElement("gmd:LI_Source"), "gmd:description", src.Description)
		}
	}
}
