package xmlmeta

import (
	"os"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/bagfmt/bag/internal/wkt"
)

// decodeHorizontalV1 rebuilds a legacy parameter block from an
// smXML:MD_CRS node and converts it to WKT, mirroring
// decodeReferenceSystemInfo's schemaVersion==1 horizontal branch in
// bag_metadata_import.cpp.
func decodeHorizontalV1(node *xmlquery.Node, ellipsoid string) ReferenceSystem {
	projectionID := queryText(node, "smXML:MD_CRS/projection/smXML:RS_Identifier/code")
	datumID := queryText(node, "smXML:MD_CRS/datum/smXML:RS_Identifier/code")

	l := wkt.Legacy{
		CoordSys:      coordSysFromCode(projectionID),
		Datum:         datumFromCode(datumID),
		EllipsoidName: ellipsoid,
	}

	params := "smXML:MD_CRS/projectionParameters/smXML:MD_ProjectionParameters/"
	l.UTMZone = parseIntOr(queryText(node, params+"zone"), 0)
	l.StdParallel1, _ = parseFloat(queryText(node, params+"standardParallel[1]"))
	l.StdParallel2, _ = parseFloat(queryText(node, params+"standardParallel[2]"))
	l.CentralMeridian, _ = parseFloat(queryText(node, params+"longitudeOfCentralMeridian"))
	l.OriginLatitude, _ = parseFloat(queryText(node, params+"latitudeOfProjectionOrigin"))
	l.FalseEasting, _ = parseFloat(queryText(node, params+"falseEasting"))
	l.FalseNorthing, _ = parseFloat(queryText(node, params+"falseNorthing"))
	l.LongitudeOfCentre, _ = parseFloat(queryText(node, params+"longitudeOfProjectionCenter"))
	l.LatitudeOfCentre, _ = parseFloat(queryText(node, params+"latitudeOfProjectionCenter"))

	scaleFactAtEq, _ := parseFloat(queryText(node, params+"scaleFactorAtEquator"))
	scaleAtProjOrigin, _ := parseFloat(queryText(node, params+"scaleFactorAtProjectionOrigin"))
	switch l.CoordSys {
	case wkt.Mercator:
		l.ScaleFactor = scaleFactAtEq
	case wkt.TransverseMercator, wkt.PolarStereographic:
		l.ScaleFactor = scaleAtProjOrigin
	}

	horiz, _, err := wkt.LegacyToWkt(l)
	if err != nil {
		return ReferenceSystem{}
	}
	return ReferenceSystem{Type: "WKT", Definition: horiz}
}

func decodeVerticalV1(datumName string) ReferenceSystem {
	l := wkt.Legacy{VerticalDatum: datumName}
	_, vert, err := wkt.LegacyToWkt(l)
	if err != nil {
		return ReferenceSystem{}
	}
	return ReferenceSystem{Type: "WKT", Definition: vert}
}

// coordSysFromCode maps the short projection codes the legacy schema's
// smXML:RS_Identifier/code carries (case-insensitive, space-or-underscore
// insensitive) to the closed CoordSys enum.
func coordSysFromCode(code string) wkt.CoordSys {
	key := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(code, " ", ""), "_", ""))
	table := map[string]wkt.CoordSys{
		"geodetic":                 wkt.Geodetic,
		"utm":                      wkt.UTM,
		"mercator":                 wkt.Mercator,
		"transversemercator":       wkt.TransverseMercator,
		"lambertconformalconic":    wkt.LambertConformalConic,
		"polarstereographic":       wkt.PolarStereographic,
		"stereographic":            wkt.Stereographic,
		"albersequalareaconic":     wkt.Albers,
		"albers":                   wkt.Albers,
		"azimuthalequidistant":     wkt.AzimuthalEquidistant,
		"bonne":                    wkt.Bonne,
		"cassini":                  wkt.Cassini,
		"cylindricalequalarea":     wkt.CylindricalEqualArea,
		"eckert4":                  wkt.Eckert4,
		"eckert6":                  wkt.Eckert6,
		"equidistantcylindrical":   wkt.EquidistantCylindrical,
		"gnomonic":                 wkt.Gnomonic,
		"millercylindrical":        wkt.MillerCylindrical,
		"mollweide":                wkt.Mollweide,
		"nzmg":                     wkt.NZMG,
		"orthographic":             wkt.Orthographic,
		"polyconic":                wkt.Polyconic,
		"sinusoidal":               wkt.Sinusoidal,
		"vandergrinten":            wkt.VanDerGrinten,
	}
	if cs, ok := table[key]; ok {
		return cs
	}
	return wkt.Geodetic
}

func datumFromCode(code string) wkt.Datum {
	switch strings.ToLower(strings.TrimSpace(code)) {
	case "wgs72":
		return wkt.WGS72
	case "nad83":
		return wkt.NAD83
	default:
		return wkt.WGS84
	}
}

func schemaFileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
