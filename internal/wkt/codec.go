package wkt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// formatFloat renders f in the classic locale with a decimal point and the
// shortest representation that round-trips exactly, never the caller's
// locale (spec §4.2, §9). Grounded on the same pattern used for WKT
// coordinate formatting in SAP go-hdb's spatial encoder.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// towgs84 returns the canonical 7-parameter Helmert vector for a datum
// (spec §4.2: "canonical TOWGS84 vectors per datum").
func towgs84(d Datum) [7]float64 {
	switch d {
	case WGS72:
		return [7]float64{0, 0, 4.5, 0, 0, 0.554, 0.2263}
	default:
		return [7]float64{}
	}
}

func datumLabel(d Datum) (geogcsName, datumName string) {
	switch d {
	case WGS84:
		return "WGS 84", "WGS_1984"
	case WGS72:
		return "WGS 72", "WGS_1972"
	case NAD83:
		return "NAD83", "North_American_Datum_1983"
	default:
		return "", ""
	}
}

// datumToWkt renders the GEOGCS clause for a datum + ellipsoid name,
// falling back to the datum's default ellipsoid on a lookup miss (spec
// §4.2, ported from datumToWkt in bag_reference_system.cpp).
func datumToWkt(d Datum, ellipsoidName string) (string, error) {
	geogcs, datumName := datumLabel(d)
	if geogcs == "" {
		return "", fmt.Errorf("%w: unknown datum %d", ErrInvalidDatum, d)
	}
	ell := resolveEllipsoid(ellipsoidName, d)
	tw := towgs84(d)
	var b strings.Builder
	fmt.Fprintf(&b, `GEOGCS["%s", DATUM["%s", SPHEROID["%s",%s,%s], TOWGS84[%s,%s,%s,%s,%s,%s,%s]], PRIMEM["Greenwich",0], UNIT["degree",%s]]`,
		geogcs, datumName, ell.display, formatFloat(ell.semiMajor), formatFloat(ell.inverseFlattening),
		formatFloat(tw[0]), formatFloat(tw[1]), formatFloat(tw[2]), formatFloat(tw[3]), formatFloat(tw[4]), formatFloat(tw[5]), formatFloat(tw[6]),
		formatFloat(math.Pi/180.0))
	return b.String(), nil
}

// utmHemisphere derives the UTM hemisphere from false northing, falling
// back to the sign of the zone when the false northing is neither the
// canonical north (0) nor south (10,000,000) value (spec §4.2).
func utmHemisphere(falseNorthing float64, zone int) (north bool) {
	switch falseNorthing {
	case 0:
		return true
	case 10000000:
		return false
	default:
		return zone >= 0
	}
}

// projectionName maps each legacy CoordSys to its WKT PROJECTION[] name.
var projectionName = map[CoordSys]string{
	TransverseMercator:     "Transverse_Mercator",
	LambertConformalConic:  "Lambert_Conformal_Conic_2SP",
	PolarStereographic:     "Polar_Stereographic",
	Stereographic:          "Oblique_Stereographic",
	Albers:                 "Albers_Conic_Equal_Area",
	AzimuthalEquidistant:   "Azimuthal_Equidistant",
	Bonne:                  "Bonne",
	Cassini:                "Cassini_Soldner",
	CylindricalEqualArea:   "Cylindrical_Equal_Area",
	Eckert4:                "Eckert_IV",
	Eckert6:                "Eckert_VI",
	EquidistantCylindrical: "Equirectangular",
	Gnomonic:               "Gnomonic",
	MillerCylindrical:      "Miller_Cylindrical",
	Mollweide:              "Mollweide",
	NZMG:                   "New_Zealand_Map_Grid",
	Orthographic:           "Orthographic",
	Polyconic:              "Polyconic",
	Sinusoidal:             "Sinusoidal",
	VanDerGrinten:          "VanDerGrinten",
	Mercator:               "Mercator_1SP",
}

// projectionLookupName is the lower-case token getCoordinateType scans for
// inside `projection["..."]`, distinct from the emitted (mixed-case) name
// where the two differ (spec §4.2 inverse rules).
var projectionLookupName = map[CoordSys]string{
	TransverseMercator:     "transverse_mercator",
	LambertConformalConic:  "lambert_conformal_conic_2sp",
	PolarStereographic:     "polar_stereographic",
	Stereographic:          "oblique_stereographic",
	Albers:                 "albers_conic_equal_area",
	AzimuthalEquidistant:   "azimuthal_equidistant",
	Bonne:                  "bonne",
	Cassini:                "cassini_soldner",
	CylindricalEqualArea:   "cylindrical_equal_area",
	Eckert4:                "eckert_iv",
	Eckert6:                "eckert_vi",
	EquidistantCylindrical: "equirectangular",
	Gnomonic:               "gnomonic",
	MillerCylindrical:      "miller_cylindrical",
	Mollweide:              "mollweide",
	NZMG:                   "new_zealand_map_grid",
	Orthographic:           "orthographic",
	Polyconic:              "polyconic",
	Sinusoidal:             "sinusoidal",
	VanDerGrinten:          "vandergrinten",
	Mercator:               "mercator_1sp",
}

// param is one PARAMETER[name, value] pair to emit, in the deterministic
// order a given projection accepts (spec §4.2: "emitting exactly the
// parameters that projection accepts").
type param struct {
	name  string
	value float64
}

// projectionParams returns, in emission order, exactly the parameters the
// given projection accepts (ported one-for-one from the per-case switch in
// bagLegacyToWkt).
func projectionParams(cs CoordSys, l Legacy) ([]param, bool) {
	switch cs {
	case TransverseMercator:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"scale_factor", l.ScaleFactor},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Mercator:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"scale_factor", l.ScaleFactor},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case PolarStereographic, Stereographic:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"scale_factor", l.ScaleFactor},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Albers:
		return []param{
			{"standard_parallel_1", l.StdParallel1},
			{"standard_parallel_2", l.StdParallel2},
			{"latitude_of_center", l.LatitudeOfCentre},
			{"longitude_of_center", l.LongitudeOfCentre},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case AzimuthalEquidistant:
		return []param{
			{"latitude_of_center", l.LatitudeOfCentre},
			{"longitude_of_center", l.LongitudeOfCentre},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Bonne:
		return []param{
			{"standard_parallel_1", l.StdParallel1},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Cassini:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case CylindricalEqualArea:
		return []param{
			{"standard_parallel_1", l.StdParallel1},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Eckert4, Eckert6:
		return []param{
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case EquidistantCylindrical:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Gnomonic:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case LambertConformalConic:
		return []param{
			{"standard_parallel_1", l.StdParallel1},
			{"standard_parallel_2", l.StdParallel2},
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case MillerCylindrical:
		return []param{
			{"latitude_of_center", l.LatitudeOfCentre},
			{"longitude_of_center", l.LongitudeOfCentre},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Mollweide:
		return []param{
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case NZMG:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Orthographic:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Polyconic:
		return []param{
			{"latitude_of_origin", l.OriginLatitude},
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case Sinusoidal:
		return []param{
			{"longitude_of_center", l.LongitudeOfCentre},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	case VanDerGrinten:
		return []param{
			{"central_meridian", l.CentralMeridian},
			{"false_easting", l.FalseEasting},
			{"false_northing", l.FalseNorthing},
		}, true
	default:
		return nil, false
	}
}

// LegacyToWkt converts a legacy parameter block to horizontal and/or
// vertical WKT strings (spec §4.2).
func LegacyToWkt(l Legacy) (horizontal, vertical string, err error) {
	if l.VerticalDatum != "" {
		vertical = fmt.Sprintf(`VERT_CS["%s", VERT_DATUM["%s", 2000]]`, l.VerticalDatum, l.VerticalDatum)
	}

	switch l.CoordSys {
	case Geodetic:
		horizontal, err = datumToWkt(l.Datum, l.EllipsoidName)
		if err != nil {
			return "", "", err
		}
		return horizontal, vertical, nil

	case UTM:
		zone := l.UTMZone
		north := utmHemisphere(l.FalseNorthing, zone)
		datum, derr := datumToWkt(l.Datum, l.EllipsoidName)
		if derr != nil {
			return "", "", derr
		}
		hemi := "Southern Hemisphere"
		falseNorthing := 10000000.0
		if north {
			hemi = "Northern Hemisphere"
			falseNorthing = 0
		}
		absZone := zone
		if absZone < 0 {
			absZone = -absZone
		}
		centralMeridian := float64(absZone)*6 - 183
		horizontal = fmt.Sprintf(
			`PROJCS["UTM Zone %d, %s", %s, PROJECTION["Transverse_Mercator"], PARAMETER["latitude_of_origin",%s], PARAMETER["central_meridian",%s], PARAMETER["scale_factor",%s], PARAMETER["false_easting",%s], PARAMETER["false_northing",%s], UNIT["metre",1]]`,
			absZone, hemi, datum,
			formatFloat(0), formatFloat(centralMeridian), formatFloat(0.9996), formatFloat(500000), formatFloat(falseNorthing))
		return horizontal, vertical, nil

	default:
		name, ok := projectionName[l.CoordSys]
		if !ok {
			return "", "", fmt.Errorf("%w: unsupported coordinate system %d", ErrInvalidProjection, l.CoordSys)
		}
		params, ok := projectionParams(l.CoordSys, l)
		if !ok {
			return "", "", fmt.Errorf("%w: unsupported coordinate system %d", ErrInvalidProjection, l.CoordSys)
		}
		datum, derr := datumToWkt(l.Datum, l.EllipsoidName)
		if derr != nil {
			return "", "", derr
		}
		var b strings.Builder
		fmt.Fprintf(&b, `PROJCS["unnamed", %s, PROJECTION["%s"]`, datum, name)
		for _, p := range params {
			fmt.Fprintf(&b, `, PARAMETER["%s",%s]`, p.name, formatFloat(p.value))
		}
		b.WriteString(`, UNIT["metre",1]]`)
		return b.String(), vertical, nil
	}
}
