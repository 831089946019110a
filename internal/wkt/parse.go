package wkt

import (
	"fmt"
	"strconv"
	"strings"
)

// All parsing in this file is case-insensitive and ignores surrounding
// whitespace; callers pass the already-lower-cased WKT string (spec §4.2).

// getProjectionParam extracts the numeric value of PARAMETER["name",value]
// from a lower-cased WKT string, ported from getProjectionParam in
// bag_reference_system.cpp.
func getProjectionParam(wktLower, name string) (float64, error) {
	start := strings.Index(wktLower, name)
	if start < 0 {
		return 0, fmt.Errorf("%w: parameter %q not found", ErrInvalidProjection, name)
	}
	rest := wktLower[start:]
	comma := strings.Index(rest, ",")
	if comma < 0 {
		return 0, fmt.Errorf("%w: parameter %q malformed", ErrInvalidProjection, name)
	}
	rest = rest[comma+1:]
	end := strings.IndexAny(rest, "]")
	if end < 0 {
		return 0, fmt.Errorf("%w: parameter %q malformed", ErrInvalidProjection, name)
	}
	valueStr := strings.TrimSpace(rest[:end])
	v, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parameter %q value %q: %v", ErrInvalidProjection, name, valueStr, err)
	}
	return v, nil
}

// getCoordinateType classifies the projection from a lower-cased WKT
// string; absence of a projection[...] node means Geodetic.
func getCoordinateType(wktLower string) (CoordSys, error) {
	idx := strings.Index(wktLower, `projection["`)
	if idx < 0 {
		return Geodetic, nil
	}
	rest := wktLower[idx+len(`projection["`):]
	end := strings.Index(rest, `"]`)
	if end < 0 {
		return 0, fmt.Errorf("%w: unterminated projection name", ErrInvalidProjection)
	}
	projName := rest[:end]
	for cs, lookup := range projectionLookupName {
		if lookup == projName {
			return cs, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown projection %q", ErrInvalidProjection, projName)
}

// getDatumType classifies the horizontal datum from a lower-cased WKT
// string, ported from getDatumType in bag_reference_system.cpp.
func getDatumType(wktLower string) (Datum, error) {
	idx := strings.Index(wktLower, "datum[")
	if idx < 0 {
		return 0, fmt.Errorf("%w: no datum node", ErrInvalidDatum)
	}
	rest := wktLower[idx+len("datum["):]
	end := strings.Index(rest, ",")
	if end < 0 {
		return 0, fmt.Errorf("%w: malformed datum node", ErrInvalidDatum)
	}
	name := strings.Trim(strings.TrimSpace(rest[:end]), `"`)
	switch name {
	case "wgs_1984":
		return WGS84, nil
	case "wgs_1972":
		return WGS72, nil
	case "north_american_datum_1983":
		return NAD83, nil
	default:
		return 0, fmt.Errorf("%w: unknown datum %q", ErrInvalidDatum, name)
	}
}

// getEllipsoid extracts the SPHEROID name from a lower-cased WKT string.
func getEllipsoid(wktLower string) (string, error) {
	idx := strings.Index(wktLower, "spheroid[")
	if idx < 0 {
		return "", fmt.Errorf("%w: no spheroid node", ErrInvalidDatum)
	}
	rest := wktLower[idx+len("spheroid["):]
	end := strings.Index(rest, ",")
	if end < 0 {
		return "", fmt.Errorf("%w: malformed spheroid node", ErrInvalidDatum)
	}
	return strings.Trim(strings.TrimSpace(rest[:end]), `"`), nil
}

// getVDatum extracts the vertical datum name from a lower-cased WKT string.
func getVDatum(wktLower string) (string, error) {
	idx := strings.Index(wktLower, "vert_datum[")
	if idx < 0 {
		return "", fmt.Errorf("%w: no vert_datum node", ErrInvalidDatum)
	}
	rest := wktLower[idx+len("vert_datum["):]
	end := strings.Index(rest, ",")
	if end < 0 {
		return "", fmt.Errorf("%w: malformed vert_datum node", ErrInvalidDatum)
	}
	return strings.Trim(strings.TrimSpace(rest[:end]), `"`), nil
}

// WktToLegacy converts horizontal and/or vertical WKT strings to the legacy
// parameter block, recognizing UTM from the Transverse_Mercator
// central-meridian/scale/easting signature (spec §4.2).
func WktToLegacy(horizontal, vertical string) (Legacy, error) {
	var l Legacy

	if strings.TrimSpace(vertical) != "" {
		vDatum, err := getVDatum(strings.ToLower(vertical))
		if err != nil {
			return Legacy{}, err
		}
		l.VerticalDatum = vDatum
	}

	if strings.TrimSpace(horizontal) == "" {
		return l, nil
	}

	hLower := strings.ToLower(horizontal)

	datum, err := getDatumType(hLower)
	if err != nil {
		return Legacy{}, err
	}
	l.Datum = datum

	ellipsoid, err := getEllipsoid(hLower)
	if err != nil {
		return Legacy{}, err
	}
	l.EllipsoidName = ellipsoid

	cs, err := getCoordinateType(hLower)
	if err != nil {
		return Legacy{}, err
	}
	l.CoordSys = cs

	switch cs {
	case Geodetic:
		return l, nil

	case TransverseMercator:
		if err := fillProjectionParams(&l, hLower, cs); err != nil {
			return Legacy{}, err
		}
		// This may actually be UTM; recognize it from the exact
		// central-meridian/scale/easting signature (spec §4.2).
		utmZone := utmZoneFromCentralMeridian(l.CentralMeridian)
		utmCentralMeridian := float64(utmZone)*6.0 - 183.0
		if l.OriginLatitude == 0.0 && l.ScaleFactor == 0.9996 &&
			l.FalseEasting == 500000.0 && l.CentralMeridian == utmCentralMeridian {
			l.CoordSys = UTM
			l.UTMZone = utmZone
			if l.FalseNorthing == 10000000 {
				l.UTMZone = -utmZone
			}
		}
		return l, nil

	default:
		if err := fillProjectionParams(&l, hLower, cs); err != nil {
			return Legacy{}, err
		}
		return l, nil
	}
}

// utmZoneFromCentralMeridian recovers the UTM zone implied by a central
// meridian, ported from the (central_meridian*pi/180 + pi)/(pi/30) + 1
// formula in bagWktToLegacy.
func utmZoneFromCentralMeridian(centralMeridian float64) int {
	const piOver180 = 3.141592653589793238 / 180.0
	const pi = 3.141592653589793238
	return int((centralMeridian*piOver180+pi)/(pi/30.0) + 1)
}

// fillProjectionParams extracts exactly the parameters the given
// projection accepts into l, in the same per-case shape as
// projectionParams uses for emission.
func fillProjectionParams(l *Legacy, hLower string, cs CoordSys) error {
	get := func(name string) (float64, error) { return getProjectionParam(hLower, name) }

	var err error
	switch cs {
	case TransverseMercator, Mercator, PolarStereographic, Stereographic:
		if l.OriginLatitude, err = get("latitude_of_origin"); err != nil {
			return err
		}
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.ScaleFactor, err = get("scale_factor"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case Albers:
		if l.StdParallel1, err = get("standard_parallel_1"); err != nil {
			return err
		}
		if l.StdParallel2, err = get("standard_parallel_2"); err != nil {
			return err
		}
		if l.LatitudeOfCentre, err = get("latitude_of_center"); err != nil {
			return err
		}
		if l.LongitudeOfCentre, err = get("longitude_of_center"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case AzimuthalEquidistant, MillerCylindrical:
		if l.LatitudeOfCentre, err = get("latitude_of_center"); err != nil {
			return err
		}
		if l.LongitudeOfCentre, err = get("longitude_of_center"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case Bonne:
		if l.StdParallel1, err = get("standard_parallel_1"); err != nil {
			return err
		}
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case Cassini, EquidistantCylindrical, Gnomonic, NZMG, Orthographic, Polyconic:
		if l.OriginLatitude, err = get("latitude_of_origin"); err != nil {
			return err
		}
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case CylindricalEqualArea:
		if l.StdParallel1, err = get("standard_parallel_1"); err != nil {
			return err
		}
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case Eckert4, Eckert6, Mollweide, VanDerGrinten:
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case LambertConformalConic:
		if l.StdParallel1, err = get("standard_parallel_1"); err != nil {
			return err
		}
		if l.StdParallel2, err = get("standard_parallel_2"); err != nil {
			return err
		}
		if l.OriginLatitude, err = get("latitude_of_origin"); err != nil {
			return err
		}
		if l.CentralMeridian, err = get("central_meridian"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	case Sinusoidal:
		if l.LongitudeOfCentre, err = get("longitude_of_center"); err != nil {
			return err
		}
		if l.FalseEasting, err = get("false_easting"); err != nil {
			return err
		}
		if l.FalseNorthing, err = get("false_northing"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unsupported coordinate system %d", ErrInvalidProjection, cs)
	}
	return nil
}
