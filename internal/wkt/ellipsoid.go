package wkt

import "strings"

// ellipsoidRow is one entry of the ellipsoid table: the canonical display
// name, semi-major axis (metres), and inverse flattening.
type ellipsoidRow struct {
	display           string
	semiMajor         float64
	inverseFlattening float64
}

func (r ellipsoidRow) key() string { return strings.ToLower(r.display) }

// ellipsoidTable mirrors the ellips.dat lookup in bag_reference_system.cpp,
// ported to an in-process table (spec §4.2: "scan a text table keyed by
// case-insensitive name, each row exposing semi-major and
// inverse-flattening").
var ellipsoidTable = []ellipsoidRow{
	{"WGS 84", 6378137.0, 298.257223563},
	{"WGS 72", 6378135.0, 298.26},
	{"GRS 1980", 6378137.0, 298.257222101},
	{"Clarke 1866", 6378206.4, 294.9786982},
	{"Clarke 1880", 6378249.145, 293.465},
	{"International 1924", 6378388.0, 297.0},
	{"Bessel 1841", 6377397.155, 299.1528128},
	{"Airy 1830", 6377563.396, 299.3249646},
	{"Everest 1830", 6377276.345, 300.8017},
	{"Krasovsky 1940", 6378245.0, 298.3},
}

// lookupEllipsoid returns the named row, case-insensitively, and ok=false on
// a miss.
func lookupEllipsoid(name string) (ellipsoidRow, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, row := range ellipsoidTable {
		if row.key() == n {
			return row, true
		}
	}
	return ellipsoidRow{}, false
}

// defaultEllipsoidForDatum returns the per-datum default ellipsoid used
// when a named ellipsoid can't be resolved (spec §4.2: "fall back to
// per-datum defaults on miss"), mirroring datumToWkt's catch-and-default
// behavior in bag_reference_system.cpp.
func defaultEllipsoidForDatum(d Datum) ellipsoidRow {
	switch d {
	case WGS72:
		return ellipsoidTable[1]
	case NAD83:
		return ellipsoidTable[2]
	default:
		return ellipsoidTable[0]
	}
}

// resolveEllipsoid returns the row to use for the given name, falling back
// to the datum default on a miss or an empty name.
func resolveEllipsoid(name string, d Datum) ellipsoidRow {
	if strings.TrimSpace(name) == "" {
		return defaultEllipsoidForDatum(d)
	}
	if row, ok := lookupEllipsoid(name); ok {
		return row
	}
	return defaultEllipsoidForDatum(d)
}
