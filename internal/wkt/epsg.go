package wkt

// InferEpsg infers the EPSG code for well-known combinations of coordinate
// system, datum, and (for UTM) zone/false-northing; returns 0 when no EPSG
// match exists (spec §4.2).
func InferEpsg(cs CoordSys, datum Datum, utmZone int, falseNorthing float64) int {
	switch cs {
	case Geodetic:
		switch datum {
		case WGS84:
			return 4326
		case NAD83:
			return 4269
		case WGS72:
			return 4322
		}
		return 0

	case Mercator:
		return 3395

	case UTM:
		zone := utmZone
		north := utmHemisphere(falseNorthing, zone)
		if zone < 0 {
			zone = -zone
		}
		if zone < 1 || zone > 60 {
			return 0
		}
		switch datum {
		case WGS84:
			if north {
				return 32600 + zone
			}
			return 32700 + zone
		case WGS72:
			if north {
				return 32200 + zone
			}
			return 32300 + zone
		case NAD83:
			if north && zone >= 1 && zone <= 23 {
				return 26900 + zone
			}
			return 0
		}
		return 0

	default:
		return 0
	}
}
