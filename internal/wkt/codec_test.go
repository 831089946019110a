package wkt

import "testing"

func TestLegacyToWktUTMZone17North(t *testing.T) {
	l := Legacy{
		CoordSys:      UTM,
		Datum:         WGS84,
		EllipsoidName: "WGS 84",
		UTMZone:       17,
		FalseNorthing: 0,
	}
	horiz, _, err := LegacyToWkt(l)
	if err != nil {
		t.Fatal(err)
	}
	want := `PROJCS["UTM Zone 17, Northern Hemisphere", GEOGCS["WGS 84", DATUM["WGS_1984", SPHEROID["WGS 84",6378137,298.257223563], TOWGS84[0,0,0,0,0,0,0]], PRIMEM["Greenwich",0], UNIT["degree",0.017453292519943295]], PROJECTION["Transverse_Mercator"], PARAMETER["latitude_of_origin",0], PARAMETER["central_meridian",-81], PARAMETER["scale_factor",0.9996], PARAMETER["false_easting",500000], PARAMETER["false_northing",0], UNIT["metre",1]]`
	if horiz != want {
		t.Errorf("got:\n%s\nwant:\n%s", horiz, want)
	}

	epsg := InferEpsg(UTM, WGS84, 17, 0)
	if epsg != 32617 {
		t.Errorf("InferEpsg = %d, want 32617", epsg)
	}
}

func TestLegacyToWktGeodeticWGS84(t *testing.T) {
	l := Legacy{CoordSys: Geodetic, Datum: WGS84, EllipsoidName: "WGS 84"}
	horiz, _, err := LegacyToWkt(l)
	if err != nil {
		t.Fatal(err)
	}
	if horiz == "" {
		t.Fatal("empty horizontal WKT")
	}
	if got := InferEpsg(Geodetic, WGS84, 0, 0); got != 4326 {
		t.Errorf("InferEpsg(Geodetic, WGS84) = %d, want 4326", got)
	}
}

func TestVerticalWkt(t *testing.T) {
	l := Legacy{CoordSys: Geodetic, Datum: WGS84, VerticalDatum: "MLLW"}
	_, vert, err := LegacyToWkt(l)
	if err != nil {
		t.Fatal(err)
	}
	want := `VERT_CS["MLLW", VERT_DATUM["MLLW", 2000]]`
	if vert != want {
		t.Errorf("got %q, want %q", vert, want)
	}
}

func TestRoundTripUTM(t *testing.T) {
	orig := Legacy{
		CoordSys:      UTM,
		Datum:         WGS84,
		EllipsoidName: "WGS 84",
		UTMZone:       17,
		FalseNorthing: 0,
	}
	horiz, vert, err := LegacyToWkt(orig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := WktToLegacy(horiz, vert)
	if err != nil {
		t.Fatal(err)
	}
	if back.CoordSys != UTM {
		t.Fatalf("round-trip lost UTM classification, got %v", back.CoordSys)
	}
	if back.UTMZone != orig.UTMZone {
		t.Errorf("zone: got %d, want %d", back.UTMZone, orig.UTMZone)
	}
	if back.Datum != orig.Datum {
		t.Errorf("datum: got %v, want %v", back.Datum, orig.Datum)
	}
}

func TestRoundTripGeodetic(t *testing.T) {
	orig := Legacy{CoordSys: Geodetic, Datum: NAD83, EllipsoidName: "GRS 1980"}
	horiz, _, err := LegacyToWkt(orig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := WktToLegacy(horiz, "")
	if err != nil {
		t.Fatal(err)
	}
	if back.CoordSys != Geodetic || back.Datum != NAD83 {
		t.Errorf("round-trip mismatch: %+v", back)
	}
}

func TestRoundTripLambertConformalConic(t *testing.T) {
	orig := Legacy{
		CoordSys:        LambertConformalConic,
		Datum:           WGS84,
		EllipsoidName:   "WGS 84",
		StdParallel1:    33,
		StdParallel2:    45,
		OriginLatitude:  39,
		CentralMeridian: -96,
		FalseEasting:    0,
		FalseNorthing:   0,
	}
	horiz, _, err := LegacyToWkt(orig)
	if err != nil {
		t.Fatal(err)
	}
	back, err := WktToLegacy(horiz, "")
	if err != nil {
		t.Fatal(err)
	}
	if back.CoordSys != LambertConformalConic {
		t.Fatalf("got %v", back.CoordSys)
	}
	if back.StdParallel1 != orig.StdParallel1 || back.StdParallel2 != orig.StdParallel2 {
		t.Errorf("standard parallels mismatch: %+v", back)
	}
	if back.CentralMeridian != orig.CentralMeridian || back.OriginLatitude != orig.OriginLatitude {
		t.Errorf("origin mismatch: %+v", back)
	}
}

func TestInferEpsgNoMatch(t *testing.T) {
	if got := InferEpsg(Mollweide, WGS84, 0, 0); got != 0 {
		t.Errorf("expected 0 for unmapped projection, got %d", got)
	}
}

func TestWktToLegacyInvalidProjection(t *testing.T) {
	_, err := WktToLegacy(`GARBAGE NOT WKT AT ALL`, "")
	if err == nil {
		t.Fatal("expected error for unparseable WKT")
	}
}
