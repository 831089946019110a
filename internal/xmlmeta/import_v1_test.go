package xmlmeta

import (
	"strings"
	"testing"

	"github.com/bagfmt/bag/internal/wkt"
)

const smXMLUTM17Fixture = `<?xml version="1.0" encoding="UTF-8"?>
<smXML:MD_Metadata xmlns:smXML="http://metadata/smXML" xmlns:gml="http://www.opengis.net/gml">
  <language>eng</language>
  <dateStamp>2010-01-01</dateStamp>
  <identificationInfo>
    <smXML:BAG_DataIdentification>
      <citation>
        <smXML:CI_Citation>
          <title>Test Legacy Survey</title>
        </smXML:CI_Citation>
      </citation>
      <abstract>legacy smXML fixture</abstract>
      <status>completed</status>
      <extent>
        <smXML:EX_Extent>
          <geographicElement>
            <smXML:EX_GeographicBoundingBox>
              <westBoundLongitude>-82.0</westBoundLongitude>
              <eastBoundLongitude>-80.0</eastBoundLongitude>
              <southBoundLatitude>24.0</southBoundLatitude>
              <northBoundLatitude>26.0</northBoundLatitude>
            </smXML:EX_GeographicBoundingBox>
          </geographicElement>
        </smXML:EX_Extent>
      </extent>
    </smXML:BAG_DataIdentification>
  </identificationInfo>
  <spatialRepresentationInfo>
    <smXML:MD_Georectified>
      <cellGeometry>point</cellGeometry>
    </smXML:MD_Georectified>
  </spatialRepresentationInfo>
  <referenceSystemInfo>
    <smXML:MD_CRS>
      <projection>
        <smXML:RS_Identifier>
          <code>UTM</code>
        </smXML:RS_Identifier>
      </projection>
      <ellipsoid>
        <smXML:RS_Identifier>
          <code>WGS 84</code>
        </smXML:RS_Identifier>
      </ellipsoid>
      <datum>
        <smXML:RS_Identifier>
          <code>WGS84</code>
        </smXML:RS_Identifier>
      </datum>
      <projectionParameters>
        <smXML:MD_ProjectionParameters>
          <zone>17</zone>
          <falseNorthing>0</falseNorthing>
        </smXML:MD_ProjectionParameters>
      </projectionParameters>
    </smXML:MD_CRS>
  </referenceSystemInfo>
  <referenceSystemInfo>
    <smXML:MD_CRS>
      <datum>
        <smXML:RS_Identifier>
          <code>MLLW</code>
        </smXML:RS_Identifier>
      </datum>
    </smXML:MD_CRS>
  </referenceSystemInfo>
</smXML:MD_Metadata>
`

// TestImportV1UTMZone17 exercises the legacy-schema seed scenario (spec
// §8 scenario 4): a smXML root describing UTM zone 17 north on WGS84
// decodes to the exact horizontal WKT the legacy coordinate system
// requires, and its components re-infer EPSG 32617.
func TestImportV1UTMZone17(t *testing.T) {
	m, err := Import(strings.NewReader(smXMLUTM17Fixture), ImportOptions{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}

	want := `PROJCS["UTM Zone 17, Northern Hemisphere", GEOGCS["WGS 84", DATUM["WGS_1984", SPHEROID["WGS 84",6378137,298.257223563], TOWGS84[0,0,0,0,0,0,0]], PRIMEM["Greenwich",0], UNIT["degree",0.017453292519943295]], PROJECTION["Transverse_Mercator"], PARAMETER["latitude_of_origin",0], PARAMETER["central_meridian",-81], PARAMETER["scale_factor",0.9996], PARAMETER["false_easting",500000], PARAMETER["false_northing",0], UNIT["metre",1]]`
	if m.HorizontalReferenceSystem.Definition != want {
		t.Errorf("horizontal WKT mismatch:\ngot:  %s\nwant: %s", m.HorizontalReferenceSystem.Definition, want)
	}

	vertWant := `VERT_CS["MLLW", VERT_DATUM["MLLW", 2000]]`
	if m.VerticalReferenceSystem.Definition != vertWant {
		t.Errorf("vertical WKT mismatch:\ngot:  %s\nwant: %s", m.VerticalReferenceSystem.Definition, vertWant)
	}

	back, err := wkt.WktToLegacy(m.HorizontalReferenceSystem.Definition, "")
	if err != nil {
		t.Fatalf("WktToLegacy: %v", err)
	}
	if got := wkt.InferEpsg(back.CoordSys, back.Datum, back.UTMZone, 0); got != 32617 {
		t.Errorf("InferEpsg = %d, want 32617", got)
	}

	if m.Identification.Title != "Test Legacy Survey" {
		t.Errorf("title = %q", m.Identification.Title)
	}
	if m.Identification.West != -82.0 || m.Identification.East != -80.0 {
		t.Errorf("bounding box = %+v", m.Identification)
	}
}
