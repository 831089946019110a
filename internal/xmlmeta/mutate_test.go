package xmlmeta

import (
	"bytes"
	"testing"

	"github.com/beevik/etree"
)

func exportDoc(t *testing.T, m *Metadata) *etree.Document {
	t.Helper()
	xmlBytes, err := Export(m)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlBytes); err != nil {
		t.Fatalf("parse exported doc: %v", err)
	}
	return doc
}

func reimport(t *testing.T, doc *etree.Document) *Metadata {
	t.Helper()
	buf, err := doc.WriteToBytes()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	m, err := Import(bytes.NewReader(buf), ImportOptions{})
	if err != nil {
		t.Fatalf("reimport: %v", err)
	}
	return m
}

func TestSetIdentificationReplacesInPlace(t *testing.T) {
	m := sampleMetadata()
	doc := exportDoc(t, m)

	before := len(doc.Root().ChildElements())

	newID := m.Identification
	newID.Title = "Replaced Title"
	newID.Abstract = "Replaced abstract."
	if err := SetIdentification(doc, newID); err != nil {
		t.Fatalf("setIdentification: %v", err)
	}

	after := len(doc.Root().ChildElements())
	if before != after {
		t.Fatalf("child count changed: before=%d after=%d (expected replace-in-place)", before, after)
	}

	got := reimport(t, doc)
	if got.Identification.Title != "Replaced Title" {
		t.Errorf("Title = %q, want %q", got.Identification.Title, "Replaced Title")
	}
	if got.Identification.Abstract != "Replaced abstract." {
		t.Errorf("Abstract = %q, want %q", got.Identification.Abstract, "Replaced abstract.")
	}
}

func TestSetSpatialReplacesInPlace(t *testing.T) {
	m := sampleMetadata()
	doc := exportDoc(t, m)

	newSpatial := m.Spatial
	newSpatial.Rows = 250
	newSpatial.Cols = 300
	if err := SetSpatial(doc, newSpatial); err != nil {
		t.Fatalf("setSpatial: %v", err)
	}

	got := reimport(t, doc)
	if got.Spatial.Rows != 250 || got.Spatial.Cols != 300 {
		t.Fatalf("Spatial = %+v, want Rows=250 Cols=300", got.Spatial)
	}
}

func TestSetHorizontalAndVerticalReferenceSystemIndependently(t *testing.T) {
	m := sampleMetadata()
	doc := exportDoc(t, m)

	newHoriz := ReferenceSystem{Type: "WKT", Definition: `GEOGCS["NAD83"]`}
	if err := SetHorizontalReferenceSystem(doc, newHoriz); err != nil {
		t.Fatalf("setHorizontal: %v", err)
	}

	got := reimport(t, doc)
	if got.HorizontalReferenceSystem.Definition != newHoriz.Definition {
		t.Fatalf("horizontal = %q, want %q", got.HorizontalReferenceSystem.Definition, newHoriz.Definition)
	}
	if got.VerticalReferenceSystem.Definition != m.VerticalReferenceSystem.Definition {
		t.Fatalf("vertical changed unexpectedly: got %q, want %q", got.VerticalReferenceSystem.Definition, m.VerticalReferenceSystem.Definition)
	}

	newVert := ReferenceSystem{Type: "WKT", Definition: `VERT_CS["NAVD88"]`}
	if err := SetVerticalReferenceSystem(doc, newVert); err != nil {
		t.Fatalf("setVertical: %v", err)
	}
	got = reimport(t, doc)
	if got.VerticalReferenceSystem.Definition != newVert.Definition {
		t.Fatalf("vertical = %q, want %q", got.VerticalReferenceSystem.Definition, newVert.Definition)
	}
	if got.HorizontalReferenceSystem.Definition != newHoriz.Definition {
		t.Fatalf("horizontal changed unexpectedly: got %q, want %q", got.HorizontalReferenceSystem.Definition, newHoriz.Definition)
	}
}

func TestSetDataQualityAppendsWhenAbsent(t *testing.T) {
	m := sampleMetadata()
	m.DataQuality = DataQuality{}
	doc := exportDoc(t, m)

	// Export always emits a gmd:dataQualityInfo subtree (even with an
	// empty scope), so this exercises the replace path, not append; the
	// append path is exercised by constructing a document with the
	// subtree removed outright.
	root := doc.SelectElement("gmi:MI_Metadata")
	if el := root.SelectElement("gmd:dataQualityInfo"); el != nil {
		root.RemoveChild(el)
	}

	dq := DataQuality{Scope: "dataset"}
	if err := SetDataQuality(doc, dq); err != nil {
		t.Fatalf("setDataQuality: %v", err)
	}
	got := reimport(t, doc)
	if got.DataQuality.Scope != "dataset" {
		t.Fatalf("Scope = %q, want %q", got.DataQuality.Scope, "dataset")
	}
}

func TestSetterNodeNotFoundOnBareDocument(t *testing.T) {
	doc := etree.NewDocument()
	doc.CreateElement("not-a-bag-document")

	err := SetIdentification(doc, Identification{})
	if err == nil {
		t.Fatal("expected ErrNodeNotFound, got nil")
	}
	if _, ok := err.(*ErrNodeNotFound); !ok {
		t.Fatalf("err = %T, want *ErrNodeNotFound", err)
	}
}
