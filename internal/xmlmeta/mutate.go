package xmlmeta

import "github.com/beevik/etree"

// Setter operations (spec §4.3 "Mutators"): each takes a typed sub-record
// plus a mutable XML document produced by Export, and either replaces the
// corresponding subtree in place (preserving its position among siblings)
// or appends it when absent. They fail with ErrNodeNotFound when the
// document has no gmi:MI_Metadata root at all — setters mutate an already
// exported document, they don't build one from scratch (that's Export's
// job).

// SetIdentification replaces doc's gmd:identificationInfo subtree with
// id's exported form.
func SetIdentification(doc *etree.Document, id Identification) error {
	root, err := metadataRoot(doc)
	if err != nil {
		return err
	}
	replaceOrAppend(root, "gmd:identificationInfo", func(el *etree.Element) {
		exportIdentification(el, id)
	})
	return nil
}

// SetSpatial replaces doc's gmd:spatialRepresentationInfo subtree with
// sp's exported form.
func SetSpatial(doc *etree.Document, sp Spatial) error {
	root, err := metadataRoot(doc)
	if err != nil {
		return err
	}
	replaceOrAppend(root, "gmd:spatialRepresentationInfo", func(el *etree.Element) {
		exportSpatial(el, sp)
	})
	return nil
}

// SetDataQuality replaces doc's gmd:dataQualityInfo subtree with dq's
// exported form.
func SetDataQuality(doc *etree.Document, dq DataQuality) error {
	root, err := metadataRoot(doc)
	if err != nil {
		return err
	}
	replaceOrAppend(root, "gmd:dataQualityInfo", func(el *etree.Element) {
		exportDataQuality(el, dq)
	})
	return nil
}

// SetHorizontalReferenceSystem replaces the first of doc's two
// gmd:referenceSystemInfo subtrees (Export's fixed order writes horizontal
// before vertical, spec §4.3 "deterministic element order").
func SetHorizontalReferenceSystem(doc *etree.Document, rs ReferenceSystem) error {
	return setReferenceSystemAt(doc, 0, rs)
}

// SetVerticalReferenceSystem replaces the second of doc's two
// gmd:referenceSystemInfo subtrees.
func SetVerticalReferenceSystem(doc *etree.Document, rs ReferenceSystem) error {
	return setReferenceSystemAt(doc, 1, rs)
}

func setReferenceSystemAt(doc *etree.Document, index int, rs ReferenceSystem) error {
	root, err := metadataRoot(doc)
	if err != nil {
		return err
	}
	elems := root.SelectElements("gmd:referenceSystemInfo")
	if index < len(elems) {
		old := elems[index]
		newEl := etree.NewElement("gmd:referenceSystemInfo")
		exportReferenceSystem(newEl, rs)
		root.InsertChild(old, newEl)
		root.RemoveChild(old)
		return nil
	}
	exportReferenceSystem(root.CreateElement("gmd:referenceSystemInfo"), rs)
	return nil
}

func metadataRoot(doc *etree.Document) (*etree.Element, error) {
	root := doc.SelectElement("gmi:MI_Metadata")
	if root == nil {
		return nil, &ErrNodeNotFound{XPath: "gmi:MI_Metadata"}
	}
	return root, nil
}

// replaceOrAppend removes root's existing child named tag (if any) and
// creates a fresh one in its place, populated by build; it appends at the
// end when tag is absent.
func replaceOrAppend(root *etree.Element, tag string, build func(*etree.Element)) {
	if old := root.SelectElement(tag); old != nil {
		newEl := etree.NewElement(tag)
		build(newEl)
		root.InsertChild(old, newEl)
		root.RemoveChild(old)
		return
	}
	build(root.CreateElement(tag))
}
