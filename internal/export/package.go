package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"

	"github.com/exambank/backend/internal/models"
)

// Build serializes a collection into the requested target format and returns
// the raw bytes. File naming and disk writes are the caller's concern. The
// QTI path is all-or-nothing: a manifest referencing a missing item would
// itself be invalid, so any per-question failure aborts the whole package
// with the offending question id attached.
func Build(col models.Collection, format models.ExportFormat) ([]byte, error) {
	switch format {
	case models.FormatQTI:
		return buildQTI(col)
	case models.FormatCSV:
		return buildCSV(col)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func buildQTI(col models.Collection) ([]byte, error) {
	title := col.Metadata.Subject
	if title == "" {
		title = "Question Bank Export"
	}

	doc := Questestinterop{Assessment: Assessment{
		Ident:   "assessment_" + uuid.NewString(),
		Title:   title,
		Section: Section{Ident: "root_section"},
	}}

	itemIdents := make([]string, 0, len(col.Questions))
	for _, q := range col.Questions {
		transformed, err := transformProse(q)
		if err != nil {
			return nil, err
		}
		item, err := renderItem(transformed)
		if err != nil {
			return nil, err
		}
		doc.Assessment.Section.Items = append(doc.Assessment.Section.Items, item)
		itemIdents = append(itemIdents, item.Ident)
	}

	assessmentXML, err := marshalDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("render assessment: %w", err)
	}
	manifestXML, err := marshalDocument(buildManifest(doc.Assessment.Ident, itemIdents))
	if err != nil {
		return nil, fmt.Errorf("render manifest: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct {
		name string
		body []byte
	}{
		{ManifestFileName, manifestXML},
		{AssessmentFileName, assessmentXML},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("create %s in archive: %w", f.name, err)
		}
		if _, err := w.Write(f.body); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func marshalDocument(doc interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
