package export

import (
	"encoding/xml"

	"github.com/google/uuid"
)

// File names inside the built archive.
const (
	AssessmentFileName = "assessment.xml"
	ManifestFileName   = "imsmanifest.xml"
)

const qtiResourceType = "imsqti_xmlv1p2"

// ── IMS content-package manifest ───────────────────────

type Manifest struct {
	XMLName       xml.Name         `xml:"manifest"`
	Identifier    string           `xml:"identifier,attr"`
	Xmlns         string           `xml:"xmlns,attr"`
	Metadata      ManifestMetadata `xml:"metadata"`
	Organizations struct{}         `xml:"organizations"`
	Resources     Resources        `xml:"resources"`
}

type ManifestMetadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type Resources struct {
	Resources []Resource `xml:"resource"`
}

type Resource struct {
	Identifier string         `xml:"identifier,attr"`
	Type       string         `xml:"type,attr"`
	Href       string         `xml:"href,attr,omitempty"`
	Files      []ResourceFile `xml:"file"`
}

type ResourceFile struct {
	Href string `xml:"href,attr"`
}

// buildManifest declares the archive's resource structure: the assessment
// document itself plus one resource entry per item so an importer (or the
// export checker) can account for every question by id.
func buildManifest(assessmentIdent string, itemIdents []string) Manifest {
	m := Manifest{
		Identifier: "man_" + uuid.NewString(),
		Xmlns:      "http://www.imsglobal.org/xsd/imscp_v1p1",
		Metadata: ManifestMetadata{
			Schema:        "IMS Content",
			SchemaVersion: "1.1.3",
		},
	}

	m.Resources.Resources = append(m.Resources.Resources, Resource{
		Identifier: assessmentIdent,
		Type:       qtiResourceType,
		Href:       AssessmentFileName,
		Files:      []ResourceFile{{Href: AssessmentFileName}},
	})
	for _, ident := range itemIdents {
		m.Resources.Resources = append(m.Resources.Resources, Resource{
			Identifier: ident,
			Type:       qtiResourceType,
			Href:       AssessmentFileName,
		})
	}
	return m
}
