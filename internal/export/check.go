package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/exambank/backend/internal/models"
)

// Check re-opens a built package and sanity-checks it against the source
// collection before the bytes are handed back. Well-formedness failures are
// fatal; everything else is advisory: the caller may still emit the package
// with warnings.
func Check(built []byte, format models.ExportFormat, source models.Collection) []models.ExportIssue {
	switch format {
	case models.FormatQTI:
		return checkQTI(built, source)
	case models.FormatCSV:
		return checkCSV(built, source)
	default:
		return []models.ExportIssue{{
			Severity: models.SeverityFatal,
			Message:  fmt.Sprintf("unknown export format %q", format),
		}}
	}
}

// HasFatal reports whether any issue in the list is fatal.
func HasFatal(issues []models.ExportIssue) bool {
	for _, issue := range issues {
		if issue.Severity == models.SeverityFatal {
			return true
		}
	}
	return false
}

func checkQTI(built []byte, source models.Collection) []models.ExportIssue {
	var issues []models.ExportIssue
	fatal := func(format string, args ...interface{}) []models.ExportIssue {
		return append(issues, models.ExportIssue{
			Severity: models.SeverityFatal,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	advisory := func(qid, format string, args ...interface{}) {
		issues = append(issues, models.ExportIssue{
			Severity:   models.SeverityAdvisory,
			QuestionID: qid,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	zr, err := zip.NewReader(bytes.NewReader(built), int64(len(built)))
	if err != nil {
		return fatal("archive cannot be opened: %v", err)
	}

	assessmentBody, err := readArchiveFile(zr, AssessmentFileName)
	if err != nil {
		return fatal("%v", err)
	}
	var doc Questestinterop
	if err := xml.Unmarshal(assessmentBody, &doc); err != nil {
		return fatal("assessment document is not well-formed XML: %v", err)
	}

	manifestBody, err := readArchiveFile(zr, ManifestFileName)
	if err != nil {
		return fatal("%v", err)
	}
	var manifest Manifest
	if err := xml.Unmarshal(manifestBody, &manifest); err != nil {
		return fatal("manifest is not well-formed XML: %v", err)
	}

	items := make(map[string]Item, len(doc.Assessment.Section.Items))
	for _, item := range doc.Assessment.Section.Items {
		items[item.Ident] = item
	}
	manifestIdents := make(map[string]bool, len(manifest.Resources.Resources))
	for _, res := range manifest.Resources.Resources {
		manifestIdents[res.Identifier] = true
	}

	for _, q := range source.Questions {
		item, ok := items[q.ID]
		if !ok {
			advisory(q.ID, "no assessment item for question")
			continue
		}
		if !manifestIdents[q.ID] {
			advisory(q.ID, "assessment item not declared in manifest")
		}

		if q.Type == models.TypeMultipleChoice || q.Type == models.TypeTrueFalse {
			if n := countCorrectMarkers(item); n != 1 {
				advisory(q.ID, "expected exactly one correct-response marker, found %d", n)
			}
		}
	}

	return issues
}

func countCorrectMarkers(item Item) int {
	if item.Resprocessing == nil {
		return 0
	}
	n := 0
	for _, cond := range item.Resprocessing.Conditions {
		if cond.ConditionVar.VarEqual != nil && cond.ConditionVar.VarEqual.Value != "" {
			n++
		}
	}
	return n
}

func readArchiveFile(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("archive is missing %s: %w", name, err)
	}
	defer f.Close()
	body, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return body, nil
}

func checkCSV(built []byte, source models.Collection) []models.ExportIssue {
	rows, err := ParseTabular(built)
	if err != nil {
		return []models.ExportIssue{{
			Severity: models.SeverityFatal,
			Message:  err.Error(),
		}}
	}

	var issues []models.ExportIssue
	if len(rows) != len(source.Questions) {
		issues = append(issues, models.ExportIssue{
			Severity: models.SeverityAdvisory,
			Message:  fmt.Sprintf("row count %d does not match question count %d", len(rows), len(source.Questions)),
		})
	}
	for i, row := range rows {
		if row.ID == "" {
			issues = append(issues, models.ExportIssue{
				Severity: models.SeverityAdvisory,
				Message:  fmt.Sprintf("row %d is missing its id column", i+1),
			})
		}
	}
	return issues
}
