package collection

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/sjson"

	"github.com/exambank/backend/internal/models"
)

// CurrentFormatVersion is stamped onto collections written without one.
const CurrentFormatVersion = "1.0"

// Marshal serializes a collection back to the portable JSON format. Missing
// format_version and created_date metadata are stamped so a merged output is
// always a self-describing input for the next run.
func Marshal(col models.Collection) ([]byte, error) {
	out, err := json.Marshal(col)
	if err != nil {
		return nil, fmt.Errorf("marshal collection: %w", err)
	}

	if col.Metadata.FormatVersion == "" {
		out, err = sjson.SetBytes(out, "metadata.format_version", CurrentFormatVersion)
		if err != nil {
			return nil, fmt.Errorf("stamp format_version: %w", err)
		}
	}
	if col.Metadata.CreatedDate == "" {
		out, err = sjson.SetBytes(out, "metadata.created_date", time.Now().UTC().Format("2006-01-02"))
		if err != nil {
			return nil, fmt.Errorf("stamp created_date: %w", err)
		}
	}
	return out, nil
}
