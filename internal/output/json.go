package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter emits the report as one indented JSON document. Rendered
// changelog HTML is written unescaped so it can be embedded as-is.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, report *Report) error {
	if report.GeneratedAt.IsZero() {
		report.GeneratedAt = report.now()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding %s report: %w", report.Kind, err)
	}
	return nil
}
