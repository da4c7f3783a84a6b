package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/shopsavvy/internal"
)

// JSONExporter writes all records as one pretty-printed array
type JSONExporter struct{}

// Export exports records to JSON format
func (e *JSONExporter) Export(records []*internal.InsightRecord, w io.Writer) error {
	if records == nil {
		records = []*internal.InsightRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
