package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/shopsavvy/internal"
)

// JSONLExporter writes one flattened record per line
type JSONLExporter struct{}

// Export exports records to JSONL format
func (e *JSONLExporter) Export(records []*internal.InsightRecord, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, rec := range records {
		obj := map[string]interface{}{
			"id":          rec.ID,
			"budget":      rec.Request.Budget,
			"preferences": rec.Request.Preferences,
			"response":    rec.Response,
		}
		if !rec.CreatedAt.IsZero() {
			obj["created_at"] = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		for k, v := range rec.Insights.Fields() {
			obj[k] = v
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", rec.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
