package export

import (
	"io"

	"github.com/iksnae/shopsavvy/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports records as a YAML sequence
type YAMLExporter struct{}

// Export exports records to YAML format
func (e *YAMLExporter) Export(records []*internal.InsightRecord, w io.Writer) error {
	if records == nil {
		records = []*internal.InsightRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(records)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}
