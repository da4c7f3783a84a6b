package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewExporter_WritesEachFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		check   func(t *testing.T, out []byte)
	}{
		{
			format:  "jsonl",
			wantExt: "jsonl",
			check: func(t *testing.T, out []byte) {
				scanner := bufio.NewScanner(bytes.NewReader(out))
				lines := 0
				for scanner.Scan() {
					lines++
					var rec map[string]interface{}
					require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
					assert.Equal(t, 7.0, rec["id"])
					assert.Equal(t, 50.0, rec["budget"])
				}
				assert.Equal(t, 1, lines, "one line per record")
			},
		},
		{
			format:  "json",
			wantExt: "json",
			check: func(t *testing.T, out []byte) {
				require.True(t, json.Valid(out))
				var recs []internal.InsightRecord
				require.NoError(t, json.Unmarshal(out, &recs))
				require.Len(t, recs, 1)
				assert.Equal(t, "Kindle case", recs[0].Insights.GiftSuggestion)
			},
		},
		{
			format:  "yaml",
			wantExt: "yaml",
			check: func(t *testing.T, out []byte) {
				var recs []map[string]interface{}
				require.NoError(t, yaml.Unmarshal(out, &recs))
				require.Len(t, recs, 1)
				assert.Contains(t, recs[0], "response")
			},
		},
		{
			format:  "md",
			wantExt: "md",
			check: func(t *testing.T, out []byte) {
				assert.True(t, bytes.HasPrefix(out, []byte("# Shopping Insights\n")))
				assert.Contains(t, string(out), "## Insight 7")
				assert.Contains(t, string(out), "| Gift suggestions | Kindle case |")
			},
		},
		{
			format:  "markdown",
			wantExt: "md",
			check: func(t *testing.T, out []byte) {
				assert.True(t, bytes.HasPrefix(out, []byte("# Shopping Insights\n")))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, exporter.Extension())

			var buf bytes.Buffer
			require.NoError(t, exporter.Export([]*internal.InsightRecord{internal.CreateTestInsightRecord(7)}, &buf))
			require.NotEmpty(t, buf.Bytes())
			tt.check(t, buf.Bytes())
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"xml", "csv", ""} {
		exporter, err := NewExporter(format)
		require.Error(t, err, "format %q", format)
		assert.Nil(t, exporter)
		assert.Contains(t, err.Error(), "supported: jsonl, md, yaml, json")
	}
}
