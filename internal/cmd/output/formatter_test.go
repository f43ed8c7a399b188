package output_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucab3/ml-tn-sync/internal/cmd/output"
)

type row struct {
	SKU   string  `json:"sku"`
	Price float64 `json:"new_price"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    output.Format
		wantErr bool
	}{
		{"table", output.FormatTable, false},
		{"JSON", output.FormatJSON, false},
		{"yaml", output.FormatYAML, false},
		{"", output.Format(""), false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := output.ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatJSON)
	require.NoError(t, f.Format(&buf, row{SKU: "MATE-1", Price: 100}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "MATE-1", decoded["sku"])
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatYAML)
	require.NoError(t, f.Format(&buf, row{SKU: "MATE-1", Price: 100}))

	assert.Contains(t, buf.String(), "sku: MATE-1")
}

func TestTableFormatterStructSlice(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatTable)
	require.NoError(t, f.Format(&buf, []row{
		{SKU: "MATE-1", Price: 100},
		{SKU: "BOM-1", Price: 50},
	}))

	out := strings.ToUpper(buf.String())
	// Headers are derived from json tags.
	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "NEW PRICE")
	assert.Contains(t, out, "MATE-1")
	assert.Contains(t, out, "BOM-1")
}

func TestTableFormatterData(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatTable)
	require.NoError(t, f.Format(&buf, output.Data{
		Headers: []string{"SKU", "DELTA"},
		Rows:    [][]string{{"MATE-1", "0.13"}},
	}))

	out := buf.String()
	assert.Contains(t, out, "SKU")
	assert.Contains(t, out, "MATE-1")
}

func TestTableFormatterFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	f := output.NewFormatter(output.FormatTable)
	require.NoError(t, f.Format(&buf, map[string]int{"updated": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["updated"])
}
