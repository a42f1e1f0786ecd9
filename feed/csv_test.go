package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `date,cmBTC,cmUSD,cmBRL
2024-01-01,450,1600,2200
2024-01-02,460,1580,2250
2024-01-03,440,1620,2180
`

func TestReadCSV(t *testing.T) {
	series, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, series.Len())
	assert.Equal(t, []string{"cmBRL", "cmBTC", "cmUSD"}, series.Assets())

	column, err := series.Column(core.AssetBTC)
	require.NoError(t, err)
	assert.Equal(t, []float64{450, 460, 440}, column)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"header only", "date,cmBTC\n"},
		{"missing asset columns", "date\n2024-01-01\n"},
		{"duplicate asset column", "date,cmBTC,cmBTC\n2024-01-01,450,460\n"},
		{"ragged row", "date,cmBTC\n2024-01-01,450,999\n"},
		{"bad date", "date,cmBTC\nyesterday,450\n"},
		{"bad number", "date,cmBTC\n2024-01-01,abc\n"},
		{"duplicate date", "date,cmBTC\n2024-01-01,450\n2024-01-01,460\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "yields.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	series, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
