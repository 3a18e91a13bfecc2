package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")

	err := WriteCSV(path,
		[]string{"Number", "Total"},
		[][]string{
			{"FAC-000001", "S/ 118.00"},
			{"FAC-000002", "S/ 59.00"},
		},
		true)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, utf8BOM, data[:3])
	assert.Equal(t,
		"Number;Total\nFAC-000001;S/ 118.00\nFAC-000002;S/ 59.00\n",
		string(data[3:]))
}

func TestWriteCSVWithoutBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	require.NoError(t, WriteCSV(path, []string{"A"}, [][]string{{"1"}}, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(data))
}
