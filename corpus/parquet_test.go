package corpus

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddParquetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.parquet")
	rows := []parquetDoc{
		{Text: "first document"},
		{Text: "second document"},
		{Text: ""}, // empty rows are dropped like any empty document
		{Text: "మూడవ పత్రం"},
	}
	require.NoError(t, parquet.WriteFile(path, rows))

	c := New()
	require.NoError(t, c.AddParquetFile(path))
	require.Equal(t, 3, c.Len())
	docs := c.Documents()
	assert.Equal(t, []byte("first document"), docs[0])
	assert.Equal(t, []byte("second document"), docs[1])
	assert.Equal(t, []byte("మూడవ పత్రం"), docs[2])
}

func TestAddParquetFileMissing(t *testing.T) {
	c := New()
	err := c.AddParquetFile(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
}
