package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddKeepsDocumentsIndependent(t *testing.T) {
	c := New()
	c.AddString("hello")
	c.Add([]byte("world!"))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, int64(11), c.TotalBytes())
	docs := c.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, []byte("hello"), docs[0])
	assert.Equal(t, []byte("world!"), docs[1])
}

func TestAddDropsEmptyDocuments(t *testing.T) {
	c := New()
	c.Add(nil)
	c.AddString("")
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, int64(0), c.TotalBytes())
}

func TestAddCopiesInput(t *testing.T) {
	buf := []byte("abc")
	c := New()
	c.Add(buf)
	buf[0] = 'z'
	assert.Equal(t, []byte("abc"), c.Documents()[0])
}

func TestAddFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	require.NoError(t, os.WriteFile(path, []byte("some corpus text"), 0o644))

	c := New()
	require.NoError(t, c.AddFile(path))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []byte("some corpus text"), c.Documents()[0])
}

func TestAddFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	c := New()
	require.NoError(t, c.AddFile(path))
	assert.Equal(t, 0, c.Len())
}

func TestAddFileMissing(t *testing.T) {
	c := New()
	err := c.AddFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
}

func TestSplitterBlankLines(t *testing.T) {
	s, err := NewSplitter(BlankLinePattern)
	require.NoError(t, err)

	c := New()
	require.NoError(t, s.Split(c, "first article\nstill first\n\nsecond article\n\n\nthird"))
	require.Equal(t, 3, c.Len())
	docs := c.Documents()
	assert.Equal(t, []byte("first article\nstill first"), docs[0])
	assert.Equal(t, []byte("second article"), docs[1])
	assert.Equal(t, []byte("third"), docs[2])
}

func TestSplitterNoBoundary(t *testing.T) {
	s, err := NewSplitter(BlankLinePattern)
	require.NoError(t, err)

	c := New()
	require.NoError(t, s.Split(c, "one single document"))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, []byte("one single document"), c.Documents()[0])
}

func TestSplitterUnicodeOffsets(t *testing.T) {
	s, err := NewSplitter(BlankLinePattern)
	require.NoError(t, err)

	c := New()
	require.NoError(t, s.Split(c, "తెలుగు\n\nభాష"))
	require.Equal(t, 2, c.Len())
	docs := c.Documents()
	assert.Equal(t, []byte("తెలుగు"), docs[0])
	assert.Equal(t, []byte("భాష"), docs[1])
}

func TestSplitterBadPattern(t *testing.T) {
	_, err := NewSplitter("(unclosed")
	require.Error(t, err)
}
