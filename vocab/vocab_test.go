package vocab

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildDerivedTables checks the id→bytes and pair→token tables for a small
// merge table: (a,a)→256, (256,b)→257.
func TestBuildDerivedTables(t *testing.T) {
	v, err := Build([]MergeRule{
		{Pair: Pair{Left: 'a', Right: 'a'}, New: 256},
		{Pair: Pair{Left: 256, Right: 'b'}, New: 257},
	})
	require.NoError(t, err)

	assert.Equal(t, 258, v.Size())
	assert.Equal(t, 2, v.MergeCount())

	b, err := v.TokenBytes('a')
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), b)

	b, err = v.TokenBytes(256)
	require.NoError(t, err)
	assert.Equal(t, []byte("aa"), b)

	b, err = v.TokenBytes(257)
	require.NoError(t, err)
	assert.Equal(t, []byte("aab"), b)

	tok, ok := v.MergedToken(Pair{Left: 256, Right: 'b'})
	require.True(t, ok)
	assert.Equal(t, Token(257), tok)

	_, ok = v.MergedToken(Pair{Left: 'b', Right: 'a'})
	assert.False(t, ok)
}

func TestBuildRejectsWrongIDSequence(t *testing.T) {
	_, err := Build([]MergeRule{
		{Pair: Pair{Left: 'a', Right: 'a'}, New: 300},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assigns token 300")
}

func TestBuildRejectsForwardReference(t *testing.T) {
	// Rule 0 references token 257, which doesn't exist yet.
	_, err := Build([]MergeRule{
		{Pair: Pair{Left: 257, Right: 'a'}, New: 256},
	})
	require.Error(t, err)
}

func TestTokenBytesOutOfRange(t *testing.T) {
	v, err := Build(nil)
	require.NoError(t, err)
	assert.Equal(t, 256, v.Size())

	_, err = v.TokenBytes(256)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestFromPairsAssignsImplicitIDs(t *testing.T) {
	v, err := FromPairs([]Pair{
		{Left: 'x', Right: 'y'},
		{Left: 256, Right: 'z'},
	})
	require.NoError(t, err)

	merges := v.Merges()
	require.Len(t, merges, 2)
	assert.Equal(t, Token(256), merges[0].New)
	assert.Equal(t, Token(257), merges[1].New)

	b, err := v.TokenBytes(257)
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), b)
}

func TestPairLess(t *testing.T) {
	assert.True(t, Pair{Left: 1, Right: 9}.Less(Pair{Left: 2, Right: 0}))
	assert.True(t, Pair{Left: 1, Right: 2}.Less(Pair{Left: 1, Right: 3}))
	assert.False(t, Pair{Left: 1, Right: 3}.Less(Pair{Left: 1, Right: 3}))
}
