package train

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenlab/go-bpe/vocab"
)

// A full-corpus run's numbers: 2871488 bytes into 243272 tokens is 11.80x.
func TestCompressionRatioRounding(t *testing.T) {
	v, err := vocab.Build(nil)
	require.NoError(t, err)

	r := newReport(5500, v, 2871488, 243272)
	assert.InDelta(t, 11.80, r.CompressionRatio(), 0.005)
}

func TestCompressionRatioEmpty(t *testing.T) {
	v, err := vocab.Build(nil)
	require.NoError(t, err)

	r := newReport(300, v, 0, 0)
	assert.Equal(t, float64(0), r.CompressionRatio())
}

func TestTokenLengthStats(t *testing.T) {
	// Learned tokens: "aa" (2 bytes), "aaa" (3), "aaaaaa" (6).
	v, err := vocab.FromPairs([]vocab.Pair{
		{Left: 'a', Right: 'a'},
		{Left: 256, Right: 'a'},
		{Left: 257, Right: 257},
	})
	require.NoError(t, err)

	r := newReport(259, v, 100, 20)
	ls := r.TokenLengthStats()
	assert.InDelta(t, (2.0+3.0+6.0)/3.0, ls.Mean, 1e-9)
	assert.Equal(t, float64(6), ls.Max)
	assert.GreaterOrEqual(t, ls.P90, ls.Median)
}

func TestTokenLengthStatsNoMerges(t *testing.T) {
	_, r, err := Train(context.Background(), corpusOf("abc"), 257)
	require.NoError(t, err)
	assert.Equal(t, TokenLengthStats{}, r.TokenLengthStats())
}
