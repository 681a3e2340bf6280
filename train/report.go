package train

import (
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/tokenlab/go-bpe/vocab"
)

// Report is the queryable outcome of a training run, for consumers such as a
// metrics page or CLI. The core never prints it.
type Report struct {
	// RunID uniquely identifies this training run.
	RunID string
	// RequestedVocabSize is the target the caller asked for.
	RequestedVocabSize int
	// VocabSize is the size actually achieved; smaller than requested when
	// mergeable pairs ran out or training was cancelled.
	VocabSize int
	// MergeCount is the number of learned merges (VocabSize - 256).
	MergeCount int
	// OriginalBytes is the byte length of the training corpus.
	OriginalBytes int64
	// EncodedTokens is the token count of the corpus after all merges.
	EncodedTokens int64

	tokenLengths []float64 // byte lengths of learned tokens, sorted
}

func newReport(requested int, v *vocab.Vocabulary, originalBytes, encodedTokens int64) *Report {
	lengths := make([]float64, 0, v.MergeCount())
	for _, rule := range v.Merges() {
		b, err := v.TokenBytes(rule.New)
		if err != nil {
			continue // unreachable: the rule came from the vocabulary itself
		}
		lengths = append(lengths, float64(len(b)))
	}
	sort.Float64s(lengths)
	return &Report{
		RunID:              uuid.NewString(),
		RequestedVocabSize: requested,
		VocabSize:          v.Size(),
		MergeCount:         v.MergeCount(),
		OriginalBytes:      originalBytes,
		EncodedTokens:      encodedTokens,
		tokenLengths:       lengths,
	}
}

// CompressionRatio returns OriginalBytes divided by EncodedTokens, or 0 when
// nothing was encoded.
func (r *Report) CompressionRatio() float64 {
	if r.EncodedTokens == 0 {
		return 0
	}
	return float64(r.OriginalBytes) / float64(r.EncodedTokens)
}

// Shortfall returns how many tokens short of the requested size the run ended.
func (r *Report) Shortfall() int {
	if d := r.RequestedVocabSize - r.VocabSize; d > 0 {
		return d
	}
	return 0
}

// TokenLengthStats summarizes the byte lengths of learned tokens.
type TokenLengthStats struct {
	Mean   float64
	Median float64
	P90    float64
	Max    float64
}

// TokenLengthStats returns length statistics over the learned tokens, or the
// zero value when no merges were learned.
func (r *Report) TokenLengthStats() TokenLengthStats {
	if len(r.tokenLengths) == 0 {
		return TokenLengthStats{}
	}
	return TokenLengthStats{
		Mean:   stat.Mean(r.tokenLengths, nil),
		Median: stat.Quantile(0.5, stat.Empirical, r.tokenLengths, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, r.tokenLengths, nil),
		Max:    r.tokenLengths[len(r.tokenLengths)-1],
	}
}
