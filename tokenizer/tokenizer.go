// Package tokenizer converts between raw bytes and token ids using a trained
// byte-pair Vocabulary. Encoding replays the vocabulary's merges in the order
// they were learned, so encoding a training document reproduces exactly the
// token sequence the trainer ended with for that document.
package tokenizer

import (
	"github.com/pkg/errors"

	"github.com/tokenlab/go-bpe/vocab"
)

// Codec converts between byte sequences and token id sequences.
type Codec interface {
	Encode(data []byte) []vocab.Token
	Decode(ids []vocab.Token) ([]byte, error)
}

// BPE encodes and decodes with a trained Vocabulary. It holds no mutable
// state and is safe for concurrent use across goroutines.
type BPE struct {
	vocab *vocab.Vocabulary
}

// Compile time assert that BPE implements Codec.
var _ Codec = &BPE{}

// New returns a codec over the given vocabulary.
func New(v *vocab.Vocabulary) *BPE {
	return &BPE{vocab: v}
}

// Encode maps data to token ids. It starts with one token per byte, then
// repeatedly picks, among the adjacent pairs currently present, the merge
// learned earliest (smallest assigned token id) and replaces its occurrences
// left to right without overlap, until no present pair is in the merge table.
// Every byte value is a base token, so there is no unknown-input case; empty
// input encodes to an empty sequence.
func (b *BPE) Encode(data []byte) []vocab.Token {
	seq := make([]vocab.Token, len(data))
	for i, c := range data {
		seq[i] = vocab.Token(c)
	}
	for len(seq) >= 2 {
		var best vocab.Pair
		var bestTok vocab.Token
		found := false
		for i := 0; i+1 < len(seq); i++ {
			p := vocab.Pair{Left: seq[i], Right: seq[i+1]}
			tok, ok := b.vocab.MergedToken(p)
			if ok && (!found || tok < bestTok) {
				best, bestTok = p, tok
				found = true
			}
		}
		if !found {
			break
		}
		seq = replaceAll(seq, best, bestTok)
	}
	return seq
}

// EncodeString encodes the UTF-8 bytes of s.
func (b *BPE) EncodeString(s string) []vocab.Token {
	return b.Encode([]byte(s))
}

// replaceAll rewrites seq in place, replacing pair with tok left to right,
// non-overlapping. The write position never passes the read position.
func replaceAll(seq []vocab.Token, pair vocab.Pair, tok vocab.Token) []vocab.Token {
	n := len(seq)
	w := 0
	for i := 0; i < n; {
		if i+1 < n && seq[i] == pair.Left && seq[i+1] == pair.Right {
			seq[w] = tok
			i += 2
		} else {
			seq[w] = seq[i]
			i++
		}
		w++
	}
	return seq[:w]
}

// Decode maps ids back to the exact bytes they encode, failing on the first
// id outside the vocabulary range. decode(encode(x)) == x for any x.
func (b *BPE) Decode(ids []vocab.Token) ([]byte, error) {
	out := make([]byte, 0, len(ids))
	for i, id := range ids {
		bs, err := b.vocab.TokenBytes(id)
		if err != nil {
			return nil, errors.WithMessagef(err, "decoding token %d of %d", i, len(ids))
		}
		out = append(out, bs...)
	}
	return out, nil
}

// DecodeString decodes ids and returns the bytes as a string.
func (b *BPE) DecodeString(ids []vocab.Token) (string, error) {
	bs, err := b.Decode(ids)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// CompressionRatio encodes data and returns original byte count divided by
// encoded token count, or 0 for empty input.
func (b *BPE) CompressionRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	return float64(len(data)) / float64(len(b.Encode(data)))
}
