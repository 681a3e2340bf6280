// Package vocab defines the byte-pair vocabulary: the fixed 256 base byte tokens,
// the ordered table of learned merges, and the lookup tables derived from them.
package vocab

import "github.com/pkg/errors"

// BaseSize is the number of fixed byte tokens. Learned tokens start at BaseSize,
// numbered in the order their merge was learned.
const BaseSize = 256

// Token identifies a byte (ids 0-255) or a learned multi-byte unit (ids 256+).
type Token uint32

// Pair is an adjacent (left, right) token pair.
type Pair struct {
	Left  Token
	Right Token
}

// Less orders pairs lexicographically by (Left, Right) token id.
func (p Pair) Less(q Pair) bool {
	if p.Left != q.Left {
		return p.Left < q.Left
	}
	return p.Right < q.Right
}

// MergeRule records that Pair was replaced by New. The k-th learned rule always
// has New == BaseSize+k.
type MergeRule struct {
	Pair
	New Token
}

// ErrInvalidToken is returned when a token id is outside the vocabulary range.
var ErrInvalidToken = errors.New("token id outside vocabulary range")

// Vocabulary is the immutable training artifact: the base byte tokens, the merge
// table in learned order, and the derived pair→token and id→bytes tables.
// It is safe for concurrent use.
type Vocabulary struct {
	merges     []MergeRule
	byPair     map[Pair]Token
	tokenBytes [][]byte // indexed by token id
}

// Build constructs a Vocabulary from a merge table. The k-th rule must assign
// token BaseSize+k and may only reference lower token ids; this guarantees no
// forward references, so each rule's byte sequence resolves in one pass.
func Build(merges []MergeRule) (*Vocabulary, error) {
	v := &Vocabulary{
		merges:     append([]MergeRule(nil), merges...),
		byPair:     make(map[Pair]Token, len(merges)),
		tokenBytes: make([][]byte, BaseSize, BaseSize+len(merges)),
	}
	for i := 0; i < BaseSize; i++ {
		v.tokenBytes[i] = []byte{byte(i)}
	}
	for k, rule := range v.merges {
		want := Token(BaseSize + k)
		if rule.New != want {
			return nil, errors.Errorf("merge %d assigns token %d, want %d", k, rule.New, want)
		}
		if rule.Left >= want || rule.Right >= want {
			return nil, errors.Errorf("merge %d references pair (%d,%d) before both tokens exist", k, rule.Left, rule.Right)
		}
		left, right := v.tokenBytes[rule.Left], v.tokenBytes[rule.Right]
		merged := make([]byte, 0, len(left)+len(right))
		merged = append(append(merged, left...), right...)
		v.tokenBytes = append(v.tokenBytes, merged)
		v.byPair[rule.Pair] = rule.New
	}
	return v, nil
}

// FromPairs builds a Vocabulary from pairs in learned order, assigning the
// implicit ids BaseSize, BaseSize+1, ... — the shape of the persisted format.
func FromPairs(pairs []Pair) (*Vocabulary, error) {
	merges := make([]MergeRule, len(pairs))
	for k, p := range pairs {
		merges[k] = MergeRule{Pair: p, New: Token(BaseSize + k)}
	}
	return Build(merges)
}

// Size returns the total number of tokens, base plus learned.
func (v *Vocabulary) Size() int {
	return len(v.tokenBytes)
}

// MergeCount returns the number of learned merges.
func (v *Vocabulary) MergeCount() int {
	return len(v.merges)
}

// Merges returns a copy of the merge table in learned order.
func (v *Vocabulary) Merges() []MergeRule {
	return append([]MergeRule(nil), v.merges...)
}

// MergedToken returns the token a learned merge assigned to the pair, if any.
// The merge table's order is a priority ranking, so a smaller returned token id
// means an earlier-learned merge.
func (v *Vocabulary) MergedToken(p Pair) (Token, bool) {
	tok, ok := v.byPair[p]
	return tok, ok
}

// TokenBytes returns the byte sequence the token decodes to. The returned slice
// is shared and must not be modified.
func (v *Vocabulary) TokenBytes(id Token) ([]byte, error) {
	if int(id) >= len(v.tokenBytes) {
		return nil, errors.Wrapf(ErrInvalidToken, "token %d with vocabulary size %d", id, len(v.tokenBytes))
	}
	return v.tokenBytes[id], nil
}
