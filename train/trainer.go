// Package train learns a byte-pair vocabulary from a corpus: it repeatedly
// selects the most frequent adjacent token pair, assigns it the next token id,
// and rewrites the corpus, keeping the pair statistics current incrementally.
package train

import (
	"context"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tokenlab/go-bpe/corpus"
	"github.com/tokenlab/go-bpe/vocab"
)

// ErrInvalidTargetSize is returned when the target vocabulary size does not
// leave room for at least the base byte tokens.
var ErrInvalidTargetSize = errors.New("target vocabulary size must be greater than 256")

const progressEvery = 100

// Train learns merges from c until the vocabulary reaches targetVocabSize
// tokens or no adjacent pair occurs at least twice. Learned tokens get ids
// 256, 257, ... in discovery order.
//
// An empty corpus is not an error: it yields a vocabulary of just the 256 base
// tokens. Running out of mergeable pairs before the target is likewise normal;
// the Report records the achieved size. If ctx is cancelled, training stops
// after the current merge and returns the partial Vocabulary and Report built
// so far together with the context error: the artifacts are complete and
// usable, the error only says why training ended early.
func Train(ctx context.Context, c *corpus.Corpus, targetVocabSize int) (*vocab.Vocabulary, *Report, error) {
	if targetVocabSize <= vocab.BaseSize {
		return nil, nil, errors.Wrapf(ErrInvalidTargetSize, "got %d", targetVocabSize)
	}

	docs := c.Documents()
	originalBytes := c.TotalBytes()
	wanted := targetVocabSize - vocab.BaseSize
	klog.V(1).Infof("Training BPE vocabulary: %d documents, %d bytes, %d merges wanted",
		len(docs), originalBytes, wanted)

	pc := newPairCounter(docs)
	merges := make([]vocab.MergeRule, 0, wanted)
	var ctxErr error
	for len(merges) < wanted {
		if err := ctx.Err(); err != nil {
			klog.V(1).Infof("Training cancelled after %d merges", len(merges))
			ctxErr = err
			break
		}
		pair, count, ok := pc.mostFrequentPair()
		if !ok {
			klog.V(1).Infof("Pairs exhausted after %d merges", len(merges))
			break
		}
		tok := vocab.Token(vocab.BaseSize + len(merges))
		merges = append(merges, vocab.MergeRule{Pair: pair, New: tok})
		pc.applyMerge(pair, tok)
		if len(merges)%progressEvery == 0 {
			klog.V(1).Infof("Merge %d/%d: (%d,%d) -> %d, frequency %d, %d tokens left",
				len(merges), wanted, pair.Left, pair.Right, tok, count, pc.totalTokens())
		}
	}

	v, err := vocab.Build(merges)
	if err != nil {
		// The loop assigns ids sequentially, so this indicates a bug.
		return nil, nil, errors.WithMessage(err, "recorded merge table is inconsistent")
	}
	report := newReport(targetVocabSize, v, originalBytes, pc.totalTokens())
	klog.V(1).Infof("Training done: vocabulary size %d (%d requested), compression %.2fx",
		report.VocabSize, report.RequestedVocabSize, report.CompressionRatio())
	return v, report, ctxErr
}
