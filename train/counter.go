package train

import (
	"container/heap"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/tokenlab/go-bpe/vocab"
)

// minPairCount is the lowest frequency worth merging. A pair occurring once
// cannot reduce the corpus, so training stops below this.
const minPairCount = 2

// pairCounter tracks live adjacent-pair frequencies across the mutable token
// sequences, plus an index of which documents each pair occurs in, so applying
// a merge touches only the documents it changes rather than the whole corpus.
//
// The index is kept at document granularity. A document entry can go stale
// when a neighbouring merge removes a pair's last occurrence there; stale
// entries cost a no-op rescan of that document on a later merge of the pair,
// never a wrong count.
type pairCounter struct {
	seqs   [][]vocab.Token // one mutable token sequence per document
	counts map[vocab.Pair]int64
	where  map[vocab.Pair]map[int]struct{}
	queue  candidateHeap
}

// candidate is a heap entry. Its count is a snapshot and may be stale; entries
// are revalidated against the live counts when they surface.
type candidate struct {
	pair  vocab.Pair
	count int64
}

type candidateHeap []candidate

func (h candidateHeap) Len() int { return len(h) }

func (h candidateHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count > h[j].count
	}
	return h[i].pair.Less(h[j].pair)
}

func (h candidateHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *candidateHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type localStats struct {
	counts map[vocab.Pair]int64
	where  map[vocab.Pair]map[int]struct{}
}

// newPairCounter turns each document into a byte-token sequence and builds the
// initial pair statistics, counting documents in parallel and reducing.
func newPairCounter(docs [][]byte) *pairCounter {
	pc := &pairCounter{
		seqs:   make([][]vocab.Token, len(docs)),
		counts: make(map[vocab.Pair]int64),
		where:  make(map[vocab.Pair]map[int]struct{}),
	}
	for i, doc := range docs {
		seq := make([]vocab.Token, len(doc))
		for j, b := range doc {
			seq[j] = vocab.Token(b)
		}
		pc.seqs[i] = seq
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > len(pc.seqs) {
		workers = len(pc.seqs)
	}
	if workers < 1 {
		workers = 1
	}
	locals := make([]localStats, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			local := localStats{
				counts: make(map[vocab.Pair]int64),
				where:  make(map[vocab.Pair]map[int]struct{}),
			}
			for docIdx := w; docIdx < len(pc.seqs); docIdx += workers {
				seq := pc.seqs[docIdx]
				for i := 0; i+1 < len(seq); i++ {
					p := vocab.Pair{Left: seq[i], Right: seq[i+1]}
					local.counts[p]++
					set := local.where[p]
					if set == nil {
						set = make(map[int]struct{})
						local.where[p] = set
					}
					set[docIdx] = struct{}{}
				}
			}
			locals[w] = local
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	for _, local := range locals {
		for p, c := range local.counts {
			pc.counts[p] += c
		}
		for p, set := range local.where {
			dst := pc.where[p]
			if dst == nil {
				dst = make(map[int]struct{}, len(set))
				pc.where[p] = dst
			}
			for docIdx := range set {
				dst[docIdx] = struct{}{}
			}
		}
	}

	pc.queue = make(candidateHeap, 0, len(pc.counts))
	for p, c := range pc.counts {
		if c >= minPairCount {
			pc.queue = append(pc.queue, candidate{pair: p, count: c})
		}
	}
	heap.Init(&pc.queue)
	return pc
}

// mostFrequentPair returns the pair with the highest live count, breaking ties
// toward the lexicographically smallest (left, right) token ids. ok is false
// when no pair occurs at least minPairCount times, the signal to stop training.
func (pc *pairCounter) mostFrequentPair() (pair vocab.Pair, count int64, ok bool) {
	for pc.queue.Len() > 0 {
		top := pc.queue[0]
		current := pc.counts[top.pair]
		if current < minPairCount {
			heap.Pop(&pc.queue)
			continue
		}
		if top.count != current {
			// Snapshot went stale; re-rank the entry and look again.
			pc.queue[0].count = current
			heap.Fix(&pc.queue, 0)
			continue
		}
		return top.pair, top.count, true
	}
	return vocab.Pair{}, 0, false
}

// pairCount returns the live count for a pair.
func (pc *pairCounter) pairCount(p vocab.Pair) int64 {
	return pc.counts[p]
}

// totalTokens returns the number of tokens currently left in the corpus.
func (pc *pairCounter) totalTokens() int64 {
	var n int64
	for _, seq := range pc.seqs {
		n += int64(len(seq))
	}
	return n
}

// applyMerge replaces every occurrence of pair with tok, left to right and
// non-overlapping, in each document indexed as containing the pair, then
// applies the count deltas for the pair itself and its disturbed neighbours.
// Newly formed pairs involving tok are indexed and queued.
func (pc *pairCounter) applyMerge(pair vocab.Pair, tok vocab.Token) {
	docs := pc.where[pair]
	delete(pc.where, pair)

	raised := make(map[vocab.Pair]struct{})
	lowered := make(map[vocab.Pair]struct{})
	for docIdx := range docs {
		seq, deltas := mergeSeq(pc.seqs[docIdx], pair, tok)
		pc.seqs[docIdx] = seq
		for _, d := range deltas {
			pc.counts[d.pair] += d.delta
			if d.delta > 0 {
				set := pc.where[d.pair]
				if set == nil {
					set = make(map[int]struct{})
					pc.where[d.pair] = set
				}
				set[docIdx] = struct{}{}
				raised[d.pair] = struct{}{}
			} else {
				lowered[d.pair] = struct{}{}
			}
		}
	}

	for p := range lowered {
		if pc.counts[p] <= 0 {
			delete(pc.counts, p)
		}
	}
	// Only pairs touching the fresh token can have grown; queue their final
	// counts. Everything else in the queue revalidates lazily.
	for p := range raised {
		if c := pc.counts[p]; c >= minPairCount {
			heap.Push(&pc.queue, candidate{pair: p, count: c})
		}
	}
}

type pairDelta struct {
	pair  vocab.Pair
	delta int64
}

// mergeSeq rewrites seq, replacing occurrences of pair with tok left to right
// without overlap, and returns the rewritten sequence together with the
// pair-count deltas the rewrite caused. The left neighbour is taken from the
// already-rewritten output so chained merges within one pass stay consistent.
func mergeSeq(seq []vocab.Token, pair vocab.Pair, tok vocab.Token) ([]vocab.Token, []pairDelta) {
	n := len(seq)
	if n < 2 {
		return seq, nil
	}
	out := make([]vocab.Token, 0, n)
	deltas := make([]pairDelta, 0, 8)
	for i := 0; i < n; {
		if i+1 < n && seq[i] == pair.Left && seq[i+1] == pair.Right {
			if len(out) > 0 {
				prev := out[len(out)-1]
				deltas = append(deltas,
					pairDelta{pair: vocab.Pair{Left: prev, Right: pair.Left}, delta: -1},
					pairDelta{pair: vocab.Pair{Left: prev, Right: tok}, delta: 1})
			}
			deltas = append(deltas, pairDelta{pair: pair, delta: -1})
			if i+2 < n {
				next := seq[i+2]
				deltas = append(deltas,
					pairDelta{pair: vocab.Pair{Left: pair.Right, Right: next}, delta: -1},
					pairDelta{pair: vocab.Pair{Left: tok, Right: next}, delta: 1})
			}
			out = append(out, tok)
			i += 2
		} else {
			out = append(out, seq[i])
			i++
		}
	}
	return out, deltas
}
