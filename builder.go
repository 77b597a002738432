package ux

import (
	"bytes"
	"context"
	"sort"

	"github.com/succinctgo/uxdict/internal/bitvector"
	"github.com/succinctgo/uxdict/internal/louds"
	"github.com/succinctgo/uxdict/internal/packedints"
	"github.com/succinctgo/uxdict/tail"
)

// rangeNode is one entry of the BFS build queue: a half-open range of
// the sorted key list sharing a common prefix of length depth. A
// single queue carrying (range, depth) triples, per the two-queue
// idiom's suggested simplification.
type rangeNode struct {
	left, right, depth int
}

// buildTopology runs the level-order BFS described in the builder's
// design, grounded on original_source/src/ux.cpp's UX::build. keys
// must already be sorted and deduplicated.
func buildTopology(keys [][]byte) (loud, terminalBV, tailBV *bitvector.BitVector, edges []byte, tails [][]byte) {
	loud = bitvector.New()
	terminalBV = bitvector.New()
	tailBV = bitvector.New()

	loud.Push(false) // super-root
	loud.Push(true)

	n := len(keys)
	if n == 0 {
		loud.Build()
		terminalBV.Build()
		tailBV.Build()
		return
	}

	queue := make([]rangeNode, 0, n)
	queue = append(queue, rangeNode{0, n, 0})

	for qi := 0; qi < len(queue); qi++ {
		left, right, depth := queue[qi].left, queue[qi].right, queue[qi].depth
		cur := keys[left]

		if left+1 == right && depth+1 < len(cur) {
			loud.Push(true)
			terminalBV.Push(true)
			tailBV.Push(true)
			tails = append(tails, append([]byte(nil), cur[depth:]...))
			continue
		}
		tailBV.Push(false)

		newLeft := left
		if depth == len(cur) {
			terminalBV.Push(true)
			newLeft++
			if newLeft == right {
				loud.Push(true)
				continue
			}
		} else {
			terminalBV.Push(false)
		}

		prev := newLeft
		prevC := keys[prev][depth]
		for i := prev + 1; ; i++ {
			if i < right && prevC == keys[i][depth] {
				continue
			}
			edges = append(edges, prevC)
			loud.Push(false)
			queue = append(queue, rangeNode{prev, i, depth + 1})
			if i == right {
				break
			}
			prev = i
			prevC = keys[prev][depth]
		}
		loud.Push(true)
	}

	loud.Build()
	terminalBV.Build()
	tailBV.Build()
	return
}

// sortDedup returns a sorted, deduplicated copy of keys. Inputs are
// not mutated.
func sortDedup(keys [][]byte) [][]byte {
	out := make([][]byte, len(keys))
	copy(out, keys)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })

	if len(out) == 0 {
		return out
	}
	deduped := out[:1]
	for _, k := range out[1:] {
		if !bytes.Equal(k, deduped[len(deduped)-1]) {
			deduped = append(deduped, k)
		}
	}
	return deduped
}

// isSorted reports whether keys is strictly ascending with no
// duplicates.
func isSorted(keys [][]byte) bool {
	for i := 1; i < len(keys); i++ {
		if bytes.Compare(keys[i-1], keys[i]) >= 0 {
			return false
		}
	}
	return true
}

// Build constructs a Dictionary from an arbitrary set of keys, sorting
// and deduplicating them first. Keys are opaque byte strings; no
// normalization is performed.
func Build(ctx context.Context, keys [][]byte, optFns ...Option) (*Dictionary, error) {
	return buildFrom(ctx, sortDedup(keys), optFns)
}

// BuildSorted constructs a Dictionary from a key list the caller
// guarantees is already strictly ascending and deduplicated, skipping
// the sort step. Returns ErrUnsortedKeys if the precondition doesn't
// hold — checking is cheap relative to a full trie build, so this
// still fails fast rather than silently producing a wrong trie.
func BuildSorted(ctx context.Context, keys [][]byte, optFns ...Option) (*Dictionary, error) {
	if !isSorted(keys) {
		return nil, ErrUnsortedKeys
	}
	return buildFrom(ctx, keys, optFns)
}

func buildFrom(ctx context.Context, keys [][]byte, optFns []Option) (*Dictionary, error) {
	o := applyOptions(optFns)

	loud, terminalBV, tailBV, edges, flatTails := buildTopology(keys)
	nav := louds.New(loud, edges)

	d := &Dictionary{
		loud:       loud,
		terminal:   terminalBV,
		tailBV:     tailBV,
		edges:      edges,
		nav:        nav,
		keyNum:     len(keys),
		ready:      true,
		codec:      o.codec,
		compressor: o.compressor,
		logger:     o.logger,
	}

	pool, nested, err := buildTailPool(ctx, flatTails, o)
	if err != nil {
		return nil, err
	}
	d.tails = pool
	d.nested = nested

	o.logger.LogBuild(ctx, len(keys), terminalBV.Size(), 0, nil)
	return d, nil
}

// buildTailPool constructs the flat or nested tail store for a set of
// raw tail strings, degrading to flat storage when a memory budget is
// configured and the nested build's estimated footprint would exceed
// it (spec's build-time resource-failure clause).
func buildTailPool(ctx context.Context, flatTails [][]byte, o options) (*tail.Pool, *Dictionary, error) {
	if len(flatTails) == 0 || !o.tailUX {
		return tail.NewFlat(flatTails), nil, nil
	}

	estimate := estimateNestedBuildBytes(flatTails)
	if o.resources != nil && !o.resources.TryAcquireMemory(estimate) {
		o.logger.LogDegrade(ctx, estimate, &ErrResourceExhausted{Requested: estimate})
		return tail.NewFlat(flatTails), nil, nil
	}
	if o.resources != nil {
		defer o.resources.ReleaseMemory(estimate)
	}

	reversed := make([][]byte, len(flatTails))
	for i, t := range flatTails {
		reversed[i] = reverseBytes(t)
	}

	// The nested dictionary's own tails are always flat (it is the
	// recursion's leaf), so it's where a configured compressor's
	// benefit actually lands; carry the parent's compressor/codec
	// choice down rather than defaulting to none.
	nested, err := buildFrom(ctx, sortDedup(reversed), []Option{WithCompressor(o.compressor), WithCodec(o.codec)})
	if err != nil {
		return tail.NewFlat(flatTails), nil, nil
	}

	tailIDLen := packedints.BitWidth(uint64(nested.keyNum - 1))
	ids := packedints.New(tailIDLen)
	for _, t := range flatTails {
		id, _, err := nested.prefixSearchRaw(reverseBytes(t))
		if err != nil || id < 0 {
			return tail.NewFlat(flatTails), nil, nil
		}
		ids.Push(uint64(id))
	}

	return tail.NewNested(nested, ids, tailIDLen, nested.keyNum), nested, nil
}

// estimateNestedBuildBytes gives a rough upper bound on the transient
// memory a nested tail build needs: the reversed copy of every tail
// plus the sorted working set the inner Build call allocates.
func estimateNestedBuildBytes(tails [][]byte) int64 {
	var sum int64
	for _, t := range tails {
		sum += int64(len(t))
	}
	return sum * 3
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
