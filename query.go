package ux

import (
	"bytes"
	"context"
	"math"

	"github.com/succinctgo/uxdict/internal/louds"
	"github.com/succinctgo/uxdict/tail"
)

// traverse descends the trie matching str byte-for-byte from the
// root, recording a hit at every terminal node passed along the way
// (ascending depth order), and following a tail comparison if descent
// reaches a tail-carrying leaf. Grounded on original_source's
// UX::traverse, translated to this package's half-open rank
// convention (see DESIGN.md's Open Question 4 resolution): every
// `rank(pos,1)-1` in the original becomes a direct `Rank(pos, true)`
// here, since our Rank already excludes the bit at pos itself.
func (d *Dictionary) traverse(str []byte, limit int) (ids []int, lastLen int, err error) {
	if !d.Ready() || d.keyNum == 0 || limit == 0 {
		return nil, 0, nil
	}

	pos, zeros := louds.RootPos, louds.RootZeros
	for depth := 0; ; depth++ {
		ones := louds.Ones(pos, zeros)

		if d.tailBV.Get(ones) {
			tailIdx := d.tailBV.Rank(ones, true)
			tailBytes, e := d.tails.Get(tailIdx)
			if e != nil {
				return ids, lastLen, e
			}
			if n, ok := tail.Match(tailBytes, str, depth); ok {
				lastLen = depth + n
				ids = append(ids, d.terminal.Rank(ones, true))
			}
			break
		}

		if d.terminal.Get(ones) {
			lastLen = depth
			ids = append(ids, d.terminal.Rank(ones, true))
			if len(ids) == limit {
				break
			}
		}

		if depth == len(str) {
			break
		}
		newPos, newZeros := d.nav.GetChild(str[depth], pos, zeros)
		if newPos == louds.NotFound {
			break
		}
		pos, zeros = newPos, newZeros
	}
	return ids, lastLen, nil
}

// PrefixSearch returns the identifier and matched length of the
// longest stored key that is a prefix of str, i.e. the deepest
// terminal node reached while descending str. Returns ErrNotFound if
// no stored key is a prefix of str.
func (d *Dictionary) PrefixSearch(str []byte) (id int, matchedLen int, err error) {
	ids, lastLen, err := d.traverse(str, math.MaxInt)
	if err != nil {
		d.logger.LogQuery(context.Background(), "prefix", str, 0, err)
		return 0, 0, err
	}
	if len(ids) == 0 {
		d.logger.LogQuery(context.Background(), "prefix", str, 0, ErrNotFound)
		return 0, 0, ErrNotFound
	}
	d.logger.LogQuery(context.Background(), "prefix", str, 1, nil)
	return ids[len(ids)-1], lastLen, nil
}

// prefixSearchRaw is PrefixSearch without the API-boundary error
// wrapping, for internal use where -1 is a sufficient not-found
// signal (e.g. the builder resolving a reversed tail's identifier in
// its own freshly built nested dictionary).
func (d *Dictionary) prefixSearchRaw(str []byte) (id int, matchedLen int, err error) {
	ids, lastLen, err := d.traverse(str, math.MaxInt)
	if err != nil {
		return -1, 0, err
	}
	if len(ids) == 0 {
		return -1, 0, nil
	}
	return ids[len(ids)-1], lastLen, nil
}

// CommonPrefixSearch returns the identifiers of every stored key that
// is a prefix of str, in ascending length order, stopping once limit
// results have been collected. limit == 0 returns no results; pass
// len(str)+1 or larger for no effective cap.
func (d *Dictionary) CommonPrefixSearch(str []byte, limit int) ([]int, error) {
	ids, _, err := d.traverse(str, limit)
	d.logger.LogQuery(context.Background(), "common-prefix", str, len(ids), err)
	return ids, err
}

// PredictiveSearch returns the identifiers of every stored key that
// has str as a prefix, in depth-first pre-order (parent before child,
// left-to-right siblings), stopping once limit results have been
// collected. limit == 0 returns no results.
//
// Descent follows explicit trie edges for as long as str has bytes
// left to match; if descent reaches a tail-carrying leaf before str
// is exhausted, the remainder of str is compared against the tail
// directly (a tail node has no children to descend into further, so
// at most one key — the tail's own — can match). The enumeration root
// is the node reached after consuming all of str, matching the
// "keys having str as a prefix" reading confirmed by this package's
// resolution of the predictive-search root question (DESIGN.md).
func (d *Dictionary) PredictiveSearch(str []byte, limit int) ([]int, error) {
	if !d.Ready() || d.keyNum == 0 || limit == 0 {
		return nil, nil
	}

	pos, zeros := louds.RootPos, louds.RootZeros
	for depth := 0; depth < len(str); depth++ {
		ones := louds.Ones(pos, zeros)

		if d.tailBV.Get(ones) {
			tailIdx := d.tailBV.Rank(ones, true)
			tailBytes, err := d.tails.Get(tailIdx)
			if err != nil {
				d.logger.LogQuery(context.Background(), "predictive", str, 0, err)
				return nil, err
			}
			remaining := str[depth:]
			if len(tailBytes) < len(remaining) || !bytes.HasPrefix(tailBytes, remaining) {
				d.logger.LogQuery(context.Background(), "predictive", str, 0, nil)
				return nil, nil
			}
			d.logger.LogQuery(context.Background(), "predictive", str, 1, nil)
			return []int{d.terminal.Rank(ones, true)}, nil
		}

		newPos, newZeros := d.nav.GetChild(str[depth], pos, zeros)
		if newPos == louds.NotFound {
			d.logger.LogQuery(context.Background(), "predictive", str, 0, nil)
			return nil, nil
		}
		pos, zeros = newPos, newZeros
	}

	var out []int
	d.enumerateAll(pos, zeros, limit, &out)
	d.logger.LogQuery(context.Background(), "predictive", str, len(out), nil)
	return out, nil
}

// enumerateAll walks the subtree rooted at (pos, zeros) depth-first,
// left-to-right, collecting terminal identifiers. Grounded on
// original_source's UX::enumerateAll.
func (d *Dictionary) enumerateAll(pos, zeros, limit int, out *[]int) {
	ones := louds.Ones(pos, zeros)
	if d.terminal.Get(ones) {
		*out = append(*out, d.terminal.Rank(ones, true))
	}

	for i := 0; !d.loud.Get(pos+i); i++ {
		if limit > 0 && len(*out) >= limit {
			return
		}
		nextPos := d.loud.Select(zeros+i, true) + 1
		nextZeros := nextPos - zeros - i + 1
		d.enumerateAll(nextPos, nextZeros, limit, out)
	}
}
