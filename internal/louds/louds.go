// Package louds implements the two stateless traversal routines
// (getChild, getParent) that walk a LOUDS-encoded trie by rank/select
// over its topology bit vector, grounded on the getChild/getParent
// pair in original_source/src/ux.cpp and the child-lookup idiom in
// other_examples' sutrie package.
package louds

import (
	"context"
	"encoding/binary"

	"github.com/succinctgo/uxdict/internal/bitvector"
	"github.com/succinctgo/uxdict/internal/cache"
)

// NotFound is the sentinel position returned by GetChild when no
// child edge matches.
const NotFound = -1

// RootPos and RootZeros are the (pos, zeros) state positioned just
// past the real root's opening bit, before any input byte has been
// consumed. Every query starts here.
const (
	RootPos   = 2
	RootZeros = 2
)

// Navigator walks a LOUDS topology bit vector. It holds no traversal
// state itself; callers thread (pos, zeros) through calls.
type Navigator struct {
	loud  *bitvector.BitVector
	edges []byte
}

// New returns a Navigator over the given topology vector and edge
// label array. loud must already be built.
func New(loud *bitvector.BitVector, edges []byte) *Navigator {
	return &Navigator{loud: loud, edges: edges}
}

// NodeID returns the level-order identifier of the node whose opening
// bit begins at pos, given the count of zero bits before pos.
func NodeID(pos, zeros int) int { return zeros - 1 }

// Ones returns the index into the per-node parallel vectors
// (terminal, tail) for the node currently under consideration at
// (pos, zeros) — the count of children consumed by ancestors and
// siblings visited so far, shifted by the super-root.
func Ones(pos, zeros int) int { return pos - zeros }

// IsLeaf reports whether the node opening at pos has no children.
func (n *Navigator) IsLeaf(pos int) bool {
	return n.loud.Get(pos)
}

// GetChild scans the children of the node at (pos, zeros) for an edge
// labeled c. On a match it returns the (pos, zeros) of that child's
// opening bit. On no match it returns (NotFound, zeros).
func (n *Navigator) GetChild(c byte, pos, zeros int) (int, int) {
	for {
		if n.loud.Get(pos) {
			return NotFound, zeros
		}
		if n.edges[zeros-2] == c {
			newPos := n.loud.Select(zeros, true) + 1
			newZeros := newPos - zeros + 1
			return newPos, newZeros
		}
		pos++
		zeros++
	}
}

// CachedNavigator wraps a Navigator with a memoized GetChild lookup,
// so repeated queries for popular prefixes skip the child-edge scan.
// LoadMmap installs one on the dictionaries it returns.
type CachedNavigator struct {
	*Navigator
	cache cache.BlockCache
	seg   cache.SegmentID
}

// NewCached returns a Navigator whose GetChild results are memoized in
// c, keyed under seg so one process-wide cache can serve several
// mapped dictionaries without collisions.
func NewCached(loud *bitvector.BitVector, edges []byte, c cache.BlockCache, seg cache.SegmentID) *CachedNavigator {
	return &CachedNavigator{Navigator: New(loud, edges), cache: c, seg: seg}
}

// GetChild overrides Navigator.GetChild with a cache lookup keyed on
// the scan's starting position and the queried label, since that pair
// uniquely determines the (pos, zeros) result within one topology.
func (n *CachedNavigator) GetChild(c byte, pos, zeros int) (int, int) {
	key := cache.CacheKey{Kind: cache.CacheKindTopology, SegmentID: n.seg, Offset: uint64(pos)<<8 | uint64(c)}
	ctx := context.Background()
	if v, ok := n.cache.Get(ctx, key); ok && len(v) == 8 {
		return int(int32(binary.LittleEndian.Uint32(v[0:4]))), int(int32(binary.LittleEndian.Uint32(v[4:8])))
	}

	newPos, newZeros := n.Navigator.GetChild(c, pos, zeros)

	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(int32(newPos)))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(int32(newZeros)))
	n.cache.Set(ctx, key, buf[:])
	return newPos, newZeros
}

// GetParent returns the (pos, zeros) of the parent of the node at
// (pos, zeros), along with the edge label leading to it and whether
// the real root has been reached. When atRoot is true, label is not
// meaningful.
func (n *Navigator) GetParent(pos, zeros int) (parentPos, parentZeros int, label byte, atRoot bool) {
	parentZeros = pos - zeros + 1
	parentPos = n.loud.Select(parentZeros, false)
	if parentZeros < 2 {
		return parentPos, parentZeros, 0, true
	}
	return parentPos, parentZeros, n.edges[parentZeros-2], false
}
