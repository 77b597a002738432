// Package tail implements the two tail-storage strategies a dictionary
// can use for out-of-line key suffixes: a flat list of byte strings,
// or a nested dictionary built over the reversed tails plus a
// bit-packed vector of tail identifiers. Grounded on
// original_source/src/ux.cpp's vtails_/vtailux_/tailIDs_ fields and
// its buildTailUX/getTail methods.
package tail

import (
	"context"
	"fmt"

	"github.com/succinctgo/uxdict/internal/cache"
	"github.com/succinctgo/uxdict/internal/packedints"
)

// Resolver decodes an identifier produced by the nested tail
// dictionary back into its (reversed) key bytes. A dictionary's own
// Decode method satisfies this once wired up by the caller, avoiding
// a direct import cycle between this package and the root package.
type Resolver interface {
	Decode(id int) ([]byte, error)
}

// Pool holds a dictionary's tail storage, in either flat or nested
// mode. The zero value is an empty flat pool.
type Pool struct {
	flat [][]byte

	nested  Resolver
	ids     *packedints.Vector
	tailLen int // bit width of each packed tail identifier
	tailNum int // nested dictionary's key count, kept for AllocSize/inspection

	decodeCache cache.BlockCache
	segID       cache.SegmentID
}

// NewFlat returns a Pool backed by a flat list of tail byte strings,
// indexed in the order nodes carrying a tail were visited during
// build (ascending node id).
func NewFlat(tails [][]byte) *Pool {
	return &Pool{flat: tails}
}

// NewNested returns a Pool backed by a nested dictionary over
// reversed tails. ids holds, for each original tail slot i, the
// identifier the nested dictionary assigned to tails[i] reversed.
func NewNested(resolver Resolver, ids *packedints.Vector, tailIDLen, tailNum int) *Pool {
	return &Pool{nested: resolver, ids: ids, tailLen: tailIDLen, tailNum: tailNum}
}

// IsNested reports whether the pool defers to a nested dictionary.
func (p *Pool) IsNested() bool { return p.nested != nil }

// WithCache attaches a decode cache for nested lookups, memoizing the
// reversed-tail bytes Get resolves for a given tail identifier under
// segID so one process-wide cache can serve several loaded
// dictionaries without collisions. Only meaningful when IsNested();
// returns p for chaining.
func (p *Pool) WithCache(c cache.BlockCache, segID cache.SegmentID) *Pool {
	p.decodeCache = c
	p.segID = segID
	return p
}

// Count returns the number of tails stored.
func (p *Pool) Count() int {
	if p.IsNested() {
		return p.ids.Len()
	}
	return len(p.flat)
}

// Flat returns the underlying flat tail list. Only meaningful when
// !IsNested(); used by the builder when serializing flat mode.
func (p *Pool) Flat() [][]byte { return p.flat }

// PackedIDs returns the packed tail-identifier vector. Only
// meaningful when IsNested(); used by the builder when serializing
// nested mode.
func (p *Pool) PackedIDs() *packedints.Vector { return p.ids }

// TailIDLen returns the bit width used for each packed identifier.
func (p *Pool) TailIDLen() int { return p.tailLen }

// Get returns the tail bytes stored at slot i.
func (p *Pool) Get(i int) ([]byte, error) {
	if p.IsNested() {
		id := p.ids.Get(i)

		var key cache.CacheKey
		if p.decodeCache != nil {
			key = cache.CacheKey{Kind: cache.CacheKindTailPool, SegmentID: p.segID, Offset: id}
			if v, ok := p.decodeCache.Get(context.Background(), key); ok {
				return v, nil
			}
		}

		reversed, err := p.nested.Decode(int(id))
		if err != nil {
			return nil, fmt.Errorf("tail: decode nested id %d: %w", id, err)
		}
		tail := reverseBytes(reversed)
		if p.decodeCache != nil {
			p.decodeCache.Set(context.Background(), key, tail)
		}
		return tail, nil
	}
	if i < 0 || i >= len(p.flat) {
		return nil, fmt.Errorf("tail: index %d out of range [0, %d)", i, len(p.flat))
	}
	return p.flat[i], nil
}

// AllocSize approximates the pool's retained memory, mirroring
// ux.cpp's getAllocSize accounting (flat tails plus a length bit
// vector's worth of overhead, or the nested dictionary's own size
// plus the packed-ID vector).
func (p *Pool) AllocSize(nestedAllocSize int) int {
	if p.IsNested() {
		return nestedAllocSize + p.ids.AllocSize()
	}
	sum := 0
	for _, t := range p.flat {
		sum += len(t)
	}
	return sum + sum/8
}

// Match compares tail against the query string starting at depth,
// requiring the tail to fit entirely within the remaining bytes and
// match byte-for-byte. Returns the tail's length on success.
func Match(tailBytes, str []byte, depth int) (matchLen int, ok bool) {
	if len(tailBytes) > len(str)-depth {
		return 0, false
	}
	for i, b := range tailBytes {
		if str[depth+i] != b {
			return 0, false
		}
	}
	return len(tailBytes), true
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}
