package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// RNG wraps math/rand.Rand with a mutex so key generators can be shared
// safely across parallel test cases without each test seeding its own
// generator.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed, so a test can regenerate
// the exact same key set twice.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// RandomKey generates a random lowercase byte string with length in
// [minLen, maxLen].
func (r *RNG) RandomKey(minLen, maxLen int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := minLen
	if maxLen > minLen {
		n += r.rand.Intn(maxLen - minLen + 1)
	}
	key := make([]byte, n)
	for i := range key {
		key[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return key
}

// RandomKeys generates count random keys with length in [minLen, maxLen],
// sorted and deduplicated so the result satisfies BuildSorted's
// precondition directly.
func (r *RNG) RandomKeys(count, minLen, maxLen int) [][]byte {
	keys := make([][]byte, count)
	for i := range keys {
		keys[i] = r.RandomKey(minLen, maxLen)
	}
	return SortAndDedupe(keys)
}

// PrefixHeavyKeys generates count keys built from a small set of shared
// prefixes plus a random suffix, producing the kind of long common-prefix
// runs a LOUDS trie is meant to collapse. Useful for exercising
// commonPrefixSearch/predictiveSearch against a dataset denser than a
// handful of literal strings.
func (r *RNG) PrefixHeavyKeys(count, numPrefixes, prefixLen, suffixLen int) [][]byte {
	r.mu.Lock()
	prefixes := make([][]byte, numPrefixes)
	for i := range prefixes {
		p := make([]byte, prefixLen)
		for j := range p {
			p[j] = alphabet[r.rand.Intn(len(alphabet))]
		}
		prefixes[i] = p
	}
	r.mu.Unlock()

	keys := make([][]byte, count)
	for i := range keys {
		prefix := prefixes[i%numPrefixes]
		suffix := r.RandomKey(suffixLen, suffixLen)
		key := make([]byte, 0, len(prefix)+len(suffix))
		key = append(key, prefix...)
		key = append(key, suffix...)
		keys[i] = key
	}
	return SortAndDedupe(keys)
}

// SortAndDedupe sorts keys lexicographically by byte value and removes
// duplicates in place, matching the input BuildSorted requires.
func SortAndDedupe(keys [][]byte) [][]byte {
	sort.Slice(keys, func(i, j int) bool {
		return string(keys[i]) < string(keys[j])
	})
	if len(keys) == 0 {
		return keys
	}
	out := keys[:1]
	for _, k := range keys[1:] {
		if string(k) != string(out[len(out)-1]) {
			out = append(out, k)
		}
	}
	return out
}

// SequentialKeys generates count keys of the form fmt.Sprintf(format, i)
// for i in [0, count), already in sorted order for the common case of a
// zero-padded numeric format.
func SequentialKeys(format string, count int) [][]byte {
	keys := make([][]byte, count)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf(format, i))
	}
	return keys
}
