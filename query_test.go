package ux

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 1: keys ["a", "ab", "abc"].
func TestQuery_PrefixAndCommonPrefixSearch(t *testing.T) {
	d, err := Build(context.Background(), keysOf("a", "ab", "abc"))
	require.NoError(t, err)

	idA, _, err := d.PrefixSearch([]byte("a"))
	require.NoError(t, err)
	idAB, _, err := d.PrefixSearch([]byte("ab"))
	require.NoError(t, err)
	idABC, _, err := d.PrefixSearch([]byte("abc"))
	require.NoError(t, err)

	id, matched, err := d.PrefixSearch([]byte("abcd"))
	require.NoError(t, err)
	require.Equal(t, idABC, id)
	require.Equal(t, 3, matched)

	ids, err := d.CommonPrefixSearch([]byte("abcd"), 10)
	require.NoError(t, err)
	require.Equal(t, []int{idA, idAB, idABC}, ids)
}

func TestQuery_CommonPrefixSearchRespectsLimit(t *testing.T) {
	d, err := Build(context.Background(), keysOf("a", "ab", "abc"))
	require.NoError(t, err)

	ids, err := d.CommonPrefixSearch([]byte("abc"), 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestQuery_CommonPrefixSearchNoMatch(t *testing.T) {
	d, err := Build(context.Background(), keysOf("a", "ab", "abc"))
	require.NoError(t, err)

	ids, err := d.CommonPrefixSearch([]byte("xyz"), 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestQuery_PrefixSearchNotFound(t *testing.T) {
	d, err := Build(context.Background(), keysOf("a", "ab", "abc"))
	require.NoError(t, err)

	_, _, err = d.PrefixSearch([]byte("xyz"))
	require.ErrorIs(t, err, ErrNotFound)
}

// Keys where one is a proper prefix of another: both are indexed;
// common-prefix search on the longer returns the shorter (§8 boundary
// behavior).
func TestQuery_ProperPrefixBothIndexed(t *testing.T) {
	d, err := Build(context.Background(), keysOf("cat", "catalog"))
	require.NoError(t, err)
	require.Equal(t, 2, d.GetKeyNum())

	idCat, _, err := d.PrefixSearch([]byte("cat"))
	require.NoError(t, err)

	ids, err := d.CommonPrefixSearch([]byte("catalog"), 10)
	require.NoError(t, err)
	require.Contains(t, ids, idCat)
}

// Scenario 3: keys ["cat", "car", "card", "care", "cares"].
// predictiveSearch("car", ., 10) must return exactly the identifiers
// of car/card/care/cares, excluding cat.
func TestQuery_PredictiveSearchExcludesSiblingBranch(t *testing.T) {
	in := []string{"cat", "car", "card", "care", "cares"}
	d, err := Build(context.Background(), keysOf(in...))
	require.NoError(t, err)

	want := make(map[string]bool)
	for _, k := range []string{"car", "card", "care", "cares"} {
		want[k] = true
	}

	ids, err := d.PredictiveSearch([]byte("car"), 10)
	require.NoError(t, err)
	require.Len(t, ids, 4)

	got := make(map[string]bool)
	for _, id := range ids {
		key, err := d.Decode(id)
		require.NoError(t, err)
		got[string(key)] = true
	}
	require.Equal(t, want, got)
	require.NotContains(t, got, "cat")
}

func TestQuery_PredictiveSearchIncludesExactMatch(t *testing.T) {
	// A key equal to the query string is itself a valid predictive
	// match (query is a prefix of itself).
	d, err := Build(context.Background(), keysOf("car", "card"))
	require.NoError(t, err)

	ids, err := d.PredictiveSearch([]byte("car"), 10)
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

func TestQuery_PredictiveSearchNoMatch(t *testing.T) {
	d, err := Build(context.Background(), keysOf("cat", "car"))
	require.NoError(t, err)

	ids, err := d.PredictiveSearch([]byte("dog"), 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestQuery_PredictiveSearchRespectsLimit(t *testing.T) {
	d, err := Build(context.Background(), keysOf("car", "card", "care", "cares"))
	require.NoError(t, err)

	ids, err := d.PredictiveSearch([]byte("car"), 2)
	require.NoError(t, err)
	require.Len(t, ids, 2)
}

// Descent into a tail-compressed suffix must be handled by comparing
// the remaining query bytes against the tail directly.
func TestQuery_PredictiveSearchDescendsIntoTail(t *testing.T) {
	d, err := Build(context.Background(), keysOf("apricot", "apple"), WithTailCompression(true))
	require.NoError(t, err)

	ids, err := d.PredictiveSearch([]byte("apri"), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	got, err := d.Decode(ids[0])
	require.NoError(t, err)
	require.Equal(t, []byte("apricot"), got)

	ids, err = d.PredictiveSearch([]byte("apriz"), 10)
	require.NoError(t, err)
	require.Empty(t, ids)
}
