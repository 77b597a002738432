package bitvector

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildFromBits(bits []bool) *BitVector {
	b := New()
	for _, bit := range bits {
		b.Push(bit)
	}
	b.Build()
	return b
}

func TestBitVector_GetMatchesPushed(t *testing.T) {
	bits := []bool{true, false, false, true, true, false, true, false, false, false, true}
	b := buildFromBits(bits)
	require.Equal(t, len(bits), b.Size())
	for i, want := range bits {
		require.Equal(t, want, b.Get(i), "index %d", i)
	}
}

func TestBitVector_RankIsHalfOpen(t *testing.T) {
	// bits: 1 0 1 1 0
	b := buildFromBits([]bool{true, false, true, true, false})
	require.Equal(t, 0, b.Rank(0, true))
	require.Equal(t, 1, b.Rank(1, true))
	require.Equal(t, 1, b.Rank(2, true))
	require.Equal(t, 2, b.Rank(3, true))
	require.Equal(t, 3, b.Rank(4, true))
	require.Equal(t, 3, b.Rank(5, true))

	require.Equal(t, 0, b.Rank(0, false))
	require.Equal(t, 0, b.Rank(1, false))
	require.Equal(t, 1, b.Rank(2, false))
}

func TestBitVector_SelectInvertsRank(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bits := make([]bool, 5000)
	for i := range bits {
		bits[i] = rng.Intn(4) == 0
	}
	b := buildFromBits(bits)

	for _, value := range []bool{true, false} {
		total := b.Rank(b.Size(), value)
		for r := 1; r <= total; r++ {
			pos := b.Select(r, value)
			require.GreaterOrEqual(t, pos, 0)
			require.Equal(t, value, b.Get(pos))
			require.Equal(t, r, b.Rank(pos+1, value))
		}
	}
}

func TestBitVector_SelectOutOfRange(t *testing.T) {
	b := buildFromBits([]bool{true, false, true})
	require.Equal(t, -1, b.Select(0, true))
	require.Equal(t, -1, b.Select(3, true))
	require.Equal(t, -1, b.Select(2, false))
}

func TestBitVector_SpansMultipleWordsAndBlocks(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	n := 10000
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = rng.Intn(2) == 0
	}
	b := buildFromBits(bits)

	ones := 0
	for i, bit := range bits {
		if bit {
			ones++
		}
		require.Equal(t, ones, b.Rank(i+1, true), "rank mismatch at %d", i)
	}
}

func TestBitVector_SaveLoadRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bits := make([]bool, 3000)
	for i := range bits {
		bits[i] = rng.Intn(3) == 0
	}
	b := buildFromBits(bits)

	var buf bytes.Buffer
	require.NoError(t, b.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, b.Size(), loaded.Size())
	for i := range bits {
		require.Equal(t, b.Get(i), loaded.Get(i))
	}
	require.Equal(t, b.Rank(b.Size(), true), loaded.Rank(loaded.Size(), true))
}

func TestBitVector_EmptyVector(t *testing.T) {
	b := New()
	b.Build()
	require.Equal(t, 0, b.Size())
	require.Equal(t, 0, b.Rank(0, true))
	require.Equal(t, -1, b.Select(1, true))
}

func TestBitVector_PushAfterBuildPanics(t *testing.T) {
	b := New()
	b.Push(true)
	b.Build()
	require.Panics(t, func() { b.Push(false) })
}
