package packedints

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVector_PushGetRoundTrip(t *testing.T) {
	v := New(11)
	values := []uint64{0, 1, 2047, 1000, 512, 1, 0, 2000}
	for _, x := range values {
		v.Push(x)
	}
	require.Equal(t, len(values), v.Len())
	for i, want := range values {
		require.Equal(t, want, v.Get(i), "index %d", i)
	}
}

func TestVector_Width1(t *testing.T) {
	v := New(1)
	bits := []uint64{1, 0, 1, 1, 0, 0, 1}
	for _, b := range bits {
		v.Push(b)
	}
	for i, want := range bits {
		require.Equal(t, want, v.Get(i))
	}
}

func TestVector_Width64(t *testing.T) {
	v := New(64)
	values := []uint64{0, ^uint64(0), 1 << 63, 123456789012345}
	for _, x := range values {
		v.Push(x)
	}
	for i, want := range values {
		require.Equal(t, want, v.Get(i))
	}
}

func TestVector_TruncatesOversizedValues(t *testing.T) {
	v := New(4)
	v.Push(0xFF) // only low 4 bits kept
	require.Equal(t, uint64(0xF), v.Get(0))
}

func TestVector_SaveLoad(t *testing.T) {
	v := New(13)
	for i := uint64(0); i < 50; i++ {
		v.Push(i * 37 % 8192)
	}

	var buf bytes.Buffer
	require.NoError(t, v.Save(&buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, v.Width(), loaded.Width())
	require.Equal(t, v.Len(), loaded.Len())
	for i := 0; i < v.Len(); i++ {
		require.Equal(t, v.Get(i), loaded.Get(i))
	}
}

func TestBitWidth(t *testing.T) {
	cases := []struct {
		max  uint64
		want int
	}{
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 3},
		{7, 3},
		{8, 4},
		{1023, 10},
		{1024, 11},
	}
	for _, c := range cases {
		require.Equal(t, c.want, BitWidth(c.max), "max=%d", c.max)
	}
}
