package ux

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 4: single key ["hello"].
func TestDecode_SingleKeyWithTail(t *testing.T) {
	d, err := Build(context.Background(), keysOf("hello"))
	require.NoError(t, err)
	require.Equal(t, 1, d.GetKeyNum())

	got, err := d.Decode(0)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestDecode_InvalidID(t *testing.T) {
	d, err := Build(context.Background(), keysOf("a", "b"))
	require.NoError(t, err)

	_, err = d.Decode(-1)
	require.Error(t, err)

	_, err = d.Decode(2)
	require.Error(t, err)
}

func TestDecode_NotReady(t *testing.T) {
	var d *Dictionary
	_, err := d.Decode(0)
	require.ErrorIs(t, err, ErrNotReady)
}
