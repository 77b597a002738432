package louds

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/succinctgo/uxdict/internal/bitvector"
)

// buildTwoLeafTrie hand-builds the LOUDS topology buildTopology would
// produce for the sorted key set ["a", "b"]: a super-root, a root with
// two single-byte terminal children, and no tails. Traced by hand
// against the trie-construction algorithm to pin down exactly which
// (pos, zeros) states GetChild/GetParent should produce.
func buildTwoLeafTrie(t *testing.T) (*bitvector.BitVector, []byte) {
	t.Helper()
	loud := bitvector.New()
	for _, bit := range []bool{false, true, false, false, true, true, true} {
		loud.Push(bit)
	}
	loud.Build()
	return loud, []byte{'a', 'b'}
}

func TestNavigator_GetChild(t *testing.T) {
	loud, edges := buildTwoLeafTrie(t)
	nav := New(loud, edges)

	pos, zeros := nav.GetChild('a', RootPos, RootZeros)
	require.Equal(t, 5, pos)
	require.Equal(t, 4, zeros)

	pos, zeros = nav.GetChild('b', RootPos, RootZeros)
	require.Equal(t, 6, pos)
	require.Equal(t, 4, zeros)
}

func TestNavigator_GetChildNoMatch(t *testing.T) {
	loud, edges := buildTwoLeafTrie(t)
	nav := New(loud, edges)

	pos, _ := nav.GetChild('z', RootPos, RootZeros)
	require.Equal(t, NotFound, pos)
}

func TestNavigator_GetParentRoundTrip(t *testing.T) {
	loud, edges := buildTwoLeafTrie(t)
	nav := New(loud, edges)

	childPos, childZeros := nav.GetChild('a', RootPos, RootZeros)
	parentPos, parentZeros, label, atRoot := nav.GetParent(childPos, childZeros)
	require.False(t, atRoot)
	require.Equal(t, RootPos, parentPos)
	require.Equal(t, RootZeros, parentZeros)
	require.Equal(t, byte('a'), label)

	_, _, _, atRoot = nav.GetParent(parentPos, parentZeros)
	require.True(t, atRoot)
}

func TestNavigator_OnesIsInvariantDuringSiblingScan(t *testing.T) {
	// Ones(pos, zeros) must stay constant while scanning a node's own
	// children (pos and zeros advance together), and must match the
	// index terminalBV/tailBV expect for that node.
	require.Equal(t, 0, Ones(RootPos, RootZeros))
	require.Equal(t, 0, Ones(RootPos+1, RootZeros+1))
}

func TestNavigator_IsLeaf(t *testing.T) {
	loud, edges := buildTwoLeafTrie(t)
	nav := New(loud, edges)

	childPos, _ := nav.GetChild('a', RootPos, RootZeros)
	require.True(t, nav.IsLeaf(childPos))
	require.False(t, nav.IsLeaf(RootPos))
}
