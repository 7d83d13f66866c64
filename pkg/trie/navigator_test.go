package trie

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/nibble"
)

// buildTestTrie returns a trie shaped as:
//
//	root branch "12" ── slot 3 ── storage ""      (key 123)
//	              └─── slot 5 ── storage ""      (key 125)
//	                               └─ slot 7 ── storage ""  (key 1257)
func buildTestTrie(t *testing.T) *Trie[string] {
	t.Helper()

	tr := New[string]()

	for _, key := range [][]nibble.Nibble{
		testNibbles(1, 2, 3),
		testNibbles(1, 2, 5),
		testNibbles(1, 2, 5, 7),
	} {
		tr.Node(key).AsVacant().Unwrap().InsertStorageValue().Insert("", "")
	}

	require.NoError(t, tr.checkInvariants())

	return tr
}

func (t *Trie[T]) indexOf(tb testing.TB, key []nibble.Nibble) arena.Index {
	tb.Helper()

	idx, _, found := t.lookup(key)
	require.True(tb, found, "no node at %v", key)

	return idx
}

func TestReversePath(t *testing.T) {
	tr := buildTestTrie(t)

	root := tr.root.Unwrap()
	mid := tr.indexOf(t, testNibbles(1, 2, 5))
	deep := tr.indexOf(t, testNibbles(1, 2, 5, 7))

	assert.Empty(t, tr.reversePath(root))
	assert.Equal(t, []arena.Index{root}, tr.reversePath(mid))
	assert.Equal(t, []arena.Index{mid, root}, tr.reversePath(deep))
}

func TestPath(t *testing.T) {
	tr := buildTestTrie(t)

	root := tr.root.Unwrap()
	mid := tr.indexOf(t, testNibbles(1, 2, 5))
	deep := tr.indexOf(t, testNibbles(1, 2, 5, 7))

	assert.Empty(t, tr.path(root))
	assert.Equal(t, []arena.Index{root, mid}, tr.path(deep))
}

func TestFullKeyReconstruction(t *testing.T) {
	tr := buildTestTrie(t)

	deep := tr.indexOf(t, testNibbles(1, 2, 5, 7))

	assert.Equal(t, testNibbles(1, 2, 5, 7), tr.fullKeySlice(deep))
	assert.Equal(t, testNibbles(1, 2, 5, 7), slices.Collect(tr.fullKeySeq(deep)))

	root := tr.root.Unwrap()
	assert.Equal(t, testNibbles(1, 2), tr.fullKeySlice(root))
}

func TestFullKeySeqEarlyStop(t *testing.T) {
	tr := buildTestTrie(t)

	deep := tr.indexOf(t, testNibbles(1, 2, 5, 7))

	// A partial range over the sequence must not panic or over-yield.
	var first []nibble.Nibble

	for n := range tr.fullKeySeq(deep) {
		first = append(first, n)
		if len(first) == 2 {
			break
		}
	}

	assert.Equal(t, testNibbles(1, 2), first)
}

func TestLookupClosestAncestor(t *testing.T) {
	tr := buildTestTrie(t)

	root := tr.root.Unwrap()
	mid := tr.indexOf(t, testNibbles(1, 2, 5))

	// Mismatch inside the root's partial key: no ancestor was fully
	// matched and descended past.
	_, closest, found := tr.lookup(testNibbles(1))
	assert.False(t, found)
	assert.True(t, closest.IsNone())

	_, closest, found = tr.lookup(testNibbles(1, 9))
	assert.False(t, found)
	assert.True(t, closest.IsNone())

	// Missing child slot: the current node is the closest ancestor.
	_, closest, found = tr.lookup(testNibbles(1, 2, 9))
	assert.False(t, found)
	assert.Equal(t, root, closest.Unwrap())

	_, closest, found = tr.lookup(testNibbles(1, 2, 5, 9))
	assert.False(t, found)
	assert.Equal(t, mid, closest.Unwrap())

	// Missing child slot at the end of a fully-matched chain: the deepest
	// node descended to is the closest ancestor.
	deep := tr.indexOf(t, testNibbles(1, 2, 5, 7))
	_, closest, found = tr.lookup(testNibbles(1, 2, 5, 7, 1))
	assert.False(t, found)
	assert.Equal(t, deep, closest.Unwrap())
}

func TestSoleChild(t *testing.T) {
	tr := buildTestTrie(t)

	mid := tr.indexOf(t, testNibbles(1, 2, 5))
	n, child := tr.nodes.Get(mid).soleChild()
	assert.Equal(t, nibble.Nibble(7), n)
	assert.Equal(t, tr.indexOf(t, testNibbles(1, 2, 5, 7)), child)

	assert.Equal(t, 1, tr.nodes.Get(mid).childCount())
	assert.Equal(t, 2, tr.nodes.Get(tr.root.Unwrap()).childCount())
}
