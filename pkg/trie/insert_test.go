package trie_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibblekv/ptrie/pkg/trie"
)

func TestInsertIntoEmptyTrie(t *testing.T) {
	tr := trie.New[string]()

	plan := tr.Node(nibbles(1, 2, 3)).AsVacant().Unwrap().InsertStorageValue()
	assert.True(t, plan.AsTwo().IsNone(), "the first insertion never needs a branch node")

	node := plan.Insert("abc", "discarded")
	assert.Equal(t, 1, tr.Len())
	assert.True(t, node.IsRoot())
	assert.Equal(t, nibbles(1, 2, 3), node.PartialKey())
	assert.Equal(t, "abc", *node.UserData())
}

func TestInsertIntoFreeChildSlot(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "a", 1, 2, 3)

	plan := tr.Node(nibbles(1, 2, 3, 4, 5)).AsVacant().Unwrap().InsertStorageValue()
	assert.True(t, plan.AsTwo().IsNone())

	node := plan.Insert("b", "discarded")
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, nibbles(5), node.PartialKey(), "the slot nibble is owned by the parent link")
	assert.Equal(t, nibbles(1, 2, 3, 4, 5), fullKey(node))

	parent := node.Parent()
	require.True(t, parent.IsSome())
	assert.True(t, parent.Unwrap().HasStorageValue())
	assert.Equal(t, nibbles(1, 2, 3), fullKey(parent.Unwrap()))
}

func TestInsertNewParentOfExistingNode(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "long", 1, 2, 3)

	// The whole key is a strict prefix of the existing root's partial key,
	// so the new node takes the existing one as its only child. No branch
	// node is involved.
	plan := tr.Node(nibbles(1)).AsVacant().Unwrap().InsertStorageValue()
	assert.True(t, plan.AsTwo().IsNone())

	node := plan.Insert("short", "discarded")
	assert.Equal(t, 2, tr.Len())
	assert.True(t, node.IsRoot())
	assert.Equal(t, nibbles(1), node.PartialKey())

	child, ok := node.Child(2)
	require.True(t, ok)
	assert.True(t, child.HasStorageValue())
	assert.Equal(t, nibbles(3), child.PartialKey())
	assert.Equal(t, nibbles(1, 2, 3), fullKey(child))
}

func TestInsertBranchSplit(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "a", 1, 2, 3)

	plan := tr.Node(nibbles(1, 2, 5)).AsVacant().Unwrap().InsertStorageValue()

	two := plan.AsTwo()
	require.True(t, two.IsSome(), "diverging keys need a branch node")
	branchKey := two.Unwrap().BranchNodeKey()
	assert.Equal(t, nibbles(1, 2), slices.Collect(branchKey))

	node := plan.Insert("b", "split")
	assert.Equal(t, 3, tr.Len())
	assert.Empty(t, node.PartialKey())
	assert.Equal(t, nibbles(1, 2, 5), fullKey(node))

	root := tr.RootNode().Unwrap()
	assert.False(t, root.HasStorageValue())
	assert.Equal(t, nibbles(1, 2), root.PartialKey())
	assert.Equal(t, "split", *root.UserData())

	left, ok := root.Child(3)
	require.True(t, ok)
	assert.Empty(t, left.PartialKey())
	assert.Equal(t, "a", *left.UserData())
}

func TestInsertBranchSplitBelowRoot(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "root", 1)
	insert(t, tr, "a", 1, 2, 3)

	plan := tr.Node(nibbles(1, 2, 5)).AsVacant().Unwrap().InsertStorageValue()

	two := plan.AsTwo()
	require.True(t, two.IsSome())
	assert.Equal(t, nibbles(1, 2), slices.Collect(two.Unwrap().BranchNodeKey()),
		"the branch key includes the parent's full key and the inbound nibble")

	plan.Insert("b", "split")
	assert.Equal(t, 4, tr.Len())

	branch := tr.Node(nibbles(1, 2)).AsOccupied()
	require.True(t, branch.IsSome())
	assert.False(t, branch.Unwrap().HasStorageValue())
	assert.Empty(t, branch.Unwrap().PartialKey())

	parent := branch.Unwrap().Parent()
	require.True(t, parent.IsSome())
	assert.True(t, parent.Unwrap().IsRoot())
}

func TestInsertFirstNibbleDivergence(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "a", 1, 2, 3)
	insert(t, tr, "b", 5, 6)

	root := tr.RootNode().Unwrap()
	assert.False(t, root.HasStorageValue())
	assert.Empty(t, root.PartialKey())

	left, ok := root.Child(1)
	require.True(t, ok)
	assert.Equal(t, nibbles(2, 3), left.PartialKey())

	right, ok := root.Child(5)
	require.True(t, ok)
	assert.Equal(t, nibbles(6), right.PartialKey())
}

func TestInsertPrefixPairNeedsNoBranch(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "short", 1, 2)
	insert(t, tr, "long", 1, 2, 3, 4)

	assert.Equal(t, 2, tr.Len(), "a key extending another reuses it as parent")

	short := tr.Node(nibbles(1, 2)).AsOccupied()
	require.True(t, short.IsSome())
	assert.True(t, short.Unwrap().HasStorageValue())

	long, ok := short.Unwrap().Child(3)
	require.True(t, ok)
	assert.Equal(t, nibbles(4), long.PartialKey())
}

func TestInsertStorageValueOnBranchNode(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "a", 1, 2, 3)
	insert(t, tr, "b", 1, 2, 5)

	branch, ok := tr.RootNode().Unwrap().(trie.BranchNode[string])
	require.True(t, ok)

	storage := branch.InsertStorageValue()
	assert.True(t, storage.HasStorageValue())
	assert.Equal(t, 3, tr.Len(), "flipping the flag adds no node")

	occupied := tr.Node(nibbles(1, 2)).AsOccupied()
	require.True(t, occupied.IsSome())
	assert.True(t, occupied.Unwrap().HasStorageValue())
}

func TestPlanIsDeferred(t *testing.T) {
	tr := trie.New[string]()
	insert(t, tr, "a", 1, 2, 3)

	// Building a plan and dropping it must leave the trie untouched.
	tr.Node(nibbles(1, 2, 5)).AsVacant().Unwrap().InsertStorageValue()

	assert.Equal(t, 1, tr.Len())
	assert.True(t, tr.Node(nibbles(1, 2, 5)).IsVacant())
}
