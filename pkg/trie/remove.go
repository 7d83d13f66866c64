package trie

import (
	"slices"

	"github.com/nibblekv/ptrie/internal/debug"
	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"
)

// Remove is the outcome of [StorageNode.Remove]: exactly one of
// [StorageToBranch], [SingleRemove], or [BranchAlsoRemoved].
type Remove[T any] interface {
	removeOutcome()
}

// StorageToBranch reports that clearing the storage flag was enough: the
// node had two or more children, so it lives on as a branch node. Nothing
// was freed.
type StorageToBranch[T any] struct {
	// Branch is the same node, re-flavored.
	Branch BranchNode[T]
}

// SingleRemove reports that the node itself was freed and nothing else
// changed shape. If the node had a single child, that child took its place
// under the former parent, its partial key extended accordingly.
type SingleRemove[T any] struct {
	// Child is the freed node's only child, re-parented, if it had one.
	Child opt.Option[Handle[T]]

	// UserData is the payload of the freed node.
	UserData T
}

// BranchAlsoRemoved reports that freeing the node left its branch-node
// parent with a single child, so the parent was freed too and the sibling
// spliced up in its place.
type BranchAlsoRemoved[T any] struct {
	// Sibling is the surviving child of the freed branch, re-parented and
	// with its partial key extended.
	Sibling Handle[T]

	// StorageUserData is the payload of the freed storage node.
	StorageUserData T

	// BranchUserData is the payload of the freed branch node.
	BranchUserData T
}

func (StorageToBranch[T]) removeOutcome()   {}
func (SingleRemove[T]) removeOutcome()      {}
func (BranchAlsoRemoved[T]) removeOutcome() {}

// Remove clears the node's storage value, resolving whatever structural
// collapse that forces, and reports which of the three transitions took
// place. The receiver must be discarded.
func (s StorageNode[T]) Remove() Remove[T] {
	t := s.trie

	// With two or more children the node keeps its structural role.
	if t.nodes.Get(s.index).childCount() >= 2 {
		t.nodes.Get(s.index).hasStorageValue = false

		if debug.Enabled {
			t.assertInvariants()
		}

		return StorageToBranch[T]{Branch: BranchNode[T]{s.nodeRef}}
	}

	removed := t.nodes.Free(s.index)
	debug.Assert(removed.hasStorageValue, "trie: Remove on a branch node %d", s.index)

	_, childIndex := removed.soleChild()

	// The single child, if any, takes the removed node's place: it absorbs
	// the removed partial key and its own inbound nibble, and points at
	// the removed node's parent.
	if childIndex != arena.NoIndex {
		child := t.nodes.Get(childIndex)
		debug.Assert(child.parent.Unwrap().V0 == s.index,
			"trie: child %d of removed node %d has a stale parent link", childIndex, s.index)

		child.partialKey = spliceKey(removed.partialKey, child.parent.Unwrap().V1, child.partialKey)
		child.parent = removed.parent
	}

	// singleRemove is true when the parent survives.
	singleRemove := true

	if removed.parent.IsSome() {
		parentIndex, childSlot := removed.parent.Unwrap().Unpack()
		parent := t.nodes.Get(parentIndex)
		debug.Assert(parent.children[childSlot] == s.index,
			"trie: parent %d does not link back to removed node %d", parentIndex, s.index)

		parent.children[childSlot] = childIndex
		singleRemove = parent.hasStorageValue || parent.childCount() >= 2
	} else if childIndex != arena.NoIndex {
		t.root = opt.Some(childIndex)
	} else {
		t.root = opt.None[arena.Index]()
	}

	if singleRemove {
		child := opt.None[Handle[T]]()
		if childIndex != arena.NoIndex {
			child = opt.Some(t.handleAt(childIndex))
		}

		if debug.Enabled {
			t.assertInvariants()
		}

		return SingleRemove[T]{Child: child, UserData: removed.userData}
	}

	// The parent was a branch node and is down to one child: it goes too,
	// and the removed node's sibling splices up into its place.
	parentIndex := removed.parent.Unwrap().V0
	debug.Assert(childIndex == arena.NoIndex,
		"trie: collapsing parent %d of a node that still had a child", parentIndex)

	removedBranch := t.nodes.Free(parentIndex)
	debug.Assert(!removedBranch.hasStorageValue,
		"trie: collapsed parent %d was a storage node", parentIndex)

	_, siblingIndex := removedBranch.soleChild()
	debug.Assert(siblingIndex != arena.NoIndex,
		"trie: collapsed branch %d has no surviving child", parentIndex)

	sibling := t.nodes.Get(siblingIndex)
	debug.Assert(sibling.parent.Unwrap().V0 == parentIndex,
		"trie: sibling %d of removed node has a stale parent link", siblingIndex)

	sibling.partialKey = spliceKey(removedBranch.partialKey, sibling.parent.Unwrap().V1, sibling.partialKey)
	sibling.parent = removedBranch.parent

	if removedBranch.parent.IsSome() {
		grandIndex, siblingSlot := removedBranch.parent.Unwrap().Unpack()
		grand := t.nodes.Get(grandIndex)
		debug.Assert(grand.children[siblingSlot] == parentIndex,
			"trie: grandparent %d does not link back to collapsed branch %d", grandIndex, parentIndex)

		grand.children[siblingSlot] = siblingIndex
	} else {
		t.root = opt.Some(siblingIndex)
	}

	if debug.Enabled {
		t.assertInvariants()
	}

	return BranchAlsoRemoved[T]{
		Sibling:         t.handleAt(siblingIndex),
		StorageUserData: removed.userData,
		BranchUserData:  removedBranch.userData,
	}
}

// spliceKey builds prefix ++ [inbound] ++ suffix, the partial key of a node
// absorbing its freed parent.
func spliceKey(prefix []nibble.Nibble, inbound nibble.Nibble, suffix []nibble.Nibble) []nibble.Nibble {
	key := slices.Clone(prefix)
	key = append(key, inbound)

	return append(key, suffix...)
}
