package trie

import (
	"iter"
	"slices"

	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"

	"github.com/nibblekv/ptrie/pkg/arena"
)

// Handle is a typed reference to a live node in a [Trie]. It is implemented
// by exactly two concrete types, [StorageNode] and [BranchNode], whose
// flavor always reflects the storage flag of the node they point at.
//
// A Handle borrows the trie for as long as it is used: the caller must not
// mutate the trie through any other handle or through the Trie itself while
// holding one, other than via the handle's own operations.
type Handle[T any] interface {
	// Parent returns a handle to this node's parent, or None if this is
	// the root.
	Parent() opt.Option[Handle[T]]

	// Child returns a handle to the child reached through n. On a miss it
	// reports false and the caller keeps using the receiver.
	Child(n nibble.Nibble) (Handle[T], bool)

	// IsRoot reports whether this node is the root of the trie.
	IsRoot() bool

	// FullKey lazily reconstructs the node's full key from the ancestor
	// path.
	FullKey() iter.Seq[nibble.Nibble]

	// PartialKey returns a copy of the node's partial key.
	PartialKey() []nibble.Nibble

	// UserData returns a mutable reference to the node's payload.
	UserData() *T

	// HasStorageValue reports the flavor of the handle: true for
	// [StorageNode], false for [BranchNode].
	HasStorageValue() bool

	nodeIndex() arena.Index
}

// nodeRef is the state shared by both handle flavors: the trie and the
// stable index of the node within its arena.
type nodeRef[T any] struct {
	trie  *Trie[T]
	index arena.Index
}

func (r nodeRef[T]) nodeIndex() arena.Index { return r.index }

func (r nodeRef[T]) Parent() opt.Option[Handle[T]] {
	parent := r.trie.nodes.Get(r.index).parent
	if parent.IsNone() {
		return opt.None[Handle[T]]()
	}

	return opt.Some(r.trie.handleAt(parent.Unwrap().V0))
}

func (r nodeRef[T]) Child(n nibble.Nibble) (Handle[T], bool) {
	child := r.trie.nodes.Get(r.index).children[n]
	if child == arena.NoIndex {
		return nil, false
	}

	return r.trie.handleAt(child), true
}

func (r nodeRef[T]) IsRoot() bool {
	return r.trie.root.IsSomeAnd(func(root arena.Index) bool { return root == r.index })
}

func (r nodeRef[T]) FullKey() iter.Seq[nibble.Nibble] {
	return r.trie.fullKeySeq(r.index)
}

func (r nodeRef[T]) PartialKey() []nibble.Nibble {
	return slices.Clone(r.trie.nodes.Get(r.index).partialKey)
}

func (r nodeRef[T]) UserData() *T {
	return &r.trie.nodes.Get(r.index).userData
}

// StorageNode is a [Handle] to a node known to carry a storage value.
type StorageNode[T any] struct {
	nodeRef[T]
}

// HasStorageValue always reports true for a StorageNode.
func (StorageNode[T]) HasStorageValue() bool { return true }

// BranchNode is a [Handle] to a node known to carry no storage value. Such
// a node exists only to host at least two children (or is the root).
type BranchNode[T any] struct {
	nodeRef[T]
}

// HasStorageValue always reports false for a BranchNode.
func (BranchNode[T]) HasStorageValue() bool { return false }

// InsertStorageValue marks the node as holding a storage value and returns
// the storage-flavored handle to it. The structure of the trie does not
// change. The receiver must be discarded.
func (b BranchNode[T]) InsertStorageValue() StorageNode[T] {
	b.trie.nodes.Get(b.index).hasStorageValue = true

	return StorageNode[T]{b.nodeRef}
}
