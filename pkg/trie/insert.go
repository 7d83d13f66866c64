package trie

import (
	"iter"
	"slices"

	"github.com/nibblekv/ptrie/internal/debug"
	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/either"
	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"
	"github.com/nibblekv/ptrie/pkg/tuple"
	"github.com/nibblekv/ptrie/pkg/xiter"
)

func noChildren() (children [nibble.NumValues]arena.Index) {
	for i := range children {
		children[i] = arena.NoIndex
	}

	return children
}

// InsertStorageValue analyzes the trie and produces the plan for creating a
// storage node at this entry's key. Nothing is mutated until the plan's
// Insert is called; the plan may safely be dropped instead.
func (v Vacant[T]) InsertStorageValue() PrepareInsert[T] {
	// The parent the new node would hang from, ignoring any branching for
	// now: the closest ancestor together with the length of its full key.
	var futureParent opt.Option[tuple.Tuple2[arena.Index, int]]

	switch {
	case v.closestAncestor.IsSome():
		ancestor := v.closestAncestor.Unwrap()
		ancestorKeyLen := len(v.trie.fullKeySlice(ancestor))
		debug.Assert(len(v.key) > ancestorKeyLen,
			"trie: vacant key %v does not extend its closest ancestor", v.key)

		futureParent = opt.Some(tuple.New2(ancestor, ancestorKeyLen))

	case v.trie.root.IsSome():
		// No ancestor matched, so the new node competes with the current
		// root for the top of the trie.
		futureParent = opt.None[tuple.Tuple2[arena.Index, int]]()

	default:
		// Empty trie: the new node becomes the root.
		return onePlan(OnePlan[T]{
			trie:       v.trie,
			parent:     opt.None[parentLink](),
			partialKey: slices.Clone(v.key),
			children:   noChildren(),
		})
	}

	// Find the existing node occupying the slot the new node wants, or
	// return early if the slot is free.
	var existingNodeIndex arena.Index

	parent := opt.None[parentLink]()

	if futureParent.IsSome() {
		parentIndex, parentKeyLen := futureParent.Unwrap().Unpack()
		childSlot := v.key[parentKeyLen]
		parent = opt.Some(tuple.New2(parentIndex, childSlot))

		existing := v.trie.nodes.Get(parentIndex).children[childSlot]
		if existing == arena.NoIndex {
			return onePlan(OnePlan[T]{
				trie:       v.trie,
				parent:     parent,
				partialKey: slices.Clone(v.key[parentKeyLen+1:]),
				children:   noChildren(),
			})
		}

		debug.Assert(v.trie.nodes.Get(existing).parent.Unwrap().V0 == parentIndex,
			"trie: child %d of node %d has a stale parent link", childSlot, parentIndex)

		existingNodeIndex = existing
	} else {
		existingNodeIndex = v.trie.root.Unwrap()
	}

	// The existing node and the new node share a parent and a child slot
	// (or are both parentless), so they are told apart by their partial
	// keys.
	existingPartialKey := v.trie.nodes.Get(existingNodeIndex).partialKey

	newPartialKey := v.key
	if futureParent.IsSome() {
		newPartialKey = v.key[futureParent.Unwrap().V1+1:]
	}

	prefixLen := commonPrefixLen(newPartialKey, existingPartialKey)
	debug.Assert(prefixLen < len(existingPartialKey),
		"trie: lookup stopped above a node whose key matches %v", v.key)

	// The new node's partial key is a strict prefix of the existing one's:
	// the new node slots in between the future parent and the existing
	// node, adopting it as its only child.
	if prefixLen == len(newPartialKey) {
		children := noChildren()
		children[existingPartialKey[len(newPartialKey)]] = existingNodeIndex

		return onePlan(OnePlan[T]{
			trie:       v.trie,
			parent:     parent,
			partialKey: slices.Clone(newPartialKey),
			children:   children,
		})
	}

	// The two partial keys diverge: a branch node takes the common prefix,
	// with the existing node and the new storage node as its two children.
	branchChildren := noChildren()
	branchChildren[existingPartialKey[prefixLen]] = existingNodeIndex

	return twoPlan(TwoPlan[T]{
		trie:              v.trie,
		storageChildIndex: newPartialKey[prefixLen],
		storagePartialKey: slices.Clone(newPartialKey[prefixLen+1:]),
		branchParent:      parent,
		branchPartialKey:  slices.Clone(newPartialKey[:prefixLen]),
		branchChildren:    branchChildren,
	})
}

// PrepareInsert is a deferred insertion plan: one new storage node (Left)
// or a new branch node plus a new storage node (Right). The trie is
// untouched until Insert is called.
type PrepareInsert[T any] struct {
	either.Either[OnePlan[T], TwoPlan[T]]
}

func onePlan[T any](p OnePlan[T]) PrepareInsert[T] {
	return PrepareInsert[T]{either.Left[OnePlan[T], TwoPlan[T]](p)}
}

func twoPlan[T any](p TwoPlan[T]) PrepareInsert[T] {
	return PrepareInsert[T]{either.Right[OnePlan[T]](p)}
}

// AsTwo projects the plan onto its two-node variant, for callers that want
// to inspect the branch node before committing.
func (p PrepareInsert[T]) AsTwo() opt.Option[TwoPlan[T]] { return opt.Wrap(p.Right) }

// Insert commits the plan and returns a handle to the new storage node.
//
// branchUserData is silently discarded when the plan creates a single node.
func (p PrepareInsert[T]) Insert(storageUserData, branchUserData T) StorageNode[T] {
	if p.HasLeft() {
		return p.Left.insert(storageUserData)
	}

	return p.Right.insert(storageUserData, branchUserData)
}

// OnePlan inserts a single storage node: at the root of an empty trie, in a
// free child slot, or in between a parent and its existing child when the
// new key stops short inside that child's partial key.
type OnePlan[T any] struct {
	trie *Trie[T]

	// Parent link of the new node; None also makes it the root.
	parent     opt.Option[parentLink]
	partialKey []nibble.Nibble

	// At most one slot is set: the pre-existing node the new one displaces
	// downward.
	children [nibble.NumValues]arena.Index
}

func (p *OnePlan[T]) insert(userData T) StorageNode[T] {
	t := p.trie
	newKeyLen := len(p.partialKey)

	newIndex := t.nodes.Alloc(record[T]{
		parent:          p.parent,
		partialKey:      p.partialKey,
		children:        p.children,
		hasStorageValue: true,
		userData:        userData,
	})

	// Any displaced child now hangs off the new node: the new node owns
	// the first newKeyLen nibbles of its former partial key, plus the one
	// selecting its slot.
	for n, c := range p.children {
		if c == arena.NoIndex {
			continue
		}

		child := t.nodes.Get(c)
		child.parent = opt.Some(tuple.New2(newIndex, nibble.Nibble(n)))
		child.partialKey = slices.Clone(child.partialKey[newKeyLen+1:])
	}

	if p.parent.IsSome() {
		parentIndex, childSlot := p.parent.Unwrap().Unpack()
		t.nodes.Get(parentIndex).children[childSlot] = newIndex
	} else {
		t.root = opt.Some(newIndex)
	}

	if debug.Enabled {
		t.assertInvariants()
	}

	return StorageNode[T]{nodeRef[T]{trie: t, index: newIndex}}
}

// TwoPlan inserts a branch node and, under it, a storage node. The branch
// takes over the slot where an existing node used to attach; that node and
// the new storage node become its two children.
type TwoPlan[T any] struct {
	trie *Trie[T]

	// Child slot and partial key of the new storage node under the branch.
	storageChildIndex nibble.Nibble
	storagePartialKey []nibble.Nibble

	// Parent link of the new branch node; None also makes it the root.
	branchParent     opt.Option[parentLink]
	branchPartialKey []nibble.Nibble

	// Exactly one slot is set: the existing node the branch displaces. The
	// new storage node's slot is filled at commit time.
	branchChildren [nibble.NumValues]arena.Index
}

// BranchNodeKey returns the full key the new branch node will have once
// the plan commits, letting callers annotate the two new nodes distinctly
// beforehand.
func (p TwoPlan[T]) BranchNodeKey() iter.Seq[nibble.Nibble] {
	if p.branchParent.IsNone() {
		return slices.Values(p.branchPartialKey)
	}

	parentIndex, childSlot := p.branchParent.Unwrap().Unpack()

	return xiter.Chain(
		p.trie.fullKeySeq(parentIndex),
		xiter.Once(childSlot),
		slices.Values(p.branchPartialKey),
	)
}

func (p *TwoPlan[T]) insert(storageUserData, branchUserData T) StorageNode[T] {
	t := p.trie
	branchKeyLen := len(p.branchPartialKey)

	branchIndex := t.nodes.Alloc(record[T]{
		parent:          p.branchParent,
		partialKey:      p.branchPartialKey,
		children:        p.branchChildren,
		hasStorageValue: false,
		userData:        branchUserData,
	})

	storageIndex := t.nodes.Alloc(newRecord(
		opt.Some(tuple.New2(branchIndex, p.storageChildIndex)),
		p.storagePartialKey,
		true,
		storageUserData,
	))

	t.nodes.Get(branchIndex).children[p.storageChildIndex] = storageIndex

	// The displaced node now hangs off the branch.
	for n, c := range p.branchChildren {
		if c == arena.NoIndex {
			continue
		}

		child := t.nodes.Get(c)
		child.parent = opt.Some(tuple.New2(branchIndex, nibble.Nibble(n)))
		child.partialKey = slices.Clone(child.partialKey[branchKeyLen+1:])
	}

	if p.branchParent.IsSome() {
		parentIndex, childSlot := p.branchParent.Unwrap().Unpack()
		t.nodes.Get(parentIndex).children[childSlot] = branchIndex
	} else {
		t.root = opt.Some(branchIndex)
	}

	if debug.Enabled {
		t.assertInvariants()
	}

	return StorageNode[T]{nodeRef[T]{trie: t, index: storageIndex}}
}
