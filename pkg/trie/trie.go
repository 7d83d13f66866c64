// Package trie implements the structure of a radix-16 (nibble-keyed) trie:
// an in-memory arena of nodes connected by parent/child links, independent
// of any value-storage or hashing layer. It maintains branch-minimality
// (every branch node has at least two children) and hands out borrow-safe
// navigable handles into the structure rather than raw pointers.
package trie

import (
	"iter"
	"slices"

	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"
	"github.com/nibblekv/ptrie/pkg/tuple"
	"github.com/nibblekv/ptrie/pkg/xiter"
)

// parentLink names the node an index is reached from and the nibble that
// reaches it: Some((parentIndex, nibble)) for every node but the root.
type parentLink = tuple.Tuple2[arena.Index, nibble.Nibble]

// record is the data held in every arena slot. It never escapes the
// package; callers observe it only through a Handle.
type record[T any] struct {
	parent          opt.Option[parentLink]
	partialKey      []nibble.Nibble
	children        [nibble.NumValues]arena.Index
	hasStorageValue bool
	userData        T
}

func newRecord[T any](parent opt.Option[parentLink], partialKey []nibble.Nibble, hasStorageValue bool, userData T) record[T] {
	r := record[T]{
		parent:          parent,
		partialKey:      partialKey,
		hasStorageValue: hasStorageValue,
		userData:        userData,
	}

	for i := range r.children {
		r.children[i] = arena.NoIndex
	}

	return r
}

func (r *record[T]) childCount() int {
	n := 0

	for _, c := range r.children {
		if c != arena.NoIndex {
			n++
		}
	}

	return n
}

// soleChild returns the single populated child slot, assuming childCount()
// == 1.
func (r *record[T]) soleChild() (nibble.Nibble, arena.Index) {
	for n, c := range r.children {
		if c != arena.NoIndex {
			return nibble.Nibble(n), c
		}
	}

	return 0, arena.NoIndex
}

// Trie is a radix-16 trie structure: an arena of nodes plus a reference to
// the root.
//
// The zero value is not usable; construct with [New] or [WithCapacity].
type Trie[T any] struct {
	nodes *arena.Arena[record[T]]
	root  opt.Option[arena.Index]
}

// New returns an empty Trie.
func New[T any]() *Trie[T] {
	return &Trie[T]{nodes: arena.New[record[T]](), root: opt.None[arena.Index]()}
}

// WithCapacity returns an empty Trie whose arena is pre-sized to hold n
// nodes without reallocating.
func WithCapacity[T any](n int) *Trie[T] {
	return &Trie[T]{nodes: arena.WithCapacity[record[T]](n), root: opt.None[arena.Index]()}
}

// Shrink releases arena capacity beyond what the currently-live nodes need.
func (t *Trie[T]) Shrink() { t.nodes.Shrink() }

// Len reports the number of nodes currently in the trie (branch and storage
// nodes combined).
func (t *Trie[T]) Len() int { return t.nodes.Len() }

// RootNode returns a Handle to the root node, if the trie is non-empty.
func (t *Trie[T]) RootNode() opt.Option[Handle[T]] {
	if t.root.IsNone() {
		return opt.None[Handle[T]]()
	}

	return opt.Some(t.handleAt(t.root.Unwrap()))
}

func (t *Trie[T]) handleAt(idx arena.Index) Handle[T] {
	if t.nodes.Get(idx).hasStorageValue {
		return StorageNode[T]{nodeRef[T]{trie: t, index: idx}}
	}

	return BranchNode[T]{nodeRef[T]{trie: t, index: idx}}
}

// ExistingNode consumes key and returns a Handle to the node whose full key
// is exactly that sequence, if one exists.
func (t *Trie[T]) ExistingNode(key iter.Seq[nibble.Nibble]) opt.Option[Handle[T]] {
	idx, _, found := t.lookup(slices.Collect(key))
	if !found {
		return opt.None[Handle[T]]()
	}

	return opt.Some(t.handleAt(idx))
}

// lookup is the shared traversal behind ExistingNode and Node: it returns
// the deepest node whose partial key is consistent with key, whether key
// was fully consumed by an exact match (found), and - when not found - the
// closest existing ancestor of where key would be inserted.
//
// closestAncestor is only advanced to a node once that node's own partial
// key has matched in full and a child lookup is about to be attempted,
// never on the node at which the mismatch itself occurs.
func (t *Trie[T]) lookup(key []nibble.Nibble) (idx arena.Index, closestAncestor opt.Option[arena.Index], found bool) {
	closestAncestor = opt.None[arena.Index]()

	if t.root.IsNone() {
		return arena.NoIndex, closestAncestor, false
	}

	cur := t.root.Unwrap()
	rest := key

	for {
		rec := t.nodes.Get(cur)

		n := commonPrefixLen(rest, rec.partialKey)
		if n < len(rec.partialKey) {
			return cur, closestAncestor, false
		}

		rest = rest[n:]

		if len(rest) == 0 {
			return cur, closestAncestor, true
		}

		closestAncestor = opt.Some(cur)

		child := rec.children[rest[0]]
		if child == arena.NoIndex {
			return cur, closestAncestor, false
		}

		cur = child
		rest = rest[1:]
	}
}

func commonPrefixLen(a, b []nibble.Nibble) int {
	n := min(len(a), len(b))

	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}

	return n
}

// fullKeySlice materializes the full key of the node at idx by walking
// parent links back to the root and reversing. It is the non-lazy sibling
// of [Trie.fullKeySeq], used internally wherever a concrete []nibble.Nibble
// is required.
func (t *Trie[T]) fullKeySlice(idx arena.Index) []nibble.Nibble {
	segments := t.reversePathSegments(idx)

	var out []nibble.Nibble

	for i := len(segments) - 1; i >= 0; i-- {
		out = append(out, segments[i]...)
	}

	return out
}

// reversePathSegments walks from idx up to the root, collecting each node's
// inbound nibble (if any) followed by its partial key, in root-to-idx
// order reversed (i.e. idx's segment first, root's segment last).
func (t *Trie[T]) reversePathSegments(idx arena.Index) [][]nibble.Nibble {
	var segments [][]nibble.Nibble

	cur := idx

	for {
		rec := t.nodes.Get(cur)

		if rec.parent.IsNone() {
			segments = append(segments, rec.partialKey)

			return segments
		}

		link := rec.parent.Unwrap()
		segments = append(segments, append([]nibble.Nibble{link.V1}, rec.partialKey...))
		cur = link.V0
	}
}

// fullKeySeq lazily reconstructs the full key of the node at idx as a
// sequence, avoiding an intermediate slice allocation when the caller only
// needs to range over it.
func (t *Trie[T]) fullKeySeq(idx arena.Index) iter.Seq[nibble.Nibble] {
	segments := t.reversePathSegments(idx)

	seqs := make([]iter.Seq[nibble.Nibble], len(segments))
	for i, seg := range segments {
		seqs[len(segments)-1-i] = slices.Values(seg)
	}

	return xiter.Chain(seqs...)
}

// reversePath returns the ancestor indices of idx, from its parent up to
// and including the root. Empty iff idx is the root.
func (t *Trie[T]) reversePath(idx arena.Index) []arena.Index {
	var path []arena.Index

	cur := t.nodes.Get(idx).parent

	for cur.IsSome() {
		p := cur.Unwrap().V0
		path = append(path, p)
		cur = t.nodes.Get(p).parent
	}

	return path
}

// path returns the same indices as [Trie.reversePath], in root-to-parent
// order.
func (t *Trie[T]) path(idx arena.Index) []arena.Index {
	path := t.reversePath(idx)
	slices.Reverse(path)

	return path
}

// Node returns an Entry describing whether key names an existing node or a
// point where one could be inserted.
func (t *Trie[T]) Node(key []nibble.Nibble) Entry[T] {
	idx, closest, found := t.lookup(key)
	if found {
		return occupiedEntry(t.handleAt(idx))
	}

	return vacantEntry(Vacant[T]{trie: t, key: slices.Clone(key), closestAncestor: closest})
}
