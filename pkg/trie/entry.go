package trie

import (
	"slices"

	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/either"
	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"
)

// Entry is the result of [Trie.Node]: either an existing node at exactly
// the requested key (Right), or a vacant insertion site (Left).
type Entry[T any] struct {
	either.Either[Vacant[T], Handle[T]]
}

func occupiedEntry[T any](h Handle[T]) Entry[T] {
	return Entry[T]{either.Right[Vacant[T]](h)}
}

func vacantEntry[T any](v Vacant[T]) Entry[T] {
	return Entry[T]{either.Left[Vacant[T], Handle[T]](v)}
}

// IsOccupied reports whether the entry names an existing node.
func (e Entry[T]) IsOccupied() bool { return e.HasRight() }

// IsVacant reports whether the entry names a point where a node could be
// inserted.
func (e Entry[T]) IsVacant() bool { return e.HasLeft() }

// AsOccupied projects the entry onto its occupied variant.
func (e Entry[T]) AsOccupied() opt.Option[Handle[T]] { return opt.Wrap(e.Right) }

// AsVacant projects the entry onto its vacant variant.
func (e Entry[T]) AsVacant() opt.Option[Vacant[T]] { return opt.Wrap(e.Left) }

// Vacant describes a key with no node, together with the deepest existing
// node whose full key is a proper prefix of it. Inserting at the key makes
// that node the parent, or the grandparent when a branch node has to be
// interposed.
type Vacant[T any] struct {
	trie            *Trie[T]
	key             []nibble.Nibble
	closestAncestor opt.Option[arena.Index]
}

// Key returns a copy of the key this entry was looked up with.
func (v Vacant[T]) Key() []nibble.Nibble { return slices.Clone(v.key) }
