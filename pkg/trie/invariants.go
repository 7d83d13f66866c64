package trie

import (
	"fmt"

	"github.com/nibblekv/ptrie/pkg/arena"
	"github.com/nibblekv/ptrie/pkg/nibble"
	"github.com/nibblekv/ptrie/pkg/opt"
)

// checkInvariants walks the whole structure and verifies the five
// invariants every completed mutation must preserve: an empty root means an
// empty arena, parent/child links agree, non-root branch nodes have at
// least two children, full keys are pairwise distinct, and every arena slot
// is reachable from the root.
func (t *Trie[T]) checkInvariants() error {
	if t.root.IsNone() {
		if n := t.nodes.Len(); n != 0 {
			return fmt.Errorf("trie: no root but %d nodes in the arena", n)
		}

		return nil
	}

	seen := 0
	keys := make(map[string]arena.Index, t.nodes.Len())

	var walk func(idx arena.Index, parent opt.Option[parentLink]) error

	walk = func(idx arena.Index, parent opt.Option[parentLink]) error {
		seen++
		rec := t.nodes.Get(idx)

		switch {
		case rec.parent.IsSome() != parent.IsSome():
			return fmt.Errorf("trie: node %d parent link disagrees with its reachability", idx)
		case parent.IsSome() && rec.parent.Unwrap() != parent.Unwrap():
			return fmt.Errorf("trie: node %d recorded parent %v, reached via %v",
				idx, rec.parent.Unwrap(), parent.Unwrap())
		}

		if !rec.hasStorageValue && parent.IsSome() && rec.childCount() < 2 {
			return fmt.Errorf("trie: non-root branch node %d has %d children", idx, rec.childCount())
		}

		key := nibbleString(t.fullKeySlice(idx))
		if dup, ok := keys[key]; ok {
			return fmt.Errorf("trie: nodes %d and %d share the full key %q", dup, idx, key)
		}

		keys[key] = idx

		for n, c := range rec.children {
			if c == arena.NoIndex {
				continue
			}

			link := opt.Some(parentLink{V0: idx, V1: nibble.Nibble(n)})
			if err := walk(c, link); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(t.root.Unwrap(), opt.None[parentLink]()); err != nil {
		return err
	}

	if seen != t.nodes.Len() {
		return fmt.Errorf("trie: %d nodes reachable from the root, %d in the arena", seen, t.nodes.Len())
	}

	return nil
}

// assertInvariants panics on a broken invariant. Mutation paths call it
// only in debug builds.
func (t *Trie[T]) assertInvariants() {
	if err := t.checkInvariants(); err != nil {
		panic(err)
	}
}

func nibbleString(key []nibble.Nibble) string {
	bs := make([]byte, len(key))
	for i, n := range key {
		bs[i] = n.Byte()
	}

	return string(bs)
}
