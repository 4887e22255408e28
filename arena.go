package bpt

import (
	"fmt"

	"tlog.app/go/loc"
)

const NilNode = -1

type (
	node struct {
		leaf bool

		parent int64
		next   int64 // leaf chain
		child0 int64 // leftmost child of an internal node

		s Store // internal: Key(i) = min(subtree(Value(i))); leaf: values unused
	}

	// arena owns tree nodes addressed by handles.
	// Freed slots are reused before the slice grows.
	arena struct {
		nodes []node
		free  []int64

		live int
	}
)

func (a *arena) alloc(leaf bool, s Store) int64 {
	n := node{
		leaf:   leaf,
		parent: NilNode,
		next:   NilNode,
		child0: NilNode,
		s:      s,
	}

	a.live++

	if l := len(a.free); l != 0 {
		id := a.free[l-1]
		a.free = a.free[:l-1]

		a.nodes[id] = n

		return id
	}

	a.nodes = append(a.nodes, n)

	return int64(len(a.nodes) - 1)
}

// release frees the node's store and puts the slot to the free list.
func (a *arena) release(id int64) {
	x := a.node(id)

	x.s.Free()
	*x = node{}

	a.free = append(a.free, id)
	a.live--
}

func (a *arena) node(id int64) *node {
	if id < 0 || id >= int64(len(a.nodes)) || a.nodes[id].s == nil {
		panic(fmt.Sprintf("bad node handle %d (%v)", id, loc.Caller(1)))
	}

	return &a.nodes[id]
}

func (a *arena) reset() {
	a.nodes = nil
	a.free = nil
	a.live = 0
}
