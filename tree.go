package bpt

import (
	"fmt"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

var checkTree func(t *Tree)

type (
	// Tree is a B+ tree of unique int64 keys.
	//
	// Internal node separators are copies of the minimum key of the subtree to their right:
	// Key(i) == min(subtree(Value(i))), and child0 holds everything below Key(0).
	// Leaves are chained in key order.
	Tree struct {
		arena

		newStore StoreFunc

		order   int
		maxKeys int

		root int64
		n    int

		destroyed bool

		// MaxNodes limits the number of live nodes. Zero means no limit.
		// Insert fails with ErrOutOfMemory rather than exceed it.
		MaxNodes int
	}
)

// New creates a tree of the given order (max children of a node) with nodes stored in k.
// Orders less than 3 are raised to 3.
func New(order int, k Kind) (*Tree, error) {
	f, err := k.StoreFunc()
	if err != nil {
		return nil, err
	}

	return NewStoreFunc(order, f), nil
}

// NewStoreFunc creates a tree which creates node stores with f.
func NewStoreFunc(order int, f StoreFunc) *Tree {
	if order < 3 {
		order = 3
	}

	t := &Tree{
		newStore: f,
		order:    order,
		maxKeys:  order - 1,
	}

	t.root = t.newNode(true)

	return t
}

func (t *Tree) Len() int   { return t.n }
func (t *Tree) Order() int { return t.order }

// Nodes is the number of live nodes.
func (t *Tree) Nodes() int { return t.live }

func (t *Tree) Search(k int64) bool {
	if t.destroyed {
		return false
	}

	leaf := t.findLeaf(k)
	_, eq := t.leafFind(leaf, k)

	return eq
}

// Insert adds k to the tree. Inserting an existing key does nothing.
// The only error is ErrOutOfMemory when MaxNodes does not allow the tree to grow,
// in which case the tree is left untouched.
func (t *Tree) Insert(k int64) error {
	if t.destroyed {
		return ErrDestroyed
	}

	leaf := t.findLeaf(k)

	i, eq := t.leafFind(leaf, k)
	if eq {
		return nil
	}

	if need := t.growth(leaf); t.MaxNodes > 0 && t.live+need > t.MaxNodes {
		if tl != nil {
			tl.Printw("insert refused", "key", k, "need", need, "live", t.live, "max", t.MaxNodes)
		}

		return errors.Wrap(ErrOutOfMemory, "insert %d: need %d more nodes, have %d of %d", k, need, t.live, t.MaxNodes)
	}

	x := t.node(leaf)

	x.s.Insert(i, k, NilNode)
	t.n++

	if i == 0 {
		t.fixMin(leaf)
	}

	if x.s.Size() > t.maxKeys {
		t.splitLeaf(leaf)
	}

	t.checkHook()

	return nil
}

// Delete removes k from the tree. Deleting a missing key does nothing.
func (t *Tree) Delete(k int64) {
	if t.destroyed {
		return
	}

	leaf := t.findLeaf(k)

	i, eq := t.leafFind(leaf, k)
	if !eq {
		return
	}

	x := t.node(leaf)

	x.s.Delete(i)
	t.n--

	if i == 0 && x.s.Size() != 0 {
		t.fixMin(leaf)
	}

	t.rebalance(leaf)

	t.checkHook()
}

// Height is the number of levels. A tree with a single leaf has height 1.
// Destroyed tree has height 0.
func (t *Tree) Height() (h int) {
	if t.destroyed {
		return 0
	}

	for id := t.root; ; h++ {
		x := t.node(id)
		if x.leaf {
			return h + 1
		}

		id = x.child0
	}
}

// Destroy frees all the nodes. The tree must not be used afterwards.
func (t *Tree) Destroy() {
	if t.destroyed {
		return
	}

	t.destroy(t.root)

	if t.live != 0 {
		panic(fmt.Sprintf("%d nodes leaked (%v)", t.live, loc.Caller(1)))
	}

	t.arena.reset()
	t.root = NilNode
	t.n = 0
	t.destroyed = true
}

// Walk calls f for every key in ascending order following the leaf chain.
// It stops when f returns false.
func (t *Tree) Walk(f func(k int64) bool) {
	if t.destroyed {
		return
	}

	for id := t.first(); id != NilNode; {
		x := t.node(id)

		for i := 0; i < x.s.Size(); i++ {
			if !f(x.s.Key(i)) {
				return
			}
		}

		id = x.next
	}
}

func (t *Tree) destroy(id int64) {
	x := t.node(id)

	if !x.leaf {
		t.destroy(x.child0)

		for i := 0; i < x.s.Size(); i++ {
			t.destroy(x.s.Value(i))
		}
	}

	t.release(id)
}

func (t *Tree) newNode(leaf bool) int64 {
	return t.alloc(leaf, t.newStore(t.maxKeys+1))
}

// findLeaf descends to the leaf k belongs to.
// Separators are subtree minimums, so a key equal to Key(i) goes right of it.
func (t *Tree) findLeaf(k int64) int64 {
	id := t.root

	for {
		x := t.node(id)
		if x.leaf {
			return id
		}

		i := x.s.LowerBound(k)
		if i < x.s.Size() && x.s.Key(i) == k {
			i++
		}

		id = t.child(x, i)
	}
}

func (t *Tree) leafFind(id, k int64) (i int, eq bool) {
	s := t.node(id).s

	i = s.LowerBound(k)

	return i, i < s.Size() && s.Key(i) == k
}

func (t *Tree) first() int64 {
	id := t.root

	for {
		x := t.node(id)
		if x.leaf {
			return id
		}

		id = x.child0
	}
}

func (t *Tree) child(x *node, i int) int64 {
	if i == 0 {
		return x.child0
	}

	return x.s.Value(i - 1)
}

// position returns the index of c among p's children, child0 being 0.
func (t *Tree) position(p, c int64) int {
	x := t.node(p)

	if x.child0 == c {
		return 0
	}

	for i := 0; i < x.s.Size(); i++ {
		if x.s.Value(i) == c {
			return i + 1
		}
	}

	panic(fmt.Sprintf("node %d is not a child of %d (%v)", c, p, loc.Caller(1)))
}

// growth is the number of nodes an insert into leaf id could allocate:
// one per full node on the way up plus a new root if the root is full.
func (t *Tree) growth(id int64) (need int) {
	for {
		x := t.node(id)
		if x.s.Size() < t.maxKeys {
			return need
		}

		need++

		if x.parent == NilNode {
			return need + 1
		}

		id = x.parent
	}
}

func (t *Tree) splitLeaf(id int64) {
	rid := t.newNode(true)
	x, r := t.node(id), t.node(rid)

	total := x.s.Size()
	left := (total + 1) / 2

	for i := left; i < total; i++ {
		r.s.Insert(i-left, x.s.Key(i), x.s.Value(i))
	}

	for i := total - 1; i >= left; i-- {
		x.s.Delete(i)
	}

	r.parent = x.parent
	r.next = x.next
	x.next = rid

	t.insertIntoParent(id, r.s.Key(0), rid)
}

func (t *Tree) splitInternal(id int64) {
	rid := t.newNode(false)
	x, r := t.node(id), t.node(rid)

	k := x.s.Size()
	keys := make([]int64, k)
	ch := make([]int64, k+1)

	ch[0] = x.child0
	for i := 0; i < k; i++ {
		keys[i] = x.s.Key(i)
		ch[i+1] = x.s.Value(i)
	}

	lc := (k + 2) / 2 // children staying on the left

	x.s.Clear()

	for i := 0; i < lc-1; i++ {
		x.s.Insert(i, keys[i], ch[i+1])
	}

	r.child0 = ch[lc]
	for i := lc; i < k; i++ {
		r.s.Insert(i-lc, keys[i], ch[i+1])
	}

	r.parent = x.parent

	for _, c := range ch[lc:] {
		t.node(c).parent = rid
	}

	sep, _ := t.minKey(rid)

	t.insertIntoParent(id, sep, rid)
}

func (t *Tree) insertIntoParent(l int64, sep int64, r int64) {
	p := t.node(l).parent

	if p == NilNode {
		root := t.newNode(false)
		x := t.node(root)

		x.child0 = l
		x.s.Insert(0, sep, r)

		t.node(l).parent = root
		t.node(r).parent = root
		t.root = root

		if tl != nil {
			tl.Printw("root split", "root", root, "sep", sep, "height", t.Height())
		}

		return
	}

	pos := t.position(p, l)
	x := t.node(p)

	x.s.Insert(pos, sep, r)
	t.node(r).parent = p

	if x.s.Size() > t.maxKeys {
		t.splitInternal(p)
	}
}

// minKey is the smallest key of the subtree. It is false if the leftmost leaf is empty.
func (t *Tree) minKey(id int64) (int64, bool) {
	x := t.node(id)

	for !x.leaf {
		x = t.node(x.child0)
	}

	if x.s.Size() == 0 {
		return 0, false
	}

	return x.s.Key(0), true
}

// fixMin rewrites the separator caching the minimum of id's subtree.
// It is the separator of the nearest ancestor edge that is not a child0 link.
func (t *Tree) fixMin(id int64) {
	m, ok := t.minKey(id)
	if !ok {
		return
	}

	for p := t.node(id).parent; p != NilNode; id, p = p, t.node(p).parent {
		pos := t.position(p, id)
		if pos == 0 {
			continue
		}

		t.setKey(p, pos-1, m)

		return
	}
}

func (t *Tree) setKey(id int64, i int, k int64) {
	s := t.node(id).s

	if s.Key(i) == k {
		return
	}

	v := s.Value(i)

	s.Delete(i)
	s.Insert(i, k, v)
}

func (t *Tree) checkHook() {
	if checkTree != nil {
		checkTree(t)
	}
}
