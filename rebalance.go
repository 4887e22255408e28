package bpt

// minKeys is the least number of entries a non-root node may hold.
func (t *Tree) minKeys(x *node) int {
	if x.leaf {
		return t.maxKeys - t.maxKeys/2 // ceil((M-1)/2)
	}

	return (t.order+1)/2 - 1 // ceil(M/2) - 1
}

func (t *Tree) canLend(id int64) bool {
	x := t.node(id)

	return x.s.Size() > t.minKeys(x)
}

// rebalance fixes underflow of id after a deletion
// and goes up for as long as merges take entries from parents.
func (t *Tree) rebalance(id int64) {
	for id != t.root {
		x := t.node(id)
		if x.s.Size() >= t.minKeys(x) {
			return
		}

		p := x.parent
		pos := t.position(p, id)
		px := t.node(p)

		l, r := int64(NilNode), int64(NilNode)

		if pos > 0 {
			l = t.child(px, pos-1)
		}

		if pos < px.s.Size() {
			r = t.child(px, pos+1)
		}

		switch {
		case l != NilNode && t.canLend(l):
			t.borrowLeft(p, pos, l, id)
			return
		case r != NilNode && t.canLend(r):
			t.borrowRight(p, pos, id, r)
			return
		case l != NilNode:
			t.merge(p, pos-1, l, id)
		default:
			t.merge(p, pos, id, r)
		}

		id = p
	}

	t.collapse()
}

// borrowLeft moves the last entry of l to the front of its right neighbour id.
func (t *Tree) borrowLeft(p int64, pos int, l, id int64) {
	lx, x := t.node(l), t.node(id)
	last := lx.s.Size() - 1

	if x.leaf {
		x.s.Insert(0, lx.s.Key(last), lx.s.Value(last))
		lx.s.Delete(last)
	} else {
		sep := t.node(p).s.Key(pos - 1) // min of x.child0
		c := lx.s.Value(last)

		x.s.Insert(0, sep, x.child0)
		x.child0 = c
		t.node(c).parent = id

		lx.s.Delete(last)
	}

	t.fixMin(id)
}

// borrowRight moves the first entry of r to the end of its left neighbour id.
func (t *Tree) borrowRight(p int64, pos int, id, r int64) {
	x, rx := t.node(id), t.node(r)
	n := x.s.Size()

	if x.leaf {
		x.s.Insert(n, rx.s.Key(0), rx.s.Value(0))
		rx.s.Delete(0)
	} else {
		sep := t.node(p).s.Key(pos) // min of rx.child0
		c := rx.child0

		x.s.Insert(n, sep, c)
		t.node(c).parent = id

		rx.child0 = rx.s.Value(0)
		rx.s.Delete(0)
	}

	t.fixMin(r)

	if n == 0 && x.leaf {
		t.fixMin(id)
	}
}

// merge appends r to its left neighbour l, frees r
// and removes separator si (the one pointing to r) from the parent.
func (t *Tree) merge(p int64, si int, l, r int64) {
	lx, rx := t.node(l), t.node(r)
	n := lx.s.Size()

	if lx.leaf {
		for i := 0; i < rx.s.Size(); i++ {
			lx.s.Insert(n+i, rx.s.Key(i), rx.s.Value(i))
		}

		lx.next = rx.next
	} else {
		bridge := t.node(p).s.Key(si) // min of rx.child0

		lx.s.Insert(n, bridge, rx.child0)
		t.node(rx.child0).parent = l

		for i := 0; i < rx.s.Size(); i++ {
			c := rx.s.Value(i)

			lx.s.Insert(n+1+i, rx.s.Key(i), c)
			t.node(c).parent = l
		}
	}

	t.node(p).s.Delete(si)
	t.release(r)

	if n == 0 && lx.leaf {
		t.fixMin(l)
	}
}

// collapse replaces an internal root without keys by its only child.
func (t *Tree) collapse() {
	for {
		x := t.node(t.root)
		if x.leaf || x.s.Size() != 0 {
			return
		}

		old := t.root

		t.root = x.child0
		t.node(t.root).parent = NilNode

		t.release(old)

		if tl != nil {
			tl.Printw("root collapse", "root", t.root, "height", t.Height())
		}
	}
}
