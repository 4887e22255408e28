package bpt

import (
	"fmt"

	"github.com/nikandfor/hacked/low"
	"tlog.app/go/errors"
)

// Dump renders the tree level by level.
func (t *Tree) Dump() string {
	var b low.Buf

	if t.destroyed {
		return "destroyed\n"
	}

	fmt.Fprintf(&b, "order %d  keys %d  nodes %d  root %d\n", t.order, t.n, t.live, t.root)

	level := []int64{t.root}

	for d := 0; len(level) != 0; d++ {
		var next []int64

		fmt.Fprintf(&b, "L%d:", d)

		for _, id := range level {
			x := t.node(id)

			fmt.Fprintf(&b, " %d[", id)

			for i := 0; i < x.s.Size(); i++ {
				if i != 0 {
					b = append(b, ' ')
				}

				fmt.Fprintf(&b, "%d", x.s.Key(i))
			}

			b = append(b, ']')

			if x.leaf {
				continue
			}

			next = append(next, x.child0)

			for i := 0; i < x.s.Size(); i++ {
				next = append(next, x.s.Value(i))
			}
		}

		b = append(b, '\n')

		level = next
	}

	return string(b)
}

type checker struct {
	t *Tree

	leafDepth int
	leaves    []int64
	nodes     int
}

// check verifies the tree invariants.
func (t *Tree) check() error {
	if t.destroyed {
		if t.live != 0 || len(t.nodes) != 0 {
			return errors.New("destroyed tree holds %d nodes", t.live)
		}

		return nil
	}

	c := checker{t: t, leafDepth: -1}

	if p := t.node(t.root).parent; p != NilNode {
		return errors.New("root %d has parent %d", t.root, p)
	}

	err := c.node(t.root, 0, 0, false, 0, false)
	if err != nil {
		return err
	}

	if c.nodes != t.live {
		return errors.New("reachable nodes %d, live %d", c.nodes, t.live)
	}

	// leaf chain
	var n int
	var last int64

	id := t.first()

	for i, exp := range c.leaves {
		if id != exp {
			return errors.New("leaf chain: leaf #%d is %d, expected %d", i, id, exp)
		}

		x := t.node(id)

		for j := 0; j < x.s.Size(); j++ {
			k := x.s.Key(j)

			if n != 0 && k <= last {
				return errors.New("leaf chain: key %d after %d", k, last)
			}

			last = k
			n++
		}

		id = x.next
	}

	if id != NilNode {
		return errors.New("leaf chain: continues after the last leaf to %d", id)
	}

	if n != t.n {
		return errors.New("leaf chain holds %d keys, tree has %d", n, t.n)
	}

	return nil
}

// node checks subtree id whose keys must be within [lo, hi).
func (c *checker) node(id int64, d int, lo int64, haslo bool, hi int64, hashi bool) error {
	t := c.t
	x := t.node(id)
	s := x.s
	n := s.Size()

	c.nodes++

	if n > t.maxKeys {
		return errors.New("node %d: overflow %d/%d", id, n, t.maxKeys)
	}

	if id != t.root && n < t.minKeys(x) {
		return errors.New("node %d: underflow %d/%d", id, n, t.minKeys(x))
	}

	if id == t.root && !x.leaf && n == 0 {
		return errors.New("internal root %d has no keys", id)
	}

	for i := 0; i < n; i++ {
		k := s.Key(i)

		if i != 0 && s.Key(i-1) >= k {
			return errors.New("node %d: keys %d and %d not ascending", id, s.Key(i-1), k)
		}

		if haslo && k < lo || hashi && k >= hi {
			return errors.New("node %d: key %d out of [%d, %d)", id, k, lo, hi)
		}
	}

	if x.leaf {
		if c.leafDepth == -1 {
			c.leafDepth = d
		}

		if c.leafDepth != d {
			return errors.New("leaf %d at depth %d, others at %d", id, d, c.leafDepth)
		}

		c.leaves = append(c.leaves, id)

		return nil
	}

	for i := 0; i <= n; i++ {
		ch := t.child(x, i)

		if p := t.node(ch).parent; p != id {
			return errors.New("node %d: child %d has parent %d", id, ch, p)
		}

		clo, chaslo := lo, haslo
		chi, chashi := hi, hashi

		if i > 0 {
			clo, chaslo = s.Key(i-1), true

			m, ok := t.minKey(ch)
			if !ok || m != clo {
				return errors.New("node %d: separator %d, subtree %d min %d (%v)", id, clo, ch, m, ok)
			}
		}

		if i < n {
			chi, chashi = s.Key(i), true
		}

		err := c.node(ch, d+1, clo, chaslo, chi, chashi)
		if err != nil {
			return err
		}
	}

	return nil
}
