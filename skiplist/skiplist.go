package skiplist

import (
	stderrors "errors"
	"fmt"

	"github.com/nikandfor/hacked/low"
	"tlog.app/go/errors"
)

// MaxLevel is the hard cap on the number of forward pointers per node.
const MaxLevel = 32

type (
	// List is an ordered map of int64 keys to opaque int64 values.
	// It is not safe for concurrent use.
	List struct {
		head *Node

		maxLevel int
		level    int
		size     int

		p   float64
		rnd uint64

		update [MaxLevel]*Node
	}

	Node struct {
		key int64
		val int64

		forward []*Node
	}
)

var ErrInvalidParams = stderrors.New("invalid skip list params")

// New creates an empty list.
// The seed makes level assignment reproducible; zero is replaced by a fixed constant.
func New(maxLevel int, p float64, seed uint64) (*List, error) {
	if maxLevel <= 0 || maxLevel > MaxLevel {
		return nil, errors.Wrap(ErrInvalidParams, "max level %d", maxLevel)
	}

	if !(p > 0 && p < 1) {
		return nil, errors.Wrap(ErrInvalidParams, "promotion probability %v", p)
	}

	if seed == 0 {
		seed = 0x9e3779b97f4a7c15
	}

	l := &List{
		head: &Node{
			forward: make([]*Node, maxLevel),
		},
		maxLevel: maxLevel,
		level:    1,
		p:        p,
		rnd:      seed,
	}

	return l, nil
}

func (l *List) Len() int      { return l.size }
func (l *List) Level() int    { return l.level }
func (l *List) MaxLevel() int { return l.maxLevel }

func (l *List) First() *Node {
	return l.head.forward[0]
}

// Search returns the value stored under k.
func (l *List) Search(k int64) (int64, bool) {
	x := l.Seek(k)
	if x == nil || x.key != k {
		return 0, false
	}

	return x.val, true
}

// Seek returns the first node with key >= k or nil.
func (l *List) Seek(k int64) *Node {
	x := l.head

	for i := l.level - 1; i >= 0; i-- {
		for x.forward[i] != nil && x.forward[i].key < k {
			x = x.forward[i]
		}
	}

	return x.forward[0]
}

// Insert puts k -> v into the list.
// If k is already there its value is replaced in place and false is returned.
func (l *List) Insert(k, v int64) bool {
	x := l.descend(k)
	defer l.clearUpdate()

	if x != nil && x.key == k {
		x.val = v
		return false
	}

	lvl := l.randomLevel()

	if lvl > l.level {
		for i := l.level; i < lvl; i++ {
			l.update[i] = l.head
		}

		l.level = lvl
	}

	n := &Node{
		key:     k,
		val:     v,
		forward: make([]*Node, lvl),
	}

	for i := 0; i < lvl; i++ {
		n.forward[i] = l.update[i].forward[i]
		l.update[i].forward[i] = n
	}

	l.size++

	return true
}

// Erase removes k. It reports whether k was present.
func (l *List) Erase(k int64) bool {
	x := l.descend(k)
	defer l.clearUpdate()

	if x == nil || x.key != k {
		return false
	}

	for i := 0; i < l.level; i++ {
		if l.update[i].forward[i] != x {
			continue
		}

		l.update[i].forward[i] = x.forward[i]
	}

	x.forward = nil
	l.size--

	for l.level > 1 && l.head.forward[l.level-1] == nil {
		l.level--
	}

	return true
}

// Clear removes all the nodes. Leveling state (the random source) is kept.
func (l *List) Clear() {
	for i := range l.head.forward {
		l.head.forward[i] = nil
	}

	l.level = 1
	l.size = 0
}

// Dump lists the keys of every populated level, top level first.
func (l *List) Dump() string {
	var b low.Buf

	fmt.Fprintf(&b, "skiplist size %d levels %d\n", l.size, l.level)

	for i := l.level - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "L%d:", i)

		for x := l.head.forward[i]; x != nil; x = x.forward[i] {
			fmt.Fprintf(&b, " %d", x.key)
		}

		b = append(b, '\n')
	}

	return string(b)
}

// descend fills l.update with the last node visited at each level
// and returns the level-0 successor of the search position.
func (l *List) descend(k int64) *Node {
	x := l.head

	for i := l.level - 1; i >= 0; i-- {
		for x.forward[i] != nil && x.forward[i].key < k {
			x = x.forward[i]
		}

		l.update[i] = x
	}

	return x.forward[0]
}

func (l *List) clearUpdate() {
	for i := range l.update[:l.maxLevel] {
		l.update[i] = nil
	}
}

// randomLevel draws a level in 1..maxLevel with geometric distribution.
func (l *List) randomLevel() int {
	lvl := 1

	for lvl < l.maxLevel && l.float() < l.p {
		lvl++
	}

	return lvl
}

// float returns a uniform value in [0, 1) from a xorshift64 sequence.
func (l *List) float() float64 {
	l.rnd ^= l.rnd << 13
	l.rnd ^= l.rnd >> 7
	l.rnd ^= l.rnd << 17

	return float64(l.rnd>>11) / (1 << 53)
}

func (n *Node) Key() int64   { return n.key }
func (n *Node) Value() int64 { return n.val }

func (n *Node) SetValue(v int64) { n.val = v }

func (n *Node) Next() *Node {
	return n.forward[0]
}

// Height is the number of levels the node is linked into.
func (n *Node) Height() int {
	return len(n.forward)
}
