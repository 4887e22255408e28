package bpt

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeInsertAscending(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			initCheck(t)

			tr, err := New(3, k)
			require.NoError(t, err)
			defer tr.Destroy()

			assert.Equal(t, 1, tr.Height())

			for i := int64(1); i <= 7; i++ {
				require.NoError(t, tr.Insert(i))
			}

			t.Logf("dump\n%v", tr.Dump())

			assert.Equal(t, 3, tr.Height())
			assert.True(t, tr.Search(4))
			assert.False(t, tr.Search(8))
			assert.Equal(t, 7, tr.Len())
			assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, walk(tr))
		})
	}
}

func TestTreeDelete(t *testing.T) {
	for _, order := range []int{3, 4, 64} {
		for _, k := range Kinds {
			initCheck(t)

			tr, err := New(order, k)
			require.NoError(t, err)

			for _, key := range []int64{10, 20, 5, 15, 3} {
				require.NoError(t, tr.Insert(key))
			}

			tr.Delete(20)

			assert.False(t, tr.Search(20), "%v order %d", k, order)
			assert.True(t, tr.Search(15), "%v order %d", k, order)
			assert.Equal(t, []int64{3, 5, 10, 15}, walk(tr), "%v order %d", k, order)

			tr.Destroy()
		}
	}
}

func TestTreeInsertDeleteAll(t *testing.T) {
	for _, k := range Kinds {
		t.Run(k.String(), func(t *testing.T) {
			tr, err := New(64, k)
			require.NoError(t, err)
			defer tr.Destroy()

			rnd := rand.New(rand.NewSource(1))
			keys := rnd.Perm(100000)[:1000]

			for _, key := range keys {
				require.NoError(t, tr.Insert(int64(key)))
			}

			require.NoError(t, tr.check())
			assert.Equal(t, 1000, tr.Len())
			assert.Greater(t, tr.Height(), 1)

			rnd.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

			for _, key := range keys {
				tr.Delete(int64(key))
			}

			require.NoError(t, tr.check())

			assert.Equal(t, 1, tr.Height())
			assert.Equal(t, 0, tr.Len())
			assert.Equal(t, 1, tr.Nodes())
			assert.True(t, tr.node(tr.root).leaf)
			assert.Equal(t, 0, tr.node(tr.root).s.Size())
		})
	}
}

func TestTreeDuplicatesAndMissing(t *testing.T) {
	initCheck(t)

	tr, err := New(4, Array)
	require.NoError(t, err)

	for i := int64(0); i < 20; i++ {
		require.NoError(t, tr.Insert(i*2))
	}

	before := tr.Dump()

	for i := int64(0); i < 20; i++ {
		require.NoError(t, tr.Insert(i*2))
	}

	assert.Equal(t, before, tr.Dump())
	assert.Equal(t, 20, tr.Len())

	for i := int64(0); i < 20; i++ {
		tr.Delete(i*2 + 1)
	}

	tr.Delete(-5)
	tr.Delete(100)

	assert.Equal(t, before, tr.Dump())
	assert.Equal(t, 20, tr.Len())

	tr.Delete(10)
	after := tr.Dump()

	tr.Delete(10)
	assert.Equal(t, after, tr.Dump())
	assert.Equal(t, 19, tr.Len())
}

func TestTreeRandomOps(t *testing.T) {
	for _, order := range []int{1, 3, 4, 5, 8} {
		for _, k := range Kinds {
			testRandomOps(t, order, k)
		}
	}
}

func testRandomOps(t *testing.T, order int, k Kind) {
	initCheck(t)

	tr, err := New(order, k)
	require.NoError(t, err)
	defer tr.Destroy()

	rnd := rand.New(rand.NewSource(int64(order)))
	m := map[int64]struct{}{}

	h := tr.Height()

	for step := 0; step < 3000; step++ {
		key := int64(rnd.Intn(300))

		if rnd.Intn(5) < 2 {
			tr.Delete(key)
			delete(m, key)
		} else {
			require.NoError(t, tr.Insert(key))
			m[key] = struct{}{}
		}

		nh := tr.Height()
		require.LessOrEqual(t, nh-h, 1, "order %d %v step %d", order, k, step)
		require.LessOrEqual(t, h-nh, 1, "order %d %v step %d", order, k, step)
		h = nh

		_, ok := m[key]
		require.Equal(t, ok, tr.Search(key), "order %d %v step %d key %d", order, k, step, key)
		require.Equal(t, len(m), tr.Len())
	}

	exp := make([]int64, 0, len(m))
	for key := range m {
		exp = append(exp, key)
	}

	sort.Slice(exp, func(i, j int) bool { return exp[i] < exp[j] })

	assert.Equal(t, exp, walk(tr), "order %d %v", order, k)

	for key := int64(-1); key <= 300; key++ {
		_, ok := m[key]
		assert.Equal(t, ok, tr.Search(key), "order %d %v key %d", order, k, key)
	}
}

// TestTreeBackendsEquivalent runs the same operations over all the backends
// and expects identical shape at every step.
func TestTreeBackendsEquivalent(t *testing.T) {
	for _, order := range []int{3, 6, 16} {
		var trees []*Tree

		for _, k := range Kinds {
			tr, err := New(order, k)
			require.NoError(t, err)

			trees = append(trees, tr)
		}

		rnd := rand.New(rand.NewSource(int64(100 + order)))

		for step := 0; step < 2000; step++ {
			key := int64(rnd.Intn(500))
			del := rnd.Intn(3) == 0

			for _, tr := range trees {
				if del {
					tr.Delete(key)
				} else {
					require.NoError(t, tr.Insert(key))
				}
			}

			q := int64(rnd.Intn(500))

			for _, tr := range trees[1:] {
				require.Equal(t, trees[0].Search(q), tr.Search(q), "order %d step %d", order, step)
				require.Equal(t, trees[0].Height(), tr.Height(), "order %d step %d", order, step)
			}
		}

		for _, tr := range trees[1:] {
			assert.Equal(t, trees[0].Dump(), tr.Dump(), "order %d", order)
		}

		for _, tr := range trees {
			tr.Destroy()
		}
	}
}

func TestTreeOrderClamp(t *testing.T) {
	for _, order := range []int{-1, 0, 1, 2} {
		tr, err := New(order, Array)
		require.NoError(t, err)

		assert.Equal(t, 3, tr.Order())
	}

	_, err := New(5, Kind(9))
	assert.True(t, errors.Is(err, ErrUnknownKind), "%v", err)
}

func TestTreeMaxNodes(t *testing.T) {
	initCheck(t)

	tr, err := New(3, Array)
	require.NoError(t, err)

	tr.MaxNodes = 3

	for i := int64(1); i <= 4; i++ {
		require.NoError(t, tr.Insert(i))
	}

	assert.Equal(t, 3, tr.Nodes())

	before := tr.Dump()

	err = tr.Insert(5)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "%v", err)

	assert.Equal(t, before, tr.Dump())
	assert.False(t, tr.Search(5))
	assert.Equal(t, 4, tr.Len())

	err = tr.Insert(0)
	assert.True(t, errors.Is(err, ErrOutOfMemory), "%v", err)

	tr.Delete(1)

	require.NoError(t, tr.Insert(0)) // fits into the first leaf now
	assert.Equal(t, 3, tr.Nodes())

	tr.MaxNodes = 0

	require.NoError(t, tr.Insert(5))
	assert.True(t, tr.Search(5))
	assert.Equal(t, []int64{0, 2, 3, 4, 5}, walk(tr))
}

type countingStore struct {
	Store
	c *storeCounter

	freed bool
}

type storeCounter struct {
	created, freed int
}

func (s *countingStore) Free() {
	if s.freed {
		panic("store freed twice")
	}

	s.freed = true
	s.c.freed++

	s.Store.Free()
}

func TestTreeDestroy(t *testing.T) {
	for _, k := range Kinds {
		var c storeCounter

		f, err := k.StoreFunc()
		require.NoError(t, err)

		tr := NewStoreFunc(4, func(capacity int) Store {
			c.created++

			return &countingStore{Store: f(capacity), c: &c}
		})

		for i := int64(0); i < 500; i++ {
			require.NoError(t, tr.Insert(i*7%500))
		}

		for i := int64(0); i < 500; i += 3 {
			tr.Delete(i)
		}

		assert.Equal(t, c.created-c.freed, tr.Nodes(), "%v", k)

		tr.Destroy()

		assert.Equal(t, c.created, c.freed, "%v", k)
		assert.NoError(t, tr.check())

		assert.False(t, tr.Search(1))
		assert.Equal(t, 0, tr.Height())
		assert.True(t, errors.Is(tr.Insert(1), ErrDestroyed))
		assert.NotPanics(t, func() { tr.Delete(1) })
		assert.NotPanics(t, tr.Destroy)
	}
}

func TestTreeWalkStop(t *testing.T) {
	tr, err := New(3, List)
	require.NoError(t, err)

	for i := int64(10); i > 0; i-- {
		require.NoError(t, tr.Insert(i))
	}

	var got []int64

	tr.Walk(func(k int64) bool {
		got = append(got, k)
		return k < 4
	})

	assert.Equal(t, []int64{1, 2, 3, 4}, got)
}

func initCheck(t testing.TB) {
	initLogger(t)

	checkTree = func(tr *Tree) {
		err := tr.check()
		if err != nil {
			t.Fatalf("check: %v\n%v", err, tr.Dump())
		}
	}

	t.Cleanup(func() {
		checkTree = nil
	})
}

func walk(tr *Tree) (r []int64) {
	tr.Walk(func(k int64) bool {
		r = append(r, k)
		return true
	})

	return r
}
