package bpt

import "sort"

type (
	// ArrayStore keeps keys and values in parallel fixed size arrays.
	ArrayStore struct {
		keys []int64
		vals []int64
	}
)

var _ Store = &ArrayStore{}

func NewArrayStore(capacity int) Store {
	return newArrayStore(capacity)
}

func newArrayStore(capacity int) *ArrayStore {
	return &ArrayStore{
		keys: make([]int64, 0, capacity),
		vals: make([]int64, 0, capacity),
	}
}

func (s *ArrayStore) Size() int { return len(s.keys) }
func (s *ArrayStore) Cap() int  { return cap(s.keys) }

func (s *ArrayStore) Clear() {
	s.keys = s.keys[:0]
	s.vals = s.vals[:0]
}

func (s *ArrayStore) Key(i int) int64 {
	assertIndex(i, len(s.keys))

	return s.keys[i]
}

func (s *ArrayStore) Value(i int) int64 {
	assertIndex(i, len(s.vals))

	return s.vals[i]
}

func (s *ArrayStore) SetValue(i int, v int64) {
	assertIndex(i, len(s.vals))

	s.vals[i] = v
}

func (s *ArrayStore) LowerBound(k int64) int {
	return sort.Search(len(s.keys), func(i int) bool {
		return s.keys[i] >= k
	})
}

func (s *ArrayStore) Insert(i int, k, v int64) {
	n := len(s.keys)
	assertInsert(i, n, cap(s.keys))

	s.keys = s.keys[:n+1]
	s.vals = s.vals[:n+1]

	copy(s.keys[i+1:], s.keys[i:n])
	copy(s.vals[i+1:], s.vals[i:n])

	s.keys[i] = k
	s.vals[i] = v
}

func (s *ArrayStore) Delete(i int) {
	n := len(s.keys)
	assertIndex(i, n)

	copy(s.keys[i:], s.keys[i+1:])
	copy(s.vals[i:], s.vals[i+1:])

	s.keys = s.keys[:n-1]
	s.vals = s.vals[:n-1]
}

func (s *ArrayStore) Free() {
	s.keys = nil
	s.vals = nil
}
