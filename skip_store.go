package bpt

import (
	"fmt"

	"nikand.dev/go/bpt/skiplist"
)

type (
	// SkipStore keeps entries in sorted arrays for positional access
	// and indexes the keys with a skip list used for LowerBound.
	// Skip list values are array positions, so the index is rebuilt on every mutation.
	SkipStore struct {
		ArrayStore

		sl *skiplist.List
	}
)

// Skip list parameters of SkipStore.
var (
	SkipMaxLevel        = 16
	SkipP               = 0.5
	SkipSeed     uint64 = 1234567
)

var _ Store = &SkipStore{}

func NewSkipStore(capacity int) Store {
	sl, err := skiplist.New(SkipMaxLevel, SkipP, SkipSeed)
	if err != nil {
		panic(fmt.Sprintf("skip store: %v", err))
	}

	return &SkipStore{
		ArrayStore: *newArrayStore(capacity),
		sl:         sl,
	}
}

func (s *SkipStore) Clear() {
	s.ArrayStore.Clear()
	s.sl.Clear()
}

func (s *SkipStore) LowerBound(k int64) int {
	n := s.sl.Seek(k)
	if n == nil {
		return s.Size()
	}

	return int(n.Value())
}

func (s *SkipStore) Insert(i int, k, v int64) {
	s.ArrayStore.Insert(i, k, v)
	s.rebuild()
}

func (s *SkipStore) Delete(i int) {
	s.ArrayStore.Delete(i)
	s.rebuild()
}

func (s *SkipStore) Free() {
	s.ArrayStore.Free()
	s.sl.Clear()
	s.sl = nil
}

// Index returns the auxiliary skip list. It must not be modified.
func (s *SkipStore) Index() *skiplist.List {
	return s.sl
}

func (s *SkipStore) rebuild() {
	s.sl.Clear()

	for i, k := range s.keys {
		s.sl.Insert(k, int64(i))
	}
}
