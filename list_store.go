package bpt

type (
	// ListStore keeps entries in a sorted singly linked list.
	// Every positional access walks from the head.
	ListStore struct {
		head *listEntry
		n    int
		cap  int
	}

	listEntry struct {
		k, v int64
		next *listEntry
	}
)

var _ Store = &ListStore{}

func NewListStore(capacity int) Store {
	return &ListStore{cap: capacity}
}

func (s *ListStore) Size() int { return s.n }
func (s *ListStore) Cap() int  { return s.cap }

func (s *ListStore) Clear() {
	s.head = nil
	s.n = 0
}

func (s *ListStore) Key(i int) int64 {
	return s.at(i).k
}

func (s *ListStore) Value(i int) int64 {
	return s.at(i).v
}

func (s *ListStore) SetValue(i int, v int64) {
	s.at(i).v = v
}

func (s *ListStore) LowerBound(k int64) (i int) {
	for e := s.head; e != nil && e.k < k; e = e.next {
		i++
	}

	return i
}

func (s *ListStore) Insert(i int, k, v int64) {
	assertInsert(i, s.n, s.cap)

	e := &listEntry{k: k, v: v}

	if i == 0 {
		e.next = s.head
		s.head = e
	} else {
		prev := s.walk(i - 1)
		e.next = prev.next
		prev.next = e
	}

	s.n++
}

func (s *ListStore) Delete(i int) {
	assertIndex(i, s.n)

	if i == 0 {
		s.head = s.head.next
	} else {
		prev := s.walk(i - 1)
		prev.next = prev.next.next
	}

	s.n--
}

func (s *ListStore) Free() {
	s.Clear()
	s.cap = 0
}

func (s *ListStore) at(i int) *listEntry {
	assertIndex(i, s.n)

	return s.walk(i)
}

func (s *ListStore) walk(i int) *listEntry {
	e := s.head

	for ; i > 0; i-- {
		e = e.next
	}

	return e
}
