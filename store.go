package bpt

import (
	"fmt"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
)

type (
	// Store is a node's container of entries sorted strictly ascending by key.
	//
	// The tree addresses entries by position. Callers guarantee the position passed
	// to Insert is the sorted insertion point of the key and that the store has room;
	// breaking that is a logic error and stores panic.
	Store interface {
		Size() int
		Cap() int
		Clear()

		Key(i int) int64
		Value(i int) int64
		SetValue(i int, v int64)

		// LowerBound returns the first index whose key is >= k.
		LowerBound(k int64) int

		Insert(i int, k, v int64)
		Delete(i int)

		// Free releases the store. It is not used afterwards.
		Free()
	}

	StoreFunc func(capacity int) Store

	Kind int
)

const (
	Array Kind = iota + 1
	List
	Skip
)

var Kinds = []Kind{Array, List, Skip}

func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "array", "arr":
		return Array, nil
	case "list", "linked", "linkedlist":
		return List, nil
	case "skip", "skiplist":
		return Skip, nil
	}

	return 0, errors.Wrap(ErrUnknownKind, "%q", s)
}

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case List:
		return "list"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) StoreFunc() (StoreFunc, error) {
	switch k {
	case Array:
		return NewArrayStore, nil
	case List:
		return NewListStore, nil
	case Skip:
		return NewSkipStore, nil
	}

	return nil, errors.Wrap(ErrUnknownKind, "%d", int(k))
}

func assertIndex(i, n int) {
	if i >= 0 && i < n {
		return
	}

	panic(fmt.Sprintf("index out of range: %d/%d (%v)", i, n, loc.Caller(2)))
}

func assertInsert(i, n, c int) {
	if n >= c {
		panic(fmt.Sprintf("store is full: %d/%d (%v)", n, c, loc.Caller(2)))
	}

	if i < 0 || i > n {
		panic(fmt.Sprintf("insert index out of range: %d/%d (%v)", i, n, loc.Caller(2)))
	}
}
