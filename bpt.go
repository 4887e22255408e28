// Package bpt is an in-memory B+ tree over int64 keys.
//
// The tree algorithm is independent of the way a node keeps its sorted entries.
// Each node holds its entries in a Store, and all the nodes of a tree use the same
// Store implementation chosen at creation time: a sorted array, a sorted linked list
// or an array indexed by an auxiliary skip list.
//
// A Tree is not safe for concurrent use.
package bpt

import (
	"errors"

	"tlog.app/go/tlog"
)

const Version = "001"

var ( // errors
	ErrOutOfMemory = errors.New("node limit reached")
	ErrDestroyed   = errors.New("tree destroyed")
	ErrUnknownKind = errors.New("unknown store kind")
)

var tl *tlog.Logger // structural events logger; nil means off

// SetLogger installs a logger for structural events (root splits and collapses, refused growth).
// Pass nil to turn logging off.
func SetLogger(l *tlog.Logger) {
	tl = l
}
