package aggregator

import (
	"math/big"
	"sync"

	"github.com/polybase/payy/field"
	"github.com/polybase/payy/smirk"
)

// Tree is the aggregator's live view of the shielded UTXO set: the one
// copy of the sparse Merkle tree whose root the settlement contract's
// ring tracks. smirk.Tree is itself a persistent value, so Tree's mutex
// only protects the single pointer swap on each mutation, not the tree
// structure itself.
type Tree struct {
	mu   sync.Mutex
	tree *smirk.Tree
}

// NewTree returns an aggregator tree seeded at the empty root.
func NewTree() *Tree {
	return &Tree{tree: smirk.New()}
}

// Root returns the tree's current root hash.
func (t *Tree) Root() field.Element {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.Root()
}

// Insert maps key -> value, advancing the tree in place.
func (t *Tree) Insert(key *big.Int, value field.Element) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, err := t.tree.Insert(key, value)
	if err != nil {
		return err
	}
	t.tree = next
	return nil
}

// Remove deletes key's mapping, advancing the tree in place.
func (t *Tree) Remove(key *big.Int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	next, err := t.tree.Remove(key)
	if err != nil {
		return err
	}
	t.tree = next
	return nil
}

// Prove returns key's current membership witness.
func (t *Tree) Prove(key *big.Int) smirk.Witness {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tree.Prove(key)
}
