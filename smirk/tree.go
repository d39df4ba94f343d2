// Package smirk implements the project's sparse Merkle tree: a binary tree
// of fixed depth 161 over the BN254 scalar field, Poseidon2 as the node
// hash, authenticating a set of UTXO commitments keyed by field elements.
//
// A Tree is a persistent value: Insert and Remove return a new *Tree that
// shares every unmodified subtree with the receiver (structural sharing,
// no cycles — a DAG rooted at each version's handle). Nothing in this
// package panics on malformed input; every failure mode is a typed error.
package smirk

import (
	"errors"
	"math/big"

	"github.com/polybase/payy/field"
	"github.com/polybase/payy/poseidon"
)

// Depth is the fixed tree depth. A leaf sits at level 0; the root is the
// hash of the level-Depth subtree.
const Depth = 161

var (
	// ErrKeyCollision is returned by Insert when the key is already mapped
	// to a different value. Re-inserting an identical (key, value) pair
	// succeeds as an identity operation instead.
	ErrKeyCollision = errors.New("smirk: key already mapped to a different value")
	// ErrKeyAbsent is returned by Remove when the key has no mapping.
	ErrKeyAbsent = errors.New("smirk: key not present")
	// ErrWitnessMismatch is returned by Verify when a witness does not
	// reproduce the claimed root.
	ErrWitnessMismatch = errors.New("smirk: witness does not reproduce root")
)

// emptyHashes[l] = E_l, the hash of an empty subtree of height l.
// E_0 = 0 (the empty-leaf sentinel); E_{l+1} = Poseidon2(E_l, E_l).
var emptyHashes = func() [Depth + 1]field.Element {
	var e [Depth + 1]field.Element
	e[0] = field.Zero()
	for l := 0; l < Depth; l++ {
		e[l+1] = poseidon.Hash2(e[l], e[l])
	}
	return e
}()

// EmptyRoot returns E_161, the root of an empty tree — the genesis root
// the settlement contract commits at initialization.
func EmptyRoot() field.Element { return emptyHashes[Depth] }

// node is an internal tree node. A nil *node always denotes an empty
// subtree of whatever level the caller is tracking; its hash is looked up
// from emptyHashes rather than stored.
type node struct {
	h           field.Element
	left, right *node
}

// Tree is an immutable snapshot of the sparse Merkle tree. The zero value
// is the empty tree, which is what New returns.
type Tree struct {
	root *node
}

// New returns the empty tree.
func New() *Tree { return &Tree{} }

// Root returns the tree's current root hash.
func (t *Tree) Root() field.Element {
	if t == nil {
		return EmptyRoot()
	}
	return hashOf(t.root, Depth)
}

func hashOf(n *node, level int) field.Element {
	if n == nil {
		return emptyHashes[level]
	}
	return n.h
}

func childOf(n *node, right bool) *node {
	if n == nil {
		return nil
	}
	if right {
		return n.right
	}
	return n.left
}

// bitAt returns the addressing bit for level l (0 = leaf level). Bit i=0
// is the LSB and is consulted first, at the leaf level; higher levels
// consult progressively higher bits. Only the low Depth bits of the key
// are ever consulted — a Tree addresses 2^Depth leaves regardless of the
// full width of the field element used as a key.
func bitAt(key *big.Int, l int) uint {
	return key.Bit(l)
}

// Insert maps key -> value. It is idempotent: inserting the same (key,
// value) pair that is already present returns a tree with the same root
// and no error. Inserting a different value at an occupied key is a
// collision and returns ErrKeyCollision without modifying the tree.
func (t *Tree) Insert(key *big.Int, value field.Element) (*Tree, error) {
	root := (*node)(nil)
	if t != nil {
		root = t.root
	}
	newRoot, err := insert(root, Depth, key, value)
	if err != nil {
		return nil, err
	}
	return &Tree{root: newRoot}, nil
}

func insert(n *node, level int, key *big.Int, value field.Element) (*node, error) {
	if level == 0 {
		if n == nil {
			return &node{h: value}, nil
		}
		if n.h.Equal(value) {
			return n, nil
		}
		return nil, ErrKeyCollision
	}

	left, right := childOf(n, false), childOf(n, true)
	var err error
	if bitAt(key, level-1) == 0 {
		left, err = insert(left, level-1, key, value)
	} else {
		right, err = insert(right, level-1, key, value)
	}
	if err != nil {
		return nil, err
	}
	if left == childOf(n, false) && right == childOf(n, true) {
		return n, nil
	}
	return &node{
		h:     poseidon.Hash2(hashOf(left, level-1), hashOf(right, level-1)),
		left:  left,
		right: right,
	}, nil
}

// Remove deletes key's mapping, restoring the leaf to empty. It fails
// with ErrKeyAbsent if key has no mapping.
func (t *Tree) Remove(key *big.Int) (*Tree, error) {
	root := (*node)(nil)
	if t != nil {
		root = t.root
	}
	newRoot, err := remove(root, Depth, key)
	if err != nil {
		return nil, err
	}
	return &Tree{root: newRoot}, nil
}

func remove(n *node, level int, key *big.Int) (*node, error) {
	if level == 0 {
		if n == nil {
			return nil, ErrKeyAbsent
		}
		return nil, nil
	}
	if n == nil {
		return nil, ErrKeyAbsent
	}

	left, right := n.left, n.right
	var err error
	if bitAt(key, level-1) == 0 {
		left, err = remove(left, level-1, key)
	} else {
		right, err = remove(right, level-1, key)
	}
	if err != nil {
		return nil, err
	}
	if left == nil && right == nil {
		return nil, nil
	}
	return &node{
		h:     poseidon.Hash2(hashOf(left, level-1), hashOf(right, level-1)),
		left:  left,
		right: right,
	}, nil
}

// Witness is a membership (Empty=false) or non-membership (Empty=true)
// proof: a Depth-length co-path plus the leaf's current value.
type Witness struct {
	Key   *big.Int
	Value field.Element
	Empty bool
	Path  [Depth]field.Element
}

// Prove returns key's witness against t's current root.
func (t *Tree) Prove(key *big.Int) Witness {
	root := (*node)(nil)
	if t != nil {
		root = t.root
	}
	w := Witness{Key: key}
	n := root
	for level := Depth; level > 0; level-- {
		if bitAt(key, level-1) == 0 {
			w.Path[level-1] = hashOf(childOf(n, true), level-1)
			n = childOf(n, false)
		} else {
			w.Path[level-1] = hashOf(childOf(n, false), level-1)
			n = childOf(n, true)
		}
	}
	if n == nil {
		w.Empty = true
		w.Value = field.Zero()
	} else {
		w.Value = n.h
	}
	return w
}

// Verify recomputes the root implied by a witness and checks it against
// root, returning ErrWitnessMismatch on disagreement.
func Verify(root field.Element, w Witness) error {
	cur := w.Value
	if w.Empty {
		cur = field.Zero()
	}
	for level := 1; level <= Depth; level++ {
		sib := w.Path[level-1]
		if bitAt(w.Key, level-1) == 0 {
			cur = poseidon.Hash2(cur, sib)
		} else {
			cur = poseidon.Hash2(sib, cur)
		}
	}
	if !cur.Equal(root) {
		return ErrWitnessMismatch
	}
	return nil
}
