// Package field implements the BN254 scalar field element type shared by
// every hash, root, commitment, and nullifier in the settlement protocol.
package field

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrOutOfRange is returned whenever a value outside [0, Modulus) is fed to
// a field boundary — Smirk keys/values, settlement roots, calldata words.
var ErrOutOfRange = errors.New("field: value outside [0, p)")

// Element is a canonical BN254 scalar field element. The zero value is the
// field's additive identity.
type Element struct {
	v fr.Element
}

// Modulus returns p = 0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001.
func Modulus() *big.Int {
	m := fr.Modulus()
	return new(big.Int).Set(m)
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// FromBigInt builds an Element from a big.Int, rejecting anything outside
// [0, p). This is the boundary check the spec calls requireValidFieldElement.
func FromBigInt(x *big.Int) (Element, error) {
	if x == nil || x.Sign() < 0 || x.Cmp(Modulus()) >= 0 {
		return Element{}, ErrOutOfRange
	}
	var e Element
	e.v.SetBigInt(x)
	return e, nil
}

// FromUint64 builds an Element from a small unsigned integer; always valid.
func FromUint64(x uint64) Element {
	var e Element
	e.v.SetUint64(x)
	return e
}

// BigInt returns the canonical representative in [0, p).
func (e Element) BigInt() *big.Int {
	var out big.Int
	e.v.BigInt(&out)
	return &out
}

// IsZero reports whether e is the additive identity.
func (e Element) IsZero() bool { return e.v.IsZero() }

// Equal reports field equality.
func (e Element) Equal(o Element) bool { return e.v.Equal(&o.v) }

// Cmp gives a total order over canonical representatives.
func (e Element) Cmp(o Element) int { return e.BigInt().Cmp(o.BigInt()) }

// String renders the canonical decimal representative.
func (e Element) String() string { return e.v.String() }

// Bytes returns the element's canonical big-endian 32-byte form, matching
// gnark-crypto's own encoding — this is the representation fed to Poseidon.
func (e Element) Bytes() [32]byte { return e.v.Bytes() }

// FromBytesBE parses a canonical big-endian 32-byte word, rejecting any
// encoding of a value >= p.
func FromBytesBE(b [32]byte) (Element, error) {
	x := new(big.Int).SetBytes(b[:])
	return FromBigInt(x)
}

// EncodeLE renders e as a little-endian 32-byte calldata word, the
// on-chain/verifier-interface wire format (§4.4, §6 of the protocol).
func EncodeLE(e Element) [32]byte {
	be := e.Bytes()
	var le [32]byte
	for i := range be {
		le[i] = be[31-i]
	}
	return le
}

// DecodeLE parses a little-endian 32-byte calldata word, rejecting values
// outside [0, p).
func DecodeLE(b [32]byte) (Element, error) {
	var be [32]byte
	for i := range b {
		be[i] = b[31-i]
	}
	return FromBytesBE(be)
}
