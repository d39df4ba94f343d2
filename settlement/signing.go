package settlement

import (
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/polybase/payy/field"
)

// domainTag is the literal string prepended to the accept message before
// hashing. This is a deliberate departure from EIP-191/EIP-712 framing
// (§9 Design Notes) — implementers must not "fix" it to look like either.
const domainTag = "Polybase"

// Signature is a validator's (r, s, v) signature over a Proposal's
// signed digest.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8
}

func u256BE(x *big.Int) [32]byte {
	var out [32]byte
	b := x.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// ProposalHash computes H1 = keccak(newRoot || height || extraHash), the
// canonical hash of a block proposal (§3).
func ProposalHash(newRoot field.Element, height uint64, extraHash field.Element) [32]byte {
	nr := newRoot.Bytes()
	h := u256BE(new(big.Int).SetUint64(height))
	eh := extraHash.Bytes()
	return crypto.Keccak256Hash(nr[:], h[:], eh[:])
}

// AcceptHash computes H2 = keccak((height+1) || H1) — the round number is
// one past the proposed height (§3).
func AcceptHash(height uint64, h1 [32]byte) [32]byte {
	nextHeight := u256BE(new(big.Int).SetUint64(height + 1))
	return crypto.Keccak256Hash(nextHeight[:], h1[:])
}

// SignedDigest computes D = keccak(len_u64_be("Polybase") || "Polybase" ||
// H2) — the bytes each validator actually signs (§3, §9).
func SignedDigest(h2 [32]byte) [32]byte {
	var lenBE [8]byte
	binary.BigEndian.PutUint64(lenBE[:], uint64(len(domainTag)))
	return crypto.Keccak256Hash(lenBE[:], []byte(domainTag), h2[:])
}

// Digest computes D directly from a proposal's components, composing
// ProposalHash, AcceptHash, and SignedDigest.
func Digest(newRoot field.Element, height uint64, extraHash field.Element) [32]byte {
	h1 := ProposalHash(newRoot, height, extraHash)
	h2 := AcceptHash(height, h1)
	return SignedDigest(h2)
}

// SignDigest signs D with a validator's key, producing the (r, s, v) a
// real validator client would submit. Low-S normalization is applied so
// s is always in the lower half of the curve order, matching the
// canonical-signature convention go-ethereum itself enforces on Sign.
func SignDigest(priv *ecdsa.PrivateKey, digest [32]byte) (Signature, error) {
	sig, err := crypto.Sign(digest[:], priv)
	if err != nil {
		return Signature{}, err
	}
	var out Signature
	copy(out.R[:], sig[0:32])
	copy(out.S[:], sig[32:64])
	out.V = sig[64]
	return out, nil
}

// RecoverSigner recovers the address that produced sig over digest.
func RecoverSigner(digest [32]byte, sig Signature) (common.Address, error) {
	raw := make([]byte, 65)
	copy(raw[0:32], sig.R[:])
	copy(raw[32:64], sig.S[:])
	raw[64] = sig.V
	pub, err := crypto.SigToPub(digest[:], raw)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
