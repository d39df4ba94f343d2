package verifier

import (
	"bytes"
	"os"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"

	"github.com/polybase/payy/field"
)

// LoadVerifyingKey reads a verifying key previously written by the
// prover's circuit manager.
func LoadVerifyingKey(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vk := groth16.NewVerifyingKey(ecc.BN254)
	if _, err := vk.ReadFrom(f); err != nil {
		return nil, err
	}
	return vk, nil
}

func decodeProof(raw []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(ecc.BN254)
	if _, err := proof.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return proof, nil
}

// AggregateVerifier checks an aggregation-circuit proof against the
// settlement contract's 32-element public vector, adapting this
// package's groth16 Verify to the settlement.AggregateVerifier interface.
type AggregateVerifier struct {
	VK groth16.VerifyingKey
}

func (v AggregateVerifier) Verify(proof []byte, instances [12]field.Element, oldRoot, newRoot field.Element, utxoHashes [18]field.Element) bool {
	p, err := decodeProof(proof)
	if err != nil {
		return false
	}
	vec := make([]field.Element, 0, 32)
	vec = append(vec, instances[:]...)
	vec = append(vec, oldRoot, newRoot)
	vec = append(vec, utxoHashes[:]...)
	return Verify(v.VK, p, vec) == nil
}

// MintVerifier checks a mint-circuit proof against its 3-element public
// vector, adapting this package's groth16 Verify to the
// settlement.MintVerifier interface.
type MintVerifier struct {
	VK groth16.VerifyingKey
}

func (v MintVerifier) Verify(proof []byte, commitment, value, source field.Element) bool {
	p, err := decodeProof(proof)
	if err != nil {
		return false
	}
	return Verify(v.VK, p, []field.Element{commitment, value, source}) == nil
}

// BurnVerifier checks a burn-circuit proof against its 5-element public
// vector, adapting this package's groth16 Verify to the
// settlement.BurnVerifier interface.
type BurnVerifier struct {
	VK groth16.VerifyingKey
}

func (v BurnVerifier) Verify(proof []byte, to, nullifier, value, source, sig field.Element) bool {
	p, err := decodeProof(proof)
	if err != nil {
		return false
	}
	return Verify(v.VK, p, []field.Element{to, nullifier, value, source, sig}) == nil
}
