// Package verifier decodes and checks the EVM calldata layout a settlement
// contract receives for a groth16 proof: a fixed vector of 32-byte
// little-endian field-encoded public instances followed by the raw proof
// bytes (§4.4, §6).
package verifier

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"

	"github.com/polybase/payy/field"
)

// wordSize is the EVM word width every public-input instance is packed
// into.
const wordSize = 32

// Per-circuit instance counts (§4.2, §4.4): the Solidity wrapper for
// each verifier concatenates exactly this many 32-byte instance words
// before the proof bytes, with no length prefix — the count is fixed
// per circuit, not carried in the calldata itself.
const (
	MintInstanceCount      = 3
	BurnInstanceCount      = 5
	AggregateInstanceCount = 32
)

// DecodeCalldata splits calldata laid out as the Solidity verifier
// wrappers build it — `instances(numInstances) || proof`, each instance
// a 32-byte little-endian field element, no length prefix (§4.4) — into
// its instances and proof bytes. numInstances is fixed per circuit
// (MintInstanceCount, BurnInstanceCount, or AggregateInstanceCount).
// Every instance is range-checked against the field modulus as it is
// decoded (§4.4 "reject calldata whose instance words are >= the field
// modulus").
func DecodeCalldata(calldata []byte, numInstances int) (instances []field.Element, proof []byte, err error) {
	need := numInstances * wordSize
	if len(calldata) < need {
		return nil, nil, fmt.Errorf("calldata too short for %d instances: %d bytes", numInstances, len(calldata))
	}

	instances = make([]field.Element, numInstances)
	for i := 0; i < numInstances; i++ {
		var word [32]byte
		copy(word[:], calldata[i*wordSize:(i+1)*wordSize])
		e, err := field.DecodeLE(word)
		if err != nil {
			return nil, nil, fmt.Errorf("instance %d: %w", i, err)
		}
		instances[i] = e
	}

	proof = calldata[need:]
	return instances, proof, nil
}

// EncodeCalldata is DecodeCalldata's inverse: it builds the exact
// `instances || proof` byte layout the Solidity verifier wrapper
// expects for a staticcall, the same bytes a real submission of this
// proof to the on-chain verifier would carry.
func EncodeCalldata(instances []field.Element, proof []byte) []byte {
	out := make([]byte, 0, len(instances)*wordSize+len(proof))
	for _, e := range instances {
		word := field.EncodeLE(e)
		out = append(out, word[:]...)
	}
	out = append(out, proof...)
	return out
}

// Verify checks a groth16 proof against a decoded public-instance vector
// using a verifying key compiled for the matching circuit.
func Verify(vk groth16.VerifyingKey, proof groth16.Proof, instances []field.Element) error {
	w, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("allocating witness: %w", err)
	}

	values := make(chan any, len(instances))
	for _, e := range instances {
		values <- e.BigInt()
	}
	close(values)

	if err := w.Fill(len(instances), 0, values); err != nil {
		return fmt.Errorf("filling witness: %w", err)
	}

	return groth16.Verify(proof, vk, w)
}
