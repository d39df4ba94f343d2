package settlement

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/polybase/payy/field"
)

// utxoSlotIndices are the starting offsets of each of the six published
// UTXO slots within the 18-element utxoHashes vector.
var utxoSlotIndices = [6]int{0, 3, 6, 9, 12, 15}

// VerifyBlock is the prover-only entry point that advances the canonical
// root (§4.3 item 5). utxoHashes is the 18-element published vector
// [root_ref0, mb0, value0, ..., root_ref5, mb5, value5].
func (s *State) VerifyBlock(
	caller common.Address,
	aggrProof []byte,
	aggrInstances [12]field.Element,
	oldRoot, newRoot field.Element,
	utxoHashes [18]field.Element,
	extraHash field.Element,
	height uint64,
	signatures []Signature,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.provers[caller] {
		return ErrNotAProver
	}

	// (a) advance the validator-set activation pointer.
	s.advanceValidatorSet(height)

	// (b) the block must build on the current canonical root.
	if !oldRoot.Equal(s.ring.Current()) {
		return ErrOldRootMismatch
	}

	// (c) drain matching pending mints/burns for each non-transfer slot.
	for _, i := range utxoSlotIndices {
		mb := utxoHashes[i+1]
		value := utxoHashes[i+2]
		if err := s.consumeMintOrBurn(mb, value); err != nil {
			return err
		}
	}

	// (d) every root_ref must be a recent root (or, from V4, zero).
	for _, i := range utxoSlotIndices {
		rootRef := utxoHashes[i]
		if s.version.acceptsZeroRootRef() && rootRef.IsZero() {
			continue
		}
		if !s.ring.Contains(rootRef) {
			return ErrInvalidRecentRoots
		}
	}

	// (e) strict supermajority of signatures.
	effective := s.effectiveValidators()
	threshold := quorumThreshold(len(effective.Set))
	if len(signatures) < threshold {
		return ErrQuorumNotMet
	}

	// (f) each signer must be a validator, and recovered signers must be
	// strictly increasing to force uniqueness and a canonical order.
	digest := Digest(newRoot, height, extraHash)
	var prevSigner *common.Address
	for _, sig := range signatures {
		signer, err := RecoverSigner(digest, sig)
		if err != nil {
			return ErrInvalidSigner
		}
		if !effective.Set[signer] {
			return ErrInvalidSigner
		}
		if prevSigner != nil {
			if bytesCompare(prevSigner[:], signer[:]) >= 0 {
				return ErrSignersNotSorted
			}
		}
		signerCopy := signer
		prevSigner = &signerCopy
	}

	// (g) the aggregate proof itself.
	if !s.aggregateVerifier.Verify(aggrProof, aggrInstances, oldRoot, newRoot, utxoHashes) {
		return ErrVerificationFailed
	}

	// (h) advance state.
	s.ring.Push(newRoot)
	s.blockHash = ProposalHash(newRoot, height, extraHash)
	s.blockHeight = height

	return nil
}

func bytesCompare(a, b []byte) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
