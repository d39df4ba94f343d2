package settlement

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polybase/payy/field"
)

func addressToField(a common.Address) field.Element {
	e, _ := field.FromBigInt(new(big.Int).SetBytes(a.Bytes()))
	return e
}

// Mint is the on-chain mint entry point (§4.3 item 2). It fails if
// M[commitment] is already set, verifies the mint proof, pulls value of
// token from caller, and records M[commitment] = value.
func (s *State) Mint(caller common.Address, proof []byte, commitment, value, source field.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := mapKey(commitment)
	if existing, ok := s.mints[key]; ok && existing.Sign() != 0 {
		return ErrMintExists
	}
	if !s.mintVerifier.Verify(proof, commitment, value, source) {
		return ErrVerificationFailed
	}
	if err := s.token.TransferFrom(caller, s.contractAddr, value.BigInt()); err != nil {
		return ErrTransferFailed
	}
	s.mints[key] = value.BigInt()
	return nil
}

// MintWithAuthorization is Mint, but the token transfer goes through the
// token's EIP-3009 receiveWithAuthorization, and a second EIP-712
// signature (under this contract's own domain) authorizes the mint
// parameters; the recovered signer must equal from (§4.3 item 3).
func (s *State) MintWithAuthorization(
	proof []byte,
	commitment, value, source field.Element,
	from common.Address,
	validAfter, validBefore *big.Int,
	nonce [32]byte,
	mintAuthSig Signature,
	token3009Sig []byte,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	digest := s.MintAuthorizationDigest(commitment, value, source, from, validAfter, validBefore, nonce)
	signer, err := RecoverSigner(digest, mintAuthSig)
	if err != nil || signer != from {
		return ErrInvalidSigner
	}

	key := mapKey(commitment)
	if existing, ok := s.mints[key]; ok && existing.Sign() != 0 {
		return ErrMintExists
	}
	if !s.mintVerifier.Verify(proof, commitment, value, source) {
		return ErrVerificationFailed
	}
	if err := s.token.ReceiveWithAuthorization(from, s.contractAddr, value.BigInt(), validAfter, validBefore, nonce, token3009Sig); err != nil {
		return ErrTransferFailed
	}
	s.mints[key] = value.BigInt()
	return nil
}

// Burn is the on-chain burn entry point (§4.3 item 4). It verifies the
// burn proof and records B[nullifier] = (to, value). A second burn
// witness for the same nullifier overwrites the existing entry rather
// than failing — the source protocol allows this and it is preserved
// here unchanged (§9 Design Notes flags it as an open question, not a
// defect to fix).
func (s *State) Burn(to common.Address, proof []byte, nullifier, value, source, sig field.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	toField := addressToField(to)
	if !s.burnVerifier.Verify(proof, toField, nullifier, value, source, sig) {
		return ErrVerificationFailed
	}
	s.burns[mapKey(nullifier)] = BurnEntry{Recipient: to, Amount: value.BigInt()}
	return nil
}

// consumeMintOrBurn implements §4.3 item c for a single (mb, value) pair
// drawn from one of the six aggregated UTXO slots. value == 0 marks an
// ordinary transfer and is skipped entirely.
func (s *State) consumeMintOrBurn(mb, value field.Element) error {
	if value.IsZero() {
		return nil
	}
	key := mapKey(mb)

	if amt, ok := s.mints[key]; ok && amt.Sign() != 0 {
		if amt.Cmp(value.BigInt()) != 0 {
			return ErrInvalidMintBurn
		}
		delete(s.mints, key)
		return nil
	}

	if entry, ok := s.burns[key]; ok && entry.Amount != nil && entry.Amount.Sign() != 0 {
		if entry.Amount.Cmp(value.BigInt()) != 0 {
			return ErrInvalidMintBurn
		}
		skip := s.version.shortCircuitsZeroAddressBurn() && entry.Recipient == (common.Address{})
		if !skip {
			if err := s.token.Transfer(entry.Recipient, entry.Amount); err != nil {
				return ErrTransferFailed
			}
		}
		delete(s.burns, key)
		return nil
	}

	return ErrInvalidMintBurn
}
