package validator

import (
	"crypto/ecdsa"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/polybase/payy/field"
	"github.com/polybase/payy/settlement"
)

// Signer holds a validator's secp256k1 key and signs block-proposal
// digests under the settlement protocol's domain-separated scheme.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner builds a Signer from a hex-encoded private key.
func NewSigner(privateKeyHex string) (*Signer, error) {
	priv, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Signer{
		privateKey: priv,
		address:    crypto.PubkeyToAddress(priv.PublicKey),
	}, nil
}

// GenerateSigner creates a fresh key pair, for development use when no
// VALIDATOR_PRIVATE_KEY is configured.
func GenerateSigner() (*Signer, string, error) {
	priv, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, "", err
	}
	hexKey := hex.EncodeToString(crypto.FromECDSA(priv))
	return &Signer{privateKey: priv, address: crypto.PubkeyToAddress(priv.PublicKey)}, hexKey, nil
}

// Address returns the validator's on-chain identity.
func (s *Signer) Address() common.Address { return s.address }

// SignProposal signs a block proposal's digest (§3, §4.3 item e).
func (s *Signer) SignProposal(newRoot field.Element, height uint64, extraHash field.Element) (settlement.Signature, error) {
	digest := settlement.Digest(newRoot, height, extraHash)
	return settlement.SignDigest(s.privateKey, digest)
}
