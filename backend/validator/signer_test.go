package validator

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/field"
	"github.com/polybase/payy/settlement"
)

func TestSignProposalRecoversSigner(t *testing.T) {
	signer, _, err := GenerateSigner()
	require.NoError(t, err)

	newRoot := field.FromUint64(123)
	extraHash := field.FromUint64(0)
	var height uint64 = 7

	sig, err := signer.SignProposal(newRoot, height, extraHash)
	require.NoError(t, err)

	digest := settlement.Digest(newRoot, height, extraHash)
	recovered, err := settlement.RecoverSigner(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), recovered)
}

func TestSignProposalDiffersByHeight(t *testing.T) {
	signer, _, err := GenerateSigner()
	require.NoError(t, err)

	newRoot := field.FromUint64(9)
	extraHash := field.FromUint64(0)

	sigA, err := signer.SignProposal(newRoot, 1, extraHash)
	require.NoError(t, err)
	sigB, err := signer.SignProposal(newRoot, 2, extraHash)
	require.NoError(t, err)

	assert.NotEqual(t, sigA.R, sigB.R)
}

func TestNewSignerFromHexKey(t *testing.T) {
	_, hexKey, err := GenerateSigner()
	require.NoError(t, err)

	signer, err := NewSigner(hexKey)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, signer.Address())
}

func TestNewSignerRejectsInvalidHex(t *testing.T) {
	_, err := NewSigner("not-a-valid-key")
	assert.Error(t, err)
}
