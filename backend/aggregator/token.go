package aggregator

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// devToken is an in-memory stand-in for the external stablecoin contract
// (§1: "the stablecoin token, its EIP-3009 authorization flow... are
// external collaborators"). It satisfies settlement.Token so the
// aggregator can run end-to-end locally; a real deployment replaces it
// with an ethclient-backed binding against the deployed token.
type devToken struct {
	balances map[common.Address]*big.Int
}

func newDevToken() *devToken {
	return &devToken{balances: map[common.Address]*big.Int{}}
}

func (t *devToken) TransferFrom(from, to common.Address, amount *big.Int) error {
	bal := t.balances[from]
	if bal == nil {
		bal = big.NewInt(0)
	}
	t.balances[from] = new(big.Int).Sub(bal, amount)
	t.credit(to, amount)
	return nil
}

func (t *devToken) Transfer(to common.Address, amount *big.Int) error {
	t.credit(to, amount)
	return nil
}

func (t *devToken) ReceiveWithAuthorization(from, to common.Address, amount *big.Int, validAfter, validBefore *big.Int, nonce [32]byte, sig []byte) error {
	return t.TransferFrom(from, to, amount)
}

func (t *devToken) credit(addr common.Address, amount *big.Int) {
	bal := t.balances[addr]
	if bal == nil {
		bal = big.NewInt(0)
	}
	t.balances[addr] = new(big.Int).Add(bal, amount)
}
