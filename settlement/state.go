// Package settlement implements the on-chain settlement contract's state
// machine as a plain Go value type: pending mint/burn ledgers, the
// rolling root ring, the multi-version validator-set registry, the
// signed-proposal verification protocol, and the proof-gated root
// advancement described in §4.3. Every entry point here models one
// contract call and is expected to run to completion as an atomic step
// (§5) — callers serialize access with the State's own mutex.
package settlement

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polybase/payy/field"
)

// AggregateVerifier checks the aggregation proof against the 32-element
// public-input vector (§4.2, §4.4). It is the Go boundary to the
// out-of-scope halo2/KZG-backed EVM verifier artifact.
type AggregateVerifier interface {
	Verify(proof []byte, instances [12]field.Element, oldRoot, newRoot field.Element, utxoHashes [18]field.Element) bool
}

// MintVerifier checks a mint circuit proof against its 3-element public
// vector.
type MintVerifier interface {
	Verify(proof []byte, commitment, value, source field.Element) bool
}

// BurnVerifier checks a burn circuit proof against its 5-element public
// vector.
type BurnVerifier interface {
	Verify(proof []byte, to, nullifier, value, source, sig field.Element) bool
}

// Token is the boundary to the external stablecoin (out of scope per §1:
// "the stablecoin token, its EIP-3009 authorization flow... are
// external collaborators").
type Token interface {
	TransferFrom(from common.Address, to common.Address, amount *big.Int) error
	Transfer(to common.Address, amount *big.Int) error
	ReceiveWithAuthorization(from, to common.Address, amount *big.Int, validAfter, validBefore *big.Int, nonce [32]byte, sig []byte) error
}

// BurnEntry is a pending burn ledger value: a recipient and a positive
// amount awaiting settlement.
type BurnEntry struct {
	Recipient common.Address
	Amount    *big.Int
}

// ValidatorSnapshot is one entry of the validator-set registry V: a set
// of addresses effective from a given height onward.
type ValidatorSnapshot struct {
	Set       map[common.Address]bool
	ValidFrom uint64
}

// State is the settlement contract's full persisted state (§6 "Persisted
// state layout"). The zero value is not usable; build one with
// Initialize.
type State struct {
	mu sync.Mutex

	version     Version
	initialized bool

	blockHash   field.Element
	blockHeight uint64

	ring Ring

	mints map[string]*big.Int    // commitment (hex) -> amount, 0 == absent
	burns map[string]BurnEntry   // nullifier (hex) -> (recipient, amount)

	validators         []ValidatorSnapshot
	validatorSetIndex  int

	aggregateVerifier AggregateVerifier
	mintVerifier      MintVerifier
	burnVerifier      BurnVerifier
	token             Token

	provers map[common.Address]bool
	owner   common.Address

	chainID       *big.Int
	contractAddr  common.Address
}

func mapKey(e field.Element) string { return e.String() }

// Initialize is the contract's one-shot constructor (§4.3 item 1). It
// seeds the domain separator inputs, registers the verifiers and token,
// seeds V[0] = (initialValidators, validFrom=0), and pushes genesisRoot
// into the root ring. It fails with ErrAlreadyInitialized on a second
// call.
func (s *State) Initialize(
	owner common.Address,
	token Token,
	aggregateVerifier AggregateVerifier,
	mintVerifier MintVerifier,
	burnVerifier BurnVerifier,
	initialProvers []common.Address,
	initialValidators []common.Address,
	genesisRoot field.Element,
	version Version,
	chainID *big.Int,
	contractAddr common.Address,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return ErrAlreadyInitialized
	}

	s.owner = owner
	s.token = token
	s.aggregateVerifier = aggregateVerifier
	s.mintVerifier = mintVerifier
	s.burnVerifier = burnVerifier
	s.version = version
	s.chainID = new(big.Int).Set(chainID)
	s.contractAddr = contractAddr

	s.mints = make(map[string]*big.Int)
	s.burns = make(map[string]BurnEntry)

	set := make(map[common.Address]bool, len(initialValidators))
	for _, v := range initialValidators {
		set[v] = true
	}
	s.validators = []ValidatorSnapshot{{Set: set, ValidFrom: 0}}
	s.validatorSetIndex = 0

	s.provers = make(map[common.Address]bool, len(initialProvers))
	for _, p := range initialProvers {
		s.provers[p] = true
	}

	s.ring = NewRing()
	s.ring.Push(genesisRoot)

	s.initialized = true
	return nil
}

// Version reports the currently active protocol-version gate.
func (s *State) Version() Version {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// CurrentRoot returns R[head-1], the contract's current canonical root.
func (s *State) CurrentRoot() field.Element {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ring.Current()
}

// BlockHeight returns the height of the last accepted block.
func (s *State) BlockHeight() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blockHeight
}

// GetMint reads M[commitment] without consuming it; 0 means absent.
func (s *State) GetMint(commitment field.Element) *big.Int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.mints[mapKey(commitment)]; ok {
		return new(big.Int).Set(v)
	}
	return big.NewInt(0)
}

// GetBurn reads B[nullifier] without consuming it.
func (s *State) GetBurn(nullifier field.Element) (BurnEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.burns[mapKey(nullifier)]
	return e, ok
}

// AddProver grants an address the prover role required by VerifyBlock
// (owner-only maintenance, §4.3 item 7).
func (s *State) AddProver(caller, prover common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotAProver
	}
	s.provers[prover] = true
	return nil
}

// SetRoot is the owner-only manual-recovery facility: it pushes a root
// into the ring unconditionally, outside the normal verifyBlock protocol
// (§4.3 item 7).
func (s *State) SetRoot(caller common.Address, newRoot field.Element) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if caller != s.owner {
		return ErrNotAProver
	}
	s.ring.Push(newRoot)
	return nil
}
