package settlement

import (
	"crypto/ecdsa"
	"math/big"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/field"
)

// fakeToken is an in-memory stand-in for the external stablecoin (§1
// non-goal: the token itself is out of scope, only the interface matters).
type fakeToken struct {
	balances map[common.Address]*big.Int
}

func newFakeToken() *fakeToken { return &fakeToken{balances: map[common.Address]*big.Int{}} }

func (f *fakeToken) TransferFrom(from, to common.Address, amount *big.Int) error {
	bal := f.balances[from]
	if bal == nil || bal.Cmp(amount) < 0 {
		return ErrTransferFailed
	}
	f.balances[from] = new(big.Int).Sub(bal, amount)
	if f.balances[to] == nil {
		f.balances[to] = big.NewInt(0)
	}
	f.balances[to] = new(big.Int).Add(f.balances[to], amount)
	return nil
}

func (f *fakeToken) Transfer(to common.Address, amount *big.Int) error {
	if f.balances[to] == nil {
		f.balances[to] = big.NewInt(0)
	}
	f.balances[to] = new(big.Int).Add(f.balances[to], amount)
	return nil
}

func (f *fakeToken) ReceiveWithAuthorization(from, to common.Address, amount *big.Int, validAfter, validBefore *big.Int, nonce [32]byte, sig []byte) error {
	return f.TransferFrom(from, to, amount)
}

// allowVerifier accepts every proof; the circuits themselves are exercised
// independently in the circuit package.
type allowVerifier struct{}

func (allowVerifier) Verify(proof []byte, instances [12]field.Element, oldRoot, newRoot field.Element, utxoHashes [18]field.Element) bool {
	return true
}

type allowMintVerifier struct{}

func (allowMintVerifier) Verify(proof []byte, commitment, value, source field.Element) bool { return true }

type allowBurnVerifier struct{}

func (allowBurnVerifier) Verify(proof []byte, to, nullifier, value, source, sig field.Element) bool {
	return true
}

type testSetup struct {
	state      *State
	token      *fakeToken
	validators []*ecdsa.PrivateKey
	addrs      []common.Address
	prover     common.Address
	owner      common.Address
}

// genesisRoot is a non-zero placeholder root so that zero-root_ref
// acceptance tests are not accidentally satisfied by the ring's first
// entry happening to equal the zero element.
var genesisRoot = field.FromUint64(424242)

func newTestSetup(t *testing.T, numValidators int, version Version) *testSetup {
	t.Helper()

	keys := make([]*ecdsa.PrivateKey, numValidators)
	addrs := make([]common.Address, numValidators)
	for i := 0; i < numValidators; i++ {
		k, err := crypto.GenerateKey()
		require.NoError(t, err)
		keys[i] = k
		addrs[i] = crypto.PubkeyToAddress(k.PublicKey)
	}

	prover := common.HexToAddress("0xaaaa000000000000000000000000000000000a")
	owner := common.HexToAddress("0xbbbb000000000000000000000000000000000b")
	token := newFakeToken()

	s := &State{}
	err := s.Initialize(
		owner,
		token,
		allowVerifier{},
		allowMintVerifier{},
		allowBurnVerifier{},
		[]common.Address{prover},
		addrs,
		genesisRoot,
		version,
		big.NewInt(1337),
		common.HexToAddress("0xc0ffee0000000000000000000000000000c0ff"),
	)
	require.NoError(t, err)

	return &testSetup{state: s, token: token, validators: keys, addrs: addrs, prover: prover, owner: owner}
}

// signAll signs the block digest with every validator and returns the
// signatures sorted by recovered signer address, as VerifyBlock requires.
func (ts *testSetup) signAll(t *testing.T, newRoot field.Element, height uint64, extraHash field.Element) []Signature {
	t.Helper()
	digest := Digest(newRoot, height, extraHash)

	type signed struct {
		addr common.Address
		sig  Signature
	}
	all := make([]signed, 0, len(ts.validators))
	for i, k := range ts.validators {
		sig, err := SignDigest(k, digest)
		require.NoError(t, err)
		all = append(all, signed{addr: ts.addrs[i], sig: sig})
	}
	sort.Slice(all, func(i, j int) bool {
		return bytesLess(all[i].addr[:], all[j].addr[:])
	})

	out := make([]Signature, len(all))
	for i, s := range all {
		out[i] = s.sig
	}
	return out
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func noopSlots() [18]field.Element { return [18]field.Element{} }

// TestMintTransferBurnLifecycle covers S1: a mint, an ordinary transfer
// block, then a burn, each advancing the canonical root.
func TestMintTransferBurnLifecycle(t *testing.T) {
	ts := newTestSetup(t, 4, V4)
	ts.token.balances[ts.prover] = big.NewInt(1_000_000)

	commitment := field.FromUint64(111)
	value := field.FromUint64(500)
	source := field.FromUint64(1)

	require.NoError(t, ts.state.Mint(ts.prover, nil, commitment, value, source))
	assert.Equal(t, 0, ts.state.GetMint(commitment).Cmp(value.BigInt()))

	// Block 1: consume the mint via one of the six aggregated slots.
	slots := noopSlots()
	slots[1] = commitment // mb slot
	slots[2] = value

	root1 := field.FromUint64(777)
	sigs := ts.signAll(t, root1, 1, field.Zero())
	err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root1, slots, field.Zero(), 1, sigs)
	require.NoError(t, err)
	assert.Equal(t, 0, ts.state.GetMint(commitment).Sign())
	assert.True(t, ts.state.CurrentRoot().Equal(root1))

	// Block 2: an ordinary transfer block (all slots zero/empty).
	root2 := field.FromUint64(888)
	sigs2 := ts.signAll(t, root2, 2, field.Zero())
	err = ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, root1, root2, noopSlots(), field.Zero(), 2, sigs2)
	require.NoError(t, err)
	assert.True(t, ts.state.CurrentRoot().Equal(root2))

	// Burn: register it, then drain it in block 3.
	to := common.HexToAddress("0xdddd000000000000000000000000000000000d")
	nullifier := field.FromUint64(222)
	require.NoError(t, ts.state.Burn(to, nil, nullifier, value, source, field.Zero()))

	slots3 := noopSlots()
	slots3[4] = nullifier
	slots3[5] = value
	root3 := field.FromUint64(999)
	sigs3 := ts.signAll(t, root3, 3, field.Zero())
	err = ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, root2, root3, slots3, field.Zero(), 3, sigs3)
	require.NoError(t, err)
	assert.Equal(t, 0, ts.token.balances[to].Cmp(value.BigInt()))
}

// TestRingRecentRootBoundary covers S2: a root_ref stays acceptable for
// exactly RingSize advances, then falls out of the window.
func TestRingRecentRootBoundary(t *testing.T) {
	ts := newTestSetup(t, 3, V4)

	require.True(t, ts.state.ring.Contains(genesisRoot))

	root := genesisRoot
	for i := uint64(1); i <= RingSize; i++ {
		next := field.FromUint64(1000 + i)
		sigs := ts.signAll(t, next, i, field.Zero())
		err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, root, next, noopSlots(), field.Zero(), i, sigs)
		require.NoError(t, err)
		root = next
	}
	// genesisRoot has now been evicted after exactly RingSize further pushes.
	assert.False(t, ts.state.ring.Contains(genesisRoot))
}

// TestQuorumOffByOne covers S3: one signature short of the strict
// supermajority threshold must fail closed.
func TestQuorumOffByOne(t *testing.T) {
	ts := newTestSetup(t, 4, V4) // threshold = floor(8/3)+1 = 3
	root := field.FromUint64(1)
	sigs := ts.signAll(t, root, 1, field.Zero())
	short := sigs[:quorumThreshold(4)-1]
	err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root, noopSlots(), field.Zero(), 1, short)
	assert.ErrorIs(t, err, ErrQuorumNotMet)

	exact := sigs[:quorumThreshold(4)]
	err = ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root, noopSlots(), field.Zero(), 1, exact)
	assert.NoError(t, err)
}

// TestSignersMustBeSorted covers S4: signatures out of address order are
// rejected even when every signer individually is a valid validator.
func TestSignersMustBeSorted(t *testing.T) {
	ts := newTestSetup(t, 4, V4)
	root := field.FromUint64(1)
	sigs := ts.signAll(t, root, 1, field.Zero())
	require.True(t, len(sigs) >= 2)

	reversed := append([]Signature{}, sigs...)
	reversed[0], reversed[1] = reversed[1], reversed[0]

	err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root, noopSlots(), field.Zero(), 1, reversed)
	assert.ErrorIs(t, err, ErrSignersNotSorted)
}

// TestValidatorSetActivation covers S5: a newly set validator snapshot
// only takes effect once the block height reaches its validFrom.
func TestValidatorSetActivation(t *testing.T) {
	ts := newTestSetup(t, 3, V4)

	newKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	newAddr := crypto.PubkeyToAddress(newKey.PublicKey)

	err = ts.state.SetValidators(ts.owner, 5, []common.Address{newAddr})
	require.NoError(t, err)

	// Before height 5 the old validator set is still authoritative.
	root := field.FromUint64(1)
	sigsOld := ts.signAll(t, root, 1, field.Zero())
	err = ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root, noopSlots(), field.Zero(), 1, sigsOld)
	require.NoError(t, err)

	// At height 5, the set has switched to {newAddr} (quorum = 1), so a
	// signature from newAddr alone must now suffice.
	root2 := field.FromUint64(2)
	digest := Digest(root2, 5, field.Zero())
	sig, err := SignDigest(newKey, digest)
	require.NoError(t, err)
	err = ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, root, root2, noopSlots(), field.Zero(), 5, []Signature{sig})
	require.NoError(t, err)
}

// TestZeroRootRefOnlyAcceptedFromV4 covers S6: a zero root_ref slot (an
// empty/padding UTXO) is rejected before V4 and accepted from V4 onward.
func TestZeroRootRefOnlyAcceptedFromV4(t *testing.T) {
	for _, tc := range []struct {
		version Version
		wantErr error
	}{
		{V3, ErrInvalidRecentRoots},
		{V4, nil},
	} {
		ts := newTestSetup(t, 3, tc.version)
		slots := noopSlots() // root_ref slots all zero, none pushed into ring
		root := field.FromUint64(1)
		sigs := ts.signAll(t, root, 1, field.Zero())
		err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, genesisRoot, root, slots, field.Zero(), 1, sigs)
		if tc.wantErr == nil {
			assert.NoError(t, err)
		} else {
			assert.ErrorIs(t, err, tc.wantErr)
		}
	}
}

func TestOldRootMismatchRejected(t *testing.T) {
	ts := newTestSetup(t, 3, V2)
	root := field.FromUint64(1)
	sigs := ts.signAll(t, root, 1, field.Zero())
	err := ts.state.VerifyBlock(ts.prover, nil, [12]field.Element{}, field.FromUint64(99), root, noopSlots(), field.Zero(), 1, sigs)
	assert.ErrorIs(t, err, ErrOldRootMismatch)
}

func TestNonProverCannotVerifyBlock(t *testing.T) {
	ts := newTestSetup(t, 3, V2)
	stranger := common.HexToAddress("0xeeee000000000000000000000000000000000e")
	root := field.FromUint64(1)
	sigs := ts.signAll(t, root, 1, field.Zero())
	err := ts.state.VerifyBlock(stranger, nil, [12]field.Element{}, field.Zero(), root, noopSlots(), field.Zero(), 1, sigs)
	assert.ErrorIs(t, err, ErrNotAProver)
}

func TestBurnOverwritePreserved(t *testing.T) {
	ts := newTestSetup(t, 3, V2)
	to1 := common.HexToAddress("0x1111000000000000000000000000000000001a")
	to2 := common.HexToAddress("0x2222000000000000000000000000000000002b")
	nullifier := field.FromUint64(5)
	value := field.FromUint64(10)

	require.NoError(t, ts.state.Burn(to1, nil, nullifier, value, field.Zero(), field.Zero()))
	// A second witness for the same nullifier overwrites rather than fails.
	require.NoError(t, ts.state.Burn(to2, nil, nullifier, value, field.Zero(), field.Zero()))

	entry, ok := ts.state.GetBurn(nullifier)
	require.True(t, ok)
	assert.Equal(t, to2, entry.Recipient)
}

func TestDuplicateMintRejected(t *testing.T) {
	ts := newTestSetup(t, 3, V2)
	ts.token.balances[ts.prover] = big.NewInt(1000)
	commitment := field.FromUint64(1)
	require.NoError(t, ts.state.Mint(ts.prover, nil, commitment, field.FromUint64(10), field.Zero()))
	err := ts.state.Mint(ts.prover, nil, commitment, field.FromUint64(10), field.Zero())
	assert.ErrorIs(t, err, ErrMintExists)
}
