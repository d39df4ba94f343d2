package aggregator

import (
	"encoding/base64"
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/polybase/payy/backend/pkg/metrics"
	"github.com/polybase/payy/backend/prover"
	"github.com/polybase/payy/circuit"
	"github.com/polybase/payy/field"
	"github.com/polybase/payy/poseidon"
	"github.com/polybase/payy/settlement"
	"github.com/polybase/payy/verifier"
)

// AccumulatorSource supplies the opaque KZG accumulator instance limbs
// the external halo2 aggregation step produces for a batch of UTXO
// proofs (the production counterpart of circuit.InnerVerifier — see its
// doc comment). BuildBlock treats the result as pass-through data.
type AccumulatorSource interface {
	Accumulate(utxoProofs [][]byte) ([circuit.NumAggrInstances]field.Element, error)
}

// BlockBuilder assembles pending transactions into a block, drives proof
// generation and validator signing, and submits the result to the
// settlement state machine. It is the off-chain analogue of the
// contract's verifyBlock caller.
type BlockBuilder struct {
	Tree        *Tree
	Mempool     *Mempool
	Prover      *ProverClient
	Validators  []*ValidatorClient
	Accumulator AccumulatorSource
	Settlement  *settlement.State
	Caller      common.Address

	// LastCalldata holds the instances||proof bytes (§4.4) assembled for
	// the most recent block, the exact payload a real submitter would
	// staticcall the on-chain aggregate verifier with.
	LastCalldata []byte
}

// noOpSlot fills an unused aggregation slot with a value=0, mb=0 transfer
// referencing the tree's current root — a valid no-op under every
// protocol version, not only the V4+ zero-root-ref exemption.
func noOpSlot(root field.Element) PendingTx {
	return PendingTx{RootRef: root, MB: field.Zero(), Value: field.Zero()}
}

func isNoOpSlot(tx PendingTx) bool {
	return tx.Request.RootRef.Int == nil
}

// BuildBlock drains up to NumAggregatedUTXOs pending transactions,
// proves each one, folds their tree transitions, obtains the aggregation
// proof, collects a quorum of validator signatures, and submits the
// block to Settlement. It returns early with no error and no effect if
// the mempool is empty.
func (b *BlockBuilder) BuildBlock() error {
	if b.Mempool.Len() == 0 {
		return nil
	}

	oldRoot := b.Tree.Root()
	batch := b.Mempool.Drain(circuit.NumAggregatedUTXOs)
	for len(batch) < circuit.NumAggregatedUTXOs {
		batch = append(batch, noOpSlot(oldRoot))
	}

	utxoProofs := make([][]byte, circuit.NumAggregatedUTXOs)
	transitions := make([]prover.TxTransitionRequest, circuit.NumAggregatedUTXOs)

	for i := range batch {
		if isNoOpSlot(batch[i]) {
			transitions[i] = noOpTransition(b.Tree)
			continue
		}
		resp, err := b.Prover.RequestUTXOProof(&batch[i].Request)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		utxoProofs[i] = []byte(resp.Proof)

		transition, err := b.foldTransaction(batch[i])
		if err != nil {
			return fmt.Errorf("slot %d: folding tree transition: %w", i, err)
		}
		transitions[i] = transition
	}

	newRoot := b.Tree.Root()

	var utxoHashes [18]field.Element
	for i, tx := range batch {
		utxoHashes[3*i] = tx.RootRef
		utxoHashes[3*i+1] = tx.MB
		utxoHashes[3*i+2] = tx.Value
	}

	instances, err := b.Accumulator.Accumulate(utxoProofs)
	if err != nil {
		return fmt.Errorf("accumulating utxo proofs: %w", err)
	}

	aggReq := &prover.AggregateProofRequest{
		OldRoot:       bigIntString(oldRoot),
		NewRoot:       bigIntString(newRoot),
		UtxoHashes:    fieldsToBigIntStrings(utxoHashes[:]),
		AggrInstances: fieldsToBigIntStrings(instances[:]),
		Transactions:  transitions,
	}
	aggResp, err := b.Prover.RequestAggregateProof(aggReq)
	if err != nil {
		return fmt.Errorf("aggregate proof: %w", err)
	}
	proof, err := base64.StdEncoding.DecodeString(aggResp.Proof)
	if err != nil {
		return fmt.Errorf("decoding aggregate proof: %w", err)
	}

	height := b.Settlement.BlockHeight() + 1
	extraHash := field.Zero()

	signatures, err := b.collectSignatures(newRoot, height, extraHash)
	if err != nil {
		return fmt.Errorf("collecting signatures: %w", err)
	}
	metrics.SetQuorumSize(len(signatures))

	publicVector := make([]field.Element, 0, verifier.AggregateInstanceCount)
	publicVector = append(publicVector, instances[:]...)
	publicVector = append(publicVector, oldRoot, newRoot)
	publicVector = append(publicVector, utxoHashes[:]...)
	b.LastCalldata = verifier.EncodeCalldata(publicVector, proof)

	err = b.Settlement.VerifyBlock(b.Caller, proof, instances, oldRoot, newRoot, utxoHashes, extraHash, height, signatures)
	metrics.RecordVerifyBlock(err == nil)
	if err != nil {
		return err
	}
	metrics.SetRootRingHead(height)
	return nil
}

// foldTransaction applies a slot's input removals and output insertions
// to the aggregator's live tree, capturing the before/after tree-update
// witnesses the aggregation circuit needs along the way. A burn slot
// additionally inserts a nullifier leaf keyed by mb.
func (b *BlockBuilder) foldTransaction(tx PendingTx) (prover.TxTransitionRequest, error) {
	var out prover.TxTransitionRequest
	out.RemoveInput = make([]prover.TreeUpdateRequest, len(tx.Request.Inputs))
	for k, in := range tx.Request.Inputs {
		key := in.Witness.Key.Int
		witness := b.Tree.Prove(key)
		out.RemoveInput[k] = prover.TreeUpdateRequest{
			Key:     prover.BigIntString{Int: key},
			Path:    fieldsToBigIntStrings(witness.Path[:]),
			OldLeaf: prover.BigIntString{Int: witness.Value.BigInt()},
			NewLeaf: prover.BigIntString{Int: big.NewInt(0)},
		}
		if err := b.Tree.Remove(key); err != nil {
			return out, err
		}
	}

	out.InsertOutput = make([]prover.TreeUpdateRequest, len(tx.Request.Outputs))
	for j, o := range tx.Request.Outputs {
		commitment, err := outputCommitment(o)
		if err != nil {
			return out, err
		}
		key := commitment.BigInt()
		witness := b.Tree.Prove(key)
		out.InsertOutput[j] = prover.TreeUpdateRequest{
			Key:     prover.BigIntString{Int: key},
			Path:    fieldsToBigIntStrings(witness.Path[:]),
			OldLeaf: prover.BigIntString{Int: big.NewInt(0)},
			NewLeaf: prover.BigIntString{Int: commitment.BigInt()},
		}
		if err := b.Tree.Insert(key, commitment); err != nil {
			return out, err
		}
	}

	isBurn := !tx.Value.IsZero() && !tx.Request.IsMint
	out.IsBurn = isBurn
	out.IsMint = !tx.Value.IsZero() && tx.Request.IsMint
	if isBurn {
		key := tx.MB.BigInt()
		witness := b.Tree.Prove(key)
		out.NullifierIns = prover.TreeUpdateRequest{
			Key:     prover.BigIntString{Int: key},
			Path:    fieldsToBigIntStrings(witness.Path[:]),
			OldLeaf: prover.BigIntString{Int: big.NewInt(0)},
			NewLeaf: prover.BigIntString{Int: tx.MB.BigInt()},
		}
		if err := b.Tree.Insert(key, tx.MB); err != nil {
			return out, err
		}
	} else {
		out.NullifierIns = noOpUpdate(b.Tree)
	}

	return out, nil
}

// noOpUpdate captures a trivial identity tree-update witness at an
// arbitrary key (the zero key), valid regardless of the tree's current
// shape, for slots and fields that do not mutate the tree this round.
func noOpUpdate(tree *Tree) prover.TreeUpdateRequest {
	key := big.NewInt(0)
	witness := tree.Prove(key)
	leaf := prover.BigIntString{Int: witness.Value.BigInt()}
	return prover.TreeUpdateRequest{
		Key:     prover.BigIntString{Int: key},
		Path:    fieldsToBigIntStrings(witness.Path[:]),
		OldLeaf: leaf,
		NewLeaf: leaf,
	}
}

func noOpTransition(tree *Tree) prover.TxTransitionRequest {
	return prover.TxTransitionRequest{
		RemoveInput:  []prover.TreeUpdateRequest{noOpUpdate(tree), noOpUpdate(tree)},
		InsertOutput: []prover.TreeUpdateRequest{noOpUpdate(tree), noOpUpdate(tree), noOpUpdate(tree), noOpUpdate(tree)},
		IsBurn:       false,
		NullifierIns: noOpUpdate(tree),
	}
}

// deriveMB computes the mb value an aggregated UTXO slot must publish,
// never taken verbatim from the submitter: zero for a transfer, the
// commitment claiming the minted value for a mint-consuming slot
// (Outputs[0]), or the nullifier of the note withdrawn for a
// burn-producing slot (Inputs[0]) — mirroring exactly what UTXOCircuit
// and AggregateCircuit themselves assert, so a mismatched submission
// simply fails to key the tree the way any later proof would expect.
func deriveMB(req prover.UTXOProofRequest, value field.Element) (field.Element, error) {
	if value.IsZero() {
		return field.Zero(), nil
	}
	if len(req.Outputs) == 0 || len(req.Inputs) == 0 {
		return field.Element{}, fmt.Errorf("mb derivation: transaction missing inputs/outputs")
	}
	if req.IsMint {
		return outputCommitment(req.Outputs[0])
	}
	ownerSecret, err := field.FromBigInt(req.Inputs[0].Note.OwnerSecret.Int)
	if err != nil {
		return field.Element{}, err
	}
	commitment, err := outputCommitment(req.Inputs[0].Note)
	if err != nil {
		return field.Element{}, err
	}
	return poseidon.HashN(ownerSecret, commitment), nil
}

func fieldsToBigIntStrings(es []field.Element) []prover.BigIntString {
	out := make([]prover.BigIntString, len(es))
	for i, e := range es {
		out[i] = bigIntString(e)
	}
	return out
}

// collectSignatures requests a signature from every configured validator
// and returns those that recover to a distinct signer, sorted by
// signer address ascending as VerifyBlock requires.
func (b *BlockBuilder) collectSignatures(newRoot field.Element, height uint64, extraHash field.Element) ([]settlement.Signature, error) {
	type signed struct {
		sig    settlement.Signature
		signer common.Address
	}

	digest := settlement.Digest(newRoot, height, extraHash)
	var collected []signed
	seen := make(map[common.Address]bool)
	for _, vc := range b.Validators {
		sig, err := vc.RequestSignature(newRoot, height, extraHash)
		if err != nil {
			continue
		}
		signer, err := settlement.RecoverSigner(digest, sig)
		if err != nil || seen[signer] {
			continue
		}
		seen[signer] = true
		collected = append(collected, signed{sig: sig, signer: signer})
	}

	sort.Slice(collected, func(i, j int) bool {
		return bytesLess(collected[i].signer[:], collected[j].signer[:])
	})

	out := make([]settlement.Signature, len(collected))
	for i, c := range collected {
		out[i] = c.sig
	}
	return out, nil
}

func bytesLess(a, b []byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// outputCommitment recomputes a new note's commitment from the same
// request the prover was given, so BuildBlock can insert it into the
// tree self-keyed (key == value == commitment, matching how every
// existing note commitment is stored).
func outputCommitment(n prover.NoteRequest) (field.Element, error) {
	value, err := field.FromBigInt(n.Value.Int)
	if err != nil {
		return field.Element{}, err
	}
	source, err := field.FromBigInt(n.Source.Int)
	if err != nil {
		return field.Element{}, err
	}
	randomness, err := field.FromBigInt(n.Randomness.Int)
	if err != nil {
		return field.Element{}, err
	}
	ownerSecret, err := field.FromBigInt(n.OwnerSecret.Int)
	if err != nil {
		return field.Element{}, err
	}
	ownerPubKey := poseidon.HashN(ownerSecret)
	return poseidon.HashN(value, source, randomness, ownerPubKey), nil
}
