package prover

import (
	"fmt"

	"github.com/polybase/payy/circuit"
	"github.com/polybase/payy/smirk"
)

func treeUpdateAssignment(u TreeUpdateRequest) (circuit.TreeUpdate, error) {
	if len(u.Path) != smirk.Depth {
		return circuit.TreeUpdate{}, fmt.Errorf("tree update: expected %d path elements, got %d", smirk.Depth, len(u.Path))
	}
	if u.Key.Int == nil {
		return circuit.TreeUpdate{}, fmt.Errorf("tree update: missing key")
	}

	var tu circuit.TreeUpdate
	for i := 0; i < smirk.Depth; i++ {
		pathElem, err := toField(u.Path[i], "tree update path element")
		if err != nil {
			return circuit.TreeUpdate{}, err
		}
		tu.Path[i] = pathElem.BigInt()
		tu.Directions[i] = u.Key.Bit(i)
	}

	oldLeaf, err := toField(u.OldLeaf, "tree update old leaf")
	if err != nil {
		return circuit.TreeUpdate{}, err
	}
	newLeaf, err := toField(u.NewLeaf, "tree update new leaf")
	if err != nil {
		return circuit.TreeUpdate{}, err
	}
	tu.OldLeaf = oldLeaf.BigInt()
	tu.NewLeaf = newLeaf.BigInt()
	return tu, nil
}

// GenerateAggregateProof builds and proves an AggregateCircuit assignment
// for one full batch of NumAggregatedUTXOs slots.
func (cm *CircuitManager) GenerateAggregateProof(req *AggregateProofRequest) (*ProofResponse, error) {
	if len(req.UtxoHashes) != 3*circuit.NumAggregatedUTXOs {
		return nil, fmt.Errorf("expected %d utxo hashes, got %d", 3*circuit.NumAggregatedUTXOs, len(req.UtxoHashes))
	}
	if len(req.AggrInstances) != circuit.NumAggrInstances {
		return nil, fmt.Errorf("expected %d aggregate instances, got %d", circuit.NumAggrInstances, len(req.AggrInstances))
	}
	if len(req.Transactions) != circuit.NumAggregatedUTXOs {
		return nil, fmt.Errorf("expected %d transactions, got %d", circuit.NumAggregatedUTXOs, len(req.Transactions))
	}

	oldRoot, err := toField(req.OldRoot, "old_root")
	if err != nil {
		return nil, err
	}
	newRoot, err := toField(req.NewRoot, "new_root")
	if err != nil {
		return nil, err
	}

	var assignment circuit.AggregateCircuit
	assignment.OldRoot = oldRoot.BigInt()
	assignment.NewRoot = newRoot.BigInt()

	publicInputs := make([]string, 0, circuit.NumAggrInstances+2+3*circuit.NumAggregatedUTXOs)

	for i, inst := range req.AggrInstances {
		e, err := toField(inst, "aggr_instances")
		if err != nil {
			return nil, err
		}
		assignment.AggrInstances[i] = e.BigInt()
		publicInputs = append(publicInputs, e.String())
	}
	publicInputs = append(publicInputs, oldRoot.String(), newRoot.String())
	for i, h := range req.UtxoHashes {
		e, err := toField(h, "utxo_hashes")
		if err != nil {
			return nil, err
		}
		assignment.UtxoHashes[i] = e.BigInt()
		publicInputs = append(publicInputs, e.String())
	}

	for i, tx := range req.Transactions {
		if len(tx.RemoveInput) != circuit.NumInputs {
			return nil, fmt.Errorf("transaction %d: expected %d input removals, got %d", i, circuit.NumInputs, len(tx.RemoveInput))
		}
		if len(tx.InsertOutput) != circuit.NumOutputs {
			return nil, fmt.Errorf("transaction %d: expected %d output insertions, got %d", i, circuit.NumOutputs, len(tx.InsertOutput))
		}

		var transition circuit.TxTransition
		for k, u := range tx.RemoveInput {
			update, err := treeUpdateAssignment(u)
			if err != nil {
				return nil, fmt.Errorf("transaction %d input %d: %w", i, k, err)
			}
			transition.RemoveInput[k] = update
		}
		for j, u := range tx.InsertOutput {
			update, err := treeUpdateAssignment(u)
			if err != nil {
				return nil, fmt.Errorf("transaction %d output %d: %w", i, j, err)
			}
			transition.InsertOutput[j] = update
		}
		nullifierUpdate, err := treeUpdateAssignment(tx.NullifierIns)
		if err != nil {
			return nil, fmt.Errorf("transaction %d nullifier: %w", i, err)
		}
		transition.NullifierIns = nullifierUpdate
		if tx.IsBurn {
			transition.IsBurn = 1
		} else {
			transition.IsBurn = 0
		}
		if tx.IsMint {
			transition.IsMint = 1
		} else {
			transition.IsMint = 0
		}

		assignment.Transactions[i] = transition
	}

	proofB64, err := prove(cm.aggregate, &assignment)
	if err != nil {
		return nil, err
	}
	return &ProofResponse{
		Proof:        proofB64,
		PublicInputs: publicInputs,
		Success:      true,
	}, nil
}
