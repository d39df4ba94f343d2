package aggregator

import (
	"github.com/polybase/payy/backend/prover"
	"github.com/polybase/payy/field"
	"github.com/polybase/payy/smirk"
)

func bigIntString(e field.Element) prover.BigIntString {
	return prover.BigIntString{Int: e.BigInt()}
}

// merkleWitnessRequest converts a smirk membership witness into the wire
// form the prover's UTXO/burn endpoints expect.
func merkleWitnessRequest(w smirk.Witness) prover.MerkleWitnessRequest {
	path := make([]prover.BigIntString, len(w.Path))
	for i, p := range w.Path {
		path[i] = prover.BigIntString{Int: p.BigInt()}
	}
	return prover.MerkleWitnessRequest{
		Key:  prover.BigIntString{Int: w.Key},
		Path: path,
	}
}
