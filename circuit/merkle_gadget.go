package circuit

import (
	"github.com/consensys/gnark/frontend"

	"github.com/polybase/payy/smirk"
)

// TreeDepth is the in-circuit Merkle gadget's depth. It must equal
// smirk.Depth for native and in-circuit roots to ever agree.
const TreeDepth = smirk.Depth

// MerkleProof is a fixed-depth sparse Merkle membership gadget: it
// recomputes the root from a leaf and a co-path and constrains it equal
// to RootHash. Direction convention matches smirk.bitAt: Directions[i]==0
// means the leaf/accumulator is the left child at level i (sibling on the
// right); Directions[i]==1 means the reverse.
type MerkleProof struct {
	RootHash   frontend.Variable
	LeafValue  frontend.Variable
	ProofPath  [TreeDepth]frontend.Variable
	Directions [TreeDepth]frontend.Variable
}

// Define asserts that re-deriving the root from LeafValue, ProofPath, and
// Directions reproduces RootHash.
func (m *MerkleProof) Define(api frontend.API) error {
	root, err := rootFromLeaf(api, m.LeafValue, m.ProofPath, m.Directions)
	if err != nil {
		return err
	}
	api.AssertIsEqual(root, m.RootHash)
	return nil
}
