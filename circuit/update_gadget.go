package circuit

import "github.com/consensys/gnark/frontend"

// TreeUpdate witnesses a single leaf mutation: the same co-path proves
// inclusion of OldLeaf under the pre-image root and of NewLeaf under the
// post-image root, since a leaf's co-path depends only on its key's
// position, never on the value stored there.
type TreeUpdate struct {
	Path       [TreeDepth]frontend.Variable
	Directions [TreeDepth]frontend.Variable
	OldLeaf    frontend.Variable
	NewLeaf    frontend.Variable
}

func rootFromLeaf(api frontend.API, leaf frontend.Variable, path, directions [TreeDepth]frontend.Variable) (frontend.Variable, error) {
	current := leaf
	for i := 0; i < TreeDepth; i++ {
		left := api.Select(directions[i], path[i], current)
		right := api.Select(directions[i], current, path[i])
		next, err := hash2(api, left, right)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

// Apply asserts that re-deriving the root from OldLeaf reproduces
// preRoot, then returns the root re-derived from NewLeaf along the same
// co-path — the tree's state after this single leaf mutation.
func (u *TreeUpdate) Apply(api frontend.API, preRoot frontend.Variable) (frontend.Variable, error) {
	before, err := rootFromLeaf(api, u.OldLeaf, u.Path, u.Directions)
	if err != nil {
		return nil, err
	}
	api.AssertIsEqual(before, preRoot)

	return rootFromLeaf(api, u.NewLeaf, u.Path, u.Directions)
}
