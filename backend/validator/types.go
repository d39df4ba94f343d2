package validator

// SignProposalRequest asks the validator to sign a proposed block.
type SignProposalRequest struct {
	NewRoot   string `json:"new_root"`   // decimal field element
	Height    uint64 `json:"height"`
	ExtraHash string `json:"extra_hash"` // decimal field element
}

// SignProposalResponse carries the resulting (r, s, v) signature.
type SignProposalResponse struct {
	R       string `json:"r"`
	S       string `json:"s"`
	V       uint8  `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
