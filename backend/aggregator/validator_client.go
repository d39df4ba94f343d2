package aggregator

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/polybase/payy/backend/validator"
	"github.com/polybase/payy/field"
	"github.com/polybase/payy/settlement"
)

// ValidatorClient requests a signature over a proposed block's digest
// from a single validator's signing oracle. The aggregator never holds
// validator key material itself.
type ValidatorClient struct {
	baseURL string
	http    *http.Client
}

// NewValidatorClient returns a client for the validator service at baseURL.
func NewValidatorClient(baseURL string, timeout time.Duration) *ValidatorClient {
	return &ValidatorClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

// RequestSignature asks the validator to sign the proposal (newRoot,
// height, extraHash) and decodes the resulting settlement.Signature.
func (c *ValidatorClient) RequestSignature(newRoot field.Element, height uint64, extraHash field.Element) (settlement.Signature, error) {
	req := validator.SignProposalRequest{
		NewRoot:   newRoot.String(),
		Height:    height,
		ExtraHash: extraHash.String(),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return settlement.Signature{}, fmt.Errorf("encoding request: %w", err)
	}

	httpResp, err := c.http.Post(c.baseURL+"/proposal/sign", "application/json", bytes.NewReader(body))
	if err != nil {
		return settlement.Signature{}, fmt.Errorf("calling validator: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return settlement.Signature{}, fmt.Errorf("validator returned status %d", httpResp.StatusCode)
	}

	var resp validator.SignProposalResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return settlement.Signature{}, fmt.Errorf("decoding validator response: %w", err)
	}
	if !resp.Success {
		return settlement.Signature{}, fmt.Errorf("validator signing failed: %s", resp.Error)
	}

	var sig settlement.Signature
	rBytes, err := hex.DecodeString(resp.R)
	if err != nil || len(rBytes) != 32 {
		return settlement.Signature{}, fmt.Errorf("invalid signature r")
	}
	copy(sig.R[:], rBytes)
	sBytes, err := hex.DecodeString(resp.S)
	if err != nil || len(sBytes) != 32 {
		return settlement.Signature{}, fmt.Errorf("invalid signature s")
	}
	copy(sig.S[:], sBytes)
	sig.V = resp.V

	return sig, nil
}
