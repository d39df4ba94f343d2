package aggregator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/polybase/payy/backend/prover"
)

// ProverClient is the aggregator's HTTP boundary to a prover service. The
// aggregator owns the live tree and transaction witnesses; the prover is
// a stateless proof-generation oracle it calls per transaction.
type ProverClient struct {
	baseURL string
	http    *http.Client
}

// NewProverClient returns a client for the prover service at baseURL.
func NewProverClient(baseURL string, timeout time.Duration) *ProverClient {
	return &ProverClient{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *ProverClient) post(path string, req, resp any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	httpResp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("calling prover %s: %w", path, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("prover %s returned status %d", path, httpResp.StatusCode)
	}
	if err := json.NewDecoder(httpResp.Body).Decode(resp); err != nil {
		return fmt.Errorf("decoding prover response: %w", err)
	}
	return nil
}

// RequestMintProof asks the prover to prove a mint-circuit witness.
func (c *ProverClient) RequestMintProof(req *prover.MintProofRequest) (*prover.ProofResponse, error) {
	var resp prover.ProofResponse
	if err := c.post("/proof/mint", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("mint proof failed: %s", resp.Error)
	}
	return &resp, nil
}

// RequestBurnProof asks the prover to prove a burn-circuit witness.
func (c *ProverClient) RequestBurnProof(req *prover.BurnProofRequest) (*prover.ProofResponse, error) {
	var resp prover.ProofResponse
	if err := c.post("/proof/burn", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("burn proof failed: %s", resp.Error)
	}
	return &resp, nil
}

// RequestUTXOProof asks the prover to prove a shielded-transfer witness.
func (c *ProverClient) RequestUTXOProof(req *prover.UTXOProofRequest) (*prover.ProofResponse, error) {
	var resp prover.ProofResponse
	if err := c.post("/proof/utxo", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("utxo proof failed: %s", resp.Error)
	}
	return &resp, nil
}

// RequestAggregateProof asks the prover to fold a full batch of slots
// into a single aggregation-circuit proof.
func (c *ProverClient) RequestAggregateProof(req *prover.AggregateProofRequest) (*prover.ProofResponse, error) {
	var resp prover.ProofResponse
	if err := c.post("/proof/aggregate", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("aggregate proof failed: %s", resp.Error)
	}
	return &resp, nil
}
