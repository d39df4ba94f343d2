package aggregator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/backend/prover"
)

func TestRequestUTXOProofReturnsParsedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/proof/utxo", r.URL.Path)
		json.NewEncoder(w).Encode(prover.ProofResponse{Proof: "deadbeef", Success: true})
	}))
	defer server.Close()

	client := NewProverClient(server.URL, time.Second)
	resp, err := client.RequestUTXOProof(&prover.UTXOProofRequest{})
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", resp.Proof)
}

func TestRequestUTXOProofPropagatesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(prover.ProofResponse{Success: false, Error: "circuit not ready"})
	}))
	defer server.Close()

	client := NewProverClient(server.URL, time.Second)
	_, err := client.RequestUTXOProof(&prover.UTXOProofRequest{})
	assert.ErrorContains(t, err, "circuit not ready")
}

func TestRequestAggregateProofNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewProverClient(server.URL, time.Second)
	_, err := client.RequestAggregateProof(&prover.AggregateProofRequest{})
	assert.Error(t, err)
}
