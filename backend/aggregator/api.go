package aggregator

import (
	"encoding/hex"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polybase/payy/backend/prover"
	"github.com/polybase/payy/field"
)

// SubmitTxRequest carries a shielded transaction's full witness (the
// same request shape the prover's UTXO endpoint expects) plus the
// root_ref and value the settlement contract will publish for this
// slot. mb is deliberately not part of the wire format: SubmitTransaction
// derives it itself from Transaction, the same way the prover does, so
// an untrusted caller can never choose what nullifier or mint commitment
// its transaction keys in the tree.
type SubmitTxRequest struct {
	Transaction prover.UTXOProofRequest `json:"transaction"`
	RootRef     string                  `json:"root_ref"`
	Value       string                  `json:"value"`
}

// SubmitTxResponse acknowledges a queued transaction.
type SubmitTxResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// API handles HTTP requests for submitting transactions and inspecting
// aggregator state.
type API struct {
	mempool *Mempool
	tree    *Tree
	builder *BlockBuilder
}

// NewAPI creates a new API handler.
func NewAPI(mempool *Mempool, tree *Tree, builder *BlockBuilder) *API {
	return &API{mempool: mempool, tree: tree, builder: builder}
}

func parseFieldDecimal(s string) (field.Element, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return field.Element{}, errDecimal(s)
	}
	return field.FromBigInt(x)
}

type decimalError string

func (e decimalError) Error() string { return "invalid decimal field element: " + string(e) }
func errDecimal(s string) error      { return decimalError(s) }

// SubmitTransaction queues a shielded transaction for inclusion in the
// next block.
func (api *API) SubmitTransaction(c *gin.Context) {
	var req SubmitTxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, SubmitTxResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	rootRef, err := parseFieldDecimal(req.RootRef)
	if err != nil {
		c.JSON(http.StatusBadRequest, SubmitTxResponse{Success: false, Error: err.Error()})
		return
	}
	value, err := parseFieldDecimal(req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, SubmitTxResponse{Success: false, Error: err.Error()})
		return
	}
	mb, err := deriveMB(req.Transaction, value)
	if err != nil {
		c.JSON(http.StatusBadRequest, SubmitTxResponse{Success: false, Error: err.Error()})
		return
	}

	api.mempool.Add(PendingTx{
		Request: req.Transaction,
		RootRef: rootRef,
		MB:      mb,
		Value:   value,
	})

	c.JSON(http.StatusOK, SubmitTxResponse{Success: true})
}

// WitnessRequest asks for a key's current membership witness against the
// aggregator's live tree, so a client can build an input note's
// SpentNoteRequest before submitting a transaction.
type WitnessRequest struct {
	Key string `json:"key"`
}

// GetWitness returns a key's current Merkle witness.
func (api *API) GetWitness(c *gin.Context) {
	var req WitnessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	key, ok := new(big.Int).SetString(req.Key, 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid decimal key"})
		return
	}

	witness := api.tree.Prove(key)
	c.JSON(http.StatusOK, merkleWitnessRequest(witness))
}

// Info reports the aggregator's current tree root and mempool depth.
func (api *API) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"root":          api.tree.Root().String(),
		"mempool_depth": api.mempool.Len(),
	})
}

// LastCalldataResponse carries the raw bytes (hex-encoded) a submitter
// would staticcall the on-chain aggregate verifier contract with for
// the most recently accepted block.
type LastCalldataResponse struct {
	Calldata string `json:"calldata,omitempty"`
	Present  bool   `json:"present"`
}

// GetLastCalldata returns the instances||proof calldata (§4.4) assembled
// for the most recently accepted block, so an external submitter can
// replay it against the real on-chain verifier without recomputing the
// proof or public vector itself.
func (api *API) GetLastCalldata(c *gin.Context) {
	if api.builder == nil || len(api.builder.LastCalldata) == 0 {
		c.JSON(http.StatusOK, LastCalldataResponse{Present: false})
		return
	}
	c.JSON(http.StatusOK, LastCalldataResponse{
		Calldata: hex.EncodeToString(api.builder.LastCalldata),
		Present:  true,
	})
}

// HealthCheck returns service health status.
func (api *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "aggregator",
	})
}
