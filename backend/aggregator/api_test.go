package aggregator

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/backend/prover"
	"github.com/polybase/payy/field"
	"github.com/polybase/payy/smirk"
)

func newTestAggregatorAPI() (*API, *Mempool, *Tree) {
	mempool := NewMempool()
	tree := NewTree()
	return NewAPI(mempool, tree, nil), mempool, tree
}

func TestSubmitTransactionQueuesPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api, mempool, _ := newTestAggregatorAPI()

	router := gin.New()
	router.POST("/tx/submit", api.SubmitTransaction)

	body, err := json.Marshal(SubmitTxRequest{
		Transaction: prover.UTXOProofRequest{},
		RootRef:     "0",
		Value:       "0",
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tx/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	assert.Equal(t, 1, mempool.Len())
}

func TestSubmitTransactionRejectsBadDecimal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api, mempool, _ := newTestAggregatorAPI()

	router := gin.New()
	router.POST("/tx/submit", api.SubmitTransaction)

	body, err := json.Marshal(SubmitTxRequest{RootRef: "not-a-number", Value: "1"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tx/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, 0, mempool.Len())
}

func TestGetWitnessReturnsCurrentProof(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api, _, tree := newTestAggregatorAPI()

	key := field.FromUint64(5).BigInt()
	require.NoError(t, tree.Insert(key, field.FromUint64(77)))

	router := gin.New()
	router.POST("/tree/witness", api.GetWitness)

	body, err := json.Marshal(WitnessRequest{Key: "5"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/tree/witness", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp prover.MerkleWitnessRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Path, smirk.Depth)
	assert.Equal(t, key, resp.Key.Int)
}

func TestGetLastCalldataAbsentBeforeAnyBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mempool := NewMempool()
	tree := NewTree()
	builder := &BlockBuilder{Tree: tree, Mempool: mempool}
	api := NewAPI(mempool, tree, builder)

	router := gin.New()
	router.GET("/block/calldata", api.GetLastCalldata)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/block/calldata", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp LastCalldataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Present)
	assert.Empty(t, resp.Calldata)
}

func TestGetLastCalldataReturnsHexOnceBuilderHasOne(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mempool := NewMempool()
	tree := NewTree()
	builder := &BlockBuilder{Tree: tree, Mempool: mempool, LastCalldata: []byte{0xde, 0xad, 0xbe, 0xef}}
	api := NewAPI(mempool, tree, builder)

	router := gin.New()
	router.GET("/block/calldata", api.GetLastCalldata)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/block/calldata", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp LastCalldataResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Present)
	assert.Equal(t, "deadbeef", resp.Calldata)
}

func TestInfoReportsRootAndMempoolDepth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api, mempool, _ := newTestAggregatorAPI()
	mempool.Add(pendingTx(1))

	router := gin.New()
	router.GET("/info", api.Info)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/info", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, smirk.EmptyRoot().String(), body["root"])
	assert.Equal(t, float64(1), body["mempool_depth"])
}
