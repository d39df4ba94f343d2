package prover

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polybase/payy/circuit"
)

func newTestMintAPI(t *testing.T) *API {
	t.Helper()
	cm := &CircuitManager{config: &Config{KeyDir: t.TempDir()}}
	require.NoError(t, cm.setup(ecc.BN254.ScalarField(), "mint", &circuit.MintCircuit{}, &cm.mint))
	return NewAPI(cm)
}

func TestGenerateMintProofHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestMintAPI(t)

	router := gin.New()
	router.POST("/proof/mint", api.GenerateMintProof)

	body, err := json.Marshal(MintProofRequest{Value: bis(10), Source: bis(1), Randomness: bis(42), OwnerSecret: bis(7)})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/proof/mint", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var resp ProofResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestGenerateMintProofHandlerRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestMintAPI(t)

	router := gin.New()
	router.POST("/proof/mint", api.GenerateMintProof)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/proof/mint", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestHealthCheckHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	api := newTestMintAPI(t)

	router := gin.New()
	router.GET("/health", api.HealthCheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
}
