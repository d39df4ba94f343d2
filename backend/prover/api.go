package prover

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// API handles HTTP requests for proof generation.
type API struct {
	circuitManager *CircuitManager
}

// NewAPI creates a new API handler.
func NewAPI(cm *CircuitManager) *API {
	return &API{circuitManager: cm}
}

// GenerateMintProof handles mint-circuit proof requests.
func (api *API) GenerateMintProof(c *gin.Context) {
	var req MintProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ProofResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := api.circuitManager.GenerateMintProof(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ProofResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateBurnProof handles burn-circuit proof requests.
func (api *API) GenerateBurnProof(c *gin.Context) {
	var req BurnProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ProofResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := api.circuitManager.GenerateBurnProof(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ProofResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateUTXOProof handles shielded-transfer-circuit proof requests.
func (api *API) GenerateUTXOProof(c *gin.Context) {
	var req UTXOProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ProofResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := api.circuitManager.GenerateUTXOProof(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ProofResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateAggregateProof handles aggregation-circuit proof requests for
// a full batch of slots.
func (api *API) GenerateAggregateProof(c *gin.Context) {
	var req AggregateProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ProofResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	resp, err := api.circuitManager.GenerateAggregateProof(&req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ProofResponse{Success: false, Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns service health status.
func (api *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "prover",
	})
}
