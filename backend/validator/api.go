package validator

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polybase/payy/field"
)

// API handles HTTP requests for proposal signing.
type API struct {
	signer *Signer
}

// NewAPI creates a new API handler.
func NewAPI(signer *Signer) *API {
	return &API{signer: signer}
}

func parseFieldDecimal(s string) (field.Element, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return field.Element{}, fmt.Errorf("invalid decimal field element: %q", s)
	}
	return field.FromBigInt(x)
}

// SignProposal handles a request to sign a proposed block's digest.
func (api *API) SignProposal(c *gin.Context) {
	var req SignProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, SignProposalResponse{Success: false, Error: "invalid request: " + err.Error()})
		return
	}

	newRoot, err := parseFieldDecimal(req.NewRoot)
	if err != nil {
		c.JSON(http.StatusBadRequest, SignProposalResponse{Success: false, Error: err.Error()})
		return
	}
	extraHash, err := parseFieldDecimal(req.ExtraHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, SignProposalResponse{Success: false, Error: err.Error()})
		return
	}

	sig, err := api.signer.SignProposal(newRoot, req.Height, extraHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, SignProposalResponse{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, SignProposalResponse{
		R:       hex.EncodeToString(sig.R[:]),
		S:       hex.EncodeToString(sig.S[:]),
		V:       sig.V,
		Success: true,
	})
}

// Info returns the validator's on-chain address.
func (api *API) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"address": api.signer.Address().Hex(),
	})
}

// HealthCheck returns service health status.
func (api *API) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "validator",
	})
}
