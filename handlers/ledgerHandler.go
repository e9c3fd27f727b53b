package handlers

import (
	"net/http"

	"MediChain/apperror"
	"MediChain/ledger"
	"MediChain/middlewares"

	"github.com/gin-gonic/gin"
)

// LedgerReader is the read side of the audit chain.
type LedgerReader interface {
	Verify() (ledger.VerifyReport, error)
	EventsFor(walletAddress string) ([]ledger.Block, error)
}

type LedgerHandler struct {
	chain LedgerReader
}

// NewLedgerHandler accepts a nil chain when mirroring is disabled.
func NewLedgerHandler(chain LedgerReader) *LedgerHandler {
	return &LedgerHandler{chain: chain}
}

func (h *LedgerHandler) Verify(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	report, err := h.chain.Verify()
	if err != nil {
		middlewares.HttpError(c, apperror.NewInternal("failed to verify ledger", err))
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *LedgerHandler) WalletEvents(c *gin.Context) {
	if !h.enabled(c) {
		return
	}

	wallet := c.Param("wallet")
	blocks, err := h.chain.EventsFor(wallet)
	if err != nil {
		middlewares.HttpError(c, apperror.NewInternal("failed to read ledger", err))
		return
	}
	if blocks == nil {
		blocks = []ledger.Block{}
	}
	c.JSON(http.StatusOK, gin.H{"walletAddress": wallet, "events": blocks})
}

func (h *LedgerHandler) enabled(c *gin.Context) bool {
	if h.chain == nil {
		middlewares.HttpError(c, apperror.NewUnavailable("Ledger is not enabled"))
		return false
	}
	return true
}
