package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
)

type createTransactionRequest struct {
	Direction   string `json:"direction"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
	OccurredAt  string `json:"occurred_at"`
}

func (s *Server) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var occurredAt *time.Time
	if raw := strings.TrimSpace(req.OccurredAt); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("occurred_at", "invalid_occurred_at", "invalid occurred_at"))
			return
		}
		utc := parsed.UTC()
		occurredAt = &utc
	}

	resp, err := s.transactionSvc.Create(c.Request.Context(), transactiondomain.CreateTransactionRequest{
		Direction:   strings.TrimSpace(req.Direction),
		Description: strings.TrimSpace(req.Description),
		Amount:      req.Amount,
		OccurredAt:  occurredAt,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTransactions(c *gin.Context) {
	resp, err := s.transactionSvc.List(c.Request.Context(), transactiondomain.ListTransactionsRequest{
		Period: strings.TrimSpace(c.Query("period")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTransaction(c *gin.Context) {
	if err := s.transactionSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
