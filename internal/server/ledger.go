package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// GetLedgerSummary returns the cash position for the requested period
// (YYYY-MM), or lifetime when no period is given.
func (s *Server) GetLedgerSummary(c *gin.Context) {
	resp, err := s.ledgerSvc.Summarize(c.Request.Context(), strings.TrimSpace(c.Query("period")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLedgerEntries(c *gin.Context) {
	resp, err := s.ledgerSvc.Entries(c.Request.Context(), strings.TrimSpace(c.Query("period")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
