package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tirtakarya/waterbill/internal/report"
)

func (s *Server) GetReport(c *gin.Context) {
	resp, err := s.reportSvc.Build(c.Request.Context(), strings.TrimSpace(c.Param("period")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DownloadReportCSV(c *gin.Context) {
	period := strings.TrimSpace(c.Param("period"))
	resp, err := s.reportSvc.Build(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := report.RenderCSV(resp)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(period, "csv")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) DownloadReportPDF(c *gin.Context) {
	if s.pdfProvider == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	period := strings.TrimSpace(c.Param("period"))
	resp, err := s.reportSvc.Build(c.Request.Context(), period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data, err := s.pdfProvider.GenerateReport(c.Request.Context(), resp)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(period, "pdf")))
	c.Data(http.StatusOK, "application/pdf", data)
}
