package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	"github.com/tirtakarya/waterbill/internal/notify"
	"go.uber.org/zap"
)

type recordReadingRequest struct {
	Reading int64 `json:"reading"`
}

// RecordReading compiles a bill from a new meter reading. When the
// customer has a phone number on file, a bill notification goes out
// after the bill is stored; delivery failures never fail the request.
func (s *Server) RecordReading(c *gin.Context) {
	var req recordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	customerID := strings.TrimSpace(c.Param("id"))
	resp, err := s.billingSvc.RecordReading(c.Request.Context(), billingdomain.RecordReadingRequest{
		CustomerID: customerID,
		Reading:    req.Reading,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	go s.notifyBillRecorded(resp)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) notifyBillRecorded(bill *billingdomain.Response) {
	if s.messenger == nil || bill == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	customer, err := s.customerSvc.GetByID(ctx, customerdomain.GetCustomerRequest{ID: bill.CustomerID})
	if err != nil {
		s.log.Warn("bill notification skipped",
			zap.String("bill_id", bill.ID),
			zap.String("customer_id", bill.CustomerID),
			zap.Error(err),
		)
		return
	}
	if strings.TrimSpace(customer.Phone) == "" {
		return
	}

	to, err := notify.NormalizePhone(customer.Phone, s.cfg.SMS.CountryCode)
	if err != nil {
		s.log.Warn("bill notification skipped",
			zap.String("bill_id", bill.ID),
			zap.String("customer_id", bill.CustomerID),
			zap.Error(err),
		)
		return
	}

	var arrears int64
	if customerID, err := billingdomain.ParseID(bill.CustomerID); err == nil {
		if total, err := s.billingSvc.Arrears(ctx, customerID, bill.CreatedAt); err == nil {
			arrears = total
		}
	}

	body := notify.BillMessage(customer.Name, bill.Period, bill.Amount, arrears)
	if err := s.messenger.Send(ctx, to, body); err != nil {
		s.log.Warn("bill notification failed",
			zap.String("bill_id", bill.ID),
			zap.String("customer_id", bill.CustomerID),
			zap.Error(err),
		)
	}
}

func (s *Server) ListBills(c *gin.Context) {
	var query struct {
		CustomerID string `form:"customer_id"`
		Period     string `form:"period"`
		Unpaid     string `form:"unpaid"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := billingdomain.ListBillsRequest{
		CustomerID: strings.TrimSpace(query.CustomerID),
		Period:     strings.TrimSpace(query.Period),
	}
	switch strings.ToLower(strings.TrimSpace(query.Unpaid)) {
	case "":
	case "true", "1":
		unpaid := true
		req.Unpaid = &unpaid
	case "false", "0":
		unpaid := false
		req.Unpaid = &unpaid
	default:
		AbortWithError(c, newValidationError("unpaid", "invalid_unpaid", "invalid unpaid filter"))
		return
	}

	resp, err := s.billingSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBillByID(c *gin.Context) {
	resp, err := s.billingSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkBillPaid(c *gin.Context) {
	resp, err := s.billingSvc.MarkPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkBillUnpaid(c *gin.Context) {
	resp, err := s.billingSvc.MarkUnpaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
