package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
)

type dashboardResponse struct {
	Period          string `json:"period"`
	Inflow          int64  `json:"inflow"`
	Outflow         int64  `json:"outflow"`
	Balance         int64  `json:"balance"`
	LifetimeBalance int64  `json:"lifetime_balance"`
	CustomerCount   int    `json:"customer_count"`
	UnpaidBillCount int    `json:"unpaid_bill_count"`
	UnpaidTotal     int64  `json:"unpaid_total"`
	DueDay          int    `json:"due_day"`
}

// GetDashboard aggregates the current month's position for the home
// screen: cash summary, customer count, and the outstanding unpaid
// bills across all periods.
func (s *Server) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	period := billingdomain.PeriodOf(s.clock.Now())

	summary, err := s.ledgerSvc.Summarize(ctx, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	customers, err := s.customerSvc.List(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	unpaid := true
	bills, err := s.billingSvc.List(ctx, billingdomain.ListBillsRequest{Unpaid: &unpaid})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var unpaidTotal int64
	for _, bill := range bills {
		unpaidTotal += bill.Amount
	}

	c.JSON(http.StatusOK, gin.H{"data": dashboardResponse{
		Period:          period,
		Inflow:          summary.Inflow,
		Outflow:         summary.Outflow,
		Balance:         summary.Balance,
		LifetimeBalance: summary.LifetimeBalance,
		CustomerCount:   len(customers),
		UnpaidBillCount: len(bills),
		UnpaidTotal:     unpaidTotal,
		DueDay:          s.tariff.Get().DueDay,
	}})
}
