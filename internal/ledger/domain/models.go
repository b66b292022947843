package domain

import (
	"context"
	"time"

	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
)

// Summary is the cash position over a scope: one calendar month, or
// lifetime when Period is empty.
type Summary struct {
	Period          string `json:"period,omitempty"`
	Inflow          int64  `json:"inflow"`
	Outflow         int64  `json:"outflow"`
	Balance         int64  `json:"balance"`
	LifetimeBalance int64  `json:"lifetime_balance"`
}

// Entry is one cash movement in the ledger view. Manual entries mirror
// stored transactions; derived entries are the inflow view of settled
// bills, dated at the settlement instant. A derived entry disappears
// only by reverting the bill's paid flag, never by deletion.
type Entry struct {
	ID           string                      `json:"id"`
	Direction    transactiondomain.Direction `json:"direction"`
	Description  string                      `json:"description"`
	Amount       int64                       `json:"amount"`
	OccurredAt   time.Time                   `json:"occurred_at"`
	Manual       bool                        `json:"manual"`
	BillID       string                      `json:"bill_id,omitempty"`
	CustomerName string                      `json:"customer_name,omitempty"`
}

type Service interface {
	// Summarize computes the cash position for a period (YYYY-MM) or
	// lifetime when period is empty. Manual transactions are scoped by
	// their own timestamp; settled bills by their settlement timestamp.
	Summarize(ctx context.Context, period string) (*Summary, error)

	// Entries lists the ledger view (manual plus derived) for the scope,
	// ordered by occurrence.
	Entries(ctx context.Context, period string) ([]Entry, error)
}
