package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	ledgerdomain "github.com/tirtakarya/waterbill/internal/ledger/domain"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UnknownCustomerName labels derived entries whose bill references a
// customer record that no longer resolves.
const UnknownCustomerName = "(unknown customer)"

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	BillRepo        billingdomain.Repository
	TransactionRepo transactiondomain.Repository
	CustomerRepo    customerdomain.Repository
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	billRepo        billingdomain.Repository
	transactionRepo transactiondomain.Repository
	customerRepo    customerdomain.Repository
}

func New(p Params) ledgerdomain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("ledger.service"),
		billRepo:        p.BillRepo,
		transactionRepo: p.TransactionRepo,
		customerRepo:    p.CustomerRepo,
	}
}

func (s *Service) Summarize(ctx context.Context, period string) (*ledgerdomain.Summary, error) {
	txns, bills, err := s.scoped(ctx, period)
	if err != nil {
		return nil, err
	}

	summary := &ledgerdomain.Summary{Period: period}
	for _, txn := range txns {
		switch txn.Direction {
		case transactiondomain.DirectionInflow:
			summary.Inflow += txn.Amount
		case transactiondomain.DirectionOutflow:
			summary.Outflow += txn.Amount
		}
	}
	for _, bill := range bills {
		summary.Inflow += bill.Amount
	}
	summary.Balance = summary.Inflow - summary.Outflow

	if period == "" {
		summary.LifetimeBalance = summary.Balance
		return summary, nil
	}

	lifetime, err := s.Summarize(ctx, "")
	if err != nil {
		return nil, err
	}
	summary.LifetimeBalance = lifetime.Balance
	return summary, nil
}

func (s *Service) Entries(ctx context.Context, period string) ([]ledgerdomain.Entry, error) {
	txns, bills, err := s.scoped(ctx, period)
	if err != nil {
		return nil, err
	}

	names, err := s.customerNames(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]ledgerdomain.Entry, 0, len(txns)+len(bills))
	for i := range txns {
		txn := &txns[i]
		entries = append(entries, ledgerdomain.Entry{
			ID:          txn.ID.String(),
			Direction:   txn.Direction,
			Description: txn.Description,
			Amount:      txn.Amount,
			OccurredAt:  txn.OccurredAt,
			Manual:      true,
		})
	}
	for i := range bills {
		bill := &bills[i]
		if bill.SettledAt == nil {
			// Defensive: settled listings must carry a settlement instant.
			continue
		}
		name, ok := names[bill.CustomerID.String()]
		if !ok {
			name = UnknownCustomerName
		}
		entries = append(entries, ledgerdomain.Entry{
			ID:           bill.ID.String(),
			Direction:    transactiondomain.DirectionInflow,
			Description:  fmt.Sprintf("Water bill %s, %s", bill.Period, name),
			Amount:       bill.Amount,
			OccurredAt:   *bill.SettledAt,
			Manual:       false,
			BillID:       bill.ID.String(),
			CustomerName: name,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].OccurredAt.Before(entries[j].OccurredAt)
	})
	return entries, nil
}

// scoped loads manual transactions and settled bills for the scope.
// Period scope filters transactions by their own timestamp and bills by
// settlement timestamp; lifetime applies no filter.
func (s *Service) scoped(ctx context.Context, period string) ([]transactiondomain.Transaction, []billingdomain.Bill, error) {
	if strings.TrimSpace(period) == "" {
		txns, err := s.transactionRepo.List(ctx, s.db)
		if err != nil {
			return nil, nil, err
		}
		bills, err := s.billRepo.ListSettled(ctx, s.db)
		if err != nil {
			return nil, nil, err
		}
		return txns, bills, nil
	}

	from, to, err := billingdomain.PeriodBounds(period)
	if err != nil {
		return nil, nil, err
	}

	txns, err := s.transactionRepo.ListBetween(ctx, s.db, from, to)
	if err != nil {
		return nil, nil, err
	}
	bills, err := s.billRepo.ListSettledBetween(ctx, s.db, from, to)
	if err != nil {
		return nil, nil, err
	}
	return txns, bills, nil
}

func (s *Service) customerNames(ctx context.Context) (map[string]string, error) {
	customers, err := s.customerRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(customers))
	for i := range customers {
		names[customers[i].ID.String()] = customers[i].Name
	}
	return names, nil
}
