package report

import (
	"context"
	"errors"
	"sort"
	"strings"

	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	ledgerdomain "github.com/tirtakarya/waterbill/internal/ledger/domain"
	ledgerservice "github.com/tirtakarya/waterbill/internal/ledger/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Row is one bill line in the monthly report.
type Row struct {
	CustomerName string `json:"customer_name"`
	PrevReading  int64  `json:"prev_reading"`
	CurrReading  int64  `json:"curr_reading"`
	Charge       int64  `json:"charge"` // base fee + usage fee, pre-penalty
	Penalty      int64  `json:"penalty"`
	Arrears      int64  `json:"arrears"`
	Paid         bool   `json:"paid"`
}

// Report is a pure projection of one month's ledger and bill detail. It
// reads stored state and never writes it; the same data always renders
// the same report.
type Report struct {
	Period          string `json:"period"`
	Inflow          int64  `json:"inflow"`
	Outflow         int64  `json:"outflow"`
	Balance         int64  `json:"balance"`
	LifetimeBalance int64  `json:"lifetime_balance"`
	Rows            []Row  `json:"rows"`
}

type Service interface {
	Build(ctx context.Context, period string) (*Report, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	BillSvc      billingdomain.Service
	BillRepo     billingdomain.Repository
	CustomerRepo customerdomain.Repository
	LedgerSvc    ledgerdomain.Service
}

type service struct {
	db           *gorm.DB
	log          *zap.Logger
	billSvc      billingdomain.Service
	billRepo     billingdomain.Repository
	customerRepo customerdomain.Repository
	ledgerSvc    ledgerdomain.Service
}

func New(p Params) Service {
	return &service{
		db:           p.DB,
		log:          p.Log.Named("report.service"),
		billSvc:      p.BillSvc,
		billRepo:     p.BillRepo,
		customerRepo: p.CustomerRepo,
		ledgerSvc:    p.LedgerSvc,
	}
}

func (s *service) Build(ctx context.Context, period string) (*Report, error) {
	normalized, err := billingdomain.ParsePeriod(strings.TrimSpace(period))
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	summary, err := s.ledgerSvc.Summarize(ctx, normalized)
	if err != nil {
		return nil, err
	}

	bills, err := s.billRepo.List(ctx, s.db, billingdomain.ListFilter{Period: normalized})
	if err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(customers))
	for i := range customers {
		names[customers[i].ID.String()] = customers[i].Name
	}

	rows := make([]Row, 0, len(bills))
	for i := range bills {
		bill := &bills[i]
		name, ok := names[bill.CustomerID.String()]
		if !ok {
			name = ledgerservice.UnknownCustomerName
		}

		// Arrears as of the bill's creation: what the customer already
		// owed on top of this bill.
		arrears, err := s.billSvc.Arrears(ctx, bill.CustomerID, bill.CreatedAt)
		if err != nil {
			return nil, err
		}

		rows = append(rows, Row{
			CustomerName: name,
			PrevReading:  bill.PrevReading,
			CurrReading:  bill.CurrReading,
			Charge:       bill.BaseFee + bill.UsageFee,
			Penalty:      bill.Penalty,
			Arrears:      arrears,
			Paid:         bill.Paid,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CustomerName != rows[j].CustomerName {
			return rows[i].CustomerName < rows[j].CustomerName
		}
		return rows[i].PrevReading < rows[j].PrevReading
	})

	return &Report{
		Period:          normalized,
		Inflow:          summary.Inflow,
		Outflow:         summary.Outflow,
		Balance:         summary.Balance,
		LifetimeBalance: summary.LifetimeBalance,
		Rows:            rows,
	}, nil
}

// Filename names the export document after the period it covers.
func Filename(period, extension string) string {
	return "waterbill-report-" + period + "." + extension
}
