package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/config"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	"github.com/tirtakarya/waterbill/internal/liveevents"
	"github.com/tirtakarya/waterbill/internal/tariff"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	GenID        *snowflake.Node
	Tariff       *config.TariffHolder
	Repo         billingdomain.Repository
	CustomerRepo customerdomain.Repository
	Live         *liveevents.Hub `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	genID        *snowflake.Node
	tariff       *config.TariffHolder
	repo         billingdomain.Repository
	customerRepo customerdomain.Repository
	live         *liveevents.Hub
}

func New(p Params) billingdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("billing.service"),
		clock:        p.Clock,
		genID:        p.GenID,
		tariff:       p.Tariff,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		live:         p.Live,
	}
}

func (s *Service) RecordReading(ctx context.Context, req billingdomain.RecordReadingRequest) (*billingdomain.Response, error) {
	customerID, err := billingdomain.ParseID(strings.TrimSpace(req.CustomerID))
	if err != nil {
		return nil, billingdomain.ErrInvalidCustomer
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, billingdomain.ErrInvalidCustomer
	}

	// The compiler refuses a reading below the recorded one; it never
	// clamps or wraps.
	if req.Reading < customer.LastReading {
		return nil, billingdomain.ErrReadingBelow
	}

	rate := s.tariff.Get().Lookup(customer.Category)
	now := s.clock.Now()
	usage := req.Reading - customer.LastReading

	bill := &billingdomain.Bill{
		ID:          s.genID.Generate(),
		CustomerID:  customer.ID,
		Period:      billingdomain.PeriodOf(now),
		PrevReading: customer.LastReading,
		CurrReading: req.Reading,
		Usage:       usage,
		PerUnitRate: rate.PerUnitRate,
		BaseFee:     rate.BaseFee,
		UsageFee:    usage * rate.PerUnitRate,
		Penalty:     0,
		Paid:        false,
		CreatedAt:   now,
	}
	bill.Amount = bill.BaseFee + bill.UsageFee + bill.Penalty

	// Bill insert and reading advance commit together: a bill must never
	// exist without the matching reading advance, and vice versa.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, bill); err != nil {
			return err
		}
		advanced, err := s.repo.AdvanceLastReading(ctx, tx, customer.ID, customer.LastReading, req.Reading, now)
		if err != nil {
			return err
		}
		if !advanced {
			return billingdomain.ErrReadingConflict
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(liveevents.CollectionBills, liveevents.ActionCreated, bill.ID, now)
	s.publish(liveevents.CollectionCustomers, liveevents.ActionUpdated, customer.ID, now)

	s.log.Info("bill compiled",
		zap.String("bill_id", bill.ID.String()),
		zap.String("customer_id", customer.ID.String()),
		zap.String("period", bill.Period),
		zap.Int64("usage", usage),
		zap.Int64("amount", bill.Amount),
	)

	return s.toResponse(bill), nil
}

func (s *Service) MarkPaid(ctx context.Context, id string) (*billingdomain.Response, error) {
	bill, err := s.findBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Paid {
		return s.toResponse(bill), nil
	}

	now := s.clock.Now()
	penalty := latePenalty(s.tariff.Get(), s.categoryOf(ctx, bill.CustomerID), bill.Period, now)
	amount := bill.BaseFee + bill.UsageFee + penalty

	// paid, penalty, amount and settled_at land in one statement so no
	// reader can observe a paid bill with a stale amount.
	settled, err := s.repo.Settle(ctx, s.db, bill.ID, penalty, amount, now)
	if err != nil {
		return nil, err
	}
	if !settled {
		// Lost the race to another operator; the bill is already paid.
		return s.findBillResponse(ctx, bill.ID)
	}

	bill.Paid = true
	bill.Penalty = penalty
	bill.Amount = amount
	bill.SettledAt = &now

	s.publish(liveevents.CollectionBills, liveevents.ActionUpdated, bill.ID, now)
	s.log.Info("bill settled",
		zap.String("bill_id", bill.ID.String()),
		zap.Int64("penalty", penalty),
		zap.Int64("amount", amount),
	)

	return s.toResponse(bill), nil
}

func (s *Service) MarkUnpaid(ctx context.Context, id string) (*billingdomain.Response, error) {
	bill, err := s.findBill(ctx, id)
	if err != nil {
		return nil, err
	}
	if !bill.Paid {
		return s.toResponse(bill), nil
	}

	amount := bill.BaseFee + bill.UsageFee
	reverted, err := s.repo.Unsettle(ctx, s.db, bill.ID, amount)
	if err != nil {
		return nil, err
	}
	if !reverted {
		return s.findBillResponse(ctx, bill.ID)
	}

	now := s.clock.Now()
	bill.Paid = false
	bill.Penalty = 0
	bill.Amount = amount
	bill.SettledAt = nil

	s.publish(liveevents.CollectionBills, liveevents.ActionUpdated, bill.ID, now)
	s.log.Info("bill settlement reverted",
		zap.String("bill_id", bill.ID.String()),
		zap.Int64("amount", amount),
	)

	return s.toResponse(bill), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*billingdomain.Response, error) {
	bill, err := s.findBill(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(bill), nil
}

func (s *Service) List(ctx context.Context, req billingdomain.ListBillsRequest) ([]billingdomain.Response, error) {
	filter := billingdomain.ListFilter{Unpaid: req.Unpaid}

	if id := strings.TrimSpace(req.CustomerID); id != "" {
		customerID, err := billingdomain.ParseID(id)
		if err != nil {
			return nil, billingdomain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}
	if period := strings.TrimSpace(req.Period); period != "" {
		normalized, err := billingdomain.ParsePeriod(period)
		if err != nil {
			return nil, err
		}
		filter.Period = normalized
	}

	bills, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]billingdomain.Response, 0, len(bills))
	for i := range bills {
		resp = append(resp, *s.toResponse(&bills[i]))
	}
	return resp, nil
}

func (s *Service) Arrears(ctx context.Context, customerID snowflake.ID, cutoff time.Time) (int64, error) {
	if customerID == 0 {
		return 0, billingdomain.ErrInvalidCustomer
	}
	return s.repo.SumUnpaidBefore(ctx, s.db, customerID, cutoff)
}

// categoryOf resolves the customer's category for penalty evaluation.
// A bill referencing a missing customer degrades to the standard
// category instead of failing the settlement.
func (s *Service) categoryOf(ctx context.Context, customerID snowflake.ID) tariff.Category {
	customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
	if err != nil || customer == nil {
		s.log.Warn("bill references unknown customer, assuming standard category",
			zap.String("customer_id", customerID.String()),
			zap.Error(err),
		)
		return tariff.CategoryStandard
	}
	return customer.Category
}

func (s *Service) findBill(ctx context.Context, id string) (*billingdomain.Bill, error) {
	billID, err := billingdomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return nil, billingdomain.ErrInvalidID
	}

	bill, err := s.repo.FindByID(ctx, s.db, billID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billingdomain.ErrNotFound
	}
	return bill, nil
}

func (s *Service) findBillResponse(ctx context.Context, id snowflake.ID) (*billingdomain.Response, error) {
	bill, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billingdomain.ErrNotFound
	}
	return s.toResponse(bill), nil
}

func (s *Service) publish(collection, action string, id snowflake.ID, at time.Time) {
	if s.live == nil {
		return
	}
	s.live.Publish(liveevents.ChangeEvent{
		Collection: collection,
		Action:     action,
		EntityID:   id.String(),
		OccurredAt: at,
	})
}

func (s *Service) toResponse(b *billingdomain.Bill) *billingdomain.Response {
	return &billingdomain.Response{
		ID:          b.ID.String(),
		CustomerID:  b.CustomerID.String(),
		Period:      b.Period,
		PrevReading: b.PrevReading,
		CurrReading: b.CurrReading,
		Usage:       b.Usage,
		Amount:      b.Amount,
		Details: billingdomain.Details{
			BaseFee:     b.BaseFee,
			UsageFee:    b.UsageFee,
			Penalty:     b.Penalty,
			PerUnitRate: b.PerUnitRate,
		},
		Paid:      b.Paid,
		SettledAt: b.SettledAt,
		CreatedAt: b.CreatedAt,
	}
}
