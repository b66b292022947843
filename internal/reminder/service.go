package reminder

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/config"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	"github.com/tirtakarya/waterbill/internal/notify"
	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service texts customers holding overdue unpaid bills. It runs on a
// cron schedule and only acts after the tariff's due day has passed, so
// nobody is nagged while payment is still on time.
type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	cfg          config.Config
	tariff       *config.TariffHolder
	billRepo     billingdomain.Repository
	customerRepo customerdomain.Repository
	messenger    notify.Messenger
	cron         *cron.Cron
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	Cfg          config.Config
	Tariff       *config.TariffHolder
	BillRepo     billingdomain.Repository
	CustomerRepo customerdomain.Repository
	Messenger    notify.Messenger
}

func New(p Params) *Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("reminder.service"),
		clock:        p.Clock,
		cfg:          p.Cfg,
		tariff:       p.Tariff,
		billRepo:     p.BillRepo,
		customerRepo: p.CustomerRepo,
		messenger:    p.Messenger,
	}
}

// Start schedules the job. No-op when reminders are disabled.
func (s *Service) Start() error {
	if !s.cfg.Reminder.Enabled {
		s.log.Info("reminders disabled")
		return nil
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.cfg.Reminder.Schedule, func() {
		s.RunOnce(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("reminder scheduler started", zap.String("schedule", s.cfg.Reminder.Schedule))
	return nil
}

func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce sends one reminder per customer holding unpaid bills. Safe to
// call manually; it re-reads everything from the store.
func (s *Service) RunOnce(ctx context.Context) {
	now := s.clock.Now()
	if now.Day() <= s.tariff.Get().DueDay {
		return
	}

	unpaid := true
	bills, err := s.billRepo.List(ctx, s.db, billingdomain.ListFilter{Unpaid: &unpaid})
	if err != nil {
		s.log.Warn("failed to list unpaid bills", zap.Error(err))
		return
	}
	if len(bills) == 0 {
		return
	}

	type debt struct {
		count int
		total int64
	}
	debts := make(map[snowflake.ID]*debt)
	for i := range bills {
		d := debts[bills[i].CustomerID]
		if d == nil {
			d = &debt{}
			debts[bills[i].CustomerID] = d
		}
		d.count++
		d.total += bills[i].Amount
	}

	sent := 0
	for customerID, d := range debts {
		customer, err := s.customerRepo.FindByID(ctx, s.db, customerID)
		if err != nil || customer == nil {
			continue
		}
		if customer.Phone == "" {
			continue
		}

		to, err := notify.NormalizePhone(customer.Phone, s.cfg.SMS.CountryCode)
		if err != nil {
			s.log.Warn("skipping customer with unusable phone",
				zap.String("customer_id", customerID.String()))
			continue
		}

		body := notify.OverdueMessage(customer.Name, d.count, d.total)
		if err := s.messenger.Send(ctx, to, body); err != nil {
			s.log.Warn("reminder delivery failed",
				zap.String("customer_id", customerID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.log.Info("overdue reminders processed",
		zap.Int("customers", len(debts)),
		zap.Int("sent", sent),
	)
}

func registerHooks(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

// Module wires the overdue reminder job.
var Module = fx.Module("reminder",
	fx.Provide(New),
	fx.Invoke(registerHooks),
)
