package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/liveevents"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  transactiondomain.Repository
	Live  *liveevents.Hub `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  transactiondomain.Repository
	live  *liveevents.Hub
}

func New(p Params) transactiondomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("transaction.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
		live:  p.Live,
	}
}

func (s *Service) Create(ctx context.Context, req transactiondomain.CreateTransactionRequest) (*transactiondomain.Response, error) {
	direction, err := transactiondomain.ParseDirection(strings.TrimSpace(req.Direction))
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, transactiondomain.ErrInvalidDescription
	}

	if req.Amount <= 0 {
		return nil, transactiondomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}

	txn := &transactiondomain.Transaction{
		ID:          s.genID.Generate(),
		Direction:   direction,
		Description: description,
		Amount:      req.Amount,
		OccurredAt:  occurredAt,
		CreatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, txn); err != nil {
		return nil, err
	}

	s.publish(liveevents.ActionCreated, txn.ID, now)
	return s.toResponse(txn), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	txnID, err := transactiondomain.ParseID(strings.TrimSpace(id))
	if err != nil {
		return transactiondomain.ErrInvalidID
	}

	deleted, err := s.repo.Delete(ctx, s.db, txnID)
	if err != nil {
		return err
	}
	if !deleted {
		return transactiondomain.ErrNotFound
	}

	s.publish(liveevents.ActionDeleted, txnID, s.clock.Now())
	return nil
}

func (s *Service) List(ctx context.Context, req transactiondomain.ListTransactionsRequest) ([]transactiondomain.Response, error) {
	var (
		txns []transactiondomain.Transaction
		err  error
	)

	if period := strings.TrimSpace(req.Period); period != "" {
		var from, to time.Time
		from, to, err = billingdomain.PeriodBounds(period)
		if err != nil {
			return nil, err
		}
		txns, err = s.repo.ListBetween(ctx, s.db, from, to)
	} else {
		txns, err = s.repo.List(ctx, s.db)
	}
	if err != nil {
		return nil, err
	}

	resp := make([]transactiondomain.Response, 0, len(txns))
	for i := range txns {
		resp = append(resp, *s.toResponse(&txns[i]))
	}
	return resp, nil
}

func (s *Service) publish(action string, id snowflake.ID, at time.Time) {
	if s.live == nil {
		return
	}
	s.live.Publish(liveevents.ChangeEvent{
		Collection: liveevents.CollectionTransactions,
		Action:     action,
		EntityID:   id.String(),
		OccurredAt: at,
	})
}

func (s *Service) toResponse(t *transactiondomain.Transaction) *transactiondomain.Response {
	return &transactiondomain.Response{
		ID:          t.ID.String(),
		Direction:   t.Direction,
		Description: t.Description,
		Amount:      t.Amount,
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
	}
}
