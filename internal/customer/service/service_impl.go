package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tirtakarya/waterbill/internal/clock"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	"github.com/tirtakarya/waterbill/internal/liveevents"
	"github.com/tirtakarya/waterbill/internal/tariff"
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
	Repo  customerdomain.Repository
	Live  *liveevents.Hub `optional:"true"`
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	genID *snowflake.Node
	repo  customerdomain.Repository
	live  *liveevents.Hub
}

func New(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
		live:  p.Live,
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, customerdomain.ErrInvalidName
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return nil, customerdomain.ErrInvalidAddress
	}

	category, err := tariff.ParseCategory(req.Category)
	if err != nil {
		return nil, customerdomain.ErrInvalidCategory
	}

	if req.LastReading < 0 {
		return nil, customerdomain.ErrInvalidReading
	}

	now := s.clock.Now()
	c := &customerdomain.Customer{
		ID:          s.genID.Generate(),
		Name:        name,
		Address:     address,
		Phone:       strings.TrimSpace(req.Phone),
		Category:    category,
		LastReading: req.LastReading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, c); err != nil {
		return nil, err
	}

	s.publish(liveevents.ActionCreated, c.ID, now)
	return s.toResponse(c), nil
}

func (s *Service) Update(ctx context.Context, req customerdomain.UpdateCustomerRequest) (*customerdomain.Response, error) {
	id, err := customerdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, customerdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, customerdomain.ErrNotFound
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, customerdomain.ErrInvalidName
		}
		item.Name = name
	}

	if req.Address != nil {
		address := strings.TrimSpace(*req.Address)
		if address == "" {
			return nil, customerdomain.ErrInvalidAddress
		}
		item.Address = address
	}

	if req.Phone != nil {
		item.Phone = strings.TrimSpace(*req.Phone)
	}

	if req.Category != nil {
		category, err := tariff.ParseCategory(*req.Category)
		if err != nil {
			return nil, customerdomain.ErrInvalidCategory
		}
		item.Category = category
	}

	now := s.clock.Now()
	item.UpdatedAt = now
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	s.publish(liveevents.ActionUpdated, item.ID, now)
	return s.toResponse(item), nil
}

func (s *Service) GetByID(ctx context.Context, req customerdomain.GetCustomerRequest) (*customerdomain.Response, error) {
	id, err := customerdomain.ParseID(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, customerdomain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, customerdomain.ErrNotFound
	}

	return s.toResponse(item), nil
}

func (s *Service) List(ctx context.Context) ([]customerdomain.Response, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	resp := make([]customerdomain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, *s.toResponse(&items[i]))
	}

	return resp, nil
}

func (s *Service) publish(action string, id snowflake.ID, at time.Time) {
	if s.live == nil {
		return
	}
	s.live.Publish(liveevents.ChangeEvent{
		Collection: liveevents.CollectionCustomers,
		Action:     action,
		EntityID:   id.String(),
		OccurredAt: at,
	})
}

func (s *Service) toResponse(c *customerdomain.Customer) *customerdomain.Response {
	return &customerdomain.Response{
		ID:          c.ID.String(),
		Name:        c.Name,
		Address:     c.Address,
		Phone:       c.Phone,
		Category:    c.Category,
		LastReading: c.LastReading,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
