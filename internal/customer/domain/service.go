package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tirtakarya/waterbill/internal/tariff"
)

type CreateCustomerRequest struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Category    string `json:"category"`
	LastReading int64  `json:"last_reading"`
}

type UpdateCustomerRequest struct {
	ID       string  `json:"id"`
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Category *string `json:"category,omitempty"`
}

type GetCustomerRequest struct {
	ID string
}

type Response struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone,omitempty"`
	Category    tariff.Category `json:"category"`
	LastReading int64           `json:"last_reading"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Response, error)
	Update(ctx context.Context, req UpdateCustomerRequest) (*Response, error)
	GetByID(ctx context.Context, req GetCustomerRequest) (*Response, error)
	List(ctx context.Context) ([]Response, error)
}

var (
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidAddress  = errors.New("invalid_address")
	ErrInvalidCategory = errors.New("invalid_category")
	ErrInvalidReading  = errors.New("invalid_reading")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
