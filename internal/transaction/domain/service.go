package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateTransactionRequest struct {
	Direction   string     `json:"direction"`
	Description string     `json:"description"`
	Amount      int64      `json:"amount"`
	OccurredAt  *time.Time `json:"occurred_at,omitempty"`
}

type ListTransactionsRequest struct {
	Period string
}

type Response struct {
	ID          string    `json:"id"`
	Direction   Direction `json:"direction"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListTransactionsRequest) ([]Response, error)
}

var (
	ErrInvalidDirection   = errors.New("invalid_direction")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidAmount      = errors.New("invalid_amount")
	ErrInvalidID          = errors.New("invalid_id")
	ErrNotFound           = errors.New("not_found")
)

func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case DirectionInflow:
		return DirectionInflow, nil
	case DirectionOutflow:
		return DirectionOutflow, nil
	default:
		return "", ErrInvalidDirection
	}
}

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
