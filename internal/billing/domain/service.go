package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RecordReadingRequest struct {
	CustomerID string `json:"customer_id"`
	Reading    int64  `json:"reading"`
}

type ListBillsRequest struct {
	CustomerID string
	Period     string
	Unpaid     *bool
}

// Details breaks an amount into its charge components.
type Details struct {
	BaseFee     int64 `json:"base_fee"`
	UsageFee    int64 `json:"usage_fee"`
	Penalty     int64 `json:"penalty"`
	PerUnitRate int64 `json:"per_unit_rate"`
}

type Response struct {
	ID          string     `json:"id"`
	CustomerID  string     `json:"customer_id"`
	Period      string     `json:"period"`
	PrevReading int64      `json:"prev_reading"`
	CurrReading int64      `json:"curr_reading"`
	Usage       int64      `json:"usage"`
	Amount      int64      `json:"amount"`
	Details     Details    `json:"details"`
	Paid        bool       `json:"paid"`
	SettledAt   *time.Time `json:"settled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Service interface {
	// RecordReading compiles a new unpaid bill from a meter reading and
	// advances the customer's last reading in the same transaction.
	RecordReading(ctx context.Context, req RecordReadingRequest) (*Response, error)

	// MarkPaid settles a bill, recomputing penalty and amount at the
	// settlement instant. Idempotent when the bill is already paid.
	MarkPaid(ctx context.Context, id string) (*Response, error)

	// MarkUnpaid reverts a settled bill, zeroing its penalty. Idempotent
	// when the bill is already unpaid.
	MarkUnpaid(ctx context.Context, id string) (*Response, error)

	GetByID(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListBillsRequest) ([]Response, error)

	// Arrears sums the amounts of the customer's unpaid bills created
	// strictly before the cutoff.
	Arrears(ctx context.Context, customerID snowflake.ID, cutoff time.Time) (int64, error)
}

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidCustomer = errors.New("invalid_customer")
	ErrReadingBelow    = errors.New("reading_below_last")
	ErrNotFound        = errors.New("not_found")
	ErrReadingConflict = errors.New("reading_conflict")
)

func ParseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(value)
}
