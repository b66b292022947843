package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID snowflake.ID
	Period     string
	Unpaid     *bool
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, bill *Bill) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Bill, error)

	// ListSettledBetween returns bills whose settlement instant falls in
	// [from, to). Used for period cash attribution.
	ListSettledBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]Bill, error)
	ListSettled(ctx context.Context, db *gorm.DB) ([]Bill, error)

	// SumUnpaidBefore sums amounts of unpaid bills created strictly
	// before the cutoff.
	SumUnpaidBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, cutoff time.Time) (int64, error)

	// Settle writes paid, penalty, amount and settled_at in a single
	// statement, guarded on the current paid state. Returns false when
	// the guard did not match (already in the requested state).
	Settle(ctx context.Context, db *gorm.DB, id snowflake.ID, penalty, amount int64, settledAt time.Time) (bool, error)
	Unsettle(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) (bool, error)

	// AdvanceLastReading moves the customer's last reading from an
	// expected value to a new one. Returns false when the expected value
	// no longer holds (a concurrent reading won).
	AdvanceLastReading(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to int64, at time.Time) (bool, error)
}
