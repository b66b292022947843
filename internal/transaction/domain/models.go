package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Direction tells whether cash entered or left the till.
type Direction string

const (
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Transaction is a free-standing cash movement entered by an operator.
// Settled bills are NOT stored here; the ledger derives their inflows
// from the bill records so the two can never drift apart.
type Transaction struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Direction   Direction    `gorm:"type:text;not null" json:"direction"`
	Description string       `gorm:"not null" json:"description"`
	Amount      int64        `gorm:"not null" json:"amount"`
	OccurredAt  time.Time    `gorm:"not null;index" json:"occurred_at"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
