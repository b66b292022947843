package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Bill charges one customer for the water drawn between two meter
// readings. Readings and usage are immutable after creation; only
// Penalty, Amount, Paid and SettledAt change, and only through the
// settlement transitions. Amount == BaseFee + UsageFee + Penalty holds
// at every stable state. Bills are never deleted.
type Bill struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID `gorm:"not null;index" json:"customer_id"`
	Period      string       `gorm:"type:text;not null;index" json:"period"`
	PrevReading int64        `gorm:"not null" json:"prev_reading"`
	CurrReading int64        `gorm:"not null" json:"curr_reading"`
	Usage       int64        `gorm:"column:usage_units;not null" json:"usage"`
	PerUnitRate int64        `gorm:"not null" json:"per_unit_rate"`
	BaseFee     int64        `gorm:"not null" json:"base_fee"`
	UsageFee    int64        `gorm:"not null" json:"usage_fee"`
	Penalty     int64        `gorm:"not null;default:0" json:"penalty"`
	Amount      int64        `gorm:"not null" json:"amount"`
	Paid        bool         `gorm:"not null;default:false" json:"paid"`
	SettledAt   *time.Time   `gorm:"index" json:"settled_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

// TableName sets the database table name.
func (Bill) TableName() string { return "bills" }
