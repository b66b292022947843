package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tirtakarya/waterbill/internal/tariff"
)

// Customer is a member of the cooperative with a metered connection.
// LastReading is advanced only by the billing service, atomically with
// the bill it produces. Customers are never deleted.
type Customer struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Address     string          `gorm:"not null" json:"address"`
	Phone       string          `gorm:"column:phone" json:"phone,omitempty"`
	Category    tariff.Category `gorm:"type:text;not null" json:"category"`
	LastReading int64           `gorm:"not null;default:0" json:"last_reading"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
