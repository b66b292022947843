package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"gorm.io/gorm"
)

const billColumns = `id, customer_id, period, prev_reading, curr_reading, usage_units,
	 per_unit_rate, base_fee, usage_fee, penalty, amount, paid, settled_at, created_at`

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, b *billingdomain.Bill) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.CustomerID,
		b.Period,
		b.PrevReading,
		b.CurrReading,
		b.Usage,
		b.PerUnitRate,
		b.BaseFee,
		b.UsageFee,
		b.Penalty,
		b.Amount,
		b.Paid,
		b.SettledAt,
		b.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.Bill, error) {
	var bill billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE id = ?`,
		id,
	).Scan(&bill).Error
	if err != nil {
		return nil, err
	}
	if bill.ID == 0 {
		return nil, nil
	}
	return &bill, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter billingdomain.ListFilter) ([]billingdomain.Bill, error) {
	conditions := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if filter.CustomerID != 0 {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.Period != "" {
		conditions = append(conditions, "period = ?")
		args = append(args, filter.Period)
	}
	if filter.Unpaid != nil {
		conditions = append(conditions, "paid = ?")
		args = append(args, !*filter.Unpaid)
	}

	query := `SELECT ` + billColumns + ` FROM bills`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at ASC`

	var bills []billingdomain.Bill
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&bills).Error; err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) ListSettledBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]billingdomain.Bill, error) {
	var bills []billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills
		 WHERE paid = ? AND settled_at >= ? AND settled_at < ?
		 ORDER BY settled_at ASC`,
		true, from, to,
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) ListSettled(ctx context.Context, db *gorm.DB) ([]billingdomain.Bill, error) {
	var bills []billingdomain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE paid = ? ORDER BY settled_at ASC`,
		true,
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}

func (r *repo) SumUnpaidBefore(ctx context.Context, db *gorm.DB, customerID snowflake.ID, cutoff time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) FROM bills
		 WHERE customer_id = ? AND paid = ? AND created_at < ?`,
		customerID, false, cutoff,
	).Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) Settle(ctx context.Context, db *gorm.DB, id snowflake.ID, penalty, amount int64, settledAt time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bills SET paid = ?, penalty = ?, amount = ?, settled_at = ?
		 WHERE id = ? AND paid = ?`,
		true, penalty, amount, settledAt, id, false,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) Unsettle(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE bills SET paid = ?, penalty = 0, amount = ?, settled_at = NULL
		 WHERE id = ? AND paid = ?`,
		false, amount, id, true,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) AdvanceLastReading(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to int64, at time.Time) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE customers SET last_reading = ?, updated_at = ?
		 WHERE id = ? AND last_reading = ?`,
		to, at, customerID, from,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
