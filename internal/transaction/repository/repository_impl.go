package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	"gorm.io/gorm"
)

const transactionColumns = `id, direction, description, amount, occurred_at, created_at`

type repo struct{}

func Provide() transactiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, t *transactiondomain.Transaction) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO transactions (`+transactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Direction,
		t.Description,
		t.Amount,
		t.OccurredAt,
		t.CreatedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM transactions WHERE id = ?`,
		id,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*transactiondomain.Transaction, error) {
	var txn transactiondomain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`,
		id,
	).Scan(&txn).Error
	if err != nil {
		return nil, err
	}
	if txn.ID == 0 {
		return nil, nil
	}
	return &txn, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]transactiondomain.Transaction, error) {
	var txns []transactiondomain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT ` + transactionColumns + ` FROM transactions ORDER BY occurred_at ASC`,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *repo) ListBetween(ctx context.Context, db *gorm.DB, from, to time.Time) ([]transactiondomain.Transaction, error) {
	var txns []transactiondomain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE occurred_at >= ? AND occurred_at < ?
		 ORDER BY occurred_at ASC`,
		from, to,
	).Scan(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}
