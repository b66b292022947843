package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() customerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, c *customerdomain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (id, name, address, phone, category, last_reading, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Name,
		c.Address,
		c.Phone,
		c.Category,
		c.LastReading,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *customerdomain.Customer) error {
	return db.WithContext(ctx).Exec(
		`UPDATE customers
		 SET name = ?, address = ?, phone = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		c.Name,
		c.Address,
		c.Phone,
		c.Category,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, phone, category, last_reading, created_at, updated_at
		 FROM customers WHERE id = ?`,
		id,
	).Scan(&customer).Error
	if err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]customerdomain.Customer, error) {
	var customers []customerdomain.Customer
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, phone, category, last_reading, created_at, updated_at
		 FROM customers ORDER BY created_at ASC`,
	).Scan(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}
