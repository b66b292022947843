package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	billingrepository "github.com/tirtakarya/waterbill/internal/billing/repository"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	customerrepository "github.com/tirtakarya/waterbill/internal/customer/repository"
	ledgerdomain "github.com/tirtakarya/waterbill/internal/ledger/domain"
	"github.com/tirtakarya/waterbill/internal/tariff"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	transactionrepository "github.com/tirtakarya/waterbill/internal/transaction/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  ledgerdomain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&billingdomain.Bill{},
		&transactiondomain.Transaction{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:              db,
		Log:             zap.NewNop(),
		BillRepo:        billingrepository.Provide(),
		TransactionRepo: transactionrepository.Provide(),
		CustomerRepo:    customerrepository.Provide(),
	})
	return &fixture{db: db, node: node, svc: svc}
}

func (f *fixture) seedCustomer(t *testing.T, name string) *customerdomain.Customer {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	customer := &customerdomain.Customer{
		ID:        f.node.Generate(),
		Name:      name,
		Address:   "Jl. Melati 3",
		Category:  tariff.CategoryStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(customer).Error)
	return customer
}

func (f *fixture) seedTransaction(t *testing.T, direction transactiondomain.Direction, amount int64, at time.Time) *transactiondomain.Transaction {
	t.Helper()
	txn := &transactiondomain.Transaction{
		ID:          f.node.Generate(),
		Direction:   direction,
		Description: "manual entry",
		Amount:      amount,
		OccurredAt:  at,
		CreatedAt:   at,
	}
	require.NoError(t, f.db.Create(txn).Error)
	return txn
}

func (f *fixture) seedSettledBill(t *testing.T, customerID snowflake.ID, period string, amount int64, settledAt time.Time) *billingdomain.Bill {
	t.Helper()
	createdAt, _, err := billingdomain.PeriodBounds(period)
	require.NoError(t, err)
	bill := &billingdomain.Bill{
		ID:         f.node.Generate(),
		CustomerID: customerID,
		Period:     period,
		BaseFee:    7000,
		UsageFee:   amount - 7000,
		Amount:     amount,
		Paid:       true,
		SettledAt:  &settledAt,
		CreatedAt:  createdAt,
	}
	require.NoError(t, f.db.Create(bill).Error)
	return bill
}

func TestSummarize_MixesManualAndDerivedInflow(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Budi Santoso")

	march := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	f.seedTransaction(t, transactiondomain.DirectionInflow, 100000, march)
	f.seedTransaction(t, transactiondomain.DirectionOutflow, 40000, march.Add(time.Hour))
	f.seedSettledBill(t, customer.ID, "2024-03", 34500, march.Add(2*time.Hour))

	summary, err := f.svc.Summarize(context.Background(), "2024-03")
	require.NoError(t, err)

	assert.Equal(t, int64(134500), summary.Inflow)
	assert.Equal(t, int64(40000), summary.Outflow)
	assert.Equal(t, int64(94500), summary.Balance)
	assert.Equal(t, int64(94500), summary.LifetimeBalance)
}

func TestSummarize_AttributesBillsBySettlementInstant(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Budi Santoso")

	// A March bill settled in April counts as April cash.
	f.seedSettledBill(t, customer.ID, "2024-03", 34500,
		time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))

	march, err := f.svc.Summarize(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, int64(0), march.Inflow)

	april, err := f.svc.Summarize(context.Background(), "2024-04")
	require.NoError(t, err)
	assert.Equal(t, int64(34500), april.Inflow)
	assert.Equal(t, int64(34500), april.LifetimeBalance)
}

func TestSummarize_LifetimeSpansAllPeriods(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Budi Santoso")

	f.seedTransaction(t, transactiondomain.DirectionInflow, 50000,
		time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC))
	f.seedTransaction(t, transactiondomain.DirectionOutflow, 20000,
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	f.seedSettledBill(t, customer.ID, "2024-03", 29500,
		time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC))

	lifetime, err := f.svc.Summarize(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(79500), lifetime.Inflow)
	assert.Equal(t, int64(20000), lifetime.Outflow)
	assert.Equal(t, int64(59500), lifetime.Balance)
	assert.Equal(t, lifetime.Balance, lifetime.LifetimeBalance)

	march, err := f.svc.Summarize(context.Background(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, int64(9500), march.Balance)
	assert.Equal(t, int64(59500), march.LifetimeBalance)
}

func TestEntries_MergesAndOrdersByOccurrence(t *testing.T) {
	f := newFixture(t)
	customer := f.seedCustomer(t, "Budi Santoso")

	march := time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC)
	f.seedTransaction(t, transactiondomain.DirectionOutflow, 40000, march.Add(3*time.Hour))
	bill := f.seedSettledBill(t, customer.ID, "2024-03", 34500, march.Add(time.Hour))
	f.seedTransaction(t, transactiondomain.DirectionInflow, 100000, march)

	entries, err := f.svc.Entries(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.True(t, entries[0].Manual)
	assert.Equal(t, int64(100000), entries[0].Amount)

	derived := entries[1]
	assert.False(t, derived.Manual)
	assert.Equal(t, bill.ID.String(), derived.BillID)
	assert.Equal(t, transactiondomain.DirectionInflow, derived.Direction)
	assert.Equal(t, "Budi Santoso", derived.CustomerName)
	assert.Equal(t, "Water bill 2024-03, Budi Santoso", derived.Description)

	assert.True(t, entries[2].Manual)
	assert.Equal(t, transactiondomain.DirectionOutflow, entries[2].Direction)
}

func TestEntries_UnknownCustomerIsLabelled(t *testing.T) {
	f := newFixture(t)

	f.seedSettledBill(t, f.node.Generate(), "2024-03", 29500,
		time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC))

	entries, err := f.svc.Entries(context.Background(), "2024-03")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, UnknownCustomerName, entries[0].CustomerName)
}

func TestSummarize_RejectsMalformedPeriod(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Summarize(context.Background(), "2024/03")
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPeriod)
}
