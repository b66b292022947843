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
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/config"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	customerrepository "github.com/tirtakarya/waterbill/internal/customer/repository"
	"github.com/tirtakarya/waterbill/internal/tariff"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}, &billingdomain.Bill{}))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, clk clock.Clock) (billingdomain.Service, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        clk,
		GenID:        node,
		Tariff:       config.StaticTariff(tariff.Default()),
		Repo:         billingrepository.Provide(),
		CustomerRepo: customerrepository.Provide(),
	})
	return svc, node
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, category tariff.Category, lastReading int64) *customerdomain.Customer {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	customer := &customerdomain.Customer{
		ID:          node.Generate(),
		Name:        "Budi Santoso",
		Address:     "Jl. Mawar 12",
		Category:    category,
		LastReading: lastReading,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func TestRecordReading_CompilesBill(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	resp, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03", resp.Period)
	assert.Equal(t, int64(120), resp.PrevReading)
	assert.Equal(t, int64(135), resp.CurrReading)
	assert.Equal(t, int64(15), resp.Usage)
	assert.Equal(t, int64(7000), resp.Details.BaseFee)
	assert.Equal(t, int64(22500), resp.Details.UsageFee)
	assert.Equal(t, int64(0), resp.Details.Penalty)
	assert.Equal(t, int64(29500), resp.Amount)
	assert.False(t, resp.Paid)
	assert.Nil(t, resp.SettledAt)

	var stored customerdomain.Customer
	require.NoError(t, db.First(&stored, "id = ?", customer.ID).Error)
	assert.Equal(t, int64(135), stored.LastReading)
}

func TestRecordReading_BusinessRate(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryBusiness, 0)

	resp, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20000), resp.Details.UsageFee)
	assert.Equal(t, int64(27000), resp.Amount)
}

func TestRecordReading_EqualReadingBillsBaseFeeOnly(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	resp, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    120,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(0), resp.Usage)
	assert.Equal(t, int64(7000), resp.Amount)
}

func TestRecordReading_RejectsReadingBelowLast(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	_, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    119,
	})
	assert.ErrorIs(t, err, billingdomain.ErrReadingBelow)

	bills, err := svc.List(context.Background(), billingdomain.ListBillsRequest{})
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestRecordReading_UnknownCustomer(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)

	_, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: node.Generate().String(),
		Reading:    10,
	})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidCustomer)
}

func TestMarkPaid_BeforeDueDay_NoPenalty(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	clk.Advance(72 * time.Hour) // 2024-03-08, still before the due day

	paid, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	assert.Equal(t, int64(0), paid.Details.Penalty)
	assert.Equal(t, int64(29500), paid.Amount)
	require.NotNil(t, paid.SettledAt)
	assert.Equal(t, clk.Now(), paid.SettledAt.UTC())
}

func TestMarkPaid_AfterDueDay_AddsLateFee(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	clk.Advance(10 * 24 * time.Hour) // 2024-03-15, past the due day

	paid, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), paid.Details.Penalty)
	assert.Equal(t, int64(34500), paid.Amount)
}

func TestMarkPaid_LaterMonth_AddsLateFee(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 25, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	// Settled on 2024-04-02: before April's due day, but the bill is
	// from March, so it is late regardless.
	clk.Advance(8 * 24 * time.Hour)

	paid, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), paid.Details.Penalty)
	assert.Equal(t, int64(34500), paid.Amount)
}

func TestMarkPaid_SocialIsExempt(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategorySocial, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    150,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7000), bill.Amount)

	clk.Advance(60 * 24 * time.Hour) // two months later

	paid, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), paid.Details.Penalty)
	assert.Equal(t, int64(7000), paid.Amount)
}

func TestMarkPaid_Idempotent(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	first, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)

	// A penalty would apply now, but the bill is already settled.
	clk.Advance(20 * 24 * time.Hour)

	second, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Amount, second.Amount)
	assert.Equal(t, first.Details.Penalty, second.Details.Penalty)
	require.NotNil(t, second.SettledAt)
	assert.Equal(t, first.SettledAt.UTC(), second.SettledAt.UTC())
}

func TestMarkUnpaid_RevertsPenalty(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	clk.Advance(10 * 24 * time.Hour)

	paid, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(34500), paid.Amount)

	reverted, err := svc.MarkUnpaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.False(t, reverted.Paid)
	assert.Equal(t, int64(0), reverted.Details.Penalty)
	assert.Equal(t, int64(29500), reverted.Amount)
	assert.Nil(t, reverted.SettledAt)

	// Settling again re-evaluates the rule at the new instant.
	again, err := svc.MarkPaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(34500), again.Amount)
}

func TestMarkUnpaid_Idempotent(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	bill, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	resp, err := svc.MarkUnpaid(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.False(t, resp.Paid)
	assert.Equal(t, int64(29500), resp.Amount)
}

func TestArrears_SumsUnpaidBeforeCutoff(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 2, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 120)

	_, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    135,
	})
	require.NoError(t, err)

	clk.Advance(29 * 24 * time.Hour) // 2024-03-05

	second, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    150,
	})
	require.NoError(t, err)

	// Both bills charge 29500. At the second bill's creation instant only
	// the first one counts as arrears.
	atSecond, err := svc.Arrears(context.Background(), customer.ID, second.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(29500), atSecond)

	clk.Advance(24 * time.Hour)
	now, err := svc.Arrears(context.Background(), customer.ID, clk.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(59000), now)

	// Settling the first bill removes it from arrears.
	bills, err := svc.List(context.Background(), billingdomain.ListBillsRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	require.Len(t, bills, 2)
	_, err = svc.MarkPaid(context.Background(), bills[0].ID)
	require.NoError(t, err)

	after, err := svc.Arrears(context.Background(), customer.ID, clk.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(29500), after)
}

func TestList_Filters(t *testing.T) {
	db := openTestDB(t)
	clk := clock.NewFakeClock(time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC))
	svc, node := newTestService(t, db, clk)
	customer := seedCustomer(t, db, node, tariff.CategoryStandard, 0)

	first, err := svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    10,
	})
	require.NoError(t, err)

	clk.Advance(31 * 24 * time.Hour) // 2024-04-05

	_, err = svc.RecordReading(context.Background(), billingdomain.RecordReadingRequest{
		CustomerID: customer.ID.String(),
		Reading:    20,
	})
	require.NoError(t, err)

	_, err = svc.MarkPaid(context.Background(), first.ID)
	require.NoError(t, err)

	march, err := svc.List(context.Background(), billingdomain.ListBillsRequest{Period: "2024-03"})
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, first.ID, march[0].ID)

	unpaid := true
	open, err := svc.List(context.Background(), billingdomain.ListBillsRequest{Unpaid: &unpaid})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "2024-04", open[0].Period)

	_, err = svc.List(context.Background(), billingdomain.ListBillsRequest{Period: "march"})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidPeriod)
}
