package reminder

import (
	"context"
	"sync"
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

type captureMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

type sentMessage struct {
	To   string
	Body string
}

func (m *captureMessenger) Send(ctx context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMessage{To: to, Body: body})
	return nil
}

func (m *captureMessenger) messages() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

func newTestService(t *testing.T, clk clock.Clock) (*Service, *gorm.DB, *snowflake.Node, *captureMessenger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&customerdomain.Customer{}, &billingdomain.Bill{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	messenger := &captureMessenger{}
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clk,
		Cfg: config.Config{
			SMS: config.SMSConfig{CountryCode: "+62"},
		},
		Tariff:       config.StaticTariff(tariff.Default()),
		BillRepo:     billingrepository.Provide(),
		CustomerRepo: customerrepository.Provide(),
		Messenger:    messenger,
	})
	return svc, db, node, messenger
}

func seedUnpaidBill(t *testing.T, db *gorm.DB, node *snowflake.Node, customerID snowflake.ID, amount int64) {
	t.Helper()
	createdAt := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&billingdomain.Bill{
		ID:         node.Generate(),
		CustomerID: customerID,
		Period:     "2024-03",
		BaseFee:    7000,
		UsageFee:   amount - 7000,
		Amount:     amount,
		CreatedAt:  createdAt,
	}).Error)
}

func seedCustomer(t *testing.T, db *gorm.DB, node *snowflake.Node, name, phone string) *customerdomain.Customer {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	customer := &customerdomain.Customer{
		ID:        node.Generate(),
		Name:      name,
		Address:   "Jl. Melati 3",
		Phone:     phone,
		Category:  tariff.CategoryStandard,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func TestRunOnce_GroupsBillsPerCustomer(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	svc, db, node, messenger := newTestService(t, clk)

	budi := seedCustomer(t, db, node, "Budi Santoso", "081234567890")
	seedUnpaidBill(t, db, node, budi.ID, 29500)
	seedUnpaidBill(t, db, node, budi.ID, 34500)

	svc.RunOnce(context.Background())

	sent := messenger.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "+6281234567890", sent[0].To)
	assert.Contains(t, sent[0].Body, "2 unpaid water bills")
	assert.Contains(t, sent[0].Body, "Rp64000")
}

func TestRunOnce_SkipsBeforeDueDay(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db, node, messenger := newTestService(t, clk)

	budi := seedCustomer(t, db, node, "Budi Santoso", "081234567890")
	seedUnpaidBill(t, db, node, budi.ID, 29500)

	svc.RunOnce(context.Background())
	assert.Empty(t, messenger.messages())
}

func TestRunOnce_SkipsCustomersWithoutPhone(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	svc, db, node, messenger := newTestService(t, clk)

	silent := seedCustomer(t, db, node, "Siti Aminah", "")
	seedUnpaidBill(t, db, node, silent.ID, 29500)

	svc.RunOnce(context.Background())
	assert.Empty(t, messenger.messages())
}

func TestRunOnce_IgnoresPaidBills(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC))
	svc, db, node, messenger := newTestService(t, clk)

	budi := seedCustomer(t, db, node, "Budi Santoso", "081234567890")
	settledAt := time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&billingdomain.Bill{
		ID:         node.Generate(),
		CustomerID: budi.ID,
		Period:     "2024-03",
		BaseFee:    7000,
		UsageFee:   22500,
		Amount:     29500,
		Paid:       true,
		SettledAt:  &settledAt,
		CreatedAt:  time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
	}).Error)

	svc.RunOnce(context.Background())
	assert.Empty(t, messenger.messages())
}
