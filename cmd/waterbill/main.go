package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tirtakarya/waterbill/internal/billing"
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/config"
	"github.com/tirtakarya/waterbill/internal/customer"
	"github.com/tirtakarya/waterbill/internal/ledger"
	"github.com/tirtakarya/waterbill/internal/liveevents"
	"github.com/tirtakarya/waterbill/internal/logger"
	"github.com/tirtakarya/waterbill/internal/notify"
	"github.com/tirtakarya/waterbill/internal/providers/pdf"
	"github.com/tirtakarya/waterbill/internal/reminder"
	"github.com/tirtakarya/waterbill/internal/report"
	"github.com/tirtakarya/waterbill/internal/server"
	"github.com/tirtakarya/waterbill/internal/transaction"
	"github.com/tirtakarya/waterbill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		liveevents.Module,

		customer.Module,
		billing.Module,
		transaction.Module,
		ledger.Module,
		report.Module,
		pdf.Module,
		notify.Module,
		reminder.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
