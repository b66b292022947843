package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	billingdomain "github.com/tirtakarya/waterbill/internal/billing/domain"
	"github.com/tirtakarya/waterbill/internal/clock"
	"github.com/tirtakarya/waterbill/internal/config"
	customerdomain "github.com/tirtakarya/waterbill/internal/customer/domain"
	ledgerdomain "github.com/tirtakarya/waterbill/internal/ledger/domain"
	"github.com/tirtakarya/waterbill/internal/liveevents"
	"github.com/tirtakarya/waterbill/internal/notify"
	"github.com/tirtakarya/waterbill/internal/providers/pdf"
	"github.com/tirtakarya/waterbill/internal/report"
	transactiondomain "github.com/tirtakarya/waterbill/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	log            *zap.Logger
	clock          clock.Clock
	tariff         *config.TariffHolder
	customerSvc    customerdomain.Service
	billingSvc     billingdomain.Service
	transactionSvc transactiondomain.Service
	ledgerSvc      ledgerdomain.Service
	reportSvc      report.Service
	pdfProvider    pdf.Provider
	messenger      notify.Messenger
	liveEvents     *liveevents.Hub
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	Tariff         *config.TariffHolder
	CustomerSvc    customerdomain.Service
	BillingSvc     billingdomain.Service
	TransactionSvc transactiondomain.Service
	LedgerSvc      ledgerdomain.Service
	ReportSvc      report.Service
	PDFProvider    pdf.Provider     `optional:"true"`
	Messenger      notify.Messenger `optional:"true"`
	LiveEvents     *liveevents.Hub  `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		log:            p.Log.Named("http.server"),
		clock:          p.Clock,
		tariff:         p.Tariff,
		customerSvc:    p.CustomerSvc,
		billingSvc:     p.BillingSvc,
		transactionSvc: p.TransactionSvc,
		ledgerSvc:      p.LedgerSvc,
		reportSvc:      p.ReportSvc,
		pdfProvider:    p.PDFProvider,
		messenger:      p.Messenger,
		liveEvents:     p.LiveEvents,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Customers --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PATCH("/customers/:id", s.UpdateCustomer)
	api.GET("/customers/:id/arrears", s.GetCustomerArrears)
	api.POST("/customers/:id/readings", s.RecordReading)

	// -------- Bills --------
	api.GET("/bills", s.ListBills)
	api.GET("/bills/:id", s.GetBillByID)
	api.POST("/bills/:id/pay", s.MarkBillPaid)
	api.POST("/bills/:id/unpay", s.MarkBillUnpaid)

	// -------- Transactions --------
	api.GET("/transactions", s.ListTransactions)
	api.POST("/transactions", s.CreateTransaction)
	api.DELETE("/transactions/:id", s.DeleteTransaction)

	// -------- Ledger --------
	api.GET("/ledger/summary", s.GetLedgerSummary)
	api.GET("/ledger/entries", s.ListLedgerEntries)

	// -------- Reports --------
	api.GET("/reports/:period", s.GetReport)
	api.GET("/reports/:period/csv", s.DownloadReportCSV)
	api.GET("/reports/:period/pdf", s.DownloadReportPDF)

	// -------- Dashboard --------
	api.GET("/dashboard", s.GetDashboard)

	// -------- Live events --------
	api.GET("/live/:collection", s.StreamChangeEvents)
}
