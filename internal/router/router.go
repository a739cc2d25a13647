package router

import (
	"net/http"

	"github.com/Homesapp/HomesappNew-sub000/internal/billing"
	"github.com/Homesapp/HomesappNew-sub000/internal/config"
	"github.com/Homesapp/HomesappNew-sub000/internal/handler"
	"github.com/Homesapp/HomesappNew-sub000/internal/middleware"
	"github.com/Homesapp/HomesappNew-sub000/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter wires the billing API onto a gin engine.
func SetupRouter(cfg *config.Config, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	stores := store.New(db)
	gen := billing.NewGenerator(stores, logger.Named("generator"))
	coord := billing.NewCoordinator(stores, gen, logger.Named("confirm"))
	agg := billing.NewAggregator(stores)

	// ====== API ======
	api := r.Group("/api")
	api.Use(
		middleware.AuthMiddleware(cfg.JWT.Secret),
		middleware.AuditMiddleware(db, cfg.Security.EncryptionKey, logger),
	)

	scheduleHandler := handler.NewScheduleHandler(stores, gen, cfg.Billing.DefaultCurrency)
	api.POST("/schedules", scheduleHandler.CreateSchedule)
	api.GET("/schedules", scheduleHandler.ListSchedules)
	api.GET("/schedules/:id", scheduleHandler.GetSchedule)
	api.PUT("/schedules/:id", scheduleHandler.UpdateSchedule)
	api.DELETE("/schedules/:id", scheduleHandler.DeleteSchedule)
	api.POST("/schedules/:id/toggle", scheduleHandler.ToggleSchedule)
	api.POST("/schedules/:id/generate", scheduleHandler.GenerateFirst)
	api.GET("/contracts/:id/schedules", scheduleHandler.ListContractSchedules)

	paymentHandler := handler.NewPaymentHandler(stores, gen, coord,
		cfg.Billing.UpcomingDays, cfg.Billing.DefaultCurrency, logger)
	api.POST("/payments", paymentHandler.CreatePayment)
	api.GET("/payments", paymentHandler.ListPayments)
	api.GET("/payments/upcoming", paymentHandler.ListUpcoming)
	api.POST("/payments/mark-overdue", paymentHandler.MarkOverdue)
	api.GET("/payments/:id", paymentHandler.GetPayment)
	api.PUT("/payments/:id", paymentHandler.UpdatePayment)
	api.DELETE("/payments/:id", paymentHandler.DeletePayment)
	api.POST("/payments/:id/confirm", paymentHandler.ConfirmPayment)
	api.POST("/payments/:id/generate-next", paymentHandler.GenerateNext)
	api.POST("/payments/:id/reminder", paymentHandler.MarkReminderSent)
	api.GET("/contracts/:id/payments", paymentHandler.ListContractPayments)

	ledgerHandler := handler.NewLedgerHandler(stores, agg, cfg.Billing.DefaultCurrency, cfg.App.PageSize)
	exportHandler := handler.NewExportHandler(stores)
	api.POST("/ledger", ledgerHandler.CreateEntry)
	api.GET("/ledger", ledgerHandler.ListEntries)
	api.GET("/ledger/summary", ledgerHandler.Summary)
	api.GET("/ledger/export/csv", exportHandler.ExportCSV)
	api.GET("/ledger/export/xlsx", exportHandler.ExportXLSX)
	api.GET("/ledger/:id", ledgerHandler.GetEntry)
	api.PUT("/ledger/:id", ledgerHandler.UpdateEntry)
	api.DELETE("/ledger/:id", ledgerHandler.DeleteEntry)
	api.POST("/ledger/:id/reconcile", ledgerHandler.ReconcileEntry)

	logHandler := handler.NewLogHandler(db, cfg.Security.EncryptionKey)
	api.GET("/audit-logs", logHandler.ListLogs)

	return r
}
