package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "invoicedesk/docs"
	"invoicedesk/internal/config"
	"invoicedesk/internal/handler"
	"invoicedesk/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Health  *handler.HealthHandler
	Upload  *handler.UploadHandler
	Draft   *handler.DraftHandler
	Invoice *handler.InvoiceHandler
	Stats   *handler.StatsHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Ingestion is the expensive path; throttle it per client.
	v1.POST("/uploads",
		middleware.RateLimit(cfg.RateLimit.UploadsPerMinute, cfg.RateLimit.Burst),
		h.Upload.Upload)

	// Draft under review
	draft := v1.Group("/draft")
	draft.GET("", h.Draft.Get)
	draft.PATCH("", h.Draft.Edit)
	draft.DELETE("", h.Draft.Cancel)
	draft.POST("/commit", h.Draft.Commit)
	draft.GET("/document", h.Upload.Document)

	// Committed invoices
	invoices := v1.Group("/invoices")
	invoices.GET("", h.Invoice.List)
	invoices.POST("", h.Invoice.Create)
	invoices.GET("/export", h.Invoice.Export)
	invoices.GET("/:id", h.Invoice.Get)
	invoices.PUT("/:id", h.Invoice.Update)
	invoices.DELETE("/:id", h.Invoice.Delete)

	clients := v1.Group("/clients")
	clients.GET("", h.Invoice.ListClients)
	clients.GET("/:id", h.Invoice.GetClient)
	clients.GET("/:id/invoices", h.Invoice.ClientInvoices)

	v1.POST("/sync", h.Invoice.Sync)

	// Dashboard stats
	stats := v1.Group("/stats")
	stats.GET("/summary", h.Stats.Summary)
	stats.GET("/revenue-per-day", h.Stats.RevenuePerDay)
	stats.GET("/top-clients", h.Stats.TopClients)
	stats.GET("/recent-invoices", h.Stats.RecentInvoices)
	stats.GET("/snapshot", h.Stats.Snapshot)

	return r
}
