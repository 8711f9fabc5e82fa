package handler

import (
	"github.com/gin-gonic/gin"

	"invoicedesk/internal/service"
)

// StatsHandler handles stats endpoints.
type StatsHandler struct {
	statsService service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// Summary handles GET /api/v1/stats/summary
// @Summary Revenue, invoice and client totals
// @Tags stats
// @Produce json
// @Success 200 {object} Response{data=domain.Summary}
// @Router /stats/summary [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	s, err := h.statsService.Summary(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, s)
}

// RevenuePerDay handles GET /api/v1/stats/revenue-per-day
// @Summary Daily revenue over a trailing window ending today
// @Tags stats
// @Produce json
// @Param days query int false "Window length in days (default 7)"
// @Success 200 {object} Response{data=[]domain.DailyRevenue}
// @Router /stats/revenue-per-day [get]
func (h *StatsHandler) RevenuePerDay(c *gin.Context) {
	series, err := h.statsService.RevenuePerDay(c.Request.Context(), intQuery(c, "days"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, series)
}

// TopClients handles GET /api/v1/stats/top-clients
// @Summary Clients ranked by billed value
// @Tags stats
// @Produce json
// @Param limit query int false "Number of clients (default 5)"
// @Success 200 {object} Response{data=[]domain.ClientValue}
// @Router /stats/top-clients [get]
func (h *StatsHandler) TopClients(c *gin.Context) {
	top, err := h.statsService.TopClients(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, top)
}

// RecentInvoices handles GET /api/v1/stats/recent-invoices
// @Summary Most recent invoices by issue date
// @Tags stats
// @Produce json
// @Param limit query int false "Number of invoices (default 5)"
// @Success 200 {object} Response{data=[]domain.Invoice}
// @Router /stats/recent-invoices [get]
func (h *StatsHandler) RecentInvoices(c *gin.Context) {
	recent, err := h.statsService.RecentInvoices(c.Request.Context(), intQuery(c, "limit"))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, recent)
}

// Snapshot handles GET /api/v1/stats/snapshot
// @Summary Dashboard snapshot
// @Tags stats
// @Produce json
// @Success 200 {object} Response{data=domain.StatsSnapshot}
// @Router /stats/snapshot [get]
func (h *StatsHandler) Snapshot(c *gin.Context) {
	snap, err := h.statsService.Snapshot(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, snap)
}
