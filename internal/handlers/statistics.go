package handlers

import (
	"net/http"
	"strconv"

	"FIN-COACH/internal/models"
	"FIN-COACH/internal/services"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService *services.StatisticsService
}

func NewStatisticsHandler(statisticsService *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{
		statisticsService: statisticsService,
	}
}

func daysParam(c *gin.Context) int {
	days := 30
	if d := c.Query("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 && parsed <= 365 {
			days = parsed
		}
	}
	return days
}

// GetAll returns the summary, per-form counters and 30-day trends
// GET /api/v1/admin/stats
func (h *StatisticsHandler) GetAll(c *gin.Context) {
	summary, err := h.statisticsService.GetSummary()
	if err != nil {
		respondError(c, err)
		return
	}
	formStats, err := h.statisticsService.GetFormStats()
	if err != nil {
		respondError(c, err)
		return
	}
	trends, err := h.statisticsService.GetTrends(30, "")
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"summary": summary,
		"forms":   formStats,
		"trends":  trends,
	})
}

// GET /api/v1/admin/stats/forms/:id
func (h *StatisticsHandler) GetStatsByForm(c *gin.Context) {
	stats, err := h.statisticsService.GetStatsByForm(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// GetTrends returns time-based statistics
// GET /api/v1/admin/stats/trends?days=30&form_config_id=xxx
func (h *StatisticsHandler) GetTrends(c *gin.Context) {
	days := daysParam(c)
	trends, err := h.statisticsService.GetTrends(days, c.Query("form_config_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"days": days, "trends": trends})
}

// GetTimeSeries returns time-based statistics for one event type
// GET /api/v1/admin/stats/trends/:eventType?days=30&form_config_id=xxx
func (h *StatisticsHandler) GetTimeSeries(c *gin.Context) {
	eventType := models.EventType(c.Param("eventType"))
	valid := false
	for _, et := range models.EventTypes {
		if et == eventType {
			valid = true
		}
	}
	if !valid {
		respondMessage(c, http.StatusBadRequest, "invalid event type")
		return
	}

	days := daysParam(c)
	data, err := h.statisticsService.GetTimeSeries(eventType, days, c.Query("form_config_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"days": days, "data": data})
}
