package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Zhandos04/library-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	svc service.ReportService
}

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:type", h.Generate)
}

// Generate serves one of the named report views. ?period= limits
// time-windowed reports to the last N days, defaulting to 30.
func (h *ReportHandler) Generate(c *gin.Context) {
	reportType := c.Param("type")

	periodDays := 30
	if raw := c.Query("period"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a number of days between 1 and 365"})
			return
		}
		periodDays = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	data, err := h.svc.Generate(ctx, reportType, periodDays)
	if err != nil {
		if errors.Is(err, service.ErrUnknownReportType) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown report type: " + reportType})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"report":      reportType,
		"period_days": periodDays,
		"data":        data,
	})
}
