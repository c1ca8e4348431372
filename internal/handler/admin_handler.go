package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Zhandos04/library-management-system/internal/dto"
	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminHandler groups the operator endpoints: dashboard stats, the
// overdue sweep, fine resets and role management.
type AdminHandler struct {
	loanSvc   service.LoanService
	reportSvc service.ReportService
	authSvc   service.AuthService
}

func NewAdminHandler(loanSvc service.LoanService, reportSvc service.ReportService, authSvc service.AuthService) *AdminHandler {
	return &AdminHandler{loanSvc: loanSvc, reportSvc: reportSvc, authSvc: authSvc}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
	rg.POST("/overdue-sweep", h.OverdueSweep)
	rg.POST("/reset-fines", h.ResetFines)
	rg.PUT("/users/:user_id/role", h.UpdateUserRole)
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	stats, err := h.reportSvc.DashboardStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// OverdueSweep flags every loan past its due date. Safe to run
// repeatedly; already-flagged loans are not touched.
func (h *AdminHandler) OverdueSweep(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	affected, err := h.loanSvc.MarkOverdue(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.reportSvc.InvalidateCache(ctx)

	c.JSON(http.StatusOK, dto.SweepResponse{
		Affected: affected,
		Message:  fmt.Sprintf("%d loans marked overdue", affected),
	})
}

func (h *AdminHandler) ResetFines(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	affected, err := h.loanSvc.ResetFines(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.reportSvc.InvalidateCache(ctx)

	c.JSON(http.StatusOK, dto.SweepResponse{
		Affected: affected,
		Message:  fmt.Sprintf("fines cleared on %d returned loans", affected),
	})
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	userID := c.Param("user_id")

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.UpdateUserRole(userID, models.Role(req.Role)); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": req.Role})
}
