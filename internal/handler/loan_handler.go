package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Zhandos04/library-management-system/internal/dto"
	"github.com/Zhandos04/library-management-system/internal/middleware"
	"github.com/Zhandos04/library-management-system/internal/repository"
	"github.com/Zhandos04/library-management-system/internal/service"

	"github.com/gin-gonic/gin"
)

type LoanHandler struct {
	svc service.LoanService
}

func NewLoanHandler(svc service.LoanService) *LoanHandler {
	return &LoanHandler{svc: svc}
}

func (h *LoanHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequireLibrarian(), h.List)
	rg.GET("/overdue", middleware.RequireLibrarian(), h.Overdue)
	rg.GET("/:loan_id", middleware.RequireLibrarian(), h.Get)
	rg.POST("/checkout", h.Checkout)
	rg.POST("/:loan_id/return", middleware.RequireLibrarian(), h.Return)
}

func (h *LoanHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	page, pageSize := pagination(c)
	loans, total, err := h.svc.GetAll(ctx, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.LoanListResponse{
		Items: dto.FromLoanModels(loans),
		Total: total,
		Page:  page, PageSize: pageSize,
	})
}

func (h *LoanHandler) Overdue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	loans, err := h.svc.GetOverdue(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := dto.FromLoanModels(loans)
	c.JSON(http.StatusOK, dto.LoanListResponse{
		Items: items,
		Total: int64(len(items)),
		Page:  1, PageSize: len(items),
	})
}

func (h *LoanHandler) Get(c *gin.Context) {
	loanID, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	loan, err := h.svc.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, repository.ErrLoanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "loan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.FromLoanModel(*loan))
}

func (h *LoanHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	actor := service.Actor{
		UserID: middleware.CurrentUserID(c),
		Role:   middleware.CurrentRole(c),
	}
	loan, err := h.svc.Checkout(ctx, req.BookID, req.MemberID, actor)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		case errors.Is(err, repository.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		case errors.Is(err, repository.ErrBookUnavailable):
			c.JSON(http.StatusConflict, gin.H{"error": "no copies of this book are available"})
		case errors.Is(err, repository.ErrMemberInactive):
			c.JSON(http.StatusConflict, gin.H{"error": "membership is not active"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.FromLoanModel(*loan))
}

func (h *LoanHandler) Return(c *gin.Context) {
	loanID, ok := paramID(c, "loan_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	loan, err := h.svc.Return(ctx, loanID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLoanNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "loan not found"})
		case errors.Is(err, repository.ErrLoanAlreadyReturned):
			c.JSON(http.StatusConflict, gin.H{"error": "loan has already been returned"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, dto.FromLoanModel(*loan))
}
