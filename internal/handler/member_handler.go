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

type MemberHandler struct {
	svc     service.MemberService
	loanSvc service.LoanService
}

func NewMemberHandler(svc service.MemberService, loanSvc service.LoanService) *MemberHandler {
	return &MemberHandler{svc: svc, loanSvc: loanSvc}
}

func (h *MemberHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequireLibrarian(), h.List)
	rg.POST("", middleware.RequireLibrarian(), h.Create)
	rg.GET("/:member_id", h.Get)
	rg.PUT("/:member_id", middleware.RequireLibrarian(), h.Update)
	rg.DELETE("/:member_id", middleware.RequireLibrarian(), h.Delete)
	rg.GET("/:member_id/loans", h.Loans)
	rg.GET("/:member_id/loans/active", h.ActiveLoans)
}

func (h *MemberHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if query := c.Query("search"); query != "" {
		members, err := h.svc.Search(ctx, query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, dto.MemberListResponse{
			Items: members,
			Total: int64(len(members)),
			Page:  1, PageSize: len(members),
		})
		return
	}

	page, pageSize := pagination(c)
	members, total, err := h.svc.GetAll(ctx, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.MemberListResponse{
		Items: members,
		Total: total,
		Page:  page, PageSize: pageSize,
	})
}

// Get allows librarians to view any member, and a plain user to view the
// member record linked to their own account.
func (h *MemberHandler) Get(c *gin.Context) {
	memberID, ok := paramID(c, "member_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	member, err := h.svc.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !middleware.CurrentRole(c).AtLeastLibrarian() {
		userID := middleware.CurrentUserID(c)
		if member.UserID == nil || *member.UserID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
	}

	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Create(c *gin.Context) {
	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	member := req.ToModel()
	if err := h.svc.Create(ctx, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateKey):
			c.JSON(http.StatusConflict, gin.H{"error": "a member with this email already exists"})
		case errors.Is(err, service.ErrInvalidMembershipStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *MemberHandler) Update(c *gin.Context) {
	memberID, ok := paramID(c, "member_id")
	if !ok {
		return
	}

	var req dto.MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	member := req.ToModel()
	if err := h.svc.Update(ctx, memberID, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		case errors.Is(err, repository.ErrDuplicateKey):
			c.JSON(http.StatusConflict, gin.H{"error": "a member with this email already exists"})
		case errors.Is(err, service.ErrInvalidMembershipStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, member)
}

func (h *MemberHandler) Delete(c *gin.Context) {
	memberID, ok := paramID(c, "member_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	if err := h.svc.Delete(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *MemberHandler) Loans(c *gin.Context) {
	h.memberLoans(c, false)
}

func (h *MemberHandler) ActiveLoans(c *gin.Context) {
	h.memberLoans(c, true)
}

func (h *MemberHandler) memberLoans(c *gin.Context, activeOnly bool) {
	memberID, ok := paramID(c, "member_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	actor := service.Actor{
		UserID: middleware.CurrentUserID(c),
		Role:   middleware.CurrentRole(c),
	}
	loans, err := h.loanSvc.GetMemberLoans(ctx, memberID, activeOnly, actor)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrMemberNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	items := dto.FromLoanModels(loans)
	c.JSON(http.StatusOK, dto.LoanListResponse{
		Items: items,
		Total: int64(len(items)),
		Page:  1, PageSize: len(items),
	})
}
