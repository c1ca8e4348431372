package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Zhandos04/library-management-system/internal/cache"
	"github.com/Zhandos04/library-management-system/internal/dto"
	"github.com/Zhandos04/library-management-system/internal/repository"
)

var ErrUnknownReportType = errors.New("unknown report type")

// Report type names accepted by Generate.
const (
	ReportPopularBooks   = "popular_books"
	ReportActiveMembers  = "active_members"
	ReportOverdueBooks   = "overdue_books"
	ReportFinesCollected = "fines_collected"
	ReportInventory      = "inventory"
	ReportLoanStats      = "loan_stats"
)

type ReportService interface {
	Generate(ctx context.Context, reportType string, periodDays int) (interface{}, error)
	DashboardStats(ctx context.Context) (*dto.DashboardStats, error)
	InvalidateCache(ctx context.Context)
}

type reportService struct {
	repo   repository.ReportRepository
	cache  *cache.ReportCache
	logger *slog.Logger
	now    func() time.Time
}

func NewReportService(repo repository.ReportRepository, reportCache *cache.ReportCache, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		cache:  reportCache,
		logger: logger,
		now:    time.Now,
	}
}

// Generate runs the named report over the trailing periodDays window,
// serving from the cache when possible. Reports are pure reads; a stale
// cache entry can only ever be CacheTTL old.
func (s *reportService) Generate(ctx context.Context, reportType string, periodDays int) (interface{}, error) {
	if periodDays < 1 {
		periodDays = 30
	}
	end := s.now()
	start := end.AddDate(0, 0, -periodDays)
	cacheKey := fmt.Sprintf("%s:%d", reportType, periodDays)

	fetch := func(dest interface{}, run func() (interface{}, error)) (interface{}, error) {
		if err := s.cache.Get(ctx, cacheKey, dest); err == nil {
			return dest, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("report cache read failed", "report", reportType, "error", err)
		}
		result, err := run()
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, cacheKey, result); err != nil {
			s.logger.Warn("report cache write failed", "report", reportType, "error", err)
		}
		return result, nil
	}

	switch reportType {
	case ReportPopularBooks:
		return fetch(&[]dto.PopularBookRow{}, func() (interface{}, error) {
			return s.repo.PopularBooks(ctx, start, end)
		})
	case ReportActiveMembers:
		return fetch(&[]dto.ActiveMemberRow{}, func() (interface{}, error) {
			return s.repo.ActiveMembers(ctx, start, end)
		})
	case ReportOverdueBooks:
		return fetch(&[]dto.OverdueLoanRow{}, func() (interface{}, error) {
			return s.repo.OverdueLoans(ctx, end)
		})
	case ReportFinesCollected:
		return fetch(&[]dto.FinesCollectedRow{}, func() (interface{}, error) {
			return s.repo.FinesCollected(ctx, start, end)
		})
	case ReportInventory:
		return fetch(&[]dto.InventoryRow{}, func() (interface{}, error) {
			return s.repo.Inventory(ctx)
		})
	case ReportLoanStats:
		return fetch(&[]dto.DailyLoanCountRow{}, func() (interface{}, error) {
			return s.repo.DailyLoanCounts(ctx, start, end)
		})
	default:
		return nil, ErrUnknownReportType
	}
}

// DashboardStats is always fresh; the admin page triggers the bulk
// actions and needs to see their effect immediately.
func (s *reportService) DashboardStats(ctx context.Context) (*dto.DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

// InvalidateCache drops all cached reports. Called after MarkOverdue and
// ResetFines.
func (s *reportService) InvalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", "error", err)
	}
}
