package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

const recentRegistrationsLimit = 5

// DashboardCounters groups the count queries the dashboard aggregates.
type DashboardCounters struct {
	Students interface {
		CountByStatus(ctx context.Context, status models.StudentStatus) (int, error)
	}
	Teachers interface {
		CountActive(ctx context.Context) (int, error)
	}
	Registrations interface {
		CountByStatus(ctx context.Context, status models.RegistrationStatus) (int, error)
		RecentPending(ctx context.Context, limit int) ([]models.Registration, error)
	}
	Materials interface {
		CountPublic(ctx context.Context) (int, error)
	}
	Schedules interface {
		Count(ctx context.Context) (int, error)
	}
}

// DashboardService aggregates the admin landing-page statistics.
type DashboardService struct {
	counters DashboardCounters
	logger   *zap.Logger
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(counters DashboardCounters, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{counters: counters, logger: logger}
}

// Stats collects the counters and the newest pending applications.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	var err error

	if stats.TotalStudents, err = s.counters.Students.CountByStatus(ctx, models.StudentActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.TotalTeachers, err = s.counters.Teachers.CountActive(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.PendingRegistrations, err = s.counters.Registrations.CountByStatus(ctx, models.RegistrationPending); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.TotalMaterials, err = s.counters.Materials.CountPublic(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.TotalSchedules, err = s.counters.Schedules.Count(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.RecentRegistrations, err = s.counters.Registrations.RecentPending(ctx, recentRegistrationsLimit); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	if stats.RecentRegistrations == nil {
		stats.RecentRegistrations = []models.Registration{}
	}
	return stats, nil
}
