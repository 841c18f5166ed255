package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// ScheduleRepository is the timetable store used by the schedule service.
type ScheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	FilterOptions(ctx context.Context) (*models.ScheduleFilterOptions, error)
	Create(ctx context.Context, schedule *models.Schedule) error
	Update(ctx context.Context, schedule *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

// ScheduleService manages the class timetable.
type ScheduleService struct {
	repo      ScheduleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo ScheduleRepository, v *validator.Validate, logger *zap.Logger) *ScheduleService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, validator: v, logger: logger}
}

// List returns timetable slots matching the filter.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, *models.Pagination, error) {
	if filter.Day != "" {
		day, err := parseDayOfWeek(filter.Day)
		if err != nil {
			return nil, nil, err
		}
		filter.Day = day
	}
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}
	return schedules, models.NewPagination(total, filter.Page, filter.PerPage), nil
}

// Get fetches one timetable slot by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch schedule")
	}
	return schedule, nil
}

// FilterOptions lists distinct grades, sections and the weekday order.
func (s *ScheduleService) FilterOptions(ctx context.Context) (*models.ScheduleFilterOptions, error) {
	options, err := s.repo.FilterOptions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load filter options")
	}
	return options, nil
}

// Create adds a timetable slot.
func (s *ScheduleService) Create(ctx context.Context, creatorID string, req models.CreateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid schedule payload")
	}
	day, err := parseDayOfWeek(req.DayOfWeek)
	if err != nil {
		return nil, err
	}
	startTime, err := parseClock(req.StartTime, "start_time")
	if err != nil {
		return nil, err
	}
	endTime, err := parseClock(req.EndTime, "end_time")
	if err != nil {
		return nil, err
	}
	effectiveFrom, err := parseDate(req.EffectiveFrom, "effective_from")
	if err != nil {
		return nil, err
	}
	var effectiveUntil *time.Time
	if req.EffectiveUntil != "" {
		until, err := parseDate(req.EffectiveUntil, "effective_until")
		if err != nil {
			return nil, err
		}
		effectiveUntil = &until
	}
	recurring := true
	if req.IsRecurring != nil {
		recurring = *req.IsRecurring
	}

	schedule := &models.Schedule{
		Title:          strings.TrimSpace(req.Title),
		Subject:        strings.TrimSpace(req.Subject),
		GradeLevel:     strings.TrimSpace(req.GradeLevel),
		Section:        optional(req.Section),
		DayOfWeek:      day,
		StartTime:      startTime,
		EndTime:        endTime,
		Room:           optional(req.Room),
		TeacherID:      optional(req.TeacherID),
		Description:    optional(req.Description),
		IsRecurring:    recurring,
		EffectiveFrom:  effectiveFrom,
		EffectiveUntil: effectiveUntil,
		CreatedBy:      optional(creatorID),
	}
	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	s.logger.Info("schedule created", zap.String("id", schedule.ID), zap.String("title", schedule.Title))
	return schedule, nil
}

// Update patches the fields present in the payload.
func (s *ScheduleService) Update(ctx context.Context, id string, req models.UpdateScheduleRequest) (*models.Schedule, error) {
	schedule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		schedule.Title = strings.TrimSpace(*req.Title)
	}
	if req.Subject != nil {
		schedule.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.GradeLevel != nil {
		schedule.GradeLevel = strings.TrimSpace(*req.GradeLevel)
	}
	if req.Section != nil {
		schedule.Section = optional(*req.Section)
	}
	if req.DayOfWeek != nil {
		day, err := parseDayOfWeek(*req.DayOfWeek)
		if err != nil {
			return nil, err
		}
		schedule.DayOfWeek = day
	}
	if req.StartTime != nil {
		startTime, err := parseClock(*req.StartTime, "start_time")
		if err != nil {
			return nil, err
		}
		schedule.StartTime = startTime
	}
	if req.EndTime != nil {
		endTime, err := parseClock(*req.EndTime, "end_time")
		if err != nil {
			return nil, err
		}
		schedule.EndTime = endTime
	}
	if req.Room != nil {
		schedule.Room = optional(*req.Room)
	}
	if req.TeacherID != nil {
		schedule.TeacherID = optional(*req.TeacherID)
	}
	if req.Description != nil {
		schedule.Description = optional(*req.Description)
	}
	if req.IsRecurring != nil {
		schedule.IsRecurring = *req.IsRecurring
	}
	if req.EffectiveFrom != nil {
		from, err := parseDate(*req.EffectiveFrom, "effective_from")
		if err != nil {
			return nil, err
		}
		schedule.EffectiveFrom = from
	}
	if req.EffectiveUntil != nil {
		if strings.TrimSpace(*req.EffectiveUntil) == "" {
			schedule.EffectiveUntil = nil
		} else {
			until, err := parseDate(*req.EffectiveUntil, "effective_until")
			if err != nil {
				return nil, err
			}
			schedule.EffectiveUntil = &until
		}
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return schedule, nil
}

// Delete removes a timetable slot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	s.logger.Info("schedule deleted", zap.String("id", id))
	return nil
}

// parseDayOfWeek normalises case and rejects unknown weekday names.
func parseDayOfWeek(value string) (string, error) {
	name := strings.TrimSpace(value)
	for _, day := range models.DaysOfWeek {
		if strings.EqualFold(day, name) {
			return day, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrValidation, "invalid day_of_week: expected a weekday name")
}
