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
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// TeacherRepository is the faculty store used by the teacher service.
type TeacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindActiveByID(ctx context.Context, id string) (*models.Teacher, error)
	Departments(ctx context.Context) ([]string, error)
	LastCode(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Delete(ctx context.Context, id string) error
}

// TeacherService manages the faculty directory.
type TeacherService struct {
	repo      TeacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo TeacherRepository, v *validator.Validate, logger *zap.Logger) *TeacherService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: v, logger: logger}
}

// List returns faculty matching the filter. Public callers set ActiveOnly.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, models.NewPagination(total, filter.Page, filter.PerPage), nil
}

// Get fetches one teacher by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}
	return teacher, nil
}

// GetPublic fetches one active teacher by ID. Deactivated faculty are not
// visible to the public directory.
func (s *TeacherService) GetPublic(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch teacher")
	}
	return teacher, nil
}

// Departments lists distinct departments with active faculty.
func (s *TeacherService) Departments(ctx context.Context) ([]string, error) {
	departments, err := s.repo.Departments(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departments")
	}
	return departments, nil
}

// Create adds a faculty member, allocating the next sequential code.
func (s *TeacherService) Create(ctx context.Context, req models.CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	joining := time.Now().UTC()
	if req.JoiningDate != "" {
		var err error
		if joining, err = parseDate(req.JoiningDate, "joining_date"); err != nil {
			return nil, err
		}
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	teacher := &models.Teacher{
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:           strings.TrimSpace(req.Phone),
		Department:      strings.TrimSpace(req.Department),
		Subjects:        string(req.Subjects),
		Qualification:   optional(req.Qualification),
		ExperienceYears: req.ExperienceYears,
		JoiningDate:     joining,
		Address:         optional(req.Address),
		Bio:             optional(req.Bio),
		ProfileImage:    optional(req.ProfileImage),
		IsActive:        active,
	}

	for attempt := 1; ; attempt++ {
		year := currentYear()
		last, err := s.repo.LastCode(ctx, yearPrefix(TeacherCodePrefix, year))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate teacher code")
		}
		teacher.TeacherID = nextCode(TeacherCodePrefix, year, last)
		teacher.ID = ""

		err = s.repo.Create(ctx, teacher)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < codeAllocationAttempts {
			s.logger.Warn("teacher code collision, retrying",
				zap.String("teacher_code", teacher.TeacherID),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	s.logger.Info("teacher created", zap.String("id", teacher.ID), zap.String("teacher_id", teacher.TeacherID))
	return teacher, nil
}

// Update patches the fields present in the payload. The teacher code is
// never touched.
func (s *TeacherService) Update(ctx context.Context, id string, req models.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		teacher.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		teacher.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		teacher.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		teacher.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Department != nil {
		teacher.Department = strings.TrimSpace(*req.Department)
	}
	if req.Subjects != nil {
		teacher.Subjects = string(*req.Subjects)
	}
	if req.Qualification != nil {
		teacher.Qualification = optional(*req.Qualification)
	}
	if req.ExperienceYears != nil {
		teacher.ExperienceYears = *req.ExperienceYears
	}
	if req.JoiningDate != nil {
		joining, err := parseDate(*req.JoiningDate, "joining_date")
		if err != nil {
			return nil, err
		}
		teacher.JoiningDate = joining
	}
	if req.Address != nil {
		teacher.Address = optional(*req.Address)
	}
	if req.Bio != nil {
		teacher.Bio = optional(*req.Bio)
	}
	if req.ProfileImage != nil {
		teacher.ProfileImage = optional(*req.ProfileImage)
	}
	if req.IsActive != nil {
		teacher.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher. Schedules referencing them are detached, not
// deleted.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete teacher")
	}
	s.logger.Info("teacher deleted", zap.String("id", id))
	return nil
}
