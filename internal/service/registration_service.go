package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// codeAllocationAttempts bounds retries when two approvals race for the
// same sequential code. The unique index on the code column turns the
// loser's insert into a duplicate error, and the next attempt re-reads
// the winner's code.
const codeAllocationAttempts = 3

// RegistrationRepository is the application store used by the workflow.
type RegistrationRepository interface {
	List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error)
	FindByID(ctx context.Context, id string) (*models.Registration, error)
	FindLatestByEmail(ctx context.Context, email string) (*models.Registration, error)
	HasPendingWithEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, registration *models.Registration) error
	Approve(ctx context.Context, registration *models.Registration, student *models.Student) error
	Reject(ctx context.Context, registration *models.Registration) error
}

// StudentCodeSource provides the greatest allocated student code.
type StudentCodeSource interface {
	LastCode(ctx context.Context, prefix string) (string, error)
}

// RegistrationService runs the public intake and admin review workflow.
type RegistrationService struct {
	registrations RegistrationRepository
	students      StudentCodeSource
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(registrations RegistrationRepository, students StudentCodeSource, v *validator.Validate, logger *zap.Logger) *RegistrationService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{registrations: registrations, students: students, validator: v, logger: logger}
}

// Submit files a new public application in the pending state.
func (s *RegistrationService) Submit(ctx context.Context, req models.SubmitRegistrationRequest) (*models.Registration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid registration payload")
	}
	dob, err := parseDate(req.DateOfBirth, "date_of_birth")
	if err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	pending, err := s.registrations.HasPendingWithEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit registration")
	}
	if pending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "You already have a pending registration. Please wait for approval.")
	}

	registration := &models.Registration{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		Phone:            strings.TrimSpace(req.Phone),
		DateOfBirth:      dob,
		Gender:           strings.TrimSpace(req.Gender),
		Address:          strings.TrimSpace(req.Address),
		ParentName:       strings.TrimSpace(req.ParentName),
		ParentPhone:      strings.TrimSpace(req.ParentPhone),
		ParentEmail:      optionalLower(req.ParentEmail),
		PreviousSchool:   optional(req.PreviousSchool),
		GradeApplying:    strings.TrimSpace(req.GradeApplying),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		EmergencyPhone:   strings.TrimSpace(req.EmergencyPhone),
		MedicalNotes:     optional(req.MedicalNotes),
		Status:           models.RegistrationPending,
	}
	if err := s.registrations.Create(ctx, registration); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit registration")
	}
	s.logger.Info("registration submitted",
		zap.String("registration_id", registration.ID),
		zap.String("email", registration.Email))
	return registration, nil
}

// CheckStatus returns the public projection of the latest application for
// an email.
func (s *RegistrationService) CheckStatus(ctx context.Context, email string) (*models.RegistrationStatusInfo, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required field: email")
	}
	registration, err := s.registrations.FindLatestByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no registration found for this email")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check status")
	}
	return &models.RegistrationStatusInfo{
		Status:      registration.Status,
		SubmittedAt: registration.CreatedAt,
		ReviewedAt:  registration.ReviewedAt,
		AdminNotes:  registration.AdminNotes,
	}, nil
}

// List returns applications for review, optionally narrowed by status.
func (s *RegistrationService) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, *models.Pagination, error) {
	if filter.Status != "" {
		switch filter.Status {
		case models.RegistrationPending, models.RegistrationApproved, models.RegistrationRejected:
		default:
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
		}
	}
	registrations, total, err := s.registrations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, models.NewPagination(total, filter.Page, filter.PerPage), nil
}

// Get fetches one application by ID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*models.Registration, error) {
	registration, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch registration")
	}
	return registration, nil
}

// Approve enrolls a pending applicant. The new student record copies the
// application fields, takes the next sequential code, and lands in the
// same transaction that flips the registration to approved.
func (s *RegistrationService) Approve(ctx context.Context, id, reviewerID string, req models.ReviewRegistrationRequest) (*models.ApprovalResult, error) {
	registration, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Status != models.RegistrationPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("registration is already %s", registration.Status))
	}

	now := time.Now().UTC()
	registration.Status = models.RegistrationApproved
	registration.ReviewedBy = &reviewerID
	registration.ReviewedAt = &now
	if note := optional(req.AdminNotes); note != nil {
		registration.AdminNotes = note
	}

	gradeLevel := registration.GradeApplying
	if grade := strings.TrimSpace(req.GradeLevel); grade != "" {
		gradeLevel = grade
	}

	student := &models.Student{
		FirstName:        registration.FirstName,
		LastName:         registration.LastName,
		Email:            registration.Email,
		Phone:            optional(registration.Phone),
		DateOfBirth:      registration.DateOfBirth,
		Gender:           registration.Gender,
		Address:          optional(registration.Address),
		EnrollmentDate:   now,
		GradeLevel:       gradeLevel,
		Section:          optional(req.Section),
		ParentName:       registration.ParentName,
		ParentPhone:      registration.ParentPhone,
		ParentEmail:      registration.ParentEmail,
		EmergencyContact: registration.EmergencyContact,
		EmergencyPhone:   registration.EmergencyPhone,
		MedicalNotes:     registration.MedicalNotes,
		Status:           models.StudentActive,
		RegistrationID:   &registration.ID,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.nextStudentCode(ctx)
		if err != nil {
			return nil, err
		}
		student.StudentID = code
		student.ID = ""

		err = s.registrations.Approve(ctx, registration, student)
		if err == nil {
			break
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.concurrentDecision(ctx, id)
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < codeAllocationAttempts {
			s.logger.Warn("student code collision, retrying",
				zap.String("registration_id", id),
				zap.String("student_code", code),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve registration")
	}

	s.logger.Info("registration approved",
		zap.String("registration_id", registration.ID),
		zap.String("student_id", student.StudentID),
		zap.String("reviewed_by", reviewerID))
	return &models.ApprovalResult{Registration: registration, Student: student}, nil
}

// Reject marks a pending application as rejected.
func (s *RegistrationService) Reject(ctx context.Context, id, reviewerID string, req models.ReviewRegistrationRequest) (*models.Registration, error) {
	registration, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if registration.Status != models.RegistrationPending {
		return nil, appErrors.Clone(appErrors.ErrInvalidState,
			fmt.Sprintf("registration is already %s", registration.Status))
	}

	now := time.Now().UTC()
	registration.Status = models.RegistrationRejected
	registration.ReviewedBy = &reviewerID
	registration.ReviewedAt = &now
	note := strings.TrimSpace(req.AdminNotes)
	if note == "" {
		note = "Registration rejected"
	}
	registration.AdminNotes = &note

	if err := s.registrations.Reject(ctx, registration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.concurrentDecision(ctx, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject registration")
	}

	s.logger.Info("registration rejected",
		zap.String("registration_id", registration.ID),
		zap.String("reviewed_by", reviewerID))
	return registration, nil
}

func (s *RegistrationService) nextStudentCode(ctx context.Context) (string, error) {
	year := currentYear()
	last, err := s.students.LastCode(ctx, yearPrefix(StudentCodePrefix, year))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student code")
	}
	return nextCode(StudentCodePrefix, year, last), nil
}

// concurrentDecision re-reads the registration after a lost status race to
// report which terminal state won.
func (s *RegistrationService) concurrentDecision(ctx context.Context, id string) error {
	registration, err := s.registrations.FindByID(ctx, id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidState, "registration has already been reviewed")
	}
	return appErrors.Clone(appErrors.ErrInvalidState,
		fmt.Sprintf("registration is already %s", registration.Status))
}
