package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

type mockRegistrationRepo struct {
	registrations map[string]models.Registration
	pendingEmails map[string]bool
	created       *models.Registration
	approvedWith  *models.Student
	approveErrs   []error
	rejectErr     error
}

func (m *mockRegistrationRepo) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	var out []models.Registration
	for _, r := range m.registrations {
		if filter.Status == "" || r.Status == filter.Status {
			out = append(out, r)
		}
	}
	return out, len(out), nil
}

func (m *mockRegistrationRepo) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	if r, ok := m.registrations[id]; ok {
		return &r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) FindLatestByEmail(ctx context.Context, email string) (*models.Registration, error) {
	for _, r := range m.registrations {
		if r.Email == email {
			return &r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) HasPendingWithEmail(ctx context.Context, email string) (bool, error) {
	return m.pendingEmails[email], nil
}

func (m *mockRegistrationRepo) Create(ctx context.Context, registration *models.Registration) error {
	if m.registrations == nil {
		m.registrations = make(map[string]models.Registration)
	}
	if registration.ID == "" {
		registration.ID = "reg-new"
	}
	registration.CreatedAt = time.Now().UTC()
	m.registrations[registration.ID] = *registration
	m.created = registration
	return nil
}

func (m *mockRegistrationRepo) Approve(ctx context.Context, registration *models.Registration, student *models.Student) error {
	if len(m.approveErrs) > 0 {
		err := m.approveErrs[0]
		m.approveErrs = m.approveErrs[1:]
		if err != nil {
			return err
		}
	}
	student.ID = "student-new"
	m.registrations[registration.ID] = *registration
	m.approvedWith = student
	return nil
}

func (m *mockRegistrationRepo) Reject(ctx context.Context, registration *models.Registration) error {
	if m.rejectErr != nil {
		return m.rejectErr
	}
	m.registrations[registration.ID] = *registration
	return nil
}

type mockCodeSource struct {
	last string
	err  error
}

func (m *mockCodeSource) LastCode(ctx context.Context, prefix string) (string, error) {
	return m.last, m.err
}

func withFixedYear(t *testing.T, year int) {
	t.Helper()
	prev := currentYear
	currentYear = func() int { return year }
	t.Cleanup(func() { currentYear = prev })
}

func pendingRegistration(id string) models.Registration {
	medical := "peanut allergy"
	return models.Registration{
		ID:               id,
		FirstName:        "Amina",
		LastName:         "Yusuf",
		Email:            "amina@example.com",
		Phone:            "0812 3456 789",
		DateOfBirth:      time.Date(2010, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:           "female",
		Address:          "12 Harbor Road",
		ParentName:       "Hassan Yusuf",
		ParentPhone:      "+62 811 222 333",
		GradeApplying:    "10",
		EmergencyContact: "Hassan Yusuf",
		EmergencyPhone:   "0811222333",
		MedicalNotes:     &medical,
		Status:           models.RegistrationPending,
		CreatedAt:        time.Now().UTC().Add(-time.Hour),
	}
}

func submitRequest() models.SubmitRegistrationRequest {
	return models.SubmitRegistrationRequest{
		FirstName:        "Amina",
		LastName:         "Yusuf",
		Email:            "Amina@Example.com",
		Phone:            "0812 3456 789",
		DateOfBirth:      "2010-04-12",
		Gender:           "female",
		Address:          "12 Harbor Road",
		ParentName:       "Hassan Yusuf",
		ParentPhone:      "+62 811 222 333",
		GradeApplying:    "10",
		EmergencyContact: "Hassan Yusuf",
		EmergencyPhone:   "0811222333",
	}
}

func newRegistrationService(repo *mockRegistrationRepo, codes *mockCodeSource) *RegistrationService {
	return NewRegistrationService(repo, codes, validation.New(), nil)
}

func TestSubmitCreatesPendingRegistration(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newRegistrationService(repo, &mockCodeSource{})

	registration, err := svc.Submit(context.Background(), submitRequest())
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationPending, registration.Status)
	assert.Equal(t, "amina@example.com", registration.Email)
	assert.Nil(t, registration.ReviewedBy)
	require.NotNil(t, repo.created)
}

func TestSubmitRejectsDuplicatePendingEmail(t *testing.T) {
	repo := &mockRegistrationRepo{pendingEmails: map[string]bool{"amina@example.com": true}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	_, err := svc.Submit(context.Background(), submitRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "You already have a pending registration. Please wait for approval.", appErr.Message)
}

func TestSubmitRejectsInvalidPhone(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockCodeSource{})

	req := submitRequest()
	req.Phone = "not-a-phone"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	req = submitRequest()
	req.Phone = "123"
	_, err = svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitRejectsInvalidDateOfBirth(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockCodeSource{})

	req := submitRequest()
	req.DateOfBirth = "12/04/2010"
	_, err := svc.Submit(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Message, "date_of_birth")
}

func TestApproveEnrollsStudent(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"reg-1": pendingRegistration("reg-1"),
	}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	result, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{Section: "A"})
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationApproved, result.Registration.Status)
	require.NotNil(t, result.Registration.ReviewedBy)
	assert.Equal(t, "admin-1", *result.Registration.ReviewedBy)
	assert.NotNil(t, result.Registration.ReviewedAt)

	student := result.Student
	require.NotNil(t, student)
	assert.Equal(t, "STD202600001", student.StudentID)
	assert.Equal(t, "Amina", student.FirstName)
	assert.Equal(t, "amina@example.com", student.Email)
	assert.Equal(t, "10", student.GradeLevel)
	require.NotNil(t, student.Section)
	assert.Equal(t, "A", *student.Section)
	assert.Equal(t, models.StudentActive, student.Status)
	require.NotNil(t, student.RegistrationID)
	assert.Equal(t, "reg-1", *student.RegistrationID)
	require.NotNil(t, student.MedicalNotes)
	assert.Equal(t, "peanut allergy", *student.MedicalNotes)
}

func TestApproveGradeLevelOverride(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"reg-1": pendingRegistration("reg-1"),
	}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	result, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{GradeLevel: "11"})
	require.NoError(t, err)
	assert.Equal(t, "11", result.Student.GradeLevel)
}

func TestApproveTerminalStateFails(t *testing.T) {
	for _, status := range []models.RegistrationStatus{models.RegistrationApproved, models.RegistrationRejected} {
		t.Run(string(status), func(t *testing.T) {
			reg := pendingRegistration("reg-1")
			reg.Status = status
			repo := &mockRegistrationRepo{registrations: map[string]models.Registration{"reg-1": reg}}
			svc := newRegistrationService(repo, &mockCodeSource{})

			_, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
			require.Error(t, err)

			appErr := appErrors.FromError(err)
			assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
			assert.Equal(t, fmt.Sprintf("registration is already %s", status), appErr.Message)
			assert.Nil(t, repo.approvedWith)
		})
	}
}

func TestApproveRetriesOnCodeCollision(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockRegistrationRepo{
		registrations: map[string]models.Registration{"reg-1": pendingRegistration("reg-1")},
		approveErrs:   []error{fmt.Errorf("insert student: %w", repository.ErrDuplicate)},
	}
	codes := &mockCodeSource{last: "STD202600007"}
	svc := newRegistrationService(repo, codes)

	result, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
	require.NoError(t, err)
	assert.Equal(t, "STD202600008", result.Student.StudentID)
}

func TestApproveGivesUpAfterRepeatedCollisions(t *testing.T) {
	withFixedYear(t, 2026)
	dup := fmt.Errorf("insert student: %w", repository.ErrDuplicate)
	repo := &mockRegistrationRepo{
		registrations: map[string]models.Registration{"reg-1": pendingRegistration("reg-1")},
		approveErrs:   []error{dup, dup, dup},
	}
	svc := newRegistrationService(repo, &mockCodeSource{})

	_, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestApproveLostRaceReportsWinner(t *testing.T) {
	withFixedYear(t, 2026)
	reg := pendingRegistration("reg-1")
	repo := &mockRegistrationRepo{
		registrations: map[string]models.Registration{"reg-1": reg},
		approveErrs:   []error{sql.ErrNoRows},
	}
	svc := newRegistrationService(repo, &mockCodeSource{})

	// Simulate another admin winning between the read and the update.
	winner := reg
	winner.Status = models.RegistrationRejected
	repo.registrations["reg-1"] = winner

	_, err := svc.Approve(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErr.Code)
	assert.Equal(t, "registration is already rejected", appErr.Message)
}

func TestRejectDefaultsAdminNote(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"reg-1": pendingRegistration("reg-1"),
	}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	registration, err := svc.Reject(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.RegistrationRejected, registration.Status)
	require.NotNil(t, registration.AdminNotes)
	assert.Equal(t, "Registration rejected", *registration.AdminNotes)
}

func TestRejectKeepsProvidedNote(t *testing.T) {
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{
		"reg-1": pendingRegistration("reg-1"),
	}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	registration, err := svc.Reject(context.Background(), "reg-1", "admin-1",
		models.ReviewRegistrationRequest{AdminNotes: "incomplete documents"})
	require.NoError(t, err)
	require.NotNil(t, registration.AdminNotes)
	assert.Equal(t, "incomplete documents", *registration.AdminNotes)
}

func TestRejectTerminalStateFails(t *testing.T) {
	reg := pendingRegistration("reg-1")
	reg.Status = models.RegistrationApproved
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{"reg-1": reg}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	_, err := svc.Reject(context.Background(), "reg-1", "admin-1", models.ReviewRegistrationRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
}

func TestCheckStatusNotFound(t *testing.T) {
	svc := newRegistrationService(&mockRegistrationRepo{}, &mockCodeSource{})

	_, err := svc.CheckStatus(context.Background(), "nobody@example.com")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCheckStatusReturnsProjection(t *testing.T) {
	reg := pendingRegistration("reg-1")
	repo := &mockRegistrationRepo{registrations: map[string]models.Registration{"reg-1": reg}}
	svc := newRegistrationService(repo, &mockCodeSource{})

	info, err := svc.CheckStatus(context.Background(), " AMINA@example.com ")
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationPending, info.Status)
	assert.Nil(t, info.ReviewedAt)
}
