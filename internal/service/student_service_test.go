package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

type mockStudentRepo struct {
	students   map[string]models.Student
	last       string
	createErrs []error
	deleted    []string
}

func (m *mockStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, s := range m.students {
		out = append(out, s)
	}
	return out, nil
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return &s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) LastCode(ctx context.Context, prefix string) (string, error) {
	return m.last, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if m.students == nil {
		m.students = make(map[string]models.Student)
	}
	if student.ID == "" {
		student.ID = "student-new"
	}
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	m.students[student.ID] = *student
	return nil
}

func (m *mockStudentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.students, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func createStudentRequest() models.CreateStudentRequest {
	return models.CreateStudentRequest{
		FirstName:   "Budi",
		LastName:    "Santoso",
		Email:       "Budi@Example.com",
		DateOfBirth: "2011-02-03",
		Gender:      "male",
		GradeLevel:  "9",
		ParentName:  "Santoso",
		ParentPhone: "0812345678",
	}
}

func TestCreateStudentAllocatesCode(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockStudentRepo{last: "STD202600011"}
	svc := NewStudentService(repo, validation.New(), nil)

	student, err := svc.Create(context.Background(), createStudentRequest())
	require.NoError(t, err)

	assert.Equal(t, "STD202600012", student.StudentID)
	assert.Equal(t, "budi@example.com", student.Email)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.False(t, student.EnrollmentDate.IsZero())
}

func TestCreateStudentRetriesOnCodeCollision(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockStudentRepo{
		createErrs: []error{fmt.Errorf("create student: %w", repository.ErrDuplicate)},
	}
	svc := NewStudentService(repo, validation.New(), nil)

	student, err := svc.Create(context.Background(), createStudentRequest())
	require.NoError(t, err)
	assert.Equal(t, "STD202600001", student.StudentID)
}

func TestCreateStudentInvalidStatus(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validation.New(), nil)

	req := createStudentRequest()
	req.Status = "expelled"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateStudentNeverTouchesCode(t *testing.T) {
	repo := &mockStudentRepo{students: map[string]models.Student{
		"student-1": {
			ID:        "student-1",
			StudentID: "STD202600001",
			FirstName: "Budi",
			LastName:  "Santoso",
			Email:     "budi@example.com",
			Status:    models.StudentActive,
		},
	}}
	svc := NewStudentService(repo, validation.New(), nil)

	name := "Bambang"
	status := "graduated"
	student, err := svc.Update(context.Background(), "student-1", models.UpdateStudentRequest{
		FirstName: &name,
		Status:    &status,
	})
	require.NoError(t, err)

	assert.Equal(t, "STD202600001", student.StudentID)
	assert.Equal(t, "Bambang", student.FirstName)
	assert.Equal(t, models.StudentGraduated, student.Status)
}

func TestDeleteStudentNotFound(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validation.New(), nil)

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportCSV(t *testing.T) {
	section := "A"
	repo := &mockStudentRepo{students: map[string]models.Student{
		"student-1": {
			ID:             "student-1",
			StudentID:      "STD202600001",
			FirstName:      "Budi",
			LastName:       "Santoso",
			Email:          "budi@example.com",
			GradeLevel:     "9",
			Section:        &section,
			Status:         models.StudentActive,
			EnrollmentDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewStudentService(repo, validation.New(), nil)

	result, err := svc.Export(context.Background(), "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Content)
	assert.Contains(t, body, "Student ID,Name,Email,Grade,Section,Status,Enrolled")
	assert.Contains(t, body, "STD202600001,Budi Santoso,budi@example.com,9,A,active,2026-01-15")
}

func TestExportPDF(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validation.New(), nil)

	result, err := svc.Export(context.Background(), "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}

func TestExportUnknownFormat(t *testing.T) {
	svc := NewStudentService(&mockStudentRepo{}, validation.New(), nil)

	_, err := svc.Export(context.Background(), "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
