package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

type mockTeacherRepo struct {
	teachers map[string]models.Teacher
	last     string
	deleted  []string
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	var out []models.Teacher
	for _, t := range m.teachers {
		if filter.ActiveOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) FindActiveByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := m.teachers[id]; ok && t.IsActive {
		return &t, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) Departments(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, t := range m.teachers {
		if t.IsActive && !seen[t.Department] {
			seen[t.Department] = true
			out = append(out, t.Department)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) LastCode(ctx context.Context, prefix string) (string, error) {
	return m.last, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.teachers == nil {
		m.teachers = make(map[string]models.Teacher)
	}
	if teacher.ID == "" {
		teacher.ID = "teacher-new"
	}
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	m.teachers[teacher.ID] = *teacher
	return nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.teachers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.teachers, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCreateTeacherAllocatesCode(t *testing.T) {
	withFixedYear(t, 2026)
	repo := &mockTeacherRepo{last: "TCH202600003"}
	svc := NewTeacherService(repo, validation.New(), nil)

	teacher, err := svc.Create(context.Background(), models.CreateTeacherRequest{
		FirstName:  "Sari",
		LastName:   "Wijaya",
		Email:      "Sari@School.edu",
		Phone:      "0812345678",
		Department: "Science",
		Subjects:   "Physics,Chemistry",
	})
	require.NoError(t, err)

	assert.Equal(t, "TCH202600004", teacher.TeacherID)
	assert.Equal(t, "sari@school.edu", teacher.Email)
	assert.True(t, teacher.IsActive)
	assert.Equal(t, []string{"Physics", "Chemistry"}, teacher.SubjectList())
}

func TestSubjectFieldAcceptsStringAndList(t *testing.T) {
	var req models.CreateTeacherRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subjects": "Math, Algebra"}`), &req))
	assert.Equal(t, models.SubjectField("Math, Algebra"), req.Subjects)

	require.NoError(t, json.Unmarshal([]byte(`{"subjects": ["Math", "Algebra"]}`), &req))
	assert.Equal(t, models.SubjectField("Math,Algebra"), req.Subjects)
}

func TestGetPublicHidesInactiveTeacher(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"teacher-1": {ID: "teacher-1", FirstName: "Sari", IsActive: false},
	}}
	svc := NewTeacherService(repo, validation.New(), nil)

	_, err := svc.GetPublic(context.Background(), "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	teacher, err := svc.Get(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, "Sari", teacher.FirstName)
}

func TestListPublicFiltersInactive(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"teacher-1": {ID: "teacher-1", IsActive: true, Department: "Science"},
		"teacher-2": {ID: "teacher-2", IsActive: false, Department: "Arts"},
	}}
	svc := NewTeacherService(repo, validation.New(), nil)

	teachers, _, err := svc.List(context.Background(), models.TeacherFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "teacher-1", teachers[0].ID)
}

func TestDeleteTeacher(t *testing.T) {
	repo := &mockTeacherRepo{teachers: map[string]models.Teacher{
		"teacher-1": {ID: "teacher-1", IsActive: true},
	}}
	svc := NewTeacherService(repo, validation.New(), nil)

	require.NoError(t, svc.Delete(context.Background(), "teacher-1"))
	assert.Equal(t, []string{"teacher-1"}, repo.deleted)

	err := svc.Delete(context.Background(), "teacher-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
