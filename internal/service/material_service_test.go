package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/validation"
)

type mockMaterialRepo struct {
	materials    map[string]models.Material
	increments   []string
	incrementErr error
}

func (m *mockMaterialRepo) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error) {
	var out []models.Material
	for _, mat := range m.materials {
		if filter.PublicOnly && !mat.IsPublic {
			continue
		}
		out = append(out, mat)
	}
	return out, len(out), nil
}

func (m *mockMaterialRepo) FindByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.materials[id]; ok {
		return &mat, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMaterialRepo) FindPublicByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.materials[id]; ok && mat.IsPublic {
		return &mat, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockMaterialRepo) IncrementViewCount(ctx context.Context, id string) error {
	if m.incrementErr != nil {
		return m.incrementErr
	}
	if mat, ok := m.materials[id]; ok {
		mat.ViewCount++
		m.materials[id] = mat
	}
	m.increments = append(m.increments, id)
	return nil
}

func (m *mockMaterialRepo) FilterOptions(ctx context.Context, publicOnly bool) (*models.MaterialFilterOptions, error) {
	return &models.MaterialFilterOptions{Subjects: []string{"Math"}}, nil
}

func (m *mockMaterialRepo) Create(ctx context.Context, material *models.Material) error {
	if m.materials == nil {
		m.materials = make(map[string]models.Material)
	}
	if material.ID == "" {
		material.ID = "material-new"
	}
	m.materials[material.ID] = *material
	return nil
}

func (m *mockMaterialRepo) Update(ctx context.Context, material *models.Material) error {
	m.materials[material.ID] = *material
	return nil
}

func (m *mockMaterialRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.materials[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.materials, id)
	return nil
}

func TestGetPublicCountsView(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]models.Material{
		"material-1": {ID: "material-1", Title: "Algebra Basics", IsPublic: true, ViewCount: 4},
	}}
	svc := NewMaterialService(repo, validation.New(), nil)

	material, err := svc.GetPublic(context.Background(), "material-1")
	require.NoError(t, err)

	assert.Equal(t, 5, material.ViewCount)
	assert.Equal(t, []string{"material-1"}, repo.increments)
	assert.Equal(t, 5, repo.materials["material-1"].ViewCount)
}

func TestGetPublicHidesPrivateMaterial(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]models.Material{
		"material-1": {ID: "material-1", IsPublic: false},
	}}
	svc := NewMaterialService(repo, validation.New(), nil)

	_, err := svc.GetPublic(context.Background(), "material-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.increments)
}

func TestGetPublicSurvivesCounterFailure(t *testing.T) {
	repo := &mockMaterialRepo{
		materials: map[string]models.Material{
			"material-1": {ID: "material-1", IsPublic: true, ViewCount: 4},
		},
		incrementErr: sql.ErrConnDone,
	}
	svc := NewMaterialService(repo, validation.New(), nil)

	material, err := svc.GetPublic(context.Background(), "material-1")
	require.NoError(t, err)
	assert.Equal(t, 4, material.ViewCount)
}

func TestCreateMaterialDefaultsPublic(t *testing.T) {
	repo := &mockMaterialRepo{}
	svc := NewMaterialService(repo, validation.New(), nil)

	material, err := svc.Create(context.Background(), "admin-1", models.CreateMaterialRequest{
		Title:        "Algebra Basics",
		Subject:      "Math",
		GradeLevel:   "9",
		MaterialType: "ebook",
	})
	require.NoError(t, err)

	assert.True(t, material.IsPublic)
	require.NotNil(t, material.UploadedBy)
	assert.Equal(t, "admin-1", *material.UploadedBy)
}

func TestAdminListIncludesPrivateMaterials(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]models.Material{
		"material-1": {ID: "material-1", IsPublic: true},
		"material-2": {ID: "material-2", IsPublic: false},
	}}
	svc := NewMaterialService(repo, validation.New(), nil)

	all, _, err := svc.List(context.Background(), models.MaterialFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, _, err := svc.List(context.Background(), models.MaterialFilter{PublicOnly: true})
	require.NoError(t, err)
	assert.Len(t, public, 1)
}
