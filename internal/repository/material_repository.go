package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// MaterialRepository manages persistence for learning resources.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs a MaterialRepository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

const materialColumns = `id, title, description, subject, grade_level, material_type, file_url, external_link, file_size, file_format, author, publisher, is_public, download_count, view_count, uploaded_by, created_at, updated_at`

// List returns materials matching the filter, newest first.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.PublicOnly {
		conditions = append(conditions, "is_public = true")
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("material_type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(COALESCE(description, '')) LIKE $%d OR LOWER(COALESCE(author, '')) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PerPage)
	query := fmt.Sprintf("SELECT %s FROM materials WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		materialColumns, where, limit, offset)

	materials := []models.Material{}
	if err := r.db.SelectContext(ctx, &materials, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM materials WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}
	return materials, total, nil
}

// CountPublic counts publicly visible materials.
func (r *MaterialRepository) CountPublic(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM materials WHERE is_public = true"); err != nil {
		return 0, fmt.Errorf("count materials: %w", err)
	}
	return count, nil
}

// FindByID fetches a material by primary key.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf("SELECT %s FROM materials WHERE id = $1", materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// FindPublicByID fetches a publicly visible material.
func (r *MaterialRepository) FindPublicByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf("SELECT %s FROM materials WHERE id = $1 AND is_public = true", materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// IncrementViewCount bumps the monotonic view counter.
func (r *MaterialRepository) IncrementViewCount(ctx context.Context, id string) error {
	const query = `UPDATE materials SET view_count = view_count + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// FilterOptions returns the distinct filterable values across materials.
func (r *MaterialRepository) FilterOptions(ctx context.Context, publicOnly bool) (*models.MaterialFilterOptions, error) {
	where := "1=1"
	if publicOnly {
		where = "is_public = true"
	}

	options := &models.MaterialFilterOptions{
		Subjects:    []string{},
		GradeLevels: []string{},
		Types:       []string{},
	}
	queries := []struct {
		column string
		dest   *[]string
	}{
		{"subject", &options.Subjects},
		{"grade_level", &options.GradeLevels},
		{"material_type", &options.Types},
	}
	for _, q := range queries {
		query := fmt.Sprintf("SELECT DISTINCT %s FROM materials WHERE %s AND %s <> '' ORDER BY %s", q.column, where, q.column, q.column)
		if err := r.db.SelectContext(ctx, q.dest, query); err != nil {
			return nil, fmt.Errorf("material filter options (%s): %w", q.column, err)
		}
	}
	return options, nil
}

// Create inserts a new material record.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if material.CreatedAt.IsZero() {
		material.CreatedAt = now
	}
	material.UpdatedAt = now
	const query = `INSERT INTO materials (id, title, description, subject, grade_level, material_type, file_url, external_link, file_size, file_format, author, publisher, is_public, download_count, view_count, uploaded_by, created_at, updated_at)
        VALUES (:id, :title, :description, :subject, :grade_level, :material_type, :file_url, :external_link, :file_size, :file_format, :author, :publisher, :is_public, :download_count, :view_count, :uploaded_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Update modifies an existing material.
func (r *MaterialRepository) Update(ctx context.Context, material *models.Material) error {
	material.UpdatedAt = time.Now().UTC()
	const query = `UPDATE materials SET title = :title, description = :description, subject = :subject, grade_level = :grade_level, material_type = :material_type, file_url = :file_url, external_link = :external_link, file_size = :file_size, file_format = :file_format, author = :author, publisher = :publisher, is_public = :is_public, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("update material: %w", err)
	}
	return nil
}

// Delete removes a material outright.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM materials WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
