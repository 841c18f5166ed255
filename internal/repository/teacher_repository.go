package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// TeacherRepository manages persistence for faculty records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherColumns = `id, teacher_id, first_name, last_name, email, phone, department, subjects, qualification, experience_years, joining_date, address, bio, profile_image, is_active, created_at, updated_at`

// List returns teachers matching the filter, ordered by last name.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}
	if filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", len(args)+1))
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(subjects) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PerPage)
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE %s ORDER BY last_name, first_name LIMIT %d OFFSET %d",
		teacherColumns, where, limit, offset)

	teachers := []models.Teacher{}
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM teachers WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// CountActive counts active teachers.
func (r *TeacherRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM teachers WHERE is_active = true"); err != nil {
		return 0, fmt.Errorf("count teachers: %w", err)
	}
	return count, nil
}

// FindByID fetches a teacher by primary key.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindActiveByID fetches an active teacher, for the public view.
func (r *TeacherRepository) FindActiveByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf("SELECT %s FROM teachers WHERE id = $1 AND is_active = true", teacherColumns)
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Departments returns the distinct departments of active teachers.
func (r *TeacherRepository) Departments(ctx context.Context) ([]string, error) {
	departments := []string{}
	err := r.db.SelectContext(ctx, &departments,
		"SELECT DISTINCT department FROM teachers WHERE is_active = true AND department <> '' ORDER BY department")
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// LastCode returns the lexicographically greatest teacher code sharing the
// prefix, or empty when none exists yet.
func (r *TeacherRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.db.GetContext(ctx, &code,
		"SELECT teacher_id FROM teachers WHERE teacher_id LIKE $1 ORDER BY teacher_id DESC LIMIT 1", prefix+"%")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last teacher code: %w", err)
	}
	return code, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, teacher_id, first_name, last_name, email, phone, department, subjects, qualification, experience_years, joining_date, address, bio, profile_image, is_active, created_at, updated_at)
        VALUES (:id, :teacher_id, :first_name, :last_name, :email, :phone, :department, :subjects, :qualification, :experience_years, :joining_date, :address, :bio, :profile_image, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create teacher: %w", ErrDuplicate)
		}
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies an existing teacher. The teacher code is never written.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, department = :department, subjects = :subjects, qualification = :qualification, experience_years = :experience_years, joining_date = :joining_date, address = :address, bio = :bio, profile_image = :profile_image, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update teacher: %w", ErrDuplicate)
		}
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// Delete removes a teacher and detaches any schedules that reference it,
// in one transaction, so no schedule is left pointing at a missing row.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete teacher tx: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE schedules SET teacher_id = NULL, updated_at = $2 WHERE teacher_id = $1", id, time.Now().UTC()); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("detach schedules: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM teachers WHERE id = $1", id)
	if err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("delete teacher: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		tx.Rollback() //nolint:errcheck
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete teacher: %w", err)
	}
	return nil
}
