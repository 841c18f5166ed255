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

// StudentRepository manages persistence for enrolled students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, student_id, first_name, last_name, email, phone, date_of_birth, gender, address, enrollment_date, grade_level, section, parent_name, parent_phone, parent_email, emergency_contact, emergency_phone, medical_notes, status, registration_id, created_at, updated_at`

// List returns students matching the filter, ordered by last name.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Grade != "" {
		conditions = append(conditions, fmt.Sprintf("grade_level = $%d", len(args)+1))
		args = append(args, filter.Grade)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR LOWER(student_id) LIKE $%d OR LOWER(email) LIKE $%d)", n, n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")
	limit, offset := pageWindow(filter.Page, filter.PerPage)
	query := fmt.Sprintf("SELECT %s FROM students WHERE %s ORDER BY last_name, first_name LIMIT %d OFFSET %d",
		studentColumns, where, limit, offset)

	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student ordered by student code, for exports.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students ORDER BY student_id", studentColumns)
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// CountByStatus counts students in the given enrollment state.
func (r *StudentRepository) CountByStatus(ctx context.Context, status models.StudentStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// FindByID fetches a student by primary key.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// LastCode returns the lexicographically greatest student code sharing the
// prefix, or empty when none exists yet.
func (r *StudentRepository) LastCode(ctx context.Context, prefix string) (string, error) {
	var code string
	err := r.db.GetContext(ctx, &code,
		"SELECT student_id FROM students WHERE student_id LIKE $1 ORDER BY student_id DESC LIMIT 1", prefix+"%")
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("last student code: %w", err)
	}
	return code, nil
}

const insertStudentQuery = `INSERT INTO students (id, student_id, first_name, last_name, email, phone, date_of_birth, gender, address, enrollment_date, grade_level, section, parent_name, parent_phone, parent_email, emergency_contact, emergency_phone, medical_notes, status, registration_id, created_at, updated_at)
        VALUES (:id, :student_id, :first_name, :last_name, :email, :phone, :date_of_birth, :gender, :address, :enrollment_date, :grade_level, :section, :parent_name, :parent_phone, :parent_email, :emergency_contact, :emergency_phone, :medical_notes, :status, :registration_id, :created_at, :updated_at)`

func insertStudentTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	prepareStudentInsert(student)
	if _, err := tx.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert student: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert student: %w", err)
	}
	return nil
}

func prepareStudentInsert(student *models.Student) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	prepareStudentInsert(student)
	if _, err := r.db.NamedExecContext(ctx, insertStudentQuery, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create student: %w", ErrDuplicate)
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student. The student code is never written.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, phone = :phone, date_of_birth = :date_of_birth, gender = :gender, address = :address, grade_level = :grade_level, section = :section, parent_name = :parent_name, parent_phone = :parent_phone, parent_email = :parent_email, emergency_contact = :emergency_contact, emergency_phone = :emergency_phone, medical_notes = :medical_notes, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("update student: %w", ErrDuplicate)
		}
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student outright.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
