package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-portal-api/internal/models"
)

// RegistrationRepository manages persistence for student applications.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

const registrationColumns = `id, first_name, last_name, email, phone, date_of_birth, gender, address, parent_name, parent_phone, parent_email, previous_school, grade_applying, emergency_contact, emergency_phone, medical_notes, status, admin_notes, reviewed_by, reviewed_at, created_at, updated_at`

// List returns registrations matching the filter, newest first.
func (r *RegistrationRepository) List(ctx context.Context, filter models.RegistrationFilter) ([]models.Registration, int, error) {
	where := "1=1"
	args := []interface{}{}
	if filter.Status != "" {
		where = fmt.Sprintf("status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}

	limit, offset := pageWindow(filter.Page, filter.PerPage)
	query := fmt.Sprintf("SELECT %s FROM student_registrations WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		registrationColumns, where, limit, offset)

	registrations := []models.Registration{}
	if err := r.db.SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list registrations: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM student_registrations WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}
	return registrations, total, nil
}

// RecentPending returns the newest pending applications, capped at limit.
func (r *RegistrationRepository) RecentPending(ctx context.Context, limit int) ([]models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM student_registrations WHERE status = $1 ORDER BY created_at DESC LIMIT %d",
		registrationColumns, limit)
	registrations := []models.Registration{}
	if err := r.db.SelectContext(ctx, &registrations, query, models.RegistrationPending); err != nil {
		return nil, fmt.Errorf("recent pending registrations: %w", err)
	}
	return registrations, nil
}

// CountByStatus counts registrations in the given state.
func (r *RegistrationRepository) CountByStatus(ctx context.Context, status models.RegistrationStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM student_registrations WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// FindByID fetches a registration by primary key.
func (r *RegistrationRepository) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM student_registrations WHERE id = $1", registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, id); err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindLatestByEmail fetches the most recent application for an email.
func (r *RegistrationRepository) FindLatestByEmail(ctx context.Context, email string) (*models.Registration, error) {
	query := fmt.Sprintf("SELECT %s FROM student_registrations WHERE email = $1 ORDER BY created_at DESC LIMIT 1", registrationColumns)
	var registration models.Registration
	if err := r.db.GetContext(ctx, &registration, query, email); err != nil {
		return nil, err
	}
	return &registration, nil
}

// HasPendingWithEmail reports whether a pending application already holds
// the email. Plain lookup, not a constraint: concurrent submissions with
// the same email can still both pass.
func (r *RegistrationRepository) HasPendingWithEmail(ctx context.Context, email string) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, "SELECT 1 FROM student_registrations WHERE email = $1 AND status = $2 LIMIT 1",
		email, models.RegistrationPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check pending registration: %w", err)
	}
	return true, nil
}

// Create inserts a new pending application.
func (r *RegistrationRepository) Create(ctx context.Context, registration *models.Registration) error {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if registration.CreatedAt.IsZero() {
		registration.CreatedAt = now
	}
	registration.UpdatedAt = now
	const query = `INSERT INTO student_registrations (id, first_name, last_name, email, phone, date_of_birth, gender, address, parent_name, parent_phone, parent_email, previous_school, grade_applying, emergency_contact, emergency_phone, medical_notes, status, admin_notes, reviewed_by, reviewed_at, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :phone, :date_of_birth, :gender, :address, :parent_name, :parent_phone, :parent_email, :previous_school, :grade_applying, :emergency_contact, :emergency_phone, :medical_notes, :status, :admin_notes, :reviewed_by, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, registration); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

const updateReviewQuery = `UPDATE student_registrations SET status = :status, admin_notes = :admin_notes, reviewed_by = :reviewed_by, reviewed_at = :reviewed_at, updated_at = :updated_at WHERE id = :id AND status = :prev_status`

type reviewRow struct {
	models.Registration
	PrevStatus models.RegistrationStatus `db:"prev_status"`
}

// Approve commits the enrollment: the new student row and the registration
// state flip happen in one transaction, so either both land or neither
// does. The UPDATE re-checks the pending status so a concurrent decision
// on the same registration rolls the whole unit back.
func (r *RegistrationRepository) Approve(ctx context.Context, registration *models.Registration, student *models.Student) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve tx: %w", err)
	}

	if err := insertStudentTx(ctx, tx, student); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}

	if err := r.reviewTx(ctx, tx, registration); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve tx: %w", err)
	}
	return nil
}

// Reject marks a pending registration as rejected.
func (r *RegistrationRepository) Reject(ctx context.Context, registration *models.Registration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reject tx: %w", err)
	}
	if err := r.reviewTx(ctx, tx, registration); err != nil {
		tx.Rollback() //nolint:errcheck
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reject tx: %w", err)
	}
	return nil
}

func (r *RegistrationRepository) reviewTx(ctx context.Context, tx *sqlx.Tx, registration *models.Registration) error {
	registration.UpdatedAt = time.Now().UTC()
	row := reviewRow{Registration: *registration, PrevStatus: models.RegistrationPending}
	result, err := tx.NamedExecContext(ctx, updateReviewQuery, row)
	if err != nil {
		return fmt.Errorf("update registration status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
