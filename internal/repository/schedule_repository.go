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

// ScheduleRepository manages persistence for timetable slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `s.id, s.title, s.subject, s.grade_level, s.section, s.day_of_week, s.start_time, s.end_time, s.room, s.teacher_id, t.first_name || ' ' || t.last_name AS teacher_name, s.description, s.is_recurring, s.effective_from, s.effective_until, s.created_by, s.created_at, s.updated_at`

// weekdayOrder is the fixed Monday-first CASE used for timetable sorting.
const weekdayOrder = `CASE s.day_of_week
        WHEN 'Monday' THEN 1
        WHEN 'Tuesday' THEN 2
        WHEN 'Wednesday' THEN 3
        WHEN 'Thursday' THEN 4
        WHEN 'Friday' THEN 5
        WHEN 'Saturday' THEN 6
        WHEN 'Sunday' THEN 7
        ELSE 8 END`

// List returns schedules matching the filter. ByTimetable orders
// weekday-then-start-time; otherwise newest first.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("s.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("s.section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Day != "" {
		conditions = append(conditions, fmt.Sprintf("s.day_of_week = $%d", len(args)+1))
		args = append(args, filter.Day)
	}

	where := strings.Join(conditions, " AND ")
	orderBy := "s.created_at DESC"
	if filter.ByTimetable {
		orderBy = weekdayOrder + ", s.start_time"
	}

	limit, offset := pageWindow(filter.Page, filter.PerPage)
	query := fmt.Sprintf(`SELECT %s FROM schedules s LEFT JOIN teachers t ON t.id = s.teacher_id WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		scheduleColumns, where, orderBy, limit, offset)

	schedules := []models.Schedule{}
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM schedules s WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}
	return schedules, total, nil
}

// Count returns the total number of schedule rows.
func (r *ScheduleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM schedules"); err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

// FindByID fetches a schedule by primary key.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := fmt.Sprintf("SELECT %s FROM schedules s LEFT JOIN teachers t ON t.id = s.teacher_id WHERE s.id = $1", scheduleColumns)
	var schedule models.Schedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FilterOptions returns the distinct filterable values across schedules.
func (r *ScheduleRepository) FilterOptions(ctx context.Context) (*models.ScheduleFilterOptions, error) {
	options := &models.ScheduleFilterOptions{
		Days:        models.DaysOfWeek,
		GradeLevels: []string{},
		Sections:    []string{},
	}

	if err := r.db.SelectContext(ctx, &options.GradeLevels,
		"SELECT DISTINCT grade_level FROM schedules WHERE grade_level <> '' ORDER BY grade_level"); err != nil {
		return nil, fmt.Errorf("schedule filter options (grade_level): %w", err)
	}
	if err := r.db.SelectContext(ctx, &options.Sections,
		"SELECT DISTINCT section FROM schedules WHERE section IS NOT NULL AND section <> '' ORDER BY section"); err != nil {
		return nil, fmt.Errorf("schedule filter options (section): %w", err)
	}
	return options, nil
}

// Create inserts a new schedule record.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now
	const query = `INSERT INTO schedules (id, title, subject, grade_level, section, day_of_week, start_time, end_time, room, teacher_id, description, is_recurring, effective_from, effective_until, created_by, created_at, updated_at)
        VALUES (:id, :title, :subject, :grade_level, :section, :day_of_week, :start_time, :end_time, :room, :teacher_id, :description, :is_recurring, :effective_from, :effective_until, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule.
func (r *ScheduleRepository) Update(ctx context.Context, schedule *models.Schedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET title = :title, subject = :subject, grade_level = :grade_level, section = :section, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time, room = :room, teacher_id = :teacher_id, description = :description, is_recurring = :is_recurring, effective_from = :effective_from, effective_until = :effective_until, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule outright.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM schedules WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
