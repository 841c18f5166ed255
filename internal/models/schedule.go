package models

import "time"

// DaysOfWeek is the fixed Monday-first ordering used for timetable sorting.
var DaysOfWeek = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Schedule is a recurring timetable slot. Start/end are wall-clock HH:MM
// strings; no start < end relation is enforced.
type Schedule struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Subject        string     `db:"subject" json:"subject"`
	GradeLevel     string     `db:"grade_level" json:"grade_level"`
	Section        *string    `db:"section" json:"section,omitempty"`
	DayOfWeek      string     `db:"day_of_week" json:"day_of_week"`
	StartTime      string     `db:"start_time" json:"start_time"`
	EndTime        string     `db:"end_time" json:"end_time"`
	Room           *string    `db:"room" json:"room,omitempty"`
	TeacherID      *string    `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName    *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	Description    *string    `db:"description" json:"description,omitempty"`
	IsRecurring    bool       `db:"is_recurring" json:"is_recurring"`
	EffectiveFrom  time.Time  `db:"effective_from" json:"effective_from"`
	EffectiveUntil *time.Time `db:"effective_until" json:"effective_until,omitempty"`
	CreatedBy      *string    `db:"created_by" json:"created_by,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduleFilter captures listing criteria for schedules. ByTimetable
// orders results weekday-first (Monday..Sunday) then by start time; the
// default ordering is newest first.
type ScheduleFilter struct {
	GradeLevel  string
	Section     string
	Day         string
	ByTimetable bool
	Page        int
	PerPage     int
}

// ScheduleFilterOptions lists the distinct values usable as filters.
type ScheduleFilterOptions struct {
	GradeLevels []string `json:"grade_levels"`
	Sections    []string `json:"sections"`
	Days        []string `json:"days"`
}

// CreateScheduleRequest is the admin payload for adding a timetable slot.
type CreateScheduleRequest struct {
	Title          string `json:"title" validate:"required"`
	Subject        string `json:"subject" validate:"required"`
	GradeLevel     string `json:"grade_level" validate:"required"`
	Section        string `json:"section"`
	DayOfWeek      string `json:"day_of_week" validate:"required"`
	StartTime      string `json:"start_time" validate:"required"`
	EndTime        string `json:"end_time" validate:"required"`
	Room           string `json:"room"`
	TeacherID      string `json:"teacher_id"`
	Description    string `json:"description"`
	IsRecurring    *bool  `json:"is_recurring"`
	EffectiveFrom  string `json:"effective_from" validate:"required"`
	EffectiveUntil string `json:"effective_until"`
}

// UpdateScheduleRequest patches only the fields present in the payload.
type UpdateScheduleRequest struct {
	Title          *string `json:"title"`
	Subject        *string `json:"subject"`
	GradeLevel     *string `json:"grade_level"`
	Section        *string `json:"section"`
	DayOfWeek      *string `json:"day_of_week"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Room           *string `json:"room"`
	TeacherID      *string `json:"teacher_id"`
	Description    *string `json:"description"`
	IsRecurring    *bool   `json:"is_recurring"`
	EffectiveFrom  *string `json:"effective_from"`
	EffectiveUntil *string `json:"effective_until"`
}
