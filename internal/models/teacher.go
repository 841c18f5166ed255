package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Teacher represents a staff member of the teaching faculty. TeacherID is
// the human-readable code (TCH<year><seq>) and never changes once assigned.
type Teacher struct {
	ID              string    `db:"id" json:"id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	FirstName       string    `db:"first_name" json:"first_name"`
	LastName        string    `db:"last_name" json:"last_name"`
	Email           string    `db:"email" json:"email"`
	Phone           string    `db:"phone" json:"phone"`
	Department      string    `db:"department" json:"department"`
	Subjects        string    `db:"subjects" json:"subjects"`
	Qualification   *string   `db:"qualification" json:"qualification,omitempty"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	JoiningDate     time.Time `db:"joining_date" json:"joining_date"`
	Address         *string   `db:"address" json:"address,omitempty"`
	Bio             *string   `db:"bio" json:"bio,omitempty"`
	ProfileImage    *string   `db:"profile_image" json:"profile_image,omitempty"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins the teacher's name parts.
func (t *Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// SubjectList splits the comma-joined subjects column.
func (t *Teacher) SubjectList() []string {
	if t.Subjects == "" {
		return nil
	}
	parts := strings.Split(t.Subjects, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// TeacherFilter captures listing criteria for teachers.
type TeacherFilter struct {
	Department string
	Search     string
	ActiveOnly bool
	Page       int
	PerPage    int
}

// SubjectField accepts either a comma-joined string or a JSON array of
// subject names and stores the comma-joined form.
type SubjectField string

// UnmarshalJSON implements the flexible string-or-list decoding.
func (f *SubjectField) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = SubjectField(single)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*f = SubjectField(strings.Join(list, ","))
	return nil
}

// CreateTeacherRequest is the admin payload for adding faculty.
type CreateTeacherRequest struct {
	FirstName       string       `json:"first_name" validate:"required"`
	LastName        string       `json:"last_name" validate:"required"`
	Email           string       `json:"email" validate:"required,email"`
	Phone           string       `json:"phone" validate:"required,phone"`
	Department      string       `json:"department" validate:"required"`
	Subjects        SubjectField `json:"subjects" validate:"required"`
	Qualification   string       `json:"qualification"`
	ExperienceYears int          `json:"experience_years"`
	JoiningDate     string       `json:"joining_date"`
	Address         string       `json:"address"`
	Bio             string       `json:"bio"`
	ProfileImage    string       `json:"profile_image"`
	IsActive        *bool        `json:"is_active"`
}

// UpdateTeacherRequest patches only the fields present in the payload.
type UpdateTeacherRequest struct {
	FirstName       *string       `json:"first_name"`
	LastName        *string       `json:"last_name"`
	Email           *string       `json:"email"`
	Phone           *string       `json:"phone"`
	Department      *string       `json:"department"`
	Subjects        *SubjectField `json:"subjects"`
	Qualification   *string       `json:"qualification"`
	ExperienceYears *int          `json:"experience_years"`
	JoiningDate     *string       `json:"joining_date"`
	Address         *string       `json:"address"`
	Bio             *string       `json:"bio"`
	ProfileImage    *string       `json:"profile_image"`
	IsActive        *bool         `json:"is_active"`
}
