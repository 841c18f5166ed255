package models

import "time"

// RegistrationStatus enumerates the approval workflow states.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Registration is a prospective student's application awaiting review.
// Pending is the only non-terminal state; once approved or rejected the row
// is never mutated again.
type Registration struct {
	ID               string             `db:"id" json:"id"`
	FirstName        string             `db:"first_name" json:"first_name"`
	LastName         string             `db:"last_name" json:"last_name"`
	Email            string             `db:"email" json:"email"`
	Phone            string             `db:"phone" json:"phone"`
	DateOfBirth      time.Time          `db:"date_of_birth" json:"date_of_birth"`
	Gender           string             `db:"gender" json:"gender"`
	Address          string             `db:"address" json:"address"`
	ParentName       string             `db:"parent_name" json:"parent_name"`
	ParentPhone      string             `db:"parent_phone" json:"parent_phone"`
	ParentEmail      *string            `db:"parent_email" json:"parent_email,omitempty"`
	PreviousSchool   *string            `db:"previous_school" json:"previous_school,omitempty"`
	GradeApplying    string             `db:"grade_applying" json:"grade_applying"`
	EmergencyContact string             `db:"emergency_contact" json:"emergency_contact"`
	EmergencyPhone   string             `db:"emergency_phone" json:"emergency_phone"`
	MedicalNotes     *string            `db:"medical_notes" json:"medical_notes,omitempty"`
	Status           RegistrationStatus `db:"status" json:"status"`
	AdminNotes       *string            `db:"admin_notes" json:"admin_notes,omitempty"`
	ReviewedBy       *string            `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time         `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt        time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `db:"updated_at" json:"updated_at"`
}

// FullName joins the applicant's name parts.
func (r *Registration) FullName() string {
	return r.FirstName + " " + r.LastName
}

// RegistrationFilter captures listing criteria for registrations.
type RegistrationFilter struct {
	Status  RegistrationStatus
	Page    int
	PerPage int
}

// SubmitRegistrationRequest is the public application payload.
type SubmitRegistrationRequest struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required,phone"`
	DateOfBirth      string `json:"date_of_birth" validate:"required"`
	Gender           string `json:"gender" validate:"required"`
	Address          string `json:"address" validate:"required"`
	ParentName       string `json:"parent_name" validate:"required"`
	ParentPhone      string `json:"parent_phone" validate:"required,phone"`
	ParentEmail      string `json:"parent_email" validate:"omitempty,email"`
	PreviousSchool   string `json:"previous_school"`
	GradeApplying    string `json:"grade_applying" validate:"required"`
	EmergencyContact string `json:"emergency_contact" validate:"required"`
	EmergencyPhone   string `json:"emergency_phone" validate:"required,phone"`
	MedicalNotes     string `json:"medical_notes"`
}

// ReviewRegistrationRequest carries the admin decision payload. All fields
// are optional overrides.
type ReviewRegistrationRequest struct {
	GradeLevel string `json:"grade_level"`
	Section    string `json:"section"`
	AdminNotes string `json:"admin_notes"`
}

// RegistrationStatusInfo is the public status-check projection.
type RegistrationStatusInfo struct {
	Status      RegistrationStatus `json:"status"`
	SubmittedAt time.Time          `json:"submitted_at"`
	ReviewedAt  *time.Time         `json:"reviewed_at,omitempty"`
	AdminNotes  *string            `json:"admin_notes,omitempty"`
}

// ApprovalResult bundles the two records touched by an approval.
type ApprovalResult struct {
	Registration *Registration `json:"registration"`
	Student      *Student      `json:"student"`
}
