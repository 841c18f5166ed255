package models

import "time"

// StudentStatus enumerates enrollment states.
type StudentStatus string

const (
	StudentActive      StudentStatus = "active"
	StudentInactive    StudentStatus = "inactive"
	StudentGraduated   StudentStatus = "graduated"
	StudentTransferred StudentStatus = "transferred"
)

// Student represents an enrolled learner. StudentID is the human-readable
// code (STD<year><seq>) and never changes once assigned.
type Student struct {
	ID               string        `db:"id" json:"id"`
	StudentID        string        `db:"student_id" json:"student_id"`
	FirstName        string        `db:"first_name" json:"first_name"`
	LastName         string        `db:"last_name" json:"last_name"`
	Email            string        `db:"email" json:"email"`
	Phone            *string       `db:"phone" json:"phone,omitempty"`
	DateOfBirth      time.Time     `db:"date_of_birth" json:"date_of_birth"`
	Gender           string        `db:"gender" json:"gender"`
	Address          *string       `db:"address" json:"address,omitempty"`
	EnrollmentDate   time.Time     `db:"enrollment_date" json:"enrollment_date"`
	GradeLevel       string        `db:"grade_level" json:"grade_level"`
	Section          *string       `db:"section" json:"section,omitempty"`
	ParentName       string        `db:"parent_name" json:"parent_name"`
	ParentPhone      string        `db:"parent_phone" json:"parent_phone"`
	ParentEmail      *string       `db:"parent_email" json:"parent_email,omitempty"`
	EmergencyContact string        `db:"emergency_contact" json:"emergency_contact"`
	EmergencyPhone   string        `db:"emergency_phone" json:"emergency_phone"`
	MedicalNotes     *string       `db:"medical_notes" json:"medical_notes,omitempty"`
	Status           StudentStatus `db:"status" json:"status"`
	RegistrationID   *string       `db:"registration_id" json:"registration_id,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// FullName joins the student's name parts.
func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// StudentFilter captures listing criteria for students.
type StudentFilter struct {
	Status  StudentStatus
	Grade   string
	Search  string
	Page    int
	PerPage int
}

// CreateStudentRequest is the direct admin enrollment payload.
type CreateStudentRequest struct {
	FirstName        string `json:"first_name" validate:"required"`
	LastName         string `json:"last_name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"omitempty,phone"`
	DateOfBirth      string `json:"date_of_birth" validate:"required"`
	Gender           string `json:"gender" validate:"required"`
	Address          string `json:"address"`
	EnrollmentDate   string `json:"enrollment_date"`
	GradeLevel       string `json:"grade_level" validate:"required"`
	Section          string `json:"section"`
	ParentName       string `json:"parent_name" validate:"required"`
	ParentPhone      string `json:"parent_phone" validate:"required,phone"`
	ParentEmail      string `json:"parent_email" validate:"omitempty,email"`
	EmergencyContact string `json:"emergency_contact"`
	EmergencyPhone   string `json:"emergency_phone" validate:"omitempty,phone"`
	MedicalNotes     string `json:"medical_notes"`
	Status           string `json:"status"`
}

// UpdateStudentRequest patches only the fields present in the payload.
// StudentID is deliberately absent: the code is immutable.
type UpdateStudentRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	Phone            *string `json:"phone"`
	DateOfBirth      *string `json:"date_of_birth"`
	Gender           *string `json:"gender"`
	Address          *string `json:"address"`
	GradeLevel       *string `json:"grade_level"`
	Section          *string `json:"section"`
	ParentName       *string `json:"parent_name"`
	ParentPhone      *string `json:"parent_phone"`
	ParentEmail      *string `json:"parent_email"`
	EmergencyContact *string `json:"emergency_contact"`
	EmergencyPhone   *string `json:"emergency_phone"`
	MedicalNotes     *string `json:"medical_notes"`
	Status           *string `json:"status"`
}
