package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/repository"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
)

// StudentRepository is the enrollment store used by the student service.
type StudentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	LastCode(ctx context.Context, prefix string) (string, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// Export formats accepted by the roster export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportResult bundles rendered bytes with their transport metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// StudentService manages the enrolled student directory.
type StudentService struct {
	repo      StudentRepository
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo StudentRepository, v *validator.Validate, logger *zap.Logger) *StudentService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		validator: v,
		logger:    logger,
	}
}

// List returns students matching the filter with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, models.NewPagination(total, filter.Page, filter.PerPage), nil
}

// Get fetches one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Create enrolls a student directly, allocating the next sequential code.
func (s *StudentService) Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	dob, err := parseDate(req.DateOfBirth, "date_of_birth")
	if err != nil {
		return nil, err
	}
	enrollment := time.Now().UTC()
	if req.EnrollmentDate != "" {
		if enrollment, err = parseDate(req.EnrollmentDate, "enrollment_date"); err != nil {
			return nil, err
		}
	}
	status := models.StudentActive
	if req.Status != "" {
		if status, err = parseStudentStatus(req.Status); err != nil {
			return nil, err
		}
	}

	student := &models.Student{
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:            optional(req.Phone),
		DateOfBirth:      dob,
		Gender:           strings.TrimSpace(req.Gender),
		Address:          optional(req.Address),
		EnrollmentDate:   enrollment,
		GradeLevel:       strings.TrimSpace(req.GradeLevel),
		Section:          optional(req.Section),
		ParentName:       strings.TrimSpace(req.ParentName),
		ParentPhone:      strings.TrimSpace(req.ParentPhone),
		ParentEmail:      optionalLower(req.ParentEmail),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		EmergencyPhone:   strings.TrimSpace(req.EmergencyPhone),
		MedicalNotes:     optional(req.MedicalNotes),
		Status:           status,
	}
	if student.EmergencyContact == "" {
		student.EmergencyContact = student.ParentName
	}
	if student.EmergencyPhone == "" {
		student.EmergencyPhone = student.ParentPhone
	}

	for attempt := 1; ; attempt++ {
		year := currentYear()
		last, err := s.repo.LastCode(ctx, yearPrefix(StudentCodePrefix, year))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to allocate student code")
		}
		student.StudentID = nextCode(StudentCodePrefix, year, last)
		student.ID = ""

		err = s.repo.Create(ctx, student)
		if err == nil {
			break
		}
		if errors.Is(err, repository.ErrDuplicate) && attempt < codeAllocationAttempts {
			s.logger.Warn("student code collision, retrying",
				zap.String("student_code", student.StudentID),
				zap.Int("attempt", attempt))
			continue
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student created", zap.String("id", student.ID), zap.String("student_id", student.StudentID))
	return student, nil
}

// Update patches the fields present in the payload. The student code is
// never touched.
func (s *StudentService) Update(ctx context.Context, id string, req models.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		student.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		student.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		student.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		student.Phone = optional(*req.Phone)
	}
	if req.DateOfBirth != nil {
		dob, err := parseDate(*req.DateOfBirth, "date_of_birth")
		if err != nil {
			return nil, err
		}
		student.DateOfBirth = dob
	}
	if req.Gender != nil {
		student.Gender = strings.TrimSpace(*req.Gender)
	}
	if req.Address != nil {
		student.Address = optional(*req.Address)
	}
	if req.GradeLevel != nil {
		student.GradeLevel = strings.TrimSpace(*req.GradeLevel)
	}
	if req.Section != nil {
		student.Section = optional(*req.Section)
	}
	if req.ParentName != nil {
		student.ParentName = strings.TrimSpace(*req.ParentName)
	}
	if req.ParentPhone != nil {
		student.ParentPhone = strings.TrimSpace(*req.ParentPhone)
	}
	if req.ParentEmail != nil {
		student.ParentEmail = optionalLower(*req.ParentEmail)
	}
	if req.EmergencyContact != nil {
		student.EmergencyContact = strings.TrimSpace(*req.EmergencyContact)
	}
	if req.EmergencyPhone != nil {
		student.EmergencyPhone = strings.TrimSpace(*req.EmergencyPhone)
	}
	if req.MedicalNotes != nil {
		student.MedicalNotes = optional(*req.MedicalNotes)
	}
	if req.Status != nil {
		status, err := parseStudentStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		student.Status = status
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return student, nil
}

// Delete removes a student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.logger.Info("student deleted", zap.String("id", id))
	return nil
}

var studentExportHeaders = []string{"Student ID", "Name", "Email", "Grade", "Section", "Status", "Enrolled"}

// Export renders the full roster as CSV or PDF.
func (s *StudentService) Export(ctx context.Context, format string) (*ExportResult, error) {
	students, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export students")
	}

	data := export.Dataset{Headers: studentExportHeaders, Rows: make([]map[string]string, 0, len(students))}
	for i := range students {
		st := &students[i]
		section := ""
		if st.Section != nil {
			section = *st.Section
		}
		data.Rows = append(data.Rows, map[string]string{
			"Student ID": st.StudentID,
			"Name":       st.FullName(),
			"Email":      st.Email,
			"Grade":      st.GradeLevel,
			"Section":    section,
			"Status":     string(st.Status),
			"Enrolled":   st.EnrollmentDate.Format(dateLayout),
		})
	}

	stamp := time.Now().UTC().Format("20060102")
	switch format {
	case "", ExportFormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export students")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: fmt.Sprintf("students_%s.csv", stamp)}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(data, "Student Roster")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export students")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: fmt.Sprintf("students_%s.pdf", stamp)}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: use csv or pdf")
	}
}

func parseStudentStatus(value string) (models.StudentStatus, error) {
	status := models.StudentStatus(strings.ToLower(strings.TrimSpace(value)))
	switch status {
	case models.StudentActive, models.StudentInactive, models.StudentGraduated, models.StudentTransferred:
		return status, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid status: must be active, inactive, graduated or transferred")
	}
}
