package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func reviewedRegistration() *models.Registration {
	now := time.Now().UTC()
	reviewer := "admin-1"
	return &models.Registration{
		ID:               "reg-1",
		FirstName:        "Amina",
		LastName:         "Yusuf",
		Email:            "amina@example.com",
		Phone:            "0812345678",
		DateOfBirth:      time.Date(2010, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:           "female",
		Address:          "12 Harbor Road",
		ParentName:       "Hassan Yusuf",
		ParentPhone:      "0811222333",
		GradeApplying:    "10",
		EmergencyContact: "Hassan Yusuf",
		EmergencyPhone:   "0811222333",
		Status:           models.RegistrationApproved,
		ReviewedBy:       &reviewer,
		ReviewedAt:       &now,
	}
}

func approvedStudent() *models.Student {
	regID := "reg-1"
	return &models.Student{
		StudentID:        "STD202600001",
		FirstName:        "Amina",
		LastName:         "Yusuf",
		Email:            "amina@example.com",
		DateOfBirth:      time.Date(2010, 4, 12, 0, 0, 0, 0, time.UTC),
		Gender:           "female",
		EnrollmentDate:   time.Now().UTC(),
		GradeLevel:       "10",
		ParentName:       "Hassan Yusuf",
		ParentPhone:      "0811222333",
		EmergencyContact: "Hassan Yusuf",
		EmergencyPhone:   "0811222333",
		Status:           models.StudentActive,
		RegistrationID:   &regID,
	}
}

func TestApproveCommitsStudentAndStatusTogether(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_registrations SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Approve(context.Background(), reviewedRegistration(), approvedStudent())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRollsBackWhenStatusAlreadyDecided(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE student_registrations SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), reviewedRegistration(), approvedStudent())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveRollsBackOnDuplicateStudentCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "students_student_id_key"`))
	mock.ExpectRollback()

	err := repo.Approve(context.Background(), reviewedRegistration(), approvedStudent())
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRejectGuardsPendingStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	registration := reviewedRegistration()
	registration.Status = models.RegistrationRejected

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE student_registrations SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Reject(context.Background(), registration)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListPageBeyondDataReturnsEmptySlice(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM student_registrations WHERE 1=1 ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	registrations, total, err := repo.List(context.Background(), models.RegistrationFilter{Page: 5, PerPage: 20})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.NotNil(t, registrations)
	require.Empty(t, registrations)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHasPendingWithEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRegistrationRepository(db)

	mock.ExpectQuery("SELECT 1 FROM student_registrations").
		WithArgs("amina@example.com", models.RegistrationPending).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	pending, err := repo.HasPendingWithEmail(context.Background(), "amina@example.com")
	require.NoError(t, err)
	require.True(t, pending)

	mock.ExpectQuery("SELECT 1 FROM student_registrations").
		WithArgs("nobody@example.com", models.RegistrationPending).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	pending, err = repo.HasPendingWithEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	require.False(t, pending)

	require.NoError(t, mock.ExpectationsWereMet())
}
