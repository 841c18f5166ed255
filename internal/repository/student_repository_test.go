package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal-api/internal/models"
)

func TestStudentLastCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT student_id FROM students WHERE student_id LIKE").
		WithArgs("STD2026%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}).AddRow("STD202600042"))

	last, err := repo.LastCode(context.Background(), "STD2026")
	require.NoError(t, err)
	require.Equal(t, "STD202600042", last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentLastCodeEmptyYear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT student_id FROM students WHERE student_id LIKE").
		WithArgs("STD2027%").
		WillReturnRows(sqlmock.NewRows([]string{"student_id"}))

	last, err := repo.LastCode(context.Background(), "STD2027")
	require.NoError(t, err)
	require.Empty(t, last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnError(pqUniqueViolation())

	err := repo.Create(context.Background(), &models.Student{
		StudentID:  "STD202600001",
		FirstName:  "Amina",
		LastName:   "Yusuf",
		Email:      "amina@example.com",
		GradeLevel: "10",
		Status:     models.StudentActive,
	})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUpdateNeverWritesCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &models.Student{
		ID:         "student-1",
		StudentID:  "STD202600001",
		FirstName:  "Amina",
		LastName:   "Yusuf",
		Email:      "amina@example.com",
		GradeLevel: "10",
		Status:     models.StudentActive,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
