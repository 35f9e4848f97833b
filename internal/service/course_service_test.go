package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
	"github.com/prajjwal-ghimire/sms-go-api/internal/repository"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Role{}, &models.User{}, &models.Course{}, &models.Student{}))

	return db
}

func newCourseService(t *testing.T, db *gorm.DB) CourseService {
	t.Helper()
	return NewCourseService(repository.NewCourseRepository(db), dto.NewValidator(), zerolog.Nop())
}

func TestCourseServiceCreate(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	created, err := svc.Create(context.Background(), dto.CourseForm{
		Code:    "CS101",
		Name:    "Introduction to Programming",
		Credits: 3,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	stored, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "CS101", stored.Code)
}

func TestCourseServiceCreateMissingNameRejected(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	_, err := svc.Create(context.Background(), dto.CourseForm{Code: "CS999"})
	fieldErrors, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fieldErrors, "name")

	var count int64
	require.NoError(t, db.Model(&models.Course{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCourseServiceCreateSanitizesMarkup(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	created, err := svc.Create(context.Background(), dto.CourseForm{
		Code:        "CS101",
		Name:        "Intro <script>alert(1)</script>",
		Description: "<b>bold</b> description",
		Credits:     3,
	})
	require.NoError(t, err)
	require.Equal(t, "Intro", created.Name)
	require.Equal(t, "bold description", created.Description)
}

func TestCourseServiceGetAbsent(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	_, err := svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceUpdate(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	created, err := svc.Create(context.Background(), dto.CourseForm{Code: "CS101", Name: "Intro", Credits: 3})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, dto.CourseForm{
		ID:      created.ID,
		Code:    "CS101",
		Name:    "Introduction to Programming",
		Credits: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 4, updated.Credits)

	stored, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Introduction to Programming", stored.Name)
}

func TestCourseServiceUpdateAbsent(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	_, err := svc.Update(context.Background(), 42, dto.CourseForm{ID: 42, Code: "CS101", Name: "Intro", Credits: 3})
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseServiceDeleteRejectsWhenStudentsEnrolled(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	created, err := svc.Create(context.Background(), dto.CourseForm{Code: "CS101", Name: "Intro", Credits: 3})
	require.NoError(t, err)

	student := models.Student{Name: "Aayush Sharma", Gender: "Male", CourseID: created.ID}
	require.NoError(t, db.Create(&student).Error)

	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrCourseInUse)

	confirmation, err := svc.DeleteConfirmation(context.Background(), created.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, confirmation.StudentCount)
}

func TestCourseServiceDeleteIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := newCourseService(t, db)

	created, err := svc.Create(context.Background(), dto.CourseForm{Code: "CS101", Name: "Intro", Credits: 3})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrCourseNotFound)
}
