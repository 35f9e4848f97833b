package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/dto"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
	"github.com/prajjwal-ghimire/sms-go-api/internal/repository"
	"github.com/prajjwal-ghimire/sms-go-api/internal/storage"
)

type studentFixture struct {
	svc      StudentService
	db       *gorm.DB
	dir      string
	courseID uint
}

func newStudentFixture(t *testing.T) studentFixture {
	t.Helper()

	db := openTestDB(t)
	dir := t.TempDir()

	images, err := storage.NewImageStore(dir, zerolog.Nop())
	require.NoError(t, err)

	course := models.Course{Code: "CS101", Name: "Introduction to Programming", Credits: 3}
	require.NoError(t, db.Create(&course).Error)

	svc := NewStudentService(
		repository.NewStudentRepository(db),
		repository.NewCourseRepository(db),
		images,
		dto.NewValidator(),
		zerolog.Nop(),
	)

	return studentFixture{svc: svc, db: db, dir: dir, courseID: course.ID}
}

func newImageUpload(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("imageFile", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(int64(buf.Len()) + 1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	files := form.File["imageFile"]
	require.Len(t, files, 1)
	return files[0]
}

func storedImages(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(dir, "images", "students"))
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func validStudentForm(courseID uint) dto.StudentForm {
	return dto.StudentForm{
		Name:        "Ram",
		Gender:      "Male",
		Address:     "Thamel, Kathmandu",
		PhoneNumber: "9841234567",
		Email:       "ram@example.com",
		Class:       "Bachelor",
		Section:     "A",
		CourseID:    courseID,
	}
}

func TestStudentServiceCreateWithoutImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), nil)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Nil(t, created.ImagePath)

	stored, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Nil(t, stored.ImagePath)
	require.Equal(t, "Introduction to Programming", stored.CourseName)
}

func TestStudentServiceCreateWithImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), newImageUpload(t, "ram.png", []byte("png")))
	require.NoError(t, err)
	require.NotNil(t, created.ImagePath)
	require.Contains(t, *created.ImagePath, storage.PublicPrefix)
	require.Len(t, storedImages(t, f.dir), 1)
}

func TestStudentServiceCreateMissingRequiredFields(t *testing.T) {
	f := newStudentFixture(t)

	form := validStudentForm(f.courseID)
	form.Name = ""
	form.Gender = ""

	_, err := f.svc.Create(context.Background(), form, nil)
	fieldErrors, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fieldErrors, "name")
	require.Contains(t, fieldErrors, "gender")

	var count int64
	require.NoError(t, f.db.Model(&models.Student{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestStudentServiceCreateInvalidEmailAndPhone(t *testing.T) {
	f := newStudentFixture(t)

	form := validStudentForm(f.courseID)
	form.Email = "not-an-email"
	form.PhoneNumber = "not-a-phone"

	_, err := f.svc.Create(context.Background(), form, nil)
	fieldErrors, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fieldErrors, "email")
	require.Contains(t, fieldErrors, "phoneNumber")
}

func TestStudentServiceCreateUnknownCourse(t *testing.T) {
	f := newStudentFixture(t)

	form := validStudentForm(f.courseID + 100)

	_, err := f.svc.Create(context.Background(), form, nil)
	fieldErrors, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fieldErrors, "courseId")

	// A stored image must not survive a failed create.
	_, err = f.svc.Create(context.Background(), form, newImageUpload(t, "orphan.png", []byte("png")))
	_, ok = AsFieldErrors(err)
	require.True(t, ok)
	require.Empty(t, storedImages(t, f.dir))
}

func TestStudentServiceUpdateReplacesImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), newImageUpload(t, "old.png", []byte("old")))
	require.NoError(t, err)
	require.NotNil(t, created.ImagePath)
	oldPath := *created.ImagePath

	form := validStudentForm(f.courseID)
	form.ID = created.ID
	updated, err := f.svc.Update(context.Background(), created.ID, form, newImageUpload(t, "new.png", []byte("new")))
	require.NoError(t, err)
	require.NotNil(t, updated.ImagePath)
	require.NotEqual(t, oldPath, *updated.ImagePath)

	// Exactly one live file after the replacement.
	require.Len(t, storedImages(t, f.dir), 1)
}

func TestStudentServiceUpdateUnknownCourseKeepsExistingImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), newImageUpload(t, "old.png", []byte("old")))
	require.NoError(t, err)
	require.NotNil(t, created.ImagePath)
	oldPath := *created.ImagePath

	form := validStudentForm(f.courseID + 100)
	form.ID = created.ID
	_, err = f.svc.Update(context.Background(), created.ID, form, newImageUpload(t, "new.png", []byte("new")))
	fieldErrors, ok := AsFieldErrors(err)
	require.True(t, ok)
	require.Contains(t, fieldErrors, "courseId")

	// The row still references the old image and the old file is the only one
	// on disk; the rejected upload leaves nothing behind.
	stored, err := f.svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImagePath)
	require.Equal(t, oldPath, *stored.ImagePath)

	files := storedImages(t, f.dir)
	require.Len(t, files, 1)
	require.True(t, strings.HasSuffix(oldPath, files[0]))
}

func TestStudentServiceUpdateKeepsImageWhenNoFileSupplied(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), newImageUpload(t, "keep.png", []byte("keep")))
	require.NoError(t, err)
	require.NotNil(t, created.ImagePath)

	form := validStudentForm(f.courseID)
	form.ID = created.ID
	form.Section = "B"
	updated, err := f.svc.Update(context.Background(), created.ID, form, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ImagePath)
	require.Equal(t, *created.ImagePath, *updated.ImagePath)
	require.Equal(t, "B", updated.Section)
	require.Len(t, storedImages(t, f.dir), 1)
}

func TestStudentServiceUpdateAbsent(t *testing.T) {
	f := newStudentFixture(t)

	form := validStudentForm(f.courseID)
	form.ID = 42
	_, err := f.svc.Update(context.Background(), 42, form, nil)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentServiceDeleteRemovesRowAndImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), newImageUpload(t, "bye.png", []byte("bye")))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.ID))

	_, err = f.svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
	require.Empty(t, storedImages(t, f.dir))

	// Second delete is a no-op.
	require.NoError(t, f.svc.Delete(context.Background(), created.ID))
}

func TestStudentServiceDeleteWithoutImage(t *testing.T) {
	f := newStudentFixture(t)

	created, err := f.svc.Create(context.Background(), validStudentForm(f.courseID), nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), created.ID))

	_, err = f.svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrStudentNotFound)
}

func TestStudentServiceCourseOptions(t *testing.T) {
	f := newStudentFixture(t)

	second := models.Course{Code: "CS201", Name: "Data Structures", Credits: 4}
	require.NoError(t, f.db.Create(&second).Error)

	options, err := f.svc.CourseOptions(context.Background(), second.ID)
	require.NoError(t, err)
	require.Len(t, options, 2)

	for _, option := range options {
		require.Equal(t, option.ID == second.ID, option.Selected)
	}
}
