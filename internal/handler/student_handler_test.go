package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
)

func multipartRequest(t *testing.T, target, role string, fields map[string]string, fileName string, fileContent []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("imageFile", fileName)
		require.NoError(t, err)
		_, err = part.Write(fileContent)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+signToken(t, role))

	return req
}

func seedCourse(t *testing.T, env testEnv) models.Course {
	t.Helper()

	course := models.Course{Code: "CS101", Name: "Introduction to Programming", Credits: 3}
	require.NoError(t, env.db.Create(&course).Error)
	return course
}

func TestStudentCreateWithoutImage(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env)

	fields := map[string]string{
		"name":     "Ram",
		"gender":   "Male",
		"courseId": fmt.Sprint(course.ID),
	}
	resp, err := env.app.Test(multipartRequest(t, "/Student/Create", "admin", fields, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/Student", resp.Header.Get("Location"))

	var student models.Student
	require.NoError(t, env.db.Where("name = ?", "Ram").First(&student).Error)

	detail, err := env.app.Test(formRequest(t, http.MethodGet, fmt.Sprintf("/Student/Details/%d", student.ID), "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, detail.StatusCode)

	var payload struct {
		Data struct {
			Name      string  `json:"name"`
			ImagePath *string `json:"image_path"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(detail.Body).Decode(&payload))
	require.Equal(t, "Ram", payload.Data.Name)
	require.Nil(t, payload.Data.ImagePath)
}

func TestStudentCreateWithImageStoresFile(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env)

	fields := map[string]string{
		"name":     "Srijana Thapa",
		"gender":   "Female",
		"courseId": fmt.Sprint(course.ID),
	}
	resp, err := env.app.Test(multipartRequest(t, "/Student/Create", "admin", fields, "srijana.png", []byte("png")))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)

	var student models.Student
	require.NoError(t, env.db.Where("name = ?", "Srijana Thapa").First(&student).Error)
	require.NotNil(t, student.ImagePath)
	require.Contains(t, *student.ImagePath, "/images/students/")
}

func TestStudentCreateMissingNameRedisplaysWithCourseOptions(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env)

	fields := map[string]string{
		"gender":   "Male",
		"courseId": fmt.Sprint(course.ID),
	}
	resp, err := env.app.Test(multipartRequest(t, "/Student/Create", "admin", fields, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	success, data := decodeResponse(t, resp)
	require.False(t, success)
	require.Contains(t, data, "errors")
	require.Contains(t, data, "course_options")

	var options []struct {
		ID       uint `json:"id"`
		Selected bool `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(data["course_options"], &options))
	require.Len(t, options, 1)
	require.True(t, options[0].Selected)

	var count int64
	require.NoError(t, env.db.Model(&models.Student{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestStudentCreateFormListsCourses(t *testing.T) {
	env := newTestEnv(t)
	seedCourse(t, env)

	resp, err := env.app.Test(formRequest(t, http.MethodGet, "/Student/Create", "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	success, data := decodeResponse(t, resp)
	require.True(t, success)
	require.Contains(t, data, "course_options")
}

func TestStudentCreateForbiddenForStudentRole(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env)

	fields := map[string]string{
		"name":     "Ram",
		"gender":   "Male",
		"courseId": fmt.Sprint(course.ID),
	}
	resp, err := env.app.Test(multipartRequest(t, "/Student/Create", "student", fields, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestStudentEditIDMismatchNeverMutates(t *testing.T) {
	env := newTestEnv(t)
	course := seedCourse(t, env)

	student := models.Student{Name: "Aayush Sharma", Gender: "Male", CourseID: course.ID}
	require.NoError(t, env.db.Create(&student).Error)

	fields := map[string]string{
		"id":       fmt.Sprint(student.ID),
		"name":     "Hacked",
		"gender":   "Male",
		"courseId": fmt.Sprint(course.ID),
	}
	target := fmt.Sprintf("/Student/Edit/%d", student.ID+1)
	resp, err := env.app.Test(multipartRequest(t, target, "admin", fields, "", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var stored models.Student
	require.NoError(t, env.db.First(&stored, student.ID).Error)
	require.Equal(t, "Aayush Sharma", stored.Name)
}

func TestStudentDeleteAbsentIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(formRequest(t, http.MethodPost, "/Student/Delete/42", "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
}

func TestStudentDetailsNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.app.Test(formRequest(t, http.MethodGet, "/Student/Details/42", "admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
