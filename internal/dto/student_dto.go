package dto

import "github.com/prajjwal-ghimire/sms-go-api/internal/models"

// StudentForm carries submitted student fields for create and edit. The
// optional image upload travels separately as a multipart file.
type StudentForm struct {
	ID          uint   `form:"id" json:"id"`
	Name        string `form:"name" json:"name" validate:"required"`
	Gender      string `form:"gender" json:"gender" validate:"required"`
	Address     string `form:"address" json:"address"`
	PhoneNumber string `form:"phoneNumber" json:"phoneNumber" validate:"omitempty,e164|numeric"`
	Email       string `form:"email" json:"email" validate:"omitempty,email"`
	Class       string `form:"class" json:"class"`
	Section     string `form:"section" json:"section"`
	CourseID    uint   `form:"courseId" json:"courseId" validate:"required"`
}

// StudentResponse is the API representation of a student.
type StudentResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Gender      string  `json:"gender"`
	Address     string  `json:"address"`
	PhoneNumber string  `json:"phone_number"`
	Email       string  `json:"email"`
	Class       string  `json:"class"`
	Section     string  `json:"section"`
	ImagePath   *string `json:"image_path"`
	CourseID    uint    `json:"course_id"`
	CourseName  string  `json:"course_name,omitempty"`
}

// NewStudentResponse maps a student model to its response shape.
func NewStudentResponse(student models.Student) StudentResponse {
	return StudentResponse{
		ID:          student.ID,
		Name:        student.Name,
		Gender:      student.Gender,
		Address:     student.Address,
		PhoneNumber: student.PhoneNumber,
		Email:       student.Email,
		Class:       student.Class,
		Section:     student.Section,
		ImagePath:   student.ImagePath,
		CourseID:    student.CourseID,
		CourseName:  student.Course.Name,
	}
}

// StudentFormView bundles form values with the course selection list.
type StudentFormView struct {
	Values        StudentForm    `json:"values"`
	CourseOptions []CourseOption `json:"course_options"`
}
