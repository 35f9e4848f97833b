package dto

import "github.com/prajjwal-ghimire/sms-go-api/internal/models"

// CourseForm carries submitted course fields for create and edit.
type CourseForm struct {
	ID          uint   `form:"id" json:"id"`
	Code        string `form:"code" json:"code" validate:"required"`
	Name        string `form:"name" json:"name" validate:"required"`
	Description string `form:"description" json:"description"`
	Credits     int    `form:"credits" json:"credits" validate:"gte=0"`
}

// CourseResponse is the API representation of a course.
type CourseResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Credits     int    `json:"credits"`
}

// NewCourseResponse maps a course model to its response shape.
func NewCourseResponse(course models.Course) CourseResponse {
	return CourseResponse{
		ID:          course.ID,
		Code:        course.Code,
		Name:        course.Name,
		Description: course.Description,
		Credits:     course.Credits,
	}
}

// CourseDeleteConfirmation is rendered before a course deletion is confirmed.
type CourseDeleteConfirmation struct {
	Course       CourseResponse `json:"course"`
	StudentCount int64          `json:"student_count"`
}

// CourseOption is a course id/name pair for selection lists.
type CourseOption struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected,omitempty"`
}
