package models

import "time"

// Student represents an enrolled student. Every student belongs to exactly
// one course; the constraint is enforced by the database.
type Student struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Gender      string    `gorm:"size:32;not null" json:"gender"`
	Address     string    `gorm:"size:255" json:"address"`
	PhoneNumber string    `gorm:"size:32" json:"phone_number"`
	Email       string    `gorm:"size:255" json:"email"`
	Class       string    `gorm:"size:64" json:"class"`
	Section     string    `gorm:"size:64" json:"section"`
	ImagePath   *string   `gorm:"size:512" json:"image_path"`
	CourseID    uint      `gorm:"not null;index" json:"course_id"`
	Course      Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
