package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prajjwal-ghimire/sms-go-api/internal/config"
	"github.com/prajjwal-ghimire/sms-go-api/internal/models"
)

const bcryptCost = 12

// Run ensures the baseline roles, accounts and reference rows exist. Every
// step is guarded by an existence check, so running it repeatedly is safe.
func Run(ctx context.Context, db *gorm.DB, cfg config.Config, logger zerolog.Logger) error {
	log := logger.With().Str("component", "seed").Logger()

	roles, err := ensureRoles(ctx, db, &log)
	if err != nil {
		return fmt.Errorf("failed to seed roles: %w", err)
	}

	if err := ensureUser(ctx, db, cfg.SeedAdminEmail, cfg.SeedAdminPassword, roles[models.RoleAdmin], &log); err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	if err := ensureUser(ctx, db, cfg.SeedStudentEmail, cfg.SeedStudentPassword, roles[models.RoleStudent], &log); err != nil {
		return fmt.Errorf("failed to seed student account: %w", err)
	}

	if err := ensureCourses(ctx, db, &log); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := ensureStudents(ctx, db, &log); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	return nil
}

func ensureRoles(ctx context.Context, db *gorm.DB, log *zerolog.Logger) (map[string]uint, error) {
	ids := make(map[string]uint, 2)
	for _, name := range []string{models.RoleAdmin, models.RoleStudent} {
		var role models.Role
		err := db.WithContext(ctx).Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = models.Role{Name: name}
			if err := db.WithContext(ctx).Create(&role).Error; err != nil {
				return nil, err
			}
			log.Info().Str("role", name).Msg("role created")
		} else if err != nil {
			return nil, err
		}
		ids[name] = role.ID
	}

	return ids, nil
}

func ensureUser(ctx context.Context, db *gorm.DB, email, password string, roleID uint, log *zerolog.Logger) error {
	var user models.User
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	user = models.User{
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       roleID,
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return err
	}

	log.Info().Str("email", email).Msg("account created")
	return nil
}

func ensureCourses(ctx context.Context, db *gorm.DB, log *zerolog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	courses := []models.Course{
		{Code: "CS101", Name: "Introduction to Programming", Description: "Learn the fundamentals of programming", Credits: 3},
		{Code: "CS201", Name: "Data Structures and Algorithms", Description: "Study of fundamental data structures and algorithmic techniques", Credits: 4},
		{Code: "CS301", Name: "Database Management Systems", Description: "Design and implementation of database systems", Credits: 3},
		{Code: "CS302", Name: "Web Development", Description: "Full-stack web development", Credits: 4},
		{Code: "CS401", Name: "Software Engineering", Description: "Principles and practices of software development", Credits: 3},
	}
	if err := db.WithContext(ctx).Create(&courses).Error; err != nil {
		return err
	}

	log.Info().Int("count", len(courses)).Msg("reference courses created")
	return nil
}

func ensureStudents(ctx context.Context, db *gorm.DB, log *zerolog.Logger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Student{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var courses []models.Course
	if err := db.WithContext(ctx).Order("id").Find(&courses).Error; err != nil {
		return err
	}
	if len(courses) < 5 {
		return fmt.Errorf("expected at least 5 seeded courses, found %d", len(courses))
	}

	students := []models.Student{
		{Name: "Aayush Sharma", Gender: "Male", Address: "Thamel, Kathmandu", PhoneNumber: "9841234567", Email: "aayush.sharma@example.com", Class: "Bachelor", Section: "A", CourseID: courses[0].ID},
		{Name: "Srijana Thapa", Gender: "Female", Address: "Pulchowk, Lalitpur", PhoneNumber: "9851234568", Email: "srijana.thapa@example.com", Class: "Bachelor", Section: "A", CourseID: courses[1].ID},
		{Name: "Bibek Adhikari", Gender: "Male", Address: "Baneshwor, Kathmandu", PhoneNumber: "9861234569", Email: "bibek.adhikari@example.com", Class: "Bachelor", Section: "B", CourseID: courses[2].ID},
		{Name: "Kritika Rai", Gender: "Female", Address: "Bhaktapur", PhoneNumber: "9871234570", Email: "kritika.rai@example.com", Class: "Bachelor", Section: "B", CourseID: courses[3].ID},
		{Name: "Sujan Nepal", Gender: "Male", Address: "Koteshwor, Kathmandu", PhoneNumber: "9881234571", Email: "sujan.nepal@example.com", Class: "Masters", Section: "A", CourseID: courses[4].ID},
		{Name: "Priya Shrestha", Gender: "Female", Address: "Patan, Lalitpur", PhoneNumber: "9891234572", Email: "priya.shrestha@example.com", Class: "Masters", Section: "A", CourseID: courses[0].ID},
	}
	if err := db.WithContext(ctx).Create(&students).Error; err != nil {
		return err
	}

	log.Info().Int("count", len(students)).Msg("reference students created")
	return nil
}
