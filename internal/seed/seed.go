package seed

import (
	"context"
	"fmt"

	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/auth"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// CreateDefaultData inserts the reference data a fresh installation needs:
// a default admin, demo instructors, the weekly slot grid and a starter set of
// rooms. Every insert is idempotent, so running it on every startup is safe.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB) error {
	logger.Info().Msg("Checking/creating default data...")

	if err := seedUsers(ctx, database); err != nil {
		return err
	}
	if err := seedTimeSlots(ctx, database); err != nil {
		return err
	}
	if err := seedRooms(ctx, database); err != nil {
		return err
	}
	if err := seedAcademic(ctx, database); err != nil {
		return err
	}

	logger.Info().Msg("Default data ready")
	return nil
}

func seedUsers(ctx context.Context, database *db.PostgresDB) error {
	users := []struct {
		email, password, first, last, role string
	}{
		{"admin@unitime.app", "admin123", "System", "Admin", "ADMIN"},
		{"a.yilmaz@unitime.app", "instructor123", "Ayse", "Yilmaz", "INSTRUCTOR"},
		{"m.demir@unitime.app", "instructor123", "Mehmet", "Demir", "INSTRUCTOR"},
	}

	for _, u := range users {
		hash, err := auth.HashPassword(u.password)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		_, err = database.Pool.Exec(ctx, `
			INSERT INTO users (email, password, first_name, last_name, role_type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (email) DO NOTHING`,
			u.email, hash, u.first, u.last, u.role)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.email, err)
		}
	}

	return nil
}

func seedTimeSlots(ctx context.Context, database *db.PostgresDB) error {
	days := []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY"}

	type block struct {
		start, end, shift, usage string
	}
	blocks := []block{
		{"09:00", "10:30", "MORNING", "CLASS"},
		{"10:45", "12:15", "MORNING", "CLASS"},
		{"13:00", "14:30", "MORNING", "CLASS"},
		{"17:00", "18:30", "EVENING", "CLASS"},
		{"18:45", "20:15", "EVENING", "CLASS"},
		{"14:45", "16:15", "MORNING", "EXAM"},
	}

	for _, day := range days {
		for i, b := range blocks {
			label := fmt.Sprintf("%s-%d", day[:3], i+1)
			_, err := database.Pool.Exec(ctx, `
				INSERT INTO time_slots (day_of_week, start_time, end_time, label, shift, usage)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (day_of_week, start_time, usage) DO NOTHING`,
				day, b.start, b.end, label, b.shift, b.usage)
			if err != nil {
				return fmt.Errorf("failed to seed time slot %s %s: %w", day, b.start, err)
			}
		}
	}

	return nil
}

func seedRooms(ctx context.Context, database *db.PostgresDB) error {
	rooms := []struct {
		name     string
		capacity int
		roomType string
	}{
		{"A-101", 40, "CLASSROOM"},
		{"A-102", 40, "CLASSROOM"},
		{"B-201", 60, "CLASSROOM"},
		{"B-204", 80, "CLASSROOM"},
		{"LAB-1", 30, "LAB"},
		{"LAB-2", 30, "LAB"},
		{"AUD-1", 200, "AUDITORIUM"},
	}

	for _, r := range rooms {
		_, err := database.Pool.Exec(ctx, `
			INSERT INTO rooms (name, capacity, room_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`,
			r.name, r.capacity, r.roomType)
		if err != nil {
			return fmt.Errorf("failed to seed room %s: %w", r.name, err)
		}
	}

	return nil
}

// seedAcademic creates a small demo catalog: courses, two sections, their
// offerings for the current academic year and one pending request per
// offering so the accept flow has something to work with out of the box.
func seedAcademic(ctx context.Context, database *db.PostgresDB) error {
	courses := []struct {
		code, name string
		credits    int
		roomType   string
	}{
		{"CSE-303", "Operating Systems", 6, "CLASSROOM"},
		{"CSE-311", "Database Systems", 6, "CLASSROOM"},
		{"CSE-341", "Programming Laboratory", 4, "LAB"},
	}
	for _, c := range courses {
		_, err := database.Pool.Exec(ctx, `
			INSERT INTO courses (code, name, credits, required_room_type)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO NOTHING`,
			c.code, c.name, c.credits, c.roomType)
		if err != nil {
			return fmt.Errorf("failed to seed course %s: %w", c.code, err)
		}
	}

	sections := []struct {
		name                           string
		intake, semester, studentCount int
	}{
		{"A", 49, 5, 45},
		{"B", 49, 5, 38},
	}
	for _, s := range sections {
		_, err := database.Pool.Exec(ctx, `
			INSERT INTO sections (name, intake, semester, student_count)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (name, intake) DO NOTHING`,
			s.name, s.intake, s.semester, s.studentCount)
		if err != nil {
			return fmt.Errorf("failed to seed section %s: %w", s.name, err)
		}
	}

	// Offer the whole catalog to both sections at their current semester
	_, err := database.Pool.Exec(ctx, `
		INSERT INTO course_offerings (course_id, section_id, semester, intake, academic_year)
		SELECT c.id, s.id, s.semester, s.intake, $1
		FROM courses c
		CROSS JOIN sections s
		ON CONFLICT (course_id, section_id, semester) DO NOTHING`,
		"2025-2026")
	if err != nil {
		return fmt.Errorf("failed to seed course offerings: %w", err)
	}

	// A pending request for every offering with no live request yet
	_, err = database.Pool.Exec(ctx, `
		INSERT INTO course_requests (offering_id)
		SELECT o.id
		FROM course_offerings o
		WHERE NOT EXISTS (
			SELECT 1 FROM course_requests cr
			WHERE cr.offering_id = o.id AND cr.status <> 'REJECTED'
		)`)
	if err != nil {
		return fmt.Errorf("failed to seed course requests: %w", err)
	}

	return nil
}
