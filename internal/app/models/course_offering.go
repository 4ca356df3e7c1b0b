package models

import "time"

// CourseOffering represents a course taught to a section in a term.
// Immutable once referenced by a course request.
type CourseOffering struct {
	ID           int64     `json:"id" db:"id"`
	CourseID     int64     `json:"courseId" db:"course_id"`
	SectionID    int64     `json:"sectionId" db:"section_id"`
	Semester     int       `json:"semester" db:"semester"`
	Intake       int       `json:"intake" db:"intake"`
	AcademicYear string    `json:"academicYear" db:"academic_year" example:"2025-2026"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Course  *Course  `json:"course,omitempty"`
	Section *Section `json:"section,omitempty"`
}
