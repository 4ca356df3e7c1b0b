package models

import "time"

// SectionRecord is a write-once audit row snapshotting who taught what to a
// section in a semester. Produced by section promotion.
type SectionRecord struct {
	ID           int64     `json:"id" db:"id"`
	SectionID    int64     `json:"sectionId" db:"section_id"`
	CourseID     int64     `json:"courseId" db:"course_id"`
	InstructorID *int64    `json:"instructorId,omitempty" db:"instructor_id"`
	Semester     int       `json:"semester" db:"semester"`
	AcademicYear string    `json:"academicYear" db:"academic_year"`
	RecordedAt   time.Time `json:"recordedAt" db:"recorded_at"`
}
