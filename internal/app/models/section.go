package models

// Section represents a student section. Semester is the section's current
// semester pointer; promotion advances it.
type Section struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name" example:"A"`
	Intake       int    `json:"intake" db:"intake" example:"49"`
	Semester     int    `json:"semester" db:"semester" example:"5"`
	StudentCount int    `json:"studentCount" db:"student_count" example:"45"`
}
