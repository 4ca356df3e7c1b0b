package models

import "time"

// CourseRequest is an offering awaiting or bound to an instructor.
// InstructorID is null until the request is accepted. At most one
// non-rejected request exists per offering.
type CourseRequest struct {
	ID           int64         `json:"id" db:"id"`
	OfferingID   int64         `json:"offeringId" db:"offering_id"`
	InstructorID *int64        `json:"instructorId,omitempty" db:"instructor_id"`
	Status       RequestStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
	AcceptedAt   *time.Time    `json:"acceptedAt,omitempty" db:"accepted_at"`

	// Relations (populated when needed)
	Offering *CourseOffering `json:"offering,omitempty"`
}
