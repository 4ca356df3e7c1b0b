package models

import "time"

// SlotReservation is an instructor and section's claim on a time slot for an
// offering. SectionID is denormalized from the request's offering so the
// non-overlap checks are single-table existence queries.
type SlotReservation struct {
	ID               int64             `json:"id" db:"id"`
	RequestID        int64             `json:"requestId" db:"request_id"`
	InstructorID     int64             `json:"instructorId" db:"instructor_id"`
	SectionID        int64             `json:"sectionId" db:"section_id"`
	TimeSlotID       int64             `json:"timeSlotId" db:"time_slot_id"`
	RoomAssignmentID *int64            `json:"roomAssignmentId,omitempty" db:"room_assignment_id"`
	Status           ReservationStatus `json:"status" db:"status"`
	CreatedAt        time.Time         `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	TimeSlot       *TimeSlot       `json:"timeSlot,omitempty"`
	RoomAssignment *RoomAssignment `json:"roomAssignment,omitempty"`
}
