package models

import "time"

// RoomAssignment binds a room to a (section, time slot) pair. It exists only
// while at least one live slot reservation references it.
type RoomAssignment struct {
	ID         int64     `json:"id" db:"id"`
	RoomID     int64     `json:"roomId" db:"room_id"`
	SectionID  int64     `json:"sectionId" db:"section_id"`
	TimeSlotID int64     `json:"timeSlotId" db:"time_slot_id"`
	Semester   int       `json:"semester" db:"semester"`
	OfferingID int64     `json:"offeringId" db:"offering_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Room     *Room     `json:"room,omitempty"`
	TimeSlot *TimeSlot `json:"timeSlot,omitempty"`
}
