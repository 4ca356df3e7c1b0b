package models

import "time"

// Exam schedules an offering's exam into a time slot and room, supervised by
// an invigilator. The same non-overlap rules as class scheduling apply.
type Exam struct {
	ID            int64     `json:"id" db:"id"`
	OfferingID    int64     `json:"offeringId" db:"offering_id"`
	SectionID     int64     `json:"sectionId" db:"section_id"`
	TimeSlotID    int64     `json:"timeSlotId" db:"time_slot_id"`
	RoomID        int64     `json:"roomId" db:"room_id"`
	InvigilatorID *int64    `json:"invigilatorId,omitempty" db:"invigilator_id"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	TimeSlot *TimeSlot `json:"timeSlot,omitempty"`
	Room     *Room     `json:"room,omitempty"`
}
