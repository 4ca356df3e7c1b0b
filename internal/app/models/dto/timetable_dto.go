package dto

import "github.com/yigit/unitime/internal/app/models"

// SelectSlotsRequest asks the engine to reserve the listed time slots for an
// accepted course request. Slot order is the caller's preference order.
type SelectSlotsRequest struct {
	RequestID   int64   `json:"request_id" binding:"required" example:"17"`
	TimeSlotIDs []int64 `json:"time_slots" binding:"required,min=1,dive,gt=0"`
}

// UndoSelectionRequest releases all slot reservations of a request
type UndoSelectionRequest struct {
	RequestID int64 `json:"request_id" binding:"required" example:"17"`
}

// ScheduleEntry is one reserved slot in an instructor's timetable
type ScheduleEntry struct {
	ReservationID int64           `json:"reservationId"`
	RequestID     int64           `json:"requestId"`
	SectionID     int64           `json:"sectionId"`
	TimeSlot      models.TimeSlot `json:"timeSlot"`
	Room          *models.Room    `json:"room,omitempty"`
	CourseCode    string          `json:"courseCode"`
}

// AvailableSlotsResponse lists slots free for both the request's instructor
// and its section
type AvailableSlotsResponse struct {
	RequestID int64             `json:"requestId"`
	Slots     []models.TimeSlot `json:"slots"`
}
