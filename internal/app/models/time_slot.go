package models

// TimeSlot represents an immutable scheduling slot (reference data).
type TimeSlot struct {
	ID        int64     `json:"id" db:"id"`
	DayOfWeek string    `json:"dayOfWeek" db:"day_of_week" example:"MONDAY"`
	StartTime string    `json:"startTime" db:"start_time" example:"09:00"`
	EndTime   string    `json:"endTime" db:"end_time" example:"10:30"`
	Label     string    `json:"label" db:"label" example:"MON-1"`
	Shift     Shift     `json:"shift" db:"shift" example:"MORNING"`
	Usage     SlotUsage `json:"usage" db:"usage" example:"CLASS"`
}
