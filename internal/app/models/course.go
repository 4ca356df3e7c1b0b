package models

// Course represents a course in the catalog.
type Course struct {
	ID               int64    `json:"id" db:"id"`
	Code             string   `json:"code" db:"code" example:"CSE-303"`
	Name             string   `json:"name" db:"name"`
	Credits          int      `json:"credits" db:"credits"`
	RequiredRoomType RoomType `json:"requiredRoomType" db:"required_room_type" example:"CLASSROOM"`
}
