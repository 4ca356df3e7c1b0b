package models

// Room represents a physical room (reference data).
type Room struct {
	ID       int64    `json:"id" db:"id"`
	Name     string   `json:"name" db:"name" example:"B-204"`
	Capacity int      `json:"capacity" db:"capacity" example:"60"`
	Type     RoomType `json:"type" db:"room_type" example:"CLASSROOM"`
}
