package dto

// AutoAssignResponse reports how many unassigned (section, slot) pairs
// received a room
type AutoAssignResponse struct {
	AssignedCount int `json:"assigned_count" example:"12"`
}

// UpdateAssignmentRequest edits a room assignment. Exactly the provided
// fields change; both are re-validated against the non-overlap and
// capacity/type invariants.
type UpdateAssignmentRequest struct {
	RoomID     *int64 `json:"room_id,omitempty" example:"3"`
	TimeSlotID *int64 `json:"time_slot_id,omitempty" example:"21"`
}
