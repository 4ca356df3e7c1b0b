package dto

// AcceptRequest binds the calling instructor to a pending course request
type AcceptRequest struct {
	RequestID int64 `json:"request_id" binding:"required" example:"17"`
}

// UndoAcceptRequest reverts an accepted course request back to pending
type UndoAcceptRequest struct {
	RequestID int64 `json:"request_id" binding:"required" example:"17"`
}

// ReassignRequest moves an accepted course request to another instructor (admin)
type ReassignRequest struct {
	RequestID    int64 `json:"request_id" binding:"required" example:"17"`
	InstructorID int64 `json:"instructor_id" binding:"required" example:"4"`
}
