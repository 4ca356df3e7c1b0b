package dto

// ResetExamsRequest selects which exam attribute to rebuild in bulk.
// Currently only invigilator rebalancing is supported.
type ResetExamsRequest struct {
	Type string `json:"type" binding:"required,oneof=invigilators" example:"invigilators"`
}

// ResetExamsResponse reports the rebalance outcome
type ResetExamsResponse struct {
	ExamsUpdated int `json:"examsUpdated" example:"100"`
	Invigilators int `json:"invigilators" example:"5"`
}

// GenerateScheduleResponse reports how many exams were placed
type GenerateScheduleResponse struct {
	ScheduledCount int `json:"scheduledCount" example:"24"`
}
