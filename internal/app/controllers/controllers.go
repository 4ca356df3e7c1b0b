package controllers

import (
	"github.com/yigit/unitime/internal/app/services"
)

// Controllers holds all the controller instances
type Controllers struct {
	AuthController      *AuthController
	TimetableController *TimetableController
	RequestController   *RequestController
	RoomController      *RoomController
	SectionController   *SectionController
	ExamController      *ExamController
}

// NewControllers initializes all controllers
func NewControllers(svcs *services.Services) *Controllers {
	return &Controllers{
		AuthController:      NewAuthController(svcs.AuthService),
		TimetableController: NewTimetableController(svcs.TimetableService),
		RequestController:   NewRequestController(svcs.RequestService),
		RoomController:      NewRoomController(svcs.RoomService),
		SectionController:   NewSectionController(svcs.SectionService),
		ExamController:      NewExamController(svcs.ExamService),
	}
}
