package services

import (
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/config"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/auth"
)

// Services holds all the service instances
type Services struct {
	AuthService      *AuthService
	TimetableService *TimetableService
	RequestService   *RequestService
	RoomService      *RoomService
	SectionService   *SectionService
	ExamService      *ExamService
}

// NewServices initializes all services
func NewServices(database *db.PostgresDB, repos *repositories.Repositories, jwtService *auth.JWTService, cfg *config.Config) *Services {
	return &Services{
		AuthService:      NewAuthService(repos.UserRepository, jwtService),
		TimetableService: NewTimetableService(database, repos),
		RequestService:   NewRequestService(database, repos),
		RoomService:      NewRoomService(database, repos),
		SectionService:   NewSectionService(database, repos),
		ExamService:      NewExamService(database, repos, cfg),
	}
}
