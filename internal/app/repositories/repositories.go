package repositories

import (
	"github.com/yigit/unitime/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         *UserRepository
	TimeSlotRepository     *TimeSlotRepository
	RoomRepository         *RoomRepository
	AvailabilityRepository *AvailabilityRepository
	RequestRepository      *RequestRepository
	ReservationRepository  *ReservationRepository
	AssignmentRepository   *AssignmentRepository
	OfferingRepository     *OfferingRepository
	SectionRepository      *SectionRepository
	ExamRepository         *ExamRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db db.Querier) *Repositories {
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TimeSlotRepository:     NewTimeSlotRepository(db),
		RoomRepository:         NewRoomRepository(db),
		AvailabilityRepository: NewAvailabilityRepository(db),
		RequestRepository:      NewRequestRepository(db),
		ReservationRepository:  NewReservationRepository(db),
		AssignmentRepository:   NewAssignmentRepository(db),
		OfferingRepository:     NewOfferingRepository(db),
		SectionRepository:      NewSectionRepository(db),
		ExamRepository:         NewExamRepository(db),
	}
}
