package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/dberrors"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// TimetableService implements slot selection and release for accepted course
// requests. Both paths run inside a single transaction whose round-trip count
// is fixed regardless of how many slots are involved.
type TimetableService struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
}

// NewTimetableService creates a new timetable service
func NewTimetableService(database *db.PostgresDB, repos *repositories.Repositories) *TimetableService {
	return &TimetableService{
		db:    database,
		repos: repos,
	}
}

// SelectSlots reserves the requested time slots for the instructor's accepted
// course request and assigns a room to each, atomically. Either every slot is
// reserved with a room or nothing is written.
//
// The transaction runs serializable: two instructors racing for the same slot
// both pass the read-side conflict check, but the loser's commit fails with a
// serialization error (or a unique violation from the partial indexes) and is
// surfaced as a conflict.
func (s *TimetableService) SelectSlots(ctx context.Context, instructorID int64, req *dto.SelectSlotsRequest) (int, error) {
	seen := make(map[int64]bool, len(req.TimeSlotIDs))
	for _, id := range req.TimeSlotIDs {
		if seen[id] {
			return 0, apperrors.NewValidationError(fmt.Sprintf("time slot %d listed more than once", id))
		}
		seen[id] = true
	}
	slotIDs := req.TimeSlotIDs

	var reserved int
	err := s.db.WithSerializableTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		requestRepo := s.repos.RequestRepository.WithTx(tx)
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)
		timeslotRepo := s.repos.TimeSlotRepository.WithTx(tx)
		availabilityRepo := s.repos.AvailabilityRepository.WithTx(tx)
		assignmentRepo := s.repos.AssignmentRepository.WithTx(tx)
		roomRepo := s.repos.RoomRepository.WithTx(tx)

		detail, err := requestRepo.GetDetail(ctx, req.RequestID)
		if err != nil {
			return err
		}
		if detail == nil {
			return apperrors.NewCustomError(apperrors.ErrRequestNotFound, fmt.Sprintf("course request %d not found", req.RequestID))
		}
		if detail.Request.Status != models.RequestAccepted {
			return apperrors.NewCustomError(apperrors.ErrRequestNotAccepted,
				fmt.Sprintf("course request %d is %s, slots can only be selected for accepted requests", req.RequestID, detail.Request.Status))
		}
		if detail.Request.InstructorID == nil || *detail.Request.InstructorID != instructorID {
			return apperrors.NewForbiddenError("course request belongs to another instructor")
		}

		existing, err := reservationRepo.CountActiveByRequest(ctx, req.RequestID)
		if err != nil {
			return err
		}
		if existing > 0 {
			return apperrors.NewCustomError(apperrors.ErrRequestHasReservations,
				"request already has slot reservations, release them before selecting again")
		}

		slots, err := timeslotRepo.GetByIDs(ctx, slotIDs, models.SlotUsageClass)
		if err != nil {
			return err
		}
		if len(slots) != len(slotIDs) {
			return apperrors.NewCustomError(apperrors.ErrTimeSlotNotFound,
				"one or more time slots do not exist or are not class slots")
		}

		conflicts, err := availabilityRepo.FindReservationConflicts(ctx, instructorID, detail.SectionID, slotIDs)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return apperrors.NewCustomError(apperrors.ErrSlotUnavailable,
				"one or more time slots are already taken for this instructor or section").
				WithDetails(map[string]interface{}{"timeSlots": conflicts})
		}

		occupancies, err := assignmentRepo.GetOccupanciesForSlots(ctx, slotIDs)
		if err != nil {
			return err
		}
		rooms, err := roomRepo.GetAll(ctx)
		if err != nil {
			return err
		}

		picker := NewRoomPicker(rooms, occupancies)
		roomIDs := make([]int64, len(slotIDs))
		sectionIDs := make([]int64, len(slotIDs))
		semesters := make([]int, len(slotIDs))
		offeringIDs := make([]int64, len(slotIDs))
		for i, slotID := range slotIDs {
			room, ok := picker.Pick(slotID, detail.Enrollment, detail.RequiredRoomType)
			if !ok {
				return apperrors.NewCustomError(apperrors.ErrNoEligibleRoom,
					fmt.Sprintf("no free %s room with capacity %d or more at time slot %d",
						detail.RequiredRoomType, detail.Enrollment, slotID))
			}
			roomIDs[i] = room.ID
			sectionIDs[i] = detail.SectionID
			semesters[i] = detail.Semester
			offeringIDs[i] = detail.OfferingID
		}

		created, err := assignmentRepo.BulkCreate(ctx, roomIDs, sectionIDs, slotIDs, semesters, offeringIDs)
		if err != nil {
			return err
		}
		assignmentBySlot := make(map[int64]int64, len(created))
		for _, a := range created {
			assignmentBySlot[a.TimeSlotID] = a.ID
		}
		assignmentIDs := make([]int64, len(slotIDs))
		for i, slotID := range slotIDs {
			assignmentIDs[i] = assignmentBySlot[slotID]
		}

		count, err := reservationRepo.BulkCreate(ctx, req.RequestID, instructorID, detail.SectionID, slotIDs, assignmentIDs)
		if err != nil {
			return err
		}
		reserved = int(count)

		return nil
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) || dberrors.IsUniqueViolation(err) {
			logger.Warn().Err(err).Int64("requestId", req.RequestID).Msg("Slot selection lost a concurrent race")
			if dberrors.IsUniqueConstraintViolation(err, "uq_reservations_instructor_slot") {
				return 0, apperrors.NewConflictError("a concurrent operation booked the instructor into one of the slots, please retry")
			}
			if dberrors.IsUniqueConstraintViolation(err, "uq_reservations_section_slot") {
				return 0, apperrors.NewConflictError("a concurrent operation booked the section into one of the slots, please retry")
			}
			return 0, apperrors.NewConflictError("a concurrent operation claimed one of the slots, please retry")
		}
		return 0, err
	}

	logger.Info().
		Int64("requestId", req.RequestID).
		Int64("instructorId", instructorID).
		Int("slots", reserved).
		Msg("Slot selection committed")

	return reserved, nil
}

// UndoSelection releases every slot reservation of the request and deletes the
// room assignments left without a referencing reservation. The request stays
// accepted; the instructor can select a different set of slots afterwards.
func (s *TimetableService) UndoSelection(ctx context.Context, callerID int64, isAdmin bool, requestID int64) (int, error) {
	var released int
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		requestRepo := s.repos.RequestRepository.WithTx(tx)
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)

		detail, err := requestRepo.GetDetail(ctx, requestID)
		if err != nil {
			return err
		}
		if detail == nil {
			return apperrors.NewCustomError(apperrors.ErrRequestNotFound, fmt.Sprintf("course request %d not found", requestID))
		}
		if detail.Request.Status != models.RequestAccepted {
			return apperrors.NewCustomError(apperrors.ErrRequestNotAccepted,
				fmt.Sprintf("course request %d is %s", requestID, detail.Request.Status))
		}
		if !isAdmin && (detail.Request.InstructorID == nil || *detail.Request.InstructorID != callerID) {
			return apperrors.NewForbiddenError("course request belongs to another instructor")
		}

		count, err := reservationRepo.CountActiveByRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if count == 0 {
			return apperrors.NewStateError("request has no active slot reservations")
		}

		if _, err := reservationRepo.ReleaseByRequest(ctx, requestID); err != nil {
			return err
		}
		released = count

		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info().
		Int64("requestId", requestID).
		Int("released", released).
		Msg("Slot reservations released")

	return released, nil
}

// GetAvailableSlots lists the class slots free for both the request's
// instructor and its section.
func (s *TimetableService) GetAvailableSlots(ctx context.Context, callerID int64, isAdmin bool, requestID int64) (*dto.AvailableSlotsResponse, error) {
	detail, err := s.repos.RequestRepository.GetDetail(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrRequestNotFound, fmt.Sprintf("course request %d not found", requestID))
	}
	if detail.Request.Status != models.RequestAccepted || detail.Request.InstructorID == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrRequestNotAccepted,
			"availability is defined only for accepted requests")
	}
	if !isAdmin && *detail.Request.InstructorID != callerID {
		return nil, apperrors.NewForbiddenError("course request belongs to another instructor")
	}

	slots, err := s.repos.AvailabilityRepository.FreeSlotsFor(ctx, *detail.Request.InstructorID, detail.SectionID)
	if err != nil {
		return nil, err
	}

	return &dto.AvailableSlotsResponse{RequestID: requestID, Slots: slots}, nil
}

// ListTimeSlots returns the slot grid for the given usage
func (s *TimetableService) ListTimeSlots(ctx context.Context, usage models.SlotUsage) ([]models.TimeSlot, error) {
	return s.repos.TimeSlotRepository.GetAll(ctx, usage)
}

// GetSchedule returns the instructor's current timetable
func (s *TimetableService) GetSchedule(ctx context.Context, instructorID int64) ([]dto.ScheduleEntry, error) {
	rows, err := s.repos.ReservationRepository.GetScheduleByInstructor(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, dto.ScheduleEntry{
			ReservationID: row.ReservationID,
			RequestID:     row.RequestID,
			SectionID:     row.SectionID,
			TimeSlot:      row.TimeSlot,
			Room:          row.Room,
			CourseCode:    row.CourseCode,
		})
	}

	return entries, nil
}
