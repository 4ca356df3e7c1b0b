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

// RoomService implements batch room resolution and manual assignment edits
type RoomService struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
}

// NewRoomService creates a new room service
func NewRoomService(database *db.PostgresDB, repos *repositories.Repositories) *RoomService {
	return &RoomService{
		db:    database,
		repos: repos,
	}
}

// ListRooms returns the room inventory in the resolver's pick order
func (s *RoomService) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.repos.RoomRepository.GetAll(ctx)
}

// sectionSlotKey identifies one (section, slot) pair in the batch resolver
type sectionSlotKey struct {
	SectionID  int64
	TimeSlotID int64
}

// AutoAssignRooms gives a room to every live reservation that has none. The
// whole run is one transaction with a fixed number of statements: one read of
// the unassigned pairs, one occupancy snapshot, one room list, one bulk insert
// and one bulk link. Pairs with no eligible room are skipped, not failed.
func (s *RoomService) AutoAssignRooms(ctx context.Context) (*dto.AutoAssignResponse, error) {
	var assigned int
	err := s.db.WithSerializableTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)
		assignmentRepo := s.repos.AssignmentRepository.WithTx(tx)
		roomRepo := s.repos.RoomRepository.WithTx(tx)

		pairs, err := reservationRepo.FindUnassigned(ctx)
		if err != nil {
			return err
		}
		if len(pairs) == 0 {
			return nil
		}

		occupancies, err := assignmentRepo.GetAllOccupancies(ctx)
		if err != nil {
			return err
		}
		rooms, err := roomRepo.GetAll(ctx)
		if err != nil {
			return err
		}

		picker := NewRoomPicker(rooms, occupancies)
		var reservationIDs, roomIDs, sectionIDs, slotIDs, offeringIDs []int64
		var semesters []int
		for _, pair := range pairs {
			room, ok := picker.Pick(pair.TimeSlotID, pair.Enrollment, pair.RequiredRoomType)
			if !ok {
				logger.Warn().
					Int64("sectionId", pair.SectionID).
					Int64("timeSlotId", pair.TimeSlotID).
					Msg("No eligible room for reservation, skipping")
				continue
			}
			reservationIDs = append(reservationIDs, pair.ReservationID)
			roomIDs = append(roomIDs, room.ID)
			sectionIDs = append(sectionIDs, pair.SectionID)
			slotIDs = append(slotIDs, pair.TimeSlotID)
			semesters = append(semesters, pair.Semester)
			offeringIDs = append(offeringIDs, pair.OfferingID)
		}
		if len(reservationIDs) == 0 {
			return nil
		}

		created, err := assignmentRepo.BulkCreate(ctx, roomIDs, sectionIDs, slotIDs, semesters, offeringIDs)
		if err != nil {
			return err
		}
		assignmentByPair := make(map[sectionSlotKey]int64, len(created))
		for _, a := range created {
			assignmentByPair[sectionSlotKey{SectionID: a.SectionID, TimeSlotID: a.TimeSlotID}] = a.ID
		}
		assignmentIDs := make([]int64, len(reservationIDs))
		for i := range reservationIDs {
			assignmentIDs[i] = assignmentByPair[sectionSlotKey{SectionID: sectionIDs[i], TimeSlotID: slotIDs[i]}]
		}

		if _, err := reservationRepo.SetRoomAssignments(ctx, reservationIDs, assignmentIDs); err != nil {
			return err
		}
		assigned = len(reservationIDs)

		return nil
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) || dberrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflictError("a concurrent operation changed room occupancy, please retry")
		}
		return nil, err
	}

	logger.Info().Int("assigned", assigned).Msg("Batch room assignment completed")

	return &dto.AutoAssignResponse{AssignedCount: assigned}, nil
}

// UpdateAssignment moves an assignment to a different room and/or time slot.
// The target is re-validated against the capacity, room type and non-overlap
// invariants; when the slot changes, the referencing reservation moves with
// the assignment.
func (s *RoomService) UpdateAssignment(ctx context.Context, assignmentID int64, req *dto.UpdateAssignmentRequest) error {
	if req.RoomID == nil && req.TimeSlotID == nil {
		return apperrors.NewValidationError("nothing to update, provide room_id and/or time_slot_id")
	}

	err := s.db.WithSerializableTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		assignmentRepo := s.repos.AssignmentRepository.WithTx(tx)
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)
		roomRepo := s.repos.RoomRepository.WithTx(tx)
		timeslotRepo := s.repos.TimeSlotRepository.WithTx(tx)
		availabilityRepo := s.repos.AvailabilityRepository.WithTx(tx)

		detail, err := assignmentRepo.GetDetail(ctx, assignmentID)
		if err != nil {
			return err
		}
		if detail == nil {
			return apperrors.NewCustomError(apperrors.ErrAssignmentNotFound,
				fmt.Sprintf("room assignment %d not found", assignmentID))
		}

		targetRoomID := detail.Assignment.RoomID
		targetSlotID := detail.Assignment.TimeSlotID
		if req.RoomID != nil {
			targetRoomID = *req.RoomID
		}
		if req.TimeSlotID != nil {
			targetSlotID = *req.TimeSlotID
		}
		roomChanged := targetRoomID != detail.Assignment.RoomID
		slotChanged := targetSlotID != detail.Assignment.TimeSlotID
		if !roomChanged && !slotChanged {
			return nil
		}

		if roomChanged {
			room, err := roomRepo.GetByID(ctx, targetRoomID)
			if err != nil {
				return err
			}
			if room == nil {
				return apperrors.NewCustomError(apperrors.ErrRoomNotFound, fmt.Sprintf("room %d not found", targetRoomID))
			}
			if room.Type != detail.RequiredRoomType {
				return apperrors.NewCustomError(apperrors.ErrRoomTypeMismatch,
					fmt.Sprintf("room %d is %s, offering requires %s", targetRoomID, room.Type, detail.RequiredRoomType))
			}
			if room.Capacity < detail.Enrollment {
				return apperrors.NewCustomError(apperrors.ErrRoomTooSmall,
					fmt.Sprintf("room %d seats %d, section enrollment is %d", targetRoomID, room.Capacity, detail.Enrollment))
			}
		}

		if slotChanged {
			slots, err := timeslotRepo.GetByIDs(ctx, []int64{targetSlotID}, models.SlotUsageClass)
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				return apperrors.NewCustomError(apperrors.ErrTimeSlotNotFound,
					fmt.Sprintf("time slot %d does not exist or is not a class slot", targetSlotID))
			}
			if detail.InstructorID != nil {
				conflicts, err := availabilityRepo.FindReservationConflicts(ctx, *detail.InstructorID, detail.Assignment.SectionID, []int64{targetSlotID})
				if err != nil {
					return err
				}
				if len(conflicts) > 0 {
					return apperrors.NewCustomError(apperrors.ErrSlotUnavailable,
						"the instructor or section is already booked at the target slot")
				}
			} else {
				// Orphaned assignment: no reservation to carry an instructor,
				// but the section must still be free at the target slot
				free, err := availabilityRepo.IsFree(ctx, repositories.KindSection, detail.Assignment.SectionID, targetSlotID)
				if err != nil {
					return err
				}
				if !free {
					return apperrors.NewCustomError(apperrors.ErrSlotUnavailable,
						"the section is already booked at the target slot")
				}
			}
		}

		taken, err := assignmentRepo.IsRoomTakenAt(ctx, targetRoomID, targetSlotID, assignmentID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.NewCustomError(apperrors.ErrRoomOccupied,
				fmt.Sprintf("room %d is already assigned at time slot %d", targetRoomID, targetSlotID))
		}

		detail.Assignment.RoomID = targetRoomID
		detail.Assignment.TimeSlotID = targetSlotID
		if err := assignmentRepo.Update(ctx, &detail.Assignment); err != nil {
			return err
		}

		if slotChanged && detail.ReservationID != nil {
			return reservationRepo.UpdateSlotByAssignment(ctx, assignmentID, targetSlotID)
		}

		return nil
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) || dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("a concurrent operation claimed the target room or slot, please retry")
		}
		return err
	}

	logger.Info().Int64("assignmentId", assignmentID).Msg("Room assignment updated")

	return nil
}

// DeleteAssignment removes an assignment. Reservations referencing it survive
// without a room and are picked up by the next auto-assign run.
func (s *RoomService) DeleteAssignment(ctx context.Context, assignmentID int64) error {
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)
		assignmentRepo := s.repos.AssignmentRepository.WithTx(tx)

		if err := reservationRepo.ClearRoomAssignment(ctx, assignmentID); err != nil {
			return err
		}

		if err := assignmentRepo.Delete(ctx, assignmentID); err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewCustomError(apperrors.ErrAssignmentNotFound,
					fmt.Sprintf("room assignment %d not found", assignmentID))
			}
			return err
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("assignmentId", assignmentID).Msg("Room assignment deleted")

	return nil
}
