package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/dberrors"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// RequestService implements the course request lifecycle: accept, undo and
// administrative reassignment.
type RequestService struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
}

// NewRequestService creates a new request service
func NewRequestService(database *db.PostgresDB, repos *repositories.Repositories) *RequestService {
	return &RequestService{
		db:    database,
		repos: repos,
	}
}

// Accept binds the instructor to a pending course request. The write is a
// single conditional update, so two instructors racing for the same request
// resolve with exactly one winner and no transaction is needed. The loser's
// zero-row result is disambiguated with one existence check.
func (s *RequestService) Accept(ctx context.Context, instructorID, requestID int64) error {
	won, err := s.repos.RequestRepository.AcceptIfPending(ctx, requestID, instructorID)
	if err != nil {
		return err
	}
	if !won {
		exists, err := s.repos.RequestRepository.Exists(ctx, requestID)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.NewCustomError(apperrors.ErrRequestNotFound, fmt.Sprintf("course request %d not found", requestID))
		}
		return apperrors.NewCustomError(apperrors.ErrRequestAlreadyTaken,
			fmt.Sprintf("course request %d is no longer pending", requestID))
	}

	logger.Info().
		Int64("requestId", requestID).
		Int64("instructorId", instructorID).
		Msg("Course request accepted")

	return nil
}

// UndoAccept reverts an accepted request to pending: the instructor binding is
// cleared and every slot reservation of the request is released, atomically.
// The request becomes acceptable by any instructor again.
func (s *RequestService) UndoAccept(ctx context.Context, callerID int64, isAdmin bool, requestID int64) error {
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
				fmt.Sprintf("course request %d is %s, only accepted requests can be undone", requestID, detail.Request.Status))
		}
		if !isAdmin && (detail.Request.InstructorID == nil || *detail.Request.InstructorID != callerID) {
			return apperrors.NewForbiddenError("course request belongs to another instructor")
		}

		if _, err := reservationRepo.ReleaseByRequest(ctx, requestID); err != nil {
			return err
		}

		return requestRepo.ResetToPending(ctx, requestID)
	})
	if err != nil {
		return err
	}

	logger.Info().Int64("requestId", requestID).Msg("Course request reverted to pending")

	return nil
}

// Reassign moves an accepted request, together with all its live slot
// reservations, to another instructor. Slots and rooms stay untouched; only
// the instructor binding changes. The new instructor must be a free, active
// instructor at every reserved slot.
func (s *RequestService) Reassign(ctx context.Context, requestID, instructorID int64) error {
	err := s.db.WithSerializableTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		requestRepo := s.repos.RequestRepository.WithTx(tx)
		reservationRepo := s.repos.ReservationRepository.WithTx(tx)
		availabilityRepo := s.repos.AvailabilityRepository.WithTx(tx)
		userRepo := s.repos.UserRepository.WithTx(tx)

		detail, err := requestRepo.GetDetail(ctx, requestID)
		if err != nil {
			return err
		}
		if detail == nil {
			return apperrors.NewCustomError(apperrors.ErrRequestNotFound, fmt.Sprintf("course request %d not found", requestID))
		}
		if detail.Request.Status != models.RequestAccepted {
			return apperrors.NewCustomError(apperrors.ErrRequestNotAccepted,
				"only accepted requests can be reassigned")
		}
		if detail.Request.InstructorID != nil && *detail.Request.InstructorID == instructorID {
			return apperrors.NewValidationError("request is already assigned to this instructor")
		}

		user, err := userRepo.GetByID(ctx, instructorID)
		if err != nil {
			return err
		}
		if user == nil || user.RoleType != models.RoleInstructor || !user.IsActive {
			return apperrors.NewCustomError(apperrors.ErrInstructorNotFound,
				fmt.Sprintf("no active instructor with id %d", instructorID))
		}

		reservations, err := reservationRepo.GetActiveByRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if len(reservations) > 0 {
			slotIDs := make([]int64, len(reservations))
			for i, res := range reservations {
				slotIDs[i] = res.TimeSlotID
			}

			conflicts, err := availabilityRepo.FindInstructorConflicts(ctx, instructorID, slotIDs, requestID)
			if err != nil {
				return err
			}
			if len(conflicts) > 0 {
				return apperrors.NewCustomError(apperrors.ErrSlotUnavailable,
					"the new instructor is already booked at one or more reserved slots").
					WithDetails(map[string]interface{}{"timeSlots": conflicts})
			}

			if _, err := reservationRepo.UpdateInstructorByRequest(ctx, requestID, instructorID); err != nil {
				return err
			}
		}

		return requestRepo.UpdateInstructor(ctx, requestID, instructorID)
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) || dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("a concurrent operation booked the new instructor, please retry")
		}
		return err
	}

	logger.Info().
		Int64("requestId", requestID).
		Int64("instructorId", instructorID).
		Msg("Course request reassigned")

	return nil
}
