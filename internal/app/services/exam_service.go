package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/config"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/dberrors"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// ExamService implements exam schedule generation and invigilator rebalancing
type ExamService struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
	cfg   *config.Config
}

// NewExamService creates a new exam service
func NewExamService(database *db.PostgresDB, repos *repositories.Repositories, cfg *config.Config) *ExamService {
	return &ExamService{
		db:    database,
		repos: repos,
		cfg:   cfg,
	}
}

// GenerateSchedule places an exam for every offering of the current semester
// that has none yet. Each exam gets the first exam slot where its section is
// free and an eligible room exists; offerings that cannot be placed are
// skipped and reported only through the scheduled count. Invigilators are not
// bound here; ResetInvigilators distributes them afterwards.
//
// The run is a fixed number of statements: candidates, slots, existing exam
// occupancies, rooms and one bulk insert. When exams share slot-space with
// classes, the class-side occupancies are read too.
func (s *ExamService) GenerateSchedule(ctx context.Context) (*dto.GenerateScheduleResponse, error) {
	shareClassSlots := s.cfg.Scheduler.ExamsShareClassSlots

	var scheduled int
	err := s.db.WithSerializableTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		offeringRepo := s.repos.OfferingRepository.WithTx(tx)
		timeslotRepo := s.repos.TimeSlotRepository.WithTx(tx)
		examRepo := s.repos.ExamRepository.WithTx(tx)
		roomRepo := s.repos.RoomRepository.WithTx(tx)

		candidates, err := offeringRepo.ListNeedingExam(ctx)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}

		usages := []models.SlotUsage{models.SlotUsageExam}
		if shareClassSlots {
			usages = append(usages, models.SlotUsageClass)
		}
		slots, err := timeslotRepo.GetByUsages(ctx, usages)
		if err != nil {
			return err
		}

		existing, err := examRepo.GetOccupancies(ctx)
		if err != nil {
			return err
		}
		rooms, err := roomRepo.GetAll(ctx)
		if err != nil {
			return err
		}

		picker := NewRoomPicker(rooms, nil)
		sectionBusy := make(map[sectionSlotKey]bool)
		for _, exam := range existing {
			sectionBusy[sectionSlotKey{SectionID: exam.SectionID, TimeSlotID: exam.TimeSlotID}] = true
			picker.Occupy(exam.RoomID, exam.TimeSlotID)
		}

		if shareClassSlots {
			reservationRepo := s.repos.ReservationRepository.WithTx(tx)
			assignmentRepo := s.repos.AssignmentRepository.WithTx(tx)

			classClaims, err := reservationRepo.GetActiveSectionOccupancies(ctx)
			if err != nil {
				return err
			}
			for _, claim := range classClaims {
				sectionBusy[sectionSlotKey{SectionID: claim.SectionID, TimeSlotID: claim.TimeSlotID}] = true
			}

			roomClaims, err := assignmentRepo.GetAllOccupancies(ctx)
			if err != nil {
				return err
			}
			for _, claim := range roomClaims {
				picker.Occupy(claim.RoomID, claim.TimeSlotID)
			}
		}

		var offeringIDs, sectionIDs, slotIDs, roomIDs []int64
		for _, cand := range candidates {
			placed := false
			for _, slot := range slots {
				key := sectionSlotKey{SectionID: cand.SectionID, TimeSlotID: slot.ID}
				if sectionBusy[key] {
					continue
				}
				room, ok := picker.Pick(slot.ID, cand.Enrollment, cand.RequiredRoomType)
				if !ok {
					continue
				}
				sectionBusy[key] = true
				offeringIDs = append(offeringIDs, cand.OfferingID)
				sectionIDs = append(sectionIDs, cand.SectionID)
				slotIDs = append(slotIDs, slot.ID)
				roomIDs = append(roomIDs, room.ID)
				placed = true
				break
			}
			if !placed {
				logger.Warn().Int64("offeringId", cand.OfferingID).Msg("No slot and room pair for exam, skipping")
			}
		}
		if len(offeringIDs) == 0 {
			return nil
		}

		count, err := examRepo.BulkCreate(ctx, offeringIDs, sectionIDs, slotIDs, roomIDs)
		if err != nil {
			return err
		}
		scheduled = int(count)

		return nil
	})
	if err != nil {
		if dberrors.IsSerializationFailure(err) || dberrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflictError("a concurrent operation changed exam occupancy, please retry")
		}
		return nil, err
	}

	logger.Info().Int("scheduled", scheduled).Msg("Exam schedule generated")

	return &dto.GenerateScheduleResponse{ScheduledCount: scheduled}, nil
}

// invigilatorSlotKey identifies one (instructor, slot) invigilation claim
type invigilatorSlotKey struct {
	InstructorID int64
	TimeSlotID   int64
}

// ResetInvigilators rewrites every exam's invigilator by distributing the
// active instructors over the exams in id order, least-loaded first. An
// instructor is never given two exams at the same time slot; a slot holding
// more exams than there are active instructors fails the whole run. Exactly
// three statements: the exam list, the instructor list and one bulk update,
// however many exams there are.
func (s *ExamService) ResetInvigilators(ctx context.Context) (*dto.ResetExamsResponse, error) {
	var resp dto.ResetExamsResponse
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		examRepo := s.repos.ExamRepository.WithTx(tx)
		userRepo := s.repos.UserRepository.WithTx(tx)

		exams, err := examRepo.GetAll(ctx)
		if err != nil {
			return err
		}
		if len(exams) == 0 {
			return nil
		}

		instructors, err := userRepo.ListActiveInstructorIDs(ctx)
		if err != nil {
			return err
		}
		if len(instructors) == 0 {
			return apperrors.NewStateError("no active instructors to invigilate")
		}

		taken := make(map[invigilatorSlotKey]bool)
		load := make(map[int64]int)
		examIDs := make([]int64, len(exams))
		invigilatorIDs := make([]int64, len(exams))
		for i, exam := range exams {
			examIDs[i] = exam.ID
			var pick int64
			picked := false
			for _, id := range instructors {
				if taken[invigilatorSlotKey{InstructorID: id, TimeSlotID: exam.TimeSlotID}] {
					continue
				}
				if !picked || load[id] < load[pick] {
					pick = id
					picked = true
				}
			}
			if !picked {
				return apperrors.NewStateError(
					fmt.Sprintf("time slot %d holds more exams than there are active instructors", exam.TimeSlotID))
			}
			taken[invigilatorSlotKey{InstructorID: pick, TimeSlotID: exam.TimeSlotID}] = true
			load[pick]++
			invigilatorIDs[i] = pick
		}

		count, err := examRepo.BulkUpdateInvigilators(ctx, examIDs, invigilatorIDs)
		if err != nil {
			return err
		}
		resp.ExamsUpdated = int(count)
		resp.Invigilators = len(instructors)

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("examsUpdated", resp.ExamsUpdated).
		Int("invigilators", resp.Invigilators).
		Msg("Exam invigilators rebalanced")

	return &resp, nil
}

// ListExams returns every exam in id order
func (s *ExamService) ListExams(ctx context.Context) ([]models.Exam, error) {
	return s.repos.ExamRepository.GetAll(ctx)
}
