package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/apperrors"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// SectionService implements semester rollover for sections
type SectionService struct {
	db    *db.PostgresDB
	repos *repositories.Repositories
}

// NewSectionService creates a new section service
func NewSectionService(database *db.PostgresDB, repos *repositories.Repositories) *SectionService {
	return &SectionService{
		db:    database,
		repos: repos,
	}
}

// Promote rolls the section over into a new semester: the current offerings
// and their bound instructors are frozen into the write-once history, new
// offerings for the same courses are created in the new semester (when
// requested), and the section's semester pointer advances. One read and three
// bulk writes inside a single transaction, whatever the course count.
func (s *SectionService) Promote(ctx context.Context, sectionID int64, req *dto.PromoteSectionRequest) (*dto.PromoteSectionResponse, error) {
	var resp dto.PromoteSectionResponse
	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sectionRepo := s.repos.SectionRepository.WithTx(tx)
		offeringRepo := s.repos.OfferingRepository.WithTx(tx)

		snapshot, err := sectionRepo.GetPromotionSnapshot(ctx, sectionID)
		if err != nil {
			return err
		}
		if snapshot == nil {
			return apperrors.NewCustomError(apperrors.ErrSectionNotFound, fmt.Sprintf("section %d not found", sectionID))
		}
		if req.NewSemester <= snapshot.Section.Semester {
			return apperrors.NewValidationError(
				fmt.Sprintf("new semester %d must be greater than current semester %d", req.NewSemester, snapshot.Section.Semester))
		}

		if len(snapshot.Offerings) > 0 {
			courseIDs := make([]int64, len(snapshot.Offerings))
			instructorIDs := make([]*int64, len(snapshot.Offerings))
			academicYears := make([]string, len(snapshot.Offerings))
			for i, ofi := range snapshot.Offerings {
				courseIDs[i] = ofi.Offering.CourseID
				instructorIDs[i] = ofi.InstructorID
				academicYears[i] = ofi.Offering.AcademicYear
			}

			records, err := sectionRepo.BulkInsertRecords(ctx, sectionID, courseIDs, instructorIDs, snapshot.Section.Semester, academicYears)
			if err != nil {
				return err
			}
			resp.RecordsWritten = int(records)

			if req.PromoteCourses {
				created, err := offeringRepo.BulkCreate(ctx, courseIDs, sectionID, req.NewSemester, snapshot.Section.Intake, academicYears)
				if err != nil {
					return err
				}
				resp.OfferingsCreated = int(created)
			}
		}

		return sectionRepo.UpdateSemester(ctx, sectionID, req.NewSemester)
	})
	if err != nil {
		return nil, err
	}

	resp.SectionID = sectionID
	resp.NewSemester = req.NewSemester

	logger.Info().
		Int64("sectionId", sectionID).
		Int("newSemester", req.NewSemester).
		Int("offeringsCreated", resp.OfferingsCreated).
		Int("recordsWritten", resp.RecordsWritten).
		Msg("Section promoted")

	return &resp, nil
}
