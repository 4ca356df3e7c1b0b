package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// SectionRepository handles database operations for sections and their
// write-once history records.
type SectionRepository struct {
	db db.Querier
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db db.Querier) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *SectionRepository) WithTx(tx pgx.Tx) *SectionRepository {
	return &SectionRepository{db: tx}
}

// GetByID retrieves a section by ID
func (r *SectionRepository) GetByID(ctx context.Context, id int64) (*models.Section, error) {
	query := `
		SELECT id, name, intake, semester, student_count
		FROM sections
		WHERE id = $1
	`

	var section models.Section
	err := r.db.QueryRow(ctx, query, id).Scan(&section.ID, &section.Name, &section.Intake, &section.Semester, &section.StudentCount)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving section: %w", err)
	}

	return &section, nil
}

// OfferingWithInstructor is an offering together with the instructor bound
// through its accepted request, if any
type OfferingWithInstructor struct {
	Offering     models.CourseOffering
	InstructorID *int64
}

// PromotionSnapshot is everything semester rollover needs from the store: the
// section itself plus each of its offerings with the bound instructor.
type PromotionSnapshot struct {
	Section   models.Section
	Offerings []OfferingWithInstructor
}

// GetPromotionSnapshot loads the section and all its offerings with their
// instructors in one query. Rollover builds the history rows and the next
// semester's offerings from this single read.
func (r *SectionRepository) GetPromotionSnapshot(ctx context.Context, sectionID int64) (*PromotionSnapshot, error) {
	query := `
		SELECT s.id, s.name, s.intake, s.semester, s.student_count,
		       o.id, o.course_id, o.section_id, o.semester, o.intake, o.academic_year, o.created_at,
		       cr.instructor_id
		FROM sections s
		LEFT JOIN course_offerings o ON o.section_id = s.id
		LEFT JOIN course_requests cr ON cr.offering_id = o.id AND cr.status = 'ACCEPTED'
		WHERE s.id = $1
		ORDER BY o.id
	`

	rows, err := r.db.Query(ctx, query, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving promotion snapshot: %w", err)
	}
	defer rows.Close()

	var snapshot *PromotionSnapshot
	for rows.Next() {
		var section models.Section
		var offeringID, courseID, offSectionID *int64
		var offSemester, offIntake *int
		var academicYear *string
		var createdAt *time.Time
		var instructorID *int64
		if err := rows.Scan(
			&section.ID, &section.Name, &section.Intake, &section.Semester, &section.StudentCount,
			&offeringID, &courseID, &offSectionID, &offSemester, &offIntake, &academicYear, &createdAt,
			&instructorID,
		); err != nil {
			return nil, err
		}
		if snapshot == nil {
			snapshot = &PromotionSnapshot{Section: section}
		}
		if offeringID == nil {
			continue
		}
		snapshot.Offerings = append(snapshot.Offerings, OfferingWithInstructor{
			Offering: models.CourseOffering{
				ID:           *offeringID,
				CourseID:     *courseID,
				SectionID:    *offSectionID,
				Semester:     *offSemester,
				Intake:       *offIntake,
				AcademicYear: *academicYear,
				CreatedAt:    *createdAt,
			},
			InstructorID: instructorID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// UpdateSemester advances the section's semester pointer
func (r *SectionRepository) UpdateSemester(ctx context.Context, id int64, semester int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sections SET semester = $2 WHERE id = $1`,
		id, semester)
	if err != nil {
		return fmt.Errorf("error updating section semester: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// BulkInsertRecords writes the section's history snapshot in one statement.
// courseIDs, instructorIDs and academicYears are parallel arrays; instructor
// entries may be nil for offerings that never got an instructor.
func (r *SectionRepository) BulkInsertRecords(ctx context.Context, sectionID int64, courseIDs []int64, instructorIDs []*int64, semester int, academicYears []string) (int64, error) {
	query := `
		INSERT INTO section_records (section_id, course_id, instructor_id, semester, academic_year)
		SELECT $1, t.course_id, t.instructor_id, $4, t.academic_year
		FROM unnest($2::bigint[], $3::bigint[], $5::text[]) AS t(course_id, instructor_id, academic_year)
	`

	cmdTag, err := r.db.Exec(ctx, query, sectionID, courseIDs, instructorIDs, semester, academicYears)
	if err != nil {
		return 0, fmt.Errorf("error writing section records: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
