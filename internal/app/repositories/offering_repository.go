package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// ExamCandidate is an offering that still needs an exam, with the context the
// exam scheduler needs to place it.
type ExamCandidate struct {
	OfferingID       int64
	SectionID        int64
	Enrollment       int
	RequiredRoomType models.RoomType
}

// OfferingRepository handles database operations for course offerings
type OfferingRepository struct {
	db db.Querier
}

// NewOfferingRepository creates a new offering repository
func NewOfferingRepository(db db.Querier) *OfferingRepository {
	return &OfferingRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *OfferingRepository) WithTx(tx pgx.Tx) *OfferingRepository {
	return &OfferingRepository{db: tx}
}

// BulkCreate inserts the given offerings in a single statement.
// courseIDs and academicYears are parallel arrays.
func (r *OfferingRepository) BulkCreate(ctx context.Context, courseIDs []int64, sectionID int64, semester, intake int, academicYears []string) (int64, error) {
	query := `
		INSERT INTO course_offerings (course_id, section_id, semester, intake, academic_year)
		SELECT t.course_id, $2, $3, $4, t.academic_year
		FROM unnest($1::bigint[], $5::text[]) AS t(course_id, academic_year)
	`

	cmdTag, err := r.db.Exec(ctx, query, courseIDs, sectionID, semester, intake, academicYears)
	if err != nil {
		return 0, fmt.Errorf("error creating course offerings: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// ListNeedingExam returns offerings of sections currently in the offering's
// semester that have no exam yet, ordered for the deterministic scheduler.
func (r *OfferingRepository) ListNeedingExam(ctx context.Context) ([]ExamCandidate, error) {
	query := `
		SELECT o.id, o.section_id, s.student_count, c.required_room_type
		FROM course_offerings o
		JOIN sections s ON s.id = o.section_id AND s.semester = o.semester
		JOIN courses c ON c.id = o.course_id
		WHERE NOT EXISTS (SELECT 1 FROM exams e WHERE e.offering_id = o.id)
		ORDER BY o.section_id, o.id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving exam candidates: %w", err)
	}
	defer rows.Close()

	var candidates []ExamCandidate
	for rows.Next() {
		var c ExamCandidate
		if err := rows.Scan(&c.OfferingID, &c.SectionID, &c.Enrollment, &c.RequiredRoomType); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}

	return candidates, rows.Err()
}
