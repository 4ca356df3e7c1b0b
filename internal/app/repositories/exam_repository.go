package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// ExamRepository handles database operations for exams
type ExamRepository struct {
	db db.Querier
}

// NewExamRepository creates a new exam repository
func NewExamRepository(db db.Querier) *ExamRepository {
	return &ExamRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *ExamRepository) WithTx(tx pgx.Tx) *ExamRepository {
	return &ExamRepository{db: tx}
}

// GetAll retrieves every exam in id order
func (r *ExamRepository) GetAll(ctx context.Context) ([]models.Exam, error) {
	query := `
		SELECT id, offering_id, section_id, time_slot_id, room_id, invigilator_id, created_at
		FROM exams
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving exams: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(&exam.ID, &exam.OfferingID, &exam.SectionID, &exam.TimeSlotID, &exam.RoomID, &exam.InvigilatorID, &exam.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}

	return exams, rows.Err()
}

// BulkCreate inserts the computed exam schedule in one statement.
// The argument slices are parallel arrays.
func (r *ExamRepository) BulkCreate(ctx context.Context, offeringIDs, sectionIDs, slotIDs, roomIDs []int64) (int64, error) {
	query := `
		INSERT INTO exams (offering_id, section_id, time_slot_id, room_id)
		SELECT t.offering_id, t.section_id, t.slot_id, t.room_id
		FROM unnest($1::bigint[], $2::bigint[], $3::bigint[], $4::bigint[])
		     AS t(offering_id, section_id, slot_id, room_id)
	`

	cmdTag, err := r.db.Exec(ctx, query, offeringIDs, sectionIDs, slotIDs, roomIDs)
	if err != nil {
		return 0, fmt.Errorf("error creating exams: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// BulkUpdateInvigilators rewrites invigilator bindings in one statement.
// examIDs and invigilatorIDs are parallel arrays; the round-trip count does
// not grow with the number of exams.
func (r *ExamRepository) BulkUpdateInvigilators(ctx context.Context, examIDs, invigilatorIDs []int64) (int64, error) {
	query := `
		UPDATE exams e
		SET invigilator_id = t.invigilator_id
		FROM unnest($1::bigint[], $2::bigint[]) AS t(exam_id, invigilator_id)
		WHERE e.id = t.exam_id
	`

	cmdTag, err := r.db.Exec(ctx, query, examIDs, invigilatorIDs)
	if err != nil {
		return 0, fmt.Errorf("error updating exam invigilators: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// GetOccupancies returns every (section, slot) and (room, slot) claim held by
// existing exams, for the scheduler's snapshot.
func (r *ExamRepository) GetOccupancies(ctx context.Context) ([]models.Exam, error) {
	query := `
		SELECT id, offering_id, section_id, time_slot_id, room_id, invigilator_id, created_at
		FROM exams
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving exam occupancies: %w", err)
	}
	defer rows.Close()

	var exams []models.Exam
	for rows.Next() {
		var exam models.Exam
		if err := rows.Scan(&exam.ID, &exam.OfferingID, &exam.SectionID, &exam.TimeSlotID, &exam.RoomID, &exam.InvigilatorID, &exam.CreatedAt); err != nil {
			return nil, err
		}
		exams = append(exams, exam)
	}

	return exams, rows.Err()
}
