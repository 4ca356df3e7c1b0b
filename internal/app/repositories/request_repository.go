package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// RequestDetail is a course request joined with the offering context the
// allocators need: section, enrollment and required room type. Loading it is
// one query so the per-operation round-trip count stays bounded.
type RequestDetail struct {
	Request          models.CourseRequest
	OfferingID       int64
	SectionID        int64
	Semester         int
	CourseID         int64
	CourseCode       string
	RequiredRoomType models.RoomType
	Enrollment       int
}

// RequestRepository handles database operations for course requests
type RequestRepository struct {
	db db.Querier
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db db.Querier) *RequestRepository {
	return &RequestRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *RequestRepository) WithTx(tx pgx.Tx) *RequestRepository {
	return &RequestRepository{db: tx}
}

// GetDetail retrieves a request with its offering, section and course context
func (r *RequestRepository) GetDetail(ctx context.Context, id int64) (*RequestDetail, error) {
	query := `
		SELECT cr.id, cr.offering_id, cr.instructor_id, cr.status, cr.created_at, cr.updated_at, cr.accepted_at,
		       o.section_id, o.semester, o.course_id,
		       c.code, c.required_room_type,
		       s.student_count
		FROM course_requests cr
		JOIN course_offerings o ON o.id = cr.offering_id
		JOIN courses c ON c.id = o.course_id
		JOIN sections s ON s.id = o.section_id
		WHERE cr.id = $1
	`

	var detail RequestDetail
	err := r.db.QueryRow(ctx, query, id).Scan(
		&detail.Request.ID,
		&detail.Request.OfferingID,
		&detail.Request.InstructorID,
		&detail.Request.Status,
		&detail.Request.CreatedAt,
		&detail.Request.UpdatedAt,
		&detail.Request.AcceptedAt,
		&detail.SectionID,
		&detail.Semester,
		&detail.CourseID,
		&detail.CourseCode,
		&detail.RequiredRoomType,
		&detail.Enrollment,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving course request: %w", err)
	}
	detail.OfferingID = detail.Request.OfferingID

	return &detail, nil
}

// AcceptIfPending binds the instructor with a single conditional update. The
// status guard makes concurrent accepts resolve with exactly one winner:
// the loser sees zero rows affected.
func (r *RequestRepository) AcceptIfPending(ctx context.Context, requestID, instructorID int64) (bool, error) {
	query := `
		UPDATE course_requests
		SET instructor_id = $2, status = 'ACCEPTED', accepted_at = $3, updated_at = $3
		WHERE id = $1 AND status = 'PENDING'
	`

	cmdTag, err := r.db.Exec(ctx, query, requestID, instructorID, time.Now())
	if err != nil {
		return false, fmt.Errorf("error accepting course request: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

// Exists reports whether a request row exists at all. Used to tell a lost
// accept race (409) apart from an unknown id (404).
func (r *RequestRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM course_requests WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking request existence: %w", err)
	}
	return exists, nil
}

// ResetToPending clears the instructor binding and returns the request to the
// pending state.
func (r *RequestRepository) ResetToPending(ctx context.Context, id int64) error {
	query := `
		UPDATE course_requests
		SET instructor_id = NULL, status = 'PENDING', accepted_at = NULL, updated_at = $2
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("error resetting course request: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// UpdateInstructor rebinds an accepted request to another instructor
func (r *RequestRepository) UpdateInstructor(ctx context.Context, id, instructorID int64) error {
	query := `
		UPDATE course_requests
		SET instructor_id = $2, updated_at = $3
		WHERE id = $1 AND status = 'ACCEPTED'
	`

	cmdTag, err := r.db.Exec(ctx, query, id, instructorID, time.Now())
	if err != nil {
		return fmt.Errorf("error reassigning course request: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}
