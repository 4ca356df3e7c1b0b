package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// RoomOccupancy is one (room, slot) claim from the assignment table
type RoomOccupancy struct {
	RoomID     int64
	TimeSlotID int64
}

// AssignmentRepository handles database operations for room assignments
type AssignmentRepository struct {
	db db.Querier
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db db.Querier) *AssignmentRepository {
	return &AssignmentRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *AssignmentRepository) WithTx(tx pgx.Tx) *AssignmentRepository {
	return &AssignmentRepository{db: tx}
}

// GetByID retrieves a room assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.RoomAssignment, error) {
	query := `
		SELECT id, room_id, section_id, time_slot_id, semester, offering_id, created_at
		FROM room_assignments
		WHERE id = $1
	`

	var assignment models.RoomAssignment
	err := r.db.QueryRow(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.RoomID,
		&assignment.SectionID,
		&assignment.TimeSlotID,
		&assignment.Semester,
		&assignment.OfferingID,
		&assignment.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving room assignment: %w", err)
	}

	return &assignment, nil
}

// AssignmentDetail is an assignment joined with the validation context an
// edit needs: the referencing live reservation (if any), the section's
// enrollment and the course's required room type.
type AssignmentDetail struct {
	Assignment       models.RoomAssignment
	ReservationID    *int64
	RequestID        *int64
	InstructorID     *int64
	Enrollment       int
	RequiredRoomType models.RoomType
}

// GetDetail retrieves an assignment with its reservation and offering context
// in one query.
func (r *AssignmentRepository) GetDetail(ctx context.Context, id int64) (*AssignmentDetail, error) {
	query := `
		SELECT ra.id, ra.room_id, ra.section_id, ra.time_slot_id, ra.semester, ra.offering_id, ra.created_at,
		       sr.id, sr.request_id, sr.instructor_id,
		       s.student_count, c.required_room_type
		FROM room_assignments ra
		JOIN sections s ON s.id = ra.section_id
		JOIN course_offerings o ON o.id = ra.offering_id
		JOIN courses c ON c.id = o.course_id
		LEFT JOIN slot_reservations sr ON sr.room_assignment_id = ra.id AND sr.status = 'RESERVED'
		WHERE ra.id = $1
	`

	var detail AssignmentDetail
	err := r.db.QueryRow(ctx, query, id).Scan(
		&detail.Assignment.ID,
		&detail.Assignment.RoomID,
		&detail.Assignment.SectionID,
		&detail.Assignment.TimeSlotID,
		&detail.Assignment.Semester,
		&detail.Assignment.OfferingID,
		&detail.Assignment.CreatedAt,
		&detail.ReservationID,
		&detail.RequestID,
		&detail.InstructorID,
		&detail.Enrollment,
		&detail.RequiredRoomType,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving room assignment detail: %w", err)
	}

	return &detail, nil
}

// BulkCreate inserts one assignment per row in a single statement and returns
// the created rows keyed back by (section, slot) so callers can link them to
// their reservations. roomIDs, sectionIDs, slotIDs, semesters and offeringIDs
// are parallel arrays.
func (r *AssignmentRepository) BulkCreate(ctx context.Context, roomIDs, sectionIDs, slotIDs []int64, semesters []int, offeringIDs []int64) ([]models.RoomAssignment, error) {
	query := `
		INSERT INTO room_assignments (room_id, section_id, time_slot_id, semester, offering_id)
		SELECT t.room_id, t.section_id, t.slot_id, t.semester, t.offering_id
		FROM unnest($1::bigint[], $2::bigint[], $3::bigint[], $4::int[], $5::bigint[])
		     AS t(room_id, section_id, slot_id, semester, offering_id)
		RETURNING id, room_id, section_id, time_slot_id, semester, offering_id, created_at
	`

	rows, err := r.db.Query(ctx, query, roomIDs, sectionIDs, slotIDs, semesters, offeringIDs)
	if err != nil {
		return nil, fmt.Errorf("error creating room assignments: %w", err)
	}
	defer rows.Close()

	var created []models.RoomAssignment
	for rows.Next() {
		var a models.RoomAssignment
		if err := rows.Scan(&a.ID, &a.RoomID, &a.SectionID, &a.TimeSlotID, &a.Semester, &a.OfferingID, &a.CreatedAt); err != nil {
			return nil, err
		}
		created = append(created, a)
	}

	return created, rows.Err()
}

// GetOccupanciesForSlots returns every (room, slot) claim touching the given
// slots. This is the resolver's availability snapshot for a single request.
func (r *AssignmentRepository) GetOccupanciesForSlots(ctx context.Context, slotIDs []int64) ([]RoomOccupancy, error) {
	query := `
		SELECT room_id, time_slot_id
		FROM room_assignments
		WHERE time_slot_id = ANY($1)
	`

	rows, err := r.db.Query(ctx, query, slotIDs)
	if err != nil {
		return nil, fmt.Errorf("error retrieving room occupancies: %w", err)
	}
	defer rows.Close()

	return scanOccupancies(rows)
}

// GetAllOccupancies returns every (room, slot) claim. This is the batch
// resolver's whole-table snapshot, read once per auto-assign run.
func (r *AssignmentRepository) GetAllOccupancies(ctx context.Context) ([]RoomOccupancy, error) {
	rows, err := r.db.Query(ctx, `SELECT room_id, time_slot_id FROM room_assignments`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving room occupancies: %w", err)
	}
	defer rows.Close()

	return scanOccupancies(rows)
}

func scanOccupancies(rows pgx.Rows) ([]RoomOccupancy, error) {
	var occupancies []RoomOccupancy
	for rows.Next() {
		var occ RoomOccupancy
		if err := rows.Scan(&occ.RoomID, &occ.TimeSlotID); err != nil {
			return nil, err
		}
		occupancies = append(occupancies, occ)
	}

	return occupancies, rows.Err()
}

// IsRoomTakenAt checks whether another assignment already claims the room at
// the slot, excluding the assignment being edited.
func (r *AssignmentRepository) IsRoomTakenAt(ctx context.Context, roomID, slotID, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM room_assignments
			WHERE room_id = $1 AND time_slot_id = $2 AND id <> $3
		)`,
		roomID, slotID, excludeID).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("error checking room occupancy: %w", err)
	}

	return taken, nil
}

// Update rewrites the room and slot of an existing assignment
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.RoomAssignment) error {
	query := `
		UPDATE room_assignments
		SET room_id = $2, time_slot_id = $3
		WHERE id = $1
	`

	cmdTag, err := r.db.Exec(ctx, query, assignment.ID, assignment.RoomID, assignment.TimeSlotID)
	if err != nil {
		return fmt.Errorf("error updating room assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// Delete removes an assignment row. Reservation references must be cleared
// first (see ReservationRepository.ClearRoomAssignment).
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM room_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting room assignment: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// DeleteOrphans removes assignments no live reservation references.
// Run by the maintenance job.
func (r *AssignmentRepository) DeleteOrphans(ctx context.Context) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		DELETE FROM room_assignments ra
		WHERE NOT EXISTS (
			SELECT 1 FROM slot_reservations sr
			WHERE sr.room_assignment_id = ra.id AND sr.status = 'RESERVED'
		)`)
	if err != nil {
		return 0, fmt.Errorf("error deleting orphaned room assignments: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
