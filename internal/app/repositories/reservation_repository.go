package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// UnassignedPair is a live reservation without a room, joined with the
// context the resolver needs to pick one.
type UnassignedPair struct {
	ReservationID    int64
	SectionID        int64
	TimeSlotID       int64
	OfferingID       int64
	Semester         int
	Enrollment       int
	RequiredRoomType models.RoomType
}

// ReservationRepository handles database operations for slot reservations.
// All multi-row writes are single bulk statements so the round-trip count of
// the owning operation does not grow with the number of slots.
type ReservationRepository struct {
	db db.Querier
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db db.Querier) *ReservationRepository {
	return &ReservationRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *ReservationRepository) WithTx(tx pgx.Tx) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

// BulkCreate inserts one reservation per slot in a single statement.
// slotIDs and assignmentIDs are parallel arrays.
func (r *ReservationRepository) BulkCreate(ctx context.Context, requestID, instructorID, sectionID int64, slotIDs, assignmentIDs []int64) (int64, error) {
	query := `
		INSERT INTO slot_reservations (request_id, instructor_id, section_id, time_slot_id, room_assignment_id, status)
		SELECT $1, $2, $3, t.slot_id, t.assignment_id, 'RESERVED'
		FROM unnest($4::bigint[], $5::bigint[]) AS t(slot_id, assignment_id)
	`

	cmdTag, err := r.db.Exec(ctx, query, requestID, instructorID, sectionID, slotIDs, assignmentIDs)
	if err != nil {
		return 0, fmt.Errorf("error creating slot reservations: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// ReleaseByRequest cancels every live reservation of the request and deletes
// the room assignments left without a referencing reservation, in one
// statement. This is the exact inverse of a successful slot selection.
// The returned count is the number of orphaned room assignments deleted.
func (r *ReservationRepository) ReleaseByRequest(ctx context.Context, requestID int64) (int64, error) {
	// target captures the assignment ids before the UPDATE nulls them;
	// UPDATE ... RETURNING would only yield the post-update values. The
	// UPDATE's writes are not visible to the outer DELETE (same snapshot),
	// so the orphan check excludes the just-released reservation ids.
	query := `
		WITH target AS (
			SELECT id, room_assignment_id
			FROM slot_reservations
			WHERE request_id = $1 AND status = 'RESERVED'
		), released AS (
			UPDATE slot_reservations sr
			SET status = 'CANCELLED', room_assignment_id = NULL, cancelled_at = $2
			FROM target t
			WHERE sr.id = t.id
		)
		DELETE FROM room_assignments ra
		WHERE ra.id IN (
			SELECT DISTINCT room_assignment_id FROM target WHERE room_assignment_id IS NOT NULL
		)
		AND NOT EXISTS (
			SELECT 1 FROM slot_reservations live
			WHERE live.room_assignment_id = ra.id
			  AND live.status = 'RESERVED'
			  AND live.id NOT IN (SELECT id FROM target)
		)
	`

	cmdTag, err := r.db.Exec(ctx, query, requestID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("error releasing slot reservations: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// GetActiveByRequest retrieves the request's live reservations in slot order
func (r *ReservationRepository) GetActiveByRequest(ctx context.Context, requestID int64) ([]models.SlotReservation, error) {
	query := `
		SELECT id, request_id, instructor_id, section_id, time_slot_id, room_assignment_id, status, created_at
		FROM slot_reservations
		WHERE request_id = $1 AND status = 'RESERVED'
		ORDER BY time_slot_id
	`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving slot reservations: %w", err)
	}
	defer rows.Close()

	var reservations []models.SlotReservation
	for rows.Next() {
		var res models.SlotReservation
		if err := rows.Scan(&res.ID, &res.RequestID, &res.InstructorID, &res.SectionID, &res.TimeSlotID, &res.RoomAssignmentID, &res.Status, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	return reservations, rows.Err()
}

// CountActiveByRequest counts the request's live reservations
func (r *ReservationRepository) CountActiveByRequest(ctx context.Context, requestID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM slot_reservations WHERE request_id = $1 AND status = 'RESERVED'`,
		requestID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting slot reservations: %w", err)
	}
	return count, nil
}

// UpdateInstructorByRequest moves every live reservation of the request to a
// new instructor. Rooms and slots stay untouched.
func (r *ReservationRepository) UpdateInstructorByRequest(ctx context.Context, requestID, instructorID int64) (int64, error) {
	query := `
		UPDATE slot_reservations
		SET instructor_id = $2
		WHERE request_id = $1 AND status = 'RESERVED'
	`

	cmdTag, err := r.db.Exec(ctx, query, requestID, instructorID)
	if err != nil {
		return 0, fmt.Errorf("error updating reservation instructor: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// SetRoomAssignments links reservations to their assignments in one bulk
// update. reservationIDs and assignmentIDs are parallel arrays.
func (r *ReservationRepository) SetRoomAssignments(ctx context.Context, reservationIDs, assignmentIDs []int64) (int64, error) {
	query := `
		UPDATE slot_reservations sr
		SET room_assignment_id = t.assignment_id
		FROM unnest($1::bigint[], $2::bigint[]) AS t(reservation_id, assignment_id)
		WHERE sr.id = t.reservation_id
	`

	cmdTag, err := r.db.Exec(ctx, query, reservationIDs, assignmentIDs)
	if err != nil {
		return 0, fmt.Errorf("error linking room assignments: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}

// UpdateSlotByAssignment moves the live reservation referencing the assignment
// to a new time slot. Used when an assignment edit changes the slot, so the
// reservation and its assignment stay on the same slot.
func (r *ReservationRepository) UpdateSlotByAssignment(ctx context.Context, assignmentID, slotID int64) error {
	query := `
		UPDATE slot_reservations
		SET time_slot_id = $2
		WHERE room_assignment_id = $1 AND status = 'RESERVED'
	`

	_, err := r.db.Exec(ctx, query, assignmentID, slotID)
	if err != nil {
		return fmt.Errorf("error moving reservation slot: %w", err)
	}
	return nil
}

// ClearRoomAssignment unlinks every reservation pointing at the assignment.
// The reservation survives and must be re-resolved.
func (r *ReservationRepository) ClearRoomAssignment(ctx context.Context, assignmentID int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE slot_reservations SET room_assignment_id = NULL WHERE room_assignment_id = $1`,
		assignmentID)
	if err != nil {
		return fmt.Errorf("error clearing room assignment reference: %w", err)
	}
	return nil
}

// FindUnassigned returns every live reservation without a room, with section
// enrollment and required room type joined in, ordered for the deterministic
// batch resolver (section id, then slot id).
func (r *ReservationRepository) FindUnassigned(ctx context.Context) ([]UnassignedPair, error) {
	query := `
		SELECT sr.id, sr.section_id, sr.time_slot_id, o.id, o.semester, s.student_count, c.required_room_type
		FROM slot_reservations sr
		JOIN course_requests cr ON cr.id = sr.request_id
		JOIN course_offerings o ON o.id = cr.offering_id
		JOIN sections s ON s.id = sr.section_id
		JOIN courses c ON c.id = o.course_id
		WHERE sr.status = 'RESERVED' AND sr.room_assignment_id IS NULL
		ORDER BY sr.section_id, sr.time_slot_id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving unassigned reservations: %w", err)
	}
	defer rows.Close()

	var pairs []UnassignedPair
	for rows.Next() {
		var pair UnassignedPair
		if err := rows.Scan(&pair.ReservationID, &pair.SectionID, &pair.TimeSlotID, &pair.OfferingID, &pair.Semester, &pair.Enrollment, &pair.RequiredRoomType); err != nil {
			return nil, err
		}
		pairs = append(pairs, pair)
	}

	return pairs, rows.Err()
}

// ScheduleRow is one reserved slot joined with its course and room context
type ScheduleRow struct {
	ReservationID int64
	RequestID     int64
	SectionID     int64
	CourseCode    string
	TimeSlot      models.TimeSlot
	Room          *models.Room
}

// GetScheduleByInstructor returns the instructor's live reservations with
// slot, course and room context, ordered by slot id.
func (r *ReservationRepository) GetScheduleByInstructor(ctx context.Context, instructorID int64) ([]ScheduleRow, error) {
	query := `
		SELECT sr.id, sr.request_id, sr.section_id, c.code,
		       ts.id, ts.day_of_week, ts.start_time, ts.end_time, ts.label, ts.shift, ts.usage,
		       rm.id, rm.name, rm.capacity, rm.room_type
		FROM slot_reservations sr
		JOIN course_requests cr ON cr.id = sr.request_id
		JOIN course_offerings o ON o.id = cr.offering_id
		JOIN courses c ON c.id = o.course_id
		JOIN time_slots ts ON ts.id = sr.time_slot_id
		LEFT JOIN room_assignments ra ON ra.id = sr.room_assignment_id
		LEFT JOIN rooms rm ON rm.id = ra.room_id
		WHERE sr.instructor_id = $1 AND sr.status = 'RESERVED'
		ORDER BY ts.id
	`

	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving instructor schedule: %w", err)
	}
	defer rows.Close()

	var schedule []ScheduleRow
	for rows.Next() {
		var row ScheduleRow
		var roomID *int64
		var roomName *string
		var roomCapacity *int
		var roomType *models.RoomType
		if err := rows.Scan(
			&row.ReservationID, &row.RequestID, &row.SectionID, &row.CourseCode,
			&row.TimeSlot.ID, &row.TimeSlot.DayOfWeek, &row.TimeSlot.StartTime, &row.TimeSlot.EndTime, &row.TimeSlot.Label, &row.TimeSlot.Shift, &row.TimeSlot.Usage,
			&roomID, &roomName, &roomCapacity, &roomType,
		); err != nil {
			return nil, err
		}
		if roomID != nil {
			row.Room = &models.Room{ID: *roomID, Name: *roomName, Capacity: *roomCapacity, Type: *roomType}
		}
		schedule = append(schedule, row)
	}

	return schedule, rows.Err()
}

// SectionOccupancy is one live (section, slot) claim from class scheduling
type SectionOccupancy struct {
	SectionID  int64
	TimeSlotID int64
}

// GetActiveSectionOccupancies returns every live (section, slot) claim. The
// exam scheduler reads it when exams share slot-space with classes.
func (r *ReservationRepository) GetActiveSectionOccupancies(ctx context.Context) ([]SectionOccupancy, error) {
	query := `
		SELECT DISTINCT section_id, time_slot_id
		FROM slot_reservations
		WHERE status = 'RESERVED'
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving section occupancies: %w", err)
	}
	defer rows.Close()

	var occupancies []SectionOccupancy
	for rows.Next() {
		var occ SectionOccupancy
		if err := rows.Scan(&occ.SectionID, &occ.TimeSlotID); err != nil {
			return nil, err
		}
		occupancies = append(occupancies, occ)
	}

	return occupancies, rows.Err()
}

// PurgeCancelled deletes soft-cancelled reservations older than the cutoff.
// Run by the maintenance job, never by request handlers.
func (r *ReservationRepository) PurgeCancelled(ctx context.Context, before time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM slot_reservations WHERE status = 'CANCELLED' AND cancelled_at < $1`,
		before)
	if err != nil {
		return 0, fmt.Errorf("error purging cancelled reservations: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
