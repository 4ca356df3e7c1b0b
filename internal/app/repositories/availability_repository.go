package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// EntityKind selects which non-overlap dimension an availability check runs on
type EntityKind string

const (
	KindInstructor EntityKind = "instructor"
	KindSection    EntityKind = "section"
	KindRoom       EntityKind = "room"
)

// AvailabilityRepository is the availability index: a composite-key existence
// check over the live reservation and assignment tables. It deliberately has
// no cache of its own; every read runs against the caller's querier so that
// read-then-write stays inside one transaction.
type AvailabilityRepository struct {
	db db.Querier
}

// NewAvailabilityRepository creates a new availability repository
func NewAvailabilityRepository(db db.Querier) *AvailabilityRepository {
	return &AvailabilityRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *AvailabilityRepository) WithTx(tx pgx.Tx) *AvailabilityRepository {
	return &AvailabilityRepository{db: tx}
}

// IsFree reports whether the entity has no live claim on the slot
func (r *AvailabilityRepository) IsFree(ctx context.Context, kind EntityKind, entityID, slotID int64) (bool, error) {
	var query string
	switch kind {
	case KindInstructor:
		query = `
			SELECT EXISTS(
				SELECT 1 FROM slot_reservations
				WHERE instructor_id = $1 AND time_slot_id = $2 AND status = 'RESERVED'
			)`
	case KindSection:
		query = `
			SELECT EXISTS(
				SELECT 1 FROM slot_reservations
				WHERE section_id = $1 AND time_slot_id = $2 AND status = 'RESERVED'
			)`
	case KindRoom:
		query = `
			SELECT EXISTS(
				SELECT 1 FROM room_assignments
				WHERE room_id = $1 AND time_slot_id = $2
			)`
	default:
		return false, fmt.Errorf("unknown entity kind: %s", kind)
	}

	var taken bool
	if err := r.db.QueryRow(ctx, query, entityID, slotID).Scan(&taken); err != nil {
		return false, fmt.Errorf("error checking availability: %w", err)
	}

	return !taken, nil
}

// FindReservationConflicts returns, in one query, the subset of the given
// slots already claimed by the instructor or by the section.
func (r *AvailabilityRepository) FindReservationConflicts(ctx context.Context, instructorID, sectionID int64, slotIDs []int64) ([]int64, error) {
	query := `
		SELECT DISTINCT time_slot_id
		FROM slot_reservations
		WHERE status = 'RESERVED'
		  AND time_slot_id = ANY($1)
		  AND (instructor_id = $2 OR section_id = $3)
		ORDER BY time_slot_id
	`

	rows, err := r.db.Query(ctx, query, slotIDs, instructorID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error checking slot conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []int64
	for rows.Next() {
		var slotID int64
		if err := rows.Scan(&slotID); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, slotID)
	}

	return conflicts, rows.Err()
}

// FindInstructorConflicts returns the subset of slots the instructor already
// holds through other requests. Used by reassignment to re-validate reserved
// slots against the incoming instructor.
func (r *AvailabilityRepository) FindInstructorConflicts(ctx context.Context, instructorID int64, slotIDs []int64, excludeRequestID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT time_slot_id
		FROM slot_reservations
		WHERE status = 'RESERVED'
		  AND time_slot_id = ANY($1)
		  AND instructor_id = $2
		  AND request_id <> $3
		ORDER BY time_slot_id
	`

	rows, err := r.db.Query(ctx, query, slotIDs, instructorID, excludeRequestID)
	if err != nil {
		return nil, fmt.Errorf("error checking instructor conflicts: %w", err)
	}
	defer rows.Close()

	var conflicts []int64
	for rows.Next() {
		var slotID int64
		if err := rows.Scan(&slotID); err != nil {
			return nil, err
		}
		conflicts = append(conflicts, slotID)
	}

	return conflicts, rows.Err()
}

// FreeSlotsFor returns the class slots where both the instructor and the
// section are free, in slot id order.
func (r *AvailabilityRepository) FreeSlotsFor(ctx context.Context, instructorID, sectionID int64) ([]models.TimeSlot, error) {
	query := `
		SELECT ts.id, ts.day_of_week, ts.start_time, ts.end_time, ts.label, ts.shift, ts.usage
		FROM time_slots ts
		WHERE ts.usage = 'CLASS'
		  AND NOT EXISTS (
			SELECT 1 FROM slot_reservations sr
			WHERE sr.time_slot_id = ts.id
			  AND sr.status = 'RESERVED'
			  AND (sr.instructor_id = $1 OR sr.section_id = $2)
		  )
		ORDER BY ts.id
	`

	rows, err := r.db.Query(ctx, query, instructorID, sectionID)
	if err != nil {
		return nil, fmt.Errorf("error listing free slots: %w", err)
	}
	defer rows.Close()

	var slots []models.TimeSlot
	for rows.Next() {
		var slot models.TimeSlot
		if err := rows.Scan(&slot.ID, &slot.DayOfWeek, &slot.StartTime, &slot.EndTime, &slot.Label, &slot.Shift, &slot.Usage); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}
