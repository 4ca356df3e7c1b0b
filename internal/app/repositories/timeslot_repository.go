package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// TimeSlotRepository handles database operations for time slots
type TimeSlotRepository struct {
	db db.Querier
}

// NewTimeSlotRepository creates a new time slot repository
func NewTimeSlotRepository(db db.Querier) *TimeSlotRepository {
	return &TimeSlotRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *TimeSlotRepository) WithTx(tx pgx.Tx) *TimeSlotRepository {
	return &TimeSlotRepository{db: tx}
}

// GetByIDs retrieves the slots with the given ids, restricted to a usage.
// The result may be shorter than the input when ids are unknown or belong to
// the other slot-space; callers compare lengths to detect that.
func (r *TimeSlotRepository) GetByIDs(ctx context.Context, ids []int64, usage models.SlotUsage) ([]models.TimeSlot, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, label, shift, usage
		FROM time_slots
		WHERE id = ANY($1) AND usage = $2
	`

	rows, err := r.db.Query(ctx, query, ids, usage)
	if err != nil {
		return nil, fmt.Errorf("error retrieving time slots: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// GetAll retrieves every slot of the given usage in id order
func (r *TimeSlotRepository) GetAll(ctx context.Context, usage models.SlotUsage) ([]models.TimeSlot, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, label, shift, usage
		FROM time_slots
		WHERE usage = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, usage)
	if err != nil {
		return nil, fmt.Errorf("error retrieving time slots: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

// GetByUsages retrieves every slot belonging to any of the given usages in id
// order. The exam scheduler uses it to widen its slot-space to class slots
// when configured to share them.
func (r *TimeSlotRepository) GetByUsages(ctx context.Context, usages []models.SlotUsage) ([]models.TimeSlot, error) {
	query := `
		SELECT id, day_of_week, start_time, end_time, label, shift, usage
		FROM time_slots
		WHERE usage = ANY($1)
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, usages)
	if err != nil {
		return nil, fmt.Errorf("error retrieving time slots: %w", err)
	}
	defer rows.Close()

	return scanTimeSlots(rows)
}

func scanTimeSlots(rows pgx.Rows) ([]models.TimeSlot, error) {
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
