package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/db"
)

// RoomRepository handles database operations for rooms
type RoomRepository struct {
	db db.Querier
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db db.Querier) *RoomRepository {
	return &RoomRepository{
		db: db,
	}
}

// WithTx returns a view of the repository bound to the given transaction
func (r *RoomRepository) WithTx(tx pgx.Tx) *RoomRepository {
	return &RoomRepository{db: tx}
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	query := `
		SELECT id, name, capacity, room_type
		FROM rooms
		WHERE id = $1
	`

	var room models.Room
	err := r.db.QueryRow(ctx, query, id).Scan(&room.ID, &room.Name, &room.Capacity, &room.Type)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving room: %w", err)
	}

	return &room, nil
}

// GetAll retrieves every room ordered by capacity then id, which is the
// resolver's greedy pick order.
func (r *RoomRepository) GetAll(ctx context.Context) ([]models.Room, error) {
	query := `
		SELECT id, name, capacity, room_type
		FROM rooms
		ORDER BY capacity, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error retrieving rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Type); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}
