package services

import (
	"sort"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/repositories"
)

// roomSlotKey identifies one (room, slot) claim in the picker's snapshot
type roomSlotKey struct {
	RoomID     int64
	TimeSlotID int64
}

// RoomPicker resolves rooms against an in-memory occupancy snapshot. The
// caller loads rooms and current claims once per operation, then picks
// greedily; every pick records its claim so later picks in the same batch see
// it. Rooms are tried in ascending capacity then id, so the smallest fitting
// room wins and equal candidates resolve deterministically.
type RoomPicker struct {
	rooms    []models.Room
	occupied map[roomSlotKey]bool
}

// NewRoomPicker builds a picker over the given rooms and existing claims
func NewRoomPicker(rooms []models.Room, occupancies []repositories.RoomOccupancy) *RoomPicker {
	sorted := make([]models.Room, len(rooms))
	copy(sorted, rooms)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Capacity != sorted[j].Capacity {
			return sorted[i].Capacity < sorted[j].Capacity
		}
		return sorted[i].ID < sorted[j].ID
	})

	occupied := make(map[roomSlotKey]bool, len(occupancies))
	for _, occ := range occupancies {
		occupied[roomSlotKey{RoomID: occ.RoomID, TimeSlotID: occ.TimeSlotID}] = true
	}

	return &RoomPicker{rooms: sorted, occupied: occupied}
}

// Occupy records an external (room, slot) claim, such as an existing exam
func (p *RoomPicker) Occupy(roomID, slotID int64) {
	p.occupied[roomSlotKey{RoomID: roomID, TimeSlotID: slotID}] = true
}

// IsFree reports whether the room has no claim on the slot in this snapshot
func (p *RoomPicker) IsFree(roomID, slotID int64) bool {
	return !p.occupied[roomSlotKey{RoomID: roomID, TimeSlotID: slotID}]
}

// Pick selects the smallest free room of the required type that fits the
// enrollment, claims it for the slot and returns it. The second return is
// false when no room qualifies.
func (p *RoomPicker) Pick(slotID int64, enrollment int, required models.RoomType) (models.Room, bool) {
	for _, room := range p.rooms {
		if room.Type != required || room.Capacity < enrollment {
			continue
		}
		key := roomSlotKey{RoomID: room.ID, TimeSlotID: slotID}
		if p.occupied[key] {
			continue
		}
		p.occupied[key] = true
		return room, true
	}

	return models.Room{}, false
}
