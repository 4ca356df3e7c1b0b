package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

func unassignedPairRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "section_id", "time_slot_id", "o_id", "semester", "student_count", "required_room_type"})
}

func assignmentDetailRows(reservationID, instructorID *int64, roomID, slotID int64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "room_id", "section_id", "time_slot_id", "semester", "offering_id", "created_at",
		"sr_id", "request_id", "instructor_id", "student_count", "required_room_type",
	}).AddRow(
		int64(501), roomID, int64(2), slotID, 5, int64(9), time.Now(),
		reservationID, i64(17), instructorID, 45, models.RoomClassroom,
	)
}

// Two pending pairs resolve with exactly five statements regardless of
// batch size.
func TestAutoAssignRoomsBatchesWrites(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`WHERE sr.status = 'RESERVED' AND sr.room_assignment_id IS NULL`).
		WillReturnRows(unassignedPairRows().
			AddRow(int64(301), int64(2), int64(21), int64(9), 5, 45, models.RoomClassroom).
			AddRow(int64(302), int64(3), int64(21), int64(10), 5, 25, models.RoomLab))
	mock.ExpectQuery(`SELECT room_id, time_slot_id FROM room_assignments`).
		WillReturnRows(pgxmock.NewRows([]string{"room_id", "time_slot_id"}))
	mock.ExpectQuery(`FROM rooms\s+ORDER BY capacity`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(5), "LAB-1", 30, models.RoomLab).
			AddRow(int64(3), "B-201", 60, models.RoomClassroom))
	mock.ExpectQuery(`INSERT INTO room_assignments`).
		WithArgs([]int64{3, 5}, []int64{2, 3}, []int64{21, 21}, []int{5, 5}, []int64{9, 10}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "room_id", "section_id", "time_slot_id", "semester", "offering_id", "created_at"}).
			AddRow(int64(401), int64(3), int64(2), int64(21), 5, int64(9), time.Now()).
			AddRow(int64(402), int64(5), int64(3), int64(21), 5, int64(10), time.Now()))
	mock.ExpectExec(`UPDATE slot_reservations sr\s+SET room_assignment_id`).
		WithArgs([]int64{301, 302}, []int64{401, 402}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectCommit()

	resp, err := svc.AutoAssignRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, resp.AssignedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoAssignRoomsNothingPending(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`WHERE sr.status = 'RESERVED' AND sr.room_assignment_id IS NULL`).
		WillReturnRows(unassignedPairRows())
	mock.ExpectCommit()

	resp, err := svc.AutoAssignRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A pair with no eligible room is skipped, and with nothing placeable the run
// writes nothing at all.
func TestAutoAssignRoomsSkipsUnplaceablePair(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`WHERE sr.status = 'RESERVED' AND sr.room_assignment_id IS NULL`).
		WillReturnRows(unassignedPairRows().
			AddRow(int64(301), int64(2), int64(21), int64(9), 5, 300, models.RoomAuditorium))
	mock.ExpectQuery(`SELECT room_id, time_slot_id FROM room_assignments`).
		WillReturnRows(pgxmock.NewRows([]string{"room_id", "time_slot_id"}))
	mock.ExpectQuery(`FROM rooms\s+ORDER BY capacity`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(3), "B-201", 60, models.RoomClassroom))
	mock.ExpectCommit()

	resp, err := svc.AutoAssignRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, resp.AssignedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentMovesRoom(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`FROM room_assignments ra\s+JOIN sections`).
		WithArgs(int64(501)).
		WillReturnRows(assignmentDetailRows(i64(301), i64(4), 3, 21))
	mock.ExpectQuery(`FROM rooms\s+WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(2), "B-204", 80, models.RoomClassroom))
	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM room_assignments`).
		WithArgs(int64(2), int64(21), int64(501)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE room_assignments\s+SET room_id = \$2, time_slot_id = \$3`).
		WithArgs(int64(501), int64(2), int64(21)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{RoomID: i64(2)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Moving the slot drags the referencing reservation along.
func TestUpdateAssignmentMovesSlotWithReservation(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`FROM room_assignments ra\s+JOIN sections`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(assignmentDetailRows(i64(301), i64(4), 3, 21))
	mock.ExpectQuery(`FROM time_slots\s+WHERE id = ANY`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(classSlotRows(22))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(emptyConflictRows())
	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM room_assignments`).
		WithArgs(int64(3), int64(22), int64(501)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE room_assignments\s+SET room_id = \$2, time_slot_id = \$3`).
		WithArgs(int64(501), int64(3), int64(22)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE slot_reservations\s+SET time_slot_id = \$2`).
		WithArgs(int64(501), int64(22)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{TimeSlotID: i64(22)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// An assignment nothing references can still be moved; only the section-side
// availability is probed and no reservation follows it.
func TestUpdateAssignmentMovesOrphanedAssignment(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`FROM room_assignments ra\s+JOIN sections`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "room_id", "section_id", "time_slot_id", "semester", "offering_id", "created_at",
			"sr_id", "request_id", "instructor_id", "student_count", "required_room_type",
		}).AddRow(
			int64(501), int64(3), int64(2), int64(21), 5, int64(9), time.Now(),
			(*int64)(nil), (*int64)(nil), (*int64)(nil), 45, models.RoomClassroom,
		))
	mock.ExpectQuery(`FROM time_slots\s+WHERE id = ANY`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(classSlotRows(22))
	mock.ExpectQuery(`SELECT 1 FROM slot_reservations\s+WHERE section_id = \$1`).
		WithArgs(int64(2), int64(22)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM room_assignments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE room_assignments\s+SET room_id = \$2, time_slot_id = \$3`).
		WithArgs(int64(501), int64(3), int64(22)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{TimeSlotID: i64(22)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentRejectsUndersizedRoom(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`FROM room_assignments ra\s+JOIN sections`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(assignmentDetailRows(i64(301), i64(4), 3, 21))
	mock.ExpectQuery(`FROM rooms\s+WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(6), "A-101", 40, models.RoomClassroom))
	mock.ExpectRollback()

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{RoomID: i64(6)})
	assert.ErrorIs(t, err, apperrors.ErrRoomTooSmall)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentRejectsOccupiedRoom(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`FROM room_assignments ra\s+JOIN sections`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(assignmentDetailRows(i64(301), i64(4), 3, 21))
	mock.ExpectQuery(`FROM rooms\s+WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(2), "B-204", 80, models.RoomClassroom))
	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM room_assignments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectRollback()

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{RoomID: i64(2)})
	assert.ErrorIs(t, err, apperrors.ErrRoomOccupied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAssignmentRequiresAField(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	err := svc.UpdateAssignment(context.Background(), 501, &dto.UpdateAssignmentRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NoError(t, mock.ExpectationsWereMet(), "validation must not reach the store")
}

func TestDeleteAssignmentClearsReservationReference(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(`UPDATE slot_reservations SET room_assignment_id = NULL`).
		WithArgs(int64(501)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM room_assignments WHERE id = \$1`).
		WithArgs(int64(501)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := svc.DeleteAssignment(context.Background(), 501)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAssignmentNotFound(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRoomService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectExec(`UPDATE slot_reservations SET room_assignment_id = NULL`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM room_assignments WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := svc.DeleteAssignment(context.Background(), 501)
	assert.ErrorIs(t, err, apperrors.ErrAssignmentNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
