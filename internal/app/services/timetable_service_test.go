package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unitime/internal/app/models"
	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

// newMockDB wires a pgxmock pool into the service stack. The mock is strict:
// any statement not expected here fails the test, which pins the per-operation
// round-trip counts.
func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, *db.PostgresDB, *repositories.Repositories) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	database := db.NewPostgresDBFromPool(mock)
	return mock, database, repositories.NewRepositories(mock)
}

func i64(v int64) *int64 {
	return &v
}

func requestDetailRows(instructorID *int64, status models.RequestStatus) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "offering_id", "instructor_id", "status", "created_at", "updated_at", "accepted_at",
		"section_id", "semester", "course_id", "code", "required_room_type", "student_count",
	}).AddRow(
		int64(17), int64(9), instructorID, status, now, now, &now,
		int64(2), 5, int64(11), "CSE-303", models.RoomClassroom, 45,
	)
}

func classSlotRows(ids ...int64) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "day_of_week", "start_time", "end_time", "label", "shift", "usage"})
	for _, id := range ids {
		rows.AddRow(id, "MONDAY", "09:00", "10:30", "MON-1", models.ShiftMorning, models.SlotUsageClass)
	}
	return rows
}

func emptyConflictRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{"time_slot_id"})
}

func TestSelectSlotsReservesAllSlotsWithRooms(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	slotIDs := []int64{21, 22, 23}

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM time_slots\s+WHERE id = ANY`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(classSlotRows(slotIDs...))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(emptyConflictRows())
	mock.ExpectQuery(`SELECT room_id, time_slot_id\s+FROM room_assignments`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"room_id", "time_slot_id"}))
	mock.ExpectQuery(`FROM rooms`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(3), "B-201", 60, models.RoomClassroom))
	mock.ExpectQuery(`INSERT INTO room_assignments`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "room_id", "section_id", "time_slot_id", "semester", "offering_id", "created_at"}).
			AddRow(int64(101), int64(3), int64(2), int64(21), 5, int64(9), time.Now()).
			AddRow(int64(102), int64(3), int64(2), int64(22), 5, int64(9), time.Now()).
			AddRow(int64(103), int64(3), int64(2), int64(23), 5, int64(9), time.Now()))
	mock.ExpectExec(`INSERT INTO slot_reservations`).
		WithArgs(int64(17), int64(4), int64(2), slotIDs, []int64{101, 102, 103}).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))
	mock.ExpectCommit()

	reserved, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: slotIDs})
	require.NoError(t, err)
	assert.Equal(t, 3, reserved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSlotsAbortsOnConflictWithoutWrites(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	slotIDs := []int64{21, 22}

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM time_slots\s+WHERE id = ANY`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(classSlotRows(slotIDs...))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"time_slot_id"}).AddRow(int64(22)))
	mock.ExpectRollback()

	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: slotIDs})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet(), "no writes may happen after a conflict")
}

func TestSelectSlotsRejectsForeignRequest(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(99), models.RequestAccepted))
	mock.ExpectRollback()

	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: []int64{21}})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSlotsRejectsPendingRequest(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(nil, models.RequestPending))
	mock.ExpectRollback()

	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: []int64{21}})
	assert.ErrorIs(t, err, apperrors.ErrRequestNotAccepted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSlotsRejectsDuplicateSlotIDs(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	// Validation fails before any statement runs
	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: []int64{21, 21}})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSlotsRejectsSecondSelection(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: []int64{21}})
	assert.ErrorIs(t, err, apperrors.ErrRequestHasReservations)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectSlotsFailsWhenNoRoomFits(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`FROM time_slots\s+WHERE id = ANY`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(classSlotRows(21))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(emptyConflictRows())
	mock.ExpectQuery(`SELECT room_id, time_slot_id\s+FROM room_assignments`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"room_id", "time_slot_id"}))
	mock.ExpectQuery(`FROM rooms`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "capacity", "room_type"}).
			AddRow(int64(5), "LAB-1", 30, models.RoomLab))
	mock.ExpectRollback()

	_, err := svc.SelectSlots(context.Background(), 4, &dto.SelectSlotsRequest{RequestID: 17, TimeSlotIDs: []int64{21}})
	assert.ErrorIs(t, err, apperrors.ErrNoEligibleRoom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUndoSelectionReleasesReservations(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectExec(`WITH target AS`).
		WithArgs(int64(17), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	released, err := svc.UndoSelection(context.Background(), 4, false, 17)
	require.NoError(t, err)
	assert.Equal(t, 3, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The release statement must read each reservation's assignment id before the
// update nulls it, and drive the orphan delete from that pre-update snapshot.
// An UPDATE ... RETURNING would see only the nulled column and delete nothing.
func TestUndoSelectionDeletesOrphanedAssignments(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`(?s)WITH target AS \(\s*SELECT id, room_assignment_id\s+FROM slot_reservations`+
		`.*DELETE FROM room_assignments ra`+
		`.*SELECT DISTINCT room_assignment_id FROM target`).
		WithArgs(int64(17), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	released, err := svc.UndoSelection(context.Background(), 4, false, 17)
	require.NoError(t, err)
	assert.Equal(t, 2, released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A failing rollback must not swallow the error that triggered it; the caller
// still matches the sentinel and the middleware maps the right status.
func TestRollbackFailureKeepsOriginalError(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(99)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback().WillReturnError(errors.New("connection closed"))

	_, err := svc.UndoSelection(context.Background(), 4, false, 99)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUndoSelectionWithoutReservationsFails(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewTimetableService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM slot_reservations`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.UndoSelection(context.Background(), 4, false, 17)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
	assert.NoError(t, mock.ExpectationsWereMet())
}
