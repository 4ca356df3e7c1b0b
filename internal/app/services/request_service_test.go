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
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

func TestAcceptBindsInstructor(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	// A single conditional update, no transaction
	mock.ExpectExec(`UPDATE course_requests`).
		WithArgs(int64(17), int64(4), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.Accept(context.Background(), 4, 17)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptLosesRaceToOtherInstructor(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectExec(`UPDATE course_requests`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM course_requests`).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := svc.Accept(context.Background(), 4, 17)
	assert.ErrorIs(t, err, apperrors.ErrRequestAlreadyTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptUnknownRequest(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectExec(`UPDATE course_requests`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM course_requests`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := svc.Accept(context.Background(), 4, 17)
	assert.ErrorIs(t, err, apperrors.ErrRequestNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUndoAcceptReleasesSlotsAndResetsRequest(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectExec(`WITH target AS`).
		WithArgs(int64(17), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`UPDATE course_requests\s+SET instructor_id = NULL, status = 'PENDING'`).
		WithArgs(int64(17), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.UndoAccept(context.Background(), 4, false, 17)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUndoAcceptRejectsForeignCaller(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(99), models.RequestAccepted))
	mock.ExpectRollback()

	err := svc.UndoAccept(context.Background(), 4, false, 17)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUndoAcceptAllowsAdmin(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(99), models.RequestAccepted))
	mock.ExpectExec(`WITH target AS`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`UPDATE course_requests\s+SET instructor_id = NULL, status = 'PENDING'`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.UndoAccept(context.Background(), 1, true, 17)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func userRow(id int64, role models.RoleType, active bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "email", "password", "first_name", "last_name", "role_type", "is_active", "created_at", "updated_at", "last_login_at",
	}).AddRow(id, "i@unitime.app", "hash", "Ayse", "Yilmaz", role, active, now, now, (*time.Time)(nil))
}

func TestReassignMovesRequestAndReservations(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(int64(17)).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(userRow(7, models.RoleInstructor, true))
	mock.ExpectQuery(`FROM slot_reservations\s+WHERE request_id = \$1 AND status = 'RESERVED'`).
		WithArgs(int64(17)).
		WillReturnRows(pgxmock.NewRows([]string{"id", "request_id", "instructor_id", "section_id", "time_slot_id", "room_assignment_id", "status", "created_at"}).
			AddRow(int64(301), int64(17), int64(4), int64(2), int64(21), i64(101), models.ReservationReserved, time.Now()).
			AddRow(int64(302), int64(17), int64(4), int64(2), int64(22), i64(102), models.ReservationReserved, time.Now()))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs([]int64{21, 22}, int64(7), int64(17)).
		WillReturnRows(emptyConflictRows())
	mock.ExpectExec(`UPDATE slot_reservations\s+SET instructor_id = \$2`).
		WithArgs(int64(17), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(`UPDATE course_requests\s+SET instructor_id = \$2`).
		WithArgs(int64(17), int64(7), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := svc.Reassign(context.Background(), 17, 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassignRejectsBookedInstructor(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(userRow(7, models.RoleInstructor, true))
	mock.ExpectQuery(`FROM slot_reservations\s+WHERE request_id = \$1 AND status = 'RESERVED'`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "request_id", "instructor_id", "section_id", "time_slot_id", "room_assignment_id", "status", "created_at"}).
			AddRow(int64(301), int64(17), int64(4), int64(2), int64(21), i64(101), models.ReservationReserved, time.Now()))
	mock.ExpectQuery(`SELECT DISTINCT time_slot_id`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"time_slot_id"}).AddRow(int64(21)))
	mock.ExpectRollback()

	err := svc.Reassign(context.Background(), 17, 7)
	assert.ErrorIs(t, err, apperrors.ErrSlotUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReassignRejectsInactiveInstructor(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewRequestService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.Serializable})
	mock.ExpectQuery(`SELECT cr.id, cr.offering_id`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(requestDetailRows(i64(4), models.RequestAccepted))
	mock.ExpectQuery(`FROM users\s+WHERE id = \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(userRow(7, models.RoleInstructor, false))
	mock.ExpectRollback()

	err := svc.Reassign(context.Background(), 17, 7)
	assert.ErrorIs(t, err, apperrors.ErrInstructorNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
