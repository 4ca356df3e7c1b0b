package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unitime/internal/app/models/dto"
	"github.com/yigit/unitime/internal/pkg/apperrors"
)

func intp(v int) *int {
	return &v
}

func strp(v string) *string {
	return &v
}

func timep(v time.Time) *time.Time {
	return &v
}

func promotionSnapshotRows(offeringCount int) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "name", "intake", "semester", "student_count",
		"o_id", "course_id", "o_section_id", "o_semester", "o_intake", "academic_year", "o_created_at",
		"instructor_id",
	})
	for i := 0; i < offeringCount; i++ {
		rows.AddRow(
			int64(2), "A", 49, 5, 45,
			i64(int64(900+i)), i64(int64(100+i)), i64(2), intp(5), intp(49), strp("2025-2026"), timep(time.Now()),
			i64(int64(4+i%3)),
		)
	}
	if offeringCount == 0 {
		rows.AddRow(
			int64(2), "A", 49, 5, 45,
			(*int64)(nil), (*int64)(nil), (*int64)(nil), (*int)(nil), (*int)(nil), (*string)(nil), (*time.Time)(nil),
			(*int64)(nil),
		)
	}
	return rows
}

// Ten courses roll over with exactly one read and three writes.
func TestPromoteSectionRunsFourStatements(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	courseIDs := make([]int64, 10)
	years := make([]string, 10)
	for i := range courseIDs {
		courseIDs[i] = int64(100 + i)
		years[i] = "2025-2026"
	}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(int64(2)).
		WillReturnRows(promotionSnapshotRows(10))
	mock.ExpectExec(`INSERT INTO section_records`).
		WithArgs(int64(2), courseIDs, pgxmock.AnyArg(), 5, years).
		WillReturnResult(pgxmock.NewResult("INSERT", 10))
	mock.ExpectExec(`INSERT INTO course_offerings`).
		WithArgs(courseIDs, int64(2), 6, 49, years).
		WillReturnResult(pgxmock.NewResult("INSERT", 10))
	mock.ExpectExec(`UPDATE sections SET semester`).
		WithArgs(int64(2), 6).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := svc.Promote(context.Background(), 2, &dto.PromoteSectionRequest{NewSemester: 6, PromoteCourses: true})
	require.NoError(t, err)
	assert.Equal(t, 10, resp.RecordsWritten)
	assert.Equal(t, 10, resp.OfferingsCreated)
	assert.Equal(t, 6, resp.NewSemester)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Offerings created in different academic years keep their own year in both
// the history rows and the recreated offerings.
func TestPromoteKeepsPerOfferingAcademicYear(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	rows := pgxmock.NewRows([]string{
		"id", "name", "intake", "semester", "student_count",
		"o_id", "course_id", "o_section_id", "o_semester", "o_intake", "academic_year", "o_created_at",
		"instructor_id",
	}).
		AddRow(int64(2), "A", 49, 5, 45,
			i64(900), i64(100), i64(2), intp(5), intp(49), strp("2024-2025"), timep(time.Now()), i64(4)).
		AddRow(int64(2), "A", 49, 5, 45,
			i64(901), i64(101), i64(2), intp(5), intp(49), strp("2025-2026"), timep(time.Now()), i64(7))

	years := []string{"2024-2025", "2025-2026"}

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(int64(2)).
		WillReturnRows(rows)
	mock.ExpectExec(`INSERT INTO section_records`).
		WithArgs(int64(2), []int64{100, 101}, pgxmock.AnyArg(), 5, years).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(`INSERT INTO course_offerings`).
		WithArgs([]int64{100, 101}, int64(2), 6, 49, years).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(`UPDATE sections SET semester`).
		WithArgs(int64(2), 6).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := svc.Promote(context.Background(), 2, &dto.PromoteSectionRequest{NewSemester: 6, PromoteCourses: true})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.RecordsWritten)
	assert.Equal(t, 2, resp.OfferingsCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteWithoutCourseRollover(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(promotionSnapshotRows(3))
	mock.ExpectExec(`INSERT INTO section_records`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 3))
	mock.ExpectExec(`UPDATE sections SET semester`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := svc.Promote(context.Background(), 2, &dto.PromoteSectionRequest{NewSemester: 6, PromoteCourses: false})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.RecordsWritten)
	assert.Equal(t, 0, resp.OfferingsCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteUnknownSection(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(int64(999)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := svc.Promote(context.Background(), 999, &dto.PromoteSectionRequest{NewSemester: 6})
	assert.ErrorIs(t, err, apperrors.ErrSectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteRejectsNonAdvancingSemester(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(promotionSnapshotRows(3))
	mock.ExpectRollback()

	_, err := svc.Promote(context.Background(), 2, &dto.PromoteSectionRequest{NewSemester: 5})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPromoteSectionWithoutOfferings(t *testing.T) {
	mock, database, repos := newMockDB(t)
	svc := NewSectionService(database, repos)

	mock.ExpectBeginTx(pgx.TxOptions{})
	mock.ExpectQuery(`FROM sections s\s+LEFT JOIN course_offerings`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(promotionSnapshotRows(0))
	mock.ExpectExec(`UPDATE sections SET semester`).
		WithArgs(int64(2), 6).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	resp, err := svc.Promote(context.Background(), 2, &dto.PromoteSectionRequest{NewSemester: 6, PromoteCourses: true})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.RecordsWritten)
	assert.Equal(t, 0, resp.OfferingsCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
