package cron

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"

	"github.com/yigit/unitime/internal/app/repositories"
	"github.com/yigit/unitime/internal/db"
	"github.com/yigit/unitime/internal/pkg/logger"
)

// cancelledRetention is how long soft-cancelled reservations are kept before
// the purge job removes them. Releases are soft so a mistaken undo can be
// investigated; a day is plenty.
const cancelledRetention = 24 * time.Hour

// Maintenance runs the periodic store cleanup: purging soft-cancelled
// reservations and deleting room assignments no live reservation references.
type Maintenance struct {
	scheduler *cron.Cron
	db        *db.PostgresDB
	repos     *repositories.Repositories
}

// NewMaintenance creates the maintenance job runner
func NewMaintenance(database *db.PostgresDB, repos *repositories.Repositories) *Maintenance {
	return &Maintenance{
		scheduler: cron.New(),
		db:        database,
		repos:     repos,
	}
}

// Start schedules the cleanup at the given cron spec and starts the runner.
// An empty spec disables maintenance.
func (m *Maintenance) Start(spec string) error {
	if spec == "" {
		logger.Info().Msg("Maintenance job disabled")
		return nil
	}

	if _, err := m.scheduler.AddFunc(spec, m.runCleanup); err != nil {
		return err
	}

	m.scheduler.Start()
	logger.Info().Str("schedule", spec).Msg("Maintenance job scheduled")
	return nil
}

// Stop halts the runner and waits for a running job to finish
func (m *Maintenance) Stop() {
	ctx := m.scheduler.Stop()
	<-ctx.Done()
}

func (m *Maintenance) runCleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var purged, orphans int64
	err := m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		reservationRepo := m.repos.ReservationRepository.WithTx(tx)
		assignmentRepo := m.repos.AssignmentRepository.WithTx(tx)

		var err error
		purged, err = reservationRepo.PurgeCancelled(ctx, time.Now().Add(-cancelledRetention))
		if err != nil {
			return err
		}

		orphans, err = assignmentRepo.DeleteOrphans(ctx)
		return err
	})
	if err != nil {
		logger.Error().Err(err).Msg("Maintenance cleanup failed")
		return
	}

	logger.Info().
		Int64("purgedReservations", purged).
		Int64("orphanedAssignments", orphans).
		Msg("Maintenance cleanup completed")
}
