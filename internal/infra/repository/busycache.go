package repository

import (
	"context"
	"time"

	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type busyIntervalRepository struct {
	pool *pgxpool.Pool
}

func NewBusyIntervalRepository(pool *pgxpool.Pool) usecase.BusyIntervalRepository {
	return &busyIntervalRepository{pool: pool}
}

func (r *busyIntervalRepository) ListForRange(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	const query = `
		SELECT start_time, end_time
		FROM busy_intervals
		WHERE instructor_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time`

	rows, err := r.pool.Query(ctx, query, instructorID, from, to)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list busy intervals", err)
	}
	defer rows.Close()

	var intervals []schedule.Interval
	for rows.Next() {
		var iv schedule.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, infra.WrapRepoErr("failed to scan busy interval", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate busy intervals", err)
	}
	return intervals, nil
}

// Replace swaps the cache and the sync status in one transaction so readers
// never observe a wiped cache with a fresh last_synced_at.
func (r *busyIntervalRepository) Replace(ctx context.Context, instructorID uuid.UUID, entries []usecase.BusyEntry, syncedAt time.Time, degraded bool, failedCalendarIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return infra.WrapRepoErr("failed to begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM busy_intervals WHERE instructor_id = $1`, instructorID); err != nil {
		return infra.WrapRepoErr("failed to clear busy cache", err)
	}

	if len(entries) > 0 {
		rows := make([][]any, len(entries))
		for i, e := range entries {
			rows[i] = []any{instructorID, e.CalendarID, e.Interval.Start, e.Interval.End, syncedAt}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"busy_intervals"},
			[]string{"instructor_id", "source_calendar_id", "start_time", "end_time", "synced_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return infra.WrapRepoErr("failed to insert busy intervals", err)
		}
	}

	const upsert = `
		INSERT INTO instructor_sync_status (instructor_id, last_synced_at, degraded, failed_calendar_ids)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (instructor_id) DO UPDATE
		SET last_synced_at = EXCLUDED.last_synced_at,
		    degraded = EXCLUDED.degraded,
		    failed_calendar_ids = EXCLUDED.failed_calendar_ids`

	if failedCalendarIDs == nil {
		failedCalendarIDs = []string{}
	}
	if _, err := tx.Exec(ctx, upsert, instructorID, syncedAt, degraded, failedCalendarIDs); err != nil {
		return infra.WrapRepoErr("failed to upsert sync status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr("failed to commit busy cache replace", err)
	}
	return nil
}

type syncStatusRepository struct {
	pool *pgxpool.Pool
}

func NewSyncStatusRepository(pool *pgxpool.Pool) usecase.SyncStatusRepository {
	return &syncStatusRepository{pool: pool}
}

func (r *syncStatusRepository) Find(ctx context.Context, instructorID uuid.UUID) (*usecase.SyncStatus, error) {
	const query = `
		SELECT instructor_id, last_synced_at, degraded, failed_calendar_ids
		FROM instructor_sync_status
		WHERE instructor_id = $1`

	var (
		status   usecase.SyncStatus
		syncedAt = pgconv.TimePtrToPgtype(nil)
	)
	err := r.pool.QueryRow(ctx, query, instructorID).Scan(
		&status.InstructorID,
		&syncedAt,
		&status.Degraded,
		&status.FailedCalendarIDs,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("sync status not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find sync status", err)
	}

	status.LastSyncedAt = pgconv.TimePtrFromPgtype(syncedAt)
	return &status, nil
}
