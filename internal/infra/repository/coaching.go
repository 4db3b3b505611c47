package repository

import (
	"context"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type coachingRepository struct {
	pool *pgxpool.Pool
}

func NewCoachingRepository(pool *pgxpool.Pool) usecase.CoachingRepository {
	return &coachingRepository{pool: pool}
}

func (r *coachingRepository) FindByID(ctx context.Context, id uuid.UUID) (*coaching.Coaching, error) {
	const query = `
		SELECT id, instructor_id, title, duration_minutes, time_zone, active
		FROM coachings
		WHERE id = $1`

	var (
		coachingID      uuid.UUID
		instructorID    uuid.UUID
		title           string
		durationMinutes int
		timeZone        string
		active          bool
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&coachingID,
		&instructorID,
		&title,
		&durationMinutes,
		&timeZone,
		&active,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coaching not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coaching", err)
	}

	co, err := coaching.New(coachingID, instructorID, title, time.Duration(durationMinutes)*time.Minute, timeZone, active)
	if err != nil {
		// The entity rejects rows the schema should have prevented.
		return nil, infra.WrapRepoErr("invalid coaching row", err)
	}
	return co, nil
}
