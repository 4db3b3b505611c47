package repository

import (
	"context"
	"time"

	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type workingHourRepository struct {
	pool *pgxpool.Pool
}

func NewWorkingHourRepository(pool *pgxpool.Pool) usecase.WorkingHourRepository {
	return &workingHourRepository{pool: pool}
}

func (r *workingHourRepository) FindRule(ctx context.Context, coachingID uuid.UUID, weekday time.Weekday) (*schedule.WorkingHourRule, error) {
	const query = `
		SELECT coaching_id, weekday, enabled, start_minute, end_minute
		FROM working_hour_rules
		WHERE coaching_id = $1 AND weekday = $2`

	var (
		rule         schedule.WorkingHourRule
		weekdayValue int16
		startMinute  int
		endMinute    int
	)
	err := r.pool.QueryRow(ctx, query, coachingID, int16(weekday)).Scan(
		&rule.CoachingID,
		&weekdayValue,
		&rule.Enabled,
		&startMinute,
		&endMinute,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("working hour rule not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find working hour rule", err)
	}

	rule.Weekday = time.Weekday(weekdayValue)
	rule.Start = schedule.MinuteOfDay(startMinute)
	rule.End = schedule.MinuteOfDay(endMinute)
	return &rule, nil
}
