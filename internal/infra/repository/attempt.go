package repository

import (
	"context"
	"time"

	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type attemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) usecase.AttemptRepository {
	return &attemptRepository{pool: pool}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *usecase.BookingAttempt) error {
	const query = `
		INSERT INTO booking_attempts (
			id, idempotency_key, coaching_id, instructor_id, student_id,
			credit_id, start_time, state
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var creditID any
	if attempt.CreditID != nil {
		creditID = *attempt.CreditID
	}

	_, err := r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.IdempotencyKey,
		attempt.CoachingID,
		attempt.InstructorID,
		attempt.StudentID,
		creditID,
		attempt.Start,
		string(attempt.State),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create booking attempt", err)
	}
	return nil
}

func (r *attemptRepository) Update(ctx context.Context, attempt *usecase.BookingAttempt) error {
	const query = `
		UPDATE booking_attempts
		SET state = $2,
		    external_event_id = $3,
		    calendar_id = $4,
		    credit_deducted = $5,
		    updated_at = now()
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		attempt.ID,
		string(attempt.State),
		attempt.ExternalEventID,
		attempt.CalendarID,
		attempt.CreditDeducted,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update booking attempt", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("booking attempt not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *attemptRepository) ListStuck(ctx context.Context, updatedBefore time.Time) ([]*usecase.BookingAttempt, error) {
	const query = `
		SELECT id, idempotency_key, coaching_id, instructor_id, student_id,
		       credit_id, start_time, state, external_event_id, calendar_id,
		       credit_deducted, created_at, updated_at
		FROM booking_attempts
		WHERE state NOT IN ('CONFIRMED', 'REJECTED', 'ROLLED_BACK')
		  AND updated_at < $1
		ORDER BY updated_at`

	rows, err := r.pool.Query(ctx, query, updatedBefore)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list stuck attempts", err)
	}
	defer rows.Close()

	var list []*usecase.BookingAttempt
	for rows.Next() {
		var (
			attempt  usecase.BookingAttempt
			state    string
			creditID pgtype.UUID
		)
		err := rows.Scan(
			&attempt.ID, &attempt.IdempotencyKey, &attempt.CoachingID,
			&attempt.InstructorID, &attempt.StudentID, &creditID,
			&attempt.Start, &state, &attempt.ExternalEventID,
			&attempt.CalendarID, &attempt.CreditDeducted,
			&attempt.CreatedAt, &attempt.UpdatedAt,
		)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan booking attempt", err)
		}
		attempt.State = usecase.AttemptState(state)
		attempt.CreditID = pgconv.UUIDPtrFromPgtype(creditID)
		list = append(list, &attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate stuck attempts", err)
	}
	return list, nil
}
