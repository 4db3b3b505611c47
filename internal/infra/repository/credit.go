package repository

import (
	"context"
	"time"

	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type creditRepository struct {
	pool *pgxpool.Pool
}

func NewCreditRepository(pool *pgxpool.Pool) usecase.CreditRepository {
	return &creditRepository{pool: pool}
}

func (r *creditRepository) FindByID(ctx context.Context, id uuid.UUID) (*usecase.CreditSnapshot, error) {
	const query = `
		SELECT id, student_id, coaching_id, remaining_sessions, expires_at
		FROM package_credits
		WHERE id = $1`

	var (
		snap      usecase.CreditSnapshot
		expiresAt = pgconv.TimePtrToPgtype(nil)
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&snap.ID,
		&snap.StudentID,
		&snap.CoachingID,
		&snap.RemainingSessions,
		&expiresAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("credit package not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find credit package", err)
	}

	snap.ExpiresAt = pgconv.TimePtrFromPgtype(expiresAt)
	return &snap, nil
}

// DeductOne is the authoritative credit guard: the WHERE clause makes the
// decrement conditional, so concurrent bookings serialize on the row and the
// loser sees zero affected rows instead of a negative balance.
func (r *creditRepository) DeductOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	const query = `
		UPDATE package_credits
		SET remaining_sessions = remaining_sessions - 1
		WHERE id = $1
		  AND remaining_sessions > 0
		  AND (expires_at IS NULL OR expires_at >= $2)`

	tag, err := r.pool.Exec(ctx, query, id, now)
	if err != nil {
		return false, infra.WrapRepoErr("failed to deduct credit", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *creditRepository) RefundOne(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE package_credits
		SET remaining_sessions = remaining_sessions + 1
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return infra.WrapRepoErr("failed to refund credit", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("credit package not found", nil, infra.KindNotFound)
	}
	return nil
}
