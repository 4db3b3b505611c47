package repository

import (
	"context"
	"time"

	"coachbook/internal/infra"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type leaseRepository struct {
	pool *pgxpool.Pool
}

func NewLeaseRepository(pool *pgxpool.Pool) usecase.LeaseRepository {
	return &leaseRepository{pool: pool}
}

// Acquire takes the lease via an upsert that only steals an expired row.
// The TTL bounds how long a crashed holder can block the instructor.
func (r *leaseRepository) Acquire(ctx context.Context, instructorID uuid.UUID, holderToken string, ttl time.Duration) (bool, error) {
	const query = `
		INSERT INTO sync_leases (instructor_id, holder_token, expires_at)
		VALUES ($1, $2, now() + $3)
		ON CONFLICT (instructor_id) DO UPDATE
		SET holder_token = EXCLUDED.holder_token,
		    expires_at = EXCLUDED.expires_at
		WHERE sync_leases.expires_at < now()`

	tag, err := r.pool.Exec(ctx, query, instructorID, holderToken, ttl)
	if err != nil {
		return false, infra.WrapRepoErr("failed to acquire sync lease", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Release only clears the caller's own lease; a token mismatch means the
// lease expired and someone else holds it now.
func (r *leaseRepository) Release(ctx context.Context, instructorID uuid.UUID, holderToken string) error {
	const query = `
		DELETE FROM sync_leases
		WHERE instructor_id = $1 AND holder_token = $2`

	if _, err := r.pool.Exec(ctx, query, instructorID, holderToken); err != nil {
		return infra.WrapRepoErr("failed to release sync lease", err)
	}
	return nil
}
