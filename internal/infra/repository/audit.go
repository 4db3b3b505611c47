package repository

import (
	"context"

	"coachbook/internal/infra"
	"coachbook/internal/usecase"

	"github.com/jackc/pgx/v5/pgxpool"
)

type auditLogRepository struct {
	pool *pgxpool.Pool
}

func NewAuditLogRepository(pool *pgxpool.Pool) usecase.AuditLogRepository {
	return &auditLogRepository{pool: pool}
}

// Insert appends the event. ON CONFLICT DO NOTHING turns a replayed event id
// into zero affected rows, which is how the ingestor detects replays.
func (r *auditLogRepository) Insert(ctx context.Context, entry usecase.AuditEntry) (bool, error) {
	const query = `
		INSERT INTO webhook_audit_log (event_id, instructor_id, event_type, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query, entry.EventID, entry.InstructorID, entry.EventType, entry.Payload)
	if err != nil {
		return false, infra.WrapRepoErr("failed to insert audit entry", err)
	}
	return tag.RowsAffected() > 0, nil
}
