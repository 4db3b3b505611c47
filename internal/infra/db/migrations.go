package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS coachings (
	id UUID PRIMARY KEY,
	instructor_id UUID NOT NULL,
	title TEXT NOT NULL,
	duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
	time_zone TEXT NOT NULL DEFAULT 'Asia/Seoul',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS working_hour_rules (
	coaching_id UUID NOT NULL REFERENCES coachings(id) ON DELETE CASCADE,
	weekday SMALLINT NOT NULL CHECK (weekday BETWEEN 0 AND 6),
	enabled BOOLEAN NOT NULL DEFAULT FALSE,
	start_minute INT NOT NULL,
	end_minute INT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (coaching_id, weekday),
	CHECK (start_minute < end_minute)
);

CREATE TABLE IF NOT EXISTS instructor_settings (
	instructor_id UUID PRIMARY KEY,
	calendar_ids TEXT[] NOT NULL DEFAULT '{}',
	booking_calendar_id TEXT NOT NULL DEFAULT '',
	webhook_secret TEXT NOT NULL DEFAULT '',
	google_access_token TEXT NOT NULL DEFAULT '',
	google_refresh_token TEXT NOT NULL DEFAULT '',
	google_token_expiry TIMESTAMPTZ,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS busy_intervals (
	instructor_id UUID NOT NULL,
	source_calendar_id TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	synced_at TIMESTAMPTZ NOT NULL,
	CHECK (start_time < end_time)
);
CREATE INDEX IF NOT EXISTS idx_busy_intervals_instructor_range
	ON busy_intervals(instructor_id, start_time);

CREATE TABLE IF NOT EXISTS instructor_sync_status (
	instructor_id UUID PRIMARY KEY,
	last_synced_at TIMESTAMPTZ,
	degraded BOOLEAN NOT NULL DEFAULT FALSE,
	failed_calendar_ids TEXT[] NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS sync_leases (
	instructor_id UUID PRIMARY KEY,
	holder_token TEXT NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS reservations (
	id UUID PRIMARY KEY,
	coaching_id UUID NOT NULL REFERENCES coachings(id),
	instructor_id UUID NOT NULL,
	student_id UUID NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	status TEXT NOT NULL CHECK (status IN ('confirmed', 'cancelled')),
	attendance TEXT NOT NULL DEFAULT 'none'
		CHECK (attendance IN ('none', 'attended', 'absent', 'late')),
	external_event_id TEXT NOT NULL DEFAULT '',
	meet_link TEXT NOT NULL DEFAULT '',
	credit_id UUID NOT NULL,
	idempotency_key TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	CHECK (start_time < end_time)
);
-- Final backstop against double-booking: only one confirmed reservation per
-- coaching/instructor/start.
CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_confirmed_slot
	ON reservations(coaching_id, instructor_id, start_time)
	WHERE status = 'confirmed';
CREATE UNIQUE INDEX IF NOT EXISTS uq_reservations_idempotency_key
	ON reservations(idempotency_key)
	WHERE status = 'confirmed';
CREATE INDEX IF NOT EXISTS idx_reservations_student
	ON reservations(student_id, start_time);

CREATE TABLE IF NOT EXISTS package_credits (
	id UUID PRIMARY KEY,
	student_id UUID NOT NULL,
	coaching_id UUID NOT NULL,
	remaining_sessions INT NOT NULL CHECK (remaining_sessions >= 0),
	expires_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS booking_attempts (
	id UUID PRIMARY KEY,
	idempotency_key TEXT NOT NULL,
	coaching_id UUID NOT NULL,
	instructor_id UUID NOT NULL,
	student_id UUID NOT NULL,
	credit_id UUID,
	start_time TIMESTAMPTZ NOT NULL,
	state TEXT NOT NULL,
	external_event_id TEXT NOT NULL DEFAULT '',
	calendar_id TEXT NOT NULL DEFAULT '',
	credit_deducted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_booking_attempts_state
	ON booking_attempts(state, updated_at);

CREATE TABLE IF NOT EXISTS webhook_audit_log (
	event_id TEXT PRIMARY KEY,
	instructor_id UUID NOT NULL,
	event_type TEXT NOT NULL,
	payload JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}
