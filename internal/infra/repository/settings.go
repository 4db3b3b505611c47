package repository

import (
	"context"
	"time"

	"coachbook/internal/infra"
	"coachbook/internal/pkg/pgconv"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

func NewSettingsRepository(pool *pgxpool.Pool) usecase.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) FindByInstructor(ctx context.Context, instructorID uuid.UUID) (*usecase.SettingsSnapshot, error) {
	const query = `
		SELECT instructor_id, calendar_ids, booking_calendar_id, webhook_secret
		FROM instructor_settings
		WHERE instructor_id = $1`

	var snap usecase.SettingsSnapshot
	err := r.pool.QueryRow(ctx, query, instructorID).Scan(
		&snap.InstructorID,
		&snap.CalendarIDs,
		&snap.BookingCalendarID,
		&snap.WebhookSecret,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("instructor settings not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find instructor settings", err)
	}
	return &snap, nil
}

func (r *settingsRepository) ListInstructorIDs(ctx context.Context) ([]uuid.UUID, error) {
	const query = `
		SELECT instructor_id
		FROM instructor_settings
		WHERE cardinality(calendar_ids) > 0`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list instructors", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, infra.WrapRepoErr("failed to scan instructor id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate instructor ids", err)
	}
	return ids, nil
}

// TokenStore persists per-instructor OAuth tokens alongside the settings
// row. The calendar gateway reads a token before each call and writes it
// back after a refresh.
type TokenStore struct {
	pool *pgxpool.Pool
}

func NewTokenStore(pool *pgxpool.Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

func (s *TokenStore) Load(ctx context.Context, instructorID uuid.UUID) (*oauth2.Token, error) {
	const query = `
		SELECT google_access_token, google_refresh_token, google_token_expiry
		FROM instructor_settings
		WHERE instructor_id = $1`

	var (
		accessToken  string
		refreshToken string
		expiry       = pgconv.TimePtrToPgtype(nil)
	)
	err := s.pool.QueryRow(ctx, query, instructorID).Scan(&accessToken, &refreshToken, &expiry)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("instructor settings not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load oauth token", err)
	}
	if refreshToken == "" {
		return nil, infra.WrapRepoErr("instructor has no linked google account", nil, infra.KindNotFound)
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
	if t := pgconv.TimePtrFromPgtype(expiry); t != nil {
		token.Expiry = *t
	}
	return token, nil
}

func (s *TokenStore) Save(ctx context.Context, instructorID uuid.UUID, token *oauth2.Token) error {
	const query = `
		UPDATE instructor_settings
		SET google_access_token = $2,
		    google_refresh_token = $3,
		    google_token_expiry = $4,
		    updated_at = now()
		WHERE instructor_id = $1`

	var expiry *time.Time
	if !token.Expiry.IsZero() {
		expiry = &token.Expiry
	}
	if _, err := s.pool.Exec(ctx, query, instructorID, token.AccessToken, token.RefreshToken, pgconv.TimePtrToPgtype(expiry)); err != nil {
		return infra.WrapRepoErr("failed to save oauth token", err)
	}
	return nil
}
