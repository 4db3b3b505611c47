package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"

	"coachbook/internal/domain/reservation"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidSignature = errs.New("webhook signature mismatch")
	ErrUnknownEvent     = errs.New("unknown webhook event type")
	ErrMalformedPayload = errs.New("malformed webhook payload")
)

// webhookEnvelope is the provider's wire shape: event name, a unique event
// id used for replay detection, and an event-specific data object.
type webhookEnvelope struct {
	Event string          `json:"event"`
	ID    string          `json:"id"`
	Data  json.RawMessage `json:"data"`
}

type reservationEventData struct {
	ReservationID uuid.UUID `json:"reservationId"`
}

type attendanceEventData struct {
	ReservationID uuid.UUID `json:"reservationId"`
	Status        string    `json:"status"`
}

type IngestResult struct {
	EventType string
	Replayed  bool
}

type WebhookUseCase interface {
	// Ingest verifies the payload signature against the instructor's
	// secret, records the event, and dispatches it. A replayed event id
	// is acknowledged without re-running the handler.
	Ingest(ctx context.Context, instructorID uuid.UUID, body []byte, signature string) (*IngestResult, error)
}

type webhookUseCaseImpl struct {
	settingsRepo SettingsRepository
	auditRepo    AuditLogRepository
	resvRepo     ReservationRepository
	booking      BookingUseCase
	clock        clock.Clock
}

func NewWebhookUseCase(
	settingsRepo SettingsRepository,
	auditRepo AuditLogRepository,
	resvRepo ReservationRepository,
	booking BookingUseCase,
	clk clock.Clock,
) WebhookUseCase {
	return &webhookUseCaseImpl{
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		resvRepo:     resvRepo,
		booking:      booking,
		clock:        clk,
	}
}

func (u *webhookUseCaseImpl) Ingest(ctx context.Context, instructorID uuid.UUID, body []byte, signature string) (*IngestResult, error) {
	settings, err := u.settingsRepo.FindByInstructor(ctx, instructorID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, errs.Wrap(err, "failed to load instructor settings")
	}

	// An unset secret must authenticate nothing: anyone can compute an
	// HMAC over the empty key.
	if settings.WebhookSecret == "" {
		return nil, ErrInvalidSignature
	}
	if !verifySignature(settings.WebhookSecret, body, signature) {
		return nil, ErrInvalidSignature
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Event == "" || env.ID == "" {
		return nil, ErrMalformedPayload
	}

	if !knownEvent(env.Event) {
		return nil, ErrUnknownEvent
	}

	// Audit before dispatch: the log row doubles as the replay guard, so
	// a handler crash can at worst lose one event, never run it twice.
	inserted, err := u.auditRepo.Insert(ctx, AuditEntry{
		EventID:      env.ID,
		InstructorID: instructorID,
		EventType:    env.Event,
		Payload:      body,
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to record webhook event")
	}
	if !inserted {
		slog.Info("webhook event replayed", "event_id", env.ID, "event", env.Event)
		return &IngestResult{EventType: env.Event, Replayed: true}, nil
	}

	if err := u.dispatch(ctx, env); err != nil {
		return nil, err
	}
	return &IngestResult{EventType: env.Event}, nil
}

func (u *webhookUseCaseImpl) dispatch(ctx context.Context, env webhookEnvelope) error {
	switch env.Event {
	case "reservation.cancelled":
		var data reservationEventData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ErrMalformedPayload
		}
		if _, err := u.booking.Cancel(ctx, data.ReservationID, SystemActor); err != nil {
			// A cancel for a reservation we no longer know about is not
			// an ingest failure.
			if errors.Is(err, ErrReservationNotFound) {
				slog.Warn("webhook cancel for unknown reservation", "event_id", env.ID)
				return nil
			}
			return err
		}
		return nil

	case "attendance.checked":
		var data attendanceEventData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return ErrMalformedPayload
		}
		att, err := reservation.ParseAttendance(data.Status)
		if err != nil {
			return ErrMalformedPayload
		}
		if err := u.resvRepo.SetAttendance(ctx, data.ReservationID, att, u.clock.Now()); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				slog.Warn("attendance for unknown reservation", "event_id", env.ID)
				return nil
			}
			return errs.Wrap(err, "failed to set attendance")
		}
		return nil

	default:
		// reservation.created / reservation.updated / memo.created carry
		// no state our ledger does not already own; audit only.
		return nil
	}
}

func knownEvent(event string) bool {
	switch event {
	case "reservation.created", "reservation.updated", "reservation.cancelled",
		"attendance.checked", "memo.created":
		return true
	}
	return false
}

func verifySignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
