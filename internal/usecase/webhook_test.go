//go:build unit

package usecase_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"coachbook/internal/domain/reservation"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

const webhookSecret = "test-webhook-secret"

func sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type fakeBooking struct {
	cancel func(ctx context.Context, reservationID uuid.UUID) (*usecase.CancelResult, error)

	cancelled []uuid.UUID
	actors    []usecase.Actor
}

func (f *fakeBooking) Book(_ context.Context, _ usecase.BookCommand) (*usecase.BookingResult, error) {
	return nil, nil
}

func (f *fakeBooking) Cancel(ctx context.Context, reservationID uuid.UUID, actor usecase.Actor) (*usecase.CancelResult, error) {
	f.cancelled = append(f.cancelled, reservationID)
	f.actors = append(f.actors, actor)
	if f.cancel == nil {
		return &usecase.CancelResult{Refunded: true}, nil
	}
	return f.cancel(ctx, reservationID)
}

func (f *fakeBooking) ListByStudent(_ context.Context, _ uuid.UUID) ([]*reservation.Reservation, error) {
	return nil, nil
}

type WebhookTestSuite struct {
	suite.Suite

	instructorID uuid.UUID
	settingsRepo *fakeSettingsRepo
	auditRepo    *fakeAuditRepo
	resvRepo     *fakeReservationRepo
	booking      *fakeBooking
	uc           usecase.WebhookUseCase
}

func TestWebhookSuite(t *testing.T) {
	suite.Run(t, new(WebhookTestSuite))
}

func (s *WebhookTestSuite) SetupTest() {
	s.instructorID = uuid.New()
	s.settingsRepo = &fakeSettingsRepo{
		findByInstructor: func(_ context.Context, _ uuid.UUID) (*usecase.SettingsSnapshot, error) {
			return &usecase.SettingsSnapshot{
				InstructorID:  s.instructorID,
				WebhookSecret: webhookSecret,
			}, nil
		},
	}
	s.auditRepo = &fakeAuditRepo{}
	s.resvRepo = &fakeReservationRepo{}
	s.booking = &fakeBooking{}

	s.uc = usecase.NewWebhookUseCase(
		s.settingsRepo, s.auditRepo, s.resvRepo, s.booking,
		clock.NewMockClock(time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)),
	)
}

func (s *WebhookTestSuite) TestIngestCancelledEvent() {
	resID := uuid.New()
	body := []byte(`{"event":"reservation.cancelled","id":"evt-1","data":{"reservationId":"` + resID.String() + `"}}`)

	result, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
	s.Require().NoError(err)
	s.Equal("reservation.cancelled", result.EventType)
	s.False(result.Replayed)
	s.Equal([]uuid.UUID{resID}, s.booking.cancelled)
	s.Equal([]usecase.Actor{usecase.SystemActor}, s.booking.actors)

	s.Require().Len(s.auditRepo.entries, 1)
	s.Equal("evt-1", s.auditRepo.entries[0].EventID)
	s.Equal(body, []byte(s.auditRepo.entries[0].Payload))
}

func (s *WebhookTestSuite) TestIngestAttendanceEvent() {
	resID := uuid.New()
	body := []byte(`{"event":"attendance.checked","id":"evt-2","data":{"reservationId":"` + resID.String() + `","status":"late"}}`)

	result, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
	s.Require().NoError(err)
	s.Equal("attendance.checked", result.EventType)
	s.Equal([]reservation.Attendance{reservation.AttendanceLate}, s.resvRepo.attendanceRecorded)
}

func (s *WebhookTestSuite) TestIngestAuditOnlyEvents() {
	for _, event := range []string{"reservation.created", "reservation.updated", "memo.created"} {
		s.Run(event, func() {
			body := []byte(`{"event":"` + event + `","id":"evt-` + event + `","data":{}}`)

			result, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
			s.Require().NoError(err)
			s.Equal(event, result.EventType)
		})
	}
	s.Empty(s.booking.cancelled)
	s.Empty(s.resvRepo.attendanceRecorded)
	s.Len(s.auditRepo.entries, 3)
}

func (s *WebhookTestSuite) TestIngestRejectsBadSignature() {
	body := []byte(`{"event":"reservation.cancelled","id":"evt-3","data":{}}`)

	_, err := s.uc.Ingest(context.Background(), s.instructorID, body, "deadbeef")
	s.ErrorIs(err, usecase.ErrInvalidSignature)
	s.Empty(s.auditRepo.entries)
}

func (s *WebhookTestSuite) TestIngestRejectsUnsetSecret() {
	s.settingsRepo.findByInstructor = func(_ context.Context, _ uuid.UUID) (*usecase.SettingsSnapshot, error) {
		return &usecase.SettingsSnapshot{InstructorID: s.instructorID}, nil
	}
	body := []byte(`{"event":"memo.created","id":"evt-forged","data":{}}`)

	// A signature computed over the empty key must not authenticate.
	mac := hmac.New(sha256.New, []byte(""))
	mac.Write(body)
	forged := hex.EncodeToString(mac.Sum(nil))

	_, err := s.uc.Ingest(context.Background(), s.instructorID, body, forged)
	s.ErrorIs(err, usecase.ErrInvalidSignature)
	s.Empty(s.auditRepo.entries)
}

func (s *WebhookTestSuite) TestIngestRejectsTamperedBody() {
	body := []byte(`{"event":"reservation.cancelled","id":"evt-4","data":{}}`)
	signature := sign(body)
	tampered := []byte(`{"event":"reservation.cancelled","id":"evt-666","data":{}}`)

	_, err := s.uc.Ingest(context.Background(), s.instructorID, tampered, signature)
	s.ErrorIs(err, usecase.ErrInvalidSignature)
}

func (s *WebhookTestSuite) TestIngestRejectsUnknownEvent() {
	body := []byte(`{"event":"payment.settled","id":"evt-5","data":{}}`)

	_, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
	s.ErrorIs(err, usecase.ErrUnknownEvent)
	s.Empty(s.auditRepo.entries)
}

func (s *WebhookTestSuite) TestIngestRejectsMalformedPayload() {
	for name, body := range map[string][]byte{
		"not json":      []byte(`<xml/>`),
		"missing id":    []byte(`{"event":"memo.created","data":{}}`),
		"missing event": []byte(`{"id":"evt-6","data":{}}`),
	} {
		s.Run(name, func() {
			_, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
			s.ErrorIs(err, usecase.ErrMalformedPayload)
		})
	}
}

func (s *WebhookTestSuite) TestIngestReplayIsNoOp() {
	s.auditRepo.replay = true
	resID := uuid.New()
	body := []byte(`{"event":"reservation.cancelled","id":"evt-7","data":{"reservationId":"` + resID.String() + `"}}`)

	result, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
	s.Require().NoError(err)
	s.True(result.Replayed)
	s.Empty(s.booking.cancelled)
}

func (s *WebhookTestSuite) TestIngestCancelUnknownReservationAccepted() {
	s.booking.cancel = func(_ context.Context, _ uuid.UUID) (*usecase.CancelResult, error) {
		return nil, usecase.ErrReservationNotFound
	}
	resID := uuid.New()
	body := []byte(`{"event":"reservation.cancelled","id":"evt-8","data":{"reservationId":"` + resID.String() + `"}}`)

	_, err := s.uc.Ingest(context.Background(), s.instructorID, body, sign(body))
	s.NoError(err)
}

func (s *WebhookTestSuite) TestIngestUnknownInstructor() {
	s.settingsRepo.findByInstructor = nil
	body := []byte(`{"event":"memo.created","id":"evt-9","data":{}}`)

	_, err := s.uc.Ingest(context.Background(), uuid.New(), body, sign(body))
	s.ErrorIs(err, usecase.ErrInstructorNotFound)
}
