package usecase

import (
	"context"
	"log/slog"
	"time"

	"coachbook/internal/infra"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/errs"
	"coachbook/internal/pkg/metrics"
)

// SweepUseCase reconciles booking attempts a crashed coordinator left in a
// non-terminal state: undo whatever the trail says was done, then mark the
// attempt rolled back. The ledger stays untouched; an attempt that reached
// CONFIRMED is terminal and never swept.
type SweepUseCase interface {
	Sweep(ctx context.Context) (int, error)
}

type sweepUseCaseImpl struct {
	attemptRepo AttemptRepository
	creditRepo  CreditRepository
	resvRepo    ReservationRepository
	gateway     CalendarGateway
	clock       clock.Clock
	stuckAfter  time.Duration
	callTimeout time.Duration
}

func NewSweepUseCase(
	attemptRepo AttemptRepository,
	creditRepo CreditRepository,
	resvRepo ReservationRepository,
	gateway CalendarGateway,
	clk clock.Clock,
	syncCfg config.SyncConfig,
	calCfg config.CalendarConfig,
) SweepUseCase {
	return &sweepUseCaseImpl{
		attemptRepo: attemptRepo,
		creditRepo:  creditRepo,
		resvRepo:    resvRepo,
		gateway:     gateway,
		clock:       clk,
		stuckAfter:  syncCfg.SweepStuckAfter,
		callTimeout: calCfg.CallTimeout,
	}
}

func (u *sweepUseCaseImpl) Sweep(ctx context.Context) (int, error) {
	cutoff := u.clock.Now().Add(-u.stuckAfter)

	stuck, err := u.attemptRepo.ListStuck(ctx, cutoff)
	if err != nil {
		return 0, errs.Wrap(err, "failed to list stuck attempts")
	}

	swept := 0
	for _, attempt := range stuck {
		if err := u.reconcile(ctx, attempt); err != nil {
			// Leave it for the next sweep pass.
			slog.Error("failed to reconcile stuck attempt",
				"attempt_id", attempt.ID, "state", attempt.State, "error", err)
			continue
		}
		swept++
	}

	if len(stuck) > 0 {
		slog.Info("sweep pass completed", "stuck", len(stuck), "swept", swept)
	}
	return swept, nil
}

func (u *sweepUseCaseImpl) reconcile(ctx context.Context, attempt *BookingAttempt) error {
	// An attempt stuck in PERSISTING may have landed its ledger row just
	// before the crash. If a confirmed reservation exists under the same
	// key the booking actually succeeded; finish the bookkeeping.
	if attempt.State == AttemptPersisting {
		if _, err := u.resvRepo.FindConfirmedByIdempotencyKey(ctx, attempt.IdempotencyKey); err == nil {
			attempt.State = AttemptConfirmed
			return u.attemptRepo.Update(ctx, attempt)
		} else if !infra.IsKind(err, infra.KindNotFound) {
			return errs.Wrap(err, "failed to check for persisted reservation")
		}
	}

	if attempt.ExternalEventID != "" {
		callCtx, cancel := context.WithTimeout(ctx, u.callTimeout)
		err := u.gateway.DeleteEvent(callCtx, attempt.InstructorID, attempt.CalendarID, attempt.ExternalEventID)
		cancel()
		if err != nil {
			metrics.CompensationFailures.WithLabelValues("sweep_delete_event").Inc()
			return errs.Wrap(err, "failed to delete orphaned event")
		}
	}

	if attempt.CreditDeducted && attempt.CreditID != nil {
		if err := u.creditRepo.RefundOne(ctx, *attempt.CreditID); err != nil {
			metrics.CompensationFailures.WithLabelValues("sweep_refund_credit").Inc()
			return errs.Wrap(err, "failed to refund orphaned deduction")
		}
		attempt.CreditDeducted = false
	}

	attempt.State = AttemptRolledBack
	return u.attemptRepo.Update(ctx, attempt)
}
