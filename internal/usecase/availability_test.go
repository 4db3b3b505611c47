//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/domain/schedule"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/config"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AvailabilityTestSuite struct {
	suite.Suite

	coachingID   uuid.UUID
	instructorID uuid.UUID
	coachingRepo *fakeCoachingRepo
	ruleRepo     *fakeWorkingHourRepo
	busyRepo     *fakeBusyRepo
	statusRepo   *fakeSyncStatusRepo
	resvRepo     *fakeReservationRepo
	scheduler    *fakeScheduler
	clock        *clock.MockClock
	uc           usecase.AvailabilityUseCase
}

func TestAvailabilitySuite(t *testing.T) {
	suite.Run(t, new(AvailabilityTestSuite))
}

func (s *AvailabilityTestSuite) SetupTest() {
	s.coachingID = uuid.New()
	s.instructorID = uuid.New()

	co, err := coaching.New(s.coachingID, s.instructorID, "Morning Coaching", time.Hour, "UTC", true)
	s.Require().NoError(err)
	s.coachingRepo = &fakeCoachingRepo{
		findByID: func(_ context.Context, _ uuid.UUID) (*coaching.Coaching, error) {
			return co, nil
		},
	}

	rule, err := schedule.NewWorkingHourRule(s.coachingID, time.Monday, true, 540, 720)
	s.Require().NoError(err)
	s.ruleRepo = &fakeWorkingHourRepo{
		findRule: func(_ context.Context, _ uuid.UUID, weekday time.Weekday) (*schedule.WorkingHourRule, error) {
			if weekday != time.Monday {
				return nil, notFound("working hour rule not found")
			}
			return &rule, nil
		},
	}

	syncedAt := time.Date(2026, time.March, 1, 23, 0, 0, 0, time.UTC)
	s.statusRepo = &fakeSyncStatusRepo{
		find: func(_ context.Context, _ uuid.UUID) (*usecase.SyncStatus, error) {
			return &usecase.SyncStatus{InstructorID: s.instructorID, LastSyncedAt: &syncedAt}, nil
		},
	}

	s.busyRepo = &fakeBusyRepo{}
	s.resvRepo = &fakeReservationRepo{}
	s.scheduler = &fakeScheduler{}
	s.clock = clock.NewMockClock(time.Date(2026, time.March, 1, 23, 30, 0, 0, time.UTC))

	s.uc = usecase.NewAvailabilityUseCase(
		s.coachingRepo, s.ruleRepo, s.busyRepo, s.statusRepo, s.resvRepo,
		s.scheduler, s.clock,
		config.BookingConfig{},
		config.SyncConfig{StaleAfter: 2 * time.Hour},
	)
}

func (s *AvailabilityTestSuite) TestSlots() {
	// 2026-03-02 is a Monday, rule 09:00-12:00, 60m stride.
	s.Run("open day yields available slots", func() {
		slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
		s.Require().NoError(err)
		s.Require().Len(slots, 3)
		for _, slot := range slots {
			s.True(slot.Available)
		}
	})

	s.Run("cached busy interval blocks its slot", func() {
		s.busyRepo.listForRange = func(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]schedule.Interval, error) {
			return []schedule.Interval{{
				Start: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
				End:   time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC),
			}}, nil
		}

		slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
		s.Require().NoError(err)
		s.Require().Len(slots, 3)
		s.True(slots[0].Available)
		s.False(slots[1].Available)
		s.True(slots[2].Available)
	})

	s.Run("confirmed reservations union with the cache", func() {
		s.busyRepo.listForRange = nil
		s.resvRepo.listIntervals = func(_ context.Context, _, _ uuid.UUID, _, _ time.Time) ([]schedule.Interval, error) {
			return []schedule.Interval{{
				Start: time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC),
				End:   time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC),
			}}, nil
		}

		slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
		s.Require().NoError(err)
		s.Require().Len(slots, 3)
		s.False(slots[2].Available)
	})

	s.Run("day without rule is empty", func() {
		slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-03")
		s.Require().NoError(err)
		s.Empty(slots)
	})

	s.Run("invalid date is rejected", func() {
		_, err := s.uc.Slots(context.Background(), s.coachingID, "03/02/2026")
		s.ErrorIs(err, usecase.ErrInvalidDate)
	})
}

func (s *AvailabilityTestSuite) TestNeverSyncedFailsClosed() {
	s.statusRepo.find = func(_ context.Context, _ uuid.UUID) (*usecase.SyncStatus, error) {
		return nil, notFound("sync status not found")
	}

	slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
	s.Require().NoError(err)
	s.Require().Len(slots, 3)
	for _, slot := range slots {
		s.False(slot.Available)
	}
	s.Equal([]uuid.UUID{s.instructorID}, s.scheduler.refreshCalls())
}

func (s *AvailabilityTestSuite) TestStaleCacheServesAndRefreshes() {
	stale := time.Date(2026, time.March, 1, 20, 0, 0, 0, time.UTC)
	s.statusRepo.find = func(_ context.Context, _ uuid.UUID) (*usecase.SyncStatus, error) {
		return &usecase.SyncStatus{InstructorID: s.instructorID, LastSyncedAt: &stale}, nil
	}

	slots, err := s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
	s.Require().NoError(err)
	s.Require().Len(slots, 3)
	s.True(slots[0].Available)
	s.Equal([]uuid.UUID{s.instructorID}, s.scheduler.refreshCalls())
}

func (s *AvailabilityTestSuite) TestInactiveCoaching() {
	inactive, err := coaching.New(s.coachingID, s.instructorID, "Morning Coaching", time.Hour, "UTC", false)
	s.Require().NoError(err)
	s.coachingRepo.findByID = func(_ context.Context, _ uuid.UUID) (*coaching.Coaching, error) {
		return inactive, nil
	}

	_, err = s.uc.Slots(context.Background(), s.coachingID, "2026-03-02")
	s.ErrorIs(err, usecase.ErrCoachingInactive)
}

func (s *AvailabilityTestSuite) TestSlotFree() {
	co, err := coaching.New(s.coachingID, s.instructorID, "Morning Coaching", time.Hour, "UTC", true)
	s.Require().NoError(err)

	s.Run("free candidate", func() {
		free, err := s.uc.SlotFree(context.Background(), co, time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC))
		s.Require().NoError(err)
		s.True(free)
	})

	s.Run("start off the stride is not free", func() {
		free, err := s.uc.SlotFree(context.Background(), co, time.Date(2026, time.March, 2, 9, 30, 0, 0, time.UTC))
		s.Require().NoError(err)
		s.False(free)
	})

	s.Run("outside the rule window is not free", func() {
		free, err := s.uc.SlotFree(context.Background(), co, time.Date(2026, time.March, 2, 13, 0, 0, 0, time.UTC))
		s.Require().NoError(err)
		s.False(free)
	})
}
