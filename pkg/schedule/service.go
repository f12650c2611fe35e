package schedule

import (
	"context"
	"fmt"

	"github.com/haushalt/haushalt/internal/event_bus"
	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/haushalt/haushalt/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetAll(ctx context.Context, includeInactive bool) ([]Schedule, error)
	Get(ctx context.Context, id int) (Schedule, error)
	Create(ctx context.Context, schedule Schedule) (Schedule, error)
	Update(ctx context.Context, schedule Schedule) (bool, error)
	// Delete deactivates the schedule. When hardDeletePending is set, the
	// schedule's queued pending occurrences are removed as well - an explicit
	// opt-in, never an automatic side effect.
	Delete(ctx context.Context, id int, hardDeletePending bool) (bool, error)
}

// PendingRemover is the slice of the pending-occurrence store this service
// needs for hard deletes.
type PendingRemover interface {
	DeleteForSchedule(ctx context.Context, userId int, scheduleId int) (int, error)
}

type ServiceImpl struct {
	repo    Repo
	pending PendingRemover
	bus     *event_bus.EventBus
	clock   utils.Clock
}

func NewService(repo Repo, pending PendingRemover, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, pending: pending, bus: bus, clock: clock}
}

func (s *ServiceImpl) GetAll(ctx context.Context, includeInactive bool) ([]Schedule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, includeInactive)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Schedule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, schedule Schedule) (Schedule, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(schedule); err != nil {
		return Schedule{}, err
	}

	schedule.IsActive = true
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = s.clock.Now()
	}

	id, err := s.repo.Store(ctx, userId, schedule)
	if err != nil {
		return Schedule{}, err
	}
	schedule.ID = id

	s.publishChanged(ctx, schedule.ID, "created")
	return schedule, nil
}

func (s *ServiceImpl) Update(ctx context.Context, schedule Schedule) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(schedule); err != nil {
		return false, err
	}

	updated, err := s.repo.Update(ctx, userId, schedule)
	if err != nil {
		return false, err
	}
	if !updated {
		log.Warnf("schedule not updated, probably because it does not exist (%d) or the user (%d) is not the owner", schedule.ID, userId)
		return false, fmt.Errorf("schedule not updated")
	}

	s.publishChanged(ctx, schedule.ID, "updated")
	return true, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int, hardDeletePending bool) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}

	deactivated, err := s.repo.Deactivate(ctx, userId, id)
	if err != nil {
		return false, err
	}
	if !deactivated {
		log.Warnf("schedule not deleted, probably because it does not exist (%d) or the user (%d) is not the owner", id, userId)
		return false, fmt.Errorf("schedule not deleted")
	}

	if hardDeletePending {
		removed, err := s.pending.DeleteForSchedule(ctx, userId, id)
		if err != nil {
			return false, fmt.Errorf("schedule deactivated but pending cleanup failed: %w", err)
		}
		log.Debugf("removed %d pending occurrences for schedule %d", removed, id)
	}

	s.publishChanged(ctx, id, "deleted")
	return true, nil
}

func validate(schedule Schedule) error {
	if schedule.Kind != KindIncome && schedule.Kind != KindExpense {
		return fmt.Errorf("invalid schedule kind: %q", schedule.Kind)
	}
	if _, err := recurrence.Parse(schedule.Rule); err != nil {
		return err
	}
	if schedule.LookaheadDays < 0 {
		return fmt.Errorf("lookaheadDays must not be negative")
	}
	if schedule.Anchors.DayOfMonth < 0 || schedule.Anchors.DayOfMonth > 31 {
		return fmt.Errorf("dayOfMonth must be between 1 and 31")
	}
	if !schedule.RequiresConfirmation && !schedule.ExpectedAmount.Valid {
		return fmt.Errorf("schedules posted without confirmation need an expected amount")
	}
	return nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, scheduleId int, action string) {
	err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleChanged, event_bus.ScheduleChangedEvent{
		ScheduleId: scheduleId,
		Action:     action,
	}))
	if err != nil {
		// Subscriber failures (e.g. a reconciliation pass) must not fail the
		// mutation that triggered them.
		log.Errorf("schedule change event for %d failed: %v", scheduleId, err)
	}
}
