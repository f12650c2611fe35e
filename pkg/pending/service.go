package pending

import (
	"context"
	"fmt"
	"time"

	"github.com/haushalt/haushalt/internal/event_bus"
	"github.com/haushalt/haushalt/pkg/schedule"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	GetAll(ctx context.Context) ([]PendingOccurrence, error)
	// Confirm posts the occurrence as a real transaction - with a possibly
	// adjusted amount, date and payment method - and removes the pending row.
	Confirm(ctx context.Context, id int, amount decimal.Decimal, date time.Time, paymentMethodId int) error
	// Reject removes the pending row. There is no record of the rejection: a
	// later pass can resurface the same date if its accounted-for signature
	// no longer matches.
	Reject(ctx context.Context, id int) error
}

// Poster posts a schedule occurrence as a confirmed transaction.
type Poster interface {
	PostOccurrence(ctx context.Context, sched schedule.Schedule, date time.Time, amount decimal.Decimal, paymentMethodId int) error
}

type ServiceImpl struct {
	repo      Repo
	schedules schedule.Repo
	poster    Poster
	bus       *event_bus.EventBus
}

func NewService(repo Repo, schedules schedule.Repo, poster Poster, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, schedules: schedules, poster: poster, bus: bus}
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]PendingOccurrence, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId)
}

func (s *ServiceImpl) Confirm(ctx context.Context, id int, amount decimal.Decimal, date time.Time, paymentMethodId int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	occurrence, err := s.repo.Get(ctx, userId, id)
	if err != nil {
		return err
	}
	sched, err := s.schedules.Get(ctx, userId, occurrence.ScheduleId)
	if err != nil {
		return fmt.Errorf("failed to load schedule %d: %w", occurrence.ScheduleId, err)
	}

	if date.IsZero() {
		date = occurrence.PlannedDate
	}
	if amount.IsZero() && occurrence.Amount.Valid {
		amount = occurrence.Amount.Decimal
	}
	if paymentMethodId == 0 {
		paymentMethodId = sched.PaymentMethodId
	}

	if err := s.poster.PostOccurrence(ctx, sched, date, amount, paymentMethodId); err != nil {
		return fmt.Errorf("failed to post transaction for pending occurrence %d: %w", id, err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("pending occurrence %d already removed after confirmation", id)
	}

	err = s.bus.Publish(event_bus.NewEvent(ctx, event_bus.PendingConfirmed, event_bus.PendingConfirmedEvent{
		PendingId:  id,
		ScheduleId: occurrence.ScheduleId,
	}))
	if err != nil {
		log.Errorf("pending confirmed event for %d failed: %v", id, err)
	}
	return nil
}

func (s *ServiceImpl) Reject(ctx context.Context, id int) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	deleted, err := s.repo.Delete(ctx, userId, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPendingNotFound
	}
	return nil
}
