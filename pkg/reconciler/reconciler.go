// Package reconciler keeps schedules and recorded transactions in sync: it
// surfaces upcoming occurrences for confirmation and posts overdue ones that
// need no confirmation.
package reconciler

import (
	"context"
	"time"

	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/income"
	"github.com/haushalt/haushalt/pkg/pending"
	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/haushalt/haushalt/pkg/schedule"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// lookbehind bounds how far into the past a pass still considers missed
// occurrences.
const lookbehindMonths = 3

const dateLayout = "2006-01-02"

// Poster posts a schedule occurrence as a confirmed transaction.
type Poster interface {
	PostOccurrence(ctx context.Context, sched schedule.Schedule, date time.Time, amount decimal.Decimal, paymentMethodId int) error
}

// AccountedDate marks one planned date as already covered, either by a
// pending row or by a confirmed transaction.
type AccountedDate struct {
	Date   time.Time
	Source string
}

func fromPending(rows []pending.PendingOccurrence) []AccountedDate {
	dates := make([]AccountedDate, 0, len(rows))
	for _, row := range rows {
		dates = append(dates, AccountedDate{Date: row.PlannedDate, Source: "pending"})
	}
	return dates
}

func fromConfirmed(confirmed []time.Time) []AccountedDate {
	dates := make([]AccountedDate, 0, len(confirmed))
	for _, date := range confirmed {
		dates = append(dates, AccountedDate{Date: date, Source: "confirmed"})
	}
	return dates
}

type Service struct {
	schedules schedule.Repo
	pendings  pending.Repo
	incomes   income.Repo
	expenses  expense.Repo
	poster    Poster
	generator *recurrence.Generator
	clock     utils.Clock
}

func NewService(
	schedules schedule.Repo,
	pendings pending.Repo,
	incomes income.Repo,
	expenses expense.Repo,
	poster Poster,
	generator *recurrence.Generator,
	clock utils.Clock,
) *Service {
	return &Service{
		schedules: schedules,
		pendings:  pendings,
		incomes:   incomes,
		expenses:  expenses,
		poster:    poster,
		generator: generator,
		clock:     clock,
	}
}

// ProcessSchedules runs one reconciliation pass over every active schedule of
// the current profile. A failing schedule is logged and skipped; it never
// stops the batch. A second pass right after writes nothing.
func (s *Service) ProcessSchedules(ctx context.Context) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}

	schedules, err := s.schedules.GetAll(ctx, userId, false)
	if err != nil {
		return err
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	for _, sched := range schedules {
		if err := s.processSchedule(ctx, userId, sched, today); err != nil {
			log.WithField("scheduleId", sched.ID).Errorf("reconciliation failed: %v", err)
		}
	}
	return nil
}

func (s *Service) processSchedule(ctx context.Context, userId int, sched schedule.Schedule, today time.Time) error {
	rule, err := recurrence.Parse(sched.Rule)
	if err != nil {
		return err
	}

	from := today.AddDate(0, -lookbehindMonths, 0)
	createdAt := sched.CreatedAt.UTC()
	createdDay := time.Date(createdAt.Year(), createdAt.Month(), createdAt.Day(), 0, 0, 0, 0, time.UTC)
	if createdDay.After(from) {
		from = createdDay
	}
	to := today.AddDate(0, 0, sched.LookaheadDays)

	occurrences, capped := s.generator.Occurrences(rule, sched.Anchors, sched.CreatedAt, from, to)
	if capped {
		log.WithField("scheduleId", sched.ID).Warnf("occurrence window truncated at %d dates", recurrence.MaxOccurrences)
	}

	accounted, err := s.accountedDates(ctx, userId, sched, from, to)
	if err != nil {
		return err
	}

	// a single pass never acts on more than MaxOccurrences dates per schedule
	if len(occurrences) > recurrence.MaxOccurrences {
		occurrences = occurrences[:recurrence.MaxOccurrences]
	}

	for _, date := range occurrences {
		key := date.Format(dateLayout)
		if accounted[key] {
			continue
		}

		if sched.RequiresConfirmation {
			_, err := s.pendings.Insert(ctx, userId, pending.PendingOccurrence{
				ScheduleId:  sched.ID,
				PlannedDate: date,
				Amount:      sched.ExpectedAmount,
			})
			if err != nil {
				return err
			}
		} else if !date.After(today) {
			err := s.poster.PostOccurrence(ctx, sched, date, sched.ExpectedAmount.Decimal, sched.PaymentMethodId)
			if err != nil {
				return err
			}
		}
		accounted[key] = true
	}
	return nil
}

// accountedDates builds the set of planned dates already covered. Confirmed
// transactions only count for schedules that post without confirmation; for
// the others the pending row itself is the record.
func (s *Service) accountedDates(ctx context.Context, userId int, sched schedule.Schedule, from, to time.Time) (map[string]bool, error) {
	pendingRows, err := s.pendings.GetBySchedule(ctx, userId, sched.ID)
	if err != nil {
		return nil, err
	}
	accounted := make([]AccountedDate, 0, len(pendingRows))
	accounted = append(accounted, fromPending(pendingRows)...)

	if !sched.RequiresConfirmation && sched.ExpectedAmount.Valid {
		var confirmed []time.Time
		switch sched.Kind {
		case schedule.KindIncome:
			confirmed, err = s.incomes.FindDates(ctx, userId, sched.CounterpartyId, sched.PaymentMethodId, sched.ExpectedAmount.Decimal, from, to)
		case schedule.KindExpense:
			confirmed, err = s.expenses.FindDates(ctx, userId, sched.CounterpartyId, sched.PaymentMethodId, sched.ExpectedAmount.Decimal, from, to)
		}
		if err != nil {
			return nil, err
		}
		accounted = append(accounted, fromConfirmed(confirmed)...)
	}

	set := make(map[string]bool, len(accounted))
	for _, a := range accounted {
		set[a.Date.Format(dateLayout)] = true
	}
	return set, nil
}
