package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/income"
	"github.com/haushalt/haushalt/pkg/pending"
	"github.com/haushalt/haushalt/pkg/recurrence"
	"github.com/haushalt/haushalt/pkg/schedule"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postedOccurrence struct {
	scheduleId int
	date       time.Time
	amount     decimal.Decimal
}

type recordingPoster struct {
	posted []postedOccurrence
	fail   bool
}

func (p *recordingPoster) PostOccurrence(ctx context.Context, sched schedule.Schedule, date time.Time, amount decimal.Decimal, paymentMethodId int) error {
	if p.fail {
		return assert.AnError
	}
	p.posted = append(p.posted, postedOccurrence{scheduleId: sched.ID, date: date, amount: amount})
	return nil
}

type fixture struct {
	schedules *schedule.StubRepo
	pendings  *pending.StubRepo
	incomes   *income.StubRepo
	expenses  *expense.StubRepo
	poster    *recordingPoster
	clock     *utils.MockClock
	service   *Service
	ctx       context.Context
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		schedules: schedule.NewStubRepo(),
		pendings:  pending.NewStubRepo(),
		incomes:   income.NewStubRepo(),
		expenses:  expense.NewStubRepo(),
		poster:    &recordingPoster{},
		clock:     &utils.MockClock{FixedNow: now},
		ctx:       user.WithUser(context.Background(), user.User{Id: 1, Username: "test"}),
	}
	f.service = NewService(f.schedules, f.pendings, f.incomes, f.expenses, f.poster, recurrence.NewGenerator(), f.clock)
	return f
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amount(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

func TestProcessSchedules(t *testing.T) {
	t.Run("should surface upcoming occurrences as pending rows", func(t *testing.T) {
		// given a monthly rent schedule needing confirmation, 40 days ahead
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:                 schedule.KindExpense,
			CounterpartyId:       1,
			PaymentMethodId:      1,
			ExpectedAmount:       amount("800"),
			Rule:                 "FREQ=MONTHLY;INTERVAL=1",
			Anchors:              recurrence.Anchors{DayOfMonth: 1},
			RequiresConfirmation: true,
			LookaheadDays:        40,
			IsActive:             true,
			CreatedAt:            day(2024, 6, 1),
		})
		require.NoError(t, err)

		// when
		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		// then July 1 is pending and nothing was auto posted
		rows, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, day(2024, 6, 1), rows[0].PlannedDate)
		assert.Equal(t, day(2024, 7, 1), rows[1].PlannedDate)
		assert.Empty(t, f.poster.posted)
	})

	t.Run("should post overdue occurrences that need no confirmation", func(t *testing.T) {
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:            schedule.KindIncome,
			CounterpartyId:  2,
			PaymentMethodId: 1,
			ExpectedAmount:  amount("2500"),
			Rule:            "FREQ=MONTHLY;INTERVAL=1",
			Anchors:         recurrence.Anchors{DayOfMonth: 1},
			LookaheadDays:   40,
			IsActive:        true,
			CreatedAt:       day(2024, 5, 15),
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		// June 1 is overdue and posted; July 1 is in the future and is not
		require.Len(t, f.poster.posted, 1)
		assert.Equal(t, day(2024, 6, 1), f.poster.posted[0].date)
		assert.True(t, decimal.RequireFromString("2500").Equal(f.poster.posted[0].amount))
		rows, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("should write nothing on a second immediate pass", func(t *testing.T) {
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:                 schedule.KindExpense,
			CounterpartyId:       1,
			PaymentMethodId:      1,
			ExpectedAmount:       amount("800"),
			Rule:                 "FREQ=MONTHLY;INTERVAL=1",
			Anchors:              recurrence.Anchors{DayOfMonth: 1},
			RequiresConfirmation: true,
			LookaheadDays:        40,
			IsActive:             true,
			CreatedAt:            day(2024, 6, 1),
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))
		first, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))
		second, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, len(first), len(second))
	})

	t.Run("should treat matching confirmed transactions as accounted for", func(t *testing.T) {
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:            schedule.KindIncome,
			CounterpartyId:  2,
			PaymentMethodId: 1,
			ExpectedAmount:  amount("2500"),
			Rule:            "FREQ=MONTHLY;INTERVAL=1",
			Anchors:         recurrence.Anchors{DayOfMonth: 1},
			LookaheadDays:   40,
			IsActive:        true,
			CreatedAt:       day(2024, 5, 15),
		})
		require.NoError(t, err)
		// the June salary is already booked
		_, err = f.incomes.Store(f.ctx, 1, income.Income{
			Date:            day(2024, 6, 1),
			Amount:          decimal.RequireFromString("2500"),
			SourceId:        2,
			PaymentMethodId: 1,
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		assert.Empty(t, f.poster.posted)
	})

	t.Run("should not match a confirmed transaction with a different amount", func(t *testing.T) {
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:            schedule.KindIncome,
			CounterpartyId:  2,
			PaymentMethodId: 1,
			ExpectedAmount:  amount("2500"),
			Rule:            "FREQ=MONTHLY;INTERVAL=1",
			Anchors:         recurrence.Anchors{DayOfMonth: 1},
			LookaheadDays:   40,
			IsActive:        true,
			CreatedAt:       day(2024, 5, 15),
		})
		require.NoError(t, err)
		_, err = f.incomes.Store(f.ctx, 1, income.Income{
			Date:            day(2024, 6, 1),
			Amount:          decimal.RequireFromString("2400"),
			SourceId:        2,
			PaymentMethodId: 1,
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		require.Len(t, f.poster.posted, 1)
		assert.Equal(t, day(2024, 6, 1), f.poster.posted[0].date)
	})

	t.Run("should skip a broken schedule and keep processing the rest", func(t *testing.T) {
		f := newFixture(day(2024, 6, 10))
		// stored directly, bypassing service validation
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:           schedule.KindIncome,
			CounterpartyId: 2,
			ExpectedAmount: amount("10"),
			Rule:           "FREQ=bogus",
			IsActive:       true,
			CreatedAt:      day(2024, 6, 1),
		})
		require.NoError(t, err)
		_, err = f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:                 schedule.KindExpense,
			CounterpartyId:       1,
			PaymentMethodId:      1,
			ExpectedAmount:       amount("800"),
			Rule:                 "FREQ=MONTHLY;INTERVAL=1",
			Anchors:              recurrence.Anchors{DayOfMonth: 1},
			RequiresConfirmation: true,
			LookaheadDays:        5,
			IsActive:             true,
			CreatedAt:            day(2024, 6, 1),
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		rows, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)
		assert.NotEmpty(t, rows)
	})

	t.Run("should act on at most the occurrence cap in one pass", func(t *testing.T) {
		// a daily schedule looking two thousand days ahead overflows the cap
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:                 schedule.KindExpense,
			CounterpartyId:       1,
			PaymentMethodId:      1,
			ExpectedAmount:       amount("5"),
			Rule:                 "FREQ=DAILY;INTERVAL=1",
			RequiresConfirmation: true,
			LookaheadDays:        2000,
			IsActive:             true,
			CreatedAt:            day(2024, 6, 1),
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		rows, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)
		assert.Len(t, rows, recurrence.MaxOccurrences)
	})

	t.Run("should ignore occurrences older than the lookbehind", func(t *testing.T) {
		// a schedule created a year ago only backfills three months
		f := newFixture(day(2024, 6, 10))
		_, err := f.schedules.Store(f.ctx, 1, schedule.Schedule{
			Kind:                 schedule.KindExpense,
			CounterpartyId:       1,
			PaymentMethodId:      1,
			ExpectedAmount:       amount("800"),
			Rule:                 "FREQ=MONTHLY;INTERVAL=1",
			Anchors:              recurrence.Anchors{DayOfMonth: 1},
			RequiresConfirmation: true,
			LookaheadDays:        0,
			IsActive:             true,
			CreatedAt:            day(2023, 6, 1),
		})
		require.NoError(t, err)

		require.NoError(t, f.service.ProcessSchedules(f.ctx))

		rows, err := f.pendings.GetAll(f.ctx, 1)
		require.NoError(t, err)
		require.NotEmpty(t, rows)
		assert.False(t, rows[0].PlannedDate.Before(day(2024, 3, 10)))
	})
}
