// Package posting turns schedule occurrences into confirmed transactions.
package posting

import (
	"context"
	"fmt"
	"time"

	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/income"
	"github.com/haushalt/haushalt/pkg/schedule"
	"github.com/shopspring/decimal"
)

type Poster struct {
	incomes  income.Service
	expenses expense.Service
}

func NewPoster(incomes income.Service, expenses expense.Service) *Poster {
	return &Poster{incomes: incomes, expenses: expenses}
}

// PostOccurrence records one occurrence of a schedule as an income row or a
// non-itemised paid expense, depending on the schedule's kind.
func (p *Poster) PostOccurrence(ctx context.Context, sched schedule.Schedule, date time.Time, amount decimal.Decimal, paymentMethodId int) error {
	switch sched.Kind {
	case schedule.KindIncome:
		_, err := p.incomes.Create(ctx, income.Income{
			Date:            date,
			Amount:          amount,
			SourceId:        sched.CounterpartyId,
			CategoryId:      sched.CategoryId,
			PaymentMethodId: paymentMethodId,
			Note:            sched.Note,
		})
		if err != nil {
			return fmt.Errorf("could not post income for schedule %d: %w", sched.ID, err)
		}
		return nil
	case schedule.KindExpense:
		_, err := p.expenses.Create(ctx, expense.Expense{
			Date:             date,
			RecipientId:      sched.CounterpartyId,
			CategoryId:       sched.CategoryId,
			PaymentMethodId:  paymentMethodId,
			Status:           expense.StatusPaid,
			IsNonItemised:    true,
			NonItemisedTotal: amount,
			SplitType:        expense.SplitNone,
			Note:             sched.Note,
		})
		if err != nil {
			return fmt.Errorf("could not post expense for schedule %d: %w", sched.ID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown schedule kind %q", sched.Kind)
	}
}
