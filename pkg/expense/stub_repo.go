package expense

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StubRepo struct {
	nextId        int
	nextPaymentId int
	data          map[int]Expense
	payments      map[int]DebtorPayment
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]Expense{}, payments: map[int]DebtorPayment{}}
}

func (s *StubRepo) Store(ctx context.Context, userId int, expense Expense) (int, error) {
	s.nextId++
	expense.ID = s.nextId
	s.data[expense.ID] = expense
	return expense.ID, nil
}

func (s *StubRepo) Get(ctx context.Context, userId int, id int) (Expense, error) {
	expense, ok := s.data[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return expense, nil
}

func (s *StubRepo) GetAll(ctx context.Context, userId int, from, to time.Time) ([]Expense, error) {
	var expenses []Expense
	for id := 1; id <= s.nextId; id++ {
		expense, ok := s.data[id]
		if !ok {
			continue
		}
		if !expense.Date.Before(from) && !expense.Date.After(to) {
			expenses = append(expenses, expense)
		}
	}
	return expenses, nil
}

func (s *StubRepo) Update(ctx context.Context, userId int, expense Expense) (bool, error) {
	if _, ok := s.data[expense.ID]; !ok {
		return false, nil
	}
	s.data[expense.ID] = expense
	return true, nil
}

func (s *StubRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepo) FindDates(ctx context.Context, userId int, recipientId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	for _, expense := range s.data {
		if expense.RecipientId != recipientId || expense.PaymentMethodId != paymentMethodId {
			continue
		}
		if !expense.IsNonItemised || !expense.NonItemisedTotal.Equal(amount) {
			continue
		}
		if !expense.Date.Before(from) && !expense.Date.After(to) {
			dates = append(dates, expense.Date)
		}
	}
	return dates, nil
}

func (s *StubRepo) FindByEntity(ctx context.Context, userId int, entityId int) ([]Expense, error) {
	var expenses []Expense
	for id := 1; id <= s.nextId; id++ {
		expense, ok := s.data[id]
		if !ok || expense.Status == StatusTentative {
			continue
		}
		if s.linkedToEntity(expense, entityId) {
			expenses = append(expenses, expense)
		}
	}
	return expenses, nil
}

func (s *StubRepo) linkedToEntity(expense Expense, entityId int) bool {
	if expense.OwedToEntityId != nil && *expense.OwedToEntityId == entityId {
		return true
	}
	for _, split := range expense.Splits {
		if split.EntityId == entityId {
			return true
		}
	}
	for _, li := range expense.Items {
		if li.DebtorEntityId != nil && *li.DebtorEntityId == entityId {
			return true
		}
	}
	return false
}

func (s *StubRepo) StorePayment(ctx context.Context, userId int, payment DebtorPayment) (int, error) {
	s.nextPaymentId++
	payment.ID = s.nextPaymentId
	s.payments[payment.ID] = payment
	return payment.ID, nil
}

func (s *StubRepo) DeletePayment(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.payments[id]; !ok {
		return false, nil
	}
	delete(s.payments, id)
	return true, nil
}

func (s *StubRepo) GetPayments(ctx context.Context, userId int, expenseId int) ([]DebtorPayment, error) {
	var payments []DebtorPayment
	for id := 1; id <= s.nextPaymentId; id++ {
		payment, ok := s.payments[id]
		if ok && payment.ExpenseId == expenseId {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (s *StubRepo) GetPaymentsForEntity(ctx context.Context, userId int, entityId int) ([]DebtorPayment, error) {
	var payments []DebtorPayment
	for id := 1; id <= s.nextPaymentId; id++ {
		payment, ok := s.payments[id]
		if ok && payment.EntityId == entityId {
			payments = append(payments, payment)
		}
	}
	return payments, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]Expense{}
	s.payments = map[int]DebtorPayment{}
	s.nextId = 0
	s.nextPaymentId = 0
}
