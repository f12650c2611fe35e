package income

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StubRepo struct {
	nextId int
	data   map[int]Income
}

func NewStubRepo() *StubRepo {
	return &StubRepo{data: map[int]Income{}}
}

func (s *StubRepo) Store(ctx context.Context, userId int, income Income) (int, error) {
	s.nextId++
	income.ID = s.nextId
	s.data[income.ID] = income
	return income.ID, nil
}

func (s *StubRepo) GetAll(ctx context.Context, userId int, from, to time.Time) ([]Income, error) {
	var incomes []Income
	for id := 1; id <= s.nextId; id++ {
		income, ok := s.data[id]
		if !ok {
			continue
		}
		if !income.Date.Before(from) && !income.Date.After(to) {
			incomes = append(incomes, income)
		}
	}
	return incomes, nil
}

func (s *StubRepo) Delete(ctx context.Context, userId int, id int) (bool, error) {
	if _, ok := s.data[id]; !ok {
		return false, nil
	}
	delete(s.data, id)
	return true, nil
}

func (s *StubRepo) FindDates(ctx context.Context, userId int, sourceId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error) {
	var dates []time.Time
	for _, income := range s.data {
		if income.SourceId != sourceId || income.PaymentMethodId != paymentMethodId {
			continue
		}
		if !income.Amount.Equal(amount) {
			continue
		}
		if !income.Date.Before(from) && !income.Date.After(to) {
			dates = append(dates, income.Date)
		}
	}
	return dates, nil
}

func (s *StubRepo) Cleanup() {
	s.data = map[int]Income{}
	s.nextId = 0
}
