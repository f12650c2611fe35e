package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/user"
)

type Service interface {
	GetAll(ctx context.Context, from, to time.Time) ([]Expense, error)
	Get(ctx context.Context, id int) (Expense, error)
	Create(ctx context.Context, expense Expense) (Expense, error)
	Update(ctx context.Context, expense Expense) (Expense, error)
	Delete(ctx context.Context, id int) (bool, error)
	RecordPayment(ctx context.Context, expenseId int, entityId int) (DebtorPayment, error)
	DeletePayment(ctx context.Context, id int) (bool, error)
}

type ServiceImpl struct {
	repo  Repo
	clock utils.Clock
}

func NewService(repo Repo, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) GetAll(ctx context.Context, from, to time.Time) ([]Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAll(ctx, userId, from, to)
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Create(ctx context.Context, expense Expense) (Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(&expense); err != nil {
		return Expense{}, err
	}

	id, err := s.repo.Store(ctx, userId, expense)
	if err != nil {
		return Expense{}, err
	}
	return s.repo.Get(ctx, userId, id)
}

func (s *ServiceImpl) Update(ctx context.Context, expense Expense) (Expense, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(&expense); err != nil {
		return Expense{}, err
	}

	ok, err := s.repo.Update(ctx, userId, expense)
	if err != nil {
		return Expense{}, err
	}
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return s.repo.Get(ctx, userId, expense.ID)
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Delete(ctx, userId, id)
}

func (s *ServiceImpl) RecordPayment(ctx context.Context, expenseId int, entityId int) (DebtorPayment, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return DebtorPayment{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := s.repo.Get(ctx, userId, expenseId); err != nil {
		return DebtorPayment{}, err
	}

	payment := DebtorPayment{
		ExpenseId: expenseId,
		EntityId:  entityId,
		PaidAt:    s.clock.Now(),
	}
	id, err := s.repo.StorePayment(ctx, userId, payment)
	if err != nil {
		return DebtorPayment{}, err
	}
	payment.ID = id
	return payment, nil
}

func (s *ServiceImpl) DeletePayment(ctx context.Context, id int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.DeletePayment(ctx, userId, id)
}

func validate(expense *Expense) error {
	switch expense.Status {
	case "":
		expense.Status = StatusUnpaid
	case StatusTentative, StatusUnpaid, StatusPaid:
	default:
		return fmt.Errorf("invalid expense status: %q", expense.Status)
	}
	switch expense.SplitType {
	case "":
		expense.SplitType = SplitNone
	case SplitNone, SplitTotal, SplitLineItem:
	default:
		return fmt.Errorf("invalid split type: %q", expense.SplitType)
	}
	if expense.DiscountPct.IsNegative() || expense.DiscountPct.GreaterThan(oneHundred) {
		return fmt.Errorf("discount percentage must be between 0 and 100")
	}
	if expense.IsNonItemised && expense.NonItemisedTotal.IsNegative() {
		return fmt.Errorf("expense total must not be negative")
	}
	for _, li := range expense.Items {
		if li.Quantity.IsNegative() || li.UnitPrice.IsNegative() {
			return fmt.Errorf("line item %q must not have a negative quantity or price", li.Name)
		}
	}
	for _, split := range expense.Splits {
		if split.SplitPart <= 0 {
			return fmt.Errorf("split parts must be positive")
		}
	}
	if expense.SplitType == SplitTotal && expense.TotalShares <= 0 {
		expense.TotalShares = TotalShares(expense.OwnShares, expense.Splits)
	}
	return nil
}
