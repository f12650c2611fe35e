package debt

import (
	"context"
	"fmt"
	"sort"

	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
)

type Service interface {
	// CalculateDebts nets every non-tentative receipt linked to the entity.
	CalculateDebts(ctx context.Context, entityId int) (Summary, error)
	// ReceiptSummary breaks one receipt down per debtor.
	ReceiptSummary(ctx context.Context, expenseId int) ([]DebtorShare, error)
}

type ServiceImpl struct {
	expenses expense.Repo
}

func NewService(expenses expense.Repo) *ServiceImpl {
	return &ServiceImpl{expenses: expenses}
}

func (s *ServiceImpl) CalculateDebts(ctx context.Context, entityId int) (Summary, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to get current user: %w", err)
	}

	expenses, err := s.expenses.FindByEntity(ctx, userId, entityId)
	if err != nil {
		return Summary{}, err
	}
	payments, err := s.expenses.GetPaymentsForEntity(ctx, userId, entityId)
	if err != nil {
		return Summary{}, err
	}
	paidExpenses := map[int]bool{}
	for _, p := range payments {
		paidExpenses[p.ExpenseId] = true
	}

	summary := Summary{
		DebtToEntity: decimal.Zero,
		DebtToMe:     decimal.Zero,
	}
	for _, e := range expenses {
		if e.OwedToEntityId != nil && *e.OwedToEntityId == entityId {
			// a direct obligation: its whole total is owed to the entity
			// and settles when the expense is marked paid
			rd := ReceiptDebt{
				ExpenseId: e.ID,
				Date:      e.Date,
				Direction: DirectionToEntity,
				Amount:    e.Total(),
				Settled:   e.Status == expense.StatusPaid,
			}
			summary.Receipts = append(summary.Receipts, rd)
			if !rd.Settled {
				summary.DebtToEntity = summary.DebtToEntity.Add(rd.Amount)
			}
		}

		share := e.ShareForEntity(entityId)
		if share.IsPositive() {
			rd := ReceiptDebt{
				ExpenseId: e.ID,
				Date:      e.Date,
				Direction: DirectionToMe,
				Amount:    share,
				Settled:   paidExpenses[e.ID],
			}
			summary.Receipts = append(summary.Receipts, rd)
			if !rd.Settled {
				summary.DebtToMe = summary.DebtToMe.Add(rd.Amount)
			}
		}
	}
	summary.NetBalance = summary.DebtToMe.Sub(summary.DebtToEntity)
	return summary, nil
}

func (s *ServiceImpl) ReceiptSummary(ctx context.Context, expenseId int) ([]DebtorShare, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	e, err := s.expenses.Get(ctx, userId, expenseId)
	if err != nil {
		return nil, err
	}
	payments, err := s.expenses.GetPayments(ctx, userId, expenseId)
	if err != nil {
		return nil, err
	}
	return SummarizeReceipt(e, payments), nil
}

// SummarizeReceipt computes each debtor's share of a receipt under its split
// configuration and marks the shares that already have a settlement row.
func SummarizeReceipt(e expense.Expense, payments []expense.DebtorPayment) []DebtorShare {
	amounts := map[int]decimal.Decimal{}
	switch e.SplitType {
	case expense.SplitTotal:
		amounts = expense.Apportion(e.Total(), e.OwnShares, e.Splits).PerEntity
	case expense.SplitLineItem:
		amounts = expense.LineItemShares(e.Items, e.DiscountPct)
	}

	paid := map[int]bool{}
	for _, p := range payments {
		paid[p.EntityId] = true
	}

	shares := make([]DebtorShare, 0, len(amounts))
	for entityId, amount := range amounts {
		shares = append(shares, DebtorShare{EntityId: entityId, Amount: amount, Paid: paid[entityId]})
	}
	sort.Slice(shares, func(i, j int) bool { return shares[i].EntityId < shares[j].EntityId })
	return shares
}
