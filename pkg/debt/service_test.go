package debt

import (
	"context"
	"testing"
	"time"

	"github.com/haushalt/haushalt/pkg/expense"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1, Username: "test"})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateDebts(t *testing.T) {
	repo := expense.NewStubRepo()
	service := NewService(repo)
	ctx := testContext()
	date := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	alice := 5

	t.Run("should net shares owed to me against direct obligations", func(t *testing.T) {
		defer repo.Cleanup()
		// given a 60 receipt split 1:2 where alice owes 40
		_, err := repo.Store(ctx, 1, expense.Expense{
			Date:             date,
			RecipientId:      10,
			PaymentMethodId:  1,
			Status:           expense.StatusPaid,
			IsNonItemised:    true,
			NonItemisedTotal: dec("60"),
			SplitType:        expense.SplitTotal,
			OwnShares:        1,
			Splits:           []expense.Split{{EntityId: alice, SplitPart: 2}},
		})
		require.NoError(t, err)
		// and an unpaid 15 owed directly to alice
		_, err = repo.Store(ctx, 1, expense.Expense{
			Date:             date,
			RecipientId:      11,
			PaymentMethodId:  1,
			Status:           expense.StatusUnpaid,
			IsNonItemised:    true,
			NonItemisedTotal: dec("15"),
			OwedToEntityId:   &alice,
		})
		require.NoError(t, err)

		// when
		summary, err := service.CalculateDebts(ctx, alice)

		// then
		require.NoError(t, err)
		assert.Len(t, summary.Receipts, 2)
		assert.True(t, dec("40").Equal(summary.DebtToMe), "got %s", summary.DebtToMe)
		assert.True(t, dec("15").Equal(summary.DebtToEntity), "got %s", summary.DebtToEntity)
		assert.True(t, dec("25").Equal(summary.NetBalance), "got %s", summary.NetBalance)
	})

	t.Run("should settle a direct obligation when the expense is paid", func(t *testing.T) {
		defer repo.Cleanup()
		_, err := repo.Store(ctx, 1, expense.Expense{
			Date:             date,
			RecipientId:      11,
			PaymentMethodId:  1,
			Status:           expense.StatusPaid,
			IsNonItemised:    true,
			NonItemisedTotal: dec("15"),
			OwedToEntityId:   &alice,
		})
		require.NoError(t, err)

		summary, err := service.CalculateDebts(ctx, alice)

		require.NoError(t, err)
		require.Len(t, summary.Receipts, 1)
		assert.True(t, summary.Receipts[0].Settled)
		assert.True(t, summary.DebtToEntity.IsZero())
		assert.True(t, summary.NetBalance.IsZero())
	})

	t.Run("should settle a share through a debtor payment row", func(t *testing.T) {
		defer repo.Cleanup()
		expenseId, err := repo.Store(ctx, 1, expense.Expense{
			Date:             date,
			RecipientId:      10,
			PaymentMethodId:  1,
			Status:           expense.StatusPaid,
			IsNonItemised:    true,
			NonItemisedTotal: dec("60"),
			SplitType:        expense.SplitTotal,
			OwnShares:        1,
			Splits:           []expense.Split{{EntityId: alice, SplitPart: 2}},
		})
		require.NoError(t, err)
		_, err = repo.StorePayment(ctx, 1, expense.DebtorPayment{ExpenseId: expenseId, EntityId: alice, PaidAt: date})
		require.NoError(t, err)

		summary, err := service.CalculateDebts(ctx, alice)

		require.NoError(t, err)
		require.Len(t, summary.Receipts, 1)
		assert.True(t, summary.Receipts[0].Settled)
		assert.True(t, summary.DebtToMe.IsZero())
	})

	t.Run("should ignore tentative receipts", func(t *testing.T) {
		defer repo.Cleanup()
		_, err := repo.Store(ctx, 1, expense.Expense{
			Date:             date,
			RecipientId:      10,
			PaymentMethodId:  1,
			Status:           expense.StatusTentative,
			IsNonItemised:    true,
			NonItemisedTotal: dec("60"),
			SplitType:        expense.SplitTotal,
			OwnShares:        1,
			Splits:           []expense.Split{{EntityId: alice, SplitPart: 1}},
		})
		require.NoError(t, err)

		summary, err := service.CalculateDebts(ctx, alice)

		require.NoError(t, err)
		assert.Empty(t, summary.Receipts)
		assert.True(t, summary.NetBalance.IsZero())
	})

	t.Run("should count line item tags owed to me", func(t *testing.T) {
		defer repo.Cleanup()
		wine := expense.LineItem{Name: "wine", Quantity: dec("1"), UnitPrice: dec("12.00"), DebtorEntityId: &alice}
		bread := expense.LineItem{Name: "bread", Quantity: dec("1"), UnitPrice: dec("2.00")}
		_, err := repo.Store(ctx, 1, expense.Expense{
			Date:            date,
			RecipientId:     10,
			PaymentMethodId: 1,
			Status:          expense.StatusPaid,
			SplitType:       expense.SplitLineItem,
			Items:           []expense.LineItem{wine, bread},
		})
		require.NoError(t, err)

		summary, err := service.CalculateDebts(ctx, alice)

		require.NoError(t, err)
		require.Len(t, summary.Receipts, 1)
		assert.True(t, dec("12.00").Equal(summary.DebtToMe))
	})
}

func TestSummarizeReceipt(t *testing.T) {
	alice, bob := 5, 6

	t.Run("should break a total split down per debtor", func(t *testing.T) {
		e := expense.Expense{
			ID:               1,
			IsNonItemised:    true,
			NonItemisedTotal: dec("90"),
			SplitType:        expense.SplitTotal,
			OwnShares:        1,
			Splits: []expense.Split{
				{EntityId: alice, SplitPart: 1},
				{EntityId: bob, SplitPart: 1},
			},
		}
		payments := []expense.DebtorPayment{{ExpenseId: 1, EntityId: bob}}

		shares := SummarizeReceipt(e, payments)

		require.Len(t, shares, 2)
		assert.Equal(t, alice, shares[0].EntityId)
		assert.True(t, dec("30").Equal(shares[0].Amount))
		assert.False(t, shares[0].Paid)
		assert.Equal(t, bob, shares[1].EntityId)
		assert.True(t, shares[1].Paid)
	})

	t.Run("should have no debtors without a split", func(t *testing.T) {
		e := expense.Expense{ID: 1, IsNonItemised: true, NonItemisedTotal: dec("90")}

		assert.Empty(t, SummarizeReceipt(e, nil))
	})

	t.Run("should assign no amounts when the share denominator is zero", func(t *testing.T) {
		e := expense.Expense{
			ID:               1,
			IsNonItemised:    true,
			NonItemisedTotal: dec("90"),
			SplitType:        expense.SplitTotal,
			OwnShares:        0,
		}

		assert.Empty(t, SummarizeReceipt(e, nil))
	})
}
