package expense

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/haushalt/haushalt/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupUser(t *testing.T, db *sql.DB) int {
	t.Helper()
	result, err := db.Exec(`INSERT INTO users (uid, username) VALUES ('u-1', 'test')`)
	require.NoError(t, err)
	id, err := result.LastInsertId()
	require.NoError(t, err)
	return int(id)
}

func sampleReceipt(alice int) Expense {
	return Expense{
		Date:            time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		RecipientId:     3,
		PaymentMethodId: 1,
		Status:          StatusPaid,
		DiscountPct:     dec("10"),
		SplitType:       SplitLineItem,
		Note:            "groceries",
		Items: []LineItem{
			{Name: "wine", Quantity: dec("1"), UnitPrice: dec("12.00"), DebtorEntityId: &alice},
			{Name: "bread", Quantity: dec("2"), UnitPrice: dec("1.50"), ExcludeFromDiscount: true},
		},
	}
}

func TestRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	userId := setupUser(t, db)
	repo := NewRepo(db)
	alice := 5

	t.Run("should store and read back a receipt with items", func(t *testing.T) {
		id, err := repo.Store(ctx, userId, sampleReceipt(alice))
		require.NoError(t, err)

		stored, err := repo.Get(ctx, userId, id)
		require.NoError(t, err)
		assert.Equal(t, StatusPaid, stored.Status)
		assert.True(t, dec("10").Equal(stored.DiscountPct))
		require.Len(t, stored.Items, 2)
		assert.Equal(t, "wine", stored.Items[0].Name)
		require.NotNil(t, stored.Items[0].DebtorEntityId)
		assert.Equal(t, alice, *stored.Items[0].DebtorEntityId)
		assert.True(t, stored.Items[1].ExcludeFromDiscount)
		assert.True(t, dec("13.80").Equal(stored.Total()), "got %s", stored.Total())
	})

	t.Run("should replace items and splits on update", func(t *testing.T) {
		id, err := repo.Store(ctx, userId, sampleReceipt(alice))
		require.NoError(t, err)
		stored, err := repo.Get(ctx, userId, id)
		require.NoError(t, err)

		stored.SplitType = SplitTotal
		stored.OwnShares = 1
		stored.Items = []LineItem{{Name: "cheese", Quantity: dec("1"), UnitPrice: dec("4.00")}}
		stored.Splits = []Split{{EntityId: alice, SplitPart: 1}}

		ok, err := repo.Update(ctx, userId, stored)
		require.NoError(t, err)
		assert.True(t, ok)

		updated, err := repo.Get(ctx, userId, id)
		require.NoError(t, err)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, "cheese", updated.Items[0].Name)
		require.Len(t, updated.Splits, 1)
		assert.Equal(t, alice, updated.Splits[0].EntityId)
	})

	t.Run("should report a missing receipt", func(t *testing.T) {
		_, err := repo.Get(ctx, userId, 9999)
		assert.ErrorIs(t, err, ErrExpenseNotFound)

		ok, err := repo.Update(ctx, userId, Expense{ID: 9999, Date: time.Now(), Status: StatusUnpaid})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestRepoFindByEntity(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	userId := setupUser(t, db)
	repo := NewRepo(db)
	alice := 5

	// linked through a line item tag
	_, err := repo.Store(ctx, userId, sampleReceipt(alice))
	require.NoError(t, err)
	// linked through a direct obligation
	_, err = repo.Store(ctx, userId, Expense{
		Date:             time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC),
		RecipientId:      4,
		PaymentMethodId:  1,
		Status:           StatusUnpaid,
		IsNonItemised:    true,
		NonItemisedTotal: dec("15"),
		OwedToEntityId:   &alice,
	})
	require.NoError(t, err)
	// linked through a split
	_, err = repo.Store(ctx, userId, Expense{
		Date:             time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC),
		RecipientId:      4,
		PaymentMethodId:  1,
		Status:           StatusPaid,
		IsNonItemised:    true,
		NonItemisedTotal: dec("60"),
		SplitType:        SplitTotal,
		OwnShares:        1,
		Splits:           []Split{{EntityId: alice, SplitPart: 1}},
	})
	require.NoError(t, err)
	// tentative: never part of a balance
	_, err = repo.Store(ctx, userId, Expense{
		Date:             time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
		RecipientId:      4,
		PaymentMethodId:  1,
		Status:           StatusTentative,
		IsNonItemised:    true,
		NonItemisedTotal: dec("99"),
		OwedToEntityId:   &alice,
	})
	require.NoError(t, err)
	// unrelated
	_, err = repo.Store(ctx, userId, Expense{
		Date:             time.Date(2024, 6, 19, 0, 0, 0, 0, time.UTC),
		RecipientId:      4,
		PaymentMethodId:  1,
		Status:           StatusPaid,
		IsNonItemised:    true,
		NonItemisedTotal: dec("10"),
	})
	require.NoError(t, err)

	expenses, err := repo.FindByEntity(ctx, userId, alice)

	require.NoError(t, err)
	require.Len(t, expenses, 3)
	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), expenses[0].Date)
	require.Len(t, expenses[0].Items, 2)
}

func TestRepoPayments(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	userId := setupUser(t, db)
	repo := NewRepo(db)
	alice := 5

	expenseId, err := repo.Store(ctx, userId, sampleReceipt(alice))
	require.NoError(t, err)

	paymentId, err := repo.StorePayment(ctx, userId, DebtorPayment{
		ExpenseId: expenseId,
		EntityId:  alice,
		PaidAt:    time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	payments, err := repo.GetPaymentsForEntity(ctx, userId, alice)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, expenseId, payments[0].ExpenseId)
	assert.Equal(t, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), payments[0].PaidAt)

	ok, err := repo.DeletePayment(ctx, userId, paymentId)
	require.NoError(t, err)
	assert.True(t, ok)

	payments, err = repo.GetPayments(ctx, userId, expenseId)
	require.NoError(t, err)
	assert.Empty(t, payments)
}
