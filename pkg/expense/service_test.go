package expense

import (
	"context"
	"testing"
	"time"

	"github.com/haushalt/haushalt/internal/utils"
	"github.com/haushalt/haushalt/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1, Username: "test"})
}

func TestExpenseService(t *testing.T) {
	repo := NewStubRepo()
	clock := &utils.MockClock{FixedNow: time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)}
	service := NewService(repo, clock)
	ctx := testContext()

	valid := func() Expense {
		return Expense{
			Date:             time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
			RecipientId:      3,
			PaymentMethodId:  1,
			Status:           StatusPaid,
			IsNonItemised:    true,
			NonItemisedTotal: dec("42.50"),
		}
	}

	t.Run("should create a receipt", func(t *testing.T) {
		defer repo.Cleanup()

		created, err := service.Create(ctx, valid())

		require.NoError(t, err)
		assert.NotZero(t, created.ID)
	})

	t.Run("should default the split type to none", func(t *testing.T) {
		defer repo.Cleanup()
		e := valid()
		e.SplitType = ""

		created, err := service.Create(ctx, e)

		require.NoError(t, err)
		assert.Equal(t, SplitNone, created.SplitType)
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		defer repo.Cleanup()
		e := valid()
		e.Status = "settled"

		_, err := service.Create(ctx, e)

		assert.Error(t, err)
	})

	t.Run("should reject a discount above 100 percent", func(t *testing.T) {
		defer repo.Cleanup()
		e := valid()
		e.DiscountPct = dec("101")

		_, err := service.Create(ctx, e)

		assert.Error(t, err)
	})

	t.Run("should reject a non positive split part", func(t *testing.T) {
		defer repo.Cleanup()
		e := valid()
		e.SplitType = SplitTotal
		e.OwnShares = 1
		e.Splits = []Split{{EntityId: 5, SplitPart: 0}}

		_, err := service.Create(ctx, e)

		assert.Error(t, err)
	})

	t.Run("should cache the share denominator on create", func(t *testing.T) {
		defer repo.Cleanup()
		e := valid()
		e.SplitType = SplitTotal
		e.OwnShares = 1
		e.Splits = []Split{{EntityId: 5, SplitPart: 2}}

		created, err := service.Create(ctx, e)

		require.NoError(t, err)
		assert.Equal(t, 3, created.TotalShares)
	})

	t.Run("should stamp a settlement with the current date", func(t *testing.T) {
		defer repo.Cleanup()
		created, err := service.Create(ctx, valid())
		require.NoError(t, err)

		payment, err := service.RecordPayment(ctx, created.ID, 5)

		require.NoError(t, err)
		assert.Equal(t, clock.FixedNow, payment.PaidAt)
	})

	t.Run("should refuse a settlement on a missing receipt", func(t *testing.T) {
		defer repo.Cleanup()

		_, err := service.RecordPayment(ctx, 9999, 5)

		assert.ErrorIs(t, err, ErrExpenseNotFound)
	})
}
