package income

import (
	"context"
	"testing"
	"time"

	"github.com/haushalt/haushalt/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return user.WithUser(context.Background(), user.User{Id: 1, Username: "test"})
}

func TestIncomeService(t *testing.T) {
	repo := NewStubRepo()
	service := NewService(repo)
	ctx := testContext()

	t.Run("should record an income", func(t *testing.T) {
		defer repo.Cleanup()

		created, err := service.Create(ctx, Income{
			Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Amount:          decimal.RequireFromString("2500"),
			SourceId:        2,
			PaymentMethodId: 1,
		})

		require.NoError(t, err)
		assert.NotZero(t, created.ID)
	})

	t.Run("should reject a negative amount", func(t *testing.T) {
		defer repo.Cleanup()

		_, err := service.Create(ctx, Income{
			Date:            time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			Amount:          decimal.RequireFromString("-1"),
			SourceId:        2,
			PaymentMethodId: 1,
		})

		assert.Error(t, err)
	})

	t.Run("should list incomes inside the range only", func(t *testing.T) {
		defer repo.Cleanup()
		for _, day := range []int{1, 15, 30} {
			_, err := service.Create(ctx, Income{
				Date:            time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
				Amount:          decimal.RequireFromString("10"),
				SourceId:        2,
				PaymentMethodId: 1,
			})
			require.NoError(t, err)
		}

		incomes, err := service.GetAll(ctx,
			time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		assert.Len(t, incomes, 1)
	})

	t.Run("should fail without a profile in context", func(t *testing.T) {
		_, err := service.Create(context.Background(), Income{})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}
