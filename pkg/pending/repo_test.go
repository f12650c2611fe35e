package pending

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/haushalt/haushalt/internal/test_utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFixtures(t *testing.T, db *sql.DB) (userId, scheduleId int) {
	t.Helper()
	result, err := db.Exec(`INSERT INTO users (uid, username) VALUES ('u-1', 'test')`)
	require.NoError(t, err)
	uid, err := result.LastInsertId()
	require.NoError(t, err)

	result, err = db.Exec(`INSERT INTO schedule
		(user_id, kind, counterparty_id, payment_method_id, rule, requires_confirmation, is_active, created_at)
		VALUES (?, 'expense', 1, 1, 'FREQ=MONTHLY;INTERVAL=1', TRUE, TRUE, '2024-06-01T00:00:00Z')`, uid)
	require.NoError(t, err)
	sid, err := result.LastInsertId()
	require.NoError(t, err)
	return int(uid), int(sid)
}

func TestRepoInsert(t *testing.T) {
	ctx := context.Background()

	t.Run("should swallow a duplicate planned date", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		userId, scheduleId := setupFixtures(t, db)
		repo := NewRepo(db)
		occurrence := PendingOccurrence{
			ScheduleId:  scheduleId,
			PlannedDate: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
			Amount:      decimal.NewNullDecimal(decimal.NewFromInt(800)),
		}

		created, err := repo.Insert(ctx, userId, occurrence)
		require.NoError(t, err)
		assert.True(t, created)

		created, err = repo.Insert(ctx, userId, occurrence)
		require.NoError(t, err)
		assert.False(t, created)

		rows, err := repo.GetAll(ctx, userId)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("should keep distinct planned dates apart", func(t *testing.T) {
		db := test_utils.SetupTestDB(t)
		userId, scheduleId := setupFixtures(t, db)
		repo := NewRepo(db)

		for day := 1; day <= 3; day++ {
			created, err := repo.Insert(ctx, userId, PendingOccurrence{
				ScheduleId:  scheduleId,
				PlannedDate: time.Date(2024, 7, day, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)
			assert.True(t, created)
		}

		rows, err := repo.GetAll(ctx, userId)
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := test_utils.SetupTestDB(t)
	userId, scheduleId := setupFixtures(t, db)
	repo := NewRepo(db)

	t.Run("should read back a stored occurrence", func(t *testing.T) {
		planned := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
		_, err := repo.Insert(ctx, userId, PendingOccurrence{
			ScheduleId:  scheduleId,
			PlannedDate: planned,
			Amount:      decimal.NewNullDecimal(decimal.RequireFromString("799.99")),
		})
		require.NoError(t, err)

		rows, err := repo.GetBySchedule(ctx, userId, scheduleId)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, planned, rows[0].PlannedDate)
		require.True(t, rows[0].Amount.Valid)
		assert.True(t, decimal.RequireFromString("799.99").Equal(rows[0].Amount.Decimal))
	})

	t.Run("should delete all rows of a schedule", func(t *testing.T) {
		count, err := repo.DeleteForSchedule(ctx, userId, scheduleId)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		rows, err := repo.GetAll(ctx, userId)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})
}
