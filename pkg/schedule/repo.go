package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrScheduleNotFound = errors.New("schedule not found")

type Repo interface {
	Store(ctx context.Context, userId int, schedule Schedule) (int, error)
	Get(ctx context.Context, userId int, id int) (Schedule, error)
	GetAll(ctx context.Context, userId int, includeInactive bool) ([]Schedule, error)
	Update(ctx context.Context, userId int, schedule Schedule) (bool, error)
	Deactivate(ctx context.Context, userId int, id int) (bool, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const scheduleColumns = `id, kind, counterparty_id, category_id, entity_id, payment_method_id, expected_amount,
	rule, day_of_month, day_of_week, month_of_year, requires_confirmation, lookahead_days, is_active, note, created_at`

func (r *RepoImpl) Store(ctx context.Context, userId int, schedule Schedule) (int, error) {
	query := `INSERT INTO schedule (
			user_id,
			kind,
			counterparty_id,
			category_id,
			entity_id,
			payment_method_id,
			expected_amount,
			rule,
			day_of_month,
			day_of_week,
			month_of_year,
			requires_confirmation,
			lookahead_days,
			is_active,
			note,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		userId,
		schedule.Kind,
		schedule.CounterpartyId,
		schedule.CategoryId,
		schedule.EntityId,
		schedule.PaymentMethodId,
		schedule.ExpectedAmount,
		schedule.Rule,
		schedule.Anchors.DayOfMonth,
		int(schedule.Anchors.DayOfWeek),
		int(schedule.Anchors.MonthOfYear),
		schedule.RequiresConfirmation,
		schedule.LookaheadDays,
		schedule.IsActive,
		schedule.Note,
		schedule.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}

	return int(lastInsertID), nil
}

func (r *RepoImpl) Get(ctx context.Context, userId int, id int) (Schedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule WHERE id = ? AND user_id = ?`, scheduleColumns)
	row := r.db.QueryRowContext(ctx, query, id, userId)
	schedule, err := scanSchedule(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Schedule{}, ErrScheduleNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan schedule: %w", err)
		log.Error(err)
		return Schedule{}, err
	}
	return schedule, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, userId int, includeInactive bool) ([]Schedule, error) {
	activeWhereQuery := "AND is_active = TRUE"
	if includeInactive {
		activeWhereQuery = ""
	}
	query := fmt.Sprintf("SELECT %s FROM schedule WHERE user_id = ? %s ORDER BY id", scheduleColumns, activeWhereQuery)

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query schedules: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		schedule, err := scanSchedule(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan schedule: %w", err)
			log.Error(err)
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, rows.Err()
}

func (r *RepoImpl) Update(ctx context.Context, userId int, schedule Schedule) (bool, error) {
	query := `UPDATE schedule SET
			kind = ?,
			counterparty_id = ?,
			category_id = ?,
			entity_id = ?,
			payment_method_id = ?,
			expected_amount = ?,
			rule = ?,
			day_of_month = ?,
			day_of_week = ?,
			month_of_year = ?,
			requires_confirmation = ?,
			lookahead_days = ?,
			is_active = ?,
			note = ?
		WHERE id = ? AND user_id = ?`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		schedule.Kind,
		schedule.CounterpartyId,
		schedule.CategoryId,
		schedule.EntityId,
		schedule.PaymentMethodId,
		schedule.ExpectedAmount,
		schedule.Rule,
		schedule.Anchors.DayOfMonth,
		int(schedule.Anchors.DayOfWeek),
		int(schedule.Anchors.MonthOfYear),
		schedule.RequiresConfirmation,
		schedule.LookaheadDays,
		schedule.IsActive,
		schedule.Note,
		schedule.ID,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func (r *RepoImpl) Deactivate(ctx context.Context, userId int, id int) (bool, error) {
	query := "UPDATE schedule SET is_active = FALSE WHERE id = ? AND user_id = ?"
	result, err := r.db.ExecContext(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	return rowsAffected == 1, nil
}

func scanSchedule(scan func(dest ...any) error) (Schedule, error) {
	var schedule Schedule
	var dayOfWeek, monthOfYear int
	var createdAt string
	if err := scan(
		&schedule.ID,
		&schedule.Kind,
		&schedule.CounterpartyId,
		&schedule.CategoryId,
		&schedule.EntityId,
		&schedule.PaymentMethodId,
		&schedule.ExpectedAmount,
		&schedule.Rule,
		&schedule.Anchors.DayOfMonth,
		&dayOfWeek,
		&monthOfYear,
		&schedule.RequiresConfirmation,
		&schedule.LookaheadDays,
		&schedule.IsActive,
		&schedule.Note,
		&createdAt,
	); err != nil {
		return Schedule{}, err
	}
	schedule.Anchors.DayOfWeek = time.Weekday(dayOfWeek)
	schedule.Anchors.MonthOfYear = time.Month(monthOfYear)
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Schedule{}, fmt.Errorf("could not parse created_at: %w", err)
	}
	schedule.CreatedAt = parsed
	return schedule, nil
}
