package pending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrPendingNotFound = errors.New("pending occurrence not found")

const dateLayout = "2006-01-02"

type Repo interface {
	// Insert stores a pending occurrence. A duplicate (schedule, planned
	// date) pair is not an error: the insert is a no-op and created is false.
	Insert(ctx context.Context, userId int, occurrence PendingOccurrence) (created bool, err error)
	Get(ctx context.Context, userId int, id int) (PendingOccurrence, error)
	GetAll(ctx context.Context, userId int) ([]PendingOccurrence, error)
	GetBySchedule(ctx context.Context, userId int, scheduleId int) ([]PendingOccurrence, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	DeleteForSchedule(ctx context.Context, userId int, scheduleId int) (int, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Insert(ctx context.Context, userId int, occurrence PendingOccurrence) (bool, error) {
	// ON CONFLICT DO NOTHING turns the uniqueness violation into a zero-row
	// insert on both sqlite and postgres; "already exists" is success here.
	query := `INSERT INTO schedule_pending (user_id, schedule_id, planned_date, amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (schedule_id, planned_date) DO NOTHING`

	result, err := r.db.ExecContext(ctx, query,
		userId,
		occurrence.ScheduleId,
		occurrence.PlannedDate.Format(dateLayout),
		occurrence.Amount,
	)
	if err != nil {
		err := fmt.Errorf("could not insert pending occurrence: %w", err)
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

func (r *RepoImpl) Get(ctx context.Context, userId int, id int) (PendingOccurrence, error) {
	query := `SELECT id, schedule_id, planned_date, amount FROM schedule_pending WHERE id = ? AND user_id = ?`
	occurrence, err := scanPending(r.db.QueryRowContext(ctx, query, id, userId).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingOccurrence{}, ErrPendingNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan pending occurrence: %w", err)
		log.Error(err)
		return PendingOccurrence{}, err
	}
	return occurrence, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, userId int) ([]PendingOccurrence, error) {
	query := `SELECT id, schedule_id, planned_date, amount FROM schedule_pending WHERE user_id = ? ORDER BY planned_date, id`
	return r.queryMany(ctx, query, userId)
}

func (r *RepoImpl) GetBySchedule(ctx context.Context, userId int, scheduleId int) ([]PendingOccurrence, error) {
	query := `SELECT id, schedule_id, planned_date, amount FROM schedule_pending
		WHERE user_id = ? AND schedule_id = ? ORDER BY planned_date`
	return r.queryMany(ctx, query, userId, scheduleId)
}

func (r *RepoImpl) queryMany(ctx context.Context, query string, args ...any) ([]PendingOccurrence, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query pending occurrences: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var occurrences []PendingOccurrence
	for rows.Next() {
		occurrence, err := scanPending(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan pending occurrence: %w", err)
			log.Error(err)
			return nil, err
		}
		occurrences = append(occurrences, occurrence)
	}
	return occurrences, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM schedule_pending WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete pending occurrence: %w", err)
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

func (r *RepoImpl) DeleteForSchedule(ctx context.Context, userId int, scheduleId int) (int, error) {
	query := `DELETE FROM schedule_pending WHERE schedule_id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, scheduleId, userId)
	if err != nil {
		err := fmt.Errorf("could not delete pending occurrences: %w", err)
		log.Error(err)
		return 0, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(rowsAffected), nil
}

func scanPending(scan func(dest ...any) error) (PendingOccurrence, error) {
	var occurrence PendingOccurrence
	var plannedDate string
	if err := scan(
		&occurrence.ID,
		&occurrence.ScheduleId,
		&plannedDate,
		&occurrence.Amount,
	); err != nil {
		return PendingOccurrence{}, err
	}
	parsed, err := time.Parse(dateLayout, plannedDate)
	if err != nil {
		return PendingOccurrence{}, fmt.Errorf("could not parse planned date: %w", err)
	}
	occurrence.PlannedDate = parsed
	return occurrence, nil
}
