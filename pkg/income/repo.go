package income

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type Repo interface {
	Store(ctx context.Context, userId int, income Income) (int, error)
	GetAll(ctx context.Context, userId int, from, to time.Time) ([]Income, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	// FindDates returns the dates of incomes matching a schedule's signature:
	// same source, same payment method, same exact amount, within the range.
	FindDates(ctx context.Context, userId int, sourceId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) Store(ctx context.Context, userId int, income Income) (int, error) {
	query := `INSERT INTO income (user_id, date, amount, source_id, category_id, payment_method_id, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not prepare query: %w", err)
		log.Error(err)
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx,
		userId,
		income.Date.Format(dateLayout),
		income.Amount,
		income.SourceId,
		income.CategoryId,
		income.PaymentMethodId,
		income.Note,
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

func (r *RepoImpl) GetAll(ctx context.Context, userId int, from, to time.Time) ([]Income, error) {
	query := `SELECT id, date, amount, source_id, category_id, payment_method_id, note
		FROM income WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date, id`

	rows, err := r.db.QueryContext(ctx, query, userId, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		err := fmt.Errorf("could not query incomes: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var incomes []Income
	for rows.Next() {
		var income Income
		var date string
		if err := rows.Scan(
			&income.ID,
			&date,
			&income.Amount,
			&income.SourceId,
			&income.CategoryId,
			&income.PaymentMethodId,
			&income.Note,
		); err != nil {
			err := fmt.Errorf("could not scan income: %w", err)
			log.Error(err)
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("could not parse income date: %w", err)
		}
		income.Date = parsed
		incomes = append(incomes, income)
	}
	return incomes, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM income WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete income: %w", err)
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

func (r *RepoImpl) FindDates(ctx context.Context, userId int, sourceId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error) {
	query := `SELECT date FROM income
		WHERE user_id = ? AND source_id = ? AND payment_method_id = ? AND amount = ? AND date >= ? AND date <= ?`

	rows, err := r.db.QueryContext(ctx, query, userId, sourceId, paymentMethodId, amount, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		err := fmt.Errorf("could not query income dates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			err := fmt.Errorf("could not scan income date: %w", err)
			log.Error(err)
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("could not parse income date: %w", err)
		}
		dates = append(dates, parsed)
	}
	return dates, rows.Err()
}
