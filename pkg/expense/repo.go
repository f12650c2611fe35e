package expense

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

var ErrExpenseNotFound = errors.New("expense not found")
var ErrPaymentNotFound = errors.New("debtor payment not found")

type Repo interface {
	Store(ctx context.Context, userId int, expense Expense) (int, error)
	Get(ctx context.Context, userId int, id int) (Expense, error)
	GetAll(ctx context.Context, userId int, from, to time.Time) ([]Expense, error)
	Update(ctx context.Context, userId int, expense Expense) (bool, error)
	Delete(ctx context.Context, userId int, id int) (bool, error)
	// FindDates returns the dates of non-itemised expenses matching a
	// schedule's signature: recipient, payment method and exact amount.
	FindDates(ctx context.Context, userId int, recipientId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error)
	// FindByEntity returns every non-tentative expense linked to the entity
	// through owed_to_entity_id, a split row or a line item tag.
	FindByEntity(ctx context.Context, userId int, entityId int) ([]Expense, error)
	StorePayment(ctx context.Context, userId int, payment DebtorPayment) (int, error)
	DeletePayment(ctx context.Context, userId int, id int) (bool, error)
	GetPayments(ctx context.Context, userId int, expenseId int) ([]DebtorPayment, error)
	GetPaymentsForEntity(ctx context.Context, userId int, entityId int) ([]DebtorPayment, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

const expenseColumns = `id, date, recipient_id, category_id, payment_method_id, status, is_non_itemised,
	non_itemised_total, discount_pct, split_type, own_shares, total_shares, owed_to_entity_id, note`

func (r *RepoImpl) Store(ctx context.Context, userId int, expense Expense) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	defer tx.Rollback()

	query := `INSERT INTO expense (
			user_id,
			date,
			recipient_id,
			category_id,
			payment_method_id,
			status,
			is_non_itemised,
			non_itemised_total,
			discount_pct,
			split_type,
			own_shares,
			total_shares,
			owed_to_entity_id,
			note
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := tx.ExecContext(ctx, query,
		userId,
		expense.Date.Format(dateLayout),
		expense.RecipientId,
		expense.CategoryId,
		expense.PaymentMethodId,
		expense.Status,
		expense.IsNonItemised,
		expense.NonItemisedTotal,
		expense.DiscountPct,
		expense.SplitType,
		expense.OwnShares,
		expense.TotalShares,
		expense.OwedToEntityId,
		expense.Note,
	)
	if err != nil {
		err := fmt.Errorf("could not insert expense: %w", err)
		log.Error(err)
		return 0, err
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	expenseId := int(lastInsertID)

	if err := insertItems(ctx, tx, expenseId, expense.Items); err != nil {
		return 0, err
	}
	if err := insertSplits(ctx, tx, expenseId, expense.Splits); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return 0, err
	}
	return expenseId, nil
}

func (r *RepoImpl) Get(ctx context.Context, userId int, id int) (Expense, error) {
	query := fmt.Sprintf(`SELECT %s FROM expense WHERE id = ? AND user_id = ?`, expenseColumns)
	row := r.db.QueryRowContext(ctx, query, id, userId)
	expense, err := scanExpense(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Expense{}, ErrExpenseNotFound
	} else if err != nil {
		err := fmt.Errorf("could not scan expense: %w", err)
		log.Error(err)
		return Expense{}, err
	}
	if err := r.loadDetails(ctx, &expense); err != nil {
		return Expense{}, err
	}
	return expense, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, userId int, from, to time.Time) ([]Expense, error) {
	query := fmt.Sprintf(`SELECT %s FROM expense
		WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date, id`, expenseColumns)
	return r.queryExpenses(ctx, query, userId, from.Format(dateLayout), to.Format(dateLayout))
}

func (r *RepoImpl) Update(ctx context.Context, userId int, expense Expense) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("could not begin transaction: %w", err)
		log.Error(err)
		return false, err
	}
	defer tx.Rollback()

	query := `UPDATE expense SET
			date = ?,
			recipient_id = ?,
			category_id = ?,
			payment_method_id = ?,
			status = ?,
			is_non_itemised = ?,
			non_itemised_total = ?,
			discount_pct = ?,
			split_type = ?,
			own_shares = ?,
			total_shares = ?,
			owed_to_entity_id = ?,
			note = ?
		WHERE id = ? AND user_id = ?`

	result, err := tx.ExecContext(ctx, query,
		expense.Date.Format(dateLayout),
		expense.RecipientId,
		expense.CategoryId,
		expense.PaymentMethodId,
		expense.Status,
		expense.IsNonItemised,
		expense.NonItemisedTotal,
		expense.DiscountPct,
		expense.SplitType,
		expense.OwnShares,
		expense.TotalShares,
		expense.OwedToEntityId,
		expense.Note,
		expense.ID,
		userId,
	)
	if err != nil {
		err := fmt.Errorf("could not update expense: %w", err)
		log.Error(err)
		return false, err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		err := fmt.Errorf("could not get rows affected: %w", err)
		log.Error(err)
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	// items and splits are replaced wholesale within the same transaction
	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_item WHERE expense_id = ?`, expense.ID); err != nil {
		err := fmt.Errorf("could not delete expense items: %w", err)
		log.Error(err)
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_split WHERE expense_id = ?`, expense.ID); err != nil {
		err := fmt.Errorf("could not delete expense splits: %w", err)
		log.Error(err)
		return false, err
	}
	if err := insertItems(ctx, tx, expense.ID, expense.Items); err != nil {
		return false, err
	}
	if err := insertSplits(ctx, tx, expense.ID, expense.Splits); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		err := fmt.Errorf("could not commit transaction: %w", err)
		log.Error(err)
		return false, err
	}
	return true, nil
}

func (r *RepoImpl) Delete(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM expense WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete expense: %w", err)
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

func (r *RepoImpl) FindDates(ctx context.Context, userId int, recipientId int, paymentMethodId int, amount decimal.Decimal, from, to time.Time) ([]time.Time, error) {
	query := `SELECT date FROM expense
		WHERE user_id = ? AND recipient_id = ? AND payment_method_id = ?
			AND is_non_itemised = TRUE AND non_itemised_total = ?
			AND date >= ? AND date <= ?`

	rows, err := r.db.QueryContext(ctx, query, userId, recipientId, paymentMethodId, amount, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		err := fmt.Errorf("could not query expense dates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			err := fmt.Errorf("could not scan expense date: %w", err)
			log.Error(err)
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("could not parse expense date: %w", err)
		}
		dates = append(dates, parsed)
	}
	return dates, rows.Err()
}

func (r *RepoImpl) FindByEntity(ctx context.Context, userId int, entityId int) ([]Expense, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM (
			SELECT e.* FROM expense e WHERE e.user_id = ? AND e.status != 'tentative' AND e.owed_to_entity_id = ?
			UNION
			SELECT e.* FROM expense e JOIN expense_split s ON s.expense_id = e.id
				WHERE e.user_id = ? AND e.status != 'tentative' AND s.entity_id = ?
			UNION
			SELECT e.* FROM expense e JOIN expense_item i ON i.expense_id = e.id
				WHERE e.user_id = ? AND e.status != 'tentative' AND i.debtor_entity_id = ?
		) ORDER BY date, id`, expenseColumns)
	return r.queryExpenses(ctx, query, userId, entityId, userId, entityId, userId, entityId)
}

func (r *RepoImpl) StorePayment(ctx context.Context, userId int, payment DebtorPayment) (int, error) {
	query := `INSERT INTO debtor_payment (user_id, expense_id, entity_id, paid_at) VALUES (?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query, userId, payment.ExpenseId, payment.EntityId, payment.PaidAt.Format(dateLayout))
	if err != nil {
		err := fmt.Errorf("could not insert debtor payment: %w", err)
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

func (r *RepoImpl) DeletePayment(ctx context.Context, userId int, id int) (bool, error) {
	query := `DELETE FROM debtor_payment WHERE id = ? AND user_id = ?`
	result, err := r.db.ExecContext(ctx, query, id, userId)
	if err != nil {
		err := fmt.Errorf("could not delete debtor payment: %w", err)
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

func (r *RepoImpl) GetPayments(ctx context.Context, userId int, expenseId int) ([]DebtorPayment, error) {
	query := `SELECT id, expense_id, entity_id, paid_at FROM debtor_payment
		WHERE user_id = ? AND expense_id = ? ORDER BY id`
	return r.queryPayments(ctx, query, userId, expenseId)
}

func (r *RepoImpl) GetPaymentsForEntity(ctx context.Context, userId int, entityId int) ([]DebtorPayment, error) {
	query := `SELECT id, expense_id, entity_id, paid_at FROM debtor_payment
		WHERE user_id = ? AND entity_id = ? ORDER BY id`
	return r.queryPayments(ctx, query, userId, entityId)
}

func (r *RepoImpl) queryExpenses(ctx context.Context, query string, args ...any) ([]Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query expenses: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		expense, err := scanExpense(rows.Scan)
		if err != nil {
			err := fmt.Errorf("could not scan expense: %w", err)
			log.Error(err)
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range expenses {
		if err := r.loadDetails(ctx, &expenses[i]); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

func (r *RepoImpl) queryPayments(ctx context.Context, query string, args ...any) ([]DebtorPayment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query debtor payments: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var payments []DebtorPayment
	for rows.Next() {
		var payment DebtorPayment
		var paidAt string
		if err := rows.Scan(&payment.ID, &payment.ExpenseId, &payment.EntityId, &paidAt); err != nil {
			err := fmt.Errorf("could not scan debtor payment: %w", err)
			log.Error(err)
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, paidAt)
		if err != nil {
			return nil, fmt.Errorf("could not parse paid_at: %w", err)
		}
		payment.PaidAt = parsed
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func (r *RepoImpl) loadDetails(ctx context.Context, expense *Expense) error {
	itemRows, err := r.db.QueryContext(ctx,
		`SELECT id, name, quantity, unit_price, exclude_from_discount, debtor_entity_id
			FROM expense_item WHERE expense_id = ? ORDER BY id`, expense.ID)
	if err != nil {
		err := fmt.Errorf("could not query expense items: %w", err)
		log.Error(err)
		return err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var li LineItem
		if err := itemRows.Scan(&li.ID, &li.Name, &li.Quantity, &li.UnitPrice, &li.ExcludeFromDiscount, &li.DebtorEntityId); err != nil {
			err := fmt.Errorf("could not scan expense item: %w", err)
			log.Error(err)
			return err
		}
		expense.Items = append(expense.Items, li)
	}
	if err := itemRows.Err(); err != nil {
		return err
	}

	splitRows, err := r.db.QueryContext(ctx,
		`SELECT id, entity_id, split_part FROM expense_split WHERE expense_id = ? ORDER BY id`, expense.ID)
	if err != nil {
		err := fmt.Errorf("could not query expense splits: %w", err)
		log.Error(err)
		return err
	}
	defer splitRows.Close()
	for splitRows.Next() {
		var s Split
		if err := splitRows.Scan(&s.ID, &s.EntityId, &s.SplitPart); err != nil {
			err := fmt.Errorf("could not scan expense split: %w", err)
			log.Error(err)
			return err
		}
		expense.Splits = append(expense.Splits, s)
	}
	return splitRows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, expenseId int, items []LineItem) error {
	for _, li := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_item (expense_id, name, quantity, unit_price, exclude_from_discount, debtor_entity_id)
				VALUES (?, ?, ?, ?, ?, ?)`,
			expenseId, li.Name, li.Quantity, li.UnitPrice, li.ExcludeFromDiscount, li.DebtorEntityId)
		if err != nil {
			err := fmt.Errorf("could not insert expense item: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseId int, splits []Split) error {
	for _, s := range splits {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_split (expense_id, entity_id, split_part) VALUES (?, ?, ?)`,
			expenseId, s.EntityId, s.SplitPart)
		if err != nil {
			err := fmt.Errorf("could not insert expense split: %w", err)
			log.Error(err)
			return err
		}
	}
	return nil
}

func scanExpense(scan func(dest ...any) error) (Expense, error) {
	var expense Expense
	var date string
	if err := scan(
		&expense.ID,
		&date,
		&expense.RecipientId,
		&expense.CategoryId,
		&expense.PaymentMethodId,
		&expense.Status,
		&expense.IsNonItemised,
		&expense.NonItemisedTotal,
		&expense.DiscountPct,
		&expense.SplitType,
		&expense.OwnShares,
		&expense.TotalShares,
		&expense.OwedToEntityId,
		&expense.Note,
	); err != nil {
		return Expense{}, err
	}
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return Expense{}, fmt.Errorf("could not parse expense date: %w", err)
	}
	expense.Date = parsed
	return expense, nil
}
