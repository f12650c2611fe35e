package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	DeleteUser(ctx context.Context, id int) error
	GetAllUsers(ctx context.Context) ([]User, error)
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (u *RepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, username, display_name, timezone, currency) VALUES (?, ?, ?, ?, ?)`
	result, err := u.db.ExecContext(ctx, query,
		user.Uid,
		user.Username,
		user.DisplayName,
		user.Settings.Timezone,
		user.Settings.Currency,
	)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		err := fmt.Errorf("could not retrieve last insert id: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(id), nil
}

func (u *RepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, currency FROM users WHERE id = ?`
	return u.scanOne(u.db.QueryRowContext(ctx, query, id))
}

func (u *RepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, currency FROM users WHERE uid = ?`
	return u.scanOne(u.db.QueryRowContext(ctx, query, uid))
}

func (u *RepoImpl) scanOne(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.Id,
		&user.Uid,
		&user.Username,
		&user.DisplayName,
		&user.Settings.Timezone,
		&user.Settings.Currency,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	return user, nil
}

func (u *RepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET display_name = ?, timezone = ?, currency = ? WHERE id = ?`
	_, err := u.db.ExecContext(ctx, query,
		user.DisplayName,
		user.Settings.Timezone,
		user.Settings.Currency,
		userId,
	)
	if err != nil {
		log.Errorf("failed to update user %d: %v", userId, err)
		return User{}, err
	}
	return u.GetUser(ctx, userId)
}

func (u *RepoImpl) DeleteUser(ctx context.Context, id int) error {
	query := `DELETE FROM users WHERE id = ?`
	if _, err := u.db.ExecContext(ctx, query, id); err != nil {
		log.Errorf("failed to delete user %d: %v", id, err)
		return err
	}
	return nil
}

func (u *RepoImpl) GetAllUsers(ctx context.Context) ([]User, error) {
	query := `SELECT id, uid, username, display_name, timezone, currency FROM users ORDER BY username`
	rows, err := u.db.QueryContext(ctx, query)
	if err != nil {
		log.Errorf("failed to list users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(
			&user.Id,
			&user.Uid,
			&user.Username,
			&user.DisplayName,
			&user.Settings.Timezone,
			&user.Settings.Currency,
		); err != nil {
			log.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
