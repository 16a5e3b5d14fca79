package store

import (
	"context"
	"database/sql"
	"time"
)

type UsersStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Get(ctx context.Context, userID int64) (*User, error)
	Create(ctx context.Context, user *User) (int64, error)
	List(ctx context.Context) ([]User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
	UpdateRole(ctx context.Context, userID int64, role string) error
	Delete(ctx context.Context, userID int64) error
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

const userColumns = `id, username, password_hash, role, created_at`

func (s *usersStore) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=?`, username)
	return scanUser(row)
}

func (s *usersStore) Get(ctx context.Context, userID int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, userID)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*User, error) {
	u := User{}
	var created string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

func (s *usersStore) Create(ctx context.Context, user *User) (int64, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users(username, password_hash, role, created_at)
		VALUES(?,?,?,?)`,
		user.Username, user.PasswordHash, user.Role, fmtTime(user.CreatedAt))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	user.ID = id
	return id, nil
}

func (s *usersStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		u := User{}
		var created string
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &created); err != nil {
			return nil, err
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		u.CreatedAt = t
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *usersStore) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash=? WHERE id=?`, hash, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *usersStore) UpdateRole(ctx context.Context, userID int64, role string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET role=? WHERE id=?`, role, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func (s *usersStore) Delete(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}

func requireRowAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
