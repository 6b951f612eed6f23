package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sheikh-riyadh/due-sample-server/internal/model"
	"github.com/sheikh-riyadh/due-sample-server/internal/store"
)

type userStore struct{ s *Store }

func (us userStore) Create(ctx context.Context, u *model.User) error {
	_, err := us.s.exec(ctx,
		"INSERT INTO users (email, password_hash, role, created_at) VALUES (?, ?, ?, ?)",
		u.Email, u.PasswordHash, u.Role, toNanos(u.CreatedAt))
	return us.s.uniqueErr(err, store.KeyEmail)
}

func (us userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		u       model.User
		created int64
	)
	err := us.s.queryRow(ctx,
		"SELECT email, password_hash, role, created_at FROM users WHERE email = ?", email).
		Scan(&u.Email, &u.PasswordHash, &u.Role, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromNanos(created)
	return &u, nil
}
