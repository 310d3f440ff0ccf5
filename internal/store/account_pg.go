package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookshop/internal/user"
)

// AccountPG stores accounts in the users table keyed by username.
type AccountPG struct {
	db *pgxpool.Pool
}

func NewAccountPG(db *pgxpool.Pool) *AccountPG {
	return &AccountPG{db: db}
}

func (r *AccountPG) Insert(ctx context.Context, u user.User) error {
	const query = `
	INSERT INTO users (username, password, admin)
	VALUES ($1, $2, $3)
	ON CONFLICT (username) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, u.Username, u.Password, u.Admin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrAlreadyExists
	}
	return nil
}

func (r *AccountPG) FindByUsername(ctx context.Context, username string) (user.User, error) {
	const query = `
	SELECT username, password, admin
	FROM users
	WHERE username = $1
	LIMIT 1
	`
	var u user.User
	err := r.db.QueryRow(ctx, query, username).Scan(&u.Username, &u.Password, &u.Admin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *AccountPG) Delete(ctx context.Context, u user.User) (bool, error) {
	const query = `
	DELETE FROM users
	WHERE username = $1 AND password = $2 AND admin = $3
	`
	tag, err := r.db.Exec(ctx, query, u.Username, u.Password, u.Admin)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
