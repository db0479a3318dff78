package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/goodcookie/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	userColumns = `id, username, email, password_hash, created_at, updated_at`

	qUserInsert = `
INSERT INTO users (username, email, password_hash)
VALUES ($1, $2, $3)
RETURNING ` + userColumns + `;`

	qUserByID       = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	qUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = $1;`
	qUserByEmail    = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	qUserExistsByUsername = `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1);`
	qUserExistsByEmail    = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1);`

	qUserUpdate = `
UPDATE users
SET email         = $2,
    password_hash = $3,
    updated_at    = NOW()
WHERE id = $1
RETURNING ` + userColumns + `;`
)

var userConstraintFields = map[string]string{
	"users_username_key": user.FieldUsername,
	"users_email_key":    user.FieldEmail,
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.conn(ctx).QueryRow(ctx, qUserInsert, u.Username, u.Email, u.PasswordHash)
	if err := scanUser(row, u); err != nil {
		return fmt.Errorf("user insert: %w", mapUserConflict(err))
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*user.User, error) {
	return r.findOne(ctx, qUserByID, id)
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, qUserByUsername, username)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, qUserByEmail, email)
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, qUserExistsByUsername, username)
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, qUserExistsByEmail, email)
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	row := r.db.conn(ctx).QueryRow(ctx, qUserUpdate, u.ID, u.Email, u.PasswordHash)
	if err := scanUser(row, u); err != nil {
		if err = noRows(err, user.ErrNotFound); err != nil {
			return fmt.Errorf("user update: %w", mapUserConflict(err))
		}
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, q string, arg any) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.conn(ctx).QueryRow(ctx, q, arg), &u); err != nil {
		return nil, noRows(err, user.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) exists(ctx context.Context, q string, arg any) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := r.db.conn(ctx).QueryRow(ctx, q, arg).Scan(&ok); err != nil {
		return false, fmt.Errorf("user exists: %w", err)
	}
	return ok, nil
}

func mapUserConflict(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	field, known := userConstraintFields[constraint]
	if !known {
		field = constraint
	}
	return fmt.Errorf("%w: %w", &user.ConflictError{Field: field}, ErrConflict)
}

func scanUser(row pgx.Row, out *user.User) error {
	return row.Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.CreatedAt, &out.UpdatedAt)
}
