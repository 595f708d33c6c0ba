package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ovotrack/auth-service/internal/model"
)

const userColumns = "id,email,password_hash,google_sub,is_active,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user and returns its ID. passwordHash and googleSub may
// be empty; empty values are stored as NULL so the unique index on
// google_sub only constrains linked accounts. The unique index on email is
// what makes concurrent registrations safe: the database admits exactly one
// insert and the losers surface ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, email, passwordHash, googleSub string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, google_sub) VALUES (?,?,?)",
		email, nullStr(passwordHash), nullStr(googleSub))
	if err != nil {
		if mysqlDuplicate(err, "google_sub") {
			return 0, ErrGoogleSubExists
		}
		if mysqlDuplicate(err, "") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
}

// GetByGoogleSub fetches a user by its linked Google subject id.
func (r *UserRepo) GetByGoogleSub(ctx context.Context, sub string) (model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE google_sub=? LIMIT 1", sub)
}

// UpdateEmail changes a user's email address. Google is authoritative for
// address changes on linked accounts, so a conflicting address maps to
// ErrEmailExists rather than silently overwriting another account.
func (r *UserRepo) UpdateEmail(ctx context.Context, id uint64, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET email=? WHERE id=?", email, id)
	if err != nil && mysqlDuplicate(err, "") {
		return ErrEmailExists
	}
	return err
}

// AttachGoogleSub links a Google subject to an existing password account.
func (r *UserRepo) AttachGoogleSub(ctx context.Context, id uint64, sub string) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE users SET google_sub=? WHERE id=?", sub, id)
	if err != nil && mysqlDuplicate(err, "google_sub") {
		return ErrGoogleSubExists
	}
	return err
}

func (r *UserRepo) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var (
		u    model.User
		hash sql.NullString
		sub  sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Email, &hash, &sub, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = hash.String
	u.GoogleSub = sub.String
	return u, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
