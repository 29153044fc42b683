package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
	"github.com/sakif/snippet-api/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the store for the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, username, email, password_hash, created_at`

// Create inserts a user and returns the stored row.
//
// Omitted fields are bound as NULL, so the NOT NULL constraints reject them
// and classify reports an ErrValidation naming the column. Duplicate
// username or email comes back as ErrConflict.
func (u *UserDB) Create(ctx context.Context, in model.NewUser) (*model.User, error) {
	user := &model.User{
		ID:        newID(in.ID),
		CreatedAt: time.Now().UTC(),
	}

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		nullable(in.Username),
		nullable(in.Email),
		nullable(in.PasswordHash),
		user.CreatedAt,
	)
	if err != nil {
		return nil, classify(err, "user", opWrite, "creating")
	}

	user.Username = deref(in.Username)
	user.Email = deref(in.Email)
	user.PasswordHash = deref(in.PasswordHash)
	return user, nil
}

// GetByID retrieves a user by id.
// Returns apperror.ErrNotFound if no user exists with that id.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// List returns every user ordered by creation time. There is no paging.
func (u *UserDB) List(ctx context.Context) ([]model.User, error) {
	rows, err := u.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}

	return users, nil
}

// Update applies the supplied fields only and returns the resulting row.
// An empty patch is a plain lookup.
func (u *UserDB) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	var set assignments
	if patch.Username != nil {
		set.set("username", *patch.Username)
	}
	if patch.Email != nil {
		set.set("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		set.set("password_hash", *patch.PasswordHash)
	}
	if set.empty() {
		return u.GetByID(ctx, id)
	}

	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET `+set.clause()+` WHERE id = ?`,
		append(set.args, id)...,
	)
	if err != nil {
		return nil, classify(err, "user", opWrite, "updating")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("user", id)
	}

	return u.GetByID(ctx, id)
}

// Delete removes a user. Deleting a missing id is not an error; deleting a
// user who still owns snippets is a constraint violation.
func (u *UserDB) Delete(ctx context.Context, id string) error {
	if _, err := u.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return classify(err, "user", opDelete, "deleting")
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
