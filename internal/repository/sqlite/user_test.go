package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
)

// newTestDB returns a fresh in-memory database. Each test gets its own, and
// t.Cleanup closes it when the test finishes.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, username string) *model.User {
	t.Helper()
	user, err := db.Users().Create(context.Background(), model.NewUser{
		Username:     ptr(username),
		Email:        ptr(username + "@example.com"),
		PasswordHash: ptr("hash"),
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user, err := db.Users().Create(context.Background(), model.NewUser{
		Username:     ptr("alice"),
		Email:        ptr("a@x.com"),
		PasswordHash: ptr("h"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if user.ID == "" {
		t.Error("Create() did not generate an ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set CreatedAt")
	}
	if user.Username != "alice" || user.Email != "a@x.com" {
		t.Errorf("Create() = %+v, want alice / a@x.com", user)
	}
}

func TestUserCreate_CallerSuppliedID(t *testing.T) {
	db := newTestDB(t)

	user, err := db.Users().Create(context.Background(), model.NewUser{
		ID:           ptr("user-1"),
		Username:     ptr("bob"),
		Email:        ptr("bob@example.com"),
		PasswordHash: ptr("h"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("ID = %q, want %q", user.ID, "user-1")
	}

	found, err := db.Users().GetByID(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Username != "bob" {
		t.Errorf("Username = %q, want %q", found.Username, "bob")
	}
}

func TestUserCreate_DuplicateUsernameOrEmail(t *testing.T) {
	tests := []struct {
		name  string
		input model.NewUser
	}{
		{
			name:  "duplicate username",
			input: model.NewUser{Username: ptr("alice"), Email: ptr("other@x.com"), PasswordHash: ptr("h")},
		},
		{
			name:  "duplicate email",
			input: model.NewUser{Username: ptr("other"), Email: ptr("alice@example.com"), PasswordHash: ptr("h")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			first := createTestUser(t, db, "alice")

			_, err := db.Users().Create(context.Background(), tt.input)
			if !errors.Is(err, apperror.ErrConflict) {
				t.Fatalf("Create() error = %v, want ErrConflict", err)
			}

			// The first user must be untouched.
			found, err := db.Users().GetByID(context.Background(), first.ID)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if found.Username != "alice" || found.Email != "alice@example.com" {
				t.Errorf("first user changed: %+v", found)
			}
		})
	}
}

func TestUserCreate_MissingRequiredField(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().Create(context.Background(), model.NewUser{
		Username: ptr("carol"),
		Email:    ptr("carol@example.com"),
	})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Create() error = %v, want ErrValidation", err)
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Field != "password_hash" {
		t.Errorf("Field = %q, want %q", appErr.Field, "password_hash")
	}
}

// =========================================================================
// GET / LIST TESTS
// =========================================================================

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().GetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "dave")

	found, err := db.Users().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID = %q, want %q", found.ID, created.ID)
	}
	if found.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want %q", found.PasswordHash, "hash")
	}
	if !found.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", found.CreatedAt, created.CreatedAt)
	}
}

func TestUserList(t *testing.T) {
	db := newTestDB(t)

	users, err := db.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("List() on empty table = %v, want empty non-nil slice", users)
	}

	createTestUser(t, db, "u1")
	createTestUser(t, db, "u2")
	createTestUser(t, db, "u3")

	users, err = db.Users().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 3 {
		t.Errorf("List() returned %d users, want 3", len(users))
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate_PartialFields(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "alice")

	updated, err := db.Users().Update(context.Background(), created.ID, model.UserPatch{
		Email: ptr("a2@x.com"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Email != "a2@x.com" {
		t.Errorf("Email = %q, want %q", updated.Email, "a2@x.com")
	}
	if updated.Username != "alice" {
		t.Errorf("Username = %q, want unchanged %q", updated.Username, "alice")
	}
	if updated.PasswordHash != "hash" {
		t.Errorf("PasswordHash = %q, want unchanged", updated.PasswordHash)
	}
}

func TestUserUpdate_EmptyPatch(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "erin")

	got, err := db.Users().Update(context.Background(), created.ID, model.UserPatch{})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Username != "erin" {
		t.Errorf("Username = %q, want %q", got.Username, "erin")
	}

	_, err = db.Users().Update(context.Background(), "missing", model.UserPatch{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(empty, missing) error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Users().Update(context.Background(), "missing", model.UserPatch{Email: ptr("x@y.z")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

func TestUserUpdate_Conflict(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := db.Users().Update(context.Background(), bob.ID, model.UserPatch{Username: ptr("alice")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestUserDelete_Idempotent(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "frank")

	if err := db.Users().Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := db.Users().Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("second Delete() error = %v, want nil", err)
	}

	_, err := db.Users().GetByID(context.Background(), created.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestUserDelete_StillOwnsSnippets(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "grace")
	createTestSnippet(t, db, user.ID, "hello")

	err := db.Users().Delete(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Delete() error = %v, want ErrConflict", err)
	}

	if _, err := db.Users().GetByID(context.Background(), user.ID); err != nil {
		t.Errorf("user should survive a blocked delete, got %v", err)
	}
}
