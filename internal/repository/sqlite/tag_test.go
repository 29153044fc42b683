package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
)

func createTestTag(t *testing.T, db *DB, name string) *model.Tag {
	t.Helper()
	tag, err := db.Tags().Create(context.Background(), model.NewTag{Name: ptr(name)})
	if err != nil {
		t.Fatalf("failed to create test tag: %v", err)
	}
	return tag
}

// =========================================================================
// TAG TESTS
// =========================================================================

func TestTagCRUD(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tag := createTestTag(t, db, "go")

	found, err := db.Tags().GetByID(ctx, tag.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Name != "go" {
		t.Errorf("Name = %q, want %q", found.Name, "go")
	}

	renamed, err := db.Tags().Update(ctx, tag.ID, model.TagPatch{Name: ptr("golang")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if renamed.Name != "golang" || renamed.ID != tag.ID {
		t.Errorf("Update() = %+v", renamed)
	}

	if err := db.Tags().Delete(ctx, tag.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := db.Tags().GetByID(ctx, tag.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestTagCreate_DuplicateName(t *testing.T) {
	db := newTestDB(t)
	createTestTag(t, db, "rust")

	_, err := db.Tags().Create(context.Background(), model.NewTag{Name: ptr("rust")})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("Create() error = %v, want ErrConflict", err)
	}
}

func TestTagUpdate_NotFoundAndConflict(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createTestTag(t, db, "a")
	b := createTestTag(t, db, "b")

	if _, err := db.Tags().Update(ctx, "missing", model.TagPatch{Name: ptr("x")}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := db.Tags().Update(ctx, b.ID, model.TagPatch{Name: ptr("a")}); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update(duplicate) error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// SNIPPET TAG TESTS
// =========================================================================

func TestAssociate_DuplicatePairFails(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "s")
	tag := createTestTag(t, db, "go")

	if err := db.SnippetTags().Associate(ctx, snippet.ID, tag.ID); err != nil {
		t.Fatalf("Associate() error = %v", err)
	}

	err := db.SnippetTags().Associate(ctx, snippet.ID, tag.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Associate() error = %v, want ErrConflict", err)
	}
}

func TestAssociate_MissingReference(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "s")
	tag := createTestTag(t, db, "go")

	if err := db.SnippetTags().Associate(ctx, snippet.ID, "no-tag"); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Associate(missing tag) error = %v, want ErrConflict", err)
	}
	if err := db.SnippetTags().Associate(ctx, "no-snippet", tag.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Associate(missing snippet) error = %v, want ErrConflict", err)
	}
}

func TestDissociate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "s")
	tag := createTestTag(t, db, "go")

	if err := db.SnippetTags().Associate(ctx, snippet.ID, tag.ID); err != nil {
		t.Fatalf("Associate() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := db.SnippetTags().Dissociate(ctx, snippet.ID, tag.ID); err != nil {
			t.Fatalf("Dissociate() call %d error = %v", i+1, err)
		}
	}

	tags, err := db.SnippetTags().ListTagsForSnippet(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("ListTagsForSnippet() error = %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("ListTagsForSnippet() = %v, want empty", tags)
	}
}

func TestListTagsForSnippet(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "s")
	zig := createTestTag(t, db, "zig")
	ada := createTestTag(t, db, "ada")
	createTestTag(t, db, "unused")

	for _, tag := range []*model.Tag{zig, ada} {
		if err := db.SnippetTags().Associate(ctx, snippet.ID, tag.ID); err != nil {
			t.Fatalf("Associate(%s) error = %v", tag.Name, err)
		}
	}

	tags, err := db.SnippetTags().ListTagsForSnippet(ctx, snippet.ID)
	if err != nil {
		t.Fatalf("ListTagsForSnippet() error = %v", err)
	}
	if len(tags) != 2 || tags[0].Name != "ada" || tags[1].Name != "zig" {
		t.Errorf("ListTagsForSnippet() = %v, want [ada zig]", tags)
	}
}

func TestDelete_BlockedWhileAssociated(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice")
	snippet := createTestSnippet(t, db, user.ID, "s")
	tag := createTestTag(t, db, "go")

	if err := db.SnippetTags().Associate(ctx, snippet.ID, tag.ID); err != nil {
		t.Fatalf("Associate() error = %v", err)
	}

	if err := db.Snippets().Delete(ctx, snippet.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Snippets().Delete() error = %v, want ErrConflict", err)
	}
	if err := db.Tags().Delete(ctx, tag.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Tags().Delete() error = %v, want ErrConflict", err)
	}

	if err := db.SnippetTags().Dissociate(ctx, snippet.ID, tag.ID); err != nil {
		t.Fatalf("Dissociate() error = %v", err)
	}
	if err := db.Snippets().Delete(ctx, snippet.ID); err != nil {
		t.Errorf("Snippets().Delete() after dissociate error = %v", err)
	}
}
