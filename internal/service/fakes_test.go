package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/snippet-api/internal/apperror"
	"github.com/sakif/snippet-api/internal/model"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// Hand-written in-memory fakes of the repository interfaces. They enforce
// the same uniqueness and reference rules as the SQLite schema, so service
// tests observe the same error categories without a database.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func val(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

type fakeStore struct {
	users    map[string]*model.User
	snippets map[string]*model.Snippet
	tags     map[string]*model.Tag
	links    map[model.SnippetTag]bool
	nextID   int

	// set to a non-nil error to simulate a store failure
	failWith error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[string]*model.User),
		snippets: make(map[string]*model.Snippet),
		tags:     make(map[string]*model.Tag),
		links:    make(map[model.SnippetTag]bool),
	}
}

func (f *fakeStore) id(supplied *string) string {
	if supplied != nil && *supplied != "" {
		return *supplied
	}
	f.nextID++
	return fmt.Sprintf("fake-%d", f.nextID)
}

type fakeUsers struct{ *fakeStore }
type fakeSnippets struct{ *fakeStore }
type fakeTags struct{ *fakeStore }
type fakeLinks struct{ *fakeStore }

func (f fakeUsers) Create(_ context.Context, in model.NewUser) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if in.Username == nil || in.Email == nil || in.PasswordHash == nil {
		return nil, apperror.ValidationFailed("", "missing field")
	}
	for _, u := range f.users {
		if u.Username == *in.Username || u.Email == *in.Email {
			return nil, apperror.ConstraintViolation("user", "duplicate value")
		}
	}
	u := &model.User{
		ID:           f.id(in.ID),
		Username:     *in.Username,
		Email:        *in.Email,
		PasswordHash: *in.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[u.ID] = u
	copied := *u
	return &copied, nil
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	copied := *u
	return &copied, nil
}

func (f fakeUsers) List(context.Context) ([]model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeUsers) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	return f.GetByID(ctx, id)
}

func (f fakeUsers) Delete(_ context.Context, id string) error {
	for _, s := range f.snippets {
		if s.UserID == id {
			return apperror.ConstraintViolation("user", "row is still referenced")
		}
	}
	delete(f.users, id)
	return nil
}

func (f fakeSnippets) Create(_ context.Context, in model.NewSnippet) (*model.Snippet, error) {
	if _, ok := f.users[val(in.UserID)]; !ok {
		return nil, apperror.ConstraintViolation("snippet", "referenced row does not exist")
	}
	now := time.Now().UTC()
	s := &model.Snippet{
		ID:        f.id(in.ID),
		UserID:    val(in.UserID),
		Title:     val(in.Title),
		Content:   val(in.Content),
		IsPublic:  in.IsPublic == nil || *in.IsPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.snippets[s.ID] = s
	copied := *s
	return &copied, nil
}

func (f fakeSnippets) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	s, ok := f.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	copied := *s
	return &copied, nil
}

func (f fakeSnippets) Update(ctx context.Context, id string, p model.SnippetPatch) (*model.Snippet, error) {
	s, ok := f.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	if p.Title != nil {
		s.Title = *p.Title
	}
	s.UpdatedAt = time.Now().UTC()
	return f.GetByID(ctx, id)
}

func (f fakeSnippets) Delete(_ context.Context, id string) error {
	delete(f.snippets, id)
	return nil
}

func (f fakeTags) Create(_ context.Context, in model.NewTag) (*model.Tag, error) {
	for _, t := range f.tags {
		if t.Name == val(in.Name) {
			return nil, apperror.ConstraintViolation("tag", "name already exists")
		}
	}
	t := &model.Tag{ID: f.id(in.ID), Name: val(in.Name)}
	f.tags[t.ID] = t
	copied := *t
	return &copied, nil
}

func (f fakeTags) GetByID(_ context.Context, id string) (*model.Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	copied := *t
	return &copied, nil
}

func (f fakeTags) Update(ctx context.Context, id string, p model.TagPatch) (*model.Tag, error) {
	t, ok := f.tags[id]
	if !ok {
		return nil, apperror.NotFound("tag", id)
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	return f.GetByID(ctx, id)
}

func (f fakeTags) Delete(_ context.Context, id string) error {
	for link := range f.links {
		if link.TagID == id {
			return apperror.ConstraintViolation("tag", "row is still referenced")
		}
	}
	delete(f.tags, id)
	return nil
}

func (f fakeLinks) Associate(_ context.Context, snippetID, tagID string) error {
	link := model.SnippetTag{SnippetID: snippetID, TagID: tagID}
	_, snippetOK := f.snippets[snippetID]
	_, tagOK := f.tags[tagID]
	if f.links[link] || !snippetOK || !tagOK {
		return apperror.ConstraintViolation("snippet tag", "duplicate value")
	}
	f.links[link] = true
	return nil
}

func (f fakeLinks) Dissociate(_ context.Context, snippetID, tagID string) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.links, model.SnippetTag{SnippetID: snippetID, TagID: tagID})
	return nil
}

func (f fakeLinks) ListTagsForSnippet(_ context.Context, snippetID string) ([]model.Tag, error) {
	out := make([]model.Tag, 0)
	for link := range f.links {
		if link.SnippetID == snippetID {
			out = append(out, *f.tags[link.TagID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
