package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"koruva/internal/domain"
	"koruva/internal/repository"
)

func newTestRepos(t *testing.T) (repository.UserRepository, repository.NoteRepository) {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	users := NewUserRepository(db)
	notes := NewNoteRepository(db)
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := notes.Init(ctx); err != nil {
		t.Fatalf("init notes: %v", err)
	}
	return users, notes
}

func createTestAuthor(t *testing.T, users repository.UserRepository) int64 {
	t.Helper()
	user := &domain.User{Username: "author", PasswordHash: "x"}
	id, err := users.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

func TestCreateSetsEqualTimestamps(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	note := &domain.Note{Title: "first", Body: "body", AuthorID: authorID}
	if _, err := notes.Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	got, err := notes.Get(ctx, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got.IsEdited() {
		t.Errorf("fresh note should not be edited: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestScopedUpdateRefreshesUpdatedAt(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	note := &domain.Note{Title: "first", Body: "body", AuthorID: authorID}
	if _, err := notes.Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	note.Title = "renamed"
	note.Body = "should not be written"
	if err := notes.Update(ctx, note, repository.SaveOptions{Fields: []string{"title"}}); err != nil {
		t.Fatalf("update note: %v", err)
	}

	got, err := notes.Get(ctx, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got.Title != "renamed" {
		t.Errorf("title should be written, got %q", got.Title)
	}
	if got.Body != "body" {
		t.Errorf("body was outside the field set, got %q", got.Body)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("updated_at should be refreshed even though the field set omitted it: created %v updated %v", got.CreatedAt, got.UpdatedAt)
	}
	if !got.IsEdited() {
		t.Error("note should report edited after a save")
	}
}

func TestUnscopedUpdateWritesEverything(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	note := &domain.Note{Title: "first", Body: "body", AuthorID: authorID}
	if _, err := notes.Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	note.Title = "renamed"
	note.Body = "rewritten"
	if err := notes.Update(ctx, note, repository.SaveOptions{}); err != nil {
		t.Fatalf("update note: %v", err)
	}

	got, err := notes.Get(ctx, note.ID)
	if err != nil {
		t.Fatalf("get note: %v", err)
	}
	if got.Title != "renamed" || got.Body != "rewritten" {
		t.Errorf("expected full write, got title %q body %q", got.Title, got.Body)
	}
}

func TestUpdateUnknownField(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	note := &domain.Note{Title: "first", AuthorID: authorID}
	if _, err := notes.Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	err := notes.Update(ctx, note, repository.SaveOptions{Fields: []string{"author_id"}})
	if err == nil {
		t.Fatal("expected error for a column outside the mutable set")
	}
}

func TestUpdateMissingNote(t *testing.T) {
	users, notes := newTestRepos(t)
	createTestAuthor(t, users)

	note := &domain.Note{ID: 9999, Title: "ghost"}
	err := notes.Update(context.Background(), note, repository.SaveOptions{Fields: []string{"title"}})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetMissingNote(t *testing.T) {
	_, notes := newTestRepos(t)

	_, err := notes.Get(context.Background(), 42)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCountAndListPage(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		note := &domain.Note{Title: "note", AuthorID: authorID}
		if _, err := notes.Create(ctx, note); err != nil {
			t.Fatalf("create note %d: %v", i, err)
		}
	}

	count, err := notes.Count(ctx)
	if err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 notes, got %d", count)
	}

	page, err := notes.ListPage(ctx, 2, 2)
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("expected 2 notes on the page, got %d", len(page))
	}
	// newest first: offset 2 of 5 rows skips ids 5 and 4
	if len(page) == 2 && page[0].ID <= page[1].ID {
		t.Errorf("expected descending order, got ids %d, %d", page[0].ID, page[1].ID)
	}
}

func TestDeleteNote(t *testing.T) {
	users, notes := newTestRepos(t)
	authorID := createTestAuthor(t, users)
	ctx := context.Background()

	note := &domain.Note{Title: "doomed", AuthorID: authorID}
	if _, err := notes.Create(ctx, note); err != nil {
		t.Fatalf("create note: %v", err)
	}

	if err := notes.Delete(ctx, note.ID); err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if err := notes.Delete(ctx, note.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("second delete should report ErrNotFound, got %v", err)
	}
}
