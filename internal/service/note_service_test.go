package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"koruva/internal/domain"
	"koruva/internal/pagination"
	"koruva/internal/repository"
)

type mockNoteRepo struct {
	notes      map[int64]domain.Note
	lastOpts   repository.SaveOptions
	lastUpdate *domain.Note
	listLimit  int
	listOffset int
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: map[int64]domain.Note{}}
}

func (m *mockNoteRepo) Init(ctx context.Context) error { return nil }

func (m *mockNoteRepo) Create(ctx context.Context, note *domain.Note) (int64, error) {
	note.Touch(time.Now().UTC())
	note.ID = int64(len(m.notes) + 1)
	m.notes[note.ID] = *note
	return note.ID, nil
}

func (m *mockNoteRepo) Update(ctx context.Context, note *domain.Note, opts repository.SaveOptions) error {
	if _, ok := m.notes[note.ID]; !ok {
		return repository.ErrNotFound
	}
	note.UpdatedAt = time.Now().UTC()
	m.lastOpts = opts
	m.lastUpdate = note
	m.notes[note.ID] = *note
	return nil
}

func (m *mockNoteRepo) Get(ctx context.Context, id int64) (*domain.Note, error) {
	note, ok := m.notes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &note, nil
}

func (m *mockNoteRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.notes[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *mockNoteRepo) Count(ctx context.Context) (int, error) {
	return len(m.notes), nil
}

func (m *mockNoteRepo) ListPage(ctx context.Context, limit, offset int) ([]domain.Note, error) {
	m.listLimit = limit
	m.listOffset = offset
	return nil, nil
}

func TestPatchNoteRestrictsFieldSet(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, 20)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, 1, "title", "body")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	title := "renamed"
	if _, err := svc.PatchNote(ctx, note.ID, NotePatch{Title: &title}); err != nil {
		t.Fatalf("patch note: %v", err)
	}

	if !reflect.DeepEqual(repo.lastOpts.Fields, []string{"title"}) {
		t.Errorf("expected save scoped to title, got %v", repo.lastOpts.Fields)
	}
	if repo.lastUpdate.Title != "renamed" {
		t.Errorf("expected title applied, got %q", repo.lastUpdate.Title)
	}
	if repo.lastUpdate.Body != "body" {
		t.Errorf("body should be untouched, got %q", repo.lastUpdate.Body)
	}
}

func TestPatchNoteEmptyPatchIsNoop(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, 20)
	ctx := context.Background()

	note, err := svc.CreateNote(ctx, 1, "title", "body")
	if err != nil {
		t.Fatalf("create note: %v", err)
	}

	got, err := svc.PatchNote(ctx, note.ID, NotePatch{})
	if err != nil {
		t.Fatalf("patch note: %v", err)
	}
	if repo.lastUpdate != nil {
		t.Error("empty patch should not hit the repository")
	}
	if got.IsEdited() {
		t.Error("empty patch should not mark the note edited")
	}
}

func TestPatchNoteMissing(t *testing.T) {
	svc := NewNoteService(newMockNoteRepo(), 20)

	title := "x"
	_, err := svc.PatchNote(context.Background(), 42, NotePatch{Title: &title})
	if !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestCreateNoteRequiresTitle(t *testing.T) {
	svc := NewNoteService(newMockNoteRepo(), 20)

	if _, err := svc.CreateNote(context.Background(), 1, "   ", "body"); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestListNotesInvalidToken(t *testing.T) {
	svc := NewNoteService(newMockNoteRepo(), 20)

	_, err := svc.ListNotes(context.Background(), "abc")
	if !errors.Is(err, pagination.ErrPageNotFound) {
		t.Errorf("expected ErrPageNotFound, got %v", err)
	}
}

func TestListNotesEmptyCollection(t *testing.T) {
	repo := newMockNoteRepo()
	svc := NewNoteService(repo, 20)

	page, err := svc.ListNotes(context.Background(), "")
	if err != nil {
		t.Fatalf("list notes: %v", err)
	}
	if page.Page.Number != 1 || page.Page.TotalPages != 1 {
		t.Errorf("empty collection should resolve to page 1 of 1, got %d of %d", page.Page.Number, page.Page.TotalPages)
	}
	if len(page.Notes) != 0 {
		t.Errorf("expected no notes, got %d", len(page.Notes))
	}
	if repo.listLimit != 0 {
		t.Error("empty page should not query the repository")
	}
}
