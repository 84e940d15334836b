package service

import (
	"context"
	"errors"
	"strings"

	"koruva/internal/domain"
	"koruva/internal/pagination"
	"koruva/internal/repository"
)

// ErrNoteNotFound is returned when the requested note does not exist.
var ErrNoteNotFound = errors.New("note not found")

// NotePatch carries the fields of a partial note update. Nil members
// are left untouched and excluded from the persisted field set.
type NotePatch struct {
	Title *string
	Body  *string
}

// NotePage is one page of notes plus pagination metadata.
type NotePage struct {
	Notes []domain.Note
	Page  pagination.Page
}

// NoteService coordinates note operations backed by the repository.
type NoteService interface {
	CreateNote(ctx context.Context, authorID int64, title, body string) (*domain.Note, error)
	GetNote(ctx context.Context, id int64) (*domain.Note, error)
	PatchNote(ctx context.Context, id int64, patch NotePatch) (*domain.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	ListNotes(ctx context.Context, pageToken string) (*NotePage, error)
}

type noteService struct {
	notes    repository.NoteRepository
	pageSize int
}

func NewNoteService(notes repository.NoteRepository, pageSize int) NoteService {
	if pageSize < 1 {
		pageSize = pagination.DefaultPageSize
	}
	return &noteService{
		notes:    notes,
		pageSize: pageSize,
	}
}

func (s *noteService) CreateNote(ctx context.Context, authorID int64, title, body string) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("title is required")
	}

	note := &domain.Note{
		Title:    title,
		Body:     body,
		AuthorID: authorID,
	}
	if _, err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *noteService) GetNote(ctx context.Context, id int64) (*domain.Note, error) {
	note, err := s.notes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

// PatchNote applies a partial update. Only the fields present in the
// patch are persisted; the repository adds updated_at to the set.
func (s *noteService) PatchNote(ctx context.Context, id int64, patch NotePatch) (*domain.Note, error) {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields []string
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, errors.New("title is required")
		}
		note.Title = title
		fields = append(fields, "title")
	}
	if patch.Body != nil {
		note.Body = *patch.Body
		fields = append(fields, "body")
	}
	if len(fields) == 0 {
		return note, nil
	}

	if err := s.notes.Update(ctx, note, repository.SaveOptions{Fields: fields}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}
	return note, nil
}

func (s *noteService) DeleteNote(ctx context.Context, id int64) error {
	if err := s.notes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoteNotFound
		}
		return err
	}
	return nil
}

// ListNotes resolves pageToken against the current note count and
// returns the matching page, newest first.
func (s *noteService) ListNotes(ctx context.Context, pageToken string) (*NotePage, error) {
	count, err := s.notes.Count(ctx)
	if err != nil {
		return nil, err
	}

	page, err := pagination.New(count, s.pageSize).Page(pageToken)
	if err != nil {
		return nil, err
	}

	notes := []domain.Note{}
	if page.Limit > 0 {
		notes, err = s.notes.ListPage(ctx, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
	}

	return &NotePage{Notes: notes, Page: page}, nil
}
