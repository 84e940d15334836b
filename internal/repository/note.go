package repository

import (
	"context"

	"koruva/internal/domain"
)

// NoteRepository exposes persistence operations for Note entities.
type NoteRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, note *domain.Note) (int64, error)
	Update(ctx context.Context, note *domain.Note, opts SaveOptions) error
	Get(ctx context.Context, id int64) (*domain.Note, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	ListPage(ctx context.Context, limit, offset int) ([]domain.Note, error)
}
