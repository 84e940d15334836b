package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"koruva/internal/domain"
	"koruva/internal/repository"
)

const createNotesTable = `
CREATE TABLE IF NOT EXISTS notes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	body TEXT NOT NULL DEFAULT '',
	author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createNotesTable); err != nil {
		return fmt.Errorf("create notes table: %w", err)
	}
	return nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (int64, error) {
	note.Touch(time.Now().UTC())

	res, err := r.db.ExecContext(ctx, `
INSERT INTO notes (title, body, author_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		note.Title,
		note.Body,
		note.AuthorID,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert note: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("note last insert id: %w", err)
	}
	note.ID = id
	return id, nil
}

// Update persists the note, refreshing updated_at. An unscoped save
// writes every mutable column; a save scoped via opts.Fields writes
// that subset plus updated_at. created_at is never rewritten.
func (r *NoteRepository) Update(ctx context.Context, note *domain.Note, opts repository.SaveOptions) error {
	note.UpdatedAt = time.Now().UTC()

	columns := map[string]any{
		"title":                   note.Title,
		"body":                    note.Body,
		repository.UpdatedAtField: note.UpdatedAt,
	}

	fields := opts.FieldSet()
	if fields == nil {
		fields = []string{"title", "body", repository.UpdatedAtField}
	}

	assignments := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields)+1)
	for _, field := range fields {
		value, ok := columns[field]
		if !ok {
			return fmt.Errorf("unknown note field %q", field)
		}
		assignments = append(assignments, field+"=?")
		args = append(args, value)
	}
	args = append(args, note.ID)

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE notes SET %s WHERE id=?`, strings.Join(assignments, ", ")),
		args...,
	)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("note rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Get(ctx context.Context, id int64) (*domain.Note, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, body, author_id, created_at, updated_at
FROM notes
WHERE id = ?`,
		id,
	)
	return scanNote(row)
}

func (r *NoteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("note rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return count, nil
}

func (r *NoteRepository) ListPage(ctx context.Context, limit, offset int) ([]domain.Note, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, body, author_id, created_at, updated_at
FROM notes
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notes: %w", err)
	}
	return notes, nil
}

func scanNote(row interface {
	Scan(dest ...any) error
}) (*domain.Note, error) {
	var note domain.Note
	if err := row.Scan(
		&note.ID,
		&note.Title,
		&note.Body,
		&note.AuthorID,
		&note.CreatedAt,
		&note.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan note: %w", err)
	}
	return &note, nil
}
