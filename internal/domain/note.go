package domain

// Note is a plain text record owned by a user.
type Note struct {
	ID       int64
	Title    string
	Body     string
	AuthorID int64
	Timestamps
}
