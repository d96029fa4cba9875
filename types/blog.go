package types

import "time"

// Blog represents a post written by a Writer or an Admin.
type Blog struct {
	// ID is the unique identifier of the blog.
	ID string `json:"id" db:"id"`

	// Title is the headline of the post.
	Title string `json:"title" db:"title"`

	// Subtitle is the secondary headline of the post.
	Subtitle string `json:"subtitle" db:"subtitle"`

	// Text is the body of the post.
	Text string `json:"text" db:"text"`

	// CreatedBy references the author's user ID. The reference is not
	// owning: the author may be deleted without touching the post.
	CreatedBy string `json:"-" db:"created_by"`

	// Author is the expanded public view of CreatedBy. It is populated
	// on reads and is nil when the author row no longer exists.
	Author *Author `json:"created_by"`

	// CreatedAt is the timestamp at which the blog was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// DeletedAt marks the blog as soft-deleted when non-nil.
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

// BlogInput carries the editable fields of a blog.
type BlogInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Text     string `json:"text"`
}
