package types

import "time"

// User represents an account in the system.
// It contains identity, role, and audit metadata.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Name is the user's first name.
	Name string `json:"name" db:"name"`

	// Lastname is the user's family name.
	Lastname string `json:"lastname" db:"lastname"`

	// Email is the user's email address. It is the login identifier,
	// but uniqueness is not enforced by the service.
	Email string `json:"email" db:"email"`

	// Role indicates the user's authorization level within the system.
	Role Role `json:"role" db:"role"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// DeletedAt marks the account as soft-deleted when non-nil.
	DeletedAt *time.Time `json:"deleted_at" db:"deleted_at"`
}

// Deleted reports whether the user has been soft-deleted.
func (u User) Deleted() bool {
	return u.DeletedAt != nil
}

// Author returns the public projection of the user embedded in blogs.
func (u User) Author() Author {
	return Author{
		ID:       u.ID,
		Name:     u.Name,
		Lastname: u.Lastname,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Author is the public view of a user attached to a blog.
type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}
