package domain

import (
	"context"
	"time"
)

// Role is the application role of a user.
type Role string

const (
	RoleUser      Role = "USER"
	RoleOrganizer Role = "ORGANIZER"
	RoleAdmin     Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleOrganizer, RoleAdmin:
		return true
	}
	return false
}

// User represents a registered user. The credential fields never leave the process.
// swagger:model User
type User struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	Salt                string    `json:"-"`
	FirstName           string    `json:"first_name"`
	LastName            string    `json:"last_name"`
	PhoneNumber         *string   `json:"phone_number,omitempty"`
	Role                Role      `json:"role"`
	ProfileImageURL     *string   `json:"profile_image_url,omitempty"`
	Active              bool      `json:"is_active"`
	OrganizedEventCount int       `json:"organized_event_count"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// RegisterUserInput is the data needed to register a user.
type RegisterUserInput struct {
	Username        string
	Email           string
	Password        string
	FirstName       string
	LastName        string
	PhoneNumber     *string
	Role            Role
	ProfileImageURL *string
	Active          *bool
}

// UpdateUserInput replaces a user's profile. Role and Active keep their stored
// values when nil.
type UpdateUserInput struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	PhoneNumber     *string
	Role            *Role
	ProfileImageURL *string
	Active          *bool
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID int64, username string, role Role) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID int64, err error)
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id int64) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Count(ctx context.Context) (int, error)
}

// UserService defines user registration and profile management.
type UserService interface {
	Register(ctx context.Context, in RegisterUserInput) (*User, error)
	Update(ctx context.Context, id int64, in UpdateUserInput) (*User, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	ListByRole(ctx context.Context, role Role) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

// AuthService authenticates users and issues access tokens.
type AuthService interface {
	// Login accepts a username or an email as identifier.
	Login(ctx context.Context, identifier, password string) (token string, user *User, err error)
}
