package store

import (
	"context"
	"errors"

	"github.com/femundo/cms/internal/admin/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this.
type Store interface {
	Users() Users
	Activity() Activity

	ApplyMigrations() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}

// Users is the persistence surface for admin accounts.
type Users interface {
	// GetByID returns a user by id. The auth middleware calls this on
	// every protected request; the row must reflect current state, not a
	// cache.
	GetByID(ctx context.Context, id int64) (domain.User, error)

	// GetByEmail and GetByUsername serve the login lookup.
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// List returns all users, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Create inserts a new user and returns the assigned id. Duplicate
	// email or username maps to ErrAlreadyExists.
	Create(ctx context.Context, u domain.User) (int64, error)

	// Update replaces the mutable profile fields: full_name, username,
	// role, avatar_url, is_active and allowed_modules.
	Update(ctx context.Context, u domain.User) error

	UpdatePasswordHash(ctx context.Context, id int64, hash string) error

	// SetActive flips the soft-delete flag.
	SetActive(ctx context.Context, id int64, active bool) error

	// TouchLastLogin stamps last_login with the current time.
	TouchLastLogin(ctx context.Context, id int64) error

	// SetTOTPSecret stores a pending TOTP secret; empty string clears it
	// along with the enabled timestamp.
	SetTOTPSecret(ctx context.Context, id int64, secret string) error

	// EnableTOTP marks the pending secret as confirmed.
	EnableTOTP(ctx context.Context, id int64) error
}

// Activity is the append-only audit sink plus its dashboard read model.
type Activity interface {
	Append(ctx context.Context, e domain.ActivityEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}
