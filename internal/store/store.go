package store

import (
	"context"
	"errors"

	"github.com/evyataryagoni/iplocator/internal/models"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a write violates a unique index
	// (users.username or locations.ip_address)
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the persistence interface for users
type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)

	// FindUserByIDWithLocations eager-loads the user's locations, ordered by id
	FindUserByIDWithLocations(ctx context.Context, id uint) (*models.User, error)

	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	// CreateUser sets user.ID on success; ErrDuplicate if the username is taken
	CreateUser(ctx context.Context, user *models.User) error

	// SaveUser overwrites all columns of an existing user
	SaveUser(ctx context.Context, user *models.User) error

	DeleteUser(ctx context.Context, id uint) error
}

// LocationStore is the persistence interface for locations
type LocationStore interface {
	FindLocationByID(ctx context.Context, id uint) (*models.Location, error)
	FindLocationByIP(ctx context.Context, ip string) (*models.Location, error)
	FindLocationsByUserID(ctx context.Context, userID uint) ([]models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)

	// CreateLocation sets location.ID on success; ErrDuplicate if the IP exists
	CreateLocation(ctx context.Context, location *models.Location) error

	// CreateLocationIfAbsent inserts unless a row with the same IP exists.
	// It reports whether this call inserted the row. Concurrent callers
	// racing on one IP never fail: exactly one of them gets created=true.
	CreateLocationIfAbsent(ctx context.Context, location *models.Location) (bool, error)

	// SaveLocation overwrites all columns of an existing location
	SaveLocation(ctx context.Context, location *models.Location) error

	DeleteLocation(ctx context.Context, id uint) error

	// DeleteLocationsByUserID returns the IPs of the deleted rows
	DeleteLocationsByUserID(ctx context.Context, userID uint) ([]string, error)
}

// Store combines both entity stores with transaction support.
// Allows multiple implementations (GORM over MySQL/Postgres) and easy
// testing with mocks.
type Store interface {
	UserStore
	LocationStore

	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error

	// Close cleans up resources (database connections)
	Close() error
}
