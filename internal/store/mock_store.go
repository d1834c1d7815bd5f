package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// MockStore is an in-memory test double for the Store interface.
// It enforces the same unique keys as the database (username, ip_address),
// tracks calls for verification and can be told to fail.
type MockStore struct {
	mu sync.Mutex

	Users     map[uint]*models.User
	Locations map[uint]*models.Location

	nextUserID     uint
	nextLocationID uint

	// Track method calls for verification in tests
	FindLocationByIPCalls []string
	CreateLocationCalls   int
	TransactionCalls      int
	CloseCalled           bool

	// Control behavior for error scenarios
	Err        error // returned by every method when set
	CloseError error
}

// NewMockStore creates an empty mock store
func NewMockStore() *MockStore {
	return &MockStore{
		Users:                 map[uint]*models.User{},
		Locations:             map[uint]*models.Location{},
		FindLocationByIPCalls: []string{},
	}
}

// AddUser seeds a user and returns its ID
func (m *MockStore) AddUser(username string) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextUserID++
	now := time.Now()
	m.Users[m.nextUserID] = &models.User{ID: m.nextUserID, Username: username, CreatedAt: now, UpdatedAt: now}
	return m.nextUserID
}

// AddLocation seeds a location and returns its ID
func (m *MockStore) AddLocation(location models.Location) uint {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextLocationID++
	location.ID = m.nextLocationID
	m.Locations[location.ID] = &location
	return location.ID
}

// Transaction implements Store. Writes are applied directly; there is no
// rollback.
func (m *MockStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	m.mu.Lock()
	m.TransactionCalls++
	m.mu.Unlock()

	return fn(m)
}

func (m *MockStore) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.Users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockStore) FindUserByIDWithLocations(ctx context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.Users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	copied.Locations = m.locationsByUser(id)
	return &copied, nil
}

func (m *MockStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	for _, user := range m.Users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]models.User, 0, len(m.Users))
	for _, user := range m.Users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MockStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Users {
		if existing.Username == user.Username {
			return ErrDuplicate
		}
	}

	m.nextUserID++
	now := time.Now()
	user.ID = m.nextUserID
	user.CreatedAt, user.UpdatedAt = now, now
	copied := *user
	m.Users[user.ID] = &copied
	return nil
}

func (m *MockStore) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range m.Users {
		if id != user.ID && existing.Username == user.Username {
			return ErrDuplicate
		}
	}

	user.UpdatedAt = time.Now()
	copied := *user
	copied.Locations = nil
	m.Users[user.ID] = &copied
	return nil
}

func (m *MockStore) DeleteUser(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Users[id]; !ok {
		return ErrNotFound
	}
	delete(m.Users, id)
	return nil
}

func (m *MockStore) FindLocationByID(ctx context.Context, id uint) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	location, ok := m.Locations[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *location
	return &copied, nil
}

func (m *MockStore) FindLocationByIP(ctx context.Context, ip string) (*models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FindLocationByIPCalls = append(m.FindLocationByIPCalls, ip)

	if m.Err != nil {
		return nil, m.Err
	}
	if location := m.locationByIP(ip); location != nil {
		copied := *location
		return &copied, nil
	}
	return nil, ErrNotFound
}

func (m *MockStore) FindLocationsByUserID(ctx context.Context, userID uint) ([]models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.locationsByUser(userID), nil
}

func (m *MockStore) ListLocations(ctx context.Context) ([]models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	locations := make([]models.Location, 0, len(m.Locations))
	for _, location := range m.Locations {
		locations = append(locations, *location)
	}
	sortLocations(locations)
	return locations, nil
}

func (m *MockStore) CreateLocation(ctx context.Context, location *models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateLocationCalls++

	if m.Err != nil {
		return m.Err
	}
	if m.locationByIP(location.IPAddress) != nil {
		return ErrDuplicate
	}
	m.insertLocation(location)
	return nil
}

func (m *MockStore) CreateLocationIfAbsent(ctx context.Context, location *models.Location) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateLocationCalls++

	if m.Err != nil {
		return false, m.Err
	}
	if m.locationByIP(location.IPAddress) != nil {
		return false, nil
	}
	m.insertLocation(location)
	return true, nil
}

func (m *MockStore) SaveLocation(ctx context.Context, location *models.Location) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Locations[location.ID]; !ok {
		return ErrNotFound
	}
	if other := m.locationByIP(location.IPAddress); other != nil && other.ID != location.ID {
		return ErrDuplicate
	}

	location.UpdatedAt = time.Now()
	copied := *location
	m.Locations[location.ID] = &copied
	return nil
}

func (m *MockStore) DeleteLocation(ctx context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Locations[id]; !ok {
		return ErrNotFound
	}
	delete(m.Locations, id)
	return nil
}

func (m *MockStore) DeleteLocationsByUserID(ctx context.Context, userID uint) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	var ips []string
	for id, location := range m.Locations {
		if location.UserID == userID {
			ips = append(ips, location.IPAddress)
			delete(m.Locations, id)
		}
	}
	sort.Strings(ips)
	return ips, nil
}

// Close implements the Store interface
func (m *MockStore) Close() error {
	m.CloseCalled = true
	return m.CloseError
}

// must be called with mu held
func (m *MockStore) locationByIP(ip string) *models.Location {
	for _, location := range m.Locations {
		if location.IPAddress == ip {
			return location
		}
	}
	return nil
}

// must be called with mu held
func (m *MockStore) locationsByUser(userID uint) []models.Location {
	locations := []models.Location{}
	for _, location := range m.Locations {
		if location.UserID == userID {
			locations = append(locations, *location)
		}
	}
	sortLocations(locations)
	return locations
}

// must be called with mu held
func (m *MockStore) insertLocation(location *models.Location) {
	m.nextLocationID++
	now := time.Now()
	location.ID = m.nextLocationID
	location.CreatedAt, location.UpdatedAt = now, now
	copied := *location
	m.Locations[location.ID] = &copied
}

func sortLocations(locations []models.Location) {
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
}
