package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/evyataryagoni/iplocator/internal/apperror"
	"github.com/evyataryagoni/iplocator/internal/cache"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/store"
)

func newUserService(t *testing.T) (*UserService, *store.MockStore, *cache.MemoryCache) {
	t.Helper()
	mockStore := store.NewMockStore()
	c := cache.NewMemoryCache(16, time.Minute)
	return NewUserService(mockStore, c, nil, nil, logger.Nop()), mockStore, c
}

func TestUserService_Create(t *testing.T) {
	service, mockStore, _ := newUserService(t)

	result, err := service.Create(context.Background(), models.UserPayload{Username: "  alice "})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.ID == 0 {
		t.Error("expected an ID")
	}
	if result.Username != "alice" {
		t.Errorf("expected trimmed username alice, got %q", result.Username)
	}
	if len(mockStore.Users) != 1 {
		t.Errorf("expected 1 user, got %d", len(mockStore.Users))
	}
}

func TestUserService_Create_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		username string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"too long", strings.Repeat("a", 256)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, mockStore, _ := newUserService(t)

			_, err := service.Create(context.Background(), models.UserPayload{Username: tt.username})
			assertKind(t, err, apperror.InvalidInput)

			if mockStore.TransactionCalls != 0 {
				t.Error("expected the store to be untouched")
			}
		})
	}
}

// TestUserService_Create_Duplicate tests that a taken username conflicts
// and the second user is not stored
func TestUserService_Create_Duplicate(t *testing.T) {
	service, mockStore, _ := newUserService(t)
	mockStore.AddUser("alice")

	_, err := service.Create(context.Background(), models.UserPayload{Username: "alice"})
	assertKind(t, err, apperror.Conflict)

	if len(mockStore.Users) != 1 {
		t.Errorf("expected 1 user, got %d", len(mockStore.Users))
	}
}

func TestUserService_Get(t *testing.T) {
	service, mockStore, _ := newUserService(t)
	id := mockStore.AddUser("alice")
	mockStore.AddLocation(models.Location{IPAddress: "8.8.8.8", City: "Mountain View", Country: "United States", UserID: id})
	mockStore.AddLocation(models.Location{IPAddress: "1.1.1.1", City: "Sydney", Country: "Australia", UserID: id})
	mockStore.AddLocation(models.Location{IPAddress: "9.9.9.9", City: "Zurich", Country: "Switzerland", UserID: id + 1})

	result, err := service.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Username != "alice" {
		t.Errorf("expected alice, got %s", result.Username)
	}
	if len(result.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(result.Locations))
	}
	if result.Locations[0].IPAddress != "8.8.8.8" {
		t.Errorf("expected locations ordered by id, got %s first", result.Locations[0].IPAddress)
	}

	_, err = service.Get(context.Background(), id+100)
	assertKind(t, err, apperror.NotFound)
}

func TestUserService_List(t *testing.T) {
	service, mockStore, _ := newUserService(t)
	mockStore.AddUser("alice")
	mockStore.AddUser("bob")

	result, err := service.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(result) != 2 || result[0].Username != "alice" || result[1].Username != "bob" {
		t.Errorf("unexpected users: %+v", result)
	}
}

func TestUserService_Update(t *testing.T) {
	service, mockStore, _ := newUserService(t)
	aliceID := mockStore.AddUser("alice")
	mockStore.AddUser("bob")

	result, err := service.Update(context.Background(), aliceID, models.UserPayload{Username: "alicia"})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Username != "alicia" || mockStore.Users[aliceID].Username != "alicia" {
		t.Errorf("expected rename to alicia, got %+v", result)
	}

	// renaming to the current name is a no-op, not a conflict
	if _, err := service.Update(context.Background(), aliceID, models.UserPayload{Username: "alicia"}); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}

	_, err = service.Update(context.Background(), aliceID, models.UserPayload{Username: "bob"})
	assertKind(t, err, apperror.Conflict)

	_, err = service.Update(context.Background(), aliceID+100, models.UserPayload{Username: "carol"})
	assertKind(t, err, apperror.NotFound)

	_, err = service.Update(context.Background(), aliceID, models.UserPayload{Username: " "})
	assertKind(t, err, apperror.InvalidInput)
}

// TestUserService_Delete_Cascades tests that a user's locations go with it
// and leave the cache
func TestUserService_Delete_Cascades(t *testing.T) {
	service, mockStore, c := newUserService(t)
	aliceID := mockStore.AddUser("alice")
	bobID := mockStore.AddUser("bob")
	mockStore.AddLocation(models.Location{IPAddress: "8.8.8.8", City: "Mountain View", Country: "United States", UserID: aliceID})
	mockStore.AddLocation(models.Location{IPAddress: "1.1.1.1", City: "Sydney", Country: "Australia", UserID: bobID})
	c.Set(context.Background(), "8.8.8.8", models.LocationDetails{IPAddress: "8.8.8.8"})
	c.Set(context.Background(), "1.1.1.1", models.LocationDetails{IPAddress: "1.1.1.1"})

	if err := service.Delete(context.Background(), aliceID); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if _, ok := mockStore.Users[aliceID]; ok {
		t.Error("expected user to be deleted")
	}
	if len(mockStore.Locations) != 1 {
		t.Errorf("expected only bob's location to remain, got %d", len(mockStore.Locations))
	}
	if _, found, _ := c.Get(context.Background(), "8.8.8.8"); found {
		t.Error("expected alice's location to be evicted from the cache")
	}
	if _, found, _ := c.Get(context.Background(), "1.1.1.1"); !found {
		t.Error("expected bob's location to stay cached")
	}

	_, err := service.Get(context.Background(), aliceID)
	assertKind(t, err, apperror.NotFound)
}

func TestUserService_Delete_NotFound(t *testing.T) {
	service, _, _ := newUserService(t)

	err := service.Delete(context.Background(), 42)
	assertKind(t, err, apperror.NotFound)
}

func TestUserService_StoreError(t *testing.T) {
	service, mockStore, _ := newUserService(t)
	mockStore.Err = errors.New("database connection failed")

	_, err := service.Create(context.Background(), models.UserPayload{Username: "alice"})
	assertKind(t, err, apperror.Internal)

	_, err = service.List(context.Background())
	assertKind(t, err, apperror.Internal)

	err = service.Delete(context.Background(), 1)
	assertKind(t, err, apperror.Internal)
}

// TestUserService_Create_InvalidMessageIsCatalogText tests that the
// client-facing message comes only from the catalog
func TestUserService_Create_InvalidMessageIsCatalogText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ru.yaml")
	if err := os.WriteFile(path, []byte("invalid_user: \"Некорректные данные пользователя\"\n"), 0o600); err != nil {
		t.Fatalf("failed to write catalog: %v", err)
	}
	catalog, err := messages.Load(path)
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	service := NewUserService(store.NewMockStore(), nil, catalog, nil, logger.Nop())

	_, err = service.Create(context.Background(), models.UserPayload{Username: "   "})
	assertKind(t, err, apperror.InvalidInput)

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.Error, got %T", err)
	}
	if appErr.Message != "Некорректные данные пользователя" {
		t.Errorf("expected the catalog text only, got %q", appErr.Message)
	}
}
