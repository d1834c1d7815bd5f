package service

import (
	"context"
	"strings"

	"github.com/evyataryagoni/iplocator/internal/apperror"
	"github.com/evyataryagoni/iplocator/internal/cache"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/store"
	"github.com/evyataryagoni/iplocator/internal/validation"
)

// UserService handles business logic for users.
// Deleting a user deletes the locations it owns.
type UserService struct {
	store   store.Store
	cache   cache.LocationCache
	msgs    *messages.Catalog
	metrics *metrics.Metrics
	logger  *logger.Logger
}

// NewUserService creates a new user service. The cache is needed so that
// cascaded location deletes are evicted.
func NewUserService(st store.Store, c cache.LocationCache, msgs *messages.Catalog, m *metrics.Metrics, log *logger.Logger) *UserService {
	if c == nil {
		c = cache.NopCache{}
	}
	if msgs == nil {
		msgs = messages.Default()
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &UserService{
		store:   st,
		cache:   c,
		msgs:    msgs,
		metrics: m,
		logger:  log.WithComponent("UserService"),
	}
}

// Create registers a new user. Usernames are unique.
func (s *UserService) Create(ctx context.Context, payload models.UserPayload) (models.UserSummary, error) {
	log := s.logger.WithContext(ctx)

	username, err := s.checkPayload(payload)
	if err != nil {
		s.count("create", err)
		logFailure(log, err, "User rejected")
		return models.UserSummary{}, err
	}

	user := &models.User{Username: username}
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		// The unique index still catches a concurrent insert of the same name
		if _, err := tx.FindUserByUsername(ctx, username); err == nil {
			return store.ErrDuplicate
		} else if !isNotFound(err) {
			return err
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		err = fromStore(err, s.msgs, "", s.msgs.Format(messages.UserExists))
		s.count("create", err)
		logFailure(log, err, "User creation failed")
		return models.UserSummary{}, err
	}

	s.count("create", nil)
	log.Info().Uint("user_id", user.ID).Str("username", username).Msg("User created")
	return models.ToUserSummary(user), nil
}

// Get returns user id together with its locations
func (s *UserService) Get(ctx context.Context, id uint) (models.UserDetails, error) {
	user, err := s.store.FindUserByIDWithLocations(ctx, id)
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.UserIDNotFound, id), "")
		logFailure(s.logger.WithContext(ctx), err, "User lookup failed")
		return models.UserDetails{}, err
	}
	return models.ToUserDetails(user), nil
}

// List returns all users without their locations
func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		err = fromStore(err, s.msgs, "", "")
		logFailure(s.logger.WithContext(ctx), err, "Listing users failed")
		return nil, err
	}

	out := make([]models.UserSummary, 0, len(users))
	for i := range users {
		out = append(out, models.ToUserSummary(&users[i]))
	}
	return out, nil
}

// Update renames user id
func (s *UserService) Update(ctx context.Context, id uint, payload models.UserPayload) (models.UserSummary, error) {
	log := s.logger.WithContext(ctx)

	username, err := s.checkPayload(payload)
	if err != nil {
		s.count("update", err)
		logFailure(log, err, "User update rejected")
		return models.UserSummary{}, err
	}

	var user *models.User
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		user, err = tx.FindUserByID(ctx, id)
		if err != nil {
			return err
		}
		if user.Username == username {
			return nil
		}

		if other, err := tx.FindUserByUsername(ctx, username); err == nil && other.ID != id {
			return store.ErrDuplicate
		} else if err != nil && !isNotFound(err) {
			return err
		}

		user.Username = username
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.UserIDNotFound, id), s.msgs.Format(messages.UserExists))
		s.count("update", err)
		logFailure(log, err, "User update failed")
		return models.UserSummary{}, err
	}

	s.count("update", nil)
	log.Info().Uint("user_id", id).Str("username", username).Msg("User updated")
	return models.ToUserSummary(user), nil
}

// Delete removes user id and every location it owns in one transaction
func (s *UserService) Delete(ctx context.Context, id uint) error {
	log := s.logger.WithContext(ctx)

	var removedIPs []string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.FindUserByID(ctx, id); err != nil {
			return err
		}
		var err error
		removedIPs, err = tx.DeleteLocationsByUserID(ctx, id)
		if err != nil {
			return err
		}
		return tx.DeleteUser(ctx, id)
	})
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.UserIDNotFound, id), "")
		s.count("delete", err)
		logFailure(log, err, "User deletion failed")
		return err
	}

	if len(removedIPs) > 0 {
		if err := s.cache.Delete(ctx, removedIPs...); err != nil {
			log.Warn().Err(err).Strs("ips", removedIPs).Msg("Cache eviction failed")
		}
	}

	s.count("delete", nil)
	log.Info().Uint("user_id", id).Int("locations_deleted", len(removedIPs)).Msg("User deleted")
	return nil
}

func (s *UserService) checkPayload(payload models.UserPayload) (string, error) {
	if err := validation.Struct(payload); err != nil {
		return "", apperror.Wrap(apperror.InvalidInput, s.msgs.Format(messages.InvalidUser), err)
	}
	return strings.TrimSpace(payload.Username), nil
}

func (s *UserService) count(operation string, err error) {
	if s.metrics == nil {
		return
	}
	result := "success"
	if err != nil {
		result = apperror.KindOf(err).String()
	}
	s.metrics.UserOperationsTotal.WithLabelValues(operation, result).Inc()
}
