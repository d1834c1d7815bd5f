package service

import (
	"context"
	"errors"
	"strings"

	"github.com/evyataryagoni/iplocator/internal/apperror"
	"github.com/evyataryagoni/iplocator/internal/cache"
	"github.com/evyataryagoni/iplocator/internal/geoclient"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/store"
	"github.com/evyataryagoni/iplocator/internal/validation"
)

// LocationService handles business logic for locations
//
// Responsibilities:
//   - Validate input (IP format, payloads)
//   - Resolve unknown IPs through the upstream API
//   - Keep the cache consistent with committed rows
//   - Translate store and upstream failures into apperror kinds
type LocationService struct {
	store    store.Store
	cache    cache.LocationCache
	upstream geoclient.Client
	msgs     *messages.Catalog
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewLocationService creates a new location service.
// cache, msgs, m and log are optional (nil picks a no-op / default).
func NewLocationService(
	st store.Store,
	c cache.LocationCache,
	upstream geoclient.Client,
	msgs *messages.Catalog,
	m *metrics.Metrics,
	log *logger.Logger,
) *LocationService {
	if c == nil {
		c = cache.NopCache{}
	}
	if msgs == nil {
		msgs = messages.Default()
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &LocationService{
		store:    st,
		cache:    c,
		upstream: upstream,
		msgs:     msgs,
		metrics:  m,
		logger:   log.WithComponent("LocationService"),
	}
}

// Resolve returns the location of ip on behalf of username.
//
// Flow:
//  1. Validate IP format and the requesting user
//  2. Cache, then database
//  3. Upstream API; the answer is stored owned by the requesting user
func (s *LocationService) Resolve(ctx context.Context, ip, username string) (models.LocationDetails, error) {
	log := s.logger.WithContext(ctx).WithIP(ip).WithUser(username)

	details, result, err := s.resolve(ctx, ip, username)
	if err != nil {
		s.countResolution(apperror.KindOf(err).String())
		logFailure(log, err, "IP resolution failed")
		return models.LocationDetails{}, err
	}

	s.countResolution(result)
	log.Debug().Str("result", result).Str("city", details.City).Msg("IP resolved")
	return details, nil
}

func (s *LocationService) resolve(ctx context.Context, rawIP, username string) (models.LocationDetails, string, error) {
	ip, ok := validation.CanonicalIP(rawIP)
	if !ok {
		return models.LocationDetails{}, "", apperror.New(apperror.InvalidInput, s.msgs.Format(messages.InvalidIP, rawIP))
	}

	// A blank name matches no user
	username = strings.TrimSpace(username)
	if username == "" {
		return models.LocationDetails{}, "", apperror.New(apperror.NotFound, s.msgs.Format(messages.UserNotFound, username))
	}

	user, err := s.store.FindUserByUsername(ctx, username)
	if err != nil {
		return models.LocationDetails{}, "", fromStore(err, s.msgs, s.msgs.Format(messages.UserNotFound, username), "")
	}

	// A broken cache degrades to the database
	if cached, found, err := s.cache.Get(ctx, ip); err != nil {
		s.logger.Warn().Err(err).Str("ip", ip).Msg("Cache read failed")
	} else if found {
		return cached, "cache_hit", nil
	}

	existing, err := s.store.FindLocationByIP(ctx, ip)
	switch {
	case err == nil:
		details := models.ToLocationDetails(existing)
		s.fillCache(ctx, details)
		return details, "store_hit", nil
	case !errors.Is(err, store.ErrNotFound):
		return models.LocationDetails{}, "", fromStore(err, s.msgs, "", "")
	}

	// Outside any transaction: the call is slow and may time out
	found, err := s.upstream.Lookup(ctx, ip)
	if err != nil {
		return models.LocationDetails{}, "", fromUpstream(err, ip, s.msgs)
	}

	location := &models.Location{
		IPAddress: ip,
		City:      found.City,
		Country:   found.Country,
		Continent: found.Continent,
		Latitude:  found.Latitude,
		Longitude: found.Longitude,
		Timezone:  found.Timezone,
		UserID:    user.ID,
	}

	// A concurrent request may have inserted the same IP meanwhile; the
	// unique index keeps one row and both callers return it.
	var stored *models.Location
	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.CreateLocationIfAbsent(ctx, location); err != nil {
			return err
		}
		var err error
		stored, err = tx.FindLocationByIP(ctx, ip)
		return err
	})
	if err != nil {
		return models.LocationDetails{}, "", fromStore(err, s.msgs, s.msgs.Format(messages.LocationNotFound), "")
	}

	details := models.ToLocationDetails(stored)
	s.fillCache(ctx, details)
	return details, "fetched", nil
}

// Get returns the location with the given id
func (s *LocationService) Get(ctx context.Context, id uint) (models.LocationDetails, error) {
	location, err := s.store.FindLocationByID(ctx, id)
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.LocationNotFound), "")
		logFailure(s.logger.WithContext(ctx), err, "Location lookup failed")
		return models.LocationDetails{}, err
	}
	return models.ToLocationDetails(location), nil
}

// List returns every stored location
func (s *LocationService) List(ctx context.Context) ([]models.LocationDetails, error) {
	locations, err := s.store.ListLocations(ctx)
	if err != nil {
		err = fromStore(err, s.msgs, "", "")
		logFailure(s.logger.WithContext(ctx), err, "Listing locations failed")
		return nil, err
	}
	return models.ToLocationDetailsList(locations), nil
}

// ListByUser returns the locations owned by userID
func (s *LocationService) ListByUser(ctx context.Context, userID uint) ([]models.LocationDetails, error) {
	var locations []models.Location
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return err
		}
		var err error
		locations, err = tx.FindLocationsByUserID(ctx, userID)
		return err
	})
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.UserIDNotFound, userID), "")
		logFailure(s.logger.WithContext(ctx), err, "Listing user locations failed")
		return nil, err
	}
	return models.ToLocationDetailsList(locations), nil
}

// Create stores a location supplied by the client for userID
func (s *LocationService) Create(ctx context.Context, payload models.LocationPayload, userID uint) (models.LocationDetails, error) {
	log := s.logger.WithContext(ctx)

	ip, err := s.checkPayload(&payload)
	if err != nil {
		logFailure(log, err, "Location rejected")
		return models.LocationDetails{}, err
	}

	location := &models.Location{UserID: userID}
	payload.Apply(location)
	location.IPAddress = ip

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return fromStore(err, s.msgs, s.msgs.Format(messages.UserIDNotFound, userID), "")
		}
		return tx.CreateLocation(ctx, location)
	})
	if err != nil {
		err = fromStore(err, s.msgs, "", s.msgs.Format(messages.LocationExists, ip))
		logFailure(log, err, "Location creation failed")
		return models.LocationDetails{}, err
	}

	log.Info().Uint("location_id", location.ID).Str("ip", ip).Uint("user_id", userID).Msg("Location created")
	return models.ToLocationDetails(location), nil
}

// Update replaces every descriptive field of location id with payload
func (s *LocationService) Update(ctx context.Context, id uint, payload models.LocationPayload) (models.LocationDetails, error) {
	log := s.logger.WithContext(ctx)

	var (
		ip      string
		oldIP   string
		updated *models.Location
	)
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		location, err := tx.FindLocationByID(ctx, id)
		if err != nil {
			return fromStore(err, s.msgs, s.msgs.Format(messages.LocationNotFound), "")
		}
		oldIP = location.IPAddress

		canonical, ok := validation.CanonicalIP(payload.IPAddress)
		if !ok {
			return apperror.New(apperror.InvalidInput, s.msgs.Format(messages.InvalidIP, payload.IPAddress))
		}
		ip = canonical

		payload.Apply(location)
		location.IPAddress = ip
		if err := tx.SaveLocation(ctx, location); err != nil {
			return err
		}
		updated = location
		return nil
	})
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.LocationNotFound), s.msgs.Format(messages.LocationExists, ip))
		logFailure(log, err, "Location update failed")
		return models.LocationDetails{}, err
	}

	s.evict(ctx, oldIP, ip)

	log.Info().Uint("location_id", id).Str("ip", ip).Msg("Location updated")
	return models.ToLocationDetails(updated), nil
}

// Delete removes location id. It reports true on success.
func (s *LocationService) Delete(ctx context.Context, id uint) (bool, error) {
	log := s.logger.WithContext(ctx)

	var ip string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		location, err := tx.FindLocationByID(ctx, id)
		if err != nil {
			return err
		}
		ip = location.IPAddress
		return tx.DeleteLocation(ctx, id)
	})
	if err != nil {
		err = fromStore(err, s.msgs, s.msgs.Format(messages.LocationNotFound), "")
		logFailure(log, err, "Location deletion failed")
		return false, err
	}

	s.evict(ctx, ip)

	log.Info().Uint("location_id", id).Str("ip", ip).Msg("Location deleted")
	return true, nil
}

// checkPayload validates a create payload and returns the canonical IP
func (s *LocationService) checkPayload(payload *models.LocationPayload) (string, error) {
	if err := validation.Struct(payload); err != nil {
		return "", apperror.Wrap(apperror.InvalidInput, s.msgs.Format(messages.InvalidLocation), err)
	}

	ip, ok := validation.CanonicalIP(payload.IPAddress)
	if !ok {
		return "", apperror.New(apperror.InvalidInput, s.msgs.Format(messages.InvalidIP, payload.IPAddress))
	}
	return ip, nil
}

// fillCache stores a snapshot read earlier, then checks it against the
// database. Writers evict only after commit, so a write that committed
// between the read and the Set is caught here and the snapshot dropped.
func (s *LocationService) fillCache(ctx context.Context, details models.LocationDetails) {
	if err := s.cache.Set(ctx, details.IPAddress, details); err != nil {
		s.logger.Warn().Err(err).Str("ip", details.IPAddress).Msg("Cache write failed")
		return
	}

	current, err := s.store.FindLocationByIP(ctx, details.IPAddress)
	if err == nil && sameLocation(models.ToLocationDetails(current), details) {
		return
	}

	s.logger.Debug().Str("ip", details.IPAddress).Msg("Row changed before caching, dropping snapshot")
	s.evict(ctx, details.IPAddress)
}

func sameLocation(a, b models.LocationDetails) bool {
	return a.ID == b.ID &&
		a.IPAddress == b.IPAddress &&
		a.City == b.City &&
		a.Country == b.Country &&
		a.Continent == b.Continent &&
		a.Timezone == b.Timezone &&
		a.UserID == b.UserID &&
		sameCoordinate(a.Latitude, b.Latitude) &&
		sameCoordinate(a.Longitude, b.Longitude)
}

func sameCoordinate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *LocationService) evict(ctx context.Context, ips ...string) {
	if err := s.cache.Delete(ctx, ips...); err != nil {
		s.logger.Warn().Err(err).Strs("ips", ips).Msg("Cache eviction failed")
	}
}

func (s *LocationService) countResolution(result string) {
	if s.metrics != nil {
		s.metrics.LocationResolutionsTotal.WithLabelValues(result).Inc()
	}
}
