package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evyataryagoni/iplocator/internal/metrics"
	"github.com/evyataryagoni/iplocator/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Options configures Open
type Options struct {
	Driver      string // "mysql" or "postgres"
	DSN         string // Data Source Name
	AutoMigrate bool   // create/alter tables and indexes on startup
	Metrics     *metrics.Metrics
}

// GormStore implements Store with GORM.
// The same code serves MySQL and Postgres; only the dialector differs.
type GormStore struct {
	db      *gorm.DB
	driver  string
	metrics *metrics.Metrics
}

// Open connects to the database and returns a ready store.
//
// DSN formats:
//   - mysql:    user:password@tcp(host:3306)/dbname?parseTime=true
//   - postgres: host=localhost user=app password=secret dbname=iplocator port=5432 sslmode=disable
func Open(opts Options) (*GormStore, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))

	var dialector gorm.Dialector
	switch driver {
	case "mysql", "":
		driver = "mysql"
		dialector = mysql.Open(opts.DSN)
	case "postgres", "postgresql":
		driver = "postgres"
		dialector = postgres.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unknown database driver: %s (supported: 'mysql', 'postgres')", opts.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s with GORM: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	if err := opts.Metrics.RegisterDBStats(sqlDB, driver); err != nil {
		return nil, fmt.Errorf("failed to register pool metrics: %w", err)
	}

	if opts.AutoMigrate {
		if err := db.AutoMigrate(&userModel{}, &locationModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	return newGormStore(db, driver, opts.Metrics), nil
}

// gormConfig is shared by Open and the tests.
// Services open explicit transactions, so GORM's implicit per-write
// transaction is skipped. TranslateError turns driver-specific unique
// violations into gorm.ErrDuplicatedKey.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}
}

func newGormStore(db *gorm.DB, driver string, m *metrics.Metrics) *GormStore {
	return &GormStore{db: db, driver: driver, metrics: m}
}

// Transaction implements Store
func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormStore(tx, s.driver, s.metrics))
	})
}

// FindUserByID implements UserStore
func (s *GormStore) FindUserByID(ctx context.Context, id uint) (user *models.User, err error) {
	defer s.observe("find_user", time.Now(), &err)

	var record userModel
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return toUser(&record), nil
}

// FindUserByIDWithLocations implements UserStore
func (s *GormStore) FindUserByIDWithLocations(ctx context.Context, id uint) (user *models.User, err error) {
	defer s.observe("find_user_with_locations", time.Now(), &err)

	var record userModel
	result := s.db.WithContext(ctx).
		Preload("Locations", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(&record, id)
	if result.Error != nil {
		return nil, translate(result.Error)
	}

	// Preload leaves nil when there are no rows; callers expect a slice
	if record.Locations == nil {
		record.Locations = []locationModel{}
	}
	return toUser(&record), nil
}

// FindUserByUsername implements UserStore
func (s *GormStore) FindUserByUsername(ctx context.Context, username string) (user *models.User, err error) {
	defer s.observe("find_user_by_username", time.Now(), &err)

	var record userModel
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return toUser(&record), nil
}

// ListUsers implements UserStore
func (s *GormStore) ListUsers(ctx context.Context) (users []models.User, err error) {
	defer s.observe("list_users", time.Now(), &err)

	var records []userModel
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, translate(err)
	}

	users = make([]models.User, 0, len(records))
	for i := range records {
		users = append(users, *toUser(&records[i]))
	}
	return users, nil
}

// CreateUser implements UserStore
func (s *GormStore) CreateUser(ctx context.Context, user *models.User) (err error) {
	defer s.observe("create_user", time.Now(), &err)

	record := fromUser(user)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return translate(err)
	}

	user.ID = record.ID
	user.CreatedAt = record.CreatedAt
	user.UpdatedAt = record.UpdatedAt
	return nil
}

// SaveUser implements UserStore
func (s *GormStore) SaveUser(ctx context.Context, user *models.User) (err error) {
	defer s.observe("save_user", time.Now(), &err)

	record := fromUser(user)
	if err := s.db.WithContext(ctx).Model(record).Select("*").Omit("created_at").Updates(record).Error; err != nil {
		return translate(err)
	}

	user.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteUser implements UserStore
func (s *GormStore) DeleteUser(ctx context.Context, id uint) (err error) {
	defer s.observe("delete_user", time.Now(), &err)

	result := s.db.WithContext(ctx).Delete(&userModel{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindLocationByID implements LocationStore
func (s *GormStore) FindLocationByID(ctx context.Context, id uint) (location *models.Location, err error) {
	defer s.observe("find_location", time.Now(), &err)

	var record locationModel
	if err := s.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return toLocation(&record), nil
}

// FindLocationByIP implements LocationStore
// GORM query: SELECT * FROM locations WHERE ip_address = ? ORDER BY id LIMIT 1
func (s *GormStore) FindLocationByIP(ctx context.Context, ip string) (location *models.Location, err error) {
	defer s.observe("find_location_by_ip", time.Now(), &err)

	var record locationModel
	if err := s.db.WithContext(ctx).Where("ip_address = ?", ip).First(&record).Error; err != nil {
		return nil, translate(err)
	}
	return toLocation(&record), nil
}

// FindLocationsByUserID implements LocationStore
func (s *GormStore) FindLocationsByUserID(ctx context.Context, userID uint) (locations []models.Location, err error) {
	defer s.observe("find_locations_by_user", time.Now(), &err)

	var records []locationModel
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return toLocations(records), nil
}

// ListLocations implements LocationStore
func (s *GormStore) ListLocations(ctx context.Context) (locations []models.Location, err error) {
	defer s.observe("list_locations", time.Now(), &err)

	var records []locationModel
	if err := s.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, translate(err)
	}
	return toLocations(records), nil
}

// CreateLocation implements LocationStore
func (s *GormStore) CreateLocation(ctx context.Context, location *models.Location) (err error) {
	defer s.observe("create_location", time.Now(), &err)

	record := fromLocation(location)
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return translate(err)
	}

	location.ID = record.ID
	location.CreatedAt = record.CreatedAt
	location.UpdatedAt = record.UpdatedAt
	return nil
}

// CreateLocationIfAbsent implements LocationStore.
// MySQL renders this as INSERT ... ON DUPLICATE KEY UPDATE id=id and
// Postgres as INSERT ... ON CONFLICT (ip_address) DO NOTHING; both report
// zero affected rows when the IP already exists.
func (s *GormStore) CreateLocationIfAbsent(ctx context.Context, location *models.Location) (created bool, err error) {
	defer s.observe("create_location_if_absent", time.Now(), &err)

	record := fromLocation(location)
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ip_address"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	location.ID = record.ID
	location.CreatedAt = record.CreatedAt
	location.UpdatedAt = record.UpdatedAt
	return true, nil
}

// SaveLocation implements LocationStore
func (s *GormStore) SaveLocation(ctx context.Context, location *models.Location) (err error) {
	defer s.observe("save_location", time.Now(), &err)

	record := fromLocation(location)
	if err := s.db.WithContext(ctx).Model(record).Select("*").Omit("created_at").Updates(record).Error; err != nil {
		return translate(err)
	}

	location.UpdatedAt = record.UpdatedAt
	return nil
}

// DeleteLocation implements LocationStore
func (s *GormStore) DeleteLocation(ctx context.Context, id uint) (err error) {
	defer s.observe("delete_location", time.Now(), &err)

	result := s.db.WithContext(ctx).Delete(&locationModel{}, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteLocationsByUserID implements LocationStore
func (s *GormStore) DeleteLocationsByUserID(ctx context.Context, userID uint) (ips []string, err error) {
	defer s.observe("delete_locations_by_user", time.Now(), &err)

	db := s.db.WithContext(ctx)
	if err := db.Model(&locationModel{}).Where("user_id = ?", userID).Pluck("ip_address", &ips).Error; err != nil {
		return nil, translate(err)
	}
	if len(ips) == 0 {
		return ips, nil
	}

	if err := db.Where("user_id = ?", userID).Delete(&locationModel{}).Error; err != nil {
		return nil, translate(err)
	}
	return ips, nil
}

// Close closes the database connection
// Should be called when the application shuts down
func (s *GormStore) Close() error {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func (s *GormStore) observe(operation string, start time.Time, errp *error) {
	if s.metrics == nil {
		return
	}

	status := "success"
	if err := *errp; err != nil {
		status = "error"
		if errors.Is(err, ErrNotFound) {
			status = "not_found"
		}
	}

	s.metrics.DatastoreQueriesTotal.WithLabelValues(s.driver, operation, status).Inc()
	s.metrics.DatastoreQueryDuration.WithLabelValues(s.driver, operation).Observe(time.Since(start).Seconds())
}

// translate maps GORM errors to the store's sentinel errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return fmt.Errorf("database query failed: %w", err)
	}
}

func toLocations(records []locationModel) []models.Location {
	locations := make([]models.Location, 0, len(records))
	for i := range records {
		locations = append(locations, *toLocation(&records[i]))
	}
	return locations
}
