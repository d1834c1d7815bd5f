package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/models"
	"github.com/evyataryagoni/iplocator/internal/store"
	"github.com/evyataryagoni/iplocator/internal/validation"
)

var (
	app = kingpin.New(
		"seed",
		"Loads locations from a CSV file into the database, owned by one user")

	csvPath = app.Flag("csv", "Path to the CSV file (ip,city,country[,continent,latitude,longitude,timezone]).").
		Required().
		ExistingFile()
	username = app.Flag("username", "Owner of the seeded locations; created if missing.").
			Default("seed").
			String()
	driver = app.Flag("driver", "Database driver (mysql or postgres).").
		Default("mysql").
		Envar("DB_DRIVER").
		String()
	dsn = app.Flag("dsn", "Database DSN.").
		Required().
		Envar("DATABASE_DSN").
		String()
	verbose = app.Flag("verbose", "Log every row.").
		Short('v').
		Bool()
)

type seedResult struct {
	Inserted int
	Skipped  int
	Invalid  int
}

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "info"
	if *verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: true}).WithComponent("seed")

	dataStore, err := store.Open(store.Options{Driver: *driver, DSN: *dsn, AutoMigrate: true})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer dataStore.Close()

	result, err := seed(context.Background(), dataStore, *csvPath, *username, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Int("invalid", result.Invalid).
		Msg("Seeding complete")
}

// seed inserts every CSV row whose IP is not stored yet. Existing rows are
// left untouched so the command can be re-run safely.
func seed(ctx context.Context, st store.Store, path, owner string, log *logger.Logger) (seedResult, error) {
	var result seedResult

	owner = strings.TrimSpace(owner)
	if owner == "" {
		return result, fmt.Errorf("username is required")
	}

	locations, err := store.ReadLocationsCSV(path)
	if err != nil {
		return result, err
	}

	user, err := findOrCreateUser(ctx, st, owner)
	if err != nil {
		return result, err
	}

	for i := range locations {
		location := locations[i]

		ip, ok := validation.CanonicalIP(location.IPAddress)
		if !ok {
			log.Warn().Str("ip", location.IPAddress).Msg("Skipping row with invalid IP")
			result.Invalid++
			continue
		}
		location.IPAddress = ip
		location.UserID = user.ID

		created, err := st.CreateLocationIfAbsent(ctx, &location)
		if err != nil {
			return result, fmt.Errorf("failed to insert %s: %w", ip, err)
		}

		if created {
			result.Inserted++
			log.Debug().Str("ip", ip).Str("city", location.City).Msg("Inserted")
		} else {
			result.Skipped++
			log.Debug().Str("ip", ip).Msg("Already stored")
		}
	}

	return result, nil
}

func findOrCreateUser(ctx context.Context, st store.Store, username string) (*models.User, error) {
	user, err := st.FindUserByUsername(ctx, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user %q: %w", username, err)
	}

	user = &models.User{Username: username}
	if err := st.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return user, nil
}
