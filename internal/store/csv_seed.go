package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// ReadLocationsCSV parses a seed file into locations (without owner).
//
// CSV Format (header row required, trailing columns optional):
//
//	ip,city,country,continent,latitude,longitude,timezone
//	8.8.8.8,Mountain View,United States,North America,37.386,-122.0838,America/Los_Angeles
//
// Rows with fewer than 3 columns or an empty ip/city/country are skipped.
func ReadLocationsCSV(filePath string) ([]models.Location, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return parseLocationsCSV(file)
}

func parseLocationsCSV(r io.Reader) ([]models.Location, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	locations := make([]models.Location, 0, len(records)-1)
	for i, record := range records {
		// Skip header row
		if i == 0 {
			continue
		}

		if len(record) < 3 {
			continue
		}

		location := models.Location{
			IPAddress: strings.TrimSpace(record[0]),
			City:      strings.TrimSpace(record[1]),
			Country:   strings.TrimSpace(record[2]),
		}
		if location.IPAddress == "" || location.City == "" || location.Country == "" {
			continue
		}

		if len(record) > 3 {
			location.Continent = strings.TrimSpace(record[3])
		}
		if len(record) > 4 {
			location.Latitude = parseCoordinate(record[4])
		}
		if len(record) > 5 {
			location.Longitude = parseCoordinate(record[5])
		}
		if len(record) > 6 {
			location.Timezone = strings.TrimSpace(record[6])
		}

		locations = append(locations, location)
	}

	return locations, nil
}

func parseCoordinate(s string) *float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &value
}
