// Package messages holds the client-facing error texts.
//
// Defaults are English. Deployments can override any subset of keys with a
// YAML file (MESSAGES_PATH), which is how localized catalogs are shipped:
//
//	invalid_ip: "Неверный формат IP-адреса: %s"
//	user_not_found: "Пользователь не найден: %s"
package messages

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Key identifies one message in the catalog
type Key string

const (
	InvalidIP          Key = "invalid_ip"
	InvalidUpstreamIP  Key = "invalid_upstream_ip"
	IncompleteLocation Key = "incomplete_location"
	InvalidLocation    Key = "invalid_location"
	InvalidUser        Key = "invalid_user"
	InvalidID          Key = "invalid_id"
	InvalidBody        Key = "invalid_body"
	UserNotFound       Key = "user_not_found"
	UserIDNotFound     Key = "user_id_not_found"
	LocationNotFound   Key = "location_not_found"
	UserExists         Key = "user_exists"
	LocationExists     Key = "location_exists"
	UpstreamRateLimit  Key = "upstream_rate_limit"
	UpstreamFailure    Key = "upstream_failure"
	Internal           Key = "internal"
	RateLimitExceeded  Key = "rate_limit_exceeded"
)

var defaults = map[Key]string{
	InvalidIP:          "Invalid IP address format: %s",
	InvalidUpstreamIP:  "Invalid IP address: %s",
	IncompleteLocation: "Invalid IP address or geolocation API error",
	InvalidLocation:    "Invalid location data",
	InvalidUser:        "Invalid user data: username must be non-blank and at most 255 characters",
	InvalidID:          "Invalid id: %s",
	InvalidBody:        "Malformed request body",
	UserNotFound:       "User not found: %s",
	UserIDNotFound:     "User not found with ID: %d",
	LocationNotFound:   "Location not found",
	UserExists:         "A user with this name already exists",
	LocationExists:     "A location for IP %s already exists",
	UpstreamRateLimit:  "Geolocation API request limit exceeded",
	UpstreamFailure:    "Failed to fetch location data",
	Internal:           "Internal server error",
	RateLimitExceeded:  "Rate limit exceeded. Please try again later.",
}

// Catalog resolves message keys to (possibly overridden) format strings.
// A Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	texts map[Key]string
}

// Default returns the built-in English catalog
func Default() *Catalog {
	texts := make(map[Key]string, len(defaults))
	for k, v := range defaults {
		texts[k] = v
	}
	return &Catalog{texts: texts}
}

// Load returns the default catalog with overrides from the YAML file at path.
// An empty path yields the defaults.
func Load(path string) (*Catalog, error) {
	catalog := Default()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages file: %w", err)
	}

	if err := catalog.merge(data); err != nil {
		return nil, err
	}

	return catalog, nil
}

func (c *Catalog) merge(data []byte) error {
	overrides := map[string]string{}
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse messages file: %w", err)
	}

	for k, v := range overrides {
		key := Key(k)
		if _, known := defaults[key]; !known {
			return fmt.Errorf("unknown message key %q", k)
		}
		c.texts[key] = v
	}

	return nil
}

// Format renders the message for key with args
func (c *Catalog) Format(key Key, args ...any) string {
	text, ok := c.texts[key]
	if !ok {
		return string(key)
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
