package models

import "time"

// User owns zero or more Location records
type User struct {
	ID        uint
	Username  string
	CreatedAt time.Time
	UpdatedAt time.Time
	Locations []Location
}

// Location is the geolocation record for one IP address.
// Latitude and Longitude are nil when unknown.
type Location struct {
	ID        uint
	IPAddress string
	City      string
	Country   string
	Continent string
	Latitude  *float64
	Longitude *float64
	Timezone  string
	UserID    uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationDetails is the public representation of a Location
type LocationDetails struct {
	ID        uint     `json:"id"`
	IPAddress string   `json:"ip_address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Continent string   `json:"continent"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Timezone  string   `json:"timezone"`
	UserID    uint     `json:"user_id"`
}

// LocationPayload is the request body for creating or replacing a location
type LocationPayload struct {
	IPAddress string   `json:"ip_address" validate:"required,notblank"`
	City      string   `json:"city" validate:"required,notblank"`
	Country   string   `json:"country" validate:"required,notblank"`
	Continent string   `json:"continent"`
	Latitude  *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	Timezone  string   `json:"timezone"`
}

// UserPayload is the request body for creating/renaming a user, and the
// body of a resolve request identifying who asks.
type UserPayload struct {
	Username string `json:"username" validate:"required,notblank,max=255"`
}

// UserSummary is a user without its locations
type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// UserDetails is a user with all owned locations
type UserDetails struct {
	ID        uint              `json:"id"`
	Username  string            `json:"username"`
	Locations []LocationDetails `json:"locations"`
}

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Error string `json:"error"`
}

// ToLocationDetails maps a stored Location to its public representation
func ToLocationDetails(l *Location) LocationDetails {
	return LocationDetails{
		ID:        l.ID,
		IPAddress: l.IPAddress,
		City:      l.City,
		Country:   l.Country,
		Continent: l.Continent,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Timezone:  l.Timezone,
		UserID:    l.UserID,
	}
}

// ToLocationDetailsList maps a slice, never returning nil so JSON renders []
func ToLocationDetailsList(locations []Location) []LocationDetails {
	out := make([]LocationDetails, 0, len(locations))
	for i := range locations {
		out = append(out, ToLocationDetails(&locations[i]))
	}
	return out
}

// ToUserSummary drops the locations of u
func ToUserSummary(u *User) UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username}
}

// ToUserDetails maps u together with its loaded locations
func ToUserDetails(u *User) UserDetails {
	return UserDetails{
		ID:        u.ID,
		Username:  u.Username,
		Locations: ToLocationDetailsList(u.Locations),
	}
}

// Apply overwrites every descriptive field of l with the payload values.
// Fields absent from the payload become empty/nil; there is no merging.
func (p *LocationPayload) Apply(l *Location) {
	l.IPAddress = p.IPAddress
	l.City = p.City
	l.Country = p.Country
	l.Continent = p.Continent
	l.Latitude = p.Latitude
	l.Longitude = p.Longitude
	l.Timezone = p.Timezone
}
