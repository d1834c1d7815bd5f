package store

import (
	"time"

	"github.com/evyataryagoni/iplocator/internal/models"
)

// userModel is the GORM model for the users table
type userModel struct {
	ID        uint   `gorm:"column:id;primaryKey"`
	Username  string `gorm:"column:username;size:255;not null;uniqueIndex:idx_users_username"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Locations []locationModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (userModel) TableName() string {
	return "users"
}

// locationModel is the GORM model for the locations table.
// The unique index on ip_address is what keeps IPs unique; the service never
// relies on check-then-insert for that.
type locationModel struct {
	ID        uint     `gorm:"column:id;primaryKey"`
	IPAddress string   `gorm:"column:ip_address;size:45;not null;uniqueIndex:idx_locations_ip_address"`
	City      string   `gorm:"column:city;size:255"`
	Country   string   `gorm:"column:country;size:255"`
	Continent string   `gorm:"column:continent;size:255"`
	Latitude  *float64 `gorm:"column:latitude"`
	Longitude *float64 `gorm:"column:longitude"`
	Timezone  string   `gorm:"column:timezone;size:64"`
	UserID    uint     `gorm:"column:user_id;not null;index:idx_locations_user_id"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (locationModel) TableName() string {
	return "locations"
}

func toUser(m *userModel) *models.User {
	user := &models.User{
		ID:        m.ID,
		Username:  m.Username,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.Locations != nil {
		user.Locations = make([]models.Location, 0, len(m.Locations))
		for i := range m.Locations {
			user.Locations = append(user.Locations, *toLocation(&m.Locations[i]))
		}
	}
	return user
}

func fromUser(u *models.User) *userModel {
	return &userModel{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toLocation(m *locationModel) *models.Location {
	return &models.Location{
		ID:        m.ID,
		IPAddress: m.IPAddress,
		City:      m.City,
		Country:   m.Country,
		Continent: m.Continent,
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		Timezone:  m.Timezone,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromLocation(l *models.Location) *locationModel {
	return &locationModel{
		ID:        l.ID,
		IPAddress: l.IPAddress,
		City:      l.City,
		Country:   l.Country,
		Continent: l.Continent,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Timezone:  l.Timezone,
		UserID:    l.UserID,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}
