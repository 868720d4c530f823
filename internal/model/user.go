package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization tier of a user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleModerator   Role = "moderator"
	RoleContributor Role = "contributor"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleContributor:
		return true
	}
	return false
}

// ParseRole converts s into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username       string    `gorm:"size:150;uniqueIndex;not null"`
	Email          string    `gorm:"uniqueIndex;not null"`
	HashedPassword string    `gorm:"not null"`
	FirstName      string    `gorm:"size:150"`
	LastName       string    `gorm:"size:150"`
	Role           Role      `gorm:"type:varchar(20);not null;default:contributor"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}
