package repository

import (
	"time"

	"writespace-backend/internal/domains/user"

	"github.com/google/uuid"
)

// cachedUser is the Redis projection of user.User. Password hash and reset
// token stay in Postgres only.
type cachedUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	ContactInfo  string    `json:"contactInfo"`
	IsActive     bool      `json:"isActive"`
	Image        *string   `json:"image,omitempty"`
	IsGoogleUser bool      `json:"isGoogleUser"`
	GoogleID     *string   `json:"googleId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCachedUser(u *user.User) cachedUser {
	return cachedUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		ContactInfo:  u.ContactInfo,
		IsActive:     u.IsActive,
		Image:        u.Image,
		IsGoogleUser: u.IsGoogleUser,
		GoogleID:     u.GoogleID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c cachedUser) toUser() *user.User {
	return &user.User{
		ID:           c.ID,
		Email:        c.Email,
		Name:         c.Name,
		ContactInfo:  c.ContactInfo,
		IsActive:     c.IsActive,
		Image:        c.Image,
		IsGoogleUser: c.IsGoogleUser,
		GoogleID:     c.GoogleID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
