package domain

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAvatarURL = "https://res.cloudinary.com/bakate/image/upload/v1600522048/fullstackProject/vjo3f3vbpqdc4npdnnzm.jpg"

type User struct {
	ID               uuid.UUID   `json:"id"`
	Username         string      `json:"username"`
	Email            string      `json:"email"`
	PasswordHash     string      `json:"-"`
	Avatar           string      `json:"avatar"`
	ResetToken       *string     `json:"-"`
	ResetTokenExpiry *time.Time  `json:"-"`
	Recipes          []uuid.UUID `json:"recipes"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OwnsRecipe reports whether id is present in the user's recipe list.
func (u *User) OwnsRecipe(id uuid.UUID) bool {
	for _, rid := range u.Recipes {
		if rid == id {
			return true
		}
	}
	return false
}

// FederatedIdentity carries the verified claims of a third-party ID token.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
