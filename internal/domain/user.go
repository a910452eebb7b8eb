package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the read-only projection of the external user directory. Profile
// fields, credentials and 2FA live with that collaborator.
type User struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
