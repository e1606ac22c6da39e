package pasetotoken

import (
	"time"

	"github.com/google/uuid"
)

// Claims is the app-facing token payload. Role and clinic are not carried;
// they are looked up on every request.
type Claims struct {
	UserID    uuid.UUID
	SessionID uuid.UUID

	Issuer   string
	Audience string

	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
	TokenID   string // jti
}

