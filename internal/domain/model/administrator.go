package model

import (
	"time"

	"github.com/google/uuid"
)

// Administrator is the single privileged account that manages site content.
// PasswordHash holds the bcrypt output and must never leave the server.
type Administrator struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
