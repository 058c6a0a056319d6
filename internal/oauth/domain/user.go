package domain

import "time"

// User is a resource owner known to the server.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2id encoded
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
