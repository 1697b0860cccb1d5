package domain

import "time"

// Account represents a registered user account.
type Account struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
