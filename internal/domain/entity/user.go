package entity

import "time"

// User is an account that can manage collections and submit queries.
// Passwords are stored as bcrypt hashes in Password.
//
// A user belongs to at most one organisation; OrganisationID is nil for
// standalone accounts.
type User struct {
	ID             string
	Email          string
	Password       string
	Name           string
	AvatarURL      string
	OrganisationID *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
