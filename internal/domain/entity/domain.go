package entity

import "time"

// Domain describes a knowledge or format area an organisation has
// expertise in. Every domain belongs to exactly one organisation.
type Domain struct {
	ID             string
	OrganisationID string
	Name           string
	Tooltip        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
