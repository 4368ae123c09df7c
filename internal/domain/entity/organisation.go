package entity

import "time"

// Organisation owns users and knowledge domains. Organisations are
// append-only: there is no delete operation.
type Organisation struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
