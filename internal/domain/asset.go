package domain

import "time"

// Asset is an inventory item. Only assignment is managed here; full
// inventory semantics live elsewhere.
type Asset struct {
	ID         string
	Tag        string
	Name       string
	Type       string
	Status     string
	AssignedTo *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
