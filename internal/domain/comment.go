package domain

import "time"

// Comment is a ticket thread entry. Internal comments are visible to IT
// staff only and must never reach a front-office reader.
type Comment struct {
	ID         string
	TicketID   string
	AuthorID   string
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
