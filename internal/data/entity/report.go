package entity

import (
	"github.com/google/uuid"
)

type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in-progress"
	StatusResolved   ReportStatus = "resolved"
)

// Valid reports whether s is one of the three enumerated statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type Report struct {
	Base
	Title       string       `db:"title"`
	Description string       `db:"description"`
	Category    string       `db:"category"`
	Address     string       `db:"address"`
	Image       string       `db:"image"`
	AuthorID    *uuid.UUID   `db:"author_id"`
	Status      ReportStatus `db:"status"`
	Upvotes     int          `db:"upvotes"`
	Downvotes   int          `db:"downvotes"`

	// Populated by joins, not a column
	AuthorName *string `db:"-"`
}

// OwnedBy reports whether userID authored the report.
func (r *Report) OwnedBy(userID uuid.UUID) bool {
	return r.AuthorID != nil && *r.AuthorID == userID
}
