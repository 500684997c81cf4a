package domain

import "time"

// Field is a topic grouping questions, e.g. "Quantitative Aptitude".
type Field struct {
	ID          string
	Name        string
	Description string
	// For restricts the audience; empty means everyone.
	For UserType
	// DefaultTimePerQuestion is in seconds.
	DefaultTimePerQuestion int
	// PricePaise is the access price; zero means free.
	PricePaise int64
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (f Field) Free() bool { return f.PricePaise <= 0 }
