package domain

import "time"

// Student is the domain model for enrolled students.
type Student struct {
	ID        string
	StudentNo string
	Name      string
	Gender    string
	ClassName string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
