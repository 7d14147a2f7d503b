package employee

import "time"

type EmploymentStatus string

const (
	EmploymentStatusActive   EmploymentStatus = "active"
	EmploymentStatusInactive EmploymentStatus = "inactive"
)

type Employee struct {
	ID        string
	Code      string // terminal-facing employee code on punch events
	FullName  string
	Status    EmploymentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
