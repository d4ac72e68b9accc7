package domain

import "time"

// Branch is a physical service location owning a staff roster. StaffIDs are
// back-references; deleting a branch does not cascade to staff.
type Branch struct {
	ID          string
	Name        string
	PhoneNumber string
	Location    string
	Address     string
	StaffIDs    []string
	Active      bool
	CreatedBy   string
	UpdatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
