package domain

import "time"

// Staff models a branch employee. The contact number doubles as the login
// identifier for the unified authenticator.
type Staff struct {
	ID            string
	StaffName     string
	ContactNumber string
	PasswordHash  string
	Role          Role
	BranchID      string
	Address       string
	Active        bool
	CreatedBy     string
	UpdatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
