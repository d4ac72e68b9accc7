package domain

import "time"

// AdminAccount is an administrative login, seeded or created by an admin.
type AdminAccount struct {
	ID           string
	Username     string
	PasswordHash string
	Role         Role
	CreatedBy    *string
	UpdatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
