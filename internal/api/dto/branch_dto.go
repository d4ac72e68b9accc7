package dto

import "time"

// CreateBranchRequest payload.
type CreateBranchRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Location    string `json:"location"`
	Address     string `json:"address"`
}

// UpdateBranchRequest payload. Nil fields are left untouched.
type UpdateBranchRequest struct {
	Name        *string `json:"name"`
	PhoneNumber *string `json:"phoneNumber"`
	Location    *string `json:"location"`
	Address     *string `json:"address"`
	Active      *bool   `json:"active"`
}

// BranchStatusRequest toggles whether a branch accepts new work.
type BranchStatusRequest struct {
	Active bool `json:"active"`
}

// BranchResponse representation.
type BranchResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phoneNumber"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	StaffIDs    []string  `json:"staffIds"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"createdBy"`
	UpdatedBy   *string   `json:"updatedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
