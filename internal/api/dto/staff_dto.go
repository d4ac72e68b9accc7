package dto

import (
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

// CreateStaffRequest payload.
type CreateStaffRequest struct {
	StaffName     string      `json:"staffName"`
	ContactNumber string      `json:"contactNumber"`
	Password      string      `json:"password"`
	Role          domain.Role `json:"role"`
	BranchID      string      `json:"branchId"`
	Address       string      `json:"address"`
}

// UpdateStaffRequest payload. Nil fields are left untouched.
type UpdateStaffRequest struct {
	StaffName     *string      `json:"staffName"`
	ContactNumber *string      `json:"contactNumber"`
	Password      *string      `json:"password"`
	Role          *domain.Role `json:"role"`
	BranchID      *string      `json:"branchId"`
	Address       *string      `json:"address"`
	Active        *bool        `json:"active"`
}

// StaffResponse never exposes the password hash.
type StaffResponse struct {
	ID            string      `json:"id"`
	StaffName     string      `json:"staffName"`
	ContactNumber string      `json:"contactNumber"`
	Role          domain.Role `json:"role"`
	BranchID      string      `json:"branchId"`
	Address       string      `json:"address"`
	Active        bool        `json:"active"`
	CreatedBy     string      `json:"createdBy"`
	UpdatedBy     *string     `json:"updatedBy,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}
