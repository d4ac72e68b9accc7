package dto

import (
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

// LoginRequest payload. Username carries either an admin username or a staff
// contact number.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the resolved identity.
type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	Principal PrincipalResponse `json:"principal"`
}

// PrincipalResponse is the caller identity echoed back on login and /me.
type PrincipalResponse struct {
	ID            string               `json:"id"`
	Kind          domain.PrincipalKind `json:"kind"`
	Role          domain.Role          `json:"role"`
	Username      string               `json:"username,omitempty"`
	StaffName     string               `json:"staffName,omitempty"`
	ContactNumber string               `json:"contactNumber,omitempty"`
	BranchID      string               `json:"branchId,omitempty"`
}

// RegisterAdminRequest payload.
type RegisterAdminRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UpdateAdminRequest payload. Nil fields are left untouched.
type UpdateAdminRequest struct {
	Username *string      `json:"username"`
	Password *string      `json:"password"`
	Role     *domain.Role `json:"role"`
}

// AdminResponse never exposes the password hash.
type AdminResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedBy *string     `json:"createdBy,omitempty"`
	UpdatedBy *string     `json:"updatedBy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
