package domain

// PrincipalKind discriminates the two account collections sharing one token space.
type PrincipalKind string

const (
	KindAdmin PrincipalKind = "admin"
	KindStaff PrincipalKind = "staff"
)

// Role is a flat role label. Admin accounts and staff accounts draw from
// disjoint sets; route allow-lists name the exact values they accept.
type Role string

const (
	// admin account roles
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"

	// staff account roles
	RoleTechnician    Role = "Technician"
	RoleBranchStaff   Role = "Staff"
	RoleBranchManager Role = "Manager"
)

// Principal is the normalized view of an authenticated caller, regardless of
// which collection it was resolved from.
type Principal struct {
	ID   string
	Kind PrincipalKind
	Role Role

	// admin fields
	Username string

	// staff fields
	ContactNumber string
	StaffName     string
	BranchID      string
}
