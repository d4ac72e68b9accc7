package domain

import "time"

// CustomerVisit is the denormalized per-ticket customer snapshot. At most one
// visit record exists per (phone, ticket) pair; retried intakes bump VisitCount
// instead of inserting a duplicate.
type CustomerVisit struct {
	ID            string
	VisitNo       string // human-readable CUST id
	CustomerName  string
	Phone         string
	Location      string
	Address       string
	TicketID      string
	BranchID      string
	ServiceStatus TicketStatus // mirror of the ticket status
	VisitCount    int
	LastVisitAt   time.Time
	CreatedBy     string
	UpdatedBy     *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
