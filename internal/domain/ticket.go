package domain

import "time"

// TicketStatus enumerates the repair workflow states.
type TicketStatus string

const (
	StatusReceived        TicketStatus = "Received"
	StatusAssigned        TicketStatus = "Assigned to Technician"
	StatusUnderInspection TicketStatus = "Under Inspection"
	StatusWaitingApproval TicketStatus = "Waiting for Customer Approval"
	StatusApproved        TicketStatus = "Approved"
	StatusInService       TicketStatus = "In Service"
	StatusFinished        TicketStatus = "Finished"
	StatusDelivered       TicketStatus = "Delivered"
	StatusCompleted       TicketStatus = "Completed"
	StatusCancelled       TicketStatus = "Cancelled"
)

// statusOrder defines strict forward progression. Cancelled sits outside the
// order and is reachable from any state.
var statusOrder = []TicketStatus{
	StatusReceived,
	StatusAssigned,
	StatusUnderInspection,
	StatusWaitingApproval,
	StatusApproved,
	StatusInService,
	StatusFinished,
	StatusDelivered,
	StatusCompleted,
}

// StatusIndex returns the position of a status in the forward progression,
// or -1 for Cancelled and unknown values.
func StatusIndex(status TicketStatus) int {
	for i, s := range statusOrder {
		if s == status {
			return i
		}
	}
	return -1
}

// KnownStatus reports whether the value is a workflow state, Cancelled included.
func KnownStatus(status TicketStatus) bool {
	return status == StatusCancelled || StatusIndex(status) >= 0
}

// Statuses returns the forward progression in order.
func Statuses() []TicketStatus {
	out := make([]TicketStatus, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// ProductIssue is the embedded product record on a ticket.
type ProductIssue struct {
	ProductName  string `json:"productName"`
	SerialNumber string `json:"serialNumber"`
	Brand        string `json:"brand"`
	Type         string `json:"type"`
	ProductIssue string `json:"productIssue"`
}

// ServiceTicket is the aggregate for a single repair job.
type ServiceTicket struct {
	ID                 string
	TicketNo           string // human-readable SRV id
	CustomerName       string
	CustomerContact    string
	TechnicianID       *string
	Status             TicketStatus
	Address            string
	Location           string
	Cost               float64
	ReceivedAt         time.Time
	DeliveredAt        *time.Time
	CancellationReason *string
	Product            ProductIssue
	BranchID           string
	CreatedBy          string
	UpdatedBy          *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
