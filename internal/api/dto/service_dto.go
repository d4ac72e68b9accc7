package dto

import (
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

// ProductEntry is one device with its reported issue.
type ProductEntry struct {
	ProductName  string `json:"productName"`
	SerialNumber string `json:"serialNumber"`
	Brand        string `json:"brand"`
	Type         string `json:"type"`
	ProductIssue string `json:"productIssue"`
}

// CreateServiceRequest is the intake form. Every product entry becomes its
// own ticket.
type CreateServiceRequest struct {
	CustomerName    string         `json:"customerName"`
	CustomerContact string         `json:"customerContactNumber"`
	Address         string         `json:"address"`
	Location        string         `json:"location"`
	BranchID        string         `json:"branchId"`
	ServiceCost     *float64       `json:"serviceCost"`
	ReceivedDate    *time.Time     `json:"receivedDate"`
	Products        []ProductEntry `json:"productDetails"`
}

// UpdateServiceRequest payload. Status is not accepted here; it only moves
// through the status endpoint.
type UpdateServiceRequest struct {
	CustomerName    *string       `json:"customerName"`
	CustomerContact *string       `json:"customerContactNumber"`
	Address         *string       `json:"address"`
	Location        *string       `json:"location"`
	Cost            *float64      `json:"serviceCost"`
	ReceivedDate    *time.Time    `json:"receivedDate"`
	Product         *ProductEntry `json:"productDetails"`
}

// UpdateStatusRequest payload. Reason is required when status is Cancelled.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason string              `json:"reason"`
}

// BulkStatusRequest applies one transition to many tickets.
type BulkStatusRequest struct {
	TicketIDs []string            `json:"ticketIds"`
	Status    domain.TicketStatus `json:"status"`
	Reason    string              `json:"reason"`
}

// AssignTechnicianRequest payload.
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technicianId"`
}

// UpdateCostRequest payload.
type UpdateCostRequest struct {
	Cost float64 `json:"serviceCost"`
}

// ServiceResponse representation of a ticket.
type ServiceResponse struct {
	ID                 string              `json:"id"`
	TicketNo           string              `json:"ticketNo"`
	CustomerName       string              `json:"customerName"`
	CustomerContact    string              `json:"customerContactNumber"`
	TechnicianID       *string             `json:"technicianId,omitempty"`
	Status             domain.TicketStatus `json:"status"`
	Address            string              `json:"address"`
	Location           string              `json:"location"`
	Cost               float64             `json:"serviceCost"`
	ReceivedDate       time.Time           `json:"receivedDate"`
	DeliveredDate      *time.Time          `json:"deliveredDate,omitempty"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
	Product            ProductEntry        `json:"productDetails"`
	BranchID           string              `json:"branchId"`
	CreatedBy          string              `json:"createdBy"`
	UpdatedBy          *string             `json:"updatedBy,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}
