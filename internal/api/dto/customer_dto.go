package dto

import (
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

// CreateVisitRequest records a visit directly, outside ticket intake.
type CreateVisitRequest struct {
	CustomerName string `json:"customerName"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	Address      string `json:"address"`
	TicketID     string `json:"ticketId"`
	BranchID     string `json:"branchId"`
}

// UpdateVisitRequest edits the customer snapshot on a visit. The mirrored
// service status is owned by the ticket workflow.
type UpdateVisitRequest struct {
	CustomerName *string `json:"customerName"`
	Phone        *string `json:"phone"`
	Location     *string `json:"location"`
	Address      *string `json:"address"`
}

// VisitResponse representation.
type VisitResponse struct {
	ID            string              `json:"id"`
	VisitNo       string              `json:"visitNo"`
	CustomerName  string              `json:"customerName"`
	Phone         string              `json:"phone"`
	Location      string              `json:"location"`
	Address       string              `json:"address"`
	TicketID      string              `json:"ticketId"`
	BranchID      string              `json:"branchId"`
	ServiceStatus domain.TicketStatus `json:"serviceStatus"`
	VisitCount    int                 `json:"visitCount"`
	LastVisitAt   time.Time           `json:"lastVisitAt"`
	CreatedBy     string              `json:"createdBy"`
	UpdatedBy     *string             `json:"updatedBy,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}
