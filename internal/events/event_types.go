package events

import (
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTechnicianAssigned  EventType = "technician_assigned"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Kind domain.PrincipalKind `json:"kind"`
	ID   string               `json:"id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNo     string `json:"ticket_no"`
	BranchID     string `json:"branch_id"`
	CustomerName string `json:"customer_name"`
	ProductName  string `json:"product_name"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Reason    string              `json:"reason,omitempty"`
}

// TechnicianAssignedPayload payload.
type TechnicianAssignedPayload struct {
	TechnicianID string `json:"technician_id"`
	BranchID     string `json:"branch_id"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	TicketNo string `json:"ticket_no"`
}
