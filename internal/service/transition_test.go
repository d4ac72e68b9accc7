package service

import (
	"testing"
	"time"

	"github.com/fixflow/repair-service/internal/domain"
)

func ticketAt(status domain.TicketStatus, cost float64) *domain.ServiceTicket {
	return &domain.ServiceTicket{
		ID:     "t1",
		Status: status,
		Cost:   cost,
	}
}

func TestApplyTransitionForwardOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		from   domain.TicketStatus
		to     domain.TicketStatus
		cost   float64
		reason string
		ok     bool
	}{
		{"received to assigned", domain.StatusReceived, domain.StatusAssigned, 0, "", true},
		{"skip ahead to in service", domain.StatusReceived, domain.StatusInService, 0, "", true},
		{"skip ahead to delivered", domain.StatusUnderInspection, domain.StatusDelivered, 0, "", true},
		{"same state rejected", domain.StatusApproved, domain.StatusApproved, 0, "", false},
		{"backward rejected", domain.StatusInService, domain.StatusReceived, 0, "", false},
		{"backward one step rejected", domain.StatusFinished, domain.StatusInService, 0, "", false},
		{"completed without cost rejected", domain.StatusDelivered, domain.StatusCompleted, 0, "", false},
		{"completed with cost", domain.StatusDelivered, domain.StatusCompleted, 150, "", true},
		{"completed backward rejected even with cost", domain.StatusCompleted, domain.StatusDelivered, 150, "", false},
		{"cancel with reason", domain.StatusInService, domain.StatusCancelled, 0, "customer declined", true},
		{"cancel without reason rejected", domain.StatusInService, domain.StatusCancelled, 0, "  ", false},
		{"cancel from received", domain.StatusReceived, domain.StatusCancelled, 0, "duplicate intake", true},
		{"cancel from completed", domain.StatusCompleted, domain.StatusCancelled, 200, "refund issued", true},
		{"unknown status rejected", domain.StatusReceived, domain.TicketStatus("Lost"), 0, "", false},
		{"leaving cancelled rejected", domain.StatusCancelled, domain.StatusInService, 0, "", false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ticket := ticketAt(tt.from, tt.cost)
			err := applyTransition(ticket, tt.to, tt.reason, now)
			if tt.ok && err != nil {
				t.Fatalf("applyTransition(%s -> %s) = %v, want success", tt.from, tt.to, err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatalf("applyTransition(%s -> %s) succeeded, want error", tt.from, tt.to)
				}
				if ticket.Status != tt.from {
					t.Fatalf("failed transition mutated status to %s", ticket.Status)
				}
				return
			}
			if ticket.Status != tt.to {
				t.Fatalf("status = %s, want %s", ticket.Status, tt.to)
			}
		})
	}
}

func TestApplyTransitionCancelPersistsReason(t *testing.T) {
	ticket := ticketAt(domain.StatusApproved, 0)
	if err := applyTransition(ticket, domain.StatusCancelled, "  parts unavailable  ", time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ticket.CancellationReason == nil || *ticket.CancellationReason != "parts unavailable" {
		t.Fatalf("cancellation reason = %v, want trimmed reason", ticket.CancellationReason)
	}
}

func TestApplyTransitionCancelFromCompletedKeepsCost(t *testing.T) {
	ticket := ticketAt(domain.StatusCompleted, 300)
	if err := applyTransition(ticket, domain.StatusCancelled, "refund issued", time.Now()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if ticket.Cost != 300 {
		t.Fatalf("cost = %v, want 300 preserved on cancellation", ticket.Cost)
	}
}

func TestApplyTransitionDeliveredStampIdempotent(t *testing.T) {
	first := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	ticket := ticketAt(domain.StatusFinished, 0)
	if err := applyTransition(ticket, domain.StatusDelivered, "", first); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if ticket.DeliveredAt == nil || !ticket.DeliveredAt.Equal(first) {
		t.Fatalf("delivered date = %v, want %v", ticket.DeliveredAt, first)
	}

	// reopen via assignment, then deliver again later
	prev := ticket.Status
	ticket.Status = domain.StatusAssigned
	maybeResetCost(ticket, prev, domain.StatusAssigned)

	second := first.Add(48 * time.Hour)
	if err := applyTransition(ticket, domain.StatusDelivered, "", second); err != nil {
		t.Fatalf("redeliver: %v", err)
	}
	if !ticket.DeliveredAt.Equal(first) {
		t.Fatalf("delivered date overwritten to %v, want original %v", ticket.DeliveredAt, first)
	}
}

func TestMaybeResetCost(t *testing.T) {
	cases := []struct {
		name string
		prev domain.TicketStatus
		next domain.TicketStatus
		want float64
	}{
		{"leaving completed resets", domain.StatusCompleted, domain.StatusAssigned, 0},
		{"completed to cancelled keeps", domain.StatusCompleted, domain.StatusCancelled, 250},
		{"completed to completed keeps", domain.StatusCompleted, domain.StatusCompleted, 250},
		{"non-completed origin keeps", domain.StatusInService, domain.StatusAssigned, 250},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			ticket := ticketAt(tt.next, 250)
			maybeResetCost(ticket, tt.prev, tt.next)
			if ticket.Cost != tt.want {
				t.Fatalf("cost = %v, want %v", ticket.Cost, tt.want)
			}
		})
	}
}
