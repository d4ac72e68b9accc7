package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixflow/repair-service/internal/domain"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// ordinal places every status on a single scale for the forward-only check.
// Cancelled sits past Completed: once cancelled, only re-cancelling is allowed.
func ordinal(status domain.TicketStatus) int {
	if status == domain.StatusCancelled {
		return len(domain.Statuses())
	}
	return domain.StatusIndex(status)
}

// applyTransition mutates the ticket according to the workflow rules and
// returns a validation error naming the unmet precondition otherwise.
//
// Rules:
//   - Cancelled is reachable from anywhere but requires a non-empty reason.
//   - Completed additionally requires a positive service cost.
//   - Everything else must move strictly forward in the status order; skipping
//     intermediate states is fine, same-state and backward moves are not.
//   - The first entry into Delivered stamps the delivered date; re-entry after
//     a reopen does not overwrite it.
func applyTransition(ticket *domain.ServiceTicket, next domain.TicketStatus, reason string, now time.Time) error {
	if !domain.KnownStatus(next) {
		return apperrors.NewValidationError(fmt.Sprintf("unknown status %q", next), nil)
	}

	prev := ticket.Status

	if next == domain.StatusCancelled {
		trimmed := strings.TrimSpace(reason)
		if trimmed == "" {
			return apperrors.NewValidationError("cancellation reason is required when cancelling", nil)
		}
		ticket.Status = domain.StatusCancelled
		ticket.CancellationReason = &trimmed
		maybeResetCost(ticket, prev, next)
		return nil
	}

	if ordinal(next) <= ordinal(prev) {
		return apperrors.NewValidationError(
			fmt.Sprintf("cannot move from %s to %s: status can only move forward", prev, next), nil)
	}
	if next == domain.StatusCompleted && ticket.Cost <= 0 {
		return apperrors.NewValidationError("service cost must be set and positive before completion", nil)
	}

	ticket.Status = next
	if next == domain.StatusDelivered && ticket.DeliveredAt == nil {
		stamped := now
		ticket.DeliveredAt = &stamped
	}
	maybeResetCost(ticket, prev, next)
	return nil
}

// maybeResetCost clears a stale completed-cost when a ticket leaves Completed
// for anything but Cancelled. Reopening happens through technician
// re-assignment, which bypasses the forward-only rule.
func maybeResetCost(ticket *domain.ServiceTicket, prev, next domain.TicketStatus) {
	if prev == domain.StatusCompleted && next != domain.StatusCompleted && next != domain.StatusCancelled {
		ticket.Cost = 0
	}
}
