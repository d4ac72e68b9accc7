package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/events"
	"github.com/fixflow/repair-service/internal/repository"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// TicketService owns the repair workflow: intake fan-out, the status engine,
// technician assignment and the reporting roll-ups.
type TicketService struct {
	tickets    repository.TicketRepository
	visits     repository.VisitRepository
	staff      repository.StaffRepository
	branches   repository.BranchRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

func NewTicketService(
	tickets repository.TicketRepository,
	visits repository.VisitRepository,
	staff repository.StaffRepository,
	branches repository.BranchRepository,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *TicketService {
	return &TicketService{
		tickets:    tickets,
		visits:     visits,
		staff:      staff,
		branches:   branches,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicketInput is one intake form. Each product entry becomes its own
// ticket so that every device moves through the workflow independently.
type CreateTicketInput struct {
	CustomerName    string
	CustomerContact string
	Address         string
	Location        string
	BranchID        string
	ServiceCost     float64
	ReceivedAt      *time.Time
	Products        []domain.ProductIssue
}

// Create fans the intake out into one ticket per product entry and records a
// customer visit for each. A repeated intake for the same phone and ticket
// bumps the visit count instead of duplicating the visit.
func (s *TicketService) Create(ctx context.Context, in CreateTicketInput, actor *domain.Principal) ([]domain.ServiceTicket, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerContact = strings.TrimSpace(in.CustomerContact)
	if in.CustomerName == "" || in.CustomerContact == "" {
		return nil, apperrors.NewValidationError("customer name and contact number are required", nil)
	}
	if in.BranchID == "" {
		return nil, apperrors.NewValidationError("branch is required", nil)
	}
	if len(in.Products) == 0 {
		return nil, apperrors.NewValidationError("at least one product entry is required", nil)
	}
	if in.ServiceCost < 0 {
		return nil, apperrors.NewValidationError("service cost must not be negative", nil)
	}
	for i, p := range in.Products {
		if strings.TrimSpace(p.ProductName) == "" || strings.TrimSpace(p.ProductIssue) == "" {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("product entry %d needs a product name and an issue description", i+1), nil)
		}
	}

	branch, err := s.branches.GetByID(ctx, in.BranchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"branch_id": in.BranchID})
		}
		return nil, apperrors.MapError(err)
	}
	if !branch.Active {
		return nil, apperrors.NewValidationError("branch is not active", map[string]any{"branch_id": branch.ID})
	}

	now := s.now()
	receivedAt := now
	if in.ReceivedAt != nil {
		receivedAt = *in.ReceivedAt
	}

	created := make([]domain.ServiceTicket, 0, len(in.Products))
	for _, product := range in.Products {
		ticket := &domain.ServiceTicket{
			CustomerName:    in.CustomerName,
			CustomerContact: in.CustomerContact,
			Status:          domain.StatusReceived,
			Address:         in.Address,
			Location:        in.Location,
			Cost:            in.ServiceCost,
			ReceivedAt:      receivedAt,
			Product:         product,
			BranchID:        branch.ID,
			CreatedBy:       actor.ID,
		}
		if err := s.tickets.Create(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}

		visit := &domain.CustomerVisit{
			CustomerName:  in.CustomerName,
			Phone:         in.CustomerContact,
			Location:      in.Location,
			Address:       in.Address,
			TicketID:      ticket.ID,
			BranchID:      branch.ID,
			ServiceStatus: domain.StatusReceived,
			VisitCount:    1,
			LastVisitAt:   now,
			CreatedBy:     actor.ID,
		}
		if err := s.visits.Upsert(ctx, visit); err != nil {
			s.logger.Warn("visit record not written for new ticket",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}

		s.publish(ctx, events.EventTicketCreated, ticket.ID, actor, events.TicketCreatedPayload{
			TicketNo:     ticket.TicketNo,
			BranchID:     ticket.BranchID,
			CustomerName: ticket.CustomerName,
			ProductName:  ticket.Product.ProductName,
		})
		created = append(created, *ticket)
	}

	s.logger.Info("tickets created",
		zap.Int("count", len(created)),
		zap.String("branch_id", branch.ID),
		zap.String("created_by", actor.ID))
	return created, nil
}

func (s *TicketService) Get(ctx context.Context, id string) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) GetByTicketNo(ctx context.Context, ticketNo string) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByTicketNo(ctx, ticketNo)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]domain.ServiceTicket, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateTicketInput carries the editable detail fields. Status and
// cancellation are deliberately absent: those only move through UpdateStatus.
type UpdateTicketInput struct {
	CustomerName    *string
	CustomerContact *string
	Address         *string
	Location        *string
	Cost            *float64
	ReceivedAt      *time.Time
	Product         *domain.ProductIssue
}

// Update edits ticket details and refreshes the linked visit snapshot.
func (s *TicketService) Update(ctx context.Context, id string, in UpdateTicketInput, actor *domain.Principal) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if in.CustomerName != nil {
		name := strings.TrimSpace(*in.CustomerName)
		if name == "" {
			return nil, apperrors.NewValidationError("customer name cannot be empty", nil)
		}
		ticket.CustomerName = name
	}
	if in.CustomerContact != nil {
		contact := strings.TrimSpace(*in.CustomerContact)
		if contact == "" {
			return nil, apperrors.NewValidationError("customer contact cannot be empty", nil)
		}
		ticket.CustomerContact = contact
	}
	if in.Address != nil {
		ticket.Address = *in.Address
	}
	if in.Location != nil {
		ticket.Location = *in.Location
	}
	if in.Cost != nil {
		if *in.Cost < 0 {
			return nil, apperrors.NewValidationError("cost cannot be negative", nil)
		}
		ticket.Cost = *in.Cost
	}
	if in.ReceivedAt != nil {
		ticket.ReceivedAt = *in.ReceivedAt
	}
	if in.Product != nil {
		if strings.TrimSpace(in.Product.ProductName) == "" || strings.TrimSpace(in.Product.ProductIssue) == "" {
			return nil, apperrors.NewValidationError("product entry needs a product name and an issue description", nil)
		}
		ticket.Product = *in.Product
	}
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.refreshVisitSnapshot(ctx, ticket, actor.ID)
	return ticket, nil
}

// UpdateCost sets the service cost ahead of completion.
func (s *TicketService) UpdateCost(ctx context.Context, id string, cost float64, actor *domain.Principal) (*domain.ServiceTicket, error) {
	if cost < 0 {
		return nil, apperrors.NewValidationError("cost cannot be negative", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Cost = cost
	ticket.UpdatedBy = &actor.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// UpdateStatus moves a ticket through the workflow and mirrors the new status
// to the linked customer visit.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, next domain.TicketStatus, reason string, actor *domain.Principal) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	prev := ticket.Status
	if err := applyTransition(ticket, next, reason, s.now()); err != nil {
		return nil, err
	}
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.mirrorVisitStatus(ctx, ticket, actor.ID)

	s.publish(ctx, events.EventTicketStatusChanged, ticket.ID, actor, events.TicketStatusChangedPayload{
		OldStatus: prev,
		NewStatus: ticket.Status,
		Reason:    strings.TrimSpace(reason),
	})
	s.logger.Info("ticket status changed",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(prev)),
		zap.String("to", string(ticket.Status)))
	return ticket, nil
}

// BulkStatusResult reports the outcome of one id in a bulk status change.
type BulkStatusResult struct {
	TicketID string `json:"ticketId"`
	Error    string `json:"error,omitempty"`
}

// BulkUpdateStatus applies the same transition to many tickets. Tickets are
// processed independently; one rejected transition does not stop the rest.
func (s *TicketService) BulkUpdateStatus(ctx context.Context, ids []string, next domain.TicketStatus, reason string, actor *domain.Principal) ([]BulkStatusResult, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("no ticket ids given", nil)
	}
	results := make([]BulkStatusResult, 0, len(ids))
	for _, id := range ids {
		res := BulkStatusResult{TicketID: id}
		if _, err := s.UpdateStatus(ctx, id, next, reason, actor); err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// AssignTechnician puts the ticket in the named technician's hands. The status
// is forced to Assigned to Technician regardless of where the ticket was,
// which is also how a completed ticket gets reopened.
func (s *TicketService) AssignTechnician(ctx context.Context, ticketID, technicianID string, actor *domain.Principal) (*domain.ServiceTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	tech, err := s.staff.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"staff_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if !tech.Active {
		return nil, apperrors.NewValidationError("technician is not active", map[string]any{"staff_id": tech.ID})
	}
	if tech.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("staff member is not a technician", map[string]any{"staff_id": tech.ID, "role": tech.Role})
	}

	prev := ticket.Status
	ticket.TechnicianID = &tech.ID
	ticket.Status = domain.StatusAssigned
	maybeResetCost(ticket, prev, domain.StatusAssigned)
	ticket.UpdatedBy = &actor.ID

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.mirrorVisitStatus(ctx, ticket, actor.ID)

	s.publish(ctx, events.EventTechnicianAssigned, ticket.ID, actor, events.TechnicianAssignedPayload{
		TechnicianID: tech.ID,
		BranchID:     ticket.BranchID,
	})
	s.logger.Info("technician assigned",
		zap.String("ticket_id", ticket.ID),
		zap.String("technician_id", tech.ID),
		zap.String("previous_status", string(prev)))
	return ticket, nil
}

// Delete removes a ticket and its visit record. The visit row goes
// first so the ticket delete is not blocked by the ledger reference.
func (s *TicketService) Delete(ctx context.Context, id string, actor *domain.Principal) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.visits.DeleteByTicket(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.tickets.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventTicketDeleted, id, actor, events.TicketDeletedPayload{
		TicketNo: ticket.TicketNo,
	})
	s.logger.Info("ticket deleted",
		zap.String("ticket_id", id), zap.String("ticket_no", ticket.TicketNo))
	return nil
}

// ListOverdue returns open tickets received more than the given number of
// days ago. Completed, delivered and cancelled tickets are excluded.
func (s *TicketService) ListOverdue(ctx context.Context, days int) ([]domain.ServiceTicket, error) {
	if days <= 0 {
		days = 7
	}
	cutoff := s.now().AddDate(0, 0, -days)
	tickets, err := s.tickets.ListOverdue(ctx, cutoff)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// TicketStats is the dashboard roll-up.
type TicketStats struct {
	Total    int64                    `json:"total"`
	ByStatus []repository.StatusCount `json:"byStatus"`
	ByBranch []repository.BranchCount `json:"byBranch"`
}

func (s *TicketService) Stats(ctx context.Context) (*TicketStats, error) {
	total, err := s.tickets.CountTotal(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byStatus, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byBranch, err := s.tickets.CountByBranch(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &TicketStats{Total: total, ByStatus: byStatus, ByBranch: byBranch}, nil
}

// Report returns month-by-month ticket counts and cost totals.
func (s *TicketService) Report(ctx context.Context, filter repository.ReportFilter) ([]repository.ReportRow, error) {
	if filter.Status != nil && !domain.KnownStatus(*filter.Status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", *filter.Status), nil)
	}
	rows, err := s.tickets.Report(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rows, nil
}

// mirrorVisitStatus copies the ticket status onto the linked visit. The mirror
// is best effort: a ticket without a visit record is fine, and a write failure
// must not fail the transition that already committed.
func (s *TicketService) mirrorVisitStatus(ctx context.Context, ticket *domain.ServiceTicket, actorID string) {
	if _, err := s.visits.SetStatusByTicket(ctx, ticket.ID, ticket.Status, actorID); err != nil {
		s.logger.Warn("visit status mirror failed",
			zap.String("ticket_id", ticket.ID),
			zap.String("status", string(ticket.Status)),
			zap.Error(err))
	}
}

// refreshVisitSnapshot pushes edited customer details onto the linked visit.
func (s *TicketService) refreshVisitSnapshot(ctx context.Context, ticket *domain.ServiceTicket, actorID string) {
	visit, err := s.visits.GetByTicket(ctx, ticket.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("visit snapshot lookup failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		}
		return
	}
	visit.CustomerName = ticket.CustomerName
	visit.Phone = ticket.CustomerContact
	visit.Address = ticket.Address
	visit.Location = ticket.Location
	visit.UpdatedBy = &actorID
	if err := s.visits.Update(ctx, visit); err != nil {
		s.logger.Warn("visit snapshot refresh failed",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, typ events.EventType, ticketID string, actor *domain.Principal, payload any) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		TicketID:  ticketID,
		Actor:     events.Actor{Kind: actor.Kind, ID: actor.ID},
		Timestamp: s.now(),
		Payload:   payload,
	})
}
