package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// CustomerService exposes the customer visit ledger built up by ticket intake.
// Visits are created by TicketService; this service reads and maintains them.
type CustomerService struct {
	visits repository.VisitRepository
	logger *zap.Logger
}

func NewCustomerService(visits repository.VisitRepository, logger *zap.Logger) *CustomerService {
	return &CustomerService{visits: visits, logger: logger}
}

func (s *CustomerService) Get(ctx context.Context, id string) (*domain.CustomerVisit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visit, nil
}

func (s *CustomerService) GetByTicket(ctx context.Context, ticketID string) (*domain.CustomerVisit, error) {
	visit, err := s.visits.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visit, nil
}

func (s *CustomerService) List(ctx context.Context, filter repository.VisitFilter) ([]domain.CustomerVisit, error) {
	visits, err := s.visits.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visits, nil
}

// Search matches customer name, phone or visit number.
func (s *CustomerService) Search(ctx context.Context, term string, limit int) ([]domain.CustomerVisit, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.NewValidationError("search term is required", nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	visits, err := s.visits.Search(ctx, term, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visits, nil
}

// CreateVisitInput holds the fields for a manually recorded visit. Intake
// creates visits automatically; this covers walk-ins recorded after the fact.
type CreateVisitInput struct {
	CustomerName string
	Phone        string
	Location     string
	Address      string
	TicketID     string
	BranchID     string
}

// Create records a visit directly. A visit for the same phone and ticket
// already on file gets its count bumped instead.
func (s *CustomerService) Create(ctx context.Context, in CreateVisitInput, actor *domain.Principal) (*domain.CustomerVisit, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.CustomerName == "" || in.Phone == "" {
		return nil, apperrors.NewValidationError("customer name and phone are required", nil)
	}
	if in.TicketID == "" || in.BranchID == "" {
		return nil, apperrors.NewValidationError("ticket and branch are required", nil)
	}

	visit := &domain.CustomerVisit{
		CustomerName:  in.CustomerName,
		Phone:         in.Phone,
		Location:      in.Location,
		Address:       in.Address,
		TicketID:      in.TicketID,
		BranchID:      in.BranchID,
		ServiceStatus: domain.StatusReceived,
		VisitCount:    1,
		LastVisitAt:   time.Now(),
		CreatedBy:     actor.ID,
	}
	if err := s.visits.Upsert(ctx, visit); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("customer visit recorded",
		zap.String("visit_id", visit.ID), zap.String("ticket_id", visit.TicketID))
	return visit, nil
}

// History lists every visit recorded for a phone number, newest first.
func (s *CustomerService) History(ctx context.Context, phone string) ([]domain.CustomerVisit, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, apperrors.NewValidationError("phone number is required", nil)
	}
	visits, err := s.visits.ListByPhone(ctx, phone)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visits, nil
}

// HistoryByVisit resolves a visit to its phone number and returns every visit
// sharing that phone, newest first.
func (s *CustomerService) HistoryByVisit(ctx context.Context, id string) ([]domain.CustomerVisit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.History(ctx, visit.Phone)
}

// UpdateVisitInput carries the editable snapshot fields of a visit. The
// mirrored service status is owned by the ticket workflow and not editable.
type UpdateVisitInput struct {
	CustomerName *string
	Phone        *string
	Location     *string
	Address      *string
}

func (s *CustomerService) Update(ctx context.Context, id string, in UpdateVisitInput, actor *domain.Principal) (*domain.CustomerVisit, error) {
	visit, err := s.visits.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if in.CustomerName != nil {
		name := strings.TrimSpace(*in.CustomerName)
		if name == "" {
			return nil, apperrors.NewValidationError("customer name cannot be empty", nil)
		}
		visit.CustomerName = name
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		if phone == "" {
			return nil, apperrors.NewValidationError("phone number cannot be empty", nil)
		}
		visit.Phone = phone
	}
	if in.Location != nil {
		visit.Location = *in.Location
	}
	if in.Address != nil {
		visit.Address = *in.Address
	}
	visit.UpdatedBy = &actor.ID

	if err := s.visits.Update(ctx, visit); err != nil {
		return nil, apperrors.MapError(err)
	}
	return visit, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := s.visits.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("customer visit deleted", zap.String("visit_id", id))
	return nil
}

// RepeatCustomers lists visits belonging to phone numbers seen more than once.
func (s *CustomerService) RepeatCustomers(ctx context.Context) ([]domain.CustomerVisit, error) {
	visits, err := s.visits.ListRepeatCustomers(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return visits, nil
}

// VisitStats is the visit ledger roll-up for the dashboard.
type VisitStats struct {
	Total    int64                        `json:"total"`
	ByStatus []repository.StatusCount     `json:"byStatus"`
	ByBranch []repository.BranchCount     `json:"byBranch"`
	ByMonth  []repository.VisitMonthCount `json:"byMonth"`
}

func (s *CustomerService) Stats(ctx context.Context) (*VisitStats, error) {
	total, err := s.visits.CountTotal(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byStatus, err := s.visits.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byBranch, err := s.visits.CountByBranch(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byMonth, err := s.visits.CountByMonth(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &VisitStats{Total: total, ByStatus: byStatus, ByBranch: byBranch, ByMonth: byMonth}, nil
}
