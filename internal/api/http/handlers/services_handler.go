package handlers

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/dto"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	"github.com/fixflow/repair-service/internal/service"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// ServicesHandler serves repair ticket endpoints.
type ServicesHandler struct {
	service *service.TicketService
}

// NewServicesHandler constructs handler.
func NewServicesHandler(ticketService *service.TicketService) *ServicesHandler {
	return &ServicesHandler{service: ticketService}
}

// Create POST /services.
func (h *ServicesHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	products := make([]domain.ProductIssue, 0, len(req.Products))
	for _, p := range req.Products {
		products = append(products, productIssue(p))
	}
	input := service.CreateTicketInput{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Address:         req.Address,
		Location:        req.Location,
		BranchID:        req.BranchID,
		ReceivedAt:      req.ReceivedDate,
		Products:        products,
	}
	if req.ServiceCost != nil {
		input.ServiceCost = *req.ServiceCost
	}
	tickets, err := h.service.Create(c.UserContext(), input, principal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": serviceResponses(tickets)})
}

// List GET /services.
func (h *ServicesHandler) List(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(tickets)})
}

// ListByStatus GET /services/status/:status.
func (h *ServicesHandler) ListByStatus(c *fiber.Ctx) error {
	status, err := statusParam(c)
	if err != nil {
		return err
	}
	filter := parseTicketQuery(c)
	filter.Status = &status
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(tickets)})
}

// ListByTechnician GET /services/technician/:technicianId.
func (h *ServicesHandler) ListByTechnician(c *fiber.Ctx) error {
	technicianID := c.Params("technicianId")
	filter := parseTicketQuery(c)
	filter.TechnicianID = &technicianID
	tickets, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(tickets)})
}

// ListOverdue GET /services/overdue.
func (h *ServicesHandler) ListOverdue(c *fiber.Ctx) error {
	tickets, err := h.service.ListOverdue(c.UserContext(), parseInt(c.Query("days"), 7))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponses(tickets)})
}

// Stats GET /services/stats.
func (h *ServicesHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Report GET /services/report.
func (h *ServicesHandler) Report(c *fiber.Ctx) error {
	filter := repository.ReportFilter{}
	if status := c.Query("status"); status != "" {
		val := domain.TicketStatus(status)
		filter.Status = &val
	}
	if from := parseTime(c.Query("startDate")); from != nil {
		filter.StartDate = from
	}
	if to := parseTime(c.Query("endDate")); to != nil {
		filter.EndDate = to
	}
	if branchID := c.Query("branchId"); branchID != "" {
		filter.BranchID = &branchID
	}
	rows, err := h.service.Report(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": rows})
}

// BulkUpdate PATCH /services/bulk-update.
func (h *ServicesHandler) BulkUpdate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	results, err := h.service.BulkUpdateStatus(c.UserContext(), req.TicketIDs, req.Status, req.Reason, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": results})
}

// Get GET /services/:id.
func (h *ServicesHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	var (
		ticket *domain.ServiceTicket
		err    error
	)
	// Human-facing ticket numbers are accepted in place of record ids.
	if strings.HasPrefix(id, "SRV") {
		ticket, err = h.service.GetByTicketNo(c.UserContext(), id)
	} else {
		ticket, err = h.service.Get(c.UserContext(), id)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(ticket)})
}

// Update PATCH /services/:id.
func (h *ServicesHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	input := service.UpdateTicketInput{
		CustomerName:    req.CustomerName,
		CustomerContact: req.CustomerContact,
		Address:         req.Address,
		Location:        req.Location,
		Cost:            req.Cost,
		ReceivedAt:      req.ReceivedDate,
	}
	if req.Product != nil {
		p := productIssue(*req.Product)
		input.Product = &p
	}
	ticket, err := h.service.Update(c.UserContext(), c.Params("id"), input, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(ticket)})
}

// UpdateAction PATCH /services/:id/action.
func (h *ServicesHandler) UpdateAction(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, req.Reason, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(ticket)})
}

// AssignTechnician PATCH /services/:id/assign-technician.
func (h *ServicesHandler) AssignTechnician(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignTechnicianRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technicianId is required", nil)
	}
	ticket, err := h.service.AssignTechnician(c.UserContext(), c.Params("id"), req.TechnicianID, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(ticket)})
}

// UpdateCost PATCH /services/:id/cost.
func (h *ServicesHandler) UpdateCost(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCostRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateCost(c.UserContext(), c.Params("id"), req.Cost, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": serviceResponse(ticket)})
}

// Delete DELETE /services/:id.
func (h *ServicesHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), principal); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// statusParam decodes the :status path segment, which carries spaces
// URL-encoded.
func statusParam(c *fiber.Ctx) (domain.TicketStatus, error) {
	raw, err := url.PathUnescape(c.Params("status"))
	if err != nil {
		return "", apperrors.NewValidationError("invalid status parameter", nil)
	}
	status := domain.TicketStatus(raw)
	if !domain.KnownStatus(status) {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown status %q", raw), nil)
	}
	return status, nil
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if term := c.Query("search"); term != "" {
		filter.SearchTerm = &term
	}
	if status := c.Query("status"); status != "" {
		val := domain.TicketStatus(status)
		filter.Status = &val
	}
	if branchID := c.Query("branchId"); branchID != "" {
		filter.BranchID = &branchID
	}
	if technicianID := c.Query("technicianId"); technicianID != "" {
		filter.TechnicianID = &technicianID
	}
	if from := parseTime(c.Query("receivedFrom")); from != nil {
		filter.ReceivedFrom = from
	}
	if to := parseTime(c.Query("receivedTo")); to != nil {
		filter.ReceivedTo = to
	}
	if sort := c.Query("sort"); sort != "" {
		filter.Sort = sort
	}
	limit := parseInt(c.Query("limit"), 20)
	page := parseInt(c.Query("page"), 1)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter
}

func productIssue(p dto.ProductEntry) domain.ProductIssue {
	return domain.ProductIssue{
		ProductName:  p.ProductName,
		SerialNumber: p.SerialNumber,
		Brand:        p.Brand,
		Type:         p.Type,
		ProductIssue: p.ProductIssue,
	}
}

func productEntry(p domain.ProductIssue) dto.ProductEntry {
	return dto.ProductEntry{
		ProductName:  p.ProductName,
		SerialNumber: p.SerialNumber,
		Brand:        p.Brand,
		Type:         p.Type,
		ProductIssue: p.ProductIssue,
	}
}

func serviceResponse(t *domain.ServiceTicket) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:                 t.ID,
		TicketNo:           t.TicketNo,
		CustomerName:       t.CustomerName,
		CustomerContact:    t.CustomerContact,
		TechnicianID:       t.TechnicianID,
		Status:             t.Status,
		Address:            t.Address,
		Location:           t.Location,
		Cost:               t.Cost,
		ReceivedDate:       t.ReceivedAt,
		DeliveredDate:      t.DeliveredAt,
		CancellationReason: t.CancellationReason,
		Product:            productEntry(t.Product),
		BranchID:           t.BranchID,
		CreatedBy:          t.CreatedBy,
		UpdatedBy:          t.UpdatedBy,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

func serviceResponses(tickets []domain.ServiceTicket) []dto.ServiceResponse {
	items := make([]dto.ServiceResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, serviceResponse(&tickets[i]))
	}
	return items
}
