package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/dto"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	"github.com/fixflow/repair-service/internal/service"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// CustomersHandler serves the customer visit ledger endpoints.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	visit, err := h.service.Create(c.UserContext(), service.CreateVisitInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Location:     req.Location,
		Address:      req.Address,
		TicketID:     req.TicketID,
		BranchID:     req.BranchID,
	}, principal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": visitResponse(visit)})
}

// List GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	filter := repository.VisitFilter{}
	if status := c.Query("status"); status != "" {
		val := domain.TicketStatus(status)
		filter.Status = &val
	}
	if branchID := c.Query("branchId"); branchID != "" {
		filter.BranchID = &branchID
	}
	if phone := c.Query("phone"); phone != "" {
		filter.Phone = &phone
	}
	limit := parseInt(c.Query("limit"), 20)
	page := parseInt(c.Query("page"), 1)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	visits, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponses(visits)})
}

// Search GET /customers/search.
func (h *CustomersHandler) Search(c *fiber.Ctx) error {
	visits, err := h.service.Search(c.UserContext(), c.Query("q"), parseInt(c.Query("limit"), 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponses(visits)})
}

// Stats GET /customers/stats.
func (h *CustomersHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// RepeatCustomers GET /customers/repeat.
func (h *CustomersHandler) RepeatCustomers(c *fiber.Ctx) error {
	visits, err := h.service.RepeatCustomers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponses(visits)})
}

// ListByBranch GET /customers/branch/:branchId.
func (h *CustomersHandler) ListByBranch(c *fiber.Ctx) error {
	branchID := c.Params("branchId")
	visits, err := h.service.List(c.UserContext(), repository.VisitFilter{BranchID: &branchID})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponses(visits)})
}

// GetByService GET /customers/service/:serviceId.
func (h *CustomersHandler) GetByService(c *fiber.Ctx) error {
	visit, err := h.service.GetByTicket(c.UserContext(), c.Params("serviceId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponse(visit)})
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	visit, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponse(visit)})
}

// History GET /customers/:id/history.
func (h *CustomersHandler) History(c *fiber.Ctx) error {
	visits, err := h.service.HistoryByVisit(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponses(visits)})
}

// Update PATCH /customers/:id.
func (h *CustomersHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	visit, err := h.service.Update(c.UserContext(), c.Params("id"), service.UpdateVisitInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Location:     req.Location,
		Address:      req.Address,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": visitResponse(visit)})
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func visitResponse(v *domain.CustomerVisit) dto.VisitResponse {
	return dto.VisitResponse{
		ID:            v.ID,
		VisitNo:       v.VisitNo,
		CustomerName:  v.CustomerName,
		Phone:         v.Phone,
		Location:      v.Location,
		Address:       v.Address,
		TicketID:      v.TicketID,
		BranchID:      v.BranchID,
		ServiceStatus: v.ServiceStatus,
		VisitCount:    v.VisitCount,
		LastVisitAt:   v.LastVisitAt,
		CreatedBy:     v.CreatedBy,
		UpdatedBy:     v.UpdatedBy,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func visitResponses(visits []domain.CustomerVisit) []dto.VisitResponse {
	items := make([]dto.VisitResponse, 0, len(visits))
	for i := range visits {
		items = append(items, visitResponse(&visits[i]))
	}
	return items
}
