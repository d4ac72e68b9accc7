package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/dto"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	"github.com/fixflow/repair-service/internal/service"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// StaffHandler serves the staff directory endpoints.
type StaffHandler struct {
	service *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{service: staffService}
}

// Create POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.service.Create(c.UserContext(), service.CreateStaffInput{
		StaffName:     req.StaffName,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
		Role:          req.Role,
		BranchID:      req.BranchID,
		Address:       req.Address,
	}, principal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": staffResponse(member)})
}

// List GET /staff.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	filter := repository.StaffFilter{}
	if role := c.Query("role"); role != "" {
		val := domain.Role(role)
		filter.Role = &val
	}
	if branchID := c.Query("branchId"); branchID != "" {
		filter.BranchID = &branchID
	}
	if active := c.Query("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}
	limit := parseInt(c.Query("limit"), 50)
	page := parseInt(c.Query("page"), 1)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	members, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponses(members)})
}

// ListTechnicians GET /staff/technicians.
func (h *StaffHandler) ListTechnicians(c *fiber.Ctx) error {
	members, err := h.service.ListTechnicians(c.UserContext(), c.Query("branchId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponses(members)})
}

// ListByBranch GET /staff/branch/:branchId.
func (h *StaffHandler) ListByBranch(c *fiber.Ctx) error {
	branchID := c.Params("branchId")
	filter := repository.StaffFilter{BranchID: &branchID}
	members, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponses(members)})
}

// Get GET /staff/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	member, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// Update PATCH /staff/:id.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.service.Update(c.UserContext(), c.Params("id"), service.UpdateStaffInput{
		StaffName:     req.StaffName,
		ContactNumber: req.ContactNumber,
		Password:      req.Password,
		Role:          req.Role,
		BranchID:      req.BranchID,
		Address:       req.Address,
		Active:        req.Active,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": staffResponse(member)})
}

// Delete DELETE /staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), principal); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func staffResponse(m *domain.Staff) dto.StaffResponse {
	return dto.StaffResponse{
		ID:            m.ID,
		StaffName:     m.StaffName,
		ContactNumber: m.ContactNumber,
		Role:          m.Role,
		BranchID:      m.BranchID,
		Address:       m.Address,
		Active:        m.Active,
		CreatedBy:     m.CreatedBy,
		UpdatedBy:     m.UpdatedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func staffResponses(members []domain.Staff) []dto.StaffResponse {
	items := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, staffResponse(&members[i]))
	}
	return items
}
