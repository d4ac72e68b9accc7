package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/dto"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	"github.com/fixflow/repair-service/internal/service"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// BranchesHandler serves branch directory endpoints.
type BranchesHandler struct {
	service *service.BranchService
}

// NewBranchesHandler constructs handler.
func NewBranchesHandler(branchService *service.BranchService) *BranchesHandler {
	return &BranchesHandler{service: branchService}
}

// Create POST /branches.
func (h *BranchesHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.Create(c.UserContext(), service.CreateBranchInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Address:     req.Address,
	}, principal)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": branchResponse(branch)})
}

// List GET /branches.
func (h *BranchesHandler) List(c *fiber.Ctx) error {
	filter := repository.BranchFilter{}
	if active := c.Query("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}
	limit := parseInt(c.Query("limit"), 50)
	page := parseInt(c.Query("page"), 1)
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	branches, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.BranchResponse, 0, len(branches))
	for i := range branches {
		items = append(items, branchResponse(&branches[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /branches/:id.
func (h *BranchesHandler) Get(c *fiber.Ctx) error {
	branch, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// Update PATCH /branches/:id.
func (h *BranchesHandler) Update(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.Update(c.UserContext(), c.Params("id"), service.UpdateBranchInput{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
		Address:     req.Address,
		Active:      req.Active,
	}, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// UpdateStatus PATCH /branches/:id/status.
func (h *BranchesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BranchStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.SetActive(c.UserContext(), c.Params("id"), req.Active, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// Delete DELETE /branches/:id.
func (h *BranchesHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddStaff PATCH /branches/:branchId/staff/:staffId/add.
func (h *BranchesHandler) AddStaff(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	branch, err := h.service.AddStaff(c.UserContext(), c.Params("branchId"), c.Params("staffId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

// RemoveStaff PATCH /branches/:branchId/staff/:staffId/remove.
func (h *BranchesHandler) RemoveStaff(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	branch, err := h.service.RemoveStaff(c.UserContext(), c.Params("branchId"), c.Params("staffId"), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": branchResponse(branch)})
}

func branchResponse(b *domain.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:          b.ID,
		Name:        b.Name,
		PhoneNumber: b.PhoneNumber,
		Location:    b.Location,
		Address:     b.Address,
		StaffIDs:    b.StaffIDs,
		Active:      b.Active,
		CreatedBy:   b.CreatedBy,
		UpdatedBy:   b.UpdatedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
