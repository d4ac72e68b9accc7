package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixflow/repair-service/internal/api/dto"
	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/service"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// AuthHandler serves login, registration and admin account management.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.service.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		Principal: principalResponse(result.Principal),
	}})
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.service.RegisterAdmin(c.UserContext(), service.RegisterAdminInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	}, principal.ID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": adminResponse(account)})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": principalResponse(principal)})
}

// ListAccounts GET /auth.
func (h *AuthHandler) ListAccounts(c *fiber.Ctx) error {
	limit := parseInt(c.Query("limit"), 50)
	page := parseInt(c.Query("page"), 1)
	accounts, err := h.service.ListAdmins(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return err
	}
	items := make([]dto.AdminResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, adminResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetAccount GET /auth/:id.
func (h *AuthHandler) GetAccount(c *fiber.Ctx) error {
	account, err := h.service.GetAdmin(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponse(account)})
}

// UpdateAccount PATCH /auth/:id.
func (h *AuthHandler) UpdateAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	account, err := h.service.UpdateAdmin(c.UserContext(), c.Params("id"), service.UpdateAdminInput{
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
	}, principal.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": adminResponse(account)})
}

// DeleteAccount DELETE /auth/:id.
func (h *AuthHandler) DeleteAccount(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.DeleteAdmin(c.UserContext(), c.Params("id"), principal.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func principalResponse(p *domain.Principal) dto.PrincipalResponse {
	return dto.PrincipalResponse{
		ID:            p.ID,
		Kind:          p.Kind,
		Role:          p.Role,
		Username:      p.Username,
		StaffName:     p.StaffName,
		ContactNumber: p.ContactNumber,
		BranchID:      p.BranchID,
	}
}

func adminResponse(a *domain.AdminAccount) dto.AdminResponse {
	return dto.AdminResponse{
		ID:        a.ID,
		Username:  a.Username,
		Role:      a.Role,
		CreatedBy: a.CreatedBy,
		UpdatedBy: a.UpdatedBy,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
