package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// loginFailedMessage is returned for every credential failure so a caller
// cannot probe which identifiers exist.
const loginFailedMessage = "incorrect username or password"

var adminRoles = map[domain.Role]bool{
	domain.RoleAdmin:   true,
	domain.RoleManager: true,
	domain.RoleStaff:   true,
}

// AuthService authenticates both account kinds against a single token space.
// Admin accounts log in by username, staff members by contact number.
type AuthService struct {
	admins     repository.AdminRepository
	staff      repository.StaffRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(
	admins repository.AdminRepository,
	staff repository.StaffRepository,
	tokens *auth.TokenManager,
	bcryptCost int,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		admins:     admins,
		staff:      staff,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// LoginResult carries the authenticated principal together with its token.
type LoginResult struct {
	Principal *domain.Principal
	Token     string
	ExpiresAt time.Time
}

// Login resolves the identifier first as an admin username and, when that
// yields no usable credential, as an active staff contact number. Inactive
// staff cannot log in.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}

	admin, err := s.admins.GetByUsername(ctx, identifier)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	if admin != nil {
		if auth.ComparePassword(admin.PasswordHash, password) == nil {
			return s.issueToken(adminPrincipal(admin))
		}
		// Fall through: a staff contact number may collide with a username.
	}

	member, err := s.staff.GetActiveByContact(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized(loginFailedMessage)
		}
		return nil, apperrors.MapError(err)
	}
	if auth.ComparePassword(member.PasswordHash, password) != nil {
		return nil, apperrors.NewUnauthorized(loginFailedMessage)
	}
	return s.issueToken(staffPrincipal(member))
}

func (s *AuthService) issueToken(p *domain.Principal) (*LoginResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(p.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("principal logged in",
		zap.String("principal_id", p.ID),
		zap.String("kind", string(p.Kind)),
		zap.String("role", string(p.Role)))
	return &LoginResult{Principal: p, Token: token, ExpiresAt: expiresAt}, nil
}

// ResolvePrincipal restores the acting principal from a token subject. The id
// is tried against admin accounts first, then staff. Inactive staff resolve to
// nothing, which invalidates their outstanding tokens.
func (s *AuthService) ResolvePrincipal(ctx context.Context, id string) (*domain.Principal, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err == nil {
		return adminPrincipal(admin), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, auth.ErrPrincipalNotFound
		}
		return nil, apperrors.MapError(err)
	}
	if !member.Active {
		return nil, auth.ErrPrincipalNotFound
	}
	return staffPrincipal(member), nil
}

// RegisterAdminInput holds the fields accepted when creating an admin account.
type RegisterAdminInput struct {
	Username string
	Password string
	Role     domain.Role
}

// RegisterAdmin creates an admin-collection account. createdBy is empty when
// the account is bootstrapped without an authenticated actor.
func (s *AuthService) RegisterAdmin(ctx context.Context, in RegisterAdminInput, createdBy string) (*domain.AdminAccount, error) {
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}
	if in.Role == "" {
		in.Role = domain.RoleStaff
	}
	if !adminRoles[in.Role] {
		return nil, apperrors.NewValidationError("role must be one of admin, manager, staff", map[string]any{"role": in.Role})
	}

	if _, err := s.admins.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperrors.NewConflict("username is already taken", map[string]any{"username": in.Username})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	account := &domain.AdminAccount{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if createdBy != "" {
		account.CreatedBy = &createdBy
	}
	if err := s.admins.Create(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("admin account created",
		zap.String("account_id", account.ID),
		zap.String("role", string(account.Role)))
	return account, nil
}

// UpdateAdminInput carries the optional fields of an admin account update.
type UpdateAdminInput struct {
	Username *string
	Password *string
	Role     *domain.Role
}

func (s *AuthService) UpdateAdmin(ctx context.Context, id string, in UpdateAdminInput, updatedBy string) (*domain.AdminAccount, error) {
	account, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if username == "" {
			return nil, apperrors.NewValidationError("username cannot be empty", nil)
		}
		if username != account.Username {
			if _, err := s.admins.GetByUsername(ctx, username); err == nil {
				return nil, apperrors.NewConflict("username is already taken", map[string]any{"username": username})
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		}
		account.Username = username
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
	}
	if in.Role != nil {
		if !adminRoles[*in.Role] {
			return nil, apperrors.NewValidationError("role must be one of admin, manager, staff", map[string]any{"role": *in.Role})
		}
		account.Role = *in.Role
	}
	account.UpdatedBy = &updatedBy

	if err := s.admins.Update(ctx, account); err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

func (s *AuthService) GetAdmin(ctx context.Context, id string) (*domain.AdminAccount, error) {
	account, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return account, nil
}

func (s *AuthService) ListAdmins(ctx context.Context, limit, offset int) ([]domain.AdminAccount, error) {
	accounts, err := s.admins.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return accounts, nil
}

func (s *AuthService) DeleteAdmin(ctx context.Context, id string, actorID string) error {
	if id == actorID {
		return apperrors.NewValidationError("an account cannot delete itself", nil)
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("admin account deleted", zap.String("account_id", id))
	return nil
}

func adminPrincipal(a *domain.AdminAccount) *domain.Principal {
	return &domain.Principal{
		ID:       a.ID,
		Kind:     domain.KindAdmin,
		Role:     a.Role,
		Username: a.Username,
	}
}

func staffPrincipal(m *domain.Staff) *domain.Principal {
	return &domain.Principal{
		ID:            m.ID,
		Kind:          domain.KindStaff,
		Role:          m.Role,
		ContactNumber: m.ContactNumber,
		StaffName:     m.StaffName,
		BranchID:      m.BranchID,
	}
}
