package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/auth"
	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

var staffRoles = map[domain.Role]bool{
	domain.RoleTechnician:    true,
	domain.RoleBranchStaff:   true,
	domain.RoleBranchManager: true,
}

// StaffService manages the staff directory and keeps branch rosters in sync
// with staff branch assignments.
type StaffService struct {
	staff      repository.StaffRepository
	branches   repository.BranchRepository
	bcryptCost int
	logger     *zap.Logger
}

func NewStaffService(staff repository.StaffRepository, branches repository.BranchRepository, bcryptCost int, logger *zap.Logger) *StaffService {
	return &StaffService{staff: staff, branches: branches, bcryptCost: bcryptCost, logger: logger}
}

// CreateStaffInput holds the fields accepted when hiring a staff member.
type CreateStaffInput struct {
	StaffName     string
	ContactNumber string
	Password      string
	Role          domain.Role
	BranchID      string
	Address       string
}

// Create hires a staff member into a branch. The contact number must be
// unique across all staff because it is the login identifier.
func (s *StaffService) Create(ctx context.Context, in CreateStaffInput, actor *domain.Principal) (*domain.Staff, error) {
	in.StaffName = strings.TrimSpace(in.StaffName)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	if in.StaffName == "" || in.ContactNumber == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("staff name, contact number and password are required", nil)
	}
	if !staffRoles[in.Role] {
		return nil, apperrors.NewValidationError("role must be one of Technician, Staff, Manager", map[string]any{"role": in.Role})
	}

	if _, err := s.branches.GetByID(ctx, in.BranchID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("branch", map[string]any{"branch_id": in.BranchID})
		}
		return nil, apperrors.MapError(err)
	}

	if _, err := s.staff.GetByContact(ctx, in.ContactNumber); err == nil {
		return nil, apperrors.NewConflict("contact number is already registered",
			map[string]any{"contact_number": in.ContactNumber})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	member := &domain.Staff{
		StaffName:     in.StaffName,
		ContactNumber: in.ContactNumber,
		PasswordHash:  hash,
		Role:          in.Role,
		BranchID:      in.BranchID,
		Address:       in.Address,
		Active:        true,
		CreatedBy:     actor.ID,
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.branches.AddStaff(ctx, member.BranchID, member.ID, actor.ID); err != nil {
		s.logger.Warn("branch roster not updated for new staff",
			zap.String("staff_id", member.ID),
			zap.String("branch_id", member.BranchID),
			zap.Error(err))
	}
	s.logger.Info("staff created",
		zap.String("staff_id", member.ID),
		zap.String("role", string(member.Role)),
		zap.String("branch_id", member.BranchID))
	return member, nil
}

// UpdateStaffInput carries the optional staff update fields.
type UpdateStaffInput struct {
	StaffName     *string
	ContactNumber *string
	Password      *string
	Role          *domain.Role
	BranchID      *string
	Address       *string
	Active        *bool
}

// Update edits a staff member. A branch change moves the member between the
// two branch rosters.
func (s *StaffService) Update(ctx context.Context, id string, in UpdateStaffInput, actor *domain.Principal) (*domain.Staff, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if in.StaffName != nil {
		name := strings.TrimSpace(*in.StaffName)
		if name == "" {
			return nil, apperrors.NewValidationError("staff name cannot be empty", nil)
		}
		member.StaffName = name
	}
	if in.ContactNumber != nil {
		contact := strings.TrimSpace(*in.ContactNumber)
		if contact == "" {
			return nil, apperrors.NewValidationError("contact number cannot be empty", nil)
		}
		if contact != member.ContactNumber {
			if _, err := s.staff.GetByContact(ctx, contact); err == nil {
				return nil, apperrors.NewConflict("contact number is already registered",
					map[string]any{"contact_number": contact})
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.MapError(err)
			}
		}
		member.ContactNumber = contact
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		member.PasswordHash = hash
	}
	if in.Role != nil {
		if !staffRoles[*in.Role] {
			return nil, apperrors.NewValidationError("role must be one of Technician, Staff, Manager", map[string]any{"role": *in.Role})
		}
		member.Role = *in.Role
	}
	if in.Address != nil {
		member.Address = *in.Address
	}
	if in.Active != nil {
		member.Active = *in.Active
	}

	previousBranch := member.BranchID
	if in.BranchID != nil && *in.BranchID != member.BranchID {
		if _, err := s.branches.GetByID(ctx, *in.BranchID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("branch", map[string]any{"branch_id": *in.BranchID})
			}
			return nil, apperrors.MapError(err)
		}
		member.BranchID = *in.BranchID
	}
	member.UpdatedBy = &actor.ID

	if err := s.staff.Update(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}

	if member.BranchID != previousBranch {
		if err := s.branches.RemoveStaff(ctx, previousBranch, member.ID, actor.ID); err != nil {
			s.logger.Warn("old branch roster not updated",
				zap.String("staff_id", member.ID),
				zap.String("branch_id", previousBranch),
				zap.Error(err))
		}
		if err := s.branches.AddStaff(ctx, member.BranchID, member.ID, actor.ID); err != nil {
			s.logger.Warn("new branch roster not updated",
				zap.String("staff_id", member.ID),
				zap.String("branch_id", member.BranchID),
				zap.Error(err))
		}
	}
	return member, nil
}

func (s *StaffService) Get(ctx context.Context, id string) (*domain.Staff, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

func (s *StaffService) List(ctx context.Context, filter repository.StaffFilter) ([]domain.Staff, error) {
	members, err := s.staff.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// ListTechnicians returns active technicians, optionally scoped to a branch.
func (s *StaffService) ListTechnicians(ctx context.Context, branchID string) ([]domain.Staff, error) {
	active := true
	role := domain.RoleTechnician
	filter := repository.StaffFilter{Role: &role, Active: &active}
	if branchID != "" {
		filter.BranchID = &branchID
	}
	return s.List(ctx, filter)
}

// Delete removes a staff member and pulls them off their branch roster.
func (s *StaffService) Delete(ctx context.Context, id string, actor *domain.Principal) error {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.staff.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.branches.RemoveStaff(ctx, member.BranchID, member.ID, actor.ID); err != nil {
		s.logger.Warn("branch roster not updated for deleted staff",
			zap.String("staff_id", member.ID),
			zap.String("branch_id", member.BranchID),
			zap.Error(err))
	}
	s.logger.Info("staff deleted", zap.String("staff_id", id))
	return nil
}
