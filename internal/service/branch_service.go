package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

// BranchService manages service locations and their staff rosters.
type BranchService struct {
	branches repository.BranchRepository
	staff    repository.StaffRepository
	logger   *zap.Logger
}

func NewBranchService(branches repository.BranchRepository, staff repository.StaffRepository, logger *zap.Logger) *BranchService {
	return &BranchService{branches: branches, staff: staff, logger: logger}
}

// CreateBranchInput holds the fields accepted when opening a branch.
type CreateBranchInput struct {
	Name        string
	PhoneNumber string
	Location    string
	Address     string
}

// Create opens a branch. Names are unique case-insensitively.
func (s *BranchService) Create(ctx context.Context, in CreateBranchInput, actor *domain.Principal) (*domain.Branch, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, apperrors.NewValidationError("branch name is required", nil)
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		return nil, apperrors.NewValidationError("branch phone number is required", nil)
	}

	if err := s.ensureNameFree(ctx, in.Name, nil); err != nil {
		return nil, err
	}

	branch := &domain.Branch{
		Name:        in.Name,
		PhoneNumber: strings.TrimSpace(in.PhoneNumber),
		Location:    in.Location,
		Address:     in.Address,
		StaffIDs:    []string{},
		Active:      true,
		CreatedBy:   actor.ID,
	}
	if err := s.branches.Create(ctx, branch); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("branch created",
		zap.String("branch_id", branch.ID), zap.String("name", branch.Name))
	return branch, nil
}

// UpdateBranchInput carries the optional branch update fields.
type UpdateBranchInput struct {
	Name        *string
	PhoneNumber *string
	Location    *string
	Address     *string
	Active      *bool
}

func (s *BranchService) Update(ctx context.Context, id string, in UpdateBranchInput, actor *domain.Principal) (*domain.Branch, error) {
	branch, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("branch name cannot be empty", nil)
		}
		if !strings.EqualFold(name, branch.Name) {
			if err := s.ensureNameFree(ctx, name, &branch.ID); err != nil {
				return nil, err
			}
		}
		branch.Name = name
	}
	if in.PhoneNumber != nil {
		branch.PhoneNumber = strings.TrimSpace(*in.PhoneNumber)
	}
	if in.Location != nil {
		branch.Location = *in.Location
	}
	if in.Address != nil {
		branch.Address = *in.Address
	}
	if in.Active != nil {
		branch.Active = *in.Active
	}
	branch.UpdatedBy = &actor.ID

	if err := s.branches.Update(ctx, branch); err != nil {
		return nil, apperrors.MapError(err)
	}
	return branch, nil
}

// SetActive toggles whether a branch accepts new work.
func (s *BranchService) SetActive(ctx context.Context, id string, active bool, actor *domain.Principal) (*domain.Branch, error) {
	return s.Update(ctx, id, UpdateBranchInput{Active: &active}, actor)
}

func (s *BranchService) Get(ctx context.Context, id string) (*domain.Branch, error) {
	branch, err := s.branches.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return branch, nil
}

func (s *BranchService) List(ctx context.Context, filter repository.BranchFilter) ([]domain.Branch, error) {
	branches, err := s.branches.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return branches, nil
}

// Delete removes a branch. Staff stay in the directory but keep a dangling
// branch reference, matching how roster membership is only a back-reference.
func (s *BranchService) Delete(ctx context.Context, id string) error {
	if err := s.branches.Delete(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("branch deleted", zap.String("branch_id", id))
	return nil
}

// AddStaff puts a staff member on the branch roster. Adding twice is a no-op.
func (s *BranchService) AddStaff(ctx context.Context, branchID, staffID string, actor *domain.Principal) (*domain.Branch, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return nil, apperrors.MapError(err)
	}
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": staffID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.branches.AddStaff(ctx, branchID, member.ID, actor.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, branchID)
}

// RemoveStaff takes a staff member off the roster. Removing an absent member
// is a no-op.
func (s *BranchService) RemoveStaff(ctx context.Context, branchID, staffID string, actor *domain.Principal) (*domain.Branch, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.branches.RemoveStaff(ctx, branchID, staffID, actor.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.Get(ctx, branchID)
}

func (s *BranchService) ensureNameFree(ctx context.Context, name string, excludeID *string) error {
	existing, err := s.branches.GetByNameFold(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperrors.MapError(err)
	}
	return apperrors.NewConflict("a branch with this name already exists",
		map[string]any{"name": name, "existing_id": existing.ID})
}
