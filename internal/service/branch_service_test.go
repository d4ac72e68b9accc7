package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/domain"
	apperrors "github.com/fixflow/repair-service/pkg/util"
)

func newBranchTestEnv() (*BranchService, *fakeBranchRepo, *fakeStaffRepo, *domain.Principal) {
	branches := newFakeBranchRepo()
	staff := newFakeStaffRepo()
	svc := NewBranchService(branches, staff, zap.NewNop())
	actor := &domain.Principal{ID: "adm-1", Kind: domain.KindAdmin, Role: domain.RoleAdmin}
	return svc, branches, staff, actor
}

func TestCreateBranchDuplicateNameCaseInsensitive(t *testing.T) {
	svc, _, _, actor := newBranchTestEnv()

	if _, err := svc.Create(context.Background(), CreateBranchInput{Name: "Downtown", PhoneNumber: "555-0100"}, actor); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.Create(context.Background(), CreateBranchInput{Name: "  downtown ", PhoneNumber: "555-0101"}, actor)
	if err == nil {
		t.Fatal("duplicate name accepted")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != 409 {
		t.Fatalf("status = %d, want 409", domainErr.HTTPStatus)
	}
}

func TestUpdateBranchRenameChecksDuplicates(t *testing.T) {
	svc, _, _, actor := newBranchTestEnv()

	first, err := svc.Create(context.Background(), CreateBranchInput{Name: "Downtown", PhoneNumber: "555-0100"}, actor)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.Create(context.Background(), CreateBranchInput{Name: "Uptown", PhoneNumber: "555-0101"}, actor)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	name := "DOWNTOWN"
	if _, err := svc.Update(context.Background(), second.ID, UpdateBranchInput{Name: &name}, actor); err == nil {
		t.Fatal("rename onto existing branch accepted")
	}

	// renaming to your own name with different casing is fine
	own := "DownTown"
	if _, err := svc.Update(context.Background(), first.ID, UpdateBranchInput{Name: &own}, actor); err != nil {
		t.Fatalf("case-only rename of own branch: %v", err)
	}
}

func TestDeleteBranchOrphansStaff(t *testing.T) {
	svc, branches, staff, actor := newBranchTestEnv()

	branch, err := svc.Create(context.Background(), CreateBranchInput{Name: "Downtown", PhoneNumber: "555-0100"}, actor)
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	member := &domain.Staff{
		StaffName:     "Tech One",
		ContactNumber: "555-0199",
		Role:          domain.RoleTechnician,
		BranchID:      branch.ID,
		Active:        true,
		CreatedBy:     actor.ID,
	}
	if err := staff.Create(context.Background(), member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	if err := svc.Delete(context.Background(), branch.ID); err != nil {
		t.Fatalf("delete branch with staff: %v", err)
	}
	if _, err := branches.GetByID(context.Background(), branch.ID); err == nil {
		t.Fatal("branch still present after delete")
	}

	// staff records keep the removed branch id
	kept, err := staff.GetByID(context.Background(), member.ID)
	if err != nil {
		t.Fatalf("staff lookup: %v", err)
	}
	if kept.BranchID != branch.ID {
		t.Fatalf("staff branch id = %q, want %q", kept.BranchID, branch.ID)
	}
}

func TestRosterAddAndRemove(t *testing.T) {
	svc, _, staff, actor := newBranchTestEnv()

	branch, err := svc.Create(context.Background(), CreateBranchInput{Name: "Downtown", PhoneNumber: "555-0100"}, actor)
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	member := &domain.Staff{StaffName: "Tech", ContactNumber: "555-0123", Role: domain.RoleTechnician, BranchID: branch.ID, Active: true, CreatedBy: "adm-1"}
	if err := staff.Create(context.Background(), member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}

	updated, err := svc.AddStaff(context.Background(), branch.ID, member.ID, actor)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(updated.StaffIDs) != 1 {
		t.Fatalf("roster = %v, want one entry", updated.StaffIDs)
	}

	// adding twice stays a single entry
	updated, err = svc.AddStaff(context.Background(), branch.ID, member.ID, actor)
	if err != nil {
		t.Fatalf("re-add: %v", err)
	}
	if len(updated.StaffIDs) != 1 {
		t.Fatalf("roster after re-add = %v, want one entry", updated.StaffIDs)
	}

	updated, err = svc.RemoveStaff(context.Background(), branch.ID, member.ID, actor)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(updated.StaffIDs) != 0 {
		t.Fatalf("roster after remove = %v, want empty", updated.StaffIDs)
	}

	// removing an absent member is a no-op
	if _, err := svc.RemoveStaff(context.Background(), branch.ID, member.ID, actor); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if _, err := svc.AddStaff(context.Background(), branch.ID, "stf-missing", actor); err == nil {
		t.Fatal("adding unknown staff accepted")
	}
}
