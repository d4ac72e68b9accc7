package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/events"
)

type ticketTestEnv struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	visits   *fakeVisitRepo
	staff    *fakeStaffRepo
	branches *fakeBranchRepo
	actor    *domain.Principal
	branchID string
}

func newTicketTestEnv(t *testing.T) *ticketTestEnv {
	t.Helper()
	tickets := newFakeTicketRepo()
	visits := newFakeVisitRepo()
	staff := newFakeStaffRepo()
	branches := newFakeBranchRepo()

	branch := &domain.Branch{Name: "Downtown", PhoneNumber: "555-0100", Active: true, CreatedBy: "adm-1"}
	if err := branches.Create(context.Background(), branch); err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	svc := NewTicketService(tickets, visits, staff, branches, events.NewInMemoryDispatcher(), zap.NewNop())
	return &ticketTestEnv{
		svc:      svc,
		tickets:  tickets,
		visits:   visits,
		staff:    staff,
		branches: branches,
		actor:    &domain.Principal{ID: "adm-1", Kind: domain.KindAdmin, Role: domain.RoleAdmin},
		branchID: branch.ID,
	}
}

func (env *ticketTestEnv) seedTechnician(t *testing.T, active bool, role domain.Role) *domain.Staff {
	t.Helper()
	member := &domain.Staff{
		StaffName:     "Tech One",
		ContactNumber: "555-0199",
		Role:          role,
		BranchID:      env.branchID,
		Active:        active,
		CreatedBy:     "adm-1",
	}
	if err := env.staff.Create(context.Background(), member); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	return member
}

func (env *ticketTestEnv) createTicket(t *testing.T) *domain.ServiceTicket {
	t.Helper()
	created, err := env.svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        env.branchID,
		Products: []domain.ProductIssue{
			{ProductName: "Washer", ProductIssue: "does not spin"},
		},
	}, env.actor)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return &created[0]
}

func TestCreateFansOutPerProduct(t *testing.T) {
	env := newTicketTestEnv(t)

	created, err := env.svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        env.branchID,
		Products: []domain.ProductIssue{
			{ProductName: "Washer", ProductIssue: "does not spin"},
			{ProductName: "Dryer", ProductIssue: "no heat"},
		},
	}, env.actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d tickets, want 2", len(created))
	}
	if len(env.visits.visits) != 2 {
		t.Fatalf("recorded %d visits, want 2", len(env.visits.visits))
	}
	for _, ticket := range created {
		if ticket.Status != domain.StatusReceived {
			t.Fatalf("new ticket status = %s, want %s", ticket.Status, domain.StatusReceived)
		}
		visit, err := env.visits.GetByTicket(context.Background(), ticket.ID)
		if err != nil {
			t.Fatalf("visit for ticket %s: %v", ticket.ID, err)
		}
		if visit.VisitCount != 1 || visit.ServiceStatus != domain.StatusReceived {
			t.Fatalf("visit = count %d status %s, want 1 %s", visit.VisitCount, visit.ServiceStatus, domain.StatusReceived)
		}
	}
}

func TestCreateRejectsInactiveBranch(t *testing.T) {
	env := newTicketTestEnv(t)
	branch, _ := env.branches.GetByID(context.Background(), env.branchID)
	branch.Active = false
	if err := env.branches.Update(context.Background(), branch); err != nil {
		t.Fatalf("deactivate branch: %v", err)
	}

	_, err := env.svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        env.branchID,
		Products:        []domain.ProductIssue{{ProductName: "Washer", ProductIssue: "leaks"}},
	}, env.actor)
	if err == nil {
		t.Fatal("create on inactive branch succeeded, want error")
	}
}

func TestUpdateStatusMirrorsVisit(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)

	updated, err := env.svc.UpdateStatus(context.Background(), ticket.ID, domain.StatusUnderInspection, "", env.actor)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusUnderInspection {
		t.Fatalf("status = %s, want %s", updated.Status, domain.StatusUnderInspection)
	}
	visit, err := env.visits.GetByTicket(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("visit lookup: %v", err)
	}
	if visit.ServiceStatus != domain.StatusUnderInspection {
		t.Fatalf("visit status = %s, want mirror of ticket", visit.ServiceStatus)
	}
}

func TestUpdateStatusWithoutVisitStillSucceeds(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)
	if err := env.visits.DeleteByTicket(context.Background(), ticket.ID); err != nil {
		t.Fatalf("remove visit: %v", err)
	}

	if _, err := env.svc.UpdateStatus(context.Background(), ticket.ID, domain.StatusAssigned, "", env.actor); err != nil {
		t.Fatalf("update status without visit: %v", err)
	}
}

func TestUpdateStatusCompletedRequiresCost(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)

	if _, err := env.svc.UpdateStatus(context.Background(), ticket.ID, domain.StatusCompleted, "", env.actor); err == nil {
		t.Fatal("completion without cost succeeded, want error")
	}

	if _, err := env.svc.UpdateCost(context.Background(), ticket.ID, 180, env.actor); err != nil {
		t.Fatalf("set cost: %v", err)
	}
	updated, err := env.svc.UpdateStatus(context.Background(), ticket.ID, domain.StatusCompleted, "", env.actor)
	if err != nil {
		t.Fatalf("completion with cost: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want %s", updated.Status, domain.StatusCompleted)
	}
}

func TestAssignTechnicianForcesStatus(t *testing.T) {
	env := newTicketTestEnv(t)
	tech := env.seedTechnician(t, true, domain.RoleTechnician)
	ticket := env.createTicket(t)

	// push the ticket forward, then assign from a late state
	if _, err := env.svc.UpdateCost(context.Background(), ticket.ID, 120, env.actor); err != nil {
		t.Fatalf("set cost: %v", err)
	}
	if _, err := env.svc.UpdateStatus(context.Background(), ticket.ID, domain.StatusCompleted, "", env.actor); err != nil {
		t.Fatalf("complete: %v", err)
	}

	assigned, err := env.svc.AssignTechnician(context.Background(), ticket.ID, tech.ID, env.actor)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.Status != domain.StatusAssigned {
		t.Fatalf("status = %s, want forced %s", assigned.Status, domain.StatusAssigned)
	}
	if assigned.TechnicianID == nil || *assigned.TechnicianID != tech.ID {
		t.Fatalf("technician = %v, want %s", assigned.TechnicianID, tech.ID)
	}
	if assigned.Cost != 0 {
		t.Fatalf("cost = %v, want reset to 0 on reopen", assigned.Cost)
	}
	visit, err := env.visits.GetByTicket(context.Background(), ticket.ID)
	if err != nil {
		t.Fatalf("visit lookup: %v", err)
	}
	if visit.ServiceStatus != domain.StatusAssigned {
		t.Fatalf("visit status = %s, want mirror of assignment", visit.ServiceStatus)
	}
}

func TestAssignTechnicianValidatesTarget(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)

	inactive := env.seedTechnician(t, false, domain.RoleTechnician)
	if _, err := env.svc.AssignTechnician(context.Background(), ticket.ID, inactive.ID, env.actor); err == nil {
		t.Fatal("assigning inactive technician succeeded, want error")
	}

	wrongRole := &domain.Staff{
		StaffName:     "Front Desk",
		ContactNumber: "555-0170",
		Role:          domain.RoleBranchStaff,
		BranchID:      env.branchID,
		Active:        true,
		CreatedBy:     "adm-1",
	}
	if err := env.staff.Create(context.Background(), wrongRole); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	if _, err := env.svc.AssignTechnician(context.Background(), ticket.ID, wrongRole.ID, env.actor); err == nil {
		t.Fatal("assigning non-technician succeeded, want error")
	}
	if _, err := env.svc.AssignTechnician(context.Background(), ticket.ID, "stf-missing", env.actor); err == nil {
		t.Fatal("assigning unknown staff succeeded, want error")
	}
}

func TestCreateCarriesServiceCost(t *testing.T) {
	env := newTicketTestEnv(t)

	created, err := env.svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        env.branchID,
		ServiceCost:     150,
		Products: []domain.ProductIssue{
			{ProductName: "Washer", ProductIssue: "does not spin"},
			{ProductName: "Dryer", ProductIssue: "no heat"},
		},
	}, env.actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, ticket := range created {
		if ticket.Cost != 150 {
			t.Fatalf("ticket %s cost = %v, want 150", ticket.ID, ticket.Cost)
		}
	}

	// an intake with a quoted cost can move straight to Completed
	if _, err := env.svc.UpdateStatus(context.Background(), created[0].ID, domain.StatusCompleted, "", env.actor); err != nil {
		t.Fatalf("complete with intake cost: %v", err)
	}

	_, err = env.svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        env.branchID,
		ServiceCost:     -5,
		Products: []domain.ProductIssue{
			{ProductName: "Washer", ProductIssue: "does not spin"},
		},
	}, env.actor)
	if err == nil {
		t.Fatal("negative cost accepted, want validation error")
	}
}

func TestDeleteRemovesVisit(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)

	if err := env.svc.Delete(context.Background(), ticket.ID, env.actor); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := env.tickets.GetByID(context.Background(), ticket.ID); err == nil {
		t.Fatal("ticket still present after delete")
	}
	if _, err := env.visits.GetByTicket(context.Background(), ticket.ID); err == nil {
		t.Fatal("visit still present after ticket delete")
	}
}

// referentialTicketRepo refuses to delete a ticket that a visit row still
// references, matching the database constraint.
type referentialTicketRepo struct {
	*fakeTicketRepo
	visits *fakeVisitRepo
}

func (r *referentialTicketRepo) Delete(ctx context.Context, id string) error {
	for _, visit := range r.visits.visits {
		if visit.TicketID == id {
			return fmt.Errorf("ticket %s is still referenced by visit %s", id, visit.ID)
		}
	}
	return r.fakeTicketRepo.Delete(ctx, id)
}

func TestDeleteClearsVisitBeforeTicket(t *testing.T) {
	tickets := newFakeTicketRepo()
	visits := newFakeVisitRepo()
	branches := newFakeBranchRepo()

	branch := &domain.Branch{Name: "Downtown", PhoneNumber: "555-0100", Active: true, CreatedBy: "adm-1"}
	if err := branches.Create(context.Background(), branch); err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	svc := NewTicketService(&referentialTicketRepo{fakeTicketRepo: tickets, visits: visits},
		visits, newFakeStaffRepo(), branches, events.NewInMemoryDispatcher(), zap.NewNop())
	actor := &domain.Principal{ID: "adm-1", Kind: domain.KindAdmin, Role: domain.RoleAdmin}

	created, err := svc.Create(context.Background(), CreateTicketInput{
		CustomerName:    "Jamie Cruz",
		CustomerContact: "555-0142",
		BranchID:        branch.ID,
		Products: []domain.ProductIssue{
			{ProductName: "Washer", ProductIssue: "does not spin"},
		},
	}, actor)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), created[0].ID, actor); err != nil {
		t.Fatalf("delete with referencing visit: %v", err)
	}
	if _, err := tickets.GetByID(context.Background(), created[0].ID); err == nil {
		t.Fatal("ticket still present after delete")
	}
	if _, err := visits.GetByTicket(context.Background(), created[0].ID); err == nil {
		t.Fatal("visit still present after delete")
	}
}

func TestDeleteWithoutVisitSucceeds(t *testing.T) {
	env := newTicketTestEnv(t)
	ticket := env.createTicket(t)
	if err := env.visits.DeleteByTicket(context.Background(), ticket.ID); err != nil {
		t.Fatalf("remove visit: %v", err)
	}

	if err := env.svc.Delete(context.Background(), ticket.ID, env.actor); err != nil {
		t.Fatalf("delete without visit: %v", err)
	}
}

func TestBulkUpdateStatusIsolatesFailures(t *testing.T) {
	env := newTicketTestEnv(t)
	good := env.createTicket(t)
	blocked := env.createTicket(t)

	// blocked cannot reach Completed without a cost
	results, err := env.svc.BulkUpdateStatus(context.Background(),
		[]string{good.ID, blocked.ID}, domain.StatusAssigned, "", env.actor)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	for _, res := range results {
		if res.Error != "" {
			t.Fatalf("unexpected failure for %s: %s", res.TicketID, res.Error)
		}
	}

	results, err = env.svc.BulkUpdateStatus(context.Background(),
		[]string{good.ID, "tic-missing"}, domain.StatusInService, "", env.actor)
	if err != nil {
		t.Fatalf("bulk with missing id: %v", err)
	}
	if results[0].Error != "" {
		t.Fatalf("valid ticket failed: %s", results[0].Error)
	}
	if results[1].Error == "" {
		t.Fatal("missing ticket reported success")
	}
}

func TestListOverdueSkipsTerminalStates(t *testing.T) {
	env := newTicketTestEnv(t)
	old := time.Now().AddDate(0, 0, -10)

	stale := env.createTicket(t)
	raw, _ := env.tickets.GetByID(context.Background(), stale.ID)
	raw.ReceivedAt = old
	if err := env.tickets.Update(context.Background(), raw); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	done := env.createTicket(t)
	rawDone, _ := env.tickets.GetByID(context.Background(), done.ID)
	rawDone.ReceivedAt = old
	rawDone.Status = domain.StatusCompleted
	if err := env.tickets.Update(context.Background(), rawDone); err != nil {
		t.Fatalf("backdate completed: %v", err)
	}

	overdue, err := env.svc.ListOverdue(context.Background(), 7)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != stale.ID {
		t.Fatalf("overdue = %v, want only the stale open ticket", overdue)
	}
}
