package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fixflow/repair-service/internal/domain"
	"github.com/fixflow/repair-service/internal/repository"
)

type fakeAdminRepo struct {
	seq      int
	accounts map[string]*domain.AdminAccount
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{accounts: map[string]*domain.AdminAccount{}}
}

func (r *fakeAdminRepo) Create(_ context.Context, account *domain.AdminAccount) error {
	r.seq++
	account.ID = fmt.Sprintf("adm-%d", r.seq)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, account *domain.AdminAccount) error {
	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *account
	r.accounts[account.ID] = &cp
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.AdminAccount, error) {
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *account
	return &cp, nil
}

func (r *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*domain.AdminAccount, error) {
	for _, account := range r.accounts {
		if account.Username == username {
			cp := *account
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) List(_ context.Context, _, _ int) ([]domain.AdminAccount, error) {
	out := make([]domain.AdminAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, *account)
	}
	return out, nil
}

func (r *fakeAdminRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.accounts, id)
	return nil
}

type fakeStaffRepo struct {
	seq     int
	members map[string]*domain.Staff
}

func newFakeStaffRepo() *fakeStaffRepo {
	return &fakeStaffRepo{members: map[string]*domain.Staff{}}
}

func (r *fakeStaffRepo) Create(_ context.Context, member *domain.Staff) error {
	r.seq++
	member.ID = fmt.Sprintf("stf-%d", r.seq)
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) Update(_ context.Context, member *domain.Staff) error {
	if _, ok := r.members[member.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *member
	r.members[member.ID] = &cp
	return nil
}

func (r *fakeStaffRepo) GetByID(_ context.Context, id string) (*domain.Staff, error) {
	member, ok := r.members[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *member
	return &cp, nil
}

func (r *fakeStaffRepo) GetByContact(_ context.Context, contact string) (*domain.Staff, error) {
	for _, member := range r.members {
		if member.ContactNumber == contact {
			cp := *member
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStaffRepo) GetActiveByContact(ctx context.Context, contact string) (*domain.Staff, error) {
	member, err := r.GetByContact(ctx, contact)
	if err != nil || !member.Active {
		return nil, pgx.ErrNoRows
	}
	return member, nil
}

func (r *fakeStaffRepo) List(_ context.Context, filter repository.StaffFilter) ([]domain.Staff, error) {
	out := []domain.Staff{}
	for _, member := range r.members {
		if filter.Role != nil && member.Role != *filter.Role {
			continue
		}
		if filter.BranchID != nil && member.BranchID != *filter.BranchID {
			continue
		}
		if filter.Active != nil && member.Active != *filter.Active {
			continue
		}
		out = append(out, *member)
	}
	return out, nil
}

func (r *fakeStaffRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.members[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.members, id)
	return nil
}

type fakeBranchRepo struct {
	seq      int
	branches map[string]*domain.Branch
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{branches: map[string]*domain.Branch{}}
}

func (r *fakeBranchRepo) Create(_ context.Context, branch *domain.Branch) error {
	r.seq++
	branch.ID = fmt.Sprintf("brn-%d", r.seq)
	branch.CreatedAt = time.Now()
	branch.UpdatedAt = branch.CreatedAt
	cp := *branch
	r.branches[branch.ID] = &cp
	return nil
}

func (r *fakeBranchRepo) Update(_ context.Context, branch *domain.Branch) error {
	if _, ok := r.branches[branch.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *branch
	r.branches[branch.ID] = &cp
	return nil
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id string) (*domain.Branch, error) {
	branch, ok := r.branches[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *branch
	return &cp, nil
}

func (r *fakeBranchRepo) GetByNameFold(_ context.Context, name string, excludeID *string) (*domain.Branch, error) {
	for _, branch := range r.branches {
		if excludeID != nil && branch.ID == *excludeID {
			continue
		}
		if strings.EqualFold(branch.Name, name) {
			cp := *branch
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeBranchRepo) List(_ context.Context, filter repository.BranchFilter) ([]domain.Branch, error) {
	out := []domain.Branch{}
	for _, branch := range r.branches {
		if filter.Active != nil && branch.Active != *filter.Active {
			continue
		}
		out = append(out, *branch)
	}
	return out, nil
}

func (r *fakeBranchRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.branches[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.branches, id)
	return nil
}

func (r *fakeBranchRepo) AddStaff(_ context.Context, branchID, staffID, _ string) error {
	branch, ok := r.branches[branchID]
	if !ok {
		return pgx.ErrNoRows
	}
	for _, existing := range branch.StaffIDs {
		if existing == staffID {
			return nil
		}
	}
	branch.StaffIDs = append(branch.StaffIDs, staffID)
	return nil
}

func (r *fakeBranchRepo) RemoveStaff(_ context.Context, branchID, staffID, _ string) error {
	branch, ok := r.branches[branchID]
	if !ok {
		return pgx.ErrNoRows
	}
	kept := branch.StaffIDs[:0]
	for _, existing := range branch.StaffIDs {
		if existing != staffID {
			kept = append(kept, existing)
		}
	}
	branch.StaffIDs = kept
	return nil
}

type fakeTicketRepo struct {
	seq     int
	tickets map[string]*domain.ServiceTicket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.ServiceTicket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.ServiceTicket) error {
	r.seq++
	ticket.ID = fmt.Sprintf("tic-%d", r.seq)
	ticket.TicketNo = fmt.Sprintf("SRV%06d", r.seq)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.ServiceTicket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ticket
	r.tickets[ticket.ID] = &cp
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.ServiceTicket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ticket
	return &cp, nil
}

func (r *fakeTicketRepo) GetByTicketNo(_ context.Context, ticketNo string) (*domain.ServiceTicket, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNo == ticketNo {
			cp := *ticket
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.ServiceTicket, error) {
	out := []domain.ServiceTicket{}
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.TechnicianID != nil && (ticket.TechnicianID == nil || *ticket.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.BranchID != nil && ticket.BranchID != *filter.BranchID {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) ListOverdue(_ context.Context, cutoff time.Time) ([]domain.ServiceTicket, error) {
	out := []domain.ServiceTicket{}
	for _, ticket := range r.tickets {
		switch ticket.Status {
		case domain.StatusCompleted, domain.StatusCancelled, domain.StatusDelivered:
			continue
		}
		if ticket.ReceivedAt.Before(cutoff) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) CountTotal(_ context.Context) (int64, error) {
	return int64(len(r.tickets)), nil
}

func (r *fakeTicketRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	counts := map[domain.TicketStatus]int64{}
	for _, ticket := range r.tickets {
		counts[ticket.Status]++
	}
	out := []repository.StatusCount{}
	for status, count := range counts {
		out = append(out, repository.StatusCount{Status: status, Count: count})
	}
	return out, nil
}

func (r *fakeTicketRepo) CountByBranch(_ context.Context) ([]repository.BranchCount, error) {
	return nil, nil
}

func (r *fakeTicketRepo) Report(_ context.Context, _ repository.ReportFilter) ([]repository.ReportRow, error) {
	return nil, nil
}

type fakeVisitRepo struct {
	seq    int
	visits map[string]*domain.CustomerVisit
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: map[string]*domain.CustomerVisit{}}
}

func (r *fakeVisitRepo) Upsert(_ context.Context, visit *domain.CustomerVisit) error {
	for _, existing := range r.visits {
		if existing.Phone == visit.Phone && existing.TicketID == visit.TicketID {
			existing.VisitCount++
			existing.CustomerName = visit.CustomerName
			existing.Location = visit.Location
			existing.Address = visit.Address
			existing.LastVisitAt = visit.LastVisitAt
			*visit = *existing
			return nil
		}
	}
	r.seq++
	visit.ID = fmt.Sprintf("vis-%d", r.seq)
	visit.VisitNo = fmt.Sprintf("CUST%06d", r.seq)
	visit.CreatedAt = time.Now()
	visit.UpdatedAt = visit.CreatedAt
	cp := *visit
	r.visits[visit.ID] = &cp
	return nil
}

func (r *fakeVisitRepo) Update(_ context.Context, visit *domain.CustomerVisit) error {
	if _, ok := r.visits[visit.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *visit
	r.visits[visit.ID] = &cp
	return nil
}

func (r *fakeVisitRepo) GetByID(_ context.Context, id string) (*domain.CustomerVisit, error) {
	visit, ok := r.visits[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *visit
	return &cp, nil
}

func (r *fakeVisitRepo) GetByTicket(_ context.Context, ticketID string) (*domain.CustomerVisit, error) {
	for _, visit := range r.visits {
		if visit.TicketID == ticketID {
			cp := *visit
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeVisitRepo) List(_ context.Context, filter repository.VisitFilter) ([]domain.CustomerVisit, error) {
	out := []domain.CustomerVisit{}
	for _, visit := range r.visits {
		if filter.Status != nil && visit.ServiceStatus != *filter.Status {
			continue
		}
		if filter.BranchID != nil && visit.BranchID != *filter.BranchID {
			continue
		}
		if filter.Phone != nil && visit.Phone != *filter.Phone {
			continue
		}
		out = append(out, *visit)
	}
	return out, nil
}

func (r *fakeVisitRepo) Search(_ context.Context, term string, _ int) ([]domain.CustomerVisit, error) {
	out := []domain.CustomerVisit{}
	for _, visit := range r.visits {
		if strings.Contains(visit.CustomerName, term) || strings.Contains(visit.Phone, term) || strings.Contains(visit.VisitNo, term) {
			out = append(out, *visit)
		}
	}
	return out, nil
}

func (r *fakeVisitRepo) ListByPhone(_ context.Context, phone string) ([]domain.CustomerVisit, error) {
	out := []domain.CustomerVisit{}
	for _, visit := range r.visits {
		if visit.Phone == phone {
			out = append(out, *visit)
		}
	}
	return out, nil
}

func (r *fakeVisitRepo) SetStatusByTicket(_ context.Context, ticketID string, status domain.TicketStatus, updatedBy string) (int64, error) {
	var affected int64
	for _, visit := range r.visits {
		if visit.TicketID == ticketID {
			visit.ServiceStatus = status
			visit.UpdatedBy = &updatedBy
			affected++
		}
	}
	return affected, nil
}

func (r *fakeVisitRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.visits[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.visits, id)
	return nil
}

func (r *fakeVisitRepo) DeleteByTicket(_ context.Context, ticketID string) error {
	for id, visit := range r.visits {
		if visit.TicketID == ticketID {
			delete(r.visits, id)
		}
	}
	return nil
}

func (r *fakeVisitRepo) CountTotal(_ context.Context) (int64, error) {
	return int64(len(r.visits)), nil
}

func (r *fakeVisitRepo) CountByStatus(_ context.Context) ([]repository.StatusCount, error) {
	return nil, nil
}

func (r *fakeVisitRepo) CountByBranch(_ context.Context) ([]repository.BranchCount, error) {
	return nil, nil
}

func (r *fakeVisitRepo) CountByMonth(_ context.Context) ([]repository.VisitMonthCount, error) {
	return nil, nil
}

func (r *fakeVisitRepo) ListRepeatCustomers(_ context.Context) ([]domain.CustomerVisit, error) {
	byPhone := map[string]int{}
	for _, visit := range r.visits {
		byPhone[visit.Phone]++
	}
	out := []domain.CustomerVisit{}
	for _, visit := range r.visits {
		if byPhone[visit.Phone] > 1 {
			out = append(out, *visit)
		}
	}
	return out, nil
}
