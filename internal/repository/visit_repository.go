package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixflow/repair-service/internal/domain"
)

// VisitFilter defines query params for visit listing.
type VisitFilter struct {
	Status   *domain.TicketStatus
	BranchID *string
	Phone    *string
	Limit    int
	Offset   int
}

// VisitMonthCount is one bucket of the monthly visit breakdown.
type VisitMonthCount struct {
	Year  int
	Month int
	Count int64
}

// VisitRepository handles persistence for the customer visit ledger.
type VisitRepository interface {
	// Upsert inserts a visit record. When one already exists for the
	// (phone, ticket) pair it bumps the visit counter and refreshes the
	// customer snapshot fields instead.
	Upsert(ctx context.Context, visit *domain.CustomerVisit) error
	Update(ctx context.Context, visit *domain.CustomerVisit) error
	GetByID(ctx context.Context, id string) (*domain.CustomerVisit, error)
	GetByTicket(ctx context.Context, ticketID string) (*domain.CustomerVisit, error)
	List(ctx context.Context, filter VisitFilter) ([]domain.CustomerVisit, error)
	Search(ctx context.Context, term string, limit int) ([]domain.CustomerVisit, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.CustomerVisit, error)
	// SetStatusByTicket mirrors a ticket status change onto the linked visit.
	// Returns the number of rows touched; zero is not an error.
	SetStatusByTicket(ctx context.Context, ticketID string, status domain.TicketStatus, updatedBy string) (int64, error)
	Delete(ctx context.Context, id string) error
	DeleteByTicket(ctx context.Context, ticketID string) error
	CountTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByBranch(ctx context.Context) ([]BranchCount, error)
	CountByMonth(ctx context.Context) ([]VisitMonthCount, error)
	ListRepeatCustomers(ctx context.Context) ([]domain.CustomerVisit, error)
}

const visitColumns = `id, visit_no, customer_name, phone, location, address, ticket_id, branch_id,
        service_status, visit_count, last_visit_at, created_by, updated_by, created_at, updated_at`

type visitRepository struct {
	pool *pgxpool.Pool
}

// NewVisitRepository instantiates the repository.
func NewVisitRepository(pool *pgxpool.Pool) VisitRepository {
	return &visitRepository{pool: pool}
}

func (r *visitRepository) Upsert(ctx context.Context, visit *domain.CustomerVisit) error {
	const query = `
        INSERT INTO customer_visits
            (visit_no, customer_name, phone, location, address, ticket_id, branch_id, service_status, created_by)
        VALUES ('CUST' || LPAD(nextval('customer_visit_seq')::text, 6, '0'),
                $1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (phone, ticket_id) DO UPDATE
        SET customer_name=EXCLUDED.customer_name,
            location=EXCLUDED.location,
            address=EXCLUDED.address,
            service_status=EXCLUDED.service_status,
            visit_count=customer_visits.visit_count + 1,
            last_visit_at=NOW(),
            updated_by=EXCLUDED.created_by,
            updated_at=NOW()
        RETURNING id, visit_no, visit_count, last_visit_at, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		visit.CustomerName,
		visit.Phone,
		visit.Location,
		visit.Address,
		visit.TicketID,
		visit.BranchID,
		visit.ServiceStatus,
		visit.CreatedBy,
	).Scan(&visit.ID, &visit.VisitNo, &visit.VisitCount, &visit.LastVisitAt, &visit.CreatedAt, &visit.UpdatedAt)
}

func (r *visitRepository) Update(ctx context.Context, visit *domain.CustomerVisit) error {
	const query = `
        UPDATE customer_visits
        SET customer_name=$1, phone=$2, location=$3, address=$4, service_status=$5,
            visit_count=$6, last_visit_at=$7, updated_by=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		visit.CustomerName,
		visit.Phone,
		visit.Location,
		visit.Address,
		visit.ServiceStatus,
		visit.VisitCount,
		visit.LastVisitAt,
		visit.UpdatedBy,
		visit.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitRepository) GetByID(ctx context.Context, id string) (*domain.CustomerVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM customer_visits WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *visitRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.CustomerVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM customer_visits WHERE ticket_id=$1`
	return r.fetchSingle(ctx, query, ticketID)
}

func (r *visitRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.CustomerVisit, error) {
	var visit domain.CustomerVisit
	if err := scanVisit(r.pool.QueryRow(ctx, query, arg), &visit); err != nil {
		return nil, err
	}
	return &visit, nil
}

func scanVisit(row pgx.Row, visit *domain.CustomerVisit) error {
	return row.Scan(
		&visit.ID,
		&visit.VisitNo,
		&visit.CustomerName,
		&visit.Phone,
		&visit.Location,
		&visit.Address,
		&visit.TicketID,
		&visit.BranchID,
		&visit.ServiceStatus,
		&visit.VisitCount,
		&visit.LastVisitAt,
		&visit.CreatedBy,
		&visit.UpdatedBy,
		&visit.CreatedAt,
		&visit.UpdatedAt,
	)
}

func collectVisits(rows pgx.Rows) ([]domain.CustomerVisit, error) {
	var result []domain.CustomerVisit
	for rows.Next() {
		var visit domain.CustomerVisit
		if err := scanVisit(rows, &visit); err != nil {
			return nil, err
		}
		result = append(result, visit)
	}
	return result, rows.Err()
}

func (r *visitRepository) List(ctx context.Context, filter VisitFilter) ([]domain.CustomerVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM customer_visits`
	args := []any{}
	clauses := []string{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("service_status=$%d", len(args)))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id=$%d", len(args)))
	}
	if filter.Phone != nil {
		args = append(args, *filter.Phone)
		clauses = append(clauses, fmt.Sprintf("phone=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}

func (r *visitRepository) Search(ctx context.Context, term string, limit int) ([]domain.CustomerVisit, error) {
	if limit <= 0 {
		limit = 50
	}
	search := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := `SELECT ` + visitColumns + ` FROM customer_visits
        WHERE LOWER(customer_name) LIKE $1 OR LOWER(phone) LIKE $1 OR LOWER(visit_no) LIKE $1
        ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, search, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}

func (r *visitRepository) ListByPhone(ctx context.Context, phone string) ([]domain.CustomerVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM customer_visits WHERE phone=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}

func (r *visitRepository) SetStatusByTicket(ctx context.Context, ticketID string, status domain.TicketStatus, updatedBy string) (int64, error) {
	const query = `
        UPDATE customer_visits
        SET service_status=$2, updated_by=$3, updated_at=NOW()
        WHERE ticket_id=$1`

	cmd, err := r.pool.Exec(ctx, query, ticketID, status, updatedBy)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *visitRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM customer_visits WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *visitRepository) DeleteByTicket(ctx context.Context, ticketID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM customer_visits WHERE ticket_id=$1`, ticketID)
	return err
}

func (r *visitRepository) CountTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customer_visits`).Scan(&total)
	return total, err
}

func (r *visitRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT service_status, COUNT(*) FROM customer_visits GROUP BY service_status ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

func (r *visitRepository) CountByBranch(ctx context.Context) ([]BranchCount, error) {
	const query = `
        SELECT v.branch_id, b.name, COUNT(*), 0
        FROM customer_visits v
        JOIN branches b ON b.id = v.branch_id
        GROUP BY v.branch_id, b.name
        ORDER BY COUNT(*) DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BranchCount
	for rows.Next() {
		var bc BranchCount
		if err := rows.Scan(&bc.BranchID, &bc.BranchName, &bc.Count, &bc.TotalCost); err != nil {
			return nil, err
		}
		result = append(result, bc)
	}
	return result, rows.Err()
}

func (r *visitRepository) CountByMonth(ctx context.Context) ([]VisitMonthCount, error) {
	const query = `
        SELECT EXTRACT(YEAR FROM created_at)::int AS year,
               EXTRACT(MONTH FROM created_at)::int AS month,
               COUNT(*)
        FROM customer_visits
        GROUP BY year, month
        ORDER BY year DESC, month DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []VisitMonthCount
	for rows.Next() {
		var mc VisitMonthCount
		if err := rows.Scan(&mc.Year, &mc.Month, &mc.Count); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	return result, rows.Err()
}

func (r *visitRepository) ListRepeatCustomers(ctx context.Context) ([]domain.CustomerVisit, error) {
	query := `SELECT ` + visitColumns + ` FROM customer_visits
        WHERE phone IN (SELECT phone FROM customer_visits GROUP BY phone HAVING COUNT(*) > 1)
        ORDER BY phone, created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectVisits(rows)
}
