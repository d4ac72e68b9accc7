package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixflow/repair-service/internal/domain"
)

// TicketFilter captures listing parameters for service tickets.
type TicketFilter struct {
	SearchTerm   *string
	Status       *domain.TicketStatus
	BranchID     *string
	TechnicianID *string
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
	Sort         string
	Limit        int
	Offset       int
}

// ReportFilter scopes the monthly aggregation.
type ReportFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	BranchID  *string
	Status    *domain.TicketStatus
}

// ReportRow is one (year, month, status) aggregation bucket.
type ReportRow struct {
	Year      int
	Month     int
	Status    domain.TicketStatus
	Count     int64
	TotalCost float64
	AvgCost   float64
}

// StatusCount is one bucket of the per-status breakdown.
type StatusCount struct {
	Status domain.TicketStatus
	Count  int64
}

// BranchCount is one bucket of the per-branch breakdown.
type BranchCount struct {
	BranchID   string
	BranchName string
	Count      int64
	TotalCost  float64
}

// TicketRepository encapsulates service ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.ServiceTicket) error
	Update(ctx context.Context, ticket *domain.ServiceTicket) error
	GetByID(ctx context.Context, id string) (*domain.ServiceTicket, error)
	GetByTicketNo(ctx context.Context, ticketNo string) (*domain.ServiceTicket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error)
	Delete(ctx context.Context, id string) error
	ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.ServiceTicket, error)
	CountTotal(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) ([]StatusCount, error)
	CountByBranch(ctx context.Context) ([]BranchCount, error)
	Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error)
}

const ticketColumns = `id, ticket_no, customer_name, customer_contact, technician_id, status, address, location,
        cost, received_at, delivered_at, cancellation_reason, product, branch_id,
        created_by, updated_by, created_at, updated_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.ServiceTicket) error {
	// ticket_no comes from a dedicated sequence so SRV ids stay dense and
	// zero-padded regardless of row deletions.
	const query = `
        INSERT INTO service_tickets
            (ticket_no, customer_name, customer_contact, technician_id, status, address, location,
             cost, received_at, cancellation_reason, product, branch_id, created_by)
        VALUES ('SRV' || LPAD(nextval('service_ticket_seq')::text, 6, '0'),
                $1,$2,$3,$4,$5,$6,$7,COALESCE($8, NOW()),$9,$10,$11,$12)
        RETURNING id, ticket_no, received_at, created_at, updated_at`

	var receivedAt any
	if !ticket.ReceivedAt.IsZero() {
		receivedAt = ticket.ReceivedAt
	}
	return r.pool.QueryRow(ctx, query,
		ticket.CustomerName,
		ticket.CustomerContact,
		ticket.TechnicianID,
		ticket.Status,
		ticket.Address,
		ticket.Location,
		ticket.Cost,
		receivedAt,
		ticket.CancellationReason,
		ticket.Product,
		ticket.BranchID,
		ticket.CreatedBy,
	).Scan(&ticket.ID, &ticket.TicketNo, &ticket.ReceivedAt, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        UPDATE service_tickets
        SET customer_name=$1, customer_contact=$2, technician_id=$3, status=$4, address=$5, location=$6,
            cost=$7, delivered_at=$8, cancellation_reason=$9, product=$10, branch_id=$11,
            updated_by=$12, updated_at=NOW()
        WHERE id=$13`

	cmd, err := r.pool.Exec(ctx, query,
		ticket.CustomerName,
		ticket.CustomerContact,
		ticket.TechnicianID,
		ticket.Status,
		ticket.Address,
		ticket.Location,
		ticket.Cost,
		ticket.DeliveredAt,
		ticket.CancellationReason,
		ticket.Product,
		ticket.BranchID,
		ticket.UpdatedBy,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.ServiceTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM service_tickets WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByTicketNo(ctx context.Context, ticketNo string) (*domain.ServiceTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM service_tickets WHERE ticket_no=$1`
	return r.fetchSingle(ctx, query, ticketNo)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTicket(row pgx.Row, ticket *domain.ServiceTicket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.TicketNo,
		&ticket.CustomerName,
		&ticket.CustomerContact,
		&ticket.TechnicianID,
		&ticket.Status,
		&ticket.Address,
		&ticket.Location,
		&ticket.Cost,
		&ticket.ReceivedAt,
		&ticket.DeliveredAt,
		&ticket.CancellationReason,
		&ticket.Product,
		&ticket.BranchID,
		&ticket.CreatedBy,
		&ticket.UpdatedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
}

// sortColumns whitelists the client-facing sort keys.
var sortColumns = map[string]string{
	"receivedDate": "received_at",
	"createdAt":    "created_at",
	"updatedAt":    "updated_at",
	"cost":         "cost",
	"status":       "status",
	"ticketNo":     "ticket_no",
}

func orderClause(sort string) string {
	direction := "ASC"
	key := strings.TrimSpace(sort)
	if strings.HasPrefix(key, "-") {
		direction = "DESC"
		key = key[1:]
	}
	column, ok := sortColumns[key]
	if !ok {
		return "ORDER BY created_at DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s", column, direction)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.ServiceTicket, error) {
	base := `SELECT ` + ticketColumns + ` FROM service_tickets`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.ReceivedFrom != nil {
		args = append(args, *filter.ReceivedFrom)
		clauses = append(clauses, fmt.Sprintf("received_at >= $%d", len(args)))
	}
	if filter.ReceivedTo != nil {
		args = append(args, *filter.ReceivedTo)
		clauses = append(clauses, fmt.Sprintf("received_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(customer_name) LIKE %s OR LOWER(customer_contact) LIKE %s OR LOWER(ticket_no) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s %s LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), orderClause(filter.Sort), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows pgx.Rows) ([]domain.ServiceTicket, error) {
	var result []domain.ServiceTicket
	for rows.Next() {
		var ticket domain.ServiceTicket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM service_tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) ListOverdue(ctx context.Context, cutoff time.Time) ([]domain.ServiceTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM service_tickets
        WHERE status NOT IN ($1, $2, $3) AND created_at < $4
        ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query,
		domain.StatusCompleted, domain.StatusCancelled, domain.StatusDelivered, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *ticketRepository) CountTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_tickets`).Scan(&total)
	return total, err
}

func (r *ticketRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM service_tickets GROUP BY status ORDER BY COUNT(*) DESC`)
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

func (r *ticketRepository) CountByBranch(ctx context.Context) ([]BranchCount, error) {
	const query = `
        SELECT t.branch_id, b.name, COUNT(*), COALESCE(SUM(t.cost), 0)
        FROM service_tickets t
        JOIN branches b ON b.id = t.branch_id
        GROUP BY t.branch_id, b.name
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

func (r *ticketRepository) Report(ctx context.Context, filter ReportFilter) ([]ReportRow, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`
        SELECT EXTRACT(YEAR FROM created_at)::int AS year,
               EXTRACT(MONTH FROM created_at)::int AS month,
               status,
               COUNT(*),
               COALESCE(SUM(cost), 0),
               COALESCE(AVG(cost), 0)
        FROM service_tickets
        WHERE %s
        GROUP BY year, month, status
        ORDER BY year DESC, month DESC`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReportRow
	for rows.Next() {
		var row ReportRow
		if err := rows.Scan(&row.Year, &row.Month, &row.Status, &row.Count, &row.TotalCost, &row.AvgCost); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
