package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixflow/repair-service/internal/domain"
)

// StaffRepository handles persistence for branch staff.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.Staff) error
	Update(ctx context.Context, staff *domain.Staff) error
	GetByID(ctx context.Context, id string) (*domain.Staff, error)
	GetByContact(ctx context.Context, contactNumber string) (*domain.Staff, error)
	GetActiveByContact(ctx context.Context, contactNumber string) (*domain.Staff, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error)
	Delete(ctx context.Context, id string) error
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role     *domain.Role
	BranchID *string
	Active   *bool
	Limit    int
	Offset   int
}

const staffColumns = `id, staff_name, contact_number, password_hash, role, branch_id, address, active_flag,
        created_by, updated_by, created_at, updated_at`

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	const query = `
        INSERT INTO staff (staff_name, contact_number, password_hash, role, branch_id, address, active_flag, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		staff.StaffName,
		staff.ContactNumber,
		staff.PasswordHash,
		staff.Role,
		staff.BranchID,
		staff.Address,
		staff.Active,
		staff.CreatedBy,
	).Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

func (r *staffRepository) Update(ctx context.Context, staff *domain.Staff) error {
	const query = `
        UPDATE staff
        SET staff_name=$1, contact_number=$2, password_hash=$3, role=$4, branch_id=$5, address=$6,
            active_flag=$7, updated_by=$8, updated_at=NOW()
        WHERE id=$9`

	cmd, err := r.pool.Exec(ctx, query,
		staff.StaffName,
		staff.ContactNumber,
		staff.PasswordHash,
		staff.Role,
		staff.BranchID,
		staff.Address,
		staff.Active,
		staff.UpdatedBy,
		staff.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *staffRepository) GetByContact(ctx context.Context, contactNumber string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE contact_number=$1`
	return r.fetchSingle(ctx, query, contactNumber)
}

func (r *staffRepository) GetActiveByContact(ctx context.Context, contactNumber string) (*domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff WHERE contact_number=$1 AND active_flag=TRUE`
	return r.fetchSingle(ctx, query, contactNumber)
}

func (r *staffRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Staff, error) {
	var staff domain.Staff
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.StaffName,
		&staff.ContactNumber,
		&staff.PasswordHash,
		&staff.Role,
		&staff.BranchID,
		&staff.Address,
		&staff.Active,
		&staff.CreatedBy,
		&staff.UpdatedBy,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.Staff, error) {
	query := `SELECT ` + staffColumns + ` FROM staff`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.BranchID != nil {
		args = append(args, *filter.BranchID)
		clauses = append(clauses, fmt.Sprintf("branch_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("active_flag=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY created_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
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

	var result []domain.Staff
	for rows.Next() {
		var staff domain.Staff
		if err := rows.Scan(
			&staff.ID,
			&staff.StaffName,
			&staff.ContactNumber,
			&staff.PasswordHash,
			&staff.Role,
			&staff.BranchID,
			&staff.Address,
			&staff.Active,
			&staff.CreatedBy,
			&staff.UpdatedBy,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

func (r *staffRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
