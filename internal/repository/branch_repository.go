package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixflow/repair-service/internal/domain"
)

// BranchRepository handles persistence for branches and their staff rosters.
type BranchRepository interface {
	Create(ctx context.Context, branch *domain.Branch) error
	Update(ctx context.Context, branch *domain.Branch) error
	GetByID(ctx context.Context, id string) (*domain.Branch, error)
	// GetByNameFold does a case-insensitive name lookup, optionally excluding
	// one branch id (for duplicate checks on update).
	GetByNameFold(ctx context.Context, name string, excludeID *string) (*domain.Branch, error)
	List(ctx context.Context, filter BranchFilter) ([]domain.Branch, error)
	Delete(ctx context.Context, id string) error
	AddStaff(ctx context.Context, branchID, staffID, updatedBy string) error
	RemoveStaff(ctx context.Context, branchID, staffID, updatedBy string) error
}

// BranchFilter defines query params for branch listing.
type BranchFilter struct {
	Active *bool
	Limit  int
	Offset int
}

const branchColumns = `id, name, phone_number, location, address, staff_ids, active_flag,
        created_by, updated_by, created_at, updated_at`

type branchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository instantiates the repository.
func NewBranchRepository(pool *pgxpool.Pool) BranchRepository {
	return &branchRepository{pool: pool}
}

func (r *branchRepository) Create(ctx context.Context, branch *domain.Branch) error {
	const query = `
        INSERT INTO branches (name, phone_number, location, address, staff_ids, active_flag, created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`

	if branch.StaffIDs == nil {
		branch.StaffIDs = []string{}
	}
	return r.pool.QueryRow(ctx, query,
		branch.Name,
		branch.PhoneNumber,
		branch.Location,
		branch.Address,
		branch.StaffIDs,
		branch.Active,
		branch.CreatedBy,
	).Scan(&branch.ID, &branch.CreatedAt, &branch.UpdatedAt)
}

func (r *branchRepository) Update(ctx context.Context, branch *domain.Branch) error {
	const query = `
        UPDATE branches
        SET name=$1, phone_number=$2, location=$3, address=$4, staff_ids=$5, active_flag=$6,
            updated_by=$7, updated_at=NOW()
        WHERE id=$8`

	cmd, err := r.pool.Exec(ctx, query,
		branch.Name,
		branch.PhoneNumber,
		branch.Location,
		branch.Address,
		branch.StaffIDs,
		branch.Active,
		branch.UpdatedBy,
		branch.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *branchRepository) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE id=$1`
	return r.fetchSingle(ctx, r.pool.QueryRow(ctx, query, id))
}

func (r *branchRepository) GetByNameFold(ctx context.Context, name string, excludeID *string) (*domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches WHERE LOWER(name)=LOWER($1)`
	args := []any{name}
	if excludeID != nil {
		query += ` AND id <> $2`
		args = append(args, *excludeID)
	}
	return r.fetchSingle(ctx, r.pool.QueryRow(ctx, query, args...))
}

func (r *branchRepository) fetchSingle(ctx context.Context, row pgx.Row) (*domain.Branch, error) {
	var branch domain.Branch
	if err := row.Scan(
		&branch.ID,
		&branch.Name,
		&branch.PhoneNumber,
		&branch.Location,
		&branch.Address,
		&branch.StaffIDs,
		&branch.Active,
		&branch.CreatedBy,
		&branch.UpdatedBy,
		&branch.CreatedAt,
		&branch.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (r *branchRepository) List(ctx context.Context, filter BranchFilter) ([]domain.Branch, error) {
	query := `SELECT ` + branchColumns + ` FROM branches`
	args := []any{}
	clauses := []string{}

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

	var result []domain.Branch
	for rows.Next() {
		var branch domain.Branch
		if err := rows.Scan(
			&branch.ID,
			&branch.Name,
			&branch.PhoneNumber,
			&branch.Location,
			&branch.Address,
			&branch.StaffIDs,
			&branch.Active,
			&branch.CreatedBy,
			&branch.UpdatedBy,
			&branch.CreatedAt,
			&branch.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, branch)
	}
	return result, rows.Err()
}

func (r *branchRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM branches WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *branchRepository) AddStaff(ctx context.Context, branchID, staffID, updatedBy string) error {
	const query = `
        UPDATE branches
        SET staff_ids = CASE WHEN $2 = ANY(staff_ids) THEN staff_ids ELSE array_append(staff_ids, $2) END,
            updated_by=$3, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, branchID, staffID, updatedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *branchRepository) RemoveStaff(ctx context.Context, branchID, staffID, updatedBy string) error {
	const query = `
        UPDATE branches
        SET staff_ids = array_remove(staff_ids, $2), updated_by=$3, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.pool.Exec(ctx, query, branchID, staffID, updatedBy)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
