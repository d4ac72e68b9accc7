package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixflow/repair-service/internal/domain"
)

// AdminRepository defines persistence access for administrative accounts.
type AdminRepository interface {
	Create(ctx context.Context, account *domain.AdminAccount) error
	Update(ctx context.Context, account *domain.AdminAccount) error
	GetByID(ctx context.Context, id string) (*domain.AdminAccount, error)
	GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error)
	List(ctx context.Context, limit, offset int) ([]domain.AdminAccount, error)
	Delete(ctx context.Context, id string) error
}

type adminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository returns a Postgres-backed implementation.
func NewAdminRepository(pool *pgxpool.Pool) AdminRepository {
	return &adminRepository{pool: pool}
}

func (r *adminRepository) Create(ctx context.Context, account *domain.AdminAccount) error {
	const query = `
        INSERT INTO admin_accounts (username, password_hash, role, created_by)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.CreatedBy,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *adminRepository) Update(ctx context.Context, account *domain.AdminAccount) error {
	const query = `
        UPDATE admin_accounts SET username=$1, password_hash=$2, role=$3, updated_by=$4, updated_at=NOW()
        WHERE id=$5`

	cmd, err := r.pool.Exec(ctx, query,
		account.Username,
		account.PasswordHash,
		account.Role,
		account.UpdatedBy,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *adminRepository) GetByID(ctx context.Context, id string) (*domain.AdminAccount, error) {
	const query = `
        SELECT id, username, password_hash, role, created_by, updated_by, created_at, updated_at
        FROM admin_accounts WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *adminRepository) GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	const query = `
        SELECT id, username, password_hash, role, created_by, updated_by, created_at, updated_at
        FROM admin_accounts WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

func (r *adminRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.AdminAccount, error) {
	var account domain.AdminAccount
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Role,
		&account.CreatedBy,
		&account.UpdatedBy,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *adminRepository) List(ctx context.Context, limit, offset int) ([]domain.AdminAccount, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, username, password_hash, role, created_by, updated_by, created_at, updated_at
        FROM admin_accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.AdminAccount
	for rows.Next() {
		var account domain.AdminAccount
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.PasswordHash,
			&account.Role,
			&account.CreatedBy,
			&account.UpdatedBy,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, account)
	}
	return result, rows.Err()
}

func (r *adminRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM admin_accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
