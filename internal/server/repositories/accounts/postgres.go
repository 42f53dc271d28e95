package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cmiyc/internal/common"
	"github.com/dmitrijs2005/cmiyc/internal/dbx"
	"github.com/dmitrijs2005/cmiyc/internal/server/models"
	"github.com/google/uuid"
)

// EmailConstraint is the unique index on lower(email).
const EmailConstraint = "accounts_email_lower_key"

const accountColumns = `id, first_name, last_name, middle_initial, email, password_hash,
       is_leader, is_admin, min_pace, max_pace, min_dist_pref, max_dist_pref,
       created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (id, first_name, last_name, middle_initial, email, password_hash,
                       is_leader, min_pace, max_pace, min_dist_pref, max_dist_pref)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
         RETURNING ` + accountColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.NewString(), a.FirstName, a.LastName, a.MiddleInitial, a.Email, a.PasswordHash,
		a.IsLeader, a.MinPace, a.MaxPace, a.MinDistPref, a.MaxDistPref)

	created, err := scanAccount(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindCredentials(ctx context.Context, email string) (string, string, error) {
	query :=
		`SELECT id, password_hash FROM accounts
         WHERE lower(email) = lower($1)`

	var id, hash string
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&id, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", common.ErrorNotFound
		}
		return "", "", fmt.Errorf("db error: %w", err)
	}
	return id, hash, nil
}

// EmailExists reports whether another account uses email. excludeID may be
// empty.
func (r *PostgresRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts
         WHERE lower(email) = lower($1) AND id::text <> $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Update writes only the columns set in u and returns the stored row. An
// empty update is a plain read.
func (r *PostgresRepository) Update(ctx context.Context, id string, u *models.AccountUpdate) (*models.Account, error) {
	if u.Empty() {
		return r.GetByID(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if u.FirstName != nil {
		set("first_name", *u.FirstName)
	}
	if u.LastName != nil {
		set("last_name", *u.LastName)
	}
	if u.MiddleInitial != nil {
		set("middle_initial", *u.MiddleInitial)
	}
	if u.Email != nil {
		set("email", *u.Email)
	}
	if u.MinPace != nil {
		set("min_pace", u.MinPace.Value)
	}
	if u.MaxPace != nil {
		set("max_pace", u.MaxPace.Value)
	}
	if u.MinDistPref != nil {
		set("min_dist_pref", u.MinDistPref.Value)
	}
	if u.MaxDistPref != nil {
		set("max_dist_pref", u.MaxDistPref.Value)
	}

	args = append(args, id)
	query := `UPDATE accounts SET ` + strings.Join(sets, ", ") + `, updated_at = now()
         WHERE id = $` + strconv.Itoa(len(args)) + `
         RETURNING ` + accountColumns

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, mapWriteError(err)
	}
	return a, nil
}

func (r *PostgresRepository) OtherPasswordHashes(ctx context.Context, excludeID string) ([]string, error) {
	query := `SELECT password_hash FROM accounts WHERE id::text <> $1`

	rows, err := r.db.QueryContext(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		hashes = append(hashes, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return hashes, nil
}

func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id, passwordHash string) error {
	query :=
		`UPDATE accounts SET password_hash = $1, updated_at = now()
         WHERE id = $2`

	return r.execOne(ctx, query, passwordHash, id)
}

// GrantAdmin sets the admin flag. Nothing in the repository clears it.
func (r *PostgresRepository) GrantAdmin(ctx context.Context, email string) error {
	query :=
		`UPDATE accounts SET is_admin = TRUE, updated_at = now()
         WHERE lower(email) = lower($1)`

	return r.execOne(ctx, query, email)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.MiddleInitial, &a.Email, &a.PasswordHash,
		&a.IsLeader, &a.IsAdmin, &a.MinPace, &a.MaxPace, &a.MinDistPref, &a.MaxDistPref,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func mapWriteError(err error) error {
	if dbx.IsUniqueViolation(err, EmailConstraint) {
		return fmt.Errorf("%w: email already registered", common.ErrorConflict)
	}
	return fmt.Errorf("db error: %w", err)
}
