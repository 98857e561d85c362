package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ulchatur/app/internal/domain"
	"github.com/ulchatur/app/internal/repository"
)

const selectUserColumns = `SELECT id, name, email, created_at FROM users`

// errNoUpdatableFields guards against an update reaching the store with an
// empty field set; the service layer rejects those before calling here.
var errNoUpdatableFields = errors.New("mysql: no updatable fields")

// CreateUser inserts a user and returns the stored row, including the
// database-assigned id and creation timestamp.
func (r *Repository) CreateUser(ctx context.Context, name, email string) (*domain.User, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	const query = `INSERT INTO users (name, email) VALUES (?, ?)`
	res, err := conn.ExecContext(ctx, query, name, email)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return scanUser(conn.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id))
}

// GetUserByID retrieves a user by primary key.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return scanUser(conn.QueryRowContext(ctx, selectUserColumns+` WHERE id = ?`, id))
}

// ListUsers returns all users, most recent first.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	conn, err := r.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, selectUserColumns+` ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser applies a partial update. Only the fields set in input are
// written; existence is decided by the affected-row count.
func (r *Repository) UpdateUser(ctx context.Context, id int64, input repository.UpdateUserInput) error {
	setClause, args, ok := buildUserUpdate(input)
	if !ok {
		return errNoUpdatableFields
	}

	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	args = append(args, id)
	res, err := conn.ExecContext(ctx, `UPDATE users SET `+setClause+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteUser removes a user by id. The id is never reassigned afterwards.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	conn, err := r.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// buildUserUpdate collects SET fragments for the fields present in input,
// walking a fixed column order so the statement shape is deterministic.
// Values are always bound positionally, never spliced into the SQL text.
func buildUserUpdate(input repository.UpdateUserInput) (string, []any, bool) {
	setClauses := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if input.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *input.Name)
	}
	if input.Email != nil {
		setClauses = append(setClauses, "email = ?")
		args = append(args, *input.Email)
	}
	if len(setClauses) == 0 {
		return "", nil, false
	}
	return strings.Join(setClauses, ", "), args, true
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser maps a single row onto the domain type, translating the driver's
// no-rows sentinel into the repository's.
func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
