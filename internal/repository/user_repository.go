package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/staff-schedule/internal/domain"
)

// UserRepository defines persistence access for employee accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
	tx   Transactor
}

// NewUserRepository returns a Postgres-backed implementation. An account and
// its roles are written in one transaction.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool, tx: NewTransactor(pool)}
}

const userColumns = `
        u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name, u.position,
        u.created_at, u.updated_at,
        COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}')`

const userFrom = `
        FROM users u LEFT JOIN user_roles r ON r.user_id = u.id`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (id, username, email, password_hash, first_name, last_name, position)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.pool)
		if err := db.QueryRow(ctx, query,
			user.ID,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Position,
		).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
			return mapPgError(err)
		}
		return r.replaceRoles(ctx, db, user.ID, user.Roles)
	})
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, password_hash=$3, first_name=$4, last_name=$5,
            position=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		db := conn(ctx, r.pool)
		if err := db.QueryRow(ctx, query,
			user.Username,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Position,
			user.ID,
		).Scan(&user.UpdatedAt); err != nil {
			return mapPgError(err)
		}
		return r.replaceRoles(ctx, db, user.ID, user.Roles)
	})
}

func (r *userRepository) replaceRoles(ctx context.Context, db querier, userID string, roles []domain.Role) error {
	if _, err := db.Exec(ctx, `DELETE FROM user_roles WHERE user_id=$1`, userID); err != nil {
		return err
	}
	roles = domain.SortRoles(roles)
	if len(roles) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(roles))
	for _, role := range roles {
		rows = append(rows, []any{userID, string(role)})
	}
	_, err := db.CopyFrom(ctx, pgx.Identifier{"user_roles"}, []string{"user_id", "role"}, pgx.CopyFromRows(rows))
	return err
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if !isUUID(id) {
		return ErrNotFound
	}
	cmd, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !isUUID(id) {
		return nil, ErrNotFound
	}
	query := `SELECT` + userColumns + userFrom + ` WHERE u.id=$1 GROUP BY u.id`
	return r.fetchSingle(ctx, query, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT` + userColumns + userFrom + ` WHERE u.username=$1 GROUP BY u.id`
	return r.fetchSingle(ctx, query, username)
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username=$1)`, username).Scan(&exists)
	return exists, err
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT` + userColumns + userFrom + ` GROUP BY u.id ORDER BY u.username`
	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx, query, arg))
	if err != nil {
		return nil, mapPgError(err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user  domain.User
		roles []string
	)
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Position,
		&user.CreatedAt,
		&user.UpdatedAt,
		&roles,
	); err != nil {
		return nil, err
	}
	for _, role := range roles {
		user.Roles = append(user.Roles, domain.Role(role))
	}
	return &user, nil
}
