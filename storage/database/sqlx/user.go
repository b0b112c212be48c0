package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schooldash/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

type userRow struct {
	ID           int         `db:"id"`
	Username     string      `db:"username"`
	PasswordHash []byte      `db:"password_hash"`
	Role         string      `db:"role"`
	PersonID     null.String `db:"person_id"`
	IsActive     bool        `db:"is_active"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Username:     usr.Username,
		PasswordHash: usr.PasswordHash,
		Role:         usr.Role,
		PersonID:     null.NewString(usr.PersonID, usr.PersonID != ""),
		IsActive:     usr.IsActive,
		CreatedAt:    null.NewTime(usr.CreatedAt.UTC(), !usr.CreatedAt.IsZero()),
		UpdatedAt:    null.NewTime(usr.UpdatedAt.UTC(), !usr.UpdatedAt.IsZero()),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	return user.User{
		ID:           row.ID,
		Username:     row.Username,
		Role:         row.Role,
		PersonID:     row.PersonID.String,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

const selectUser = `SELECT id, username, password_hash, role, person_id, is_active, created_at, updated_at, last_login FROM "app_user"`

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var row userRow
	var err error
	switch {
	case filter.ID != 0:
		err = repo.db.GetContext(ctx, &row, selectUser+` WHERE id = $1`, filter.ID)
	case filter.Username != "":
		err = repo.db.GetContext(ctx, &row, selectUser+` WHERE username = $1`, filter.Username)
	default:
		return user.User{}, user.ErrNotFound
	}
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `INSERT INTO "app_user" (username, password_hash, role, person_id, is_active, created_at, updated_at, last_login)
		VALUES (:username, :password_hash, :role, :person_id, :is_active, :created_at, :updated_at, :last_login)
		RETURNING id`
	stmt, err := repo.db.PrepareNamedContext(ctx, q)
	if err != nil {
		return user.User{}, errors.Wrap(err, "preparing user insert")
	}
	defer func() { _ = stmt.Close() }()

	if err = stmt.GetContext(ctx, &usr.ID, repo.boil(usr)); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `UPDATE "app_user" SET username = :username, password_hash = :password_hash, role = :role,
		person_id = :person_id, is_active = :is_active, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(usr))
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}
