package readstore

import (
	"context"

	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/pkg/pgconv"
	"hotel-booking/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findUserByIDSQL = `SELECT id, email, role, is_active, last_login FROM users WHERE id = $1`

const findUserByEmailSQL = `SELECT id, email, role, is_active, last_login, password_hash FROM users WHERE email = $1`

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(db db.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.AuthorizedUserView, error) {
	var (
		v         queries.AuthorizedUserView
		lastLogin pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, findUserByIDSQL, id).Scan(&v.ID, &v.Email, &v.Role, &v.IsActive, &lastLogin)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}
	v.LastLogin = pgconv.TimePtrFromPgtype(lastLogin)
	return &v, nil
}

// FindByEmail also returns the password hash for credential checks.
func (r *UserReadStore) FindByEmail(ctx context.Context, email string) (*queries.AuthorizedUserView, string, error) {
	var (
		v         queries.AuthorizedUserView
		lastLogin pgtype.Timestamptz
		hash      string
	)
	err := r.db.QueryRow(ctx, findUserByEmailSQL, email).Scan(&v.ID, &v.Email, &v.Role, &v.IsActive, &lastLogin, &hash)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, "", infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, "", infra.WrapRepoErr("failed to find user by email", err)
	}
	v.LastLogin = pgconv.TimePtrFromPgtype(lastLogin)
	return &v, hash, nil
}
