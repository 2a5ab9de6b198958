package repository

import (
	"context"

	"hotel-booking/internal/domain/user"
	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"

	"github.com/google/uuid"
)

const updateLastLoginSQL = `UPDATE users SET last_login = now(), updated_at = now() WHERE id = $1`

const upsertUserSQL = `
INSERT INTO users (id, email, password_hash, role, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, true, $5, $5)
ON CONFLICT (email) DO UPDATE
SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, is_active = true, updated_at = now()
RETURNING id`

type UserRepository struct {
	db db.DBTX
}

func NewUserRepository(db db.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, tx db.DBTX, userID uuid.UUID) error {
	tag, err := tx.Exec(ctx, updateLastLoginSQL, userID)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) Upsert(ctx context.Context, tx db.DBTX, u *user.User) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, upsertUserSQL, u.ID(), u.Email().Value(), u.PasswordHash(), u.Role().String(), u.CreatedAt()).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to upsert user", err)
	}
	return id, nil
}
