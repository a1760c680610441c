package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/vidhub/internal/api/domain"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, username, email, fullname, avatar, cover_image, password_hash,
	refresh_token, refresh_token_expires_at, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var (
		u                    domain.User
		cover, refresh       sql.NullString
		refreshExp           sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Fullname, &u.Avatar, &cover, &u.PasswordHash,
		&refresh, &refreshExp, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.CoverImage = mapNullString(cover)
	u.RefreshToken = mapNullString(refresh)
	u.RefreshTokenExpiresAt = mapNullMillisPtr(refreshExp)
	u.CreatedAt = fromMillis(createdAt)
	u.UpdatedAt = fromMillis(updatedAt)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *usersRepo) FindUserByUsernameOrEmail(ctx context.Context, username, email string) (domain.User, error) {
	switch {
	case username != "" && email != "":
		return scanUser(r.db.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ? ORDER BY id LIMIT 1`,
			username, email))
	case username != "":
		return scanUser(r.db.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	case email != "":
		return scanUser(r.db.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	default:
		return domain.User{}, store.ErrNotFound
	}
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	var refreshExp sql.NullInt64
	if u.RefreshTokenExpiresAt != nil {
		refreshExp = sql.NullInt64{Int64: toMillis(*u.RefreshTokenExpiresAt), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.Fullname, u.Avatar, mapStringNull(u.CoverImage), u.PasswordHash,
		mapStringNull(u.RefreshToken), refreshExp, toMillis(u.CreatedAt), toMillis(u.UpdatedAt),
	)
	return mapConstraint(err)
}

func (r *usersRepo) SetRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	var exp sql.NullInt64
	if token != "" {
		exp = sql.NullInt64{Int64: toMillis(expiresAt), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = ?, refresh_token_expires_at = ?, updated_at = ?
		WHERE id = ?`,
		mapStringNull(token), exp, toMillis(time.Now()), userID,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrNotFound)
}

func (r *usersRepo) SwapRefreshToken(ctx context.Context, userID, current, next string, expiresAt time.Time) error {
	if current == "" {
		return store.ErrTokenMismatch
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = ?, refresh_token_expires_at = ?, updated_at = ?
		WHERE id = ? AND refresh_token = ?`,
		mapStringNull(next), toMillis(expiresAt), toMillis(time.Now()), userID, current,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, store.ErrTokenMismatch)
}

func (r *usersRepo) ClearExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE refresh_token IS NOT NULL AND refresh_token_expires_at < ?`,
		toMillis(now),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireOneRow(res sql.Result, otherwise error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return otherwise
	}
	return nil
}
