package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, email, username, password_hash, full_name, role,
	avatar_url, allowed_modules, is_active, totp_secret, totp_enabled_at,
	last_login, created_at`

func (r *usersRepo) GetByID(ctx context.Context, id int64) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *usersRepo) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (r *usersRepo) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) Create(ctx context.Context, u domain.User) (int64, error) {
	modules, err := encodeModules(u.AllowedModules)
	if err != nil {
		return 0, err
	}

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			email, username, password_hash, full_name, role,
			avatar_url, allowed_modules, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email,
		mapOptionalString(u.Username),
		u.PasswordHash,
		u.FullName,
		string(u.Role),
		mapOptionalString(u.AvatarURL),
		modules,
		u.IsActive,
		createdAt,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *usersRepo) Update(ctx context.Context, u domain.User) error {
	modules, err := encodeModules(u.AllowedModules)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			email = ?,
			username = ?,
			full_name = ?,
			role = ?,
			avatar_url = ?,
			allowed_modules = ?,
			is_active = ?
		WHERE id = ?`,
		u.Email,
		mapOptionalString(u.Username),
		u.FullName,
		string(u.Role),
		mapOptionalString(u.AvatarURL),
		modules,
		u.IsActive,
		u.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return requireRow(res)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) TouchLastLogin(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) SetTOTPSecret(ctx context.Context, id int64, secret string) error {
	var ns sql.NullString
	if secret != "" {
		ns = sql.NullString{String: secret, Valid: true}
	}
	// Clearing the secret also clears the enabled flag; a fresh secret
	// starts unconfirmed.
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET totp_secret = ?, totp_enabled_at = NULL WHERE id = ?`, ns, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *usersRepo) EnableTOTP(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET totp_enabled_at = ?
		WHERE id = ? AND totp_secret IS NOT NULL`,
		time.Now().UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps a zero-row UPDATE to ErrNotFound so callers can tell a
// missing user apart from a silent no-op.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mapNotFound(sql.ErrNoRows)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u             domain.User
		username      sql.NullString
		role          string
		avatarURL     sql.NullString
		modules       sql.NullString
		totpSecret    sql.NullString
		totpEnabledAt sql.NullTime
		lastLogin     sql.NullTime
	)

	err := row.Scan(
		&u.ID, &u.Email, &username, &u.PasswordHash, &u.FullName, &role,
		&avatarURL, &modules, &u.IsActive, &totpSecret, &totpEnabledAt,
		&lastLogin, &u.CreatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Username = mapNullStringPtr(username)
	u.Role = domain.Role(role)
	u.AvatarURL = mapNullStringPtr(avatarURL)
	u.TOTPSecret = mapNullStringPtr(totpSecret)
	u.TOTPEnabledAt = mapNullTimePtr(totpEnabledAt)
	u.LastLogin = mapNullTimePtr(lastLogin)

	u.AllowedModules, err = decodeModules(modules)
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
