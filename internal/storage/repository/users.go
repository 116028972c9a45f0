package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

const userColumns = `uid, email, username, password_hash, is_support_user, is_subscribed,
			      subscription_end_date, renewal_date, subscription_manually_expired,
			      is_locked, locked_at, locked_reason, created_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var endDate, renewalDate, lockedAt sql.NullTime
	var lockedReason sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash, &u.IsSupportUser,
		&u.IsSubscribed, &endDate, &renewalDate, &u.SubscriptionManuallyExpired,
		&u.IsLocked, &lockedAt, &lockedReason, &u.CreatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		u.SubscriptionEndDate = &endDate.Time
	}
	if renewalDate.Valid {
		u.RenewalDate = &renewalDate.Time
	}
	if lockedAt.Valid {
		u.LockedAt = &lockedAt.Time
	}
	if lockedReason.Valid {
		u.LockedReason = lockedReason.String
	}
	return u, nil
}

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (email, username, password_hash, is_support_user, is_subscribed)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.IsSupportUser,
		user.IsSubscribed).Scan(&newUID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

// GetUserByUsername возвращает пользователя по его username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE uid = $1`
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, uid))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// ListUsers возвращает пользователей с поиском по email или username и пагинацией.
func (s *Storage) ListUsers(ctx context.Context, search string, limit, offset int) ([]*models.User, error) {
	const op = "storage.ListUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE ($1 = '' OR email ILIKE '%' || $1 || '%' OR username ILIKE '%' || $1 || '%')
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateUserSubscription выставляет флаг подписки. При включении подписки
// сбрасывается признак ручного завершения. Возвращает количество изменённых строк.
func (s *Storage) UpdateUserSubscription(ctx context.Context, uid string, isSubscribed bool) (int, error) {
	const op = "storage.UpdateUserSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_subscribed = $2,
			      subscription_manually_expired = CASE WHEN $2 THEN false ELSE subscription_manually_expired END
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid, isSubscribed)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RestoreActiveAdmin возвращает группам, где пользователь занимает роль admin,
// признак наличия активного администратора. Обратный каскад при возобновлении подписки.
func (s *Storage) RestoreActiveAdmin(ctx context.Context, uid string) error {
	const op = "storage.RestoreActiveAdmin"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE groups
			  SET has_active_admin = true
			  WHERE id IN (SELECT group_id FROM group_members WHERE user_uid = $1 AND role = 'admin')`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetSupportAccess выставляет признак сотрудника поддержки.
func (s *Storage) SetSupportAccess(ctx context.Context, uid string, isSupportUser bool) (int, error) {
	const op = "storage.SetSupportAccess"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET is_support_user = $2 WHERE uid = $1`, uid, isSupportUser)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetLock блокирует или разблокирует учётную запись. При блокировке
// фиксируются момент и причина, при разблокировке — очищаются.
func (s *Storage) SetLock(ctx context.Context, uid string, locked bool, reason string, at time.Time) (int, error) {
	const op = "storage.SetLock"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET is_locked = $2,
			      locked_at = CASE WHEN $2 THEN $3 ELSE NULL END,
			      locked_reason = CASE WHEN $2 THEN $4 ELSE NULL END
			  WHERE uid = $1`
	result, err := s.DB.ExecContext(ctx, query, uid, locked, at, reason)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetSubscriptionEndDate выставляет дату окончания подписки, nil очищает её.
func (s *Storage) SetSubscriptionEndDate(ctx context.Context, uid string, endDate *time.Time) (int, error) {
	const op = "storage.SetSubscriptionEndDate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET subscription_end_date = $2 WHERE uid = $1`, uid, endDate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SetRenewalDate выставляет дату следующего продления, nil очищает её.
func (s *Storage) SetRenewalDate(ctx context.Context, uid string, renewalDate *time.Time) (int, error) {
	const op = "storage.SetRenewalDate"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE users SET renewal_date = $2 WHERE uid = $1`, uid, renewalDate)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ApplyExpiry атомарно применяет завершение подписки: помечает пользователя,
// выполняет действия каскада по группам и пишет запись журнала.
// Строка пользователя блокируется FOR UPDATE, поэтому параллельные завершения
// одного пользователя сериализуются.
func (s *Storage) ApplyExpiry(ctx context.Context, uid string, now time.Time,
	actions []models.ExpiryAction, audit models.AuditLog) error {
	const op = "storage.ApplyExpiry"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var lockedUID string
	if err := tx.QueryRowContext(ctx,
		`SELECT uid FROM users WHERE uid = $1 FOR UPDATE`, uid).Scan(&lockedUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET is_subscribed = false,
		     subscription_manually_expired = true,
		     subscription_end_date = $2,
		     renewal_date = NULL
		 WHERE uid = $1`, uid, now); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, action := range actions {
		if action.DowngradeRole {
			_, err = tx.ExecContext(ctx,
				`UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_uid = $2`,
				action.GroupID, uid, models.RoleAdult)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE groups SET has_active_admin = false WHERE id = $1`, action.GroupID)
		}
		if err != nil {
			return fmt.Errorf("%s: group %d: %w", op, action.GroupID, err)
		}
	}

	if err := insertAuditLog(ctx, tx, audit); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAuditLog(ctx context.Context, db execer, entry models.AuditLog) error {
	prev := entry.PreviousState
	if prev == nil {
		prev = json.RawMessage(`{}`)
	}
	next := entry.NewState
	if next == nil {
		next = json.RawMessage(`{}`)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_logs (support_user_uid, target_user_uid, action, previous_state, new_state)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.SupportUserUID, entry.TargetUserUID, entry.Action, []byte(prev), []byte(next))
	return err
}
