package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

// CreateGroup создаёт группу и добавляет создателя как администратора.
// Обе записи пишутся в одной транзакции; возвращает ID новой группы.
func (s *Storage) CreateGroup(ctx context.Context, name, creatorUID string) (int, error) {
	const op = "storage.CreateGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var newID int
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO groups (name, has_active_admin) VALUES ($1, true) RETURNING id`,
		name).Scan(&newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_uid, role) VALUES ($1, $2, $3)`,
		newID, creatorUID, models.RoleAdmin); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetGroup возвращает группу по её ID.
func (s *Storage) GetGroup(ctx context.Context, id int) (*models.Group, error) {
	const op = "storage.GetGroup"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, has_active_admin, read_only_until, created_at
			  FROM groups WHERE id = $1`
	var g models.Group
	var readOnlyUntil sql.NullTime
	if err := s.DB.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.HasActiveAdmin, &readOnlyUntil, &g.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if readOnlyUntil.Valid {
		g.ReadOnlyUntil = &readOnlyUntil.Time
	}
	return &g, nil
}

// GetGroupMember возвращает членство пользователя в группе вместе
// с присоединёнными данными пользователя. sql.ErrNoRows — не участник.
func (s *Storage) GetGroupMember(ctx context.Context, groupID int, userUID string) (*models.GroupMember, error) {
	const op = "storage.GetGroupMember"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT gm.id, gm.group_id, gm.user_uid, gm.role,
			      u.uid, u.email, u.username, u.is_subscribed, u.created_at
			  FROM group_members gm
			  JOIN users u ON u.uid = gm.user_uid
			  WHERE gm.group_id = $1 AND gm.user_uid = $2`
	var m models.GroupMember
	var u models.User
	if err := s.DB.QueryRowContext(ctx, query, groupID, userUID).Scan(
		&m.ID, &m.GroupID, &m.UserUID, &m.Role,
		&u.UID, &u.Email, &u.Username, &u.IsSubscribed, &u.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	m.User = &u
	return &m, nil
}

// ListGroupMembers возвращает всех участников группы с данными пользователей.
func (s *Storage) ListGroupMembers(ctx context.Context, groupID int) ([]*models.GroupMember, error) {
	const op = "storage.ListGroupMembers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT gm.id, gm.group_id, gm.user_uid, gm.role,
			      u.uid, u.email, u.username, u.is_subscribed, u.created_at
			  FROM group_members gm
			  JOIN users u ON u.uid = gm.user_uid
			  WHERE gm.group_id = $1
			  ORDER BY gm.id`
	rows, err := s.DB.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		var u models.User
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserUID, &m.Role,
			&u.UID, &u.Email, &u.Username, &u.IsSubscribed, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		m.User = &u
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAdminMemberships возвращает все группы, где пользователь занимает роль admin.
func (s *Storage) ListAdminMemberships(ctx context.Context, userUID string) ([]*models.GroupMember, error) {
	const op = "storage.ListAdminMemberships"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, group_id, user_uid, role
			  FROM group_members
			  WHERE user_uid = $1 AND role = $2
			  ORDER BY group_id`
	rows, err := s.DB.QueryContext(ctx, query, userUID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.GroupMember
	for rows.Next() {
		var m models.GroupMember
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserUID, &m.Role); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListGroupAdmins возвращает срез состояния подписки всех администраторов группы.
func (s *Storage) ListGroupAdmins(ctx context.Context, groupID int) ([]models.AdminState, error) {
	const op = "storage.ListGroupAdmins"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.is_subscribed, u.subscription_end_date
			  FROM group_members gm
			  JOIN users u ON u.uid = gm.user_uid
			  WHERE gm.group_id = $1 AND gm.role = $2`
	rows, err := s.DB.QueryContext(ctx, query, groupID, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []models.AdminState
	for rows.Next() {
		var a models.AdminState
		var endDate sql.NullTime
		if err := rows.Scan(&a.UserUID, &a.IsSubscribed, &endDate); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if endDate.Valid {
			a.SubscriptionEndDate = &endDate.Time
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
