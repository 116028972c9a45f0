package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

// CreateAuditLog пишет запись журнала действий поддержки.
func (s *Storage) CreateAuditLog(ctx context.Context, entry models.AuditLog) error {
	const op = "storage.CreateAuditLog"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if err := insertAuditLog(ctx, s.DB, entry); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListAuditLogs возвращает записи журнала с пагинацией; targetUID фильтрует
// по пользователю, пустая строка — без фильтра.
func (s *Storage) ListAuditLogs(ctx context.Context, targetUID string, limit, offset int) ([]*models.AuditLog, error) {
	const op = "storage.ListAuditLogs"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, support_user_uid, target_user_uid, action, previous_state, new_state, created_at
			  FROM audit_logs
			  WHERE ($1 = '' OR target_user_uid::text = $1)
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, targetUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.AuditLog
	for rows.Next() {
		var entry models.AuditLog
		var prev, next []byte
		if err := rows.Scan(&entry.ID, &entry.SupportUserUID, &entry.TargetUserUID,
			&entry.Action, &prev, &next, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		entry.PreviousState = prev
		entry.NewState = next
		result = append(result, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
