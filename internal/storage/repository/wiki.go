package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/family-hub/internal/models"
)

// CreateWikiDocument вставляет новый wiki-документ и возвращает его ID.
// Title и Content приходят уже зашифрованными.
func (s *Storage) CreateWikiDocument(ctx context.Context, doc models.WikiDocument) (int, error) {
	const op = "storage.CreateWikiDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO wiki_documents (group_id, title, content, created_by)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		doc.GroupID, doc.Title, doc.Content, doc.CreatedBy).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadWikiDocument возвращает wiki-документ по ID внутри группы.
func (s *Storage) ReadWikiDocument(ctx context.Context, groupID, id int) (*models.WikiDocument, error) {
	const op = "storage.ReadWikiDocument"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, group_id, title, content, created_by, created_at, updated_at
			  FROM wiki_documents WHERE group_id = $1 AND id = $2`
	var doc models.WikiDocument
	if err := s.DB.QueryRowContext(ctx, query, groupID, id).Scan(
		&doc.ID, &doc.GroupID, &doc.Title, &doc.Content,
		&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &doc, nil
}

// ListWikiDocuments возвращает wiki-документы группы с пагинацией.
func (s *Storage) ListWikiDocuments(ctx context.Context, groupID, limit, offset int) ([]*models.WikiDocument, error) {
	const op = "storage.ListWikiDocuments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, group_id, title, content, created_by, created_at, updated_at
			  FROM wiki_documents
			  WHERE group_id = $1
			  ORDER BY updated_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var result []*models.WikiDocument
	for rows.Next() {
		var doc models.WikiDocument
		if err := rows.Scan(&doc.ID, &doc.GroupID, &doc.Title, &doc.Content,
			&doc.CreatedBy, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateWikiDocument обновляет заголовок и содержимое документа,
// возвращает количество изменённых строк.
func (s *Storage) UpdateWikiDocument(ctx context.Context, groupID, id int, title, content string) (int, error) {
	const op = "storage.UpdateWikiDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE wiki_documents
			  SET title = $3, content = $4, updated_at = now()
			  WHERE group_id = $1 AND id = $2`
	result, err := s.DB.ExecContext(ctx, query, groupID, id, title, content)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveWikiDocument удаляет документ, возвращает количество удалённых строк.
func (s *Storage) RemoveWikiDocument(ctx context.Context, groupID, id int) (int, error) {
	const op = "storage.RemoveWikiDocument"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx,
		`DELETE FROM wiki_documents WHERE group_id = $1 AND id = $2`, groupID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
