// Package services содержит бизнес-логику работы с wiki-документами,
// включая прозрачное шифрование полей и кеширование.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/family-hub/internal/lib/seal"
	"github.com/magabrotheeeer/family-hub/internal/models"
)

// WikiRepository определяет методы для работы с wiki-документами в хранилище.
type WikiRepository interface {
	// CreateWikiDocument добавляет документ и возвращает его ID.
	CreateWikiDocument(ctx context.Context, doc models.WikiDocument) (int, error)
	// ReadWikiDocument возвращает документ по ID внутри группы.
	ReadWikiDocument(ctx context.Context, groupID, id int) (*models.WikiDocument, error)
	// ListWikiDocuments возвращает документы группы с пагинацией.
	ListWikiDocuments(ctx context.Context, groupID, limit, offset int) ([]*models.WikiDocument, error)
	// UpdateWikiDocument обновляет документ, возвращает количество изменённых строк.
	UpdateWikiDocument(ctx context.Context, groupID, id int, title, content string) (int, error)
	// RemoveWikiDocument удаляет документ, возвращает количество удалённых строк.
	RemoveWikiDocument(ctx context.Context, groupID, id int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// WikiService реализует бизнес-логику работы с wiki-документами.
//
// Перед записью в хранилище заголовок и содержимое шифруются; при чтении
// расшифровываются. Строки без префикса шифрования (записанные до его
// включения) возвращаются как есть. Расшифрованные документы кешируются.
type WikiService struct {
	repo  WikiRepository
	codec *seal.Codec
	cache Cache
	log   *slog.Logger
}

// NewWikiService создает новый экземпляр WikiService.
func NewWikiService(repo WikiRepository, codec *seal.Codec, cache Cache, log *slog.Logger) *WikiService {
	return &WikiService{
		repo:  repo,
		codec: codec,
		cache: cache,
		log:   log,
	}
}

func cacheKey(groupID, id int) string {
	return fmt.Sprintf("wiki:%d:%d", groupID, id)
}

// Create шифрует поля документа, сохраняет его и возвращает ID.
func (s *WikiService) Create(ctx context.Context, groupID int, authorUID string, req models.DummyWikiDocument) (int, error) {
	encTitle, err := s.codec.Encrypt(req.Title)
	if err != nil {
		return 0, fmt.Errorf("encrypt title: %w", err)
	}
	encContent, err := s.codec.Encrypt(req.Content)
	if err != nil {
		return 0, fmt.Errorf("encrypt content: %w", err)
	}

	id, err := s.repo.CreateWikiDocument(ctx, models.WikiDocument{
		GroupID:   groupID,
		Title:     encTitle,
		Content:   encContent,
		CreatedBy: authorUID,
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("created wiki document", slog.Int("id", id), slog.Int("group_id", groupID))
	return id, nil
}

// Read возвращает расшифрованный документ, используя кеш.
func (s *WikiService) Read(ctx context.Context, groupID, id int) (*models.WikiDocument, error) {
	key := cacheKey(groupID, id)
	var cached models.WikiDocument
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("failed to read wiki cache", slog.String("key", key), slog.Any("err", err))
	}
	if found {
		return &cached, nil
	}

	doc, err := s.repo.ReadWikiDocument(ctx, groupID, id)
	if err != nil {
		return nil, err
	}
	s.decryptDocument(doc)

	if err := s.cache.Set(key, doc, time.Hour); err != nil {
		s.log.Warn("failed to cache wiki document", slog.String("key", key), slog.Any("err", err))
	}
	return doc, nil
}

// List возвращает расшифрованные документы группы.
func (s *WikiService) List(ctx context.Context, groupID, limit, offset int) ([]*models.WikiDocument, error) {
	docs, err := s.repo.ListWikiDocuments(ctx, groupID, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		s.decryptDocument(doc)
	}
	return docs, nil
}

// Update шифрует новые значения, обновляет документ и сбрасывает кеш.
// Возвращает количество изменённых строк.
func (s *WikiService) Update(ctx context.Context, groupID, id int, req models.DummyWikiDocument) (int, error) {
	encTitle, err := s.codec.Encrypt(req.Title)
	if err != nil {
		return 0, fmt.Errorf("encrypt title: %w", err)
	}
	encContent, err := s.codec.Encrypt(req.Content)
	if err != nil {
		return 0, fmt.Errorf("encrypt content: %w", err)
	}

	updated, err := s.repo.UpdateWikiDocument(ctx, groupID, id, encTitle, encContent)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(cacheKey(groupID, id)); err != nil {
		s.log.Warn("failed to invalidate wiki cache", slog.Any("err", err))
	}
	return updated, nil
}

// Remove удаляет документ и сбрасывает кеш. Возвращает количество удалённых строк.
func (s *WikiService) Remove(ctx context.Context, groupID, id int) (int, error) {
	removed, err := s.repo.RemoveWikiDocument(ctx, groupID, id)
	if err != nil {
		return 0, err
	}
	if err := s.cache.Invalidate(cacheKey(groupID, id)); err != nil {
		s.log.Warn("failed to invalidate wiki cache", slog.Any("err", err))
	}
	return removed, nil
}

// decryptDocument расшифровывает поля на месте; старые незашифрованные
// значения остаются без изменений.
func (s *WikiService) decryptDocument(doc *models.WikiDocument) {
	doc.Title = s.codec.DecryptOrRaw(doc.Title)
	doc.Content = s.codec.DecryptOrRaw(doc.Content)
}
