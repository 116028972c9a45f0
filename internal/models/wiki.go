// Package models содержит доменную модель wiki-документа группы.
package models

import "time"

// WikiDocument представляет документ wiki внутри группы.
// Title и Content хранятся в базе в зашифрованном виде; в бизнес-логике
// и в ответах API поля всегда расшифрованы.
type WikiDocument struct {
	ID        int       `json:"id"`
	GroupID   int       `json:"group_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyWikiDocument используется для приёма данных документа из JSON-запроса.
type DummyWikiDocument struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content"`
}
