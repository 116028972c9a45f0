// Package tokenprovider хранит внешний callback обновления токена доступа.
//
// Конкретный способ обновления (SDK провайдера аутентификации или сохранённый
// refresh-токен) регистрируется снаружи; при отсутствии зарегистрированного
// callback возвращается пустой токен без ошибки.
package tokenprovider

import (
	"context"
	"sync"
)

// RefreshFunc описывает внешний механизм получения свежего токена доступа.
type RefreshFunc func(ctx context.Context) (string, error)

// Provider потокобезопасно хранит зарегистрированный RefreshFunc.
type Provider struct {
	mu      sync.Mutex
	refresh RefreshFunc
}

// New создает пустой Provider без зарегистрированного callback.
func New() *Provider {
	return &Provider{}
}

// Register сохраняет callback обновления токена, заменяя предыдущий.
func (p *Provider) Register(fn RefreshFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh = fn
}

// Clear удаляет зарегистрированный callback.
func (p *Provider) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refresh = nil
}

// Refresh вызывает зарегистрированный callback.
// Если callback не зарегистрирован, возвращает пустой токен без ошибки.
func (p *Provider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	fn := p.refresh
	p.mu.Unlock()

	if fn == nil {
		return "", nil
	}
	return fn(ctx)
}

// Default — общий Provider процесса. Встраивающий клиент регистрирует свой
// механизм обновления один раз при старте; сам сервер callback не регистрирует.
var Default = New()

// Register сохраняет callback в общем Provider процесса.
func Register(fn RefreshFunc) { Default.Register(fn) }

// Clear удаляет callback из общего Provider процесса.
func Clear() { Default.Clear() }

// Refresh вызывает callback общего Provider процесса.
func Refresh(ctx context.Context) (string, error) { return Default.Refresh(ctx) }
