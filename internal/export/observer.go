package export

import (
	"sync"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

// ResultObserver - интерфейс для конкретных наблюдателей результатов
type ResultObserver interface {
	OnAuditCompleted(result model.AuditResult)
}

// Publisher рассылает завершенные аудиты зарегистрированным наблюдателям
type Publisher struct {
	observers []ResultObserver
	mu        sync.RWMutex
}

// NewPublisher создает издатель результатов
func NewPublisher() *Publisher {
	return &Publisher{
		observers: make([]ResultObserver, 0),
	}
}

// Register добавляет наблюдателя
func (p *Publisher) Register(observer ResultObserver) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Publish синхронно передает результат всем наблюдателям
func (p *Publisher) Publish(result model.AuditResult) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, observer := range p.observers {
		observer.OnAuditCompleted(result)
	}
}
