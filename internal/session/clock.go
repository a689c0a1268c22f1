package session

import (
	"context"
	"time"
)

// Clock - абстракция ожидания, подменяемая в тестах
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewClock возвращает часы на реальных таймерах
func NewClock() Clock {
	return realClock{}
}
