package collector

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

// EventLog - журнал событий одной сессии замера. Только дописывается,
// записи никогда не удаляются и не правятся задним числом, поэтому
// деривация по снимку идемпотентна в любой момент сессии.
type EventLog struct {
	mu     sync.RWMutex
	events []model.PageEvent
}

// NewEventLog создает пустой журнал событий
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Append дописывает событие в журнал
func (l *EventLog) Append(event model.PageEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Len возвращает число накопленных событий
func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// RunningLCP возвращает текущее значение LCP: startTime последнего
// по порядку прихода кандидата. false, если кандидатов еще не было.
func (l *EventLog) RunningLCP() (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Kind == model.KindLCPCandidate {
			return l.events[i].StartTimeMs, true
		}
	}
	return 0, false
}

// Snapshot возвращает неизменяемую копию журнала, разложенную по типам
// событий. Для web-vital с одинаковым именем авторитетно последнее значение.
func (l *EventLog) Snapshot() model.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snap := model.Snapshot{
		FieldVitals: make(map[string]model.Vital),
	}

	for _, e := range l.events {
		switch e.Kind {
		case model.KindPaint:
			snap.PaintEvents = append(snap.PaintEvents, model.PaintEvent{
				Name:        e.Name,
				StartTimeMs: e.StartTimeMs,
			})
		case model.KindLongTask:
			snap.LongTasks = append(snap.LongTasks, model.LongTask{
				StartTimeMs: e.StartTimeMs,
				DurationMs:  e.DurationMs,
			})
		case model.KindLCPCandidate:
			snap.LCPCandidates = append(snap.LCPCandidates, model.LCPCandidate{
				StartTimeMs:  e.StartTimeMs,
				RenderTimeMs: e.RenderTimeMs,
				SizePx:       e.SizePx,
			})
		case model.KindWebVital:
			snap.FieldVitals[e.Name] = model.Vital{
				Value: e.Value,
				Delta: e.Delta,
			}
		case model.KindLifecycle:
			if e.Name == "loadEventEnd" && e.StartTimeMs > 0 {
				v := e.StartTimeMs
				snap.LoadEventEndMs = &v
			}
		}
	}

	return snap
}

// DecodeEvent разбирает JSON-сообщение, пришедшее из страницы
func DecodeEvent(payload []byte) (model.PageEvent, error) {
	var event model.PageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return model.PageEvent{}, fmt.Errorf("failed to decode page event: %w", err)
	}
	if event.Kind == "" {
		return model.PageEvent{}, fmt.Errorf("page event without kind")
	}
	return event, nil
}
