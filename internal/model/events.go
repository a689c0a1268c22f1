package model

// EventKind - тип события, пришедшего из страницы
type EventKind string

const (
	KindPaint        EventKind = "paint"
	KindLongTask     EventKind = "longtask"
	KindLCPCandidate EventKind = "lcp-candidate"
	KindWebVital     EventKind = "web-vital"
	KindLifecycle    EventKind = "lifecycle"
)

// PageEvent - дискретное сообщение от наблюдателей внутри страницы.
// Все временные поля в миллисекундах от начала навигации.
type PageEvent struct {
	Kind         EventKind `json:"kind"`
	Name         string    `json:"name,omitempty"`
	StartTimeMs  float64   `json:"startTime,omitempty"`
	DurationMs   float64   `json:"duration,omitempty"`
	RenderTimeMs float64   `json:"renderTime,omitempty"`
	SizePx       float64   `json:"size,omitempty"`
	Value        float64   `json:"value,omitempty"`
	Delta        float64   `json:"delta,omitempty"`
}

// PaintEvent - событие отрисовки first-paint / first-contentful-paint
type PaintEvent struct {
	Name        string  `json:"name"`
	StartTimeMs float64 `json:"start_time_ms"`
}

// LongTask - задача основного потока длительностью свыше 50мс
type LongTask struct {
	StartTimeMs float64 `json:"start_time_ms"`
	DurationMs  float64 `json:"duration_ms"`
}

// LCPCandidate - очередной кандидат largest-contentful-paint.
// Авторитетен только последний по порядку прихода.
type LCPCandidate struct {
	StartTimeMs  float64 `json:"start_time_ms"`
	RenderTimeMs float64 `json:"render_time_ms"`
	SizePx       float64 `json:"size_px"`
}

// Vital - значение метрики от помощника web-vitals внутри страницы
type Vital struct {
	Value float64 `json:"value"`
	Delta float64 `json:"delta"`
}

// Snapshot - неизменяемая копия журнала событий одной сессии.
// Деривация по одному и тому же снимку всегда дает одинаковый результат.
type Snapshot struct {
	PaintEvents    []PaintEvent     `json:"paint_events"`
	LongTasks      []LongTask       `json:"long_tasks"`
	LCPCandidates  []LCPCandidate   `json:"lcp_candidates"`
	FieldVitals    map[string]Vital `json:"field_vitals"`
	LoadEventEndMs *float64         `json:"load_event_end_ms,omitempty"`
}
