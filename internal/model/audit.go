package model

import "time"

// AuditResult - результат аудита одного URL по двум профилям.
// Nil-бандл профиля означает полный провал замера этого профиля.
type AuditResult struct {
	Timestamp time.Time     `json:"-"`
	Ts        int64         `json:"ts"` // Unix timestamp в миллисекундах
	URL       string        `json:"url"`
	Mobile    *MetricBundle `json:"mobile"`
	Desktop   *MetricBundle `json:"desktop"`
}

// Failed сообщает, что ни один профиль не дал результата
func (r AuditResult) Failed() bool {
	return r.Mobile == nil && r.Desktop == nil
}
