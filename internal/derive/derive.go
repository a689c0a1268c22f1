// Package derive сводит снимок журнала событий к итоговому набору метрик.
// Все функции пакета чистые: результат определяется только снимком.
package derive

import (
	"sort"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

const (
	// BlockingThresholdMs - бюджет задачи: блокирующей считается часть сверх 50мс
	BlockingThresholdMs = 50.0
	// QuietWindowMs - минимальное тихое окно основного потока для TTI
	QuietWindowMs = 5000.0
	// BoundaryCapMs - верхняя граница окна TBT, когда нет ни loadEventEnd, ни LCP
	BoundaryCapMs = 10000.0

	// Константы аппроксимации Speed Index. Фиксированная конфигурация,
	// из страницы не выводится.
	SpeedIndexFallbackFactor = 1.8
	SpeedIndexWeight         = 0.6
)

// Bundle строит бандл метрик по снимку сессии
func Bundle(snap model.Snapshot) model.MetricBundle {
	fcpMs := vitalMs(snap, "FCP")
	ttfbMs := vitalMs(snap, "TTFB")
	lcpMs := largestContentfulPaint(snap)

	// Отсутствие layout-shift событий - валидный нулевой сдвиг,
	// а не провал замера
	cls := 0.0
	if v, ok := snap.FieldVitals["CLS"]; ok {
		cls = v.Value
	}

	b := model.MetricBundle{
		CLS:    &cls,
		Source: model.SourceLocalLab,
	}

	b.LCPSeconds = toSeconds(lcpMs)
	b.FCPSeconds = toSeconds(fcpMs)
	b.TTFBSeconds = toSeconds(ttfbMs)

	// Лабораторные метрики осмысленны только относительно базовой
	// точки первой отрисовки контента
	if fcpMs == nil {
		return b
	}

	tbt := TotalBlockingTime(snap.LongTasks, *fcpMs, blockingBoundary(snap, lcpMs))
	b.TotalBlockingTimeMs = &tbt

	tti := TimeToInteractive(snap.LongTasks, *fcpMs)
	b.TimeToInteractiveSeconds = toSeconds(&tti)

	si := SpeedIndex(*fcpMs, lcpMs)
	b.SpeedIndexMs = &si

	return b
}

// largestContentfulPaint берет большее из значения помощника web-vitals и
// startTime последнего по приходу кандидата: помощник и сырой поток
// наблюдений могут расходиться в моменте финализации, большее значение
// никогда не бывает преждевременным.
func largestContentfulPaint(snap model.Snapshot) *float64 {
	var result *float64

	if v, ok := snap.FieldVitals["LCP"]; ok {
		value := v.Value
		result = &value
	}

	if n := len(snap.LCPCandidates); n > 0 {
		last := snap.LCPCandidates[n-1].StartTimeMs
		if result == nil || last > *result {
			result = &last
		}
	}

	return result
}

// blockingBoundary выбирает правую границу окна TBT: loadEventEnd,
// иначе выведенный LCP, иначе фиксированный потолок
func blockingBoundary(snap model.Snapshot, lcpMs *float64) float64 {
	if snap.LoadEventEndMs != nil && *snap.LoadEventEndMs > 0 {
		return *snap.LoadEventEndMs
	}
	if lcpMs != nil {
		return *lcpMs
	}
	return BoundaryCapMs
}

// TotalBlockingTime суммирует превышения бюджета по задачам, чье начало
// попадает в полуоткрытый интервал [fcpMs, boundaryMs). Задачи до FCP и
// на границе или позже не дают вклада независимо от длительности.
func TotalBlockingTime(tasks []model.LongTask, fcpMs, boundaryMs float64) float64 {
	var total float64
	for _, t := range tasks {
		if t.StartTimeMs < fcpMs || t.StartTimeMs >= boundaryMs {
			continue
		}
		if blocking := t.DurationMs - BlockingThresholdMs; blocking > 0 {
			total += blocking
		}
	}
	return total
}

// TimeToInteractive находит первый момент от FCP, после которого основной
// поток тих не менее 5 секунд. Если разрыва нет, тихое окно считается
// начавшимся сразу после последней наблюдавшейся задачи - это известное
// приближение, полные 5 секунд тишины до конца сессии не проверяются.
func TimeToInteractive(tasks []model.LongTask, fcpMs float64) float64 {
	after := make([]model.LongTask, 0, len(tasks))
	for _, t := range tasks {
		if t.StartTimeMs >= fcpMs {
			after = append(after, t)
		}
	}
	sort.Slice(after, func(i, j int) bool {
		return after[i].StartTimeMs < after[j].StartTimeMs
	})

	lastTaskEnd := fcpMs
	for _, t := range after {
		if t.StartTimeMs-lastTaskEnd >= QuietWindowMs {
			return lastTaskEnd
		}
		lastTaskEnd = t.StartTimeMs + t.DurationMs
	}
	return lastTaskEnd
}

// SpeedIndex аппроксимирует индекс скорости без реальной выборки
// визуального прогресса: линейная интерполяция между FCP и LCP с весом 0.6,
// при неизвестном или не большем LCP - FCP с множителем 1.8.
func SpeedIndex(fcpMs float64, lcpMs *float64) float64 {
	if lcpMs == nil || *lcpMs <= fcpMs {
		return fcpMs * SpeedIndexFallbackFactor
	}
	return fcpMs + (*lcpMs-fcpMs)*SpeedIndexWeight
}

func vitalMs(snap model.Snapshot, name string) *float64 {
	if v, ok := snap.FieldVitals[name]; ok {
		value := v.Value
		return &value
	}
	return nil
}

func toSeconds(ms *float64) *float64 {
	if ms == nil {
		return nil
	}
	s := *ms / 1000
	return &s
}
