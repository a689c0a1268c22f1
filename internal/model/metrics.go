package model

// Метки источников данных в бандле метрик
const (
	SourceLocalLab  = "Local lab"
	SourceCruxField = "CrUX field"
	SourceLab       = "Lab"
)

// MetricBundle - итоговый набор метрик одного замера (url, профиль).
// Nil-поле означает, что метрика не наблюдалась; это валидный результат,
// а не ошибка. Бандл неизменяем после создания.
type MetricBundle struct {
	LCPSeconds  *float64 `json:"lcp,omitempty"`
	CLS         *float64 `json:"cls,omitempty"`
	INPMs       *float64 `json:"inp,omitempty"`
	FCPSeconds  *float64 `json:"fcp,omitempty"`
	TTFBSeconds *float64 `json:"ttfb,omitempty"`

	TotalBlockingTimeMs      *float64 `json:"tbt,omitempty"`
	SpeedIndexMs             *float64 `json:"si,omitempty"`
	TimeToInteractiveSeconds *float64 `json:"tti,omitempty"`

	CWVCategory string `json:"cwv,omitempty"`
	Source      string `json:"source"`
}

// Band - одна из трех оценочных полос метрики
type Band string

const (
	BandGood             Band = "good"
	BandNeedsImprovement Band = "needs-improvement"
	BandPoor             Band = "poor"
)

// Threshold - пара границ good/poor для одной метрики
type Threshold struct {
	Good float64
	Poor float64
}

// Thresholds - таблица границ оценивания. Единицы совпадают с единицами
// хранения метрики, кроме tti: он хранится в секундах, а оценивается
// в миллисекундах (см. GradeOf).
var Thresholds = map[string]Threshold{
	"lcp":  {Good: 2.5, Poor: 4.0},
	"cls":  {Good: 0.1, Poor: 0.25},
	"inp":  {Good: 200, Poor: 500},
	"fcp":  {Good: 1.8, Poor: 3.0},
	"ttfb": {Good: 0.8, Poor: 1.8},
	"tbt":  {Good: 200, Poor: 600},
	"si":   {Good: 3400, Poor: 5800},
	"tti":  {Good: 3800, Poor: 7300},
}

// GradeValue оценивает значение метрики по таблице границ:
// good включительно, needs-improvement включительно до границы poor,
// строго выше - poor.
func GradeValue(metric string, value float64) (Band, bool) {
	t, ok := Thresholds[metric]
	if !ok {
		return "", false
	}
	switch {
	case value <= t.Good:
		return BandGood, true
	case value <= t.Poor:
		return BandNeedsImprovement, true
	default:
		return BandPoor, true
	}
}

// GradeOf оценивает именованную метрику бандла. Перед сравнением
// переводит tti из секунд в миллисекунды, поскольку границы лабораторных
// метрик заданы в миллисекундах.
func (b MetricBundle) GradeOf(metric string) (Band, bool) {
	value, ok := b.metricValue(metric)
	if !ok {
		return "", false
	}
	if metric == "tti" {
		value *= 1000
	}
	return GradeValue(metric, value)
}

func (b MetricBundle) metricValue(metric string) (float64, bool) {
	var p *float64
	switch metric {
	case "lcp":
		p = b.LCPSeconds
	case "cls":
		p = b.CLS
	case "inp":
		p = b.INPMs
	case "fcp":
		p = b.FCPSeconds
	case "ttfb":
		p = b.TTFBSeconds
	case "tbt":
		p = b.TotalBlockingTimeMs
	case "si":
		p = b.SpeedIndexMs
	case "tti":
		p = b.TimeToInteractiveSeconds
	}
	if p == nil {
		return 0, false
	}
	return *p, true
}

// MetricValue возвращает значение именованной метрики бандла
func (b MetricBundle) MetricValue(metric string) (float64, bool) {
	return b.metricValue(metric)
}
