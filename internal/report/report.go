// Package report форматирует результаты аудита для вывода: одиночный
// отчет, сравнение двух URL, батч-таблица и сырой JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

// Порядок метрик в отчетах: сначала сопоставимая с полем группа,
// затем лабораторная
var fieldMetrics = []string{"lcp", "cls", "inp", "fcp", "ttfb"}
var labMetrics = []string{"tbt", "si", "tti"}

var cwvEmoji = map[string]string{
	"FAST":    "✅",
	"AVERAGE": "🟡",
	"SLOW":    "🔴",
	"N/A":     "—",
}

// Renderer пишет отчеты. ShowMobile управляет выводом мобильного блока:
// в локальном режиме мобильный профиль замеряется только по запросу.
type Renderer struct {
	ShowMobile bool
}

// RenderSingle печатает отчет по одному URL
func (r Renderer) RenderSingle(w io.Writer, res model.AuditResult) {
	mobileCWV := bundleCWV(res.Mobile)
	desktopCWV := bundleCWV(res.Desktop)
	bestCWV := mobileCWV
	if bestCWV == "N/A" || bestCWV == "ERROR" {
		bestCWV = desktopCWV
	}

	fmt.Fprintf(w, "\n🌐 **%s** — CWV: %s %s\n\n", res.URL, bestCWV, cwvIndicator(bestCWV))

	if r.ShowMobile {
		renderProfile(w, "📱 Mobile", res.Mobile)
	}
	renderProfile(w, "🖥️ Desktop", res.Desktop)

	fmt.Fprintf(w, "\n📊 Data: %s (mobile) | %s (desktop)\n",
		bundleSource(res.Mobile), bundleSource(res.Desktop))
}

func renderProfile(w io.Writer, label string, b *model.MetricBundle) {
	if b == nil {
		fmt.Fprintf(w, "%s: ❌ No data available\n", label)
		return
	}

	src := ""
	if b.Source != model.SourceCruxField {
		src = fmt.Sprintf(" *(%s)*", b.Source)
	}

	cells := make([]string, 0, len(fieldMetrics)+len(labMetrics))
	for _, m := range fieldMetrics {
		cells = append(cells, metricCell(m, *b))
	}

	fmt.Fprintf(w, "%s%s:\n", label, src)
	fmt.Fprintf(w, "  %s\n", joinCells(cells[:3]))
	fmt.Fprintf(w, "  %s\n", joinCells(cells[3:]))

	if hasAny(*b, labMetrics) {
		lab := make([]string, 0, len(labMetrics))
		for _, m := range labMetrics {
			lab = append(lab, metricCell(m, *b))
		}
		fmt.Fprintf(w, "  %s\n", joinCells(lab))
	}
}

// RenderCompare печатает таблицу сравнения двух URL с подсчетом побед
func (r Renderer) RenderCompare(w io.Writer, a, b model.AuditResult) {
	fmt.Fprintf(w, "\n⚔️ **CWV Comparison: %s vs %s**\n\n", a.URL, b.URL)
	fmt.Fprintf(w, "| Metric | %s | %s | Winner |\n", a.URL, b.URL)
	fmt.Fprintf(w, "|--------|---------------|---------------|--------|\n")

	wins := map[string]int{a.URL: 0, b.URL: 0}

	pairs := []struct {
		prefix string
		ab, bb *model.MetricBundle
	}{
		{"📱", a.Mobile, b.Mobile},
		{"🖥️", a.Desktop, b.Desktop},
	}
	if !r.ShowMobile {
		pairs = pairs[1:]
	}

	for _, pair := range pairs {
		if pair.ab == nil || pair.bb == nil {
			continue
		}
		for _, m := range append(append([]string{}, fieldMetrics...), labMetrics...) {
			va, aok := pair.ab.MetricValue(m)
			vb, bok := pair.bb.MetricValue(m)
			if !aok && !bok {
				continue
			}

			winner := "—"
			if aok && bok {
				switch {
				case va < vb:
					winner = "✅ " + a.URL
					wins[a.URL]++
				case vb < va:
					winner = "✅ " + b.URL
					wins[b.URL]++
				default:
					winner = "Tie"
				}
			}

			fmt.Fprintf(w, "| %s %s | %s | %s | %s |\n",
				pair.prefix, metricLabel(m),
				metricCell(m, *pair.ab),
				metricCell(m, *pair.bb),
				winner,
			)
		}
	}

	total := wins[a.URL] + wins[b.URL]
	leader := a.URL
	if wins[b.URL] > wins[a.URL] {
		leader = b.URL
	}
	fmt.Fprintf(w, "\n**Overall: %s wins %d/%d metrics**\n", leader, wins[leader], total)

	fmt.Fprintf(w, "**CWV: %s %s %s vs %s %s %s**\n",
		a.URL, bundleCWV(firstBundle(a)), cwvIndicator(bundleCWV(firstBundle(a))),
		b.URL, bundleCWV(firstBundle(b)), cwvIndicator(bundleCWV(firstBundle(b))),
	)
}

// RenderBatch печатает сводную таблицу для трех и более URL
func (r Renderer) RenderBatch(w io.Writer, results []model.AuditResult) {
	fmt.Fprintf(w, "\n📊 **Batch CWV Results**\n\n")
	fmt.Fprintf(w, "| Site | LCP | CLS | INP | FCP | TTFB | CWV |\n")
	fmt.Fprintf(w, "|------|-----|-----|-----|-----|------|-----|\n")

	for _, res := range results {
		b := firstBundle(res)
		if b == nil {
			fmt.Fprintf(w, "| %s | ERROR | — | — | — | — | — |\n", res.URL)
			continue
		}
		row := make([]string, 0, len(fieldMetrics))
		for _, m := range fieldMetrics {
			row = append(row, metricCell(m, *b))
		}
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s | %s %s |\n",
			res.URL, row[0], row[1], row[2], row[3], row[4],
			bundleCWV(b), cwvIndicator(bundleCWV(b)),
		)
	}
}

// RenderJSON печатает результаты машинно-читаемым массивом
func (r Renderer) RenderJSON(w io.Writer, results []model.AuditResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// metricCell форматирует значение с индикатором полосы
func metricCell(metric string, b model.MetricBundle) string {
	value := formatValue(metric, b)
	if value == "N/A" {
		return metricLabel(metric) + ": N/A"
	}
	return fmt.Sprintf("%s: %s %s", metricLabel(metric), value, indicator(metric, b))
}

// formatValue форматирует значение в единицах вывода: cls двумя знаками,
// миллисекундные метрики целыми, секундные - одним знаком
func formatValue(metric string, b model.MetricBundle) string {
	v, ok := b.MetricValue(metric)
	if !ok {
		return "N/A"
	}
	switch metric {
	case "cls":
		return fmt.Sprintf("%.2f", v)
	case "inp", "tbt", "si":
		return fmt.Sprintf("%dms", int(v))
	default:
		return fmt.Sprintf("%.1fs", v)
	}
}

// indicator возвращает эмодзи оценочной полосы метрики
func indicator(metric string, b model.MetricBundle) string {
	band, ok := b.GradeOf(metric)
	if !ok {
		return "—"
	}
	switch band {
	case model.BandGood:
		return "🟢"
	case model.BandNeedsImprovement:
		return "🟡"
	default:
		return "🔴"
	}
}

func metricLabel(metric string) string {
	switch metric {
	case "lcp":
		return "LCP"
	case "cls":
		return "CLS"
	case "inp":
		return "INP"
	case "fcp":
		return "FCP"
	case "ttfb":
		return "TTFB"
	case "tbt":
		return "TBT"
	case "si":
		return "SI"
	case "tti":
		return "TTI"
	}
	return metric
}

func joinCells(cells []string) string {
	out := ""
	for i, c := range cells {
		if i > 0 {
			out += " | "
		}
		out += c
	}
	return out
}

func hasAny(b model.MetricBundle, metrics []string) bool {
	for _, m := range metrics {
		if _, ok := b.MetricValue(m); ok {
			return true
		}
	}
	return false
}

func bundleCWV(b *model.MetricBundle) string {
	if b == nil {
		return "ERROR"
	}
	if b.CWVCategory == "" {
		return "N/A"
	}
	return b.CWVCategory
}

func bundleSource(b *model.MetricBundle) string {
	if b == nil {
		return "N/A"
	}
	return b.Source
}

func cwvIndicator(category string) string {
	if e, ok := cwvEmoji[category]; ok {
		return e
	}
	return "❓"
}

func firstBundle(res model.AuditResult) *model.MetricBundle {
	if res.Mobile != nil {
		return res.Mobile
	}
	return res.Desktop
}
