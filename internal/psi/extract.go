package psi

import (
	"encoding/json"
	"fmt"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

type apiResponse struct {
	LoadingExperience *loadingExperience `json:"loadingExperience"`
	LighthouseResult  *lighthouseResult  `json:"lighthouseResult"`
	Error             *apiError          `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type loadingExperience struct {
	Metrics         map[string]cruxMetric `json:"metrics"`
	OverallCategory string                `json:"overall_category"`
}

type cruxMetric struct {
	Percentile float64 `json:"percentile"`
}

type lighthouseResult struct {
	Audits map[string]audit `json:"audits"`
}

type audit struct {
	NumericValue *float64 `json:"numericValue"`
}

// Extract разбирает ответ API в бандл метрик: перцентили CrUX, если поле
// покрывает URL, иначе numericValue лабораторных аудитов Lighthouse.
func Extract(data []byte) (*model.MetricBundle, error) {
	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse api response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("api error %d: %s", resp.Error.Code, resp.Error.Message)
	}

	if le := resp.LoadingExperience; le != nil && len(le.Metrics) > 0 && le.OverallCategory != "" {
		return extractField(le), nil
	}
	if lr := resp.LighthouseResult; lr != nil && len(lr.Audits) > 0 {
		return extractLab(lr)
	}
	return nil, fmt.Errorf("response carries neither field nor lab data")
}

func extractField(le *loadingExperience) *model.MetricBundle {
	b := &model.MetricBundle{
		CWVCategory: le.OverallCategory,
		Source:      model.SourceCruxField,
	}

	b.LCPSeconds = fieldValue(le, "LARGEST_CONTENTFUL_PAINT_MS", 1.0/1000)
	b.CLS = fieldValue(le, "CUMULATIVE_LAYOUT_SHIFT_SCORE", 1.0/100)
	b.INPMs = fieldValue(le, "INTERACTION_TO_NEXT_PAINT", 1)
	b.FCPSeconds = fieldValue(le, "FIRST_CONTENTFUL_PAINT_MS", 1.0/1000)
	b.TTFBSeconds = fieldValue(le, "EXPERIMENTAL_TIME_TO_FIRST_BYTE", 1.0/1000)

	return b
}

func fieldValue(le *loadingExperience, name string, scale float64) *float64 {
	m, ok := le.Metrics[name]
	if !ok {
		return nil
	}
	v := m.Percentile * scale
	return &v
}

func extractLab(lr *lighthouseResult) (*model.MetricBundle, error) {
	b := &model.MetricBundle{
		CWVCategory: "N/A",
		Source:      model.SourceLab,
	}

	b.LCPSeconds = auditValue(lr, "largest-contentful-paint", 1.0/1000)
	b.CLS = auditValue(lr, "cumulative-layout-shift", 1)
	b.FCPSeconds = auditValue(lr, "first-contentful-paint", 1.0/1000)
	b.TTFBSeconds = auditValue(lr, "server-response-time", 1.0/1000)
	b.TotalBlockingTimeMs = auditValue(lr, "total-blocking-time", 1)
	b.SpeedIndexMs = auditValue(lr, "speed-index", 1)
	b.TimeToInteractiveSeconds = auditValue(lr, "interactive", 1.0/1000)

	if b.LCPSeconds == nil && b.FCPSeconds == nil {
		return nil, fmt.Errorf("lab audits missing paint metrics")
	}
	return b, nil
}

func auditValue(lr *lighthouseResult, name string, scale float64) *float64 {
	a, ok := lr.Audits[name]
	if !ok || a.NumericValue == nil {
		return nil
	}
	v := *a.NumericValue * scale
	return &v
}
