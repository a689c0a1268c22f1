package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestGradeValue_Boundaries(t *testing.T) {
	// Границы: good включительно, средняя полоса включительно на
	// границе poor, строго выше - poor
	tests := []struct {
		name   string
		metric string
		value  float64
		want   Band
	}{
		{"lcp at good bound", "lcp", 2.5, BandGood},
		{"lcp just above good", "lcp", 2.500001, BandNeedsImprovement},
		{"lcp at poor bound", "lcp", 4.0, BandNeedsImprovement},
		{"lcp just above poor", "lcp", 4.000001, BandPoor},
		{"cls good", "cls", 0.1, BandGood},
		{"cls poor", "cls", 0.26, BandPoor},
		{"fcp middle", "fcp", 2.0, BandNeedsImprovement},
		{"ttfb good", "ttfb", 0.8, BandGood},
		{"tbt good", "tbt", 200, BandGood},
		{"tbt poor", "tbt", 601, BandPoor},
		{"si middle", "si", 4000, BandNeedsImprovement},
		{"inp poor", "inp", 501, BandPoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GradeValue(tt.metric, tt.value)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeValue_UnknownMetric(t *testing.T) {
	_, ok := GradeValue("bogus", 1)
	assert.False(t, ok)
}

func TestGradeOf_ConvertsTTIToMilliseconds(t *testing.T) {
	// tti хранится в секундах, границы заданы в миллисекундах
	b := MetricBundle{TimeToInteractiveSeconds: ptr(3.8)}
	band, ok := b.GradeOf("tti")
	require.True(t, ok)
	assert.Equal(t, BandGood, band)

	b = MetricBundle{TimeToInteractiveSeconds: ptr(7.301)}
	band, ok = b.GradeOf("tti")
	require.True(t, ok)
	assert.Equal(t, BandPoor, band)
}

func TestGradeOf_NilMetric(t *testing.T) {
	b := MetricBundle{}
	_, ok := b.GradeOf("lcp")
	assert.False(t, ok)
}

func TestMetricValue(t *testing.T) {
	b := MetricBundle{
		LCPSeconds:          ptr(2.1),
		CLS:                 ptr(0.02),
		TotalBlockingTimeMs: ptr(150),
	}

	v, ok := b.MetricValue("lcp")
	require.True(t, ok)
	assert.Equal(t, 2.1, v)

	v, ok = b.MetricValue("tbt")
	require.True(t, ok)
	assert.Equal(t, 150.0, v)

	_, ok = b.MetricValue("si")
	assert.False(t, ok)
}

func TestAuditResult_Failed(t *testing.T) {
	assert.True(t, AuditResult{}.Failed())
	assert.False(t, AuditResult{Desktop: &MetricBundle{}}.Failed())
	assert.False(t, AuditResult{Mobile: &MetricBundle{}}.Failed())
}
