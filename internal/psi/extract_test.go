package psi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

const fieldResponse = `{
  "loadingExperience": {
    "overall_category": "FAST",
    "metrics": {
      "LARGEST_CONTENTFUL_PAINT_MS": {"percentile": 2100},
      "CUMULATIVE_LAYOUT_SHIFT_SCORE": {"percentile": 8},
      "INTERACTION_TO_NEXT_PAINT": {"percentile": 150},
      "FIRST_CONTENTFUL_PAINT_MS": {"percentile": 1400},
      "EXPERIMENTAL_TIME_TO_FIRST_BYTE": {"percentile": 600}
    }
  }
}`

const labResponse = `{
  "lighthouseResult": {
    "audits": {
      "largest-contentful-paint": {"numericValue": 3200},
      "cumulative-layout-shift": {"numericValue": 0.12},
      "first-contentful-paint": {"numericValue": 1800},
      "server-response-time": {"numericValue": 420},
      "total-blocking-time": {"numericValue": 250},
      "speed-index": {"numericValue": 4100},
      "interactive": {"numericValue": 6500}
    }
  }
}`

func TestExtract_FieldData(t *testing.T) {
	b, err := Extract([]byte(fieldResponse))
	require.NoError(t, err)

	assert.Equal(t, model.SourceCruxField, b.Source)
	assert.Equal(t, "FAST", b.CWVCategory)

	require.NotNil(t, b.LCPSeconds)
	assert.InDelta(t, 2.1, *b.LCPSeconds, 1e-9)
	require.NotNil(t, b.CLS)
	assert.InDelta(t, 0.08, *b.CLS, 1e-9)
	require.NotNil(t, b.INPMs)
	assert.Equal(t, 150.0, *b.INPMs)
	require.NotNil(t, b.FCPSeconds)
	assert.InDelta(t, 1.4, *b.FCPSeconds, 1e-9)
	require.NotNil(t, b.TTFBSeconds)
	assert.InDelta(t, 0.6, *b.TTFBSeconds, 1e-9)

	assert.Nil(t, b.TotalBlockingTimeMs, "field data carries no lab metrics")
}

func TestExtract_LabFallback(t *testing.T) {
	b, err := Extract([]byte(labResponse))
	require.NoError(t, err)

	assert.Equal(t, model.SourceLab, b.Source)
	assert.Equal(t, "N/A", b.CWVCategory)

	require.NotNil(t, b.LCPSeconds)
	assert.InDelta(t, 3.2, *b.LCPSeconds, 1e-9)
	require.NotNil(t, b.TotalBlockingTimeMs)
	assert.Equal(t, 250.0, *b.TotalBlockingTimeMs)
	require.NotNil(t, b.SpeedIndexMs)
	assert.Equal(t, 4100.0, *b.SpeedIndexMs)
	require.NotNil(t, b.TimeToInteractiveSeconds)
	assert.InDelta(t, 6.5, *b.TimeToInteractiveSeconds, 1e-9)

	assert.Nil(t, b.INPMs, "inp requires field telemetry")
}

func TestExtract_FieldPreferredOverLab(t *testing.T) {
	combined := `{
	  "loadingExperience": {
	    "overall_category": "AVERAGE",
	    "metrics": {"LARGEST_CONTENTFUL_PAINT_MS": {"percentile": 3000}}
	  },
	  "lighthouseResult": {
	    "audits": {"largest-contentful-paint": {"numericValue": 2000}}
	  }
	}`

	b, err := Extract([]byte(combined))
	require.NoError(t, err)
	assert.Equal(t, model.SourceCruxField, b.Source)
	require.NotNil(t, b.LCPSeconds)
	assert.InDelta(t, 3.0, *b.LCPSeconds, 1e-9)
}

func TestExtract_APIError(t *testing.T) {
	_, err := Extract([]byte(`{"error": {"code": 400, "message": "invalid url"}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid url")
}

func TestExtract_EmptyResponse(t *testing.T) {
	_, err := Extract([]byte(`{}`))
	assert.Error(t, err)
}

func TestExtract_Malformed(t *testing.T) {
	_, err := Extract([]byte(`<html>`))
	assert.Error(t, err)
}
