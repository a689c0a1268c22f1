package collector

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

func TestEventLog_SnapshotSplitsByKind(t *testing.T) {
	log := NewEventLog()
	log.Append(model.PageEvent{Kind: model.KindPaint, Name: "first-paint", StartTimeMs: 800})
	log.Append(model.PageEvent{Kind: model.KindPaint, Name: "first-contentful-paint", StartTimeMs: 900})
	log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 1200, DurationMs: 80})
	log.Append(model.PageEvent{Kind: model.KindLCPCandidate, StartTimeMs: 1800, RenderTimeMs: 1850, SizePx: 50000})
	log.Append(model.PageEvent{Kind: model.KindWebVital, Name: "TTFB", Value: 250, Delta: 250})
	log.Append(model.PageEvent{Kind: model.KindLifecycle, Name: "loadEventEnd", StartTimeMs: 3000})

	snap := log.Snapshot()

	assert.Len(t, snap.PaintEvents, 2)
	assert.Len(t, snap.LongTasks, 1)
	assert.Len(t, snap.LCPCandidates, 1)
	assert.Equal(t, model.Vital{Value: 250, Delta: 250}, snap.FieldVitals["TTFB"])
	require.NotNil(t, snap.LoadEventEndMs)
	assert.Equal(t, 3000.0, *snap.LoadEventEndMs)
}

func TestEventLog_LastVitalWins(t *testing.T) {
	log := NewEventLog()
	log.Append(model.PageEvent{Kind: model.KindWebVital, Name: "CLS", Value: 0.01, Delta: 0.01})
	log.Append(model.PageEvent{Kind: model.KindWebVital, Name: "CLS", Value: 0.05, Delta: 0.04})

	snap := log.Snapshot()
	assert.Equal(t, 0.05, snap.FieldVitals["CLS"].Value)
}

func TestEventLog_RunningLCP(t *testing.T) {
	log := NewEventLog()

	_, ok := log.RunningLCP()
	assert.False(t, ok, "no candidates yet")

	log.Append(model.PageEvent{Kind: model.KindLCPCandidate, StartTimeMs: 1800})
	log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 2000, DurationMs: 60})
	// Поздний кандидат вытесняет ранний независимо от размера
	log.Append(model.PageEvent{Kind: model.KindLCPCandidate, StartTimeMs: 1500})

	got, ok := log.RunningLCP()
	require.True(t, ok)
	assert.Equal(t, 1500.0, got)
}

func TestEventLog_SnapshotIsACopy(t *testing.T) {
	log := NewEventLog()
	log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 1000, DurationMs: 80})

	snap := log.Snapshot()
	log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 2000, DurationMs: 90})

	assert.Len(t, snap.LongTasks, 1)
	assert.Len(t, log.Snapshot().LongTasks, 2)
}

func TestEventLog_ConcurrentAppend(t *testing.T) {
	log := NewEventLog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 1000, DurationMs: 60})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, log.Len())
}

func TestDecodeEvent(t *testing.T) {
	event, err := DecodeEvent([]byte(`{"kind":"longtask","startTime":1200.5,"duration":80.25}`))
	require.NoError(t, err)
	assert.Equal(t, model.KindLongTask, event.Kind)
	assert.Equal(t, 1200.5, event.StartTimeMs)
	assert.Equal(t, 80.25, event.DurationMs)
}

func TestDecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent([]byte(`not json`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`{"startTime":5}`))
	assert.Error(t, err, "kind is required")
}

func TestScript_RegistersAllObserverTypes(t *testing.T) {
	src := Script()

	for _, fragment := range []string{
		"'paint'",
		"'longtask'",
		"'largest-contentful-paint'",
		"'layout-shift'",
		BindingName,
		"loadEventEnd",
	} {
		assert.True(t, strings.Contains(src, fragment), fragment)
	}
}
