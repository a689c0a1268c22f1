package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/collector"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return nil
}

type fakeDriver struct {
	navigateErr error
	tapErr      error

	navigations []string
	midScrolls  int
	topScrolls  int
	taps        int

	onMidScroll func(n int)
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.navigations = append(f.navigations, url)
	return f.navigateErr
}

func (f *fakeDriver) ScrollTo(ctx context.Context, fraction float64) error {
	if fraction == 0 {
		f.topScrolls++
		return nil
	}
	f.midScrolls++
	if f.onMidScroll != nil {
		f.onMidScroll(f.midScrolls)
	}
	return nil
}

func (f *fakeDriver) TapBody(ctx context.Context) error {
	f.taps++
	return f.tapErr
}

func testConfig() Config {
	return Config{
		NavigationTimeout: time.Second,
		SettleDelay:       5 * time.Second,
		StabilizeCeiling:  15 * time.Second,
		PollInterval:      3 * time.Second,
		FinalizePause:     time.Second,
	}
}

func lcpCandidate(startMs float64) model.PageEvent {
	return model.PageEvent{Kind: model.KindLCPCandidate, StartTimeMs: startMs}
}

func TestController_NavigationFailureIsFatal(t *testing.T) {
	driver := &fakeDriver{navigateErr: errors.New("net::ERR_TIMED_OUT")}
	clock := &fakeClock{}
	ctrl := NewController(driver, collector.NewEventLog(), clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.Error(t, err)
	assert.Empty(t, clock.sleeps, "no waits after failed navigation")
}

func TestController_StabilityNeedsTwoEqualReadings(t *testing.T) {
	// Кандидат есть до первого опроса: чтения [1500, 1500, ...].
	// Выход на втором одинаковом чтении, не на первом.
	log := collector.NewEventLog()
	log.Append(lcpCandidate(1500))

	driver := &fakeDriver{}
	clock := &fakeClock{}
	ctrl := NewController(driver, log, clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)

	// Один опросный цикл до стабильности: settle + 1 poll + 2 finalize паузы
	assert.Equal(t, 1, driver.midScrolls)
	assert.Equal(t, []time.Duration{
		5 * time.Second,
		3 * time.Second,
		time.Second,
		time.Second,
	}, clock.sleeps)
}

func TestController_NullReadingsNeverStable(t *testing.T) {
	// Кандидатов нет вообще: равенство nil-nil стабильностью не
	// считается, цикл выбирает весь потолок
	driver := &fakeDriver{}
	clock := &fakeClock{}
	ctrl := NewController(driver, collector.NewEventLog(), clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 5, driver.midScrolls) // 15s / 3s
}

func TestController_ChangingLCPDelaysExit(t *testing.T) {
	log := collector.NewEventLog()
	log.Append(lcpCandidate(1000))

	driver := &fakeDriver{}
	// Первый скролл провоцирует ленивую подгрузку: приходит новый кандидат
	driver.onMidScroll = func(n int) {
		if n == 1 {
			log.Append(lcpCandidate(1500))
		}
	}
	clock := &fakeClock{}
	ctrl := NewController(driver, log, clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)

	// Чтения: 1000, 1500, 1500 -> выход на третьем опросе
	assert.Equal(t, 2, driver.midScrolls)
}

func TestController_FinalizeSequence(t *testing.T) {
	driver := &fakeDriver{}
	clock := &fakeClock{}
	ctrl := NewController(driver, collector.NewEventLog(), clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Equal(t, 1, driver.topScrolls)
	assert.Equal(t, 1, driver.taps)
}

func TestController_TapFailureSwallowed(t *testing.T) {
	// У страницы нет кликабельного корня: сессия все равно успешна
	driver := &fakeDriver{tapErr: errors.New("node not found")}
	clock := &fakeClock{}
	ctrl := NewController(driver, collector.NewEventLog(), clock, testConfig(), zaptest.NewLogger(t))

	_, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, driver.taps)
}

func TestController_SnapshotReflectsLog(t *testing.T) {
	log := collector.NewEventLog()
	log.Append(model.PageEvent{Kind: model.KindWebVital, Name: "FCP", Value: 900, Delta: 900})
	log.Append(model.PageEvent{Kind: model.KindLongTask, StartTimeMs: 1200, DurationMs: 80})

	driver := &fakeDriver{}
	ctrl := NewController(driver, log, &fakeClock{}, testConfig(), zaptest.NewLogger(t))

	snap, err := ctrl.Run(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Len(t, snap.LongTasks, 1)
	assert.Contains(t, snap.FieldVitals, "FCP")
}
