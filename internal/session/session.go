// Package session реализует контроллер навигации: конечный автомат
// NAVIGATING -> SETTLING -> STABILIZING -> FINALIZING -> DONE поверх
// абстрактного драйвера вкладки.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/collector"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
	"go.uber.org/zap"
)

// Driver - минимальный набор возможностей вкладки, нужный контроллеру.
// Реальная реализация - chromedp-вкладка, в тестах - заглушка.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	ScrollTo(ctx context.Context, fraction float64) error
	TapBody(ctx context.Context) error
}

// Config - тайминги сессии. Именно эти ожидания отличают лабораторный
// замер от точечного чтения API: сессия занимает 15-25 секунд на URL.
type Config struct {
	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	StabilizeCeiling  time.Duration
	PollInterval      time.Duration
	FinalizePause     time.Duration
}

// DefaultConfig возвращает тайминги по умолчанию
func DefaultConfig() Config {
	return Config{
		NavigationTimeout: 30 * time.Second,
		SettleDelay:       5 * time.Second,
		StabilizeCeiling:  15 * time.Second,
		PollInterval:      3 * time.Second,
		FinalizePause:     time.Second,
	}
}

// Controller ведет одну сессию замера. Сессия владеет ровно одной
// вкладкой и одним журналом, разделяемого состояния между сессиями нет.
type Controller struct {
	driver Driver
	log    *collector.EventLog
	clock  Clock
	cfg    Config
	logger *zap.Logger
}

// NewController создает контроллер сессии. Nil clock заменяется
// часами на реальных таймерах.
func NewController(
	driver Driver,
	log *collector.EventLog,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Controller {
	if clock == nil {
		clock = NewClock()
	}
	return &Controller{
		driver: driver,
		log:    log,
		clock:  clock,
		cfg:    cfg,
		logger: logger,
	}
}

// Run проводит сессию по всем фазам и возвращает снимок журнала.
// Единственная фатальная для сессии ошибка после старта - таймаут
// навигации; внутренних повторов нет, повтор - забота вызывающего.
func (c *Controller) Run(ctx context.Context, url string) (model.Snapshot, error) {
	navCtx, cancel := context.WithTimeout(ctx, c.cfg.NavigationTimeout)
	defer cancel()

	if err := c.driver.Navigate(navCtx, url); err != nil {
		return model.Snapshot{}, fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	c.logger.Debug("navigation complete", zap.String("url", url))

	if err := c.clock.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return model.Snapshot{}, err
	}

	c.stabilize(ctx)
	c.finalize(ctx)

	snap := c.log.Snapshot()
	c.logger.Debug("session snapshot taken",
		zap.String("url", url),
		zap.Int("events", c.log.Len()),
	)
	return snap, nil
}

// stabilize опрашивает текущий LCP до стабильности или до потолка.
// Стабильность - два подряд одинаковых ненулевых чтения: равенство
// nil-nil до прихода первого кандидата стабильностью не считается.
// Скролл к середине страницы провоцирует ленивую подгрузку медиа,
// способную сдвинуть LCP/CLS. Фаза никогда не роняет сессию.
func (c *Controller) stabilize(ctx context.Context) {
	polls := int(c.cfg.StabilizeCeiling / c.cfg.PollInterval)
	var prev *float64

	for i := 0; i < polls; i++ {
		current, ok := c.log.RunningLCP()
		if ok && prev != nil && current == *prev {
			c.logger.Debug("lcp stable, exiting early",
				zap.Float64("lcp_ms", current),
				zap.Int("poll", i),
			)
			return
		}
		if ok {
			v := current
			prev = &v
		} else {
			prev = nil
		}

		if err := c.driver.ScrollTo(ctx, 0.5); err != nil {
			c.logger.Debug("midpoint scroll failed", zap.Error(err))
		}
		if err := c.clock.Sleep(ctx, c.cfg.PollInterval); err != nil {
			return
		}
	}

	c.logger.Debug("stabilize ceiling reached, proceeding")
}

// finalize возвращает страницу к началу и дергает клик по body, чтобы
// принудить отложенную финализацию метрик. Клик best-effort: у части
// страниц нет кликабельного корня, провал не фатален.
func (c *Controller) finalize(ctx context.Context) {
	if err := c.driver.ScrollTo(ctx, 0); err != nil {
		c.logger.Debug("top scroll failed", zap.Error(err))
	}
	if err := c.clock.Sleep(ctx, c.cfg.FinalizePause); err != nil {
		return
	}

	if err := c.driver.TapBody(ctx); err != nil {
		c.logger.Debug("finalize tap failed", zap.Error(err))
	}
	if err := c.clock.Sleep(ctx, c.cfg.FinalizePause); err != nil {
		return
	}
}
