// Package browser - chromedp-реализация драйвера вкладки. Единственное
// место, знающее о конкретном протоколе управления браузером; остальной
// код зависит только от набора возможностей session.Driver.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/collector"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

const tapTimeout = 2 * time.Second

// Launcher держит общий аллокатор headless-браузера; вкладки сессий
// создаются от него независимыми контекстами.
type Launcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	logger   *zap.Logger
}

// NewLauncher запускает аллокатор headless-браузера
func NewLauncher(ctx context.Context, logger *zap.Logger) *Launcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("hide-scrollbars", false),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	return &Launcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Close останавливает аллокатор и все оставшиеся вкладки
func (l *Launcher) Close() {
	l.cancel()
}

// Tab - одна вкладка браузера, привязанная к журналу событий своей сессии
type Tab struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewTab создает вкладку: регистрирует биндинг для сообщений страницы,
// ставит скрипт наблюдателей до навигации и включает эмуляцию устройства.
// События из страницы дописываются в журнал по мере прихода.
func (l *Launcher) NewTab(profile model.DeviceProfile, log *collector.EventLog) (*Tab, error) {
	tabCtx, cancel := chromedp.NewContext(l.allocCtx)

	logger := l.logger
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		call, ok := ev.(*runtime.EventBindingCalled)
		if !ok || call.Name != collector.BindingName {
			return
		}
		event, err := collector.DecodeEvent([]byte(call.Payload))
		if err != nil {
			logger.Debug("malformed page event dropped", zap.Error(err))
			return
		}
		log.Append(event)
	})

	actions := []chromedp.Action{
		runtime.AddBinding(collector.BindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(collector.Script()).Do(ctx)
			return err
		}),
	}

	if profile.Mobile {
		actions = append(actions,
			emulation.SetDeviceMetricsOverride(
				model.MobileViewportWidth,
				model.MobileViewportHeight,
				model.MobileScaleFactor,
				true,
			),
			emulation.SetCPUThrottlingRate(model.MobileCPUSlowdown),
			network.Enable(),
			network.EmulateNetworkConditions(
				false,
				model.MobileLatencyMs,
				model.MobileDownloadBytesPerSec,
				model.MobileUploadBytesPerSec,
			),
		)
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to prepare tab: %w", err)
	}

	return &Tab{ctx: tabCtx, cancel: cancel, logger: l.logger}, nil
}

// Navigate переходит по URL и ждет загрузки страницы. Ограничен
// дедлайном вызывающего: истекший дедлайн фатален для сессии.
func (t *Tab) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := t.bounded(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Navigate(url))
}

// ScrollTo прокручивает окно к доле высоты документа
func (t *Tab) ScrollTo(ctx context.Context, fraction float64) error {
	runCtx, cancel := t.bounded(ctx)
	defer cancel()

	js := fmt.Sprintf(
		"window.scrollTo({top: document.body.scrollHeight * %g, behavior: 'instant'})",
		fraction,
	)
	return chromedp.Run(runCtx, chromedp.Evaluate(js, nil))
}

// TapBody выполняет синтетический клик по корню страницы. Ограничен
// собственным коротким таймаутом: ожидание кликабельного body не должно
// задерживать финализацию.
func (t *Tab) TapBody(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(t.ctx, tapTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Click("body", chromedp.ByQuery))
}

// Close закрывает вкладку. Завершает все незаконченные ожидания сессии.
func (t *Tab) Close() {
	t.cancel()
}

// bounded привязывает дедлайн вызывающего к контексту вкладки:
// chromedp-действия выполняются только на контексте вкладки.
func (t *Tab) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(t.ctx, deadline)
	}
	return context.WithCancel(t.ctx)
}
