// Package runner - оркестрация аудитов: независимые единицы работы
// (url, профиль) без разделяемых ресурсов, параллельность ограничена
// семафором вызывающего уровня.
package runner

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/retry"
)

// Auditor выполняет один замер: url + профиль -> бандл метрик
type Auditor interface {
	Audit(ctx context.Context, url string, profile model.DeviceProfile) (*model.MetricBundle, error)
}

// Config - настройки оркестрации
type Config struct {
	Concurrency int
	Retries     int
	Profiles    []model.DeviceProfile
}

// Runner прогоняет набор URL через аудитор
type Runner struct {
	auditor Auditor
	sem     *semaphore.Weighted
	cfg     Config
	logger  *zap.Logger
}

// NewRunner создает оркестратор аудитов
func NewRunner(auditor Auditor, cfg Config, logger *zap.Logger) *Runner {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Runner{
		auditor: auditor,
		sem:     semaphore.NewWeighted(int64(cfg.Concurrency)),
		cfg:     cfg,
		logger:  logger,
	}
}

// Run замеряет все URL по всем профилям конфигурации. Результаты
// возвращаются в порядке входных URL; профиль, не давший бандла,
// остается nil в результате.
func (r *Runner) Run(ctx context.Context, urls []string) []model.AuditResult {
	now := time.Now()
	results := make([]model.AuditResult, len(urls))

	var wg sync.WaitGroup
	for i, raw := range urls {
		pageURL := NormalizeURL(raw)
		if pageURL == "" {
			continue
		}
		results[i] = model.AuditResult{
			Timestamp: now,
			Ts:        now.UnixMilli(),
			URL:       pageURL,
		}

		for _, profile := range r.cfg.Profiles {
			wg.Add(1)
			go func(idx int, u string, p model.DeviceProfile) {
				defer wg.Done()

				if err := r.sem.Acquire(ctx, 1); err != nil {
					return
				}
				defer r.sem.Release(1)

				bundle := r.measure(ctx, u, p)
				// Горутины одного URL пишут в разные поля результата
				if p.Mobile {
					results[idx].Mobile = bundle
				} else {
					results[idx].Desktop = bundle
				}
			}(i, pageURL, profile)
		}
	}
	wg.Wait()

	return results
}

// measure выполняет замер с повторами. Сессия атомарна: повтор всегда
// строит свежую вкладку и свежий журнал, частичный журнал провалившейся
// навигации не заслуживает доверия и не переиспользуется.
func (r *Runner) measure(ctx context.Context, url string, profile model.DeviceProfile) *model.MetricBundle {
	var bundle *model.MetricBundle

	cfg := retry.RetryConfig{
		MaxRetries:    r.cfg.Retries,
		IsRetryableFn: func(error) bool { return true },
	}

	err := retry.Do(ctx, cfg, func() error {
		b, err := r.auditor.Audit(ctx, url, profile)
		if err != nil {
			return err
		}
		bundle = b
		return nil
	})
	if err != nil {
		r.logger.Error("measurement failed",
			zap.String("url", url),
			zap.String("profile", profile.Label()),
			zap.Error(err),
		)
		return nil
	}

	r.logger.Info("measurement complete",
		zap.String("url", url),
		zap.String("profile", profile.Label()),
		zap.String("source", bundle.Source),
	)
	return bundle
}

// NormalizeURL чистит пользовательский ввод и подставляет схему
func NormalizeURL(raw string) string {
	u := strings.TrimSuffix(strings.TrimSpace(raw), ",")
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "https://" + u
	}
	return u
}
