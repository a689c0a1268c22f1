package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/browser"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/collector"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/derive"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/psi"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/session"
)

// LabAuditor замеряет страницу локально в headless-браузере
type LabAuditor struct {
	launcher   *browser.Launcher
	sessionCfg session.Config
	logger     *zap.Logger
}

// NewLabAuditor создает локальный аудитор
func NewLabAuditor(launcher *browser.Launcher, cfg session.Config, logger *zap.Logger) *LabAuditor {
	return &LabAuditor{
		launcher:   launcher,
		sessionCfg: cfg,
		logger:     logger,
	}
}

// Audit проводит одну сессию: вкладка и журнал живут ровно один замер,
// вкладка закрывается сразу после снятия снимка.
func (a *LabAuditor) Audit(ctx context.Context, url string, profile model.DeviceProfile) (*model.MetricBundle, error) {
	log := collector.NewEventLog()

	tab, err := a.launcher.NewTab(profile, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	defer tab.Close()

	ctrl := session.NewController(tab, log, nil, a.sessionCfg, a.logger)
	snap, err := ctrl.Run(ctx, url)
	if err != nil {
		return nil, err
	}

	bundle := derive.Bundle(snap)
	return &bundle, nil
}

// APIAuditor замеряет страницу через PageSpeed Insights API
type APIAuditor struct {
	client *psi.Client
}

// NewAPIAuditor создает API-аудитор
func NewAPIAuditor(client *psi.Client) *APIAuditor {
	return &APIAuditor{client: client}
}

// Audit запрашивает аудит у API, профиль транслируется в стратегию
func (a *APIAuditor) Audit(ctx context.Context, url string, profile model.DeviceProfile) (*model.MetricBundle, error) {
	strategy := "desktop"
	if profile.Mobile {
		strategy = "mobile"
	}
	return a.client.Run(ctx, url, strategy)
}
