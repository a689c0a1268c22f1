package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/browser"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/config"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/export"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/psi"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/report"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/runner"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/session"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/utils/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.ParseAuditConfig()

	log, err := logger.Initialize(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()

	if len(cfg.URLs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one URL required")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var auditor runner.Auditor
	var profiles []model.DeviceProfile
	showMobile := true

	if cfg.Local {
		launcher := browser.NewLauncher(ctx, log)
		defer launcher.Close()

		auditor = runner.NewLabAuditor(launcher, session.DefaultConfig(), log)
		profiles = []model.DeviceProfile{{Mobile: false}}
		if cfg.Mobile {
			profiles = append(profiles, model.DeviceProfile{Mobile: true})
		}
		showMobile = cfg.Mobile
	} else {
		if cfg.APIKey == "" {
			fmt.Fprintln(os.Stderr, "Error: Set GOOGLE_PAGESPEED_API_TOKEN or use --api-key")
			return 1
		}
		client := psi.NewClient(cfg.APIKey, time.Duration(cfg.TimeoutSec)*time.Second, log)
		auditor = runner.NewAPIAuditor(client)
		profiles = []model.DeviceProfile{{Mobile: true}, {Mobile: false}}
	}

	r := runner.NewRunner(auditor, runner.Config{
		Concurrency: cfg.Concurrency,
		Retries:     cfg.Retries,
		Profiles:    profiles,
	}, log)

	results := r.Run(ctx, cfg.URLs)

	publishResults(cfg, results, log)

	renderer := report.Renderer{ShowMobile: showMobile}
	if cfg.JSONOutput {
		if err := renderer.RenderJSON(os.Stdout, results); err != nil {
			log.Error("failed to encode results", zap.Error(err))
			return 1
		}
	} else {
		switch len(results) {
		case 1:
			renderer.RenderSingle(os.Stdout, results[0])
		case 2:
			renderer.RenderCompare(os.Stdout, results[0], results[1])
		default:
			renderer.RenderBatch(os.Stdout, results)
		}
	}

	for _, res := range results {
		if res.Failed() {
			return 1
		}
	}
	return 0
}

// publishResults рассылает результаты зарегистрированным наблюдателям
func publishResults(cfg *config.AuditFlags, results []model.AuditResult, log *zap.Logger) {
	if cfg.OutFile == "" {
		return
	}

	publisher := export.NewPublisher()

	fileObserver, err := export.NewFileObserver(cfg.OutFile, log)
	if err != nil {
		log.Error("failed to open results file", zap.Error(err))
		return
	}
	defer fileObserver.Close()

	publisher.Register(fileObserver)
	for _, res := range results {
		publisher.Publish(res)
	}
}
