package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// AuditFlags - конфигурация запуска аудита
type AuditFlags struct {
	APIKey      string `env:"GOOGLE_PAGESPEED_API_TOKEN"`
	Local       bool   `env:"PAGESPEED_LOCAL"`
	Mobile      bool   `env:"PAGESPEED_MOBILE"`
	TimeoutSec  int    `env:"PAGESPEED_TIMEOUT"`
	Concurrency int    `env:"PAGESPEED_CONCURRENCY"`
	Retries     int    `env:"PAGESPEED_RETRIES"`
	OutFile     string `env:"PAGESPEED_OUT"`
	LogLevel    string `env:"LOGLEVEL"`
	JSONOutput  bool   `env:"-"`
	URLs        []string
}

// ParseAuditConfig собирает конфигурацию: значения по умолчанию,
// затем флаги, затем переменные окружения
func ParseAuditConfig() *AuditFlags {
	loadDotenv()

	var cfg AuditFlags

	// Устанавливаем значения по умолчанию
	setDefaultAuditFlags(&cfg)

	// Перезаписываем флагами
	flags := parseFlagsAudit(&cfg)

	// Устанавливаем переменные окружения
	parseEnvAudit(&cfg)

	// Явный --api-key важнее переменной окружения
	if flags.Changed("api-key") {
		cfg.APIKey, _ = flags.GetString("api-key")
	}

	cfg.URLs = collectURLs(flags.Args())

	return &cfg
}

func setDefaultAuditFlags(cfg *AuditFlags) {
	cfg.TimeoutSec = 120
	cfg.Concurrency = 2
	cfg.Retries = 1
	cfg.LogLevel = "info"
}

func parseEnvAudit(cfg *AuditFlags) {
	err := env.Parse(cfg)
	if err != nil {
		fmt.Println(err)
	}
}

func parseFlagsAudit(cfg *AuditFlags) *pflag.FlagSet {
	flags := pflag.NewFlagSet("audit", pflag.ExitOnError)

	flags.StringVarP(&cfg.APIKey, "api-key", "k", "", "PageSpeed API key")
	flags.BoolVar(&cfg.Local, "local", false, "measure locally in a headless browser instead of the API")
	flags.BoolVarP(&cfg.Mobile, "mobile", "m", false, "include mobile emulation profile (local mode)")
	flags.BoolVar(&cfg.JSONOutput, "json", false, "output raw JSON instead of formatted text")
	flags.IntVarP(&cfg.TimeoutSec, "timeout", "t", 120, "API timeout in seconds")
	flags.IntVarP(&cfg.Concurrency, "concurrency", "c", 2, "parallel audit limit")
	flags.IntVar(&cfg.Retries, "retries", 1, "retries per failed measurement")
	flags.StringVarP(&cfg.OutFile, "out", "o", "", "append results to JSON lines file")
	flags.StringVar(&cfg.LogLevel, "loglevel", "info", "log level (debug enables session tracing)")

	if err := flags.Parse(os.Args[1:]); err != nil {
		_, err := fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if err != nil {
			return flags
		}
		os.Exit(1)
	}

	return flags
}

func collectURLs(args []string) []string {
	urls := make([]string, 0, len(args))
	for _, arg := range args {
		arg = strings.TrimSpace(arg)
		if arg != "" {
			urls = append(urls, arg)
		}
	}
	return urls
}

// loadDotenv ищет .env вверх от текущего каталога и в домашнем каталоге;
// загружается первый найденный, существующие переменные не перетираются
func loadDotenv() {
	var candidates []string

	if dir, err := os.Getwd(); err == nil {
		for i := 0; i < 10; i++ {
			candidates = append(candidates, filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".env"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}
