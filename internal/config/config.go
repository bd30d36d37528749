// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string

	SearchURLs       []string
	ProxyList        []string
	UserAgents       []string
	Keywords         []string
	NegativeKeywords []string

	BaseURL       string
	PriceFloor    int
	GeoSlug       string
	FreshLabel    string
	CheckInterval time.Duration
	SeenCapacity  int
	Headless      bool

	CaptchaAPIKey        string
	CaptchaCreateTaskURL string
	CaptchaResultURL     string
}

// NoProxy is the sentinel proxy-list entry meaning "connect directly".
const NoProxy = "no_proxy"

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	urls := splitList(os.Getenv("SEARCH_URLS"))
	if len(urls) == 0 {
		return nil, fmt.Errorf("SEARCH_URLS is required")
	}

	keywords := splitList(os.Getenv("KEYWORDS"))
	if len(keywords) == 0 {
		return nil, fmt.Errorf("KEYWORDS is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/bot.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),

		SearchURLs:       urls,
		ProxyList:        splitList(os.Getenv("PROXY_LIST")),
		UserAgents:       splitList(os.Getenv("USER_AGENTS")),
		Keywords:         keywords,
		NegativeKeywords: splitList(os.Getenv("NEGATIVE_KEYWORDS")),

		BaseURL:    envOrDefault("BASE_URL", "https://www.avito.ru"),
		PriceFloor: 30000,
		GeoSlug:    envOrDefault("GEO_SLUG", "sankt-peterburg"),
		FreshLabel: envOrDefault("FRESH_LABEL", "1 час назад"),

		CheckInterval: 60 * time.Second,
		SeenCapacity:  500,
		Headless:      true,

		CaptchaAPIKey:        os.Getenv("CAPTCHA_API_KEY"),
		CaptchaCreateTaskURL: envOrDefault("CAPTCHA_CREATE_TASK_URL", "https://api.2captcha.com/createTask"),
		CaptchaResultURL:     envOrDefault("CAPTCHA_RESULT_URL", "https://api.2captcha.com/getTaskResult"),
	}

	if len(cfg.ProxyList) == 0 {
		cfg.ProxyList = []string{NoProxy}
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = defaultUserAgents
	}

	if raw := os.Getenv("PRICE_FLOOR"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid PRICE_FLOOR %q", raw)
		}
		cfg.PriceFloor = v
	}

	if raw := os.Getenv("CHECK_INTERVAL_SECONDS"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL_SECONDS %q", raw)
		}
		cfg.CheckInterval = time.Duration(v) * time.Second
	}

	if raw := os.Getenv("SEEN_CAPACITY"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid SEEN_CAPACITY %q", raw)
		}
		cfg.SeenCapacity = v
	}

	if raw := os.Getenv("HEADLESS"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid HEADLESS %q", raw)
		}
		cfg.Headless = v
	}

	return cfg, nil
}

// splitList parses a comma- or semicolon-separated environment value into
// trimmed entries.
func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' }) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
}
