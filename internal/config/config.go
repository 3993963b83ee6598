package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName      string
	BaseCurrency string

	// Universe
	TopCoins int

	// Cache
	CacheFile string

	// Providers
	HTTPTimeoutSeconds int

	// REST API
	APIPort         int
	APIKey          string
	CORSAllowOrigin string

	// Notifications
	WebhookURL string

	// Refresh scheduler (0 disables)
	RefreshHours        int
	RefreshLookbackDays int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName:      envStr("APP_NAME", "GlobalAssetTracker"),
		BaseCurrency: strings.ToUpper(envStr("BASE_CURRENCY", "USD")),

		TopCoins: envInt("TOP_COINS", 20),

		CacheFile: envStr("CACHE_FILE", "crypto_cache.db"),

		HTTPTimeoutSeconds: envInt("HTTP_TIMEOUT_SECONDS", 30),

		APIPort:         envInt("API_PORT", 3001),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		WebhookURL: envStr("WEBHOOK_URL", ""),

		RefreshHours:        envInt("REFRESH_HOURS", 0),
		RefreshLookbackDays: envInt("REFRESH_LOOKBACK_DAYS", 365),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if len(c.BaseCurrency) != 3 {
		errs = append(errs, fmt.Sprintf("BASE_CURRENCY must be a 3-letter ISO code, got %q", c.BaseCurrency))
	}
	if c.TopCoins <= 0 || c.TopCoins > 250 {
		errs = append(errs, fmt.Sprintf("TOP_COINS must be between 1 and 250, got %d", c.TopCoins))
	}
	if c.CacheFile == "" {
		errs = append(errs, "CACHE_FILE is required")
	}
	if c.HTTPTimeoutSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds))
	}
	if c.RefreshLookbackDays <= 0 {
		errs = append(errs, fmt.Sprintf("REFRESH_LOOKBACK_DAYS must be positive, got %d", c.RefreshLookbackDays))
	}

	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set — REST API has no authentication")
	}
	if c.RefreshHours == 0 {
		fmt.Println("[WARN] REFRESH_HOURS not set — cache refreshes only on demand")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Printf("=== %s Configuration ===\n", c.AppName)
	fmt.Printf("Base Currency: %s\n", c.BaseCurrency)
	fmt.Printf("Crypto Universe: top %d by market cap\n", c.TopCoins)
	fmt.Printf("Cache File: %s\n", c.CacheFile)
	fmt.Printf("Provider Timeout: %ds\n", c.HTTPTimeoutSeconds)
	fmt.Println("--------------------------------------")
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("API Auth: %s\n", boolLabel(c.APIKey != "", "enabled", "disabled"))
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	if c.RefreshHours > 0 {
		fmt.Printf("Auto Refresh: every %d hours (lookback %d days)\n", c.RefreshHours, c.RefreshLookbackDays)
	} else {
		fmt.Println("Auto Refresh: disabled")
	}
	fmt.Println("======================================")
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
