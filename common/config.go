package common

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment at startup.
type Config struct {
	Addr      string `env:"GAZETTEFEED_ADDR" envDefault:":8080"`
	UserAgent string `env:"HTTP_USER_AGENT" envDefault:"Mozilla/5.0 (compatible; GazetteFeed/1.0)"`

	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogDevelopment bool   `env:"LOG_DEVELOPMENT" envDefault:"false"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"`

	GazetteBaseURL string `env:"GAZETTE_BASE_URL" envDefault:"https://www.thegazette.co.uk"`

	CompaniesHouseAPIKey      string `env:"COMPANIES_HOUSE_API_KEY"`
	CompaniesHouseBaseURL     string `env:"COMPANIES_HOUSE_BASE_URL" envDefault:"https://api.company-information.service.gov.uk"`
	CompaniesHouseDocumentURL string `env:"COMPANIES_HOUSE_DOCUMENT_URL" envDefault:"https://find-and-update.company-information.service.gov.uk"`

	GeminiAPIKey        string `env:"GEMINI_API_KEY"`
	GeminiModel         string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-pro"`
	GeminiResearchModel string `env:"GEMINI_RESEARCH_MODEL" envDefault:"gemini-2.5-flash"`

	GA4PropertyID            string `env:"GA4_PROPERTY_ID" envDefault:"387402170"`
	GA4BaseURL               string `env:"GA4_BASE_URL" envDefault:"https://analyticsdata.googleapis.com"`
	ShowRevenue              bool   `env:"SHOW_REVENUE" envDefault:"false"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`

	LinkDatabasePath string `env:"LINK_DATABASE_PATH" envDefault:"data/adminlist-links.json"`

	CacheCleanupInterval time.Duration `env:"CACHE_CLEANUP_INTERVAL" envDefault:"1h"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
