// Package config loads the application configuration from a YAML file,
// with environment variables (optionally via a .env file) taking precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config is the top-level application configuration.
type Config struct {
	App struct {
		Name string `yaml:"name"`
		Env  string `yaml:"env"`
	} `yaml:"app"`

	Server struct {
		Port         string        `yaml:"port"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	Database struct {
		DSN string `yaml:"dsn"`
	} `yaml:"database"`

	MarketData struct {
		AlphaVantage struct {
			BaseURL           string        `yaml:"base_url"`
			APIKey            string        `yaml:"api_key"`
			Timeout           time.Duration `yaml:"timeout"`
			RequestsPerMinute int           `yaml:"requests_per_minute"`
			// ErrorKeys are top-level JSON keys whose presence marks a
			// disguised error payload (rate-limit notices arrive as 200s).
			ErrorKeys []string `yaml:"error_keys"`
		} `yaml:"alpha_vantage"`
		Yahoo struct {
			BaseURL      string        `yaml:"base_url"`
			ChartBaseURL string        `yaml:"chart_base_url"`
			QuoteBaseURL string        `yaml:"quote_base_url"`
			Timeout      time.Duration `yaml:"timeout"`
		} `yaml:"yahoo"`
	} `yaml:"market_data"`

	LLM struct {
		Provider   string        `yaml:"provider"` // "openai" or "gemini"
		Model      string        `yaml:"model"`
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		Timeout    time.Duration `yaml:"timeout"`
		MaxRetries int           `yaml:"max_retries"`
	} `yaml:"llm"`

	PDF struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"pdf"`

	Valuation ValuationConfig `yaml:"valuation"`
}

// ValuationConfig holds the model assumptions used by the derivation engine.
type ValuationConfig struct {
	RiskFreeRate      float64 `yaml:"risk_free_rate"`
	MarketRiskPremium float64 `yaml:"market_risk_premium"`
	CostOfDebt        float64 `yaml:"cost_of_debt"`
	TaxRate           float64 `yaml:"tax_rate"`
	TerminalGrowth    float64 `yaml:"terminal_growth"`
	WACC              float64 `yaml:"wacc"`
	RevenueGrowth     float64 `yaml:"revenue_growth"`
	ForecastYears     int     `yaml:"forecast_years"`
}

// Load reads the YAML file at path and applies environment overrides.
// A missing .env file is not an error.
func Load(path string) (*Config, error) {
	godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	overrideFromEnv(cfg)
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{}
	cfg.App.Name = "equity-research"
	cfg.App.Env = "dev"

	cfg.Server.Port = "8080"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 180 * time.Second

	cfg.MarketData.AlphaVantage.BaseURL = "https://www.alphavantage.co/query"
	cfg.MarketData.AlphaVantage.Timeout = 20 * time.Second
	cfg.MarketData.AlphaVantage.RequestsPerMinute = 5
	cfg.MarketData.AlphaVantage.ErrorKeys = []string{"Note", "Information", "Error Message"}

	cfg.MarketData.Yahoo.BaseURL = "https://query2.finance.yahoo.com/v10/finance/quoteSummary"
	cfg.MarketData.Yahoo.ChartBaseURL = "https://query2.finance.yahoo.com/v8/finance/chart"
	cfg.MarketData.Yahoo.QuoteBaseURL = "https://finance.yahoo.com/quote"
	cfg.MarketData.Yahoo.Timeout = 20 * time.Second

	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.BaseURL = "https://api.openai.com/v1"
	cfg.LLM.Timeout = 120 * time.Second
	cfg.LLM.MaxRetries = 2

	cfg.PDF.Timeout = 60 * time.Second

	// Defaults mirror the assumptions baked into the valuation model:
	// India 10Y G-Sec risk-free rate, 6% equity risk premium, 9% corporate
	// cost of debt, 25% tax.
	cfg.Valuation = ValuationConfig{
		RiskFreeRate:      0.07,
		MarketRiskPremium: 0.06,
		CostOfDebt:        0.09,
		TaxRate:           0.25,
		TerminalGrowth:    0.04,
		WACC:              0.085,
		RevenueGrowth:     0.12,
		ForecastYears:     5,
	}
	return cfg
}

func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.App.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.MarketData.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_BASE_URL"); v != "" {
		cfg.MarketData.AlphaVantage.BaseURL = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MarketData.AlphaVantage.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("FILE_CONVERSION_ENGINE_URL"); v != "" {
		cfg.PDF.BaseURL = v
	}
}

// DefaultConfigPath resolves the per-environment config file location.
func DefaultConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	return fmt.Sprintf("configs/%s/app.yaml", env)
}
