package main

import (
	"os"

	"github.com/phuslu/log"

	"equity_research/pkg/api"
	"equity_research/pkg/auth"
	"equity_research/pkg/config"
	"equity_research/pkg/llm"
	"equity_research/pkg/marketdata"
	"equity_research/pkg/pdf"
	"equity_research/pkg/quant"
	"equity_research/pkg/report"
	"equity_research/pkg/store"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogger(cfg.App.Env)

	db, err := store.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	av := marketdata.NewAlphaVantageClient(marketdata.AlphaVantageConfig{
		BaseURL:           cfg.MarketData.AlphaVantage.BaseURL,
		APIKey:            cfg.MarketData.AlphaVantage.APIKey,
		Timeout:           cfg.MarketData.AlphaVantage.Timeout,
		RequestsPerMinute: cfg.MarketData.AlphaVantage.RequestsPerMinute,
		ErrorKeys:         cfg.MarketData.AlphaVantage.ErrorKeys,
	})
	yahoo := marketdata.NewYahooClient(marketdata.YahooConfig{
		BaseURL:      cfg.MarketData.Yahoo.BaseURL,
		ChartBaseURL: cfg.MarketData.Yahoo.ChartBaseURL,
		QuoteBaseURL: cfg.MarketData.Yahoo.QuoteBaseURL,
		Timeout:      cfg.MarketData.Yahoo.Timeout,
	})
	gateway := marketdata.NewProviderGateway(av, yahoo)

	generator := llm.NewGenerator(newProvider(cfg), cfg.LLM.MaxRetries)

	reports := store.NewReportRepo(db)
	orchestrator := report.NewOrchestrator(gateway, generator, reports, valuationParams(cfg))

	sessions := auth.NewMemorySessionStore(0)
	pdfClient := pdf.NewClient(pdf.ClientConfig{
		EngineURL: cfg.PDF.BaseURL,
		Timeout:   cfg.PDF.Timeout,
	})

	handlers := api.NewHandlers(
		gateway,
		orchestrator,
		reports,
		store.NewVoteRepo(db),
		store.NewUserRepo(db),
		sessions,
		pdfClient,
	)

	server := api.NewServer(cfg.Server.Port, cfg.App.Env)
	server.SetupRoutes(handlers, sessions)
	server.Start()
}

func configPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	if path := config.DefaultConfigPath(); fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func setupLogger(env string) {
	level := log.DebugLevel
	if env == "production" {
		level = log.InfoLevel
	}
	log.DefaultLogger = log.Logger{
		Level:      level,
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    env != "production",
			EndWithMessage: true,
		},
	}
}

func newProvider(cfg *config.Config) llm.Provider {
	if cfg.LLM.Provider == "gemini" {
		return llm.NewGeminiProvider(llm.GeminiConfig{
			APIKey: cfg.LLM.APIKey,
			Model:  cfg.LLM.Model,
		})
	}
	return llm.NewOpenAIProvider(llm.OpenAIConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.LLM.Timeout,
	})
}

func valuationParams(cfg *config.Config) quant.ValuationParams {
	return quant.ValuationParams{
		RiskFreeRate:      cfg.Valuation.RiskFreeRate,
		MarketRiskPremium: cfg.Valuation.MarketRiskPremium,
		CostOfDebt:        cfg.Valuation.CostOfDebt,
		TaxRate:           cfg.Valuation.TaxRate,
		TerminalGrowth:    cfg.Valuation.TerminalGrowth,
		WACCFallback:      cfg.Valuation.WACC,
		RevenueGrowth:     cfg.Valuation.RevenueGrowth,
		ForecastYears:     cfg.Valuation.ForecastYears,
	}
}
