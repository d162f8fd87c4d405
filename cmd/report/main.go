// Command report builds a research report for one or more symbols from the
// command line, without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/phuslu/log"

	"equity_research/pkg/config"
	"equity_research/pkg/llm"
	"equity_research/pkg/marketdata"
	"equity_research/pkg/pdf"
	"equity_research/pkg/quant"
	"equity_research/pkg/report"
	"equity_research/pkg/store"
)

func main() {
	configFlag := flag.String("config", "", "path to config file (default: configs/<env>/app.yaml)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall build timeout")
	pdfOut := flag.String("pdf", "", "also write the report as markdown+html to this file prefix")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: report [flags] SYMBOL [SYMBOL...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	path := *configFlag
	if path == "" {
		if p := config.DefaultConfigPath(); fileExists(p) {
			path = p
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log.DefaultLogger = log.Logger{
		Level:      log.InfoLevel,
		TimeFormat: "15:04:05",
		Writer:     &log.ConsoleWriter{EndWithMessage: true},
	}

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

	var provider llm.Provider
	if cfg.LLM.Provider == "gemini" {
		provider = llm.NewGeminiProvider(llm.GeminiConfig{APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model})
	} else {
		provider = llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  cfg.LLM.APIKey,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
	}
	generator := llm.NewGenerator(provider, cfg.LLM.MaxRetries)

	reports := store.NewReportRepo(db)
	orchestrator := report.NewOrchestrator(gateway, generator, reports, quant.ValuationParams{
		RiskFreeRate:      cfg.Valuation.RiskFreeRate,
		MarketRiskPremium: cfg.Valuation.MarketRiskPremium,
		CostOfDebt:        cfg.Valuation.CostOfDebt,
		TaxRate:           cfg.Valuation.TaxRate,
		TerminalGrowth:    cfg.Valuation.TerminalGrowth,
		WACCFallback:      cfg.Valuation.WACC,
		RevenueGrowth:     cfg.Valuation.RevenueGrowth,
		ForecastYears:     cfg.Valuation.ForecastYears,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	failed := false
	for _, symbol := range flag.Args() {
		symbol = strings.ToUpper(symbol)
		result, err := orchestrator.Build(ctx, symbol)
		if err != nil {
			log.Error().Str("symbol", symbol).Err(err).Msg("build failed")
			failed = true
			continue
		}

		fmt.Printf("%s:\n", symbol)
		for _, o := range result.Outcomes {
			line := fmt.Sprintf("  %-30s %s", o.Section, o.State)
			if o.Error != "" {
				line += "  (" + o.Error + ")"
			}
			fmt.Println(line)
		}
		if !result.Complete() {
			failed = true
		}

		if *pdfOut != "" && result.Company != nil {
			if err := writeArtifacts(*pdfOut, symbol, result); err != nil {
				log.Error().Str("symbol", symbol).Err(err).Msg("failed to write artifacts")
				failed = true
			}
		}
	}
	if failed {
		os.Exit(1)
	}
}

func writeArtifacts(prefix, symbol string, result *report.BuildResult) error {
	markdown := pdf.RenderMarkdown(result.Company)
	mdPath := fmt.Sprintf("%s-%s.md", prefix, symbol)
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return err
	}

	client := pdf.NewClient(pdf.ClientConfig{})
	html, err := client.RenderHTML(markdown, symbol+" Research Report")
	if err != nil {
		return err
	}
	htmlPath := fmt.Sprintf("%s-%s.html", prefix, symbol)
	return os.WriteFile(htmlPath, []byte(html), 0o644)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
