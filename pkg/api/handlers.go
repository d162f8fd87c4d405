package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phuslu/log"

	"equity_research/pkg/auth"
	"equity_research/pkg/marketdata"
	"equity_research/pkg/model"
	"equity_research/pkg/pdf"
	"equity_research/pkg/quant"
	"equity_research/pkg/report"
	"equity_research/pkg/store"
)

// Handlers carries the wired dependencies for every route.
type Handlers struct {
	gateway      marketdata.Gateway
	orchestrator *report.Orchestrator
	reports      *store.ReportRepo
	votes        *store.VoteRepo
	users        *store.UserRepo
	sessions     auth.SessionStore
	pdf          *pdf.Client
}

func NewHandlers(
	gateway marketdata.Gateway,
	orchestrator *report.Orchestrator,
	reports *store.ReportRepo,
	votes *store.VoteRepo,
	users *store.UserRepo,
	sessions auth.SessionStore,
	pdfClient *pdf.Client,
) *Handlers {
	return &Handlers{
		gateway:      gateway,
		orchestrator: orchestrator,
		reports:      reports,
		votes:        votes,
		users:        users,
		sessions:     sessions,
		pdf:          pdfClient,
	}
}

// Every response uses the same envelope: {okay, data} or {okay, error}.

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"okay": true, "data": data})
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"okay": false, "error": err.Error()})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Login upserts the user by email and issues a bearer session.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid login request: %w", err))
		return
	}

	user, err := h.users.UpsertUser(c.Request.Context(), &model.User{
		ID:    newUserID(),
		Email: strings.ToLower(req.Email),
		Role:  model.RoleUser,
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, h.sessions.Issue(user))
}

// Search proxies symbol search to the market data provider.
func (h *Handlers) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		fail(c, http.StatusBadRequest, fmt.Errorf("query parameter q is required"))
		return
	}
	matches, err := h.gateway.Search(c.Request.Context(), query)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c, matches)
}

// Dashboard returns the formatted metric groups for a symbol. Provider
// failures degrade individual metrics to the missing placeholder instead
// of failing the view.
func (h *Handlers) Dashboard(c *gin.Context) {
	symbol := upperSymbol(c)
	ctx := c.Request.Context()

	profile, err := h.gateway.Profile(ctx, symbol)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("profile unavailable")
	}
	qs, err := h.gateway.QuoteSummary(ctx, symbol, []string{
		"price", "summaryDetail", "financialData", "defaultKeyStatistics",
		"assetProfile", "balanceSheetHistory",
	})
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("quote summary unavailable")
	}
	chart, err := h.gateway.Chart(ctx, symbol, 1, false)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("chart unavailable")
	}
	bars, err := h.gateway.DailySeries(ctx, symbol)
	if err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("daily series unavailable")
	}

	var ttmRevenue *float64
	if income, err := h.gateway.QuarterlyIncome(ctx, symbol); err == nil {
		values := make([]*float64, 0, len(income))
		for _, r := range income {
			values = append(values, marketdata.ParseNum(r.TotalRevenue))
		}
		ttmRevenue = quant.TTM(values)
	}

	if profile == nil && qs == nil && len(bars) == 0 {
		fail(c, http.StatusBadGateway, fmt.Errorf("no market data available for %s", symbol))
		return
	}

	name := companyName(profile, qs)
	if _, err := h.reports.UpsertCompany(ctx, symbol, name); err != nil {
		log.Warn().Str("symbol", symbol).Err(err).Msg("failed to register company")
	}
	ok(c, quant.BuildDashboard(symbol, profile, qs, chart, bars, ttmRevenue))
}

type chartResponse struct {
	Symbol         string     `json:"symbol"`
	Closes         []*float64 `json:"closes"`
	TotalDividends *float64   `json:"totalDividends,omitempty"`
}

// Chart returns the adjusted close series for the requested window.
func (h *Handlers) Chart(c *gin.Context) {
	symbol := upperSymbol(c)
	years, err := strconv.Atoi(c.DefaultQuery("years", "1"))
	if err != nil || years < 1 || years > 10 {
		fail(c, http.StatusBadRequest, fmt.Errorf("years must be between 1 and 10"))
		return
	}
	withDividends := c.Query("dividends") == "true"

	result, err := h.gateway.Chart(c.Request.Context(), symbol, years, withDividends)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}
	ok(c, chartResponse{
		Symbol:         symbol,
		Closes:         result.Closes,
		TotalDividends: result.TotalDividends,
	})
}

// GetReport returns the persisted report for a symbol, whatever sections
// exist so far.
func (h *Handlers) GetReport(c *gin.Context) {
	symbol := upperSymbol(c)
	company, err := h.reports.GetCompanyReport(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if company == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("no report for %s", symbol))
		return
	}
	ok(c, company)
}

// BuildReport generates every missing section for a symbol. Sections that
// already exist are served from the store; partial failures are reported
// per section alongside the sections that did persist.
func (h *Handlers) BuildReport(c *gin.Context) {
	symbol := upperSymbol(c)
	result, err := h.orchestrator.Build(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, result)
}

// DownloadPDF renders the stored report and streams the converted PDF.
func (h *Handlers) DownloadPDF(c *gin.Context) {
	symbol := upperSymbol(c)
	company, err := h.reports.GetCompanyReport(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if company == nil {
		fail(c, http.StatusNotFound, fmt.Errorf("no report for %s", symbol))
		return
	}

	markdown := pdf.RenderMarkdown(company)
	html, err := h.pdf.RenderHTML(markdown, symbol+" Research Report")
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	filename := symbol + "-research-report.pdf"
	data, err := h.pdf.Convert(c.Request.Context(), html, filename)
	if err != nil {
		fail(c, http.StatusBadGateway, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

type voteRequest struct {
	Positive *bool `json:"positive" binding:"required"`
}

// CastVote records the caller's vote on a symbol.
func (h *Handlers) CastVote(c *gin.Context) {
	symbol := upperSymbol(c)
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid vote request: %w", err))
		return
	}
	session := auth.SessionFrom(c)
	if session == nil {
		fail(c, http.StatusUnauthorized, fmt.Errorf("authentication required"))
		return
	}

	company, err := h.reports.UpsertCompany(c.Request.Context(), symbol, nil)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if err := h.votes.CastVote(c.Request.Context(), company.ID, session.UserID, *req.Positive); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}

	counts, err := h.votes.CountVotes(c.Request.Context(), company.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, counts)
}

// GetVotes returns the current tally for a symbol.
func (h *Handlers) GetVotes(c *gin.Context) {
	symbol := upperSymbol(c)
	company, err := h.reports.GetCompany(c.Request.Context(), symbol)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if company == nil {
		ok(c, &model.VoteCounts{})
		return
	}
	counts, err := h.votes.CountVotes(c.Request.Context(), company.ID)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, counts)
}

func newUserID() string {
	return uuid.NewString()
}

func upperSymbol(c *gin.Context) string {
	return strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
}

func companyName(profile *marketdata.CompanyProfile, qs *marketdata.QuoteSummary) *string {
	if qs != nil && qs.Price != nil && qs.Price.LongName != nil && *qs.Price.LongName != "" {
		return qs.Price.LongName
	}
	if profile != nil && profile.Name != "" {
		return &profile.Name
	}
	return nil
}
