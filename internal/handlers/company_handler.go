package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "finsight/internal/errors"
	"finsight/internal/services"
)

// CompanyHandler handles company data requests.
type CompanyHandler struct {
	companyService services.CompanyServicer
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companyService services.CompanyServicer) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// GetOverview handles fetching a full company overview.
// @Summary     Company overview
// @Description Get fundamentals, financial ratios, per-share metrics and growth rates for a ticker
// @Tags        companies
// @Produce     json
// @Security    APIKeyAuth
// @Param       ticker path string true "Ticker symbol"
// @Success     200 {object} services.CompanyOverview "Company overview"
// @Failure     400 {object} ErrorResponse "Invalid ticker"
// @Failure     404 {object} ErrorResponse "Ticker not found"
// @Failure     502 {object} ErrorResponse "Upstream source failure"
// @Router      /company/{ticker}/overview [get]
func (h *CompanyHandler) GetOverview(c *gin.Context) {
	overview, err := h.companyService.GetOverview(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// GetRatios handles fetching the ratios-only view of a company.
// @Summary     Company ratios
// @Description Get the financial ratio set for a ticker
// @Tags        companies
// @Produce     json
// @Security    APIKeyAuth
// @Param       ticker path string true "Ticker symbol"
// @Success     200 {object} services.TickerRatios "Ratio set"
// @Failure     400 {object} ErrorResponse "Invalid ticker"
// @Failure     404 {object} ErrorResponse "Ticker not found"
// @Failure     502 {object} ErrorResponse "Upstream source failure"
// @Router      /company/{ticker}/ratios [get]
func (h *CompanyHandler) GetRatios(c *gin.Context) {
	ratios, err := h.companyService.GetRatios(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratios)
}

// GetBatch handles fetching overviews for multiple tickers at once.
// @Summary     Batch company overviews
// @Description Get overviews for up to 20 tickers in one request; per-ticker failures are reported in the counts
// @Tags        companies
// @Produce     json
// @Security    APIKeyAuth
// @Param       tickers        query string true  "Comma-separated ticker symbols (max 20)"
// @Param       include_ratios query bool   false "Include derived metrics (default true)"
// @Success     200 {object} services.BatchReport "Batch report"
// @Failure     400 {object} ErrorResponse "Invalid input or too many tickers"
// @Router      /batch/companies [get]
func (h *CompanyHandler) GetBatch(c *gin.Context) {
	tickers := splitTickers(c.Query("tickers"))

	includeRatios := true
	if raw := c.Query("include_ratios"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "Invalid include_ratios: "+raw))
			return
		}
		includeRatios = parsed
	}

	report, err := h.companyService.GetBatch(c.Request.Context(), tickers, includeRatios)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// splitTickers splits a comma-separated ticker list, dropping empty segments
// so that trailing commas don't count against the batch limit.
func splitTickers(raw string) []string {
	var tickers []string
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) != "" {
			tickers = append(tickers, part)
		}
	}
	return tickers
}
