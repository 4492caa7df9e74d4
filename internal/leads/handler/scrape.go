package handler

import (
	"context"
	"net/http"

	"leadscope_backend/internal/leads/management"
	"leadscope_backend/internal/leads/transport"
	"leadscope_backend/platform/apperr"
	"leadscope_backend/platform/httpkit"
	"leadscope_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const importSourceScrape = "scrape"

// PageScraper extracts candidate leads from a URL.
type PageScraper interface {
	Scrape(ctx context.Context, rawURL string) (transport.ScrapeResponse, error)
}

// ScrapeHandler finds leads on web pages and imports the selected ones.
type ScrapeHandler struct {
	scraper PageScraper
	mgmt    *management.Service
	val     *validator.Validator
}

// NewScrapeHandler creates a scrape handler.
func NewScrapeHandler(scraper PageScraper, mgmt *management.Service, val *validator.Validator) *ScrapeHandler {
	return &ScrapeHandler{scraper: scraper, mgmt: mgmt, val: val}
}

// RegisterRoutes mounts the scrape routes on the leads group.
func (h *ScrapeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scrape", h.Scrape)
	rg.POST("/scrape/import", h.ImportScraped)
}

func (h *ScrapeHandler) Scrape(c *gin.Context) {
	var req transport.ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	if httpkit.MustGetIdentity(c) == nil {
		return
	}

	result, err := h.scraper.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		httpkit.HandleError(c, apperr.Upstream("could not scrape the page", err))
		return
	}
	httpkit.OK(c, result)
}

func (h *ScrapeHandler) ImportScraped(c *gin.Context) {
	var req transport.ScrapeImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if len(req.Leads) == 0 || len(req.Leads) > 500 {
		httpkit.Error(c, http.StatusBadRequest, "between 1 and 500 leads are required", nil)
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	result, err := h.mgmt.Import(c.Request.Context(), identity.UserID(), req.Leads, importSourceScrape)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
