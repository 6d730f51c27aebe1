package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yhsong/finbell/internal/dto"
	"github.com/yhsong/finbell/internal/service"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// MarketHandler serves company and indicator browsing
type MarketHandler struct {
	marketService *service.MarketService
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketService *service.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListCompanies returns a page of companies, optionally filtered by search
func (h *MarketHandler) ListCompanies(c *gin.Context) {
	limit, offset := pagination(c)

	page, err := h.marketService.ListCompanies(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PageResponse{
		Items:  page.Items,
		Total:  page.Total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetCompany returns one company
func (h *MarketHandler) GetCompany(c *gin.Context) {
	company, err := h.marketService.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// ListIndicators returns a page of economic indicators
func (h *MarketHandler) ListIndicators(c *gin.Context) {
	limit, offset := pagination(c)

	page, err := h.marketService.ListIndicators(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PageResponse{
		Items:  page.Items,
		Total:  page.Total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetIndicator returns one economic indicator
func (h *MarketHandler) GetIndicator(c *gin.Context) {
	indicator, err := h.marketService.GetIndicator(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, indicator)
}
