package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/gazetteer"
)

// AdminController handles the operational endpoints under /v1/admin.
type AdminController struct {
	admin  *services.AdminService
	logger *zap.Logger
}

func NewAdminController(admin *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		admin:  admin,
		logger: logger,
	}
}

// GetStats handles GET /v1/admin/stats.
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.admin.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("stats collection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("STATS_ERROR", err.Error()))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// InvalidateCache handles POST /v1/admin/cache/invalidate.
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateCacheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	if err := ac.admin.InvalidateCache(c.Request.Context(), req.GazetteerVersion); err != nil {
		ac.logger.Error("cache invalidation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("INVALIDATE_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cache invalidated"})
}

// SeedSearchIndex handles POST /v1/admin/search/seed: loads the bundled
// gazetteer into the Meilisearch index.
func (ac *AdminController) SeedSearchIndex(c *gin.Context) {
	regions, err := gazetteer.LoadRegions()
	if err != nil {
		ac.logger.Error("gazetteer load failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("GAZETTEER_ERROR", err.Error()))
		return
	}

	result, err := ac.admin.SeedSearchIndex(regions)
	if err != nil {
		ac.logger.Error("search index seed failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("SEED_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchUnits handles POST /v1/admin/search.
func (ac *AdminController) SearchUnits(c *gin.Context) {
	var req requests.SearchUnitsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	units, err := ac.admin.SearchUnits(req.Query, req.Level, req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("SEARCH_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.UnitSearchResponse{Units: units, Total: len(units)})
}
