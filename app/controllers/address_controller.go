package controllers

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/models"
	"github.com/cn-address-parser/app/requests"
	"github.com/cn-address-parser/app/responses"
	"github.com/cn-address-parser/app/services"
)

// AddressController handles the public parsing endpoints.
type AddressController struct {
	addresses *services.AddressService
	jobs      *services.JobService
	logger    *zap.Logger
}

// NewAddressController wires the controller. jobs may be nil when Redis is
// not configured; the async endpoints then answer 503.
func NewAddressController(addresses *services.AddressService, jobs *services.JobService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addresses: addresses,
		jobs:      jobs,
		logger:    logger,
	}
}

// ParseAddress handles POST /v1/addresses/parse.
func (ac *AddressController) ParseAddress(c *gin.Context) {
	var req requests.ParseAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	start := time.Now()
	result, err := ac.addresses.ParseAddress(c.Request.Context(), req.Address)
	if err != nil {
		ac.logger.Error("parse failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("PARSE_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.ParseAddressResponse{
		Result:           result,
		GazetteerVersion: ac.addresses.GazetteerVersion(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// ParseBatch handles POST /v1/addresses/parse-batch, the synchronous
// variant for small batches.
func (ac *AddressController) ParseBatch(c *gin.Context) {
	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	start := time.Now()
	results, err := ac.addresses.ParseBatch(c.Request.Context(), req.Addresses)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("BATCH_TOO_LARGE", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.BatchParseResponse{
		Results:          results,
		Total:            len(results),
		GazetteerVersion: ac.addresses.GazetteerVersion(),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// Normalize handles POST /v1/addresses/normalize.
func (ac *AddressController) Normalize(c *gin.Context) {
	var req requests.NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.NormalizeResponse{
		Normalized:       ac.addresses.Normalize(req.Province, req.City, req.District),
		GazetteerVersion: ac.addresses.GazetteerVersion(),
	})
}

// ValidateAddress handles POST /v1/addresses/validate.
func (ac *AddressController) ValidateAddress(c *gin.Context) {
	var req requests.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := ac.addresses.Validate(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("PARSE_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, responses.ValidateResponse{
		Valid:            result.Valid,
		Parsed:           result.Parsed,
		GazetteerVersion: result.GazetteerVersion,
	})
}

// EnqueueJob handles POST /v1/addresses/jobs: large batches go through the
// Redis queue and are processed by the worker.
func (ac *AddressController) EnqueueJob(c *gin.Context) {
	if ac.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, responses.NewErrorResponse("JOBS_DISABLED", "job queue is not configured"))
		return
	}

	var req requests.BatchParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("INVALID_REQUEST", err.Error()))
		return
	}

	jobID, err := ac.jobs.Enqueue(c.Request.Context(), req.Addresses)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.NewErrorResponse("ENQUEUE_FAILED", err.Error()))
		return
	}

	c.JSON(http.StatusAccepted, responses.EnqueueJobResponse{
		JobID:          jobID,
		TotalAddresses: len(req.Addresses),
		Message:        "job queued",
	})
}

// GetJobStatus handles GET /v1/addresses/jobs/:jobID.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	if ac.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, responses.NewErrorResponse("JOBS_DISABLED", "job queue is not configured"))
		return
	}

	status, err := ac.jobs.Status(c.Request.Context(), c.Param("jobID"))
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", err.Error()))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("JOB_STATUS_ERROR", err.Error()))
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetJobResults handles GET /v1/addresses/jobs/:jobID/results. With
// ?format=ndjson the results stream line by line, optionally gzipped.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	if ac.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, responses.NewErrorResponse("JOBS_DISABLED", "job queue is not configured"))
		return
	}

	results, err := ac.jobs.Results(c.Request.Context(), c.Param("jobID"))
	if errors.Is(err, services.ErrJobNotFound) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("JOB_NOT_FOUND", err.Error()))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.NewErrorResponse("JOB_RESULTS_ERROR", err.Error()))
		return
	}

	if c.Query("format") == "ndjson" {
		ac.streamNDJSON(c, results)
		return
	}

	c.JSON(http.StatusOK, responses.BatchParseResponse{
		Results:          results,
		Total:            len(results),
		GazetteerVersion: ac.addresses.GazetteerVersion(),
	})
}

// ListProvinces handles GET /v1/regions/provinces.
func (ac *AddressController) ListProvinces(c *gin.Context) {
	provinces := ac.addresses.Provinces()
	c.JSON(http.StatusOK, responses.RegionListResponse{Items: provinces, Total: len(provinces)})
}

// ListCities handles GET /v1/regions/provinces/:province/cities.
func (ac *AddressController) ListCities(c *gin.Context) {
	province := c.Param("province")
	if !ac.addresses.KnownProvince(province) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("PROVINCE_NOT_FOUND", "unknown province"))
		return
	}
	cities := ac.addresses.CitiesOfProvince(province)
	c.JSON(http.StatusOK, responses.RegionListResponse{Items: cities, Total: len(cities)})
}

// ListDistricts handles GET /v1/regions/cities/:city/districts. A known
// city with no county-level divisions returns an empty list.
func (ac *AddressController) ListDistricts(c *gin.Context) {
	city := c.Param("city")
	if !ac.addresses.KnownCity(city) {
		c.JSON(http.StatusNotFound, responses.NewErrorResponse("CITY_NOT_FOUND", "unknown city"))
		return
	}
	districts := ac.addresses.DistrictsOfCity(city)
	c.JSON(http.StatusOK, responses.RegionListResponse{Items: districts, Total: len(districts)})
}

// HealthCheck handles GET /health.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	components := map[string]string{"parser": "healthy"}
	if ac.jobs != nil {
		components["jobs"] = "enabled"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:           "healthy",
		Timestamp:        time.Now().Format(time.RFC3339),
		GazetteerVersion: ac.addresses.GazetteerVersion(),
		Services:         components,
	})
}

func (ac *AddressController) streamNDJSON(c *gin.Context, results []*models.AddressResult) {
	c.Header("Content-Type", "application/x-ndjson")

	var w io.Writer = c.Writer
	if c.Query("gzip") == "1" {
		c.Header("Content-Encoding", "gzip")
		gz := gzip.NewWriter(c.Writer)
		defer gz.Close()
		w = gz
	}

	encoder := json.NewEncoder(w)
	for _, result := range results {
		if err := encoder.Encode(result); err != nil {
			ac.logger.Error("ndjson encode failed", zap.Error(err))
			return
		}
	}
}
