package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/cn-address-parser/app/controllers"
)

// SetupAPIRoutes mounts the versioned API.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/parse", addressController.ParseAddress)
			addresses.POST("/parse-batch", addressController.ParseBatch)
			addresses.POST("/normalize", addressController.Normalize)
			addresses.POST("/validate", addressController.ValidateAddress)
			addresses.POST("/jobs", addressController.EnqueueJob)
			addresses.GET("/jobs/:jobID", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
		}

		regions := v1.Group("/regions")
		{
			regions.GET("/provinces", addressController.ListProvinces)
			regions.GET("/provinces/:province/cities", addressController.ListCities)
			regions.GET("/cities/:city/districts", addressController.ListDistricts)
		}

		if adminController != nil {
			admin := v1.Group("/admin")
			{
				admin.GET("/stats", adminController.GetStats)
				admin.POST("/cache/invalidate", adminController.InvalidateCache)
				admin.POST("/search/seed", adminController.SeedSearchIndex)
				admin.POST("/search", adminController.SearchUnits)
			}
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}

// SetupHealthRoutes mounts the unversioned probes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

// SetupAllRoutes configures middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}
