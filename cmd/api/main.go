package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/app/controllers"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/parser"
	"github.com/cn-address-parser/internal/search"
	"github.com/cn-address-parser/routes"
)

func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting address parser api")

	if err := config.Load(viper.GetString("parser.config_path")); err != nil {
		logger.Warn("parser config not loaded, using defaults", zap.Error(err))
	}

	addressParser, err := parser.New()
	if err != nil {
		logger.Fatal("gazetteer load failed", zap.Error(err))
	}
	logger.Info("gazetteer loaded",
		zap.String("version", addressParser.GazetteerVersion()),
		zap.Int("provinces", len(addressParser.Provinces())))

	mongoDB := initMongoDB(logger)
	defer func() {
		if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
			logger.Error("mongo disconnect failed", zap.Error(err))
		}
	}()

	redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), config.C.ResultTTL(), logger)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer redisCache.Close()

	mongoCache, err := services.NewMongoCacheService(mongoDB, config.C.Cache.LRUSize, config.C.ResultTTL(), logger)
	if err != nil {
		logger.Fatal("mongo cache init failed", zap.Error(err))
	}
	cacheService := services.NewHybridCacheService(redisCache, mongoCache, logger)

	if err := mongoCache.WarmUp(context.Background(), config.C.Cache.LRUSize/2); err != nil {
		logger.Warn("cache warm up failed", zap.Error(err))
	}

	// Search is auxiliary; the API starts without it.
	var searcher *search.GazetteerSearcher
	searcher, err = search.NewGazetteerSearcher(search.Config{
		Host:      viper.GetString("meilisearch.url"),
		APIKey:    viper.GetString("meilisearch.master_key"),
		IndexName: viper.GetString("meilisearch.index"),
	}, logger)
	if err != nil {
		logger.Warn("meilisearch unavailable, /v1/admin/search disabled", zap.Error(err))
		searcher = nil
	}

	addressService := services.NewAddressService(addressParser, cacheService, logger)
	jobService := services.NewJobService(redisCache.Client(), addressService, logger)
	adminService := services.NewAdminService(addressService, cacheService, searcher, logger)

	addressController := controllers.NewAddressController(addressService, jobService, logger)
	adminController := controllers.NewAdminController(adminService, logger)

	if viper.GetString("app.env") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.SetupAllRoutes(router, addressController, adminController)

	srv := &http.Server{
		Addr:    ":" + viper.GetString("app.port"),
		Handler: router,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("server exited")
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("parser.config_path", "config/parser.yaml")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/cn_address_parser")
	viper.SetDefault("redis.url", "redis://localhost:6379")
	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "admin_units")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("warning: cannot read config file: %v", err)
	}
}

func initLogger() *zap.Logger {
	var cfg zap.Config
	if viper.GetString("app.env") == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	return logger
}

func initMongoDB(logger *zap.Logger) *mongo.Database {
	mongoURL := viper.GetString("mongo.url")

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("mongo connect failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("mongo ping failed", zap.Error(err))
	}

	db := client.Database("cn_address_parser")
	logger.Info("mongo connected", zap.String("database", db.Name()))
	return db
}
