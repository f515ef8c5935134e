package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/config"
	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/parser"
)

// The worker consumes queued parse batches from Redis and stores the
// results back under the job keys.
func main() {
	loadConfig()

	logger := initLogger()
	defer logger.Sync()

	logger.Info("starting address parser worker")

	if err := config.Load(viper.GetString("parser.config_path")); err != nil {
		logger.Warn("parser config not loaded, using defaults", zap.Error(err))
	}

	addressParser, err := parser.New()
	if err != nil {
		logger.Fatal("gazetteer load failed", zap.Error(err))
	}

	redisCache, err := services.NewRedisCacheService(viper.GetString("redis.url"), config.C.ResultTTL(), logger)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer redisCache.Close()

	addressService := services.NewAddressService(addressParser, redisCache, logger)
	jobService := services.NewJobService(redisCache.Client(), addressService, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker")
		cancel()
	}()

	if err := jobService.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", zap.Error(err))
	}
	logger.Info("worker exited")
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.env", "development")
	viper.SetDefault("parser.config_path", "config/parser.yaml")
	viper.SetDefault("redis.url", "redis://localhost:6379")

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
