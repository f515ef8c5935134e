package main

import (
	"log"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cn-address-parser/app/services"
	"github.com/cn-address-parser/internal/gazetteer"
	"github.com/cn-address-parser/internal/search"
)

// Seeds the Meilisearch index with the bundled gazetteer. Run once after
// deploying a new dataset version.
func main() {
	loadConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal("cannot initialize logger:", err)
	}
	defer logger.Sync()

	regions, err := gazetteer.LoadRegions()
	if err != nil {
		logger.Fatal("gazetteer load failed", zap.Error(err))
	}
	logger.Info("gazetteer loaded",
		zap.String("version", gazetteer.Version),
		zap.Int("records", len(regions)))

	searcher, err := search.NewGazetteerSearcher(search.Config{
		Host:      viper.GetString("meilisearch.url"),
		APIKey:    viper.GetString("meilisearch.master_key"),
		IndexName: viper.GetString("meilisearch.index"),
	}, logger)
	if err != nil {
		logger.Fatal("meilisearch connect failed", zap.Error(err))
	}

	if err := searcher.ConfigureIndex(); err != nil {
		logger.Fatal("index configuration failed", zap.Error(err))
	}

	units := services.BuildAdminUnits(regions)
	if err := searcher.SeedUnits(units); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}

	logger.Info("done", zap.Int("units", len(units)))
}

func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "admin_units")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("warning: cannot read config file: %v", err)
	}
}
