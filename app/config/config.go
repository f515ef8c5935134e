package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type BatchLimits struct {
	MaxSync  int `yaml:"max_sync" json:"max_sync"`
	MaxAsync int `yaml:"max_async" json:"max_async"`
}

type CacheCfg struct {
	ResultTTLSeconds int  `yaml:"result_ttl_seconds" json:"result_ttl_seconds"`
	LRUSize          int  `yaml:"lru_size" json:"lru_size"`
	Enabled          bool `yaml:"enabled" json:"enabled"`
}

type JobsCfg struct {
	QueueKey         string `yaml:"queue_key" json:"queue_key"`
	ResultTTLSeconds int    `yaml:"result_ttl_seconds" json:"result_ttl_seconds"`
	PollSeconds      int    `yaml:"poll_seconds" json:"poll_seconds"`
}

type ParserCfg struct {
	CleanInput bool        `yaml:"clean_input" json:"clean_input"`
	Batch      BatchLimits `yaml:"batch" json:"batch"`
	Cache      CacheCfg    `yaml:"cache" json:"cache"`
	Jobs       JobsCfg     `yaml:"jobs" json:"jobs"`
}

var C = ParserCfg{
	CleanInput: true,
	Batch:      BatchLimits{MaxSync: 100, MaxAsync: 10000},
	Cache:      CacheCfg{ResultTTLSeconds: 86400, LRUSize: 4096, Enabled: true},
	Jobs:       JobsCfg{QueueKey: "addr:jobs", ResultTTLSeconds: 3600, PollSeconds: 5},
}

func Load(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, &C); err != nil {
		return err
	}
	// ENV overrides
	switch os.Getenv("PARSER_CLEAN_INPUT") {
	case "0":
		C.CleanInput = false
	case "1":
		C.CleanInput = true
	}
	if v := os.Getenv("PARSER_MAX_SYNC_BATCH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			C.Batch.MaxSync = n
		}
	}
	return nil
}

func (c ParserCfg) ResultTTL() time.Duration {
	return time.Duration(c.Cache.ResultTTLSeconds) * time.Second
}

func (c ParserCfg) JobResultTTL() time.Duration {
	return time.Duration(c.Jobs.ResultTTLSeconds) * time.Second
}

func RequestTimeout() time.Duration { return 1500 * time.Millisecond }
