package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Listen           string `toml:"listen"`
	Instrument       string `toml:"instrument"`
	Termination      string `toml:"termination"`
	MinIOInterval    string `toml:"min_io_interval"`
	AutoDequeue      bool   `toml:"auto_dequeue"`
	AutoDequeueDelay string `toml:"auto_dequeue_delay"`
}

type bridgeConfig struct {
	Listen           string
	Instrument       string
	Termination      string
	MinIOInterval    time.Duration
	AutoDequeue      bool
	AutoDequeueDelay time.Duration
}

func defaultBridgeConfig() bridgeConfig {
	return bridgeConfig{
		Listen:           ":5025",
		Termination:      "\n",
		AutoDequeueDelay: time.Second,
	}
}

func loadBridgeConfig(path string) (bridgeConfig, error) {
	cfg := defaultBridgeConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return bridgeConfig{}, fmt.Errorf("load bridge config: %w", err)
	}

	if meta.IsDefined("listen") && strings.TrimSpace(raw.Listen) != "" {
		cfg.Listen = strings.TrimSpace(raw.Listen)
	}
	cfg.Instrument = strings.TrimSpace(raw.Instrument)
	if cfg.Instrument == "" {
		return bridgeConfig{}, fmt.Errorf("bridge config: instrument address is required")
	}
	if meta.IsDefined("termination") && raw.Termination != "" {
		cfg.Termination = raw.Termination
	}
	if meta.IsDefined("min_io_interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.MinIOInterval))
		if err != nil {
			return bridgeConfig{}, fmt.Errorf("parse min_io_interval: %w", err)
		}
		cfg.MinIOInterval = d
	}
	cfg.AutoDequeue = raw.AutoDequeue
	if meta.IsDefined("auto_dequeue_delay") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.AutoDequeueDelay))
		if err != nil {
			return bridgeConfig{}, fmt.Errorf("parse auto_dequeue_delay: %w", err)
		}
		cfg.AutoDequeueDelay = d
	}
	return cfg, nil
}
