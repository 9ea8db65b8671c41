package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/quenchlab/scpikit/bridge"
	"github.com/quenchlab/scpikit/internal/logging"
	"github.com/quenchlab/scpikit/pipeline"
	"github.com/quenchlab/scpikit/scpi"
	"github.com/quenchlab/scpikit/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scpibridge: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "scpibridge.toml", "path to bridge config")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := loadBridgeConfig(*configPath)
	if err != nil {
		return err
	}

	t, err := transport.DialTCP(transport.TCPConfig{
		Addr:             cfg.Instrument,
		WriteTermination: cfg.Termination,
		ReadTermination:  cfg.Termination,
	})
	if err != nil {
		return err
	}
	defer t.Close()

	conn := pipeline.NewConn(t, log.Logger)
	conn.SetErrorQueue(scpi.NewSystemErrorQueue(conn))
	conn.RateLimiter().SetMinInterval(cfg.MinIOInterval)
	conn.SetAutoDequeueDelay(cfg.AutoDequeueDelay)
	conn.SetAutoDequeue(cfg.AutoDequeue)

	log.Info().Str("instrument", cfg.Instrument).Str("listen", cfg.Listen).Msg("bridging instrument")
	srv := bridge.NewServer(bridge.Config{Addr: cfg.Listen, Termination: cfg.Termination}, conn, log.Logger)
	return srv.ListenAndServe()
}
