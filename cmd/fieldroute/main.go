package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"fieldroute/internal/broker"
	"fieldroute/internal/buildinfo"
	"fieldroute/internal/config"
	"fieldroute/internal/logx"
	"fieldroute/internal/metrics"
	"fieldroute/internal/plan"
	"fieldroute/internal/store"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		requestPath = flag.String("request", "-", "path to request JSON, or - for stdin")
		metricsAddr = flag.String("metrics-addr", "", "serve Prometheus metrics on this address")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		info := buildinfo.Info()
		fmt.Printf("fieldroute %s (%s)\n", info["version"], info["commit"])
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logx.Setup(cfg.LogLevel)

	metrics.RegisterDefault()
	if *metricsAddr != "" {
		go serveMetrics(*metricsAddr, log)
	}

	st, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("store initialization failed")
	}
	defer st.Close()
	br := openBroker(cfg, log)

	req, err := readRequest(*requestPath)
	if err != nil {
		log.Fatal().Err(err).Msg("request read failed")
	}

	ctx := context.Background()
	orch := plan.NewOrchestrator(st, br, cfg.Solver, log)
	jobID, err := orch.NewJob(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("job creation failed")
	}
	log.Info().Str("job_id", jobID).Msg("job created")

	started := time.Now()
	resp, err := orch.Run(ctx, jobID, req)
	if err != nil {
		log.Fatal().Err(err).Msg("optimization failed")
	}
	log.Info().Dur("elapsed", time.Since(started)).Msg("optimization done")

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		log.Fatal().Err(err).Msg("response encoding failed")
	}
}

func openStore(cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		return store.NewMemory(), nil
	}
	log.Info().Msg("using postgres store")
	return store.NewPostgres(cfg.DatabaseURL)
}

func openBroker(cfg *config.Config, log zerolog.Logger) broker.Broker {
	if cfg.RedisURL == "" {
		return broker.NewMemory()
	}
	b, err := broker.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis broker unavailable, using in-memory broker")
		return broker.NewMemory()
	}
	log.Info().Msg("using redis broker")
	return b
}

func readRequest(path string) (*plan.Request, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	req := &plan.Request{}
	if err := json.Unmarshal(data, req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return req, nil
}

func serveMetrics(addr string, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info().Str("addr", addr).Msg("metrics listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
