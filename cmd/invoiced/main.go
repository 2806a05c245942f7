package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invoicechain/config"
	"invoicechain/core"
	"invoicechain/observability/logging"
	"invoicechain/rpc"
	"invoicechain/storage"
)

func main() {
	configPath := flag.String("config", "./invoiced.toml", "path to the daemon configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.Setup("invoiced", logging.ParseLevel(cfg.LogLevel))

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DataDir, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	node := core.NewNode(db)
	contractCfg, created, err := node.Bootstrap(
		cfg.Contract.AdminAddress,
		cfg.Contract.Denom,
		cfg.Contract.Recipient,
		cfg.Contract.BusinessName,
	)
	if err != nil {
		logger.Error("contract bootstrap failed", "error", err)
		os.Exit(1)
	}
	if created {
		logger.Info("contract instantiated",
			"admin", contractCfg.Admin,
			"recipient", contractCfg.Recipient,
			"denom", contractCfg.Denom,
		)
	} else {
		logger.Info("contract already instantiated", "admin", contractCfg.Admin)
	}

	rpcServer := rpc.NewServer(node)
	rpcErrCh := make(chan error, 1)
	go func() {
		logger.Info("serving JSON-RPC", "address", cfg.RPCAddress)
		rpcErrCh <- rpcServer.Start(cfg.RPCAddress)
	}()

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsServer := &http.Server{Addr: cfg.MetricsAddress, Handler: router}
	go func() {
		logger.Info("serving metrics", "address", cfg.MetricsAddress)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-rpcErrCh:
		logger.Error("rpc server exited", "error", err)
		os.Exit(1)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(ctx)
}
