package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/quantfeeds/candlekeeper/src/api"
	"github.com/quantfeeds/candlekeeper/src/services"
	"github.com/quantfeeds/candlekeeper/src/store"
	"github.com/quantfeeds/candlekeeper/src/utils"
)

var rootCmd = &cobra.Command{
	Use:   "candlekeeper",
	Short: "Maintains bounded per-symbol windows of recent OHLCV candles.",
	Run: func(cmd *cobra.Command, args []string) {
		run()
	},
}

func run() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.TwelveDataAPIKey == "" {
		log.Warn("TWELVEDATA_API_KEY not set: sync requests will be rejected upstream")
	}

	candleStore := store.NewCandleStore()
	provider := services.NewTwelveDataClient(cfg.TwelveDataBaseURL, cfg.TwelveDataAPIKey)
	ingestion := services.NewIngestionService(candleStore, cfg.WebhookAtomic)
	syncService := services.NewSyncService(candleStore, provider)
	diagnostics := services.NewDiagnosticsService(candleStore)

	// setup router
	router := mux.NewRouter()
	api.SetupHandler(router, candleStore, ingestion, syncService, diagnostics)

	// start the http server
	srv := &http.Server{
		Handler: router,
		Addr:    fmt.Sprintf(":%s", cfg.Port),
	}

	go func() {
		log.Infof("listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: failed to listen and serve: %v", err)
		}
	}()

	// Create channel for shutdown signals.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	signal.Notify(stop, syscall.SIGTERM)

	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("error shutting down server: %v", err)
	} else {
		log.Info("server gracefully stopped")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("failed to execute: %v", err)
	}
}
