package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuemby/mdvault/pkg/log"
	"github.com/cuemby/mdvault/pkg/metrics"
	"github.com/cuemby/mdvault/pkg/note"
	"github.com/cuemby/mdvault/pkg/vault"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the vault and expose /metrics, /health, /ready, /live",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)

		store, err := vault.Open[note.Line](cfg.Root, scanConfig(cfg))
		if err != nil {
			return fmt.Errorf("open vault: %w", err)
		}

		metrics.SetVersion(Version)
		metrics.RegisterComponent("vault", true, "opened")

		collector := metrics.NewCollector(store.CacheSize)
		collector.Start()
		defer collector.Stop()

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())

		errCh := make(chan error, 1)
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		log.WithComponent("cli").Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", cfg.MetricsAddr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nShutting down...")
		case err := <-errCh:
			return err
		}
		return nil
	},
}
