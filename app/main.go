package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/calendar-comb/app/api"
	"github.com/lysyi3m/calendar-comb/app/calendar"
	"github.com/lysyi3m/calendar-comb/app/cfg"
	"github.com/lysyi3m/calendar-comb/app/metrics"
	"github.com/lysyi3m/calendar-comb/app/notify"
	"github.com/lysyi3m/calendar-comb/app/source"
	"github.com/lysyi3m/calendar-comb/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting Calendar Comb", "version", appCfg.Version, "config", appCfg.ConfigPath)

	calendarCfg, err := calendar.NewLoader(appCfg.ConfigPath).Run()
	if err != nil {
		slog.Error("Failed to load calendar configuration", "path", appCfg.ConfigPath, "error", err)
		os.Exit(1)
	}

	// Per-source timeouts are applied through the request context
	httpClient := &http.Client{}

	fetcher := source.NewFetcher(calendarCfg, httpClient, appCfg.UserAgent)
	sink := newSink(appCfg.WebhookURL)
	appMetrics := metrics.New()

	if appCfg.Serve {
		serve(appCfg, calendarCfg, fetcher, sink, appMetrics)
		return
	}

	if err := runOnce(calendarCfg, fetcher, sink, appMetrics); err != nil {
		slog.Error("Digest run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func newSink(webhookURL string) notify.Sink {
	if webhookURL == "" {
		slog.Info("No webhook configured, printing digest to stdout")
		return notify.NewWriter(os.Stdout)
	}
	return notify.NewWebhook(webhookURL)
}

func runOnce(calendarCfg *calendar.Config, fetcher tasks.EventFetcher, sink notify.Sink, appMetrics *metrics.Metrics) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	task := tasks.NewDigestTask(fetcher, calendar.NewPipeline(calendarCfg), sink, appMetrics, time.Now())
	task.Start()

	return task.Execute(ctx)
}

func serve(appCfg *cfg.Cfg, calendarCfg *calendar.Config, fetcher tasks.EventFetcher, sink notify.Sink, appMetrics *metrics.Metrics) {
	handler := api.NewHandler(calendarCfg, fetcher, sink, appMetrics, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "api_enabled", appCfg.APIAccessKey != "")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return
	}

	slog.Info("Calendar Comb shutdown complete")
}
