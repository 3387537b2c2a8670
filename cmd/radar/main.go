package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/equityscope/newsradar/internal/aggregator"
	"github.com/equityscope/newsradar/internal/alerts"
	"github.com/equityscope/newsradar/internal/config"
	"github.com/equityscope/newsradar/internal/market"
	"github.com/equityscope/newsradar/internal/models"
	"github.com/equityscope/newsradar/internal/registry"
	"github.com/equityscope/newsradar/internal/scheduler"
	"github.com/equityscope/newsradar/internal/sources"
	"github.com/equityscope/newsradar/internal/storage"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting news radar")

	// Snapshot storage: Azure blob when configured, in-memory otherwise
	var store storage.SnapshotStore
	if cfg.StorageAccount != "" {
		azure, err := storage.NewAzureStorage(cfg.StorageAccount, cfg.StorageContainer)
		if err != nil {
			logrus.Fatalf("Failed to initialize storage: %v", err)
		}
		store = azure
	} else {
		logrus.Info("No storage account configured, scan snapshots are kept in memory only")
		store = storage.NewMemoryStore()
	}

	// Initialize pipeline collaborators
	reg := registry.New(cfg)
	fetcher := sources.NewFeedFetcher(sources.Options{
		Timeout:               time.Duration(cfg.FetchTimeoutSeconds) * time.Second,
		MaxEntries:            cfg.EntriesPerSource,
		RecencyWindow:         time.Duration(cfg.RecencyWindowDays) * 24 * time.Hour,
		InsecureSkipTLSVerify: cfg.InsecureSkipTLSVerify,
	})
	alertService := alerts.NewService(cfg)
	aggregatorService := aggregator.NewService(cfg, reg, fetcher, store, alertService)
	quoteClient := market.NewClient("")

	// Initialize scheduler
	schedulerService := scheduler.NewService(cfg, aggregatorService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	// Set up HTTP server
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.HandleFunc("/metrics", metricsHandler(aggregatorService)).Methods("GET")
	router.HandleFunc("/headlines", headlinesHandler(cfg, aggregatorService)).Methods("GET")
	router.HandleFunc("/groups", groupsHandler(reg)).Methods("GET")
	router.HandleFunc("/quote/{symbol}", quoteHandler(quoteClient)).Methods("GET")
	router.HandleFunc("/snapshots", snapshotListHandler(store)).Methods("GET")
	router.HandleFunc("/snapshots/{name}", snapshotGetHandler(store)).Methods("GET")
	router.HandleFunc("/snapshots/{name}", snapshotDeleteHandler(store)).Methods("DELETE")
	router.HandleFunc("/trigger", triggerHandler(cfg, aggregatorService)).Methods("POST")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func metricsHandler(aggregatorService *aggregator.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics := aggregatorService.GetMetrics()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(metrics))
	}
}

// headlinesHandler runs a scan with the caller's filter state and returns
// the filtered records plus the distinct sources observed. This is the
// hand-off to the presentation collaborator.
func headlinesHandler(cfg *config.Config, aggregatorService *aggregator.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := filterStateFromQuery(cfg, r)
		group := r.URL.Query().Get("group")

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
		defer cancel()

		result, err := aggregatorService.Scan(ctx, group, state)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(result)
	}
}

func groupsHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string][]string{"groups": reg.Groups()})
	}
}

func quoteHandler(client *market.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		symbol := mux.Vars(r)["symbol"]
		quote := client.GetQuote(r.Context(), symbol)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(quote)
	}
}

// snapshotListHandler lists archived scan snapshots by name.
func snapshotListHandler(store storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := store.List("headlines-")
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string][]string{"snapshots": names})
	}
}

func snapshotGetHandler(store storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := store.Retrieve(mux.Vars(r)["name"])
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func snapshotDeleteHandler(store storage.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["name"]
		if err := store.Delete(name); err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		logrus.Infof("Deleted snapshot %s", name)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Snapshot deleted"}`))
	}
}

func triggerHandler(cfg *config.Config, aggregatorService *aggregator.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			state := models.FilterState{
				Whitelist: cfg.DefaultWhitelist,
				Blacklist: cfg.DefaultBlacklist,
				SortKey:   models.SortNewestFirst,
			}
			if _, err := aggregatorService.Scan(context.Background(), "", state); err != nil {
				logrus.Errorf("Manual scan trigger failed: %v", err)
			}
		}()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"Scan triggered successfully"}`))
	}
}

func filterStateFromQuery(cfg *config.Config, r *http.Request) models.FilterState {
	q := r.URL.Query()

	state := models.FilterState{
		Keyword:   q.Get("q"),
		Whitelist: cfg.DefaultWhitelist,
		Blacklist: cfg.DefaultBlacklist,
		SortKey:   models.SortNewestFirst,
	}

	if v := q.Get("sources"); v != "" {
		state.Whitelist = splitParam(v)
	}
	if v := q.Get("exclude"); v != "" {
		state.Blacklist = splitParam(v)
	}
	switch q.Get("sort") {
	case "by_source":
		state.SortKey = models.SortBySource
	case "by_company":
		state.SortKey = models.SortByCompany
	}

	return state
}

func splitParam(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
