package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saul00x/gestion3-sub000/internal/alerts"
	apihttp "github.com/saul00x/gestion3-sub000/internal/api/http"
	"github.com/saul00x/gestion3-sub000/internal/attendance/application"
	attendancehttp "github.com/saul00x/gestion3-sub000/internal/attendance/interfaces/http"
	"github.com/saul00x/gestion3-sub000/internal/auth"
	"github.com/saul00x/gestion3-sub000/internal/catalog"
	"github.com/saul00x/gestion3-sub000/internal/chatbot"
	"github.com/saul00x/gestion3-sub000/internal/config"
	"github.com/saul00x/gestion3-sub000/internal/erp"
	"github.com/saul00x/gestion3-sub000/internal/location"
	"github.com/saul00x/gestion3-sub000/internal/observability/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init(logger)

	erpClient, err := erp.NewClient(cfg.ERPBaseURL, cfg.ERPToken,
		erp.WithOnUnauthorized(func() {
			logger.Printf("backend session rejected; token refresh required")
		}),
	)
	if err != nil {
		logger.Fatalf("erp client error: %v", err)
	}

	cache, err := catalog.NewCache(erpClient, catalog.WithTTL(cfg.CatalogTTL.Std()))
	if err != nil {
		logger.Fatalf("catalog cache error: %v", err)
	}

	settings := config.NewSettingsStore(cfg.SettingsPath)

	provider, err := location.NewHTTPProvider(cfg.LocationBaseURL)
	if err != nil {
		logger.Fatalf("location provider error: %v", err)
	}

	gate, err := application.NewGate(erpClient, provider, settings.GateRadius, logger)
	if err != nil {
		logger.Fatalf("gate error: %v", err)
	}

	bot, err := chatbot.NewBot(cache)
	if err != nil {
		logger.Fatalf("chatbot error: %v", err)
	}

	attendanceHandler, err := attendancehttp.NewHandler(gate, erpClient)
	if err != nil {
		logger.Fatalf("attendance handler error: %v", err)
	}
	catalogHandler, err := apihttp.NewCatalogHandler(cache, erpClient)
	if err != nil {
		logger.Fatalf("catalog handler error: %v", err)
	}
	exportsHandler, err := apihttp.NewExportsHandler(cache, erpClient)
	if err != nil {
		logger.Fatalf("exports handler error: %v", err)
	}
	chatbotHandler, err := apihttp.NewChatbotHandler(bot)
	if err != nil {
		logger.Fatalf("chatbot handler error: %v", err)
	}
	messagesHandler, err := apihttp.NewMessagesHandler(erpClient)
	if err != nil {
		logger.Fatalf("messages handler error: %v", err)
	}
	settingsHandler, err := apihttp.NewSettingsHandler(settings)
	if err != nil {
		logger.Fatalf("settings handler error: %v", err)
	}

	if cfg.AlertWebhookURL != "" {
		notifier, err := alerts.NewWebhookNotifier(cfg.AlertWebhookURL, "")
		if err != nil {
			logger.Fatalf("alert notifier error: %v", err)
		}
		rule := alerts.Rule{
			Operator:          alerts.OperatorLessOrEqual,
			FallbackThreshold: settings.Load().AlertThreshold,
		}
		sweeper, err := alerts.NewSweeper(cache, rule, notifier, cfg.AlertInterval.Std(), logger)
		if err != nil {
			logger.Fatalf("alert sweeper error: %v", err)
		}
		go sweeper.Start(context.Background())
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/attendance", attendanceHandler)
	mux.Handle("/api/attendance/", attendanceHandler)
	mux.Handle("/api/stocks", catalogHandler)
	mux.Handle("/api/stocks/", catalogHandler)
	mux.Handle("/api/produits", catalogHandler)
	mux.Handle("/api/magasins", catalogHandler)
	mux.Handle("/api/exports/", exportsHandler)
	mux.Handle("/api/chatbot", chatbotHandler)
	mux.Handle("/api/messages", messagesHandler)
	mux.Handle("/api/settings", settingsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("agent listening on %s", cfg.ListenAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
