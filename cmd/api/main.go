package main

import (
	"log"
	"net/http"
	"os"
	"time"

	apphttp "bookdrop/internal/http"
	"bookdrop/internal/httpx"
	"bookdrop/internal/ledger"
	"bookdrop/internal/lookup"
	"bookdrop/internal/pipeline"
	"bookdrop/internal/platform/amazon"
	"bookdrop/internal/platform/github"
	"bookdrop/internal/platform/hardcover"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	apiSecret := mustGetEnv("API_SECRET")
	hardcoverToken := mustGetEnv("HARDCOVER_API_TOKEN")
	hardcoverURL := getEnv("HARDCOVER_API_URL", "")
	githubToken := mustGetEnv("GITHUB_TOKEN")
	githubRepo := mustGetEnv("GITHUB_REPO") // "owner/name"
	ledgerPath := getEnv("LEDGER_PATH", "book_selections.csv")
	// QUEUE_PATH= (set but empty) disables the review queue entirely.
	queuePath := "review_queue.csv"
	if v, set := os.LookupEnv("QUEUE_PATH"); set {
		queuePath = v
	}

	store := github.NewClient("", githubToken, githubRepo)
	searchClient := hardcover.NewClient(hardcoverURL, hardcoverToken, 1, 2)

	ledgerWriter := ledger.NewWriter(store, ledgerPath, queuePath, nil)
	recordResolver := lookup.NewResolver(searchClient, amazon.NewScraper())
	pipelineService := pipeline.NewService(amazon.NewResolver(), recordResolver, ledgerWriter)

	router := newRouter(
		apphttp.NewSubmitHandler(pipelineService, apiSecret),
		apphttp.NewTriggerHandler(pipelineService, apiSecret),
	)

	handler := httpx.RequestIDMiddleware(
		httpx.AccessLogMiddleware(
			httpx.RecoveryMiddleware(router)))

	httpServer := &http.Server{
		Addr:    serverAddress,
		Handler: handler,
		// The pipeline makes several remote calls per submission; give
		// writes enough headroom for redirect hops plus two lookups.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s", serverAddress)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func newRouter(submitHandler *apphttp.SubmitHandler, triggerHandler *apphttp.TriggerHandler) *http.ServeMux {
	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.HandleFunc("/submissions", submitHandler.Submit)
	router.HandleFunc("/email", triggerHandler.Email)

	return router
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}
