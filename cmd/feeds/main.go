package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/andresuchdata/shopmetrics/internal/config"
	"github.com/andresuchdata/shopmetrics/internal/feeds"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Initialize Google Drive service
	driveService, err := feeds.NewDriveService(os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"))
	if err != nil {
		log.Fatalf("Failed to initialize Google Drive service: %v", err)
	}

	downloader := feeds.NewDownloader(driveService, cfg.Feeds.DownloadDir)

	// Create router and register routes
	r := mux.NewRouter()
	feedsHandler := feeds.NewHandler(driveService, downloader)
	feedsHandler.RegisterRoutes(r)

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Feeds service starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
