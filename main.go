package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"airsense/internal/config"
	"airsense/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	server, err := ui.NewServer(appConfig)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("🌬  airsense starting on port %s (uploads: %d MB, %d concurrent)",
		appConfig.Server.Port, appConfig.Server.MaxUploadMB, appConfig.Server.MaxConcurrentUploads)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
