package main

import (
	"context"
	"log"
	"time"

	"evalboard/internal/config"
	"evalboard/internal/container"
	"evalboard/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := appContainer.Init(ctx); err != nil {
		cancel()
		log.Fatalf("Failed to initialize container: %v", err)
	}

	// Load the workbook and injury log up front; pages report 503 until it succeeds
	start := time.Now()
	if err := appContainer.Dashboard.Warm(ctx); err != nil {
		log.Printf("Warning: evaluation data not available yet: %v", err)
	} else {
		log.Printf("Evaluation data loaded in %v", time.Since(start).Round(time.Millisecond))
	}
	cancel()
	go appContainer.Dashboard.RunJanitor(context.Background(), appConfig.Cache.SelectionTTL)

	server, err := ui.NewServer(appContainer.Dashboard)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	log.Printf("🚀 Starting evaluation dashboard on port %s (%s data)", appConfig.Server.Port, appConfig.Data.Source)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}
