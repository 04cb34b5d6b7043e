package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gidascan/backend/config"
	httpDelivery "github.com/gidascan/backend/internal/delivery/http"
	"github.com/gidascan/backend/internal/infrastructure/openfoodfacts"
	"github.com/gidascan/backend/internal/infrastructure/vision"
	"github.com/gidascan/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting GidaScan Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize source adapters
	offClient := openfoodfacts.NewClient(
		cfg.OpenFoodFacts.BaseURL,
		cfg.OpenFoodFacts.UserAgent,
		cfg.OpenFoodFacts.Timeout,
	)
	log.Printf("Open Food Facts configured: %s", cfg.OpenFoodFacts.BaseURL)

	visionClient := vision.NewClient(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.BaseURL,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
		cfg.Anthropic.Timeout,
	)
	log.Printf("Vision backend configured: %s (model: %s)", cfg.Anthropic.BaseURL, cfg.Anthropic.Model)

	// Initialize usecase layer
	resolver := usecase.NewResolver(offClient, visionClient)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(resolver)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
