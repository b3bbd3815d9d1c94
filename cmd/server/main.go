package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/Djalobre/kvotizza/internal/app"
)

func main() {
	// Local development convenience; production sets real env vars.
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
