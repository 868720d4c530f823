package main

import (
	"log"

	"feedbackhub/internal/config"
	"feedbackhub/internal/server"
)

// @title           Feedback Board API
// @version         1.0
// @description     API for collecting, voting on and analysing product feedback.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
