package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"crisiscompass/internal/app"
	"crisiscompass/internal/config"
	"crisiscompass/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(log.Writer(), "[CORE] ", log.LstdFlags)
	a, err := app.Assemble(cfg, logger)
	if err != nil {
		log.Fatalf("assembly failed: %v", err)
	}

	// Build runs to completion before the listener opens; no query is
	// ever served against a partially built index.
	if err := a.Build(context.Background(), cfg); err != nil {
		log.Fatalf("corpus build failed: %v", err)
	}

	srv := server.New(a.Service, a.Posts, nil)
	log.Printf("listening on %s", cfg.Server.Addr)
	if err := srv.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
