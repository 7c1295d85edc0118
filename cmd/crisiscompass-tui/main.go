package main

import (
	"context"
	"flag"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"crisiscompass/internal/app"
	"crisiscompass/internal/config"
	"crisiscompass/internal/tui"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "Path to config YAML")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.Assemble(cfg, nil)
	if err != nil {
		log.Fatalf("assembly failed: %v", err)
	}

	log.Println("building corpus index...")
	if err := a.Build(context.Background(), cfg); err != nil {
		log.Fatalf("corpus build failed: %v", err)
	}

	m := tui.New(a.Service, uuid.NewString())
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
