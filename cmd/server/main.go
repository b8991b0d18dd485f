package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/config"
	"github.com/GriffinCanCode/ScenarioForge/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	host := flag.String("host", cfg.Server.Host, "Server host")
	resources := flag.String("resources", cfg.Compiler.ResourcesDir, "esmini resources directory")
	output := flag.String("output", cfg.Compiler.OutputDir, "Directory for saved scenarios")
	knowledge := flag.String("knowledge", cfg.Compiler.KnowledgeFile, "Knowledge overlay file (YAML or TOML)")
	catalog := flag.String("catalog", cfg.Placement.Catalog, "Placement candidate catalog")
	placementURL := flag.String("placement-url", cfg.Placement.URL, "Placement service URL")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (colored logs, debug level)")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Server.Host = *host
	cfg.Compiler.ResourcesDir = *resources
	cfg.Compiler.OutputDir = *output
	cfg.Compiler.KnowledgeFile = *knowledge
	cfg.Placement.Catalog = *catalog
	cfg.Placement.URL = *placementURL
	cfg.Logging.Development = *dev
	if *dev {
		cfg.Logging.Level = "debug"
	}

	srv, err := server.NewServer(cfg, server.Options{})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	}
}
