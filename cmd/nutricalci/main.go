// cmd/nutricalci/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mcp-nutricalci/internal/catalog"
	"mcp-nutricalci/internal/config"
	"mcp-nutricalci/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var (
		port        = flag.Int("port", cfg.Port, "Port for HTTP transport")
		host        = flag.String("host", cfg.Host, "Host address")
		address     = flag.String("address", "", "Address (alias for host)")
		catalogPath = flag.String("catalog", cfg.CatalogPath, "Path to the dish CSV")
		version     = flag.Bool("version", false, "Show version")
	)
	flag.Parse()

	if *version {
		fmt.Println("nutricalci version 1.0.0")
		os.Exit(0)
	}

	// Use address if provided, otherwise use host
	hostAddr := *host
	if *address != "" {
		hostAddr = *address
	}

	// Nothing works without dishes, so a bad catalog stops startup.
	cat, _, err := catalog.LoadFile(*catalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	srv, err := server.NewNutriServer(&server.Config{
		Host: hostAddr,
		Port: *port,
	}, cat)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		log.Println("Received shutdown signal")
	case err := <-errCh:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down...")
	cancel()
	if err := srv.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
