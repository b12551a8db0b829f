package main

import (
	"fmt"
	"log"
	"os"

	"github.com/titangym/gymdesk/internal/config"
	"github.com/titangym/gymdesk/internal/database"
	"github.com/titangym/gymdesk/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]

	switch command {
	case "init-db":
		cfg := config.NewConfig()
		db, err := database.NewDatabase(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := db.Close(); err != nil {
			log.Fatalf("Failed to close database: %v", err)
		}
		fmt.Printf("Database initialized at %s\n", cfg.Database.Path)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve    Start the HTTP server (default if no command given)\n")
	fmt.Fprintf(os.Stderr, "  init-db  Create the database schema and seed the default administrator\n")
}
