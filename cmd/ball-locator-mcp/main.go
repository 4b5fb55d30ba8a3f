package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/ball-locator-mcp/internal/config"
	"github.com/ironsheep/ball-locator-mcp/internal/locate"
	"github.com/ironsheep/ball-locator-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("ball-locator-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("ball-locator-mcp - MCP server for locating balls in 3D from one calibrated image")
			fmt.Println()
			fmt.Println("Usage: ball-locator-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  BALL_MCP_LOG_LEVEL=debug     Enable debug logging, including per-candidate diagnostics")
			fmt.Println("  BALL_MCP_CONFIG=<path.json>  Detector config to load, and where detector_config saves")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	debug := os.Getenv("BALL_MCP_LOG_LEVEL") == "debug"
	if debug {
		log.Printf("Ball Locator MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
	} else {
		locate.SetLogger(nil)
	}

	cfg := config.Default()
	configPath := os.Getenv("BALL_MCP_CONFIG")
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			log.Printf("Config %s: %v; using defaults", configPath, err)
		} else if debug {
			log.Printf("Loaded detector config from %s (detector %s)", configPath, cfg.Detector)
		}
	}

	srv, err := server.NewWithConfig(cfg, configPath)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
