package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ironsheep/equip-scan-mcp/internal/config"
	"github.com/ironsheep/equip-scan-mcp/internal/server"
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
			fmt.Printf("equip-scan-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("equip-scan-mcp - MCP server for equipment recognition in game screenshots")
			fmt.Println()
			fmt.Println("Usage: equip-scan-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  EQUIP_SCAN_LOG_LEVEL=debug            Enable debug logging")
			fmt.Println("  EQUIP_SCAN_MATCHER_URL=<url>          Matching service (default http://localhost:8080)")
			fmt.Println("  EQUIP_SCAN_MATCHER_TIMEOUT_MS=10000   Per-request timeout")
			fmt.Println("  EQUIP_SCAN_MATCHER_MAX_ATTEMPTS=3     Attempts per matching request")
			fmt.Println("  EQUIP_SCAN_MATCHER_BACKOFF_MS=250     Base retry backoff")
			fmt.Println("  EQUIP_SCAN_RECOGNIZE_TIMEOUT_MS=30000 Bound on one recognition run")
			fmt.Println("  EQUIP_SCAN_EXTRACT_WORKERS=<n>        Concurrent extractions (default: CPUs)")
			fmt.Println("  EQUIP_SCAN_TUNING_FILE=<path>         JSON detection/size/budget overrides")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if cfg.Debug() {
		log.Printf("Equip Scan MCP Server v%s (built %s, commit %s)", Version, BuildTime, GitCommit)
		log.Printf("Matcher: %s (timeout %s, %d attempts)", cfg.MatcherURL, cfg.MatcherTimeout(), cfg.MatcherMaxAttempts)
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}
	if err := srv.Run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
