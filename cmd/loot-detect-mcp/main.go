package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ironsheep/loot-detect-mcp/internal/config"
	"github.com/ironsheep/loot-detect-mcp/internal/detection"
	"github.com/ironsheep/loot-detect-mcp/internal/ocr"
	"github.com/ironsheep/loot-detect-mcp/internal/server"
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
			fmt.Printf("loot-detect-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	// Logs go to stderr (stdout is for MCP protocol and detect output)
	logger := newLogger(os.Getenv("LOOT_MCP_LOG_LEVEL"))

	cfg, err := loadConfig(os.Getenv("LOOT_MCP_CONFIG"))
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	if len(os.Args) > 1 && os.Args[1] == "detect" {
		if err := runDetect(cfg, logger, os.Args[2:]); err != nil {
			logger.Fatal().Err(err).Msg("detect failed")
		}
		return
	}

	logger.Debug().
		Str("version", Version).
		Str("built", BuildTime).
		Str("commit", GitCommit).
		Msg("Loot Detect MCP Server starting")

	srv := server.New(cfg, logger)
	if err := srv.Run(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func printHelp() {
	fmt.Println("loot-detect-mcp - MCP server for loot bag screenshot detection")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  loot-detect-mcp                                  Serve MCP over stdin/stdout")
	fmt.Println("  loot-detect-mcp detect <screenshot> [templates]  Print detections as JSON")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  LOOT_MCP_LOG_LEVEL=debug      Log level (trace, debug, info, warn, error)")
	fmt.Println("  LOOT_MCP_CONFIG=config.yaml   YAML file overriding the default layout and thresholds")
	fmt.Println()
	fmt.Println("Configure the server in your MCP client (e.g., Claude Desktop).")
}

// newLogger returns a human-readable stderr logger. Unknown or empty levels
// fall back to warn so the MCP stream stays quiet.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runDetect runs one detection and writes the result list to stdout.
func runDetect(cfg config.Config, logger zerolog.Logger, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("usage: loot-detect-mcp detect <screenshot> [template_dir]")
	}
	templateDir := ""
	if len(args) == 2 {
		templateDir = args[1]
	}

	opts := []detection.Option{detection.WithLogger(logger)}
	if cfg.OCR.StackCounts {
		opts = append(opts, detection.WithStackReader(ocr.NewReader(cfg.OCR.Language)))
	}
	d := detection.New(cfg, opts...)

	detections := d.Detect(args[0], templateDir, cfg.Matching.Threshold)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(detections)
}
