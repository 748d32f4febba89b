// Command swift-lsp-worker runs the Swift language service worker as a
// standalone LSP server, speaking stdio or TCP transport to a single
// editor client.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	glspserver "github.com/tliron/glsp/server"

	"github.com/swift-server/sourcekit-lsp-go/internal/buildsettings"
	"github.com/swift-server/sourcekit-lsp-go/internal/config"
	"github.com/swift-server/sourcekit-lsp-go/internal/lspadapter"
	"github.com/swift-server/sourcekit-lsp-go/internal/sourcekitd"
	"github.com/swift-server/sourcekit-lsp-go/internal/worker"
)

const version = "0.1.0"

var (
	tcpMode         bool
	tcpPort         int
	logLevel        string
	logFile         string
	sourcekitdPath  string
	excludedSchemes string
	requestTimeout  time.Duration
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.StringVar(&sourcekitdPath, "sourcekitd-path", os.Getenv("SOURCEKITD_PATH"), "Path to the sourcekitd dylib")
	flag.StringVar(&excludedSchemes, "excluded-schemes", "git,hg", "Comma-separated URI schemes diagnostics are never published for")
	flag.DurationVar(&requestTimeout, "request-timeout", 30*time.Second, "Compiler-service request timeout (0 disables)")
	flag.Usage = usage
}

// loadConfig resolves a *config.Config from the parsed flags, falling
// back to config.Defaults() for anything left unset on the command line.
func loadConfig() *config.Config {
	cfg := config.Defaults()
	cfg.DylibPath = sourcekitdPath
	cfg.LogLevel = logLevel
	cfg.RequestTimeout = requestTimeout
	if excludedSchemes != "" {
		cfg.ExcludedSchemes = strings.Split(excludedSchemes, ",")
	}
	return cfg
}

func usage() {
	fmt.Fprintf(os.Stderr, "swift-lsp-worker version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: swift-lsp-worker [options]\n\n")
	fmt.Fprintf(os.Stderr, "Language Server Protocol front-end for the Swift compiler service\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("swift-lsp-worker version %s\n", version)
		os.Exit(0)
	}

	cfg := loadConfig()
	logger := setupLogging(cfg)

	if cfg.DylibPath == "" {
		logger.Error("no sourcekitd dylib path given (-sourcekitd-path or $SOURCEKITD_PATH)")
		os.Exit(1)
	}

	registry := sourcekitd.NewRegistry(sourcekitd.OpenFFIClient)
	rawClient, release, err := registry.Acquire(cfg.DylibPath)
	if err != nil {
		logger.Error("failed to load sourcekitd", "path", cfg.DylibPath, "error", err)
		os.Exit(1)
	}
	client := sourcekitd.NewReleasingClient(rawClient, release)

	buildSettings := buildsettings.NewStaticProvider(nil)

	adapter := lspadapter.New(logger)
	w := worker.New(worker.Options{
		Client:          client,
		BuildSettings:   buildSettings,
		Logger:          logger,
		Coordinator:     adapter,
		ExcludedSchemes: cfg.ExcludedSchemes,
		RequestTimeout:  cfg.RequestTimeout,
	})
	adapter.Attach(w)

	handler := adapter.NewHandler()
	srv := glspserver.NewServer(handler, "sourcekit-lsp-go", false)

	logger.Info("starting", "version", version, "transport", transportName())

	if tcpMode {
		err = srv.RunTCP(fmt.Sprintf("127.0.0.1:%d", tcpPort))
	} else {
		err = srv.RunStdio()
	}
	if err != nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func transportName() string {
	if tcpMode {
		return fmt.Sprintf("tcp:%d", tcpPort)
	}
	return "stdio"
}

func setupLogging(cfg *config.Config) *slog.Logger {
	out := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		out = f
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
