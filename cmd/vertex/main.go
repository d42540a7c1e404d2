// Package main is the entry point for the Vertex marketplace console.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/config"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/session"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/tabs/analytics"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/tabs/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/tabs/info"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/tabs/keys"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/tabs/login"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/version"
)

type flags struct {
	logout    bool
	ephemeral bool
}

func main() {
	var f flags
	for _, arg := range os.Args[1:] {
		switch arg {
		case "-v", "--version":
			fmt.Println(version.Info())
			os.Exit(0)
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "--logout":
			f.logout = true
		case "--ephemeral":
			f.ephemeral = true
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n\n", arg)
			printUsage()
			os.Exit(2)
		}
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Setup(cfg.LogPath, logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()

	var opts []services.Option
	if f.ephemeral {
		opts = append(opts, services.WithKVStore(session.NewMemoryStore()))
	}

	mgr, err := services.NewManager(cfg, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			logger.Error("failed to close services", "error", closeErr)
		}
	}()

	if f.logout {
		if err := mgr.Logout(); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	}

	model := app.NewModel(mgr)
	state := model.GetState()
	model.SetTabs([]app.Tab{
		analytics.New(state, mgr),
		keys.New(state, mgr),
		catalog.New(state),
		info.New(state, cfg, mgr),
	})
	model.SetLogin(login.New(state))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	logger.Info("starting", "version", version.GetVersion(), "api", cfg.APIBaseURL)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

func printUsage() {
	fmt.Println(`Vertex - AI model marketplace console

Usage:
  vertex [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information
  --logout        Clear the stored session and exit
  --ephemeral     Keep the session in memory only

Keyboard Shortcuts:
  1-4             Switch tabs (Analytics, Keys, Models, Info)
  Tab/Shift+Tab   Cycle tabs
  j/k, Up/Down    Navigate lists
  r               Refresh
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  API_BASE_URL            Backend base URL (default: http://localhost:5000/api)
  SESSION_PATH            Session file path
  DATABASE_PATH           SQLite database path
  LOG_PATH                Log file path
  LOG_LEVEL               debug, info, warn or error (default: info)
  REQUEST_TIMEOUT         Per-request timeout (default: 15s)
  USAGE_REFRESH_INTERVAL  Analytics polling interval (default: 60s)
  SCOPED_KEYS             Bind new keys to a model (default: false)
  QUOTA_TOTAL             Monthly call quota (default: 50000)

Configuration:
  .env files are read from the current directory, ~/.config/vertex-ai/.env,
  ~/.vertex-ai/.env and the parent directory, first match wins.`)
}
