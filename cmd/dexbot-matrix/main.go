// ABOUTME: Entry point for the dexbot matrix bridge
// ABOUTME: Runs the bot engine with Matrix rooms as the transport

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/mundonet/dexbot/internal/config"
	"github.com/mundonet/dexbot/internal/gateway"
)

const banner = `
     _           _           _                        _        _
  __| | _____  _| |__   ___ | |_      _ __ ___   __ _| |_ _ __(_)_  __
 / _' |/ _ \ \/ / '_ \ / _ \| __|____| '_ ' _ \ / _' | __| '__| \ \/ /
| (_| |  __/>  <| |_) | (_) | ||_____| | | | | | (_| | |_| |  | |>  <
 \__,_|\___/_/\_\_.__/ \___/ \__|    |_| |_| |_|\__,_|\__|_|  |_/_/\_\
`

// getConfigPath returns the path to the matrix bridge config file.
// Priority: DEXBOT_MATRIX_CONFIG env var > XDG_CONFIG_HOME/dexbot/matrix-bridge.toml > ~/.config/dexbot/matrix-bridge.toml
func getConfigPath() string {
	if envPath := os.Getenv("DEXBOT_MATRIX_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "matrix-bridge.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "dexbot", "matrix-bridge.toml")
}

func main() {
	// Check for init command
	if len(os.Args) > 1 && os.Args[1] == "init" {
		if err := runInit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	configPath := getConfigPath()

	// Load bridge config
	cfg, err := Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config from %s: %w", configPath, err)
	}

	// Load the engine config it points at
	botCfg, err := config.Load(cfg.Bot.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading bot config from %s: %w", cfg.Bot.ConfigPath, err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging.Level)

	// Print startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:     %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Bot config: %s\n", cfg.Bot.ConfigPath)
	green.Print("    ▶ ")
	fmt.Printf("Homeserver: %s\n", cfg.Matrix.Homeserver)
	green.Print("    ▶ ")
	fmt.Printf("User:       %s\n", cfg.Matrix.UserID)
	fmt.Println()

	// Setup graceful shutdown context first - all operations should respect it
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create bridge, then the engine with the bridge as its transport
	bridge, err := NewBridge(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating bridge: %w", err)
	}

	gw, err := gateway.New(botCfg, bridge, logger)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}
	bridge.SetRouter(gw.Router())

	// Run engine and bridge side by side; either one failing stops both
	errCh := make(chan error, 2)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	go func() { errCh <- gw.Run(runCtx) }()
	go func() { errCh <- bridge.Run(runCtx) }()

	logger.Info("starting bridge")
	err = <-errCh
	cancelRun()
	<-errCh
	return err
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func runInit() error {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println("    Interactive Setup")
	fmt.Println("    -----------------")
	fmt.Println()

	configPath := getConfigPath()

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		yellow.Printf("    Config already exists at %s\n", configPath)
		fmt.Print("    Overwrite? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Println("    Aborted.")
			return nil
		}
		fmt.Println()
	}

	reader := bufio.NewReader(os.Stdin)

	// Gather config values
	green.Print("    ▶ ")
	fmt.Print("Matrix homeserver URL [https://matrix.org]: ")
	homeserver, _ := reader.ReadString('\n')
	homeserver = strings.TrimSpace(homeserver)
	if homeserver == "" {
		homeserver = "https://matrix.org"
	}

	green.Print("    ▶ ")
	fmt.Print("Matrix user ID (e.g. @dexbot:matrix.org): ")
	userID, _ := reader.ReadString('\n')
	userID = strings.TrimSpace(userID)

	green.Print("    ▶ ")
	fmt.Print("Matrix access token: ")
	accessToken, _ := reader.ReadString('\n')
	accessToken = strings.TrimSpace(accessToken)

	green.Print("    ▶ ")
	fmt.Print("Bot config path [~/.config/dexbot/config.yaml]: ")
	botConfig, _ := reader.ReadString('\n')
	botConfig = strings.TrimSpace(botConfig)
	if botConfig == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		botConfig = filepath.Join(homeDir, ".config", "dexbot", "config.yaml")
	}

	// Generate config
	configContent := fmt.Sprintf(`# dexbot-matrix bridge configuration
# Generated by dexbot-matrix init

[matrix]
homeserver = "%s"
user_id = "%s"
access_token = "%s"

[bot]
config_path = "%s"

[bridge]
# Only respond in these rooms (empty = all joined rooms)
allowed_rooms = []
# Send typing indicator while handling a message
typing_indicator = true

[logging]
level = "info"
`, homeserver, userID, accessToken, botConfig)

	// Ensure config directory exists
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Println()
	green.Printf("    ✓ Config written to %s\n", configPath)
	fmt.Println()
	fmt.Println("    Next steps:")
	fmt.Println("    1. Run: dexbot init     # create the bot config")
	fmt.Println("    2. Run: dexbot-matrix")
	fmt.Println()

	return nil
}
