package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logdash/internal/logapi"
	"github.com/tinytelemetry/logdash/internal/settings"
	"github.com/tinytelemetry/logdash/internal/tui"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

var (
	cfgFile  string
	viewFlag string
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logdash",
		Short: "Terminal dashboard for a remote log service",
		Long: `logdash polls a REST log service and shows summary statistics, a filterable
log table and grouped analysis charts in the terminal.

Run without a subcommand to open the dashboard, or use "logdash serve" to
expose the same data as JSON over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if viewFlag != "" {
				cfg.View = viewFlag
			}
			return runTUI(cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/logdash/config.yml)")
	rootCmd.Flags().StringVar(&viewFlag, "view", "", "start on this view path, e.g. /logs")

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSettingsCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "logdash - Log Dashboard\n")
			fmt.Fprintf(out, "  Version:    %s\n", version)
			fmt.Fprintf(out, "  Commit:     %s\n", commit)
			fmt.Fprintf(out, "  Built:      %s\n", buildTime)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
		},
	}
}

func runTUI(cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger(cfg.LogPath)
	defer cleanupLogger()

	h, err := openSettings(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	cache := logapi.NewCache(logapi.NewClient(cfg.APIURL, cfg.RequestTimeout))
	app := tui.NewApp(tui.Options{
		Source:             cache,
		Settings:           h.store,
		StartPath:          cfg.View,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	// Store mutations also happen inside Update, where a blocking Send would
	// deadlock the event loop.
	unsubscribe := h.store.Subscribe(func(st settings.State) {
		go p.Send(tui.SettingsChangedMsg{State: st})
	})
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if h.watchPath != "" {
		go func() {
			if err := settings.Watch(ctx, h.store, h.watchPath); err != nil {
				log.Printf("settings watcher stopped: %v", err)
			}
		}()
	}

	log.Printf("logdash %s starting, api %s", version, cfg.APIURL)
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// configureRuntimeLogger sends the standard logger to a file, since the TUI
// owns the terminal.
func configureRuntimeLogger(logPath string) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if logPath == "" {
		log.SetOutput(os.Stderr)
		return func() {}
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		_ = f.Close()
	}
}
