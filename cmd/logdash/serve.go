package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logdash/internal/httpserver"
	"github.com/tinytelemetry/logdash/internal/logapi"
	"github.com/tinytelemetry/logdash/internal/refresh"
	"github.com/tinytelemetry/logdash/internal/settings"
	"golang.org/x/sync/errgroup"
)

func newServeCommand() *cobra.Command {
	var listenAddr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dashboard data as JSON over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if listenAddr != "" {
				cfg.ListenAddr = listenAddr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (default "+defaultListenAddr+")")
	return cmd
}

func refreshPeriod(st settings.State) time.Duration {
	return time.Duration(st.RefreshInterval) * time.Second
}

// runServe runs the headless API with a background refresh loop that follows
// the persisted refresh interval.
func runServe(parent context.Context, cfg appConfig) error {
	cleanupLogger := configureRuntimeLogger(cfg.LogPath)
	defer cleanupLogger()

	h, err := openSettings(cfg)
	if err != nil {
		return err
	}
	defer h.close()

	cache := logapi.NewCache(logapi.NewClient(cfg.APIURL, cfg.RequestTimeout))
	apiServer := httpserver.NewServer(cfg.ListenAddr, cache, h.store)
	if err := apiServer.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	defer apiServer.Stop()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := refresh.New(refreshPeriod(h.store.Get()), apiServer.Refresh)
	unsubscribe := h.store.Subscribe(func(st settings.State) {
		task.SetInterval(refreshPeriod(st))
		log.Printf("serve: refresh interval now %ds", st.RefreshInterval)
	})
	defer unsubscribe()

	printStartupBanner(cfg, apiServer.Addr(), h)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		task.Start(gctx)
		task.Wait()
		return nil
	})
	if h.watchPath != "" {
		g.Go(func() error {
			return settings.Watch(gctx, h.store, h.watchPath)
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("serve: errgroup exited with error: %v", err)
		return err
	}
	fmt.Println("\nShutting down.")
	return nil
}

func printStartupBanner(cfg appConfig, addr string, h *settingsHandle) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")
	separator := dim.Render("    ─────────────────────────────────")

	lines := []string{
		"",
		cyan.Bold(true).Render("    logdash serve"),
		"    " + dim.Render("v"+version),
		"",
		separator,
		"",
		bold.Render("    Endpoints"),
		"",
		fmt.Sprintf("    %s  HTTP API       %s", check, cyan.Render("http://"+addr+"/api")),
		fmt.Sprintf("    %s  Log service    %s", check, cyan.Render(cfg.APIURL)),
		"",
		bold.Render("    Settings"),
		"",
	}

	st := h.store.Get()
	if cfg.SettingsBackend == backendDuckDB {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render("duckdb "+shortenPath(cfg.DBPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Storage        %s", check, dim.Render(shortenPath(cfg.SettingsPath))))
	}
	lines = append(lines, fmt.Sprintf("    %s  Refresh        %s", check, dim.Render(fmt.Sprintf("every %ds", st.RefreshInterval))))
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", check, dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  Config File    %s", dot, dim.Render("default (no file)")))
	}

	lines = append(lines,
		"",
		separator,
		"",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"),
		"",
	)
	fmt.Println(strings.Join(lines, "\n"))
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
