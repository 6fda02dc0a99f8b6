package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tinytelemetry/logdash/internal/duckdb"
	"github.com/tinytelemetry/logdash/internal/model"
	"github.com/tinytelemetry/logdash/internal/settings"
	"gopkg.in/yaml.v3"
)

// settingsHandle is an opened settings store with its backend.
type settingsHandle struct {
	store *settings.Store
	// watchPath is the file to follow for external edits; empty for duckdb.
	watchPath string
	close     func()
}

// openSettings opens the store on the configured backend.
func openSettings(cfg appConfig) (*settingsHandle, error) {
	switch cfg.SettingsBackend {
	case backendDuckDB:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err := duckdb.NewStore(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DuckDB: %w", err)
		}
		storage := duckdb.NewSettingsStorage(db, settings.Namespace)
		return &settingsHandle{
			store: settings.Open(storage),
			close: func() { _ = db.Close() },
		}, nil

	default:
		if err := os.MkdirAll(filepath.Dir(cfg.SettingsPath), 0755); err != nil {
			return nil, fmt.Errorf("create settings dir: %w", err)
		}
		storage := settings.NewFileStorage(cfg.SettingsPath)
		return &settingsHandle{
			store:     settings.Open(storage),
			watchPath: storage.Path(),
			close:     func() {},
		}, nil
	}
}

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change persisted dashboard settings",
	}
	cmd.AddCommand(
		newSettingsShowCommand(),
		newSettingsSetCommand(),
		newSettingsResetCommand(),
		newSettingsToggleDarkCommand(),
	)
	return cmd
}

// withSettings loads config, opens the store and runs fn against it.
func withSettings(fn func(store *settings.Store) (settings.State, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		h, err := openSettings(cfg)
		if err != nil {
			return err
		}
		defer h.close()

		st, err := fn(h.store)
		if err != nil {
			return err
		}
		return printSettings(cmd.OutOrStdout(), st)
	}
}

func printSettings(w io.Writer, st settings.State) error {
	out, err := yaml.Marshal(st)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

func newSettingsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: withSettings(func(store *settings.Store) (settings.State, error) {
			return store.Get(), nil
		}),
	}
}

func newSettingsSetCommand() *cobra.Command {
	var (
		interval    int
		darkMode    bool
		defaultView string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change one or more settings",
		Example: `  logdash settings set --refresh-interval 60
  logdash settings set --default-view logs --dark-mode`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().IntVar(&interval, "refresh-interval", 0, "refresh interval in seconds (5-300)")
	cmd.Flags().BoolVar(&darkMode, "dark-mode", false, "enable or disable dark mode")
	cmd.Flags().StringVar(&defaultView, "default-view", "", "view opened at startup (dashboard, logs, analysis, settings)")

	cmd.RunE = withSettings(func(store *settings.Store) (settings.State, error) {
		var patch settings.Patch
		if cmd.Flags().Changed("refresh-interval") {
			patch.RefreshInterval = &interval
		}
		if cmd.Flags().Changed("dark-mode") {
			patch.DarkMode = &darkMode
		}
		if cmd.Flags().Changed("default-view") {
			v, err := model.ParseView(defaultView)
			if err != nil {
				return settings.State{}, err
			}
			patch.DefaultView = &v
		}
		if patch == (settings.Patch{}) {
			return settings.State{}, fmt.Errorf("nothing to set; see --help")
		}
		return store.Update(patch)
	})
	return cmd
}

func newSettingsResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore default settings, keeping dark mode",
		Args:  cobra.NoArgs,
		RunE: withSettings(func(store *settings.Store) (settings.State, error) {
			return store.Reset()
		}),
	}
}

func newSettingsToggleDarkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-dark",
		Short: "Flip dark mode",
		Args:  cobra.NoArgs,
		RunE: withSettings(func(store *settings.Store) (settings.State, error) {
			return store.ToggleDarkMode()
		}),
	}
}
