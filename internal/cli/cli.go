// Package cli implements the keymark command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/buildinfo"
	"github.com/mlenz/keymark/pkg/cache"
	"github.com/mlenz/keymark/pkg/config"
	"github.com/mlenz/keymark/pkg/imagefile"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "keymark"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag value; empty means the default
	// location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "keymark",
		Short:        "Keymark manages firearm keypoint annotation datasets",
		Long:         `Keymark is a CLI tool for working with firearm keypoint annotations in the YOLO pose format: inspecting and validating label files, computing dataset statistics, rendering skeleton topologies, resizing images, and serving a read-only dataset API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/keymark/config.toml)")

	// Make the CLI logger reachable through cmd.Context().
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

// loadConfig reads the configured or default config file.
func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newCache opens the configured cache backend. With noCache set, or when the
// backend cannot be reached, it degrades to a null cache so commands still
// run.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	backend, err := cache.Open(ctx, cfg.CacheOptions(dir))
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "error", err)
		return cache.NewNullCache()
	}
	return backend
}

// newProber builds a dimension prober backed by the configured cache.
func (c *CLI) newProber(ctx context.Context, cfg config.Config, noCache bool) (*imagefile.Prober, cache.Cache) {
	backend := c.newCache(ctx, cfg, noCache)
	return imagefile.NewProber(backend, cache.NewDefaultKeyer()), backend
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/keymark/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
