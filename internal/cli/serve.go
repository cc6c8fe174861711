package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/internal/server"
)

// serveCommand creates the serve command for the read-only dataset API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		labelsDir string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve [images-dir]",
		Short: "Serve a read-only dataset API over HTTP",
		Long: `Serve a read-only dataset API over HTTP.

Endpoints:
  GET /healthz                        liveness probe
  GET /v1/variants                    skeleton variants and topologies
  GET /v1/images                      dataset images with dimensions
  GET /v1/images/{name}/annotations   decoded annotations for one image`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args[0], labelsDir, addr, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (default from config)")
	cmd.Flags().StringVarP(&labelsDir, "labels", "l", "", "label directory (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runServe runs the HTTP server until the context is cancelled.
func (c *CLI) runServe(ctx context.Context, imagesDir, labelsDir, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if labelsDir == "" {
		labelsDir = cfg.SaveDir
	}
	if addr == "" {
		addr = cfg.Server.Addr
	}

	prober, backend := c.newProber(ctx, cfg, noCache)
	defer backend.Close()

	srv := server.New(server.Options{
		ImagesDir: imagesDir,
		LabelsDir: labelsDir,
		Prober:    prober,
		Logger:    c.Logger,
	})

	printInfo("Serving %s on %s", imagesDir, StyleLink.Render("http://"+addr))
	printDetail("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
