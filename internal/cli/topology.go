package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/cache"
	"github.com/mlenz/keymark/pkg/skeleton"
)

// topologyCommand creates the topology command for variant inspection.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		dot     bool
		render  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "topology [variant]",
		Short: "Show skeleton variants and their part topology",
		Long: `Show skeleton variants and their part topology.

Without arguments, topology lists every variant with its class index,
part order, and connections. Given a variant name it prints that one;
--dot emits the topology as Graphviz DOT, and --render writes an SVG
diagram. Rendered SVGs are cached.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return c.runTopology(cmd.Context(), name, dot, render, noCache)
		},
	}

	cmd.Flags().BoolVar(&dot, "dot", false, "print Graphviz DOT instead of the legend")
	cmd.Flags().StringVarP(&render, "render", "o", "", "render the topology to an SVG file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runTopology prints, exports, or renders the requested variants.
func (c *CLI) runTopology(ctx context.Context, name string, dot bool, render string, noCache bool) error {
	variants := skeleton.Variants()
	if name != "" {
		v, err := skeleton.ParseVariant(name)
		if err != nil {
			return err
		}
		variants = []skeleton.Variant{v}
	}

	if render != "" {
		if len(variants) != 1 {
			return fmt.Errorf("--render needs a single variant")
		}
		return c.renderTopology(ctx, variants[0], render, noCache)
	}

	if dot {
		for _, v := range variants {
			fmt.Print(skeleton.ToDOT(v))
		}
		return nil
	}

	for i, v := range variants {
		if i > 0 {
			printNewline()
		}
		printVariant(v)
	}
	return nil
}

// printVariant prints one variant's legend.
func printVariant(v skeleton.Variant) {
	fmt.Println(StyleTitle.Render(v.String()))
	printKeyValue("Class", fmt.Sprintf("%d", v.ClassIndex()))
	printKeyValue("Parts", strings.Join(v.Parts(), ", "))

	for i, conn := range v.Connections() {
		key := ""
		if i == 0 {
			key = "Connections"
		}
		printKeyValue(key, fmt.Sprintf("%s %s %s", conn.A, iconArrow, conn.B))
	}
}

// renderTopology renders the variant diagram to an SVG file, serving the
// bytes from cache when the same variant was rendered before.
func (c *CLI) renderTopology(ctx context.Context, v skeleton.Variant, output string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	backend := c.newCache(ctx, cfg, noCache)
	defer backend.Close()
	keyer := cache.NewDefaultKeyer()

	key := keyer.ArtifactKey(v.String(), cache.ArtifactKeyOpts{Format: "svg", Layout: "neato"})

	data, hit, err := backend.Get(ctx, key)
	if err != nil || !hit {
		spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s topology...", v))
		spinner.Start()
		data, err = skeleton.RenderSVG(skeleton.ToDOT(v))
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("render topology: %w", err)
		}
		spinner.Stop()
		_ = backend.Set(ctx, key, data, 0)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s topology", v)
	printFile(output)
	printStats(0, 0, hit)
	return nil
}
