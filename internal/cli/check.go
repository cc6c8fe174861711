package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/imagefile"
	"github.com/mlenz/keymark/pkg/pose"
)

// checkCommand creates the check command for validating a dataset.
func (c *CLI) checkCommand() *cobra.Command {
	var (
		labelsDir string
		strict    bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "check [images-dir]",
		Short: "Validate label files against their images",
		Long: `Validate label files against their images.

check reports malformed label lines, label files without a matching
image, and keypoints that fall outside the image bounds. Malformed
lines fail the command; with --strict every finding does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd.Context(), args[0], labelsDir, strict, noCache)
		},
	}

	cmd.Flags().StringVarP(&labelsDir, "labels", "l", "", "label directory (default from config)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as failures")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runCheck validates every label file and reports findings.
func (c *CLI) runCheck(ctx context.Context, imagesDir, labelsDir string, strict, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if labelsDir == "" {
		labelsDir = cfg.SaveDir
	}

	prober, backend := c.newProber(ctx, cfg, noCache)
	defer backend.Close()

	files, err := imagefile.List(imagesDir)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}

	var errorCount, warnCount int

	checked := 0
	for _, path := range files {
		dims, err := prober.Probe(ctx, path)
		if err != nil {
			printWarning("%s: unreadable image: %v", filepath.Base(path), err)
			warnCount++
			continue
		}

		labelPath := imagefile.LabelPath(path, labelsDir)
		data, err := os.ReadFile(labelPath)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			printError("%s: %v", filepath.Base(labelPath), err)
			errorCount++
			continue
		}
		checked++

		skeletons, skipped := pose.DecodeReport(string(data), dims.Width, dims.Height)
		for _, skipErr := range skipped {
			printError("%s: %v", filepath.Base(labelPath), skipErr)
			errorCount++
		}

		for _, s := range skeletons {
			for _, part := range s.Variant.Parts() {
				p, ok := s.Keypoint(part)
				if !ok {
					continue
				}
				if p.X < 0 || p.X > float64(dims.Width-1) || p.Y < 0 || p.Y > float64(dims.Height-1) {
					printWarning("%s: skeleton %d %q at (%.1f, %.1f) outside %dx%d",
						filepath.Base(labelPath), s.ID, part, p.X, p.Y, dims.Width, dims.Height)
					warnCount++
				}
			}
		}
	}

	orphans, err := orphanLabels(imagesDir, labelsDir, files)
	if err != nil {
		return err
	}
	for _, name := range orphans {
		printWarning("%s: no matching image", name)
		warnCount++
	}

	printNewline()
	switch {
	case errorCount == 0 && warnCount == 0:
		printSuccess("Checked %d label files, no problems found", checked)
	case errorCount == 0:
		printInfo("Checked %d label files: %d warnings", checked, warnCount)
	default:
		printInfo("Checked %d label files: %d errors, %d warnings", checked, errorCount, warnCount)
	}

	if errorCount > 0 || (strict && warnCount > 0) {
		return fmt.Errorf("dataset check failed")
	}
	return nil
}

// orphanLabels returns label files that match no image in the dataset.
func orphanLabels(imagesDir, labelsDir string, images []string) ([]string, error) {
	expected := make(map[string]struct{}, len(images))
	for _, path := range images {
		expected[filepath.Base(imagefile.LabelPath(path, labelsDir))] = struct{}{}
	}

	entries, err := os.ReadDir(labelsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read labels dir: %w", err)
	}

	var orphans []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		if _, ok := expected[e.Name()]; !ok {
			orphans = append(orphans, e.Name())
		}
	}
	return orphans, nil
}
