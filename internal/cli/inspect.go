package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/imagefile"
	"github.com/mlenz/keymark/pkg/pose"
	"github.com/mlenz/keymark/pkg/skeleton"
)

// inspectCommand creates the inspect command for browsing a dataset.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		labelsDir   string
		interactive bool
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [images-dir]",
		Short: "Browse images and their annotations",
		Long: `Browse images and their annotations.

For each image in the directory, inspect lists its dimensions and the
skeletons decoded from the matching label file. With --interactive an
image can be picked from a scrollable list to show its full keypoint
breakdown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], labelsDir, interactive, noCache)
		},
	}

	cmd.Flags().StringVarP(&labelsDir, "labels", "l", "", "label directory (default from config)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick an image from an interactive list")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runInspect loads the dataset and either lists it or opens the picker.
func (c *CLI) runInspect(ctx context.Context, imagesDir, labelsDir string, interactive, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if labelsDir == "" {
		labelsDir = cfg.SaveDir
	}

	prober, backend := c.newProber(ctx, cfg, noCache)
	defer backend.Close()

	entries, err := collectEntries(ctx, imagesDir, labelsDir, prober)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		printInfo("No images found in %s", imagesDir)
		return nil
	}

	if interactive {
		return c.runInspectPicker(entries, labelsDir)
	}

	printInfo("%s", StyleTitle.Render(imagesDir))
	for _, e := range entries {
		label := StyleDim.Render("unlabeled")
		if e.HasLabel {
			label = StyleSuccess.Render(fmt.Sprintf("%d skeletons", e.Skeletons))
		}
		printDetail("%-30s %dx%d  %s", e.Name, e.Width, e.Height, label)
	}
	printNewline()
	printNextStep("Inspect a single image", fmt.Sprintf("keymark inspect %s --interactive", imagesDir))
	return nil
}

// runInspectPicker runs the bubbletea picker and prints the chosen image.
func (c *CLI) runInspectPicker(entries []ImageEntry, labelsDir string) error {
	model := NewImageListModel(entries)
	final, err := tea.NewProgram(model).Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}

	m, ok := final.(ImageListModel)
	if !ok || m.Selected == nil {
		printInfo("No image selected")
		return nil
	}

	return printImageDetail(*m.Selected.Entry, labelsDir)
}

// printImageDetail prints one image's skeletons and keypoints.
func printImageDetail(e ImageEntry, labelsDir string) error {
	printNewline()
	fmt.Println(StyleTitle.Render(e.Name))
	printKeyValue("Path", e.Path)
	printKeyValue("Size", fmt.Sprintf("%dx%d", e.Width, e.Height))

	skeletons, err := readSkeletons(e, labelsDir)
	if err != nil {
		return err
	}
	if len(skeletons) == 0 {
		printDetail("no annotations")
		return nil
	}

	for _, s := range skeletons {
		printNewline()
		fmt.Println("  " + listSelectedStyle.Render(fmt.Sprintf("#%d %s", s.ID, s.Variant)) +
			StyleDim.Render(fmt.Sprintf("  %d/%d keypoints", s.PresentCount(), len(s.Variant.Parts()))))
		for _, part := range s.Variant.Parts() {
			if p, ok := s.Keypoint(part); ok {
				printDetail("%-16s %.1f, %.1f", part, p.X, p.Y)
			} else {
				printDetail("%-16s absent", part)
			}
		}
	}
	return nil
}

// readSkeletons decodes the label file matching e, or returns nil when the
// image has no label file.
func readSkeletons(e ImageEntry, labelsDir string) ([]*skeleton.Skeleton, error) {
	data, err := os.ReadFile(imagefile.LabelPath(e.Path, labelsDir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read label: %w", err)
	}
	return pose.Decode(string(data), e.Width, e.Height), nil
}

// collectEntries probes every image in imagesDir and counts the skeletons in
// its label file. Unreadable images are skipped with a warning.
func collectEntries(ctx context.Context, imagesDir, labelsDir string, prober *imagefile.Prober) ([]ImageEntry, error) {
	logger := loggerFromContext(ctx)

	files, err := imagefile.List(imagesDir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	entries := make([]ImageEntry, 0, len(files))
	for _, path := range files {
		dims, err := prober.Probe(ctx, path)
		if err != nil {
			logger.Warn("skipping unreadable image", "path", path, "error", err)
			continue
		}

		entry := ImageEntry{
			Path:   path,
			Name:   filepath.Base(path),
			Width:  dims.Width,
			Height: dims.Height,
		}

		if data, err := os.ReadFile(imagefile.LabelPath(path, labelsDir)); err == nil {
			entry.HasLabel = true
			entry.Skeletons = len(pose.Decode(string(data), dims.Width, dims.Height))
		}

		entries = append(entries, entry)
	}
	return entries, nil
}
