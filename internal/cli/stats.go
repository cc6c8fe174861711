package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/cache"
	"github.com/mlenz/keymark/pkg/imagefile"
	"github.com/mlenz/keymark/pkg/pose"
	"github.com/mlenz/keymark/pkg/skeleton"
)

// datasetStats is the aggregate computed by the stats command. It is cached
// keyed on a fingerprint of the label directory, so unchanged datasets are
// served without re-reading every label file.
type datasetStats struct {
	Images    int            `json:"images"`
	Labeled   int            `json:"labeled"`
	Skeletons int            `json:"skeletons"`
	Keypoints int            `json:"keypoints"`
	PerClass  map[string]int `json:"per_class"`
}

// statsCommand creates the stats command.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		labelsDir string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "stats [images-dir]",
		Short: "Show aggregate annotation statistics for a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), args[0], labelsDir, noCache)
		},
	}

	cmd.Flags().StringVarP(&labelsDir, "labels", "l", "", "label directory (default from config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runStats computes or retrieves the dataset aggregate and prints it.
func (c *CLI) runStats(ctx context.Context, imagesDir, labelsDir string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if labelsDir == "" {
		labelsDir = cfg.SaveDir
	}

	prober, backend := c.newProber(ctx, cfg, noCache)
	defer backend.Close()
	keyer := cache.NewDefaultKeyer()

	fingerprint, err := labelFingerprint(imagesDir, labelsDir)
	if err != nil {
		return err
	}
	key := keyer.StatsKey(imagesDir, fingerprint)

	var stats datasetStats
	cached := false
	if data, ok, err := backend.Get(ctx, key); err == nil && ok {
		if json.Unmarshal(data, &stats) == nil {
			cached = true
		}
	}

	if !cached {
		spinner := newSpinnerWithContext(ctx, "Scanning dataset...")
		spinner.Start()
		stats, err = computeStats(ctx, imagesDir, labelsDir, prober)
		if err != nil {
			spinner.StopWithError("Scan failed")
			return err
		}
		spinner.Stop()

		if data, err := json.Marshal(stats); err == nil {
			_ = backend.Set(ctx, key, data, 0)
		}
	}

	fmt.Println(StyleTitle.Render(imagesDir))
	printStats(stats.Images, stats.Skeletons, cached)
	printKeyValue("Images", fmt.Sprintf("%d (%d labeled)", stats.Images, stats.Labeled))
	printKeyValue("Skeletons", fmt.Sprintf("%d", stats.Skeletons))
	printKeyValue("Keypoints", fmt.Sprintf("%d", stats.Keypoints))

	classes := make([]string, 0, len(stats.PerClass))
	for name := range stats.PerClass {
		classes = append(classes, name)
	}
	sort.Strings(classes)
	for _, name := range classes {
		printKeyValue(name, fmt.Sprintf("%d", stats.PerClass[name]))
	}

	if stats.Labeled < stats.Images {
		printNewline()
		printNextStep("Find unlabeled images", fmt.Sprintf("keymark inspect %s", imagesDir))
	}
	return nil
}

// computeStats walks every image and decodes its label file.
func computeStats(ctx context.Context, imagesDir, labelsDir string, prober *imagefile.Prober) (datasetStats, error) {
	stats := datasetStats{PerClass: map[string]int{}}

	files, err := imagefile.List(imagesDir)
	if err != nil {
		return stats, fmt.Errorf("list images: %w", err)
	}
	stats.Images = len(files)

	for _, path := range files {
		dims, err := prober.Probe(ctx, path)
		if err != nil {
			continue
		}

		data, err := os.ReadFile(imagefile.LabelPath(path, labelsDir))
		if err != nil {
			continue
		}
		stats.Labeled++

		for _, s := range pose.Decode(string(data), dims.Width, dims.Height) {
			stats.Skeletons++
			stats.Keypoints += s.PresentCount()
			stats.PerClass[s.Variant.String()]++
		}
	}

	// Count every variant even when absent, so the report shape is stable.
	for _, v := range skeleton.Variants() {
		if _, ok := stats.PerClass[v.String()]; !ok {
			stats.PerClass[v.String()] = 0
		}
	}
	return stats, nil
}

// labelFingerprint hashes the label directory's file listing (name, size,
// mtime). Any label edit changes the fingerprint and invalidates the cached
// aggregate.
func labelFingerprint(imagesDir, labelsDir string) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n", imagesDir)

	entries, err := os.ReadDir(labelsDir)
	if os.IsNotExist(err) {
		return cache.Hash(buf.Bytes()), nil
	}
	if err != nil {
		return "", fmt.Errorf("read labels dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".txt" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(&buf, "%s|%d|%d\n", e.Name(), info.Size(), info.ModTime().UnixNano())
	}
	return cache.Hash(buf.Bytes()), nil
}
