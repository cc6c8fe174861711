package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mlenz/keymark/pkg/imagefile"
)

// resizeCommand creates the resize command for batch image scaling.
func (c *CLI) resizeCommand() *cobra.Command {
	var (
		width      int
		height     int
		out        string
		keepAspect bool
	)

	cmd := &cobra.Command{
		Use:   "resize [images-dir]",
		Short: "Batch resize dataset images",
		Long: `Batch resize dataset images.

Every image in the directory is resized to the given dimensions. With
--keep-aspect, landscape images are scaled by width and portrait images
by height so proportions survive. Without --out images are replaced in
place.

Label files store normalized coordinates, so aspect-preserving resizes
keep existing annotations valid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if width <= 0 || height <= 0 {
				return fmt.Errorf("width and height must be positive")
			}
			return c.runResize(cmd.Context(), args[0], out, width, height, keepAspect)
		},
	}

	cmd.Flags().IntVarP(&width, "width", "w", 0, "target width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "target height in pixels")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output directory (default: resize in place)")
	cmd.Flags().BoolVar(&keepAspect, "keep-aspect", false, "preserve aspect ratio")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	return cmd
}

// runResize scales every image in the directory.
func (c *CLI) runResize(ctx context.Context, imagesDir, out string, width, height int, keepAspect bool) error {
	logger := loggerFromContext(ctx)

	files, err := imagefile.List(imagesDir)
	if err != nil {
		return fmt.Errorf("list images: %w", err)
	}
	if len(files) == 0 {
		printInfo("No images found in %s", imagesDir)
		return nil
	}

	resize := imagefile.ResizeFile
	if keepAspect {
		resize = imagefile.ScaleFile
	}

	prog := newProgress(logger)
	resized := 0
	for _, src := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		dst := src
		if out != "" {
			dst = filepath.Join(out, filepath.Base(src))
		}

		if err := resize(src, dst, width, height); err != nil {
			printWarning("%s: %v", filepath.Base(src), err)
			continue
		}
		logger.Debug("resized", "src", src, "dst", dst)
		resized++
	}
	prog.done(fmt.Sprintf("Resized %d of %d images", resized, len(files)))

	printSuccess("Resized %d images", resized)
	if out != "" {
		printFile(out)
	}
	if resized < len(files) {
		printWarning("%d images failed, see warnings above", len(files)-resized)
	}
	return nil
}
