package imagefile

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Open decodes an image file. imaging handles the registered formats; WebP
// files that slip past it get an explicit fallback decode.
func Open(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err != nil {
			return nil, err
		}
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Scale resizes an image to fit the target box while keeping aspect ratio.
// Landscape images are scaled by width, portrait and square images by height.
func Scale(img image.Image, targetWidth, targetHeight int) image.Image {
	b := img.Bounds()
	if b.Dx() > b.Dy() {
		return imaging.Resize(img, targetWidth, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, targetHeight, imaging.Lanczos)
}

// Resize resizes an image to exactly the target dimensions, ignoring the
// aspect ratio.
func Resize(img image.Image, targetWidth, targetHeight int) image.Image {
	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)
}

// Save encodes an image to path, choosing the encoder by extension.
func Save(img image.Image, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".webp") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return webp.Encode(f, img, &webp.Options{Quality: 90})
	}
	return imaging.Save(img, path)
}

// ScaleFile resizes a single image file into dstPath, keeping aspect ratio.
func ScaleFile(srcPath, dstPath string, targetWidth, targetHeight int) error {
	return resizeFile(srcPath, dstPath, targetWidth, targetHeight, Scale)
}

// ResizeFile resizes a single image file into dstPath to exact dimensions.
func ResizeFile(srcPath, dstPath string, targetWidth, targetHeight int) error {
	return resizeFile(srcPath, dstPath, targetWidth, targetHeight, Resize)
}

func resizeFile(srcPath, dstPath string, targetWidth, targetHeight int, fn func(image.Image, int, int) image.Image) error {
	img, err := Open(srcPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	return Save(fn(img, targetWidth, targetHeight), dstPath)
}
