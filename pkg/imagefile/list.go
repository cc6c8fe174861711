// Package imagefile locates, probes and resizes the image files of an
// annotation dataset. Dimension probes read only the image header and can be
// memoized through a cache backend, which matters when stepping through large
// datasets.
package imagefile

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedExts are the image extensions the tool reads.
var supportedExts = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".webp": {},
}

// IsImage reports whether the filename has a supported image extension.
func IsImage(name string) bool {
	_, ok := supportedExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

// List returns the image files directly inside dir, sorted by name. The sort
// order is the dataset's navigation order.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !IsImage(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// LabelPath maps an image path to its label file in labelDir, replacing the
// image extension with .txt.
func LabelPath(imagePath, labelDir string) string {
	base := filepath.Base(imagePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(labelDir, name+".txt")
}
