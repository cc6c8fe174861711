package imagefile

import (
	"context"
	"encoding/json"
	"image"
	"os"

	// Register decoders for every supported extension so image.DecodeConfig
	// and image.Decode handle the full set.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"

	"github.com/mlenz/keymark/pkg/cache"
	"github.com/mlenz/keymark/pkg/observability"
)

// Dimensions is the pixel size of an image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Probe reads the image header and returns its dimensions without decoding
// pixel data.
func Probe(path string) (Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return Dimensions{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Dimensions{}, err
	}
	return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// Prober probes image dimensions through a cache. Keys include file size and
// modification time, so a rewritten image re-probes automatically.
type Prober struct {
	cache cache.Cache
	keyer cache.Keyer
}

// NewProber creates a caching prober. A nil cache disables memoization.
func NewProber(c cache.Cache, k cache.Keyer) *Prober {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &Prober{cache: c, keyer: k}
}

// Probe returns the image's dimensions, consulting the cache first.
func (p *Prober) Probe(ctx context.Context, path string) (Dimensions, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Dimensions{}, err
	}
	key := p.keyer.ProbeKey(path, info.Size(), info.ModTime())

	if data, hit, err := p.cache.Get(ctx, key); err == nil && hit {
		var dims Dimensions
		if json.Unmarshal(data, &dims) == nil {
			observability.Cache().OnCacheHit(ctx, "probe")
			return dims, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "probe")

	dims, err := Probe(path)
	if err != nil {
		return Dimensions{}, err
	}

	if data, err := json.Marshal(dims); err == nil {
		// Cache write failures degrade to a re-probe next time.
		_ = p.cache.Set(ctx, key, data, 0)
		observability.Cache().OnCacheSet(ctx, "probe", len(data))
	}
	return dims, nil
}
