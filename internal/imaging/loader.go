package imaging

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/ironsheep/image-convolve-mcp/internal/preprocess"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// ImageCache keeps decoded source images keyed by the path they were loaded
// from, so repeated tool calls on one file skip the disk and the decoder.
//
// Entries are the decoded images before any preprocessing. Convolution and
// preprocessing always produce new values and never mutate a cached image.
//
// ImageCache is safe for concurrent use.
//
//	cache := imaging.NewImageCache()
//	img, err := cache.Load("scan.png")
//	if err != nil {
//	    return err
//	}
//	defer cache.Evict("scan.png")
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache returns an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load returns the decoded image for path, reading it from disk on the first
// request. PNG, JPEG, GIF, BMP, TIFF and WebP are recognised by content.
//
// Paths are used verbatim as keys: "./a.png" and "a.png" are cached
// separately.
func (c *ImageCache) Load(path string) (image.Image, error) {
	c.mu.RLock()
	img, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return img, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err = image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return img, nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear drops every cached image.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict drops the image cached under path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// ImageInfo describes an image file as seen by the convolution engine.
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Channels is the number of planes FromImage produces: 1 for gray
	// sources, 3 otherwise.
	Channels int `json:"channels"`

	// Format is derived from the file extension: "png", "jpeg", "gif", "bmp",
	// "tiff", "webp" or "unknown".
	Format string `json:"format"`

	// ColorDepth is "16-bit" for 16 bits per sample sources, "8-bit" otherwise.
	ColorDepth string `json:"color_depth"`

	// HasAlpha reports an alpha channel in the source. Alpha is not convolved.
	HasAlpha bool `json:"has_alpha"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads path through cache and reports its metadata.
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	info := &ImageInfo{
		Width:         img.Bounds().Dx(),
		Height:        img.Bounds().Dy(),
		Channels:      3,
		Format:        FormatFromPath(path),
		ColorDepth:    "8-bit",
		FileSizeBytes: stat.Size(),
	}

	switch img.(type) {
	case *image.Gray:
		info.Channels = 1
	case *image.Gray16:
		info.Channels = 1
		info.ColorDepth = "16-bit"
	case *image.RGBA, *image.NRGBA:
		info.HasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		info.HasAlpha = true
		info.ColorDepth = "16-bit"
	}

	return info, nil
}

// FormatFromPath maps a file extension to a format name, or "unknown".
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	case ".bmp":
		return "bmp"
	case ".tif", ".tiff":
		return "tiff"
	case ".webp":
		return "webp"
	}
	return "unknown"
}

// DimensionsResult holds only the size of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions loads path through cache and returns its size.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// LoadBuffer loads path through cache, runs the preprocessing selected by
// opts and converts the result to a planar buffer.
func LoadBuffer(cache *ImageCache, path string, opts preprocess.Options) (*raster.Buffer, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return ToBuffer(img, opts)
}

// ToBuffer runs the preprocessing selected by opts on img and converts the
// result to a planar buffer.
func ToBuffer(img image.Image, opts preprocess.Options) (*raster.Buffer, error) {
	if opts.Enabled() {
		var err error
		img, err = preprocess.Apply(img, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to preprocess image: %w", err)
		}
	}
	return raster.FromImage(img), nil
}
