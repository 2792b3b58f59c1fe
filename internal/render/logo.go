package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Logo is a decoded and re-encoded company logo ready for embedding
type Logo struct {
	Name   string
	Data   []byte
	Format string
	Width  int
	Height int
}

// Aspect returns width divided by height
func (l *Logo) Aspect() float64 {
	if l == nil || l.Height == 0 {
		return 0
	}
	return float64(l.Width) / float64(l.Height)
}

// LogoLoader fetches the image behind a profile's logo URL
type LogoLoader interface {
	Load(ctx context.Context, ref string) (*Logo, error)
}

// LogoConfig configures HTTPLogoLoader
type LogoConfig struct {
	// BaseURL resolves relative logo URLs (e.g. http://localhost:8080)
	BaseURL string
	// UploadDir serves /uploads/... references from disk when set
	UploadDir string
	Timeout   time.Duration
	MaxBytes  int64
	MaxWidth  int
	MaxHeight int
	Quality   int
}

// DefaultLogoConfig returns the loader defaults: 3s timeout, 5MB, 800x600, JPEG quality 80
func DefaultLogoConfig() LogoConfig {
	return LogoConfig{
		Timeout:   3 * time.Second,
		MaxBytes:  5 << 20,
		MaxWidth:  800,
		MaxHeight: 600,
		Quality:   80,
	}
}

const uploadsPrefix = "/uploads/"

// HTTPLogoLoader loads logos over HTTP or from the local upload directory,
// downsizes them and re-encodes them as JPEG on a white background.
type HTTPLogoLoader struct {
	cfg    LogoConfig
	client *retryablehttp.Client
	logger *zap.Logger
}

// NewHTTPLogoLoader creates a loader. Zero config fields take the defaults.
func NewHTTPLogoLoader(cfg LogoConfig, logger *zap.Logger) *HTTPLogoLoader {
	def := DefaultLogoConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.MaxHeight <= 0 {
		cfg.MaxHeight = def.MaxHeight
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = def.Quality
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.RetryWaitMin = 100 * time.Millisecond
	client.RetryWaitMax = 500 * time.Millisecond
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = nil

	return &HTTPLogoLoader{cfg: cfg, client: client, logger: logger}
}

// Load resolves ref, reads at most MaxBytes and normalizes the image.
// The whole call is bounded by the configured timeout.
func (l *HTTPLogoLoader) Load(ctx context.Context, ref string) (*Logo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty logo reference", ErrUnsupportedLogo)
	}

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	raw, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	logo, err := l.normalize(raw)
	if err != nil {
		return nil, err
	}

	l.logger.Debug("Logo loaded",
		zap.String("ref", ref),
		zap.Int("width", logo.Width),
		zap.Int("height", logo.Height),
		zap.Int("bytes", len(logo.Data)))
	return logo, nil
}

func (l *HTTPLogoLoader) fetch(ctx context.Context, ref string) ([]byte, error) {
	if l.cfg.UploadDir != "" && strings.HasPrefix(ref, uploadsPrefix) {
		return l.readUpload(strings.TrimPrefix(ref, uploadsPrefix))
	}

	target, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create logo request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch logo: status %d", resp.StatusCode)
	}

	return l.readLimited(resp.Body)
}

// resolve turns relative references into absolute URLs against BaseURL
func (l *HTTPLogoLoader) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid logo url: %w", err)
	}
	if u.IsAbs() {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("%w: scheme %s", ErrUnsupportedLogo, u.Scheme)
		}
		return u.String(), nil
	}

	if l.cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: relative url %s without base url", ErrUnsupportedLogo, ref)
	}
	base, err := url.Parse(strings.TrimRight(l.cfg.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("invalid logo base url: %w", err)
	}
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
	}
	return base.ResolveReference(u).String(), nil
}

func (l *HTTPLogoLoader) readUpload(rel string) ([]byte, error) {
	clean := filepath.Clean("/" + rel)
	path := filepath.Join(l.cfg.UploadDir, clean)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open logo: %w", err)
	}
	defer f.Close()

	return l.readLimited(f)
}

func (l *HTTPLogoLoader) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if int64(len(data)) > l.cfg.MaxBytes {
		return nil, ErrLogoTooLarge
	}
	return data, nil
}

// normalize decodes, fits the image into MaxWidth x MaxHeight over white and
// encodes it as JPEG
func (l *HTTPLogoLoader) normalize(raw []byte) (*Logo, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedLogo, err)
	}

	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedLogo)
	}

	w, h := fitWithin(b.Dx(), b.Dy(), l.cfg.MaxWidth, l.cfg.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: l.cfg.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode logo: %w", err)
	}

	data := buf.Bytes()
	return &Logo{
		Name:   bitmapName(data),
		Data:   data,
		Format: "jpg",
		Width:  w,
		Height: h,
	}, nil
}

// fitWithin scales w x h down (never up) to fit maxW x maxH, keeping the aspect ratio
func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

var _ LogoLoader = (*HTTPLogoLoader)(nil)
