package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for logo formats the PDF backend cannot draw.
var ErrUnsupportedImage = errors.New("unsupported image format")

const (
	maxLogoBytes  = 5 << 20
	maxLogoPixels = 600
)

// Logo is an image ready for the PDF and HTML renderers.
type Logo struct {
	Data        []byte
	Ext         extension.Type
	Placeholder bool
}

// Empty reports whether there is nothing to draw.
func (l Logo) Empty() bool { return len(l.Data) == 0 }

// MIME returns the content type of the image bytes.
func (l Logo) MIME() string {
	if l.Ext == extension.Jpg {
		return "image/jpeg"
	}
	return "image/png"
}

var placeholderLogo = func() Logo {
	img := imaging.New(160, 80, color.NRGBA{R: 225, G: 225, B: 225, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Logo{}
	}
	return Logo{Data: buf.Bytes(), Ext: extension.Png, Placeholder: true}
}()

// PlaceholderLogo is drawn in place of a logo that could not be loaded.
func PlaceholderLogo() Logo { return placeholderLogo }

// NormalizeLogo sniffs data and converts it into PNG or JPEG bytes no larger
// than maxLogoPixels on either side. Vector and unknown formats are rejected.
func NormalizeLogo(data []byte) (Logo, error) {
	if len(data) == 0 {
		return Logo{}, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	mt := mimetype.Detect(data)
	var passthrough extension.Type
	switch {
	case mt.Is("image/png"):
		passthrough = extension.Png
	case mt.Is("image/jpeg"):
		passthrough = extension.Jpg
	case mt.Is("image/gif"), mt.Is("image/webp"), mt.Is("image/bmp"), mt.Is("image/tiff"):
	default:
		return Logo{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, mt.String())
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return Logo{}, fmt.Errorf("decode logo: %w", err)
	}
	b := img.Bounds()
	if passthrough != "" && b.Dx() <= maxLogoPixels && b.Dy() <= maxLogoPixels {
		return Logo{Data: data, Ext: passthrough}, nil
	}

	if b.Dx() > maxLogoPixels || b.Dy() > maxLogoPixels {
		img = imaging.Fit(img, maxLogoPixels, maxLogoPixels, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return Logo{}, fmt.Errorf("encode logo: %w", err)
	}
	return Logo{Data: buf.Bytes(), Ext: extension.Png}, nil
}

// LogoLoader fetches organization logos over HTTP.
type LogoLoader struct {
	client *http.Client
}

// NewLogoLoader returns a loader whose requests give up after timeout.
func NewLogoLoader(timeout time.Duration) *LogoLoader {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &LogoLoader{client: &http.Client{Timeout: timeout}}
}

// Load fetches and normalizes the logo at src. It never fails: an empty src
// yields an empty Logo and any fetch or format problem yields the placeholder.
func (l *LogoLoader) Load(ctx context.Context, src string) Logo {
	src = strings.TrimSpace(src)
	if src == "" {
		return Logo{}
	}
	data, err := l.fetch(ctx, src)
	if err == nil {
		var logo Logo
		if logo, err = NormalizeLogo(data); err == nil {
			return logo
		}
	}
	log.Warn().Err(err).Str("area", "logo").Str("url", src).Msg("using placeholder logo")
	return PlaceholderLogo()
}

func (l *LogoLoader) fetch(ctx context.Context, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return nil, fmt.Errorf("unsupported logo url %q", src)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build logo request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch logo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch logo: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	if len(data) > maxLogoBytes {
		return nil, fmt.Errorf("logo larger than %d bytes", maxLogoBytes)
	}
	return data, nil
}
