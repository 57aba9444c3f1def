package imagegen

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder for provider output
)

const (
	mimePNG  = "image/png"
	mimeJPEG = "image/jpeg"

	defaultJPEGQuality = 90
)

// ParseSize parses "WxH" into positive dimensions.
func ParseSize(size string) (int, int, error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(size)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size %q is not WxH", size)
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w <= 0 {
		return 0, 0, fmt.Errorf("size %q has invalid width", size)
	}
	h, err := strconv.Atoi(hs)
	if err != nil || h <= 0 {
		return 0, 0, fmt.Errorf("size %q has invalid height", size)
	}
	return w, h, nil
}

// Transform resizes and re-encodes raw according to opts. When neither the
// size nor the encoding changes, raw is returned unchanged.
func Transform(raw []byte, opts Options) ([]byte, error) {
	srcMIME := mimetype.Detect(raw).String()
	wantMIME := opts.MIMEType
	if wantMIME == "" {
		wantMIME = srcMIME
	}

	var w, h int
	if opts.Size != "" {
		var err error
		if w, h, err = ParseSize(opts.Size); err != nil {
			return nil, err
		}
	}

	if w == 0 && wantMIME == srcMIME {
		return raw, nil
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s image: %w", srcMIME, err)
	}

	resized := false
	if w > 0 && (img.Bounds().Dx() != w || img.Bounds().Dy() != h) {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
		img = dst
		resized = true
	}

	if !resized && wantMIME == srcMIME {
		return raw, nil
	}

	return encode(img, wantMIME, opts.Quality)
}

func encode(img image.Image, mime string, quality int) ([]byte, error) {
	var buf bytes.Buffer
	switch mime {
	case mimeJPEG:
		if quality <= 0 || quality > 100 {
			quality = defaultJPEGQuality
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
	case mimePNG:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported output type %q", mime)
	}
	return buf.Bytes(), nil
}
