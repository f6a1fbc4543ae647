// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates thumbnails for uploaded images.
// Images narrower than the target width are re-encoded without upscaling.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

// ThumbWidth is the default thumbnail width in pixels.
const ThumbWidth = 320

// MaxPixels caps decoded image area to bound memory use.
const MaxPixels = 40_000_000

// ErrTooLarge is returned when an image exceeds MaxPixels.
var ErrTooLarge = errors.New("imaging: image dimensions too large")

// Thumbnail holds one encoded thumbnail ready for upload.
type Thumbnail struct {
	Width       int
	Height      int
	Data        []byte
	ContentType string
	Ext         string
}

// Decodable reports whether content type is one we can thumbnail.
func Decodable(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg", "image/gif":
		return true
	}
	return false
}

// MakeThumbnail scales src down to width, keeping the aspect ratio.
// PNG and GIF sources become PNG to keep transparency; everything else
// becomes JPEG.
func MakeThumbnail(src []byte, width int) (*Thumbnail, error) {
	if width <= 0 {
		width = ThumbWidth
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: probe: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("imaging: empty image")
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, ErrTooLarge
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode %s: %w", format, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > width {
		h = max(1, h*width/w)
		w = width
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	thumb := &Thumbnail{Width: w, Height: h}
	switch format {
	case "png", "gif":
		if err := png.Encode(&buf, dst); err != nil {
			return nil, fmt.Errorf("imaging: encode png: %w", err)
		}
		thumb.ContentType, thumb.Ext = "image/png", ".png"
	default:
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 80}); err != nil {
			return nil, fmt.Errorf("imaging: encode jpeg: %w", err)
		}
		thumb.ContentType, thumb.Ext = "image/jpeg", ".jpg"
	}
	thumb.Data = buf.Bytes()
	return thumb, nil
}
