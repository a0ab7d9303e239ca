/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package render rasterizes countdown badges and assembles them into
// animated GIFs, with bounded caches at both levels.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/friendsincode/timerbadge/internal/telemetry"
)

// Canvas geometry. The badge is sized for a typical email hero slot.
const (
	Width  = 600
	Height = 140

	border   = 6
	paddingX = 18
	paddingY = 10

	maxFontSize = 80
	minFontSize = 18
	fontStep    = 2
)

// Badge colors.
var (
	outerColor  = color.RGBA{R: 0x20, G: 0x20, B: 0x27, A: 0xFF}
	innerColor  = color.RGBA{R: 0x2C, G: 0x2C, B: 0x36, A: 0xFF}
	accentColor = color.RGBA{R: 0xF6, G: 0x93, B: 0x23, A: 0xFF}
)

type badgeKey struct {
	lang string
	text string
}

// Engine renders display strings into fixed-size badge images. Rendered
// PNG bytes are cached by (language, text); the state and CTA strings
// repeat across many frames and requests, so the cache carries most of
// the load.
type Engine struct {
	fonts  *fontSource
	badges *lru.Cache[badgeKey, []byte]
	logger zerolog.Logger

	// opentype faces are not safe for concurrent use; rasterization is
	// serialized, cache reads are not.
	renderMu sync.Mutex
}

// NewEngine parses the font and sizes the badge cache. A malformed font
// is a construction error, callers treat it as fatal.
func NewEngine(ttf []byte, badgeCacheSize int, logger zerolog.Logger) (*Engine, error) {
	fonts, err := newFontSource(ttf)
	if err != nil {
		return nil, err
	}

	badges, err := lru.New[badgeKey, []byte](badgeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create badge cache: %w", err)
	}

	return &Engine{
		fonts:  fonts,
		badges: badges,
		logger: logger.With().Str("component", "render").Logger(),
	}, nil
}

// Badge returns the PNG-encoded badge for one display string. Identical
// (language, text) pairs yield byte-identical output.
func (e *Engine) Badge(lang, text string) ([]byte, error) {
	key := badgeKey{lang: lang, text: text}
	if data, ok := e.badges.Get(key); ok {
		telemetry.BadgeCacheHits.Inc()
		return data, nil
	}
	telemetry.BadgeCacheMisses.Inc()

	e.renderMu.Lock()
	img, err := e.drawBadge(text)
	e.renderMu.Unlock()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode badge: %w", err)
	}

	data := buf.Bytes()
	e.badges.Add(key, data)
	telemetry.BadgesRendered.WithLabelValues(lang).Inc()
	e.logger.Debug().Str("lang", lang).Str("text", text).Msg("badge rendered")
	return data, nil
}

// drawBadge paints the bordered badge and centers the text at the largest
// fitting size.
func (e *Engine) drawBadge(text string) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(outerColor), image.Point{}, draw.Src)

	inner := image.Rect(border, border, Width-border, Height-border)
	draw.Draw(img, inner, image.NewUniform(innerColor), image.Point{}, draw.Src)

	maxW := inner.Dx() - 2*paddingX
	maxH := inner.Dy() - 2*paddingY

	// Search downward for the largest size whose measured bounding box
	// fits the padded inner area. 18pt is the floor even if it overflows.
	size := maxFontSize
	var (
		face   font.Face
		bounds fixed.Rectangle26_6
	)
	for ; size >= minFontSize; size -= fontStep {
		f, err := e.fonts.face(size)
		if err != nil {
			return nil, err
		}
		b, _ := font.BoundString(f, text)
		face, bounds = f, b
		if (b.Max.X-b.Min.X).Ceil() <= maxW && (b.Max.Y-b.Min.Y).Ceil() <= maxH {
			break
		}
	}

	textW := (bounds.Max.X - bounds.Min.X).Ceil()
	textH := (bounds.Max.Y - bounds.Min.Y).Ceil()

	// Center using the bounding box offsets, not the nominal advance, so
	// ascent/descent and left bearing do not skew placement.
	originX := inner.Min.X + (inner.Dx()-textW)/2 - bounds.Min.X.Floor()
	originY := inner.Min.Y + (inner.Dy()-textH)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(accentColor),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(text)

	return img, nil
}
