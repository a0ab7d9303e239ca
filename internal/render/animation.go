/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/friendsincode/timerbadge/internal/i18n"
	"github.com/friendsincode/timerbadge/internal/telemetry"
	"github.com/friendsincode/timerbadge/internal/timer"
)

// frameDelay is the GIF per-frame display duration in 100ths of a second.
const frameDelay = 100

// badgePalette covers every color a badge frame can contain: the outer
// border, plus a ramp from the inner fill to the accent color that the
// antialiased glyph edges fall on.
var badgePalette = buildPalette()

func buildPalette() color.Palette {
	const steps = 63
	p := make(color.Palette, 0, steps+2)
	p = append(p, outerColor)
	for i := 0; i <= steps; i++ {
		p = append(p, color.RGBA{
			R: lerp(innerColor.R, accentColor.R, i, steps),
			G: lerp(innerColor.G, accentColor.G, i, steps),
			B: lerp(innerColor.B, accentColor.B, i, steps),
			A: 0xFF,
		})
	}
	return p
}

func lerp(a, b uint8, i, n int) uint8 {
	return uint8(int(a) + (int(b)-int(a))*i/n)
}

// SharedCache is an optional second-level store for encoded animations,
// shared between replicas. Lookups that fail stay local.
type SharedCache interface {
	GetAnimation(ctx context.Context, endTS, quantTS int64, lang string) ([]byte, bool)
	SetAnimation(ctx context.Context, endTS, quantTS int64, lang string, data []byte)
}

type animKey struct {
	end  int64
	now  int64
	lang string
}

// Animator assembles 60-frame countdown GIFs and caches the encoded bytes
// by quantized key. This is the outermost cache: a hit skips the whole
// frame pipeline for every request landing in the same time bucket.
type Animator struct {
	engine *Engine
	table  i18n.Table
	cache  *lru.Cache[animKey, []byte]
	shared SharedCache
	group  singleflight.Group
	logger zerolog.Logger

	builds atomic.Int64
}

// NewAnimator sizes the animation cache. shared may be nil.
func NewAnimator(engine *Engine, table i18n.Table, cacheSize int, shared SharedCache, logger zerolog.Logger) (*Animator, error) {
	cache, err := lru.New[animKey, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create animation cache: %w", err)
	}
	return &Animator{
		engine: engine,
		table:  table,
		cache:  cache,
		shared: shared,
		logger: logger.With().Str("component", "animator").Logger(),
	}, nil
}

// Builds reports how many times the full frame pipeline has run.
func (a *Animator) Builds() int64 {
	return a.builds.Load()
}

// Animation returns the encoded looping GIF for (deadline, quantized now,
// language). Concurrent identical misses collapse into one build.
func (a *Animator) Animation(ctx context.Context, endTS, quantTS int64, lang string) ([]byte, error) {
	key := animKey{end: endTS, now: quantTS, lang: lang}
	if data, ok := a.cache.Get(key); ok {
		telemetry.AnimationCacheHits.WithLabelValues("memory").Inc()
		return data, nil
	}

	flightKey := fmt.Sprintf("%d:%d:%s", endTS, quantTS, lang)
	v, err, _ := a.group.Do(flightKey, func() (interface{}, error) {
		if data, ok := a.cache.Get(key); ok {
			telemetry.AnimationCacheHits.WithLabelValues("memory").Inc()
			return data, nil
		}
		if a.shared != nil {
			if data, ok := a.shared.GetAnimation(ctx, endTS, quantTS, lang); ok {
				telemetry.AnimationCacheHits.WithLabelValues("redis").Inc()
				a.cache.Add(key, data)
				return data, nil
			}
		}
		telemetry.AnimationCacheMisses.Inc()

		start := time.Now()
		data, err := a.build(ctx, endTS, quantTS, lang)
		if err != nil {
			return nil, err
		}
		telemetry.AnimationBuilds.Inc()
		telemetry.AnimationBuildDuration.Observe(time.Since(start).Seconds())

		a.cache.Add(key, data)
		if a.shared != nil {
			a.shared.SetAnimation(ctx, endTS, quantTS, lang, data)
		}
		a.logger.Debug().
			Int64("end", endTS).
			Int64("quantized_now", quantTS).
			Str("lang", lang).
			Dur("took", time.Since(start)).
			Msg("animation built")
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (a *Animator) build(_ context.Context, endTS, quantTS int64, lang string) ([]byte, error) {
	a.builds.Add(1)

	deadline := time.Unix(endTS, 0).UTC()
	now := time.Unix(quantTS, 0).UTC()
	msgs := a.table.Messages(lang)

	// Long past the deadline every frame reads "over"; a single looping
	// frame renders identically and skips 59 redundant frames.
	if now.After(deadline.Add(timer.StartedWindow)) {
		frame, err := a.palettedBadge(lang, msgs.Over)
		if err != nil {
			return nil, err
		}
		return encodeGIF([]*image.Paletted{frame})
	}

	frames := make([]*image.Paletted, 0, timer.FrameCount)
	for i := 0; i < timer.FrameCount; i++ {
		instant := now.Add(time.Duration(i) * time.Second)
		text := timer.FrameText(deadline, instant, i, timer.FrameCount, msgs)

		frame, err := a.palettedBadge(lang, text)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
	return encodeGIF(frames)
}

// Still renders the single-frame PNG variant. It shares the badge cache
// but is not cached as a whole beyond HTTP cache hints.
func (a *Animator) Still(deadline, now time.Time, lang string) ([]byte, error) {
	text := timer.StillText(deadline, now, a.table.Messages(lang))
	return a.engine.Badge(lang, text)
}

// palettedBadge decodes the cached badge PNG and maps it onto the fixed
// GIF palette.
func (a *Animator) palettedBadge(lang, text string) (*image.Paletted, error) {
	data, err := a.engine.Badge(lang, text)
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode cached badge: %w", err)
	}

	paletted := image.NewPaletted(img.Bounds(), badgePalette)
	draw.Draw(paletted, paletted.Bounds(), img, img.Bounds().Min, draw.Src)
	return paletted, nil
}

// encodeGIF writes the frame sequence as one infinitely looping GIF with
// 1s per frame and restore-to-background disposal so frames fully replace
// each other.
func encodeGIF(frames []*image.Paletted) ([]byte, error) {
	g := &gif.GIF{
		Image:    frames,
		Delay:    make([]int, len(frames)),
		Disposal: make([]byte, len(frames)),
	}
	for i := range frames {
		g.Delay[i] = frameDelay
		g.Disposal[i] = gif.DisposalBackground
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, fmt.Errorf("encode gif: %w", err)
	}
	return buf.Bytes(), nil
}
