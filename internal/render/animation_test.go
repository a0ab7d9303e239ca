package render

import (
	"bytes"
	"context"
	"image/gif"
	"image/png"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/timerbadge/internal/i18n"
	"github.com/friendsincode/timerbadge/internal/timer"
)

func newTestAnimator(t *testing.T) *Animator {
	t.Helper()
	animator, err := NewAnimator(newTestEngine(t), i18n.NewTable(), 256, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("new animator: %v", err)
	}
	return animator
}

func TestAnimationStructure(t *testing.T) {
	animator := newTestAnimator(t)

	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	deadline := now.Add(2 * time.Hour)

	data, err := animator.Animation(context.Background(), deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid GIF: %v", err)
	}
	if len(g.Image) != timer.FrameCount {
		t.Fatalf("got %d frames, want %d", len(g.Image), timer.FrameCount)
	}
	if g.LoopCount != 0 {
		t.Fatalf("LoopCount=%d, want 0 (loop forever)", g.LoopCount)
	}
	for i := range g.Image {
		if g.Delay[i] != frameDelay {
			t.Fatalf("frame %d delay=%d, want %d", i, g.Delay[i], frameDelay)
		}
		if g.Disposal[i] != gif.DisposalBackground {
			t.Fatalf("frame %d disposal=%d, want restore-to-background", i, g.Disposal[i])
		}
		if g.Image[i].Bounds().Dx() != Width || g.Image[i].Bounds().Dy() != Height {
			t.Fatalf("frame %d is %v, want %dx%d", i, g.Image[i].Bounds(), Width, Height)
		}
	}

	// With two hours left the final five frames all show the CTA string,
	// so their pixels are identical; the frame before them is a
	// countdown and differs.
	for i := timer.FrameCount - timer.CTAFrames + 1; i < timer.FrameCount; i++ {
		if !bytes.Equal(g.Image[i].Pix, g.Image[timer.FrameCount-timer.CTAFrames].Pix) {
			t.Fatalf("CTA frame %d differs from first CTA frame", i)
		}
	}
	if bytes.Equal(g.Image[timer.FrameCount-timer.CTAFrames-1].Pix, g.Image[timer.FrameCount-timer.CTAFrames].Pix) {
		t.Fatal("countdown frame should differ from CTA frames")
	}
}

func TestAnimationSingleFrameWhenLongOver(t *testing.T) {
	animator := newTestAnimator(t)

	deadline := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	now := deadline.Add(timer.StartedWindow + time.Minute)

	data, err := animator.Animation(context.Background(), deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}

	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output is not a valid GIF: %v", err)
	}
	if len(g.Image) != 1 {
		t.Fatalf("got %d frames, want single over frame", len(g.Image))
	}
	if g.LoopCount != 0 {
		t.Fatalf("LoopCount=%d, want 0", g.LoopCount)
	}
	if g.Delay[0] != frameDelay {
		t.Fatalf("delay=%d, want %d", g.Delay[0], frameDelay)
	}
}

func TestAnimationExactlyAtStartedWindowEdgeStillAnimates(t *testing.T) {
	animator := newTestAnimator(t)

	deadline := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	now := deadline.Add(timer.StartedWindow) // not strictly past, so full animation

	data, err := animator.Animation(context.Background(), deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(g.Image) != timer.FrameCount {
		t.Fatalf("got %d frames, want %d", len(g.Image), timer.FrameCount)
	}
}

func TestAnimationCachedByQuantizedKey(t *testing.T) {
	animator := newTestAnimator(t)
	ctx := context.Background()

	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	deadline := now.Add(30 * time.Minute)

	first, err := animator.Animation(ctx, deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	second, err := animator.Animation(ctx, deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}

	if animator.Builds() != 1 {
		t.Fatalf("pipeline ran %d times for one key, want 1", animator.Builds())
	}
	if !bytes.Equal(first, second) {
		t.Fatal("cache hit returned different bytes")
	}

	// A different language is a different cache entry.
	if _, err := animator.Animation(ctx, deadline.Unix(), now.Unix(), "et"); err != nil {
		t.Fatalf("animation et: %v", err)
	}
	if animator.Builds() != 2 {
		t.Fatalf("pipeline ran %d times across two keys, want 2", animator.Builds())
	}
}

type recordingShared struct {
	store map[string][]byte
	gets  int
	sets  int
}

func (r *recordingShared) key(endTS, quantTS int64, lang string) string {
	return lang
}

func (r *recordingShared) GetAnimation(_ context.Context, endTS, quantTS int64, lang string) ([]byte, bool) {
	r.gets++
	data, ok := r.store[r.key(endTS, quantTS, lang)]
	return data, ok
}

func (r *recordingShared) SetAnimation(_ context.Context, endTS, quantTS int64, lang string, data []byte) {
	r.sets++
	r.store[r.key(endTS, quantTS, lang)] = data
}

func TestAnimationUsesSharedCacheAcrossInstances(t *testing.T) {
	shared := &recordingShared{store: make(map[string][]byte)}
	ctx := context.Background()

	first, err := NewAnimator(newTestEngine(t), i18n.NewTable(), 256, shared, zerolog.Nop())
	if err != nil {
		t.Fatalf("new animator: %v", err)
	}
	second, err := NewAnimator(newTestEngine(t), i18n.NewTable(), 256, shared, zerolog.Nop())
	if err != nil {
		t.Fatalf("new animator: %v", err)
	}

	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	deadline := now.Add(30 * time.Minute)

	a, err := first.Animation(ctx, deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	if shared.sets != 1 {
		t.Fatalf("shared cache sets=%d, want 1", shared.sets)
	}

	b, err := second.Animation(ctx, deadline.Unix(), now.Unix(), "en")
	if err != nil {
		t.Fatalf("animation: %v", err)
	}
	if second.Builds() != 0 {
		t.Fatalf("second instance ran the pipeline %d times, want shared cache hit", second.Builds())
	}
	if !bytes.Equal(a, b) {
		t.Fatal("shared cache returned different bytes")
	}
}

func TestStillRendersPNG(t *testing.T) {
	animator := newTestAnimator(t)

	now := time.Date(2026, 6, 1, 11, 0, 0, 0, time.UTC)
	deadline := now.Add(90 * time.Minute)

	data, err := animator.Still(deadline, now, "en")
	if err != nil {
		t.Fatalf("still: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("still is not valid PNG: %v", err)
	}
	if img.Bounds().Dx() != Width || img.Bounds().Dy() != Height {
		t.Fatalf("still is %v, want %dx%d", img.Bounds(), Width, Height)
	}
}
