/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package timer implements the countdown state machine: per-frame display
// text selection and the quantized cache key derivation.
package timer

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/friendsincode/timerbadge/internal/i18n"
)

const (
	// FrameCount is the number of simulated seconds per animation.
	FrameCount = 60

	// CTAFrames is how many trailing frames show the call-to-action
	// instead of the numeric countdown.
	CTAFrames = 5

	// StartedWindow is how long past the deadline the badge reads
	// "started" before switching to "over".
	StartedWindow = 3600 * time.Second

	// CacheSeconds is the wall-clock bucket width used for cache keys.
	CacheSeconds = 60
)

// ErrInvalidDeadline signals an unparsable deadline string. The caller
// reports it; no rendering work happens.
var ErrInvalidDeadline = errors.New("invalid deadline")

// ParseDeadline parses an ISO-8601 deadline. Offset-less timestamps are
// taken as UTC.
func ParseDeadline(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if ts, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.UTC); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDeadline, s)
}

// FrameText selects the display string for one animation frame. Total for
// any remaining value, including negative and very large magnitudes.
func FrameText(deadline, instant time.Time, frameIndex, totalFrames int, msgs i18n.Messages) string {
	remaining := int64(deadline.Sub(instant) / time.Second)

	switch {
	case remaining <= 0 && -remaining <= int64(StartedWindow/time.Second):
		return msgs.Started
	case remaining < -int64(StartedWindow/time.Second):
		return msgs.Over
	case frameIndex >= totalFrames-CTAFrames:
		return msgs.CTA
	default:
		return FormatClock(remaining)
	}
}

// StillText is the single-frame (PNG) variant of FrameText. It has no CTA
// window and deliberately drops the seconds field while counting down.
func StillText(deadline, now time.Time, msgs i18n.Messages) string {
	remaining := int64(deadline.Sub(now) / time.Second)

	if remaining > 0 {
		return FormatClockMinutes(remaining)
	}
	if -remaining <= int64(StartedWindow/time.Second) {
		return msgs.Started
	}
	return msgs.Over
}

// FormatClock renders remaining seconds as zero-padded HH:MM:SS. Hours are
// not wrapped, so long countdowns grow past two digits.
func FormatClock(remaining int64) string {
	h := remaining / 3600
	m := (remaining % 3600) / 60
	s := remaining % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatClockMinutes renders remaining seconds as zero-padded HH:MM.
func FormatClockMinutes(remaining int64) string {
	minutes := remaining / 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Quantize derives the coarse animation cache key from the deadline and an
// optional explicit start override. A parsable override is used verbatim
// so callers can pin a specific animation start; anything else falls back
// to the current time truncated to the cache bucket. Never fails.
func Quantize(deadline time.Time, override string, now func() time.Time) (endTS, quantTS int64) {
	endTS = deadline.Unix()

	if override != "" {
		if ts, err := strconv.ParseInt(override, 10, 64); err == nil {
			return endTS, ts
		}
	}
	return endTS, now().UTC().Unix() / CacheSeconds * CacheSeconds
}
