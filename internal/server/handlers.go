/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/friendsincode/timerbadge/internal/timer"
)

// cacheMaxAge matches the quantization bucket so intermediary caches
// expire in step with the animation cache keys.
const cacheMaxAge = timer.CacheSeconds

// handleTimerGIF serves the 60-frame animated countdown.
//
// Query parameters: end (required, ISO-8601 deadline), lang (optional
// language tag), t (optional unix-seconds animation start override).
func (s *Server) handleTimerGIF(w http.ResponseWriter, r *http.Request) {
	deadline, ok := s.deadlineParam(w, r)
	if !ok {
		return
	}
	lang := s.table.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

	endTS, quantTS := timer.Quantize(deadline, r.URL.Query().Get("t"), s.now)

	data, err := s.animator.Animation(r.Context(), endTS, quantTS, lang)
	if err != nil {
		s.logger.Error().Err(err).Int64("end", endTS).Str("lang", lang).Msg("animation render failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeImage(w, "image/gif", data)
}

// handleTimerPNG serves a single still badge, minute granularity. Meant
// for clients that strip animated images.
func (s *Server) handleTimerPNG(w http.ResponseWriter, r *http.Request) {
	deadline, ok := s.deadlineParam(w, r)
	if !ok {
		return
	}
	lang := s.table.Resolve(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))

	data, err := s.animator.Still(deadline, s.now().UTC(), lang)
	if err != nil {
		s.logger.Error().Err(err).Str("lang", lang).Msg("still render failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeImage(w, "image/png", data)
}

// deadlineParam extracts and parses the required end parameter, writing
// the client error itself on failure.
func (s *Server) deadlineParam(w http.ResponseWriter, r *http.Request) (deadline time.Time, ok bool) {
	end := r.URL.Query().Get("end")
	if end == "" {
		http.Error(w, "Missing 'end' parameter", http.StatusBadRequest)
		return deadline, false
	}

	parsed, err := timer.ParseDeadline(end)
	if err != nil {
		if errors.Is(err, timer.ErrInvalidDeadline) {
			http.Error(w, "Invalid 'end' parameter", http.StatusBadRequest)
			return deadline, false
		}
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return deadline, false
	}
	return parsed, true
}

func writeImage(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(cacheMaxAge))
	w.Header().Set("Vary", "Accept-Language")
	_, _ = w.Write(data)
}
