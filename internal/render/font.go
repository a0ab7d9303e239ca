/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

// DefaultFont returns the embedded Go Mono Bold face data, used when no
// font path is configured.
func DefaultFont() []byte {
	return gomonobold.TTF
}

// fontSource parses a TTF once and hands out one face per point size.
// Faces are cached for the process lifetime; the fit search in the badge
// renderer touches the same handful of sizes on every call.
type fontSource struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[int]font.Face
}

func newFontSource(ttf []byte) (*fontSource, error) {
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &fontSource{
		font:  parsed,
		faces: make(map[int]font.Face),
	}, nil
}

func (fs *fontSource) face(size int) (font.Face, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if f, ok := fs.faces[size]; ok {
		return f, nil
	}

	f, err := opentype.NewFace(fs.font, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %dpt face: %w", size, err)
	}
	fs.faces[size] = f
	return f, nil
}
