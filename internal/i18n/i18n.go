/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package i18n holds the localized display strings for the timer badge
// and resolves the request language.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when neither the query parameter nor the
// Accept-Language header yields a supported tag.
const DefaultLanguage = "en"

// Messages are the display strings for one language, resolved up front so
// render code never walks nested maps.
type Messages struct {
	CTA     string
	Started string
	Over    string
}

// Table maps supported language tags to their display strings. The zero
// value is unusable; construct with NewTable.
type Table struct {
	messages map[string]Messages
	fallback string
	matcher  language.Matcher
}

// NewTable returns the built-in table covering English and Estonian.
func NewTable() Table {
	return Table{
		messages: map[string]Messages{
			"en": {
				CTA:     "START BETTING",
				Started: "MATCH HAS STARTED",
				Over:    "MATCH IS OVER",
			},
			"et": {
				CTA:     "ALUSTA PANUSTAMIST",
				Started: "MÄNG ON ALANUD",
				Over:    "MÄNG ON LÄBI",
			},
		},
		fallback: DefaultLanguage,
		matcher:  language.NewMatcher([]language.Tag{language.English, language.Estonian}),
	}
}

// WithFallback returns a copy of the table using lang as the fallback
// language. Reports false when lang is unsupported.
func (t Table) WithFallback(lang string) (Table, bool) {
	if !t.Supported(lang) {
		return t, false
	}
	t.fallback = lang
	return t, true
}

// Supported reports whether lang has its own message set.
func (t Table) Supported(lang string) bool {
	_, ok := t.messages[lang]
	return ok
}

// Messages returns the display strings for lang, falling back to the
// default language for unknown tags.
func (t Table) Messages(lang string) Messages {
	if m, ok := t.messages[lang]; ok {
		return m
	}
	return t.messages[t.fallback]
}

// Resolve picks the response language: an explicit supported query
// parameter wins, then the best Accept-Language match, then the default.
func (t Table) Resolve(param, acceptHeader string) string {
	lang := strings.ToLower(strings.TrimSpace(param))
	if t.Supported(lang) {
		return lang
	}

	if acceptHeader != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptHeader); err == nil {
			if tag, _, conf := t.matcher.Match(tags...); conf > language.No {
				base, _ := tag.Base()
				if t.Supported(base.String()) {
					return base.String()
				}
			}
		}
	}

	return t.fallback
}
