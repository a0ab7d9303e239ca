/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/friendsincode/timerbadge/internal/i18n"
	"github.com/friendsincode/timerbadge/internal/render"
	"github.com/friendsincode/timerbadge/internal/timer"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one countdown image to a file",
	Long:  "Render a single countdown GIF or PNG without starting the server, for previewing badge output",
	RunE:  runRender,
}

var (
	renderEnd    string
	renderOut    string
	renderLang   string
	renderFormat string
	renderAt     int64
)

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringVar(&renderEnd, "end", "", "Deadline as ISO-8601 timestamp (required)")
	renderCmd.Flags().StringVar(&renderOut, "out", "timer.gif", "Output file path")
	renderCmd.Flags().StringVar(&renderLang, "lang", "", "Language tag (default from config)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "gif", "Output format: gif or png")
	renderCmd.Flags().Int64Var(&renderAt, "at", 0, "Render as if 'now' were this unix timestamp (0 = wall clock)")
	renderCmd.MarkFlagRequired("end")
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	deadline, err := timer.ParseDeadline(renderEnd)
	if err != nil {
		return err
	}

	table := i18n.NewTable()
	table, ok := table.WithFallback(cfg.DefaultLanguage)
	if !ok {
		return fmt.Errorf("unsupported default language %q", cfg.DefaultLanguage)
	}
	lang := cfg.DefaultLanguage
	if renderLang != "" {
		if !table.Supported(renderLang) {
			return fmt.Errorf("unsupported language %q", renderLang)
		}
		lang = renderLang
	}

	ttf, err := cfg.FontData(render.DefaultFont())
	if err != nil {
		return err
	}
	engine, err := render.NewEngine(ttf, cfg.BadgeCacheSize, logger)
	if err != nil {
		return fmt.Errorf("initialize badge renderer: %w", err)
	}
	animator, err := render.NewAnimator(engine, table, cfg.AnimationCacheSize, nil, logger)
	if err != nil {
		return fmt.Errorf("initialize animator: %w", err)
	}

	now := time.Now
	if renderAt != 0 {
		pinned := time.Unix(renderAt, 0).UTC()
		now = func() time.Time { return pinned }
	}

	var data []byte
	switch renderFormat {
	case "gif":
		endTS, quantTS := timer.Quantize(deadline, "", now)
		data, err = animator.Animation(cmd.Context(), endTS, quantTS, lang)
	case "png":
		data, err = animator.Still(deadline, now().UTC(), lang)
	default:
		return fmt.Errorf("unsupported format %q (want gif or png)", renderFormat)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(renderOut, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", renderOut, err)
	}

	logger.Info().
		Str("out", renderOut).
		Str("format", renderFormat).
		Str("lang", lang).
		Int("bytes", len(data)).
		Msg("image rendered")
	return nil
}
