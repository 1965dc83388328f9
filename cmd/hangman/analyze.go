package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/japaniel/hangman/pkg/config"
	"github.com/japaniel/hangman/pkg/db"
	"github.com/japaniel/hangman/pkg/dictionary"
	"github.com/japaniel/hangman/pkg/ingest"
	"github.com/japaniel/hangman/pkg/scenario"
)

func runAnalyze(cmd *cobra.Command, opts *options) error {
	ctx := cmd.Context()
	started := time.Now()

	cfg, logger, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	if err := dictionary.EnsureWordList(ctx, cfg.Words.Path, cfg.Words.URL); err != nil {
		return err
	}
	entries, report, err := dictionary.Load(cfg.Words.Path, dictionary.Options{Strict: cfg.Words.Strict})
	if err != nil {
		return err
	}
	for _, le := range report.Skipped {
		logger.Warn("skipped malformed line", slog.Int("line", le.Line), slog.String("text", le.Text), slog.Any("error", le.Err))
	}
	if len(report.Duplicates) > 0 {
		logger.Info("merged duplicate words", slog.Int("count", len(report.Duplicates)))
	}
	if err := dictionary.ComputePriors(entries); err != nil {
		return fmt.Errorf("%s: %w", cfg.Words.Path, err)
	}
	logger.Debug("loaded word list", slog.String("path", cfg.Words.Path), slog.Int("words", len(entries)), slog.Int64("total", dictionary.Total(entries)))

	scenarios := scenario.Default()
	if cfg.Scenarios.Path != "" {
		if scenarios, err = scenario.Load(cfg.Scenarios.Path); err != nil {
			return err
		}
	}

	ranked := slices.Clone(entries)
	dictionary.Rank(ranked)
	extremes := dictionary.TopBottom(ranked, cfg.Report.TopN)

	driver := scenario.NewDriver(cfg.Workers, logger)
	if opts.progress {
		bar := newProgressBar(cmd, len(scenarios), "scenarios")
		driver.OnProgress = func(current, total int) { _ = bar.Set(current) }
	}
	results, err := driver.Evaluate(ctx, entries, scenarios)
	if err != nil {
		return err
	}

	if cfg.DB.Path != "" {
		if err := recordRun(cmd, opts, cfg, logger, entries, results, started); err != nil {
			return err
		}
	}

	// Render fully before writing so a failure leaves stdout empty.
	var out bytes.Buffer
	if err := writeReport(&out, extremes, results); err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out.Bytes())
	return err
}

func recordRun(cmd *cobra.Command, opts *options, cfg *config.Config, logger *slog.Logger, entries []dictionary.WordEntry, results []scenario.Result, started time.Time) error {
	ctx := cmd.Context()
	conn, err := db.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer conn.Close()

	ig := ingest.NewIngester(conn)
	ig.BatchSize = cfg.DB.BatchSize
	ig.Logger = logger
	if opts.progress {
		bar := newProgressBar(cmd, len(entries), "words")
		ig.OnProgress = func(current, total int) { _ = bar.Set(current) }
	}
	if _, err := ig.ImportWords(ctx, entries); err != nil {
		return fmt.Errorf("import words: %w", err)
	}

	_, err = ig.RecordRun(ctx, ingest.RunInfo{
		WordsPath:  cfg.Words.Path,
		TotalCount: dictionary.Total(entries),
		WordCount:  len(entries),
		StartedAt:  started,
	}, results)
	return err
}

func newProgressBar(cmd *cobra.Command, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
