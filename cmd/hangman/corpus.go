package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/japaniel/hangman/pkg/corpus"
)

func newCorpusCmd(opts *options) *cobra.Command {
	var (
		length  int
		out     string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "corpus SOURCE...",
		Short: "Build a word list from HTML articles (files or http(s) URLs)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			b := &corpus.Builder{
				Length:  length,
				Workers: workers,
				Logger:  logger,
				OnSource: func(source string, words int) {
					logger.Info("counted source", slog.String("source", source), slog.Int("distinct", words))
				},
			}
			counts, err := b.Build(cmd.Context(), args)
			if err != nil {
				return err
			}
			if len(counts) == 0 {
				logger.Warn("no words found", slog.Int("sources", len(args)))
			}

			var buf bytes.Buffer
			if err := corpus.WriteCounts(&buf, counts); err != nil {
				return err
			}
			return writeOutput(cmd, out, buf.Bytes())
		},
	}
	cmd.Flags().IntVar(&length, "length", 0, "only count words of this many letters (0 = all)")
	cmd.Flags().StringVar(&out, "out", "", "write the list to this file instead of stdout")
	cmd.Flags().IntVar(&workers, "workers", 4, "concurrent fetches")
	return cmd
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

