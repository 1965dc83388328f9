package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/japaniel/hangman/pkg/config"
)

// options holds the flag values shared by the commands.
type options struct {
	configPath string

	words     string
	scenarios string
	top       int
	workers   int
	strict    bool
	db        string
	progress  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "hangman",
		Short: "Recommend the next Hangman letter from a word-frequency list",
		Long: `hangman loads a list of "<word> <count>" lines, prints the most and
least probable words, and for every game state of the scenario table
recommends the letter most likely to appear in the hidden word.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvPath+")")

	f := root.Flags()
	f.StringVar(&opts.words, "words", "", "word list of \"<word> <count>\" lines (default words.txt)")
	f.StringVar(&opts.scenarios, "scenarios", "", "scenario table YAML (default: built-in table)")
	f.IntVar(&opts.top, "top", 14, "number of most and least probable words to print")
	f.IntVar(&opts.workers, "workers", 0, "scenario workers (0 = one per CPU)")
	f.BoolVar(&opts.strict, "strict", false, "fail on the first malformed word list line")
	f.StringVar(&opts.db, "db", "", "sqlite run log to record this run in")
	f.BoolVar(&opts.progress, "progress", false, "show progress bars on stderr")

	root.AddCommand(newCorpusCmd(opts), newHistoryCmd(opts))
	return root
}

// loadConfig reads the config file and applies the flags that were set on cmd.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("words") {
		cfg.Words.Path = opts.words
	}
	if flags.Changed("scenarios") {
		cfg.Scenarios.Path = opts.scenarios
	}
	if flags.Changed("top") {
		cfg.Report.TopN = opts.top
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("strict") {
		cfg.Words.Strict = opts.strict
	}
	if flags.Changed("db") {
		cfg.DB.Path = opts.db
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Log)
	return cfg, logger, nil
}
