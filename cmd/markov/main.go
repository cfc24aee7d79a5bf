package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const (
	usageLine          = "Usage: markov <input_file> <num_words>"
	notEnoughTokensMsg = "Not enough tokens to build a Markov model."
)

var (
	errUsage           = errors.New("wrong arguments")
	errNotEnoughTokens = errors.New("not enough tokens")
)

// flagValues holds the raw command-line flags before they are merged into a Config.
type flagValues struct {
	configPath   string
	logLevel     string
	backend      string
	temperature  float64
	topK         int
	minFrequency int
	progress     bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &flagValues{}
	defaults := DefaultConfig()

	cmd := &cobra.Command{
		Use:   "markov <input_file> <num_words>",
		Short: "Generate random text from a word-level Markov chain",
		Long: `markov reads a text file, learns which word follows which, and prints
num_words of new text sampled from those transitions.

Example usage:
  markov corpus.txt 50                      # 50 words using the in-memory table
  markov corpus.txt 50 --backend sqlite     # same, counts kept in SQLite
  markov corpus.txt 50 --temperature 0.5    # favour common transitions`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errUsage
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags, stderr)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, args[0], args[1], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", errUsage, err)
	})

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "JSON or YAML config file (created with defaults if missing)")
	f.StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&flags.backend, "backend", defaults.Backend, "where transition counts are kept: memory or sqlite")
	f.Float64Var(&flags.temperature, "temperature", defaults.Temperature, "sampling temperature; 1 is plain weighted choice, 0 or less always picks the most frequent word")
	f.IntVar(&flags.topK, "top-k", defaults.TopK, "only sample from the k most frequent successors (0 disables)")
	f.IntVar(&flags.minFrequency, "min-freq", defaults.MinFrequency, "drop transitions seen this many times or fewer (0 disables)")
	f.BoolVar(&flags.progress, "progress", defaults.Progress, "show a progress bar on stderr while reading the input")

	return cmd
}

// resolveConfig layers defaults, the optional config file, and explicitly set flags.
func resolveConfig(cmd *cobra.Command, flags *flagValues, stderr io.Writer) (*Config, error) {
	cfg := DefaultConfig()
	if flags.configPath != "" {
		var err error
		if cfg, err = LoadConfig(flags.configPath, stderr); err != nil {
			return nil, err
		}
	}

	f := cmd.Flags()
	if f.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if f.Changed("backend") {
		cfg.Backend = flags.backend
	}
	if f.Changed("temperature") {
		cfg.Temperature = flags.temperature
	}
	if f.Changed("top-k") {
		cfg.TopK = flags.topK
	}
	if f.Changed("min-freq") {
		cfg.MinFrequency = flags.minFrequency
	}
	if f.Changed("progress") {
		cfg.Progress = flags.progress
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// execute runs the command with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		_, _ = fmt.Fprintln(stdout, usageLine)
	case errors.Is(err, errNotEnoughTokens):
		_, _ = fmt.Fprintln(stdout, notEnoughTokensMsg)
	default:
		_, _ = fmt.Fprintf(stderr, "markov: %v\n", err)
	}
	return 1
}

func main() {
	args := os.Args[1:]
	if args == nil {
		args = []string{}
	}
	os.Exit(execute(context.Background(), args, os.Stdout, os.Stderr))
}
