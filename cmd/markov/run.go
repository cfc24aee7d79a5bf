package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/CTAG07/markovtext/pkg/markov"
	"github.com/schollz/progressbar/v3"
)

// model is what the pipeline needs from either backend.
type model interface {
	markov.Chain
	Prune(ctx context.Context, minFreq int) (int64, error)
	Stats(ctx context.Context) (markov.ModelStats, error)
}

func run(ctx context.Context, cfg *Config, inputPath, numWordsArg string, stdout, stderr io.Writer) error {
	numWords, err := strconv.Atoi(numWordsArg)
	if err != nil {
		return fmt.Errorf("num_words must be an integer, got %q", numWordsArg)
	}
	if numWords <= 0 {
		return fmt.Errorf("num_words must be positive, got %d", numWords)
	}

	logger := newLogger(stderr, cfg.LogLevel)

	text, err := readInput(inputPath, cfg.Progress, stderr)
	if err != nil {
		return err
	}

	tokens := markov.Tokenize(text)
	logger.Debug("Tokenized input", "path", inputPath, "tokens", len(tokens))
	if len(tokens) < 2 {
		return errNotEnoughTokens
	}

	chain, cleanup, err := buildChain(ctx, cfg.Backend, tokens, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.MinFrequency > 0 {
		removed, err := chain.Prune(ctx, cfg.MinFrequency)
		if err != nil {
			return fmt.Errorf("failed to prune model: %w", err)
		}
		logger.Debug("Pruned rare transitions", "min_frequency", cfg.MinFrequency, "removed", removed)
	}

	if stats, err := chain.Stats(ctx); err != nil {
		logger.Warn("Failed to compute model stats", "error", err)
	} else {
		logger.Info("Model ready",
			"backend", cfg.Backend,
			"sources", stats.Sources,
			"links", stats.Links,
			"total_frequency", stats.TotalFrequency,
			"dead_ends", stats.DeadEnds,
		)
	}

	gen := markov.NewGenerator(nil)
	gen.SetLogger(logger)
	words, err := gen.Generate(ctx, chain, numWords,
		markov.WithTemperature(cfg.Temperature),
		markov.WithTopK(cfg.TopK),
	)
	if err != nil {
		if errors.Is(err, markov.ErrEmptyModel) {
			return fmt.Errorf("no transitions left to sample from (min_frequency %d): %w", cfg.MinFrequency, err)
		}
		return fmt.Errorf("failed to generate text: %w", err)
	}

	_, err = fmt.Fprintln(stdout, markov.Join(markov.NewDefaultTokenizer(), words))
	return err
}

// readInput loads the whole file as text, rejecting content that is not valid UTF-8.
func readInput(path string, progress bool, stderr io.Writer) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not read input file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if progress {
		info, err := f.Stat()
		if err != nil {
			return "", fmt.Errorf("could not read input file: %w", err)
		}
		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("reading "+info.Name()),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
		r = io.TeeReader(f, bar)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("could not read input file: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("input file %s is not valid UTF-8", path)
	}
	return string(data), nil
}

// buildChain trains the chosen backend on tokens. The returned cleanup must
// be called once generation is finished.
func buildChain(ctx context.Context, backend string, tokens []string, logger *slog.Logger) (model, func(), error) {
	if backend != backendSQLite {
		table := markov.BuildModel(tokens)
		return table, func() {}, nil
	}

	db, err := openMemoryDB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = markov.SetupSchema(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to set up database schema: %w", err)
	}
	store, err := markov.NewSQLStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create store: %w", err)
	}
	store.SetLogger(logger)

	cleanup := func() {
		store.Close()
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
	if err = store.Train(ctx, tokens); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to train model: %w", err)
	}
	return store, cleanup, nil
}
