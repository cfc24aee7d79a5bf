package markov

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// chainLink Is a struct used for batching chain inserts.
type chainLink struct {
	sourceID    int
	nextTokenID int
}

// BuildModel counts, for every adjacent pair in tokens, how often the second
// token followed the first. It does no smoothing or normalization, and it
// expects at least two tokens; fewer simply produce an empty table.
func BuildModel(tokens []string) *TransitionTable {
	t := NewTransitionTable()
	for i := 0; i+1 < len(tokens); i++ {
		t.Observe(tokens[i], tokens[i+1])
	}
	return t
}

// Train records every adjacent pair of tokens in the store. Vocabulary IDs
// are cached in memory and chain upserts are flushed in batches, all within a
// single transaction.
func (s *SQLStore) Train(ctx context.Context, tokens []string) error {
	// chainBatchSize determines how many chain links are buffered in memory before being written to the database in a single batch.
	const chainBatchSize = 1000

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// All transaction-specific statements will also be closed with this or the .Commit()
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtInsertVocab := tx.StmtContext(ctx, s.stmtInsertVocab)
	stmtInsertLink := tx.StmtContext(ctx, s.stmtInsertLink)

	vocabCache := make(map[string]int)
	tokenID := func(text string) (int, error) {
		if id, ok := vocabCache[text]; ok {
			return id, nil
		}
		var id int
		if err := stmtInsertVocab.QueryRowContext(ctx, text).Scan(&id); err != nil {
			return 0, fmt.Errorf("sql insert vocabulary error for token '%s': %w", text, err)
		}
		vocabCache[text] = id
		return id, nil
	}

	chainBatch := make([]chainLink, 0, chainBatchSize)
	commitChainBatch := func() error {
		for _, link := range chainBatch {
			if _, err := stmtInsertLink.ExecContext(ctx, link.sourceID, link.nextTokenID); err != nil {
				return fmt.Errorf("failed during batch insert of chain link (%d -> %d): %w", link.sourceID, link.nextTokenID, err)
			}
		}
		chainBatch = chainBatch[:0]
		return nil
	}

	for i := 0; i+1 < len(tokens); i++ {
		sourceID, err := tokenID(tokens[i])
		if err != nil {
			return err
		}
		nextID, err := tokenID(tokens[i+1])
		if err != nil {
			return err
		}
		chainBatch = append(chainBatch, chainLink{sourceID: sourceID, nextTokenID: nextID})

		if len(chainBatch) >= chainBatchSize {
			if err := commitChainBatch(); err != nil {
				return err
			}
		}
	}

	if err := commitChainBatch(); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit training transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Training completed",
		slog.Int("tokens_processed", len(tokens)),
		slog.Int("vocab_size", len(vocabCache)),
	)
	return nil
}
