package markov

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
)

// SetupSchema initializes the necessary tables in the provided database. It
// should be called once on a new database before NewSQLStore. It is
// idempotent and safe to call on an already-initialized database.
func SetupSchema(db *sql.DB) error {

	const (
		schemaVocab = `
CREATE TABLE IF NOT EXISTS markov_vocabulary (
    token_id INTEGER PRIMARY KEY,
    token_text TEXT NOT NULL UNIQUE
);
`
		schemaChains = `
CREATE TABLE IF NOT EXISTS markov_chains (
    source_id INTEGER NOT NULL,
    next_token_id INTEGER NOT NULL,
    frequency  INTEGER NOT NULL DEFAULT 1,
    PRIMARY KEY (source_id, next_token_id)
);
`
	)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	// If the transaction succeeds, tx.Commit() will be called first, and the rollback will do nothing. If it fails, this will clean up.
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaVocab); err != nil {
		return fmt.Errorf("could not create vocabulary schema: %w", err)
	}

	if _, err = tx.Exec(schemaChains); err != nil {
		return fmt.Errorf("could not create chains schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}

	return nil
}

// SQLStore is a Chain backed by a SQLite database. Tokens are interned in a
// vocabulary table and each (source, next) pair is a row in the chains table.
// Rows are read back in rowid order, which is the order they were first
// inserted, so a SQLStore and a TransitionTable trained on the same tokens
// answer Sources and Next identically.
type SQLStore struct {
	db              *sql.DB
	stmtInsertVocab *sql.Stmt
	stmtInsertLink  *sql.Stmt
	stmtSources     *sql.Stmt
	stmtGetChain    *sql.Stmt
	stmtPrune       *sql.Stmt
	stmtChainCount  *sql.Stmt
	stmtTotalFreq   *sql.Stmt
	stmtSourceCount *sql.Stmt
	stmtDeadEnds    *sql.Stmt
	stmtGetVocabLen *sql.Stmt
	logger          *slog.Logger
}

// NewSQLStore creates and returns a new SQLStore over db, whose schema must
// already be set up with SetupSchema. It pre-compiles all necessary SQL
// statements, returning an error if any preparation fails.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	s := &SQLStore{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	statements := []struct {
		dst   **sql.Stmt
		query string
	}{
		{&s.stmtInsertVocab, `INSERT INTO markov_vocabulary (token_text) VALUES (?) ON CONFLICT(token_text) DO UPDATE SET token_text=excluded.token_text RETURNING token_id;`},
		{&s.stmtInsertLink, `INSERT INTO markov_chains (source_id, next_token_id, frequency) VALUES (?, ?, 1) ON CONFLICT(source_id, next_token_id) DO UPDATE SET frequency = frequency + 1;`},
		{&s.stmtSources, `SELECT v.token_text FROM markov_chains c JOIN markov_vocabulary v ON v.token_id = c.source_id GROUP BY c.source_id ORDER BY MIN(c.rowid);`},
		{&s.stmtGetChain, `SELECT v.token_text, c.frequency FROM markov_chains c JOIN markov_vocabulary v ON v.token_id = c.next_token_id WHERE c.source_id = (SELECT token_id FROM markov_vocabulary WHERE token_text = ?) ORDER BY c.rowid;`},
		{&s.stmtPrune, `DELETE FROM markov_chains WHERE frequency <= ?;`},
		{&s.stmtChainCount, `SELECT COUNT(*) FROM markov_chains;`},
		{&s.stmtTotalFreq, `SELECT coalesce(SUM(frequency), 0) FROM markov_chains;`},
		{&s.stmtSourceCount, `SELECT COUNT(DISTINCT source_id) FROM markov_chains;`},
		{&s.stmtDeadEnds, `SELECT COUNT(DISTINCT next_token_id) FROM markov_chains WHERE next_token_id NOT IN (SELECT source_id FROM markov_chains);`},
		{&s.stmtGetVocabLen, `SELECT COUNT(*) FROM markov_vocabulary;`},
	}

	for _, st := range statements {
		stmt, err := db.Prepare(st.query)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not prepare statement: %w", err)
		}
		*st.dst = stmt
	}

	return s, nil
}

// Close releases all prepared SQL statements held by the SQLStore. It does
// not close the underlying database.
func (s *SQLStore) Close() {
	for _, stmt := range []*sql.Stmt{
		s.stmtInsertVocab,
		s.stmtInsertLink,
		s.stmtSources,
		s.stmtGetChain,
		s.stmtPrune,
		s.stmtChainCount,
		s.stmtTotalFreq,
		s.stmtSourceCount,
		s.stmtDeadEnds,
		s.stmtGetVocabLen,
	} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
}

// SetLogger sets the logger for the SQLStore. By default, all logs are discarded.
func (s *SQLStore) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Sources implements Chain.
func (s *SQLStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.stmtSources.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not query source tokens: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var sources []string
	for rows.Next() {
		var text string
		if err = rows.Scan(&text); err != nil {
			return nil, err
		}
		sources = append(sources, text)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

// Next implements Chain. If the token is not in the vocabulary, or has no
// recorded successors, it returns a nil slice and a total frequency of 0.
func (s *SQLStore) Next(ctx context.Context, token string) ([]ChainToken, int, error) {
	rows, err := s.stmtGetChain.QueryContext(ctx, token)
	if err != nil {
		return nil, 0, fmt.Errorf("could not query successors of '%s': %w", token, err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var tokens []ChainToken
	var totalFreq int
	for rows.Next() {
		var link ChainToken
		if err = rows.Scan(&link.Text, &link.Freq); err != nil {
			return nil, 0, err
		}
		tokens = append(tokens, link)
		totalFreq += link.Freq
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return tokens, totalFreq, nil
}

// VocabSize returns the number of distinct tokens interned by the store.
func (s *SQLStore) VocabSize(ctx context.Context) (int, error) {
	var n int
	if err := s.stmtGetVocabLen.QueryRowContext(ctx).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
