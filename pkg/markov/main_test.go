package markov

import (
	"context"
	"database/sql"
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// scenarioText is the small corpus most tests train on.
const scenarioText = "the cat sat on the mat the cat ran"

// setupTestStore creates a new SQLite database and an SQLStore for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) (*sql.DB, *SQLStore) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=-4000")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewSQLStore(db)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	return db, s
}

// setupTestStoreWithTraining is a convenience helper that also trains the
// store on scenarioText.
func setupTestStoreWithTraining(t *testing.T) (context.Context, *SQLStore) {
	_, s := setupTestStore(t)
	ctx := context.Background()
	if err := s.Train(ctx, Tokenize(scenarioText)); err != nil {
		t.Fatalf("setup: Train() failed: %v", err)
	}
	return ctx, s
}

// newTestGenerator returns a Generator with a fixed seed.
func newTestGenerator(seed uint64) *Generator {
	return NewGenerator(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// setupTestStoreBench creates a database for benchmarking.
func setupTestStoreBench(b *testing.B) (*sql.DB, *SQLStore) {
	dbFile := filepath.Join(b.TempDir(), "bench.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=OFF&_cache_size=-16000&_mmap_size=268435456")
	if err != nil {
		b.Fatalf("failed to open database: %v", err)
	}
	b.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		b.Fatalf("failed to set up schema: %v", err)
	}

	s, err := NewSQLStore(db)
	if err != nil {
		b.Fatalf("NewSQLStore() error = %v", err)
	}
	b.Cleanup(s.Close)

	return db, s
}

var (
	benchmarkCorpus string
	corpusOnce      sync.Once
)

// createBenchmarkCorpus reads Go source files to create a corpus for benchmarking.
func createBenchmarkCorpus() string {
	corpusOnce.Do(func() {
		var sb strings.Builder
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkCorpus = "this is a fallback corpus for benchmarking. it is not very long but will prevent a crash. "
				return
			}
			sb.Write(content)
			sb.WriteString("\n")
		}
		benchmarkCorpus = sb.String()
	})
	return benchmarkCorpus
}
