package markov

import (
	"context"
	"fmt"
	"log/slog"
)

// Prune removes all links with a frequency less than or equal to minFreq,
// along with any source token left without successors. It returns the
// number of links removed. A minFreq of 0 or less removes nothing.
func (t *TransitionTable) Prune(_ context.Context, minFreq int) (int64, error) {
	if minFreq <= 0 {
		return 0, nil
	}

	var removed int64
	sources := t.sources[:0]
	for _, source := range t.sources {
		row := t.rows[source]
		kept := &successors{index: make(map[string]int)}
		for _, link := range row.links {
			if link.Freq <= minFreq {
				removed++
				continue
			}
			kept.index[link.Text] = len(kept.links)
			kept.links = append(kept.links, link)
			kept.total += link.Freq
		}
		if len(kept.links) == 0 {
			delete(t.rows, source)
			continue
		}
		t.rows[source] = kept
		sources = append(sources, source)
	}
	t.sources = sources
	return removed, nil
}

// Prune removes all chain links that have a frequency less than or equal to
// minFreq. This is useful for reducing a model to its common transitions.
// Sources whose every link is removed disappear from Sources. A minFreq of 0
// or less removes nothing.
func (s *SQLStore) Prune(ctx context.Context, minFreq int) (int64, error) {
	if minFreq <= 0 {
		return 0, nil
	}
	res, err := s.stmtPrune.ExecContext(ctx, minFreq)
	if err != nil {
		return 0, fmt.Errorf("could not prune chains: %w", err)
	}
	rowsAffected, _ := res.RowsAffected()

	s.logger.InfoContext(ctx, "Model pruned",
		slog.Int("min_frequency", minFreq),
		slog.Int64("chains_removed", rowsAffected),
	)
	return rowsAffected, nil
}
