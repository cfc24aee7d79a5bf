package markov

import (
	"context"
)

// ModelStats holds aggregated statistics for a transition model.
type ModelStats struct {
	Sources        int // The number of tokens that have at least one successor.
	Links          int // The number of unique source->next links.
	TotalFrequency int // The sum of frequencies of all links; the total number of trained transitions.
	DeadEnds       int // The number of successor tokens that never appear as a source.
}

// Stats returns a snapshot of the table's statistics.
func (t *TransitionTable) Stats(_ context.Context) (ModelStats, error) {
	stats := ModelStats{Sources: len(t.sources)}
	deadEnds := make(map[string]struct{})
	for _, source := range t.sources {
		row := t.rows[source]
		stats.Links += len(row.links)
		stats.TotalFrequency += row.total
		for _, link := range row.links {
			if _, ok := t.rows[link.Text]; !ok {
				deadEnds[link.Text] = struct{}{}
			}
		}
	}
	stats.DeadEnds = len(deadEnds)
	return stats, nil
}

// Stats returns a snapshot of the store's statistics.
func (s *SQLStore) Stats(ctx context.Context) (ModelStats, error) {
	var stats ModelStats
	if err := s.stmtSourceCount.QueryRowContext(ctx).Scan(&stats.Sources); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtChainCount.QueryRowContext(ctx).Scan(&stats.Links); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtTotalFreq.QueryRowContext(ctx).Scan(&stats.TotalFrequency); err != nil {
		return ModelStats{}, err
	}
	if err := s.stmtDeadEnds.QueryRowContext(ctx).Scan(&stats.DeadEnds); err != nil {
		return ModelStats{}, err
	}
	return stats, nil
}
