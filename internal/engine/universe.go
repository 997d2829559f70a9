package engine

import (
	"context"
	"sort"

	"github.com/harshul/nsequant/internal/contracts"
)

// SelectUniverse picks the portfolio to hold from a rebalance date until
// the next one. The repository returns the top MaxUniverseSize symbols by
// market cap with null-metric rows already excluded; within that set the
// candidates are reordered descending by the rank metric and truncated to
// portfolioSize.
//
// The sort is stable: candidates with equal metric values keep the market
// cap ordering they arrived in, so repeated calls with identical inputs
// produce identical output.
//
// Fewer than portfolioSize qualifying symbols is not an error; the caller
// must treat a short (or empty) member list as valid.
func SelectUniverse(ctx context.Context, repo contracts.MarketDataRepository, q contracts.UniverseQuery, portfolioSize int) (*contracts.RankedUniverse, error) {
	cands, err := repo.GetRankedCandidates(ctx, q)
	if err != nil {
		return nil, &contracts.DataSourceError{Op: "ranked candidates", Err: err}
	}

	// Defensive de-duplication; the first (highest cap) occurrence wins.
	seen := make(map[string]bool, len(cands))
	members := make([]contracts.Candidate, 0, len(cands))
	for _, c := range cands {
		if seen[c.Symbol] {
			continue
		}
		seen[c.Symbol] = true
		members = append(members, c)
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Metric > members[j].Metric
	})

	if len(members) > portfolioSize {
		members = members[:portfolioSize]
	}

	return &contracts.RankedUniverse{
		Date:    q.Date,
		Members: members,
	}, nil
}
