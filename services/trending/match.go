package trending

import (
	"context"
	"slices"
	"strings"
	"time"

	"trendwatch-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/codes"
)

type RepoMatch struct {
	Name        string
	Link        string
	LastSeen    time.Time
	Appearances int
	Correlation float64
}

// SearchRepos fuzzy-matches the query against every repository the
// store has ever recorded and returns the closest matches first.
func (s Service) SearchRepos(ctx context.Context, query string, limit int) ([]RepoMatch, error) {
	ctx, span := tracer.Start(ctx, "SearchRepos")
	defer span.End()

	if limit < 1 {
		limit = 10
	}

	known, err := s.store.KnownRepos(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list known repositories")
		return nil, err
	}

	normalized := textutil.NormalizeName(query)
	matches := make([]RepoMatch, len(known))
	for i, repo := range known {
		matches[i] = RepoMatch{
			Name:        repo.Name,
			Link:        repo.Link,
			LastSeen:    repo.LastSeen,
			Appearances: repo.Appearances,
			Correlation: matchr.JaroWinkler(normalized, textutil.NormalizeName(repo.Name), false),
		}
	}

	// ties break on the name so the order is stable across runs
	slices.SortFunc(matches, func(a, b RepoMatch) int {
		if a.Correlation > b.Correlation {
			return -1
		}
		if a.Correlation < b.Correlation {
			return 1
		}
		return strings.Compare(a.Name, b.Name)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
