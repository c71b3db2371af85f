package stats

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/serveropenmc/openmc/internal/github"
)

// DefaultLineStatsLimit is the number of contributors LineStats reports
// when limit is not positive.
const DefaultLineStatsLimit = 8

// API is the subset of *github.Client used here.
type API interface {
	Contributors(ctx context.Context, owner, repo string) ([]github.Contributor, error)
	Repository(ctx context.Context, owner, repo string) (*github.Repository, error)
	ContributorStats(ctx context.Context, owner, repo string) ([]github.ContributorStat, error)
	OrgRepositories(ctx context.Context, org string) ([]github.OrgRepository, error)
}

// MergeContributors unions contributor lists by login, summing
// contributions. The result is sorted by contributions, highest first,
// then by login.
func MergeContributors(lists ...[]github.Contributor) []github.Contributor {
	index := make(map[string]int)
	var merged []github.Contributor
	for _, list := range lists {
		for _, c := range list {
			if i, ok := index[c.Login]; ok {
				merged[i].Contributions += c.Contributions
				continue
			}
			index[c.Login] = len(merged)
			merged = append(merged, c)
		}
	}
	slices.SortStableFunc(merged, func(a, b github.Contributor) int {
		if n := cmp.Compare(b.Contributions, a.Contributions); n != 0 {
			return n
		}
		return cmp.Compare(a.Login, b.Login)
	})
	return merged
}

// RepoSummary is the headline numbers shown for a project.
type RepoSummary struct {
	Owner        string `json:"owner"`
	Repo         string `json:"repo"`
	Org          string `json:"org"`
	Contributors int    `json:"contributors"`
	Commits      int    `json:"commits"`
	Repositories int    `json:"repositories"`
	CreatedYear  int    `json:"createdYear"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
}

// Summary fetches the contributor list, the repository and the org
// repositories concurrently and folds them into a RepoSummary. Commits is
// the sum of contributions.
func Summary(ctx context.Context, api API, owner, repo, org string) (RepoSummary, error) {
	var (
		contributors []github.Contributor
		repository   *github.Repository
		orgRepos     []github.OrgRepository
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contributors, err = api.Contributors(gctx, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		repository, err = api.Repository(gctx, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		orgRepos, err = api.OrgRepositories(gctx, org)
		return err
	})
	if err := g.Wait(); err != nil {
		return RepoSummary{}, fmt.Errorf("summary for %s/%s: %w", owner, repo, err)
	}

	s := RepoSummary{
		Owner:        owner,
		Repo:         repo,
		Org:          org,
		Contributors: len(contributors),
		Repositories: len(orgRepos),
		Stars:        repository.StargazersCount,
		Forks:        repository.ForksCount,
	}
	for _, c := range contributors {
		s.Commits += c.Contributions
	}
	if !repository.CreatedAt.IsZero() {
		s.CreatedYear = repository.CreatedAt.Year()
	}
	return s, nil
}

// ContributorLines is a contributor with line counts. HasLines is false
// when weekly statistics were unavailable.
type ContributorLines struct {
	Login         string `json:"login"`
	AvatarURL     string `json:"avatarUrl"`
	Contributions int    `json:"contributions"`
	Additions     int    `json:"additions"`
	Deletions     int    `json:"deletions"`
	Net           int    `json:"net"`
	HasLines      bool   `json:"hasLines"`
}

// LineStats returns the first limit contributors enriched with additions
// and deletions from the weekly statistics. A failure to load statistics
// is logged and the contributors are returned without line counts.
func LineStats(ctx context.Context, api API, owner, repo string, limit int, logger *slog.Logger) ([]ContributorLines, error) {
	if limit <= 0 {
		limit = DefaultLineStatsLimit
	}
	if logger == nil {
		logger = slog.Default()
	}

	contributors, err := api.Contributors(ctx, owner, repo)
	if err != nil {
		return nil, fmt.Errorf("line stats for %s/%s: %w", owner, repo, err)
	}
	if len(contributors) > limit {
		contributors = contributors[:limit]
	}

	byLogin := make(map[string]github.ContributorStat)
	weekly, err := api.ContributorStats(ctx, owner, repo)
	if err != nil {
		logger.Warn("contributor statistics unavailable", "owner", owner, "repo", repo, "error", err)
	}
	for _, s := range weekly {
		if s.Author != nil {
			byLogin[s.Author.Login] = s
		}
	}

	out := make([]ContributorLines, 0, len(contributors))
	for _, c := range contributors {
		l := ContributorLines{
			Login:         c.Login,
			AvatarURL:     c.AvatarURL,
			Contributions: c.Contributions,
		}
		if s, ok := byLogin[c.Login]; ok {
			l.Additions = s.Additions()
			l.Deletions = s.Deletions()
			l.Net = l.Additions - l.Deletions
			l.HasLines = true
		}
		out = append(out, l)
	}

	slices.SortStableFunc(out, func(a, b ContributorLines) int {
		if a.HasLines && b.HasLines {
			return cmp.Compare(b.Additions, a.Additions)
		}
		if a.HasLines != b.HasLines {
			if a.HasLines {
				return -1
			}
			return 1
		}
		return cmp.Compare(b.Contributions, a.Contributions)
	})
	return out, nil
}
