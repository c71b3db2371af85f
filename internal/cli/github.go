package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serveropenmc/openmc/internal/changelog"
	"github.com/serveropenmc/openmc/internal/output"
)

var (
	flagLimit        int
	flagIncludeDraft bool
)

var contributorsCmd = &cobra.Command{
	Use:   "contributors [owner/repo]",
	Short: "List repository contributors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json", "markdown"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		list, err := app.gh.Contributors(cmd.Context(), owner, repo)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:         output.KindContributors,
			Source:       owner + "/" + repo,
			Contributors: list,
		})
	},
}

var repoCmd = &cobra.Command{
	Use:   "repo [owner/repo]",
	Short: "Show repository details",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		r, err := app.gh.Repository(cmd.Context(), owner, repo)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:       output.KindRepository,
			Source:     owner + "/" + repo,
			Repository: r,
		})
	},
}

var statsRawCmd = &cobra.Command{
	Use:   "stats-raw [owner/repo]",
	Short: "Show weekly contributor statistics",
	Long: "Show the weekly contributor statistics GitHub computes for a repository.\n" +
		"GitHub may still be computing them; run the command again a little later in that case.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		s, err := app.gh.ContributorStats(cmd.Context(), owner, repo)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:   output.KindStats,
			Source: owner + "/" + repo,
			Stats:  s,
		})
	},
}

var commitsCmd = &cobra.Command{
	Use:   "commits [owner/repo]",
	Short: "List recent commits",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json", "markdown"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		commits, err := app.gh.Commits(cmd.Context(), owner, repo, flagLimit)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:    output.KindCommits,
			Source:  owner + "/" + repo,
			Commits: changelog.Commits(commits, changelog.DefaultTruncate),
		})
	},
}

var releasesCmd = &cobra.Command{
	Use:   "releases [owner/repo]",
	Short: "List releases with their raw bodies",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		releases, err := app.gh.Releases(cmd.Context(), owner, repo, flagLimit)
		if err != nil {
			return fail(err)
		}
		views := make([]changelog.ReleaseView, 0, len(releases))
		for _, r := range releases {
			if r.Draft && !flagIncludeDraft {
				continue
			}
			views = append(views, changelog.ReleaseView{
				Tag:        r.TagName,
				Name:       r.Name,
				URL:        r.HTMLURL,
				Published:  r.PublishedAt,
				Prerelease: r.Prerelease,
				Markdown:   r.Body,
			})
		}
		return writeReport(cmd, &output.Report{
			Kind:     output.KindReleases,
			Source:   owner + "/" + repo,
			Releases: views,
		})
	},
}

var orgReposCmd = &cobra.Command{
	Use:   "org-repos [org]",
	Short: "List the organization's public repositories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json"); err != nil {
			return err
		}
		org := app.cfg.Org
		if len(args) == 1 {
			org = args[0]
		}
		if org == "" {
			return usageError("no organization given")
		}
		repos, err := app.gh.OrgRepositories(cmd.Context(), org)
		if err != nil {
			return fail(fmt.Errorf("listing %s repositories: %w", org, err))
		}
		return writeReport(cmd, &output.Report{
			Kind:     output.KindOrgRepos,
			Source:   org,
			OrgRepos: repos,
		})
	},
}

func init() {
	commitsCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Number of items to fetch (default depends on the command)")
	releasesCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Number of items to fetch (default depends on the command)")
	releasesCmd.Flags().BoolVar(&flagIncludeDraft, "drafts", false, "Include draft releases")
}
