package cli

import (
	"github.com/spf13/cobra"

	"github.com/serveropenmc/openmc/internal/changelog"
	"github.com/serveropenmc/openmc/internal/output"
	"github.com/serveropenmc/openmc/internal/stats"
)

var flagLineLimit int

var changelogCmd = &cobra.Command{
	Use:   "changelog [owner/repo]",
	Short: "Render published release notes",
	Long: "Fetch published releases and prepare their notes for display: generator comments are stripped,\n" +
		"pull-request and compare URLs become labelled links, and @mentions link to GitHub profiles.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		releases, err := app.gh.PublishedReleases(cmd.Context(), owner, repo, flagLimit)
		if err != nil {
			return fail(err)
		}
		labels := changelog.LabelsFor(app.cfg.Changelog.Locale)
		withHTML := app.cfg.Format == "html" || app.cfg.Format == "json"
		return writeReport(cmd, &output.Report{
			Kind:     output.KindReleases,
			Source:   owner + "/" + repo,
			Releases: changelog.Releases(releases, labels, withHTML),
		})
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary [owner/repo]",
	Short: "Show contributor, commit and repository counts",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json", "markdown"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		s, err := stats.Summary(cmd.Context(), app.gh, owner, repo, app.cfg.Org)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:    output.KindSummary,
			Source:  owner + "/" + repo,
			Summary: &s,
		})
	},
}

var linesCmd = &cobra.Command{
	Use:   "lines [owner/repo]",
	Short: "Show lines added and removed by the top contributors",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json", "markdown"); err != nil {
			return err
		}
		owner, repo, err := target(args)
		if err != nil {
			return err
		}
		lines, err := stats.LineStats(cmd.Context(), app.gh, owner, repo, flagLineLimit, app.logger)
		if err != nil {
			return fail(err)
		}
		return writeReport(cmd, &output.Report{
			Kind:   output.KindLines,
			Source: owner + "/" + repo,
			Lines:  lines,
		})
	},
}

func init() {
	changelogCmd.Flags().IntVarP(&flagLimit, "limit", "n", 0, "Number of releases to fetch")
	linesCmd.Flags().IntVarP(&flagLineLimit, "limit", "n", stats.DefaultLineStatsLimit, "Number of contributors to show")
}
