package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serveropenmc/openmc/internal/output"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the GitHub response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached GitHub response",
	RunE: func(cmd *cobra.Command, args []string) error {
		app.cache.Clear(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared (%s).\n", app.cache.Backend())
		return nil
	},
}

var cacheCleanupCmd = &cobra.Command{
	Use:         "cleanup",
	Short:       "Remove expired and unreadable cache entries",
	Annotations: map[string]string{annotationSetup: setupNoCleanup},
	RunE: func(cmd *cobra.Command, args []string) error {
		res := app.cache.Cleanup(cmd.Context())
		fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d entries: removed %d, kept %d.\n", res.Scanned, res.Removed, res.Kept)
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show cache statistics",
	Annotations: map[string]string{annotationSetup: setupNoCleanup},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat("text", "json"); err != nil {
			return err
		}
		stats, err := app.cache.Stats(cmd.Context())
		if err != nil {
			return fail(fmt.Errorf("reading cache stats: %w", err))
		}
		return writeReport(cmd, &output.Report{
			Kind:   output.KindCache,
			Source: stats.Backend,
			Cache:  &stats,
		})
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
