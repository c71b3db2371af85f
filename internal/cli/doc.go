// Package cli wires together the Cobra command tree for the openmc binary.
//
// The root command loads configuration, sets up logging, opens the cache
// backend and sweeps expired entries before any subcommand runs. Data
// commands (contributors, repo, stats-raw, commits, releases, org-repos,
// changelog, summary, lines) read through the cached GitHub client; watch
// refreshes them on an interval; cache and config manage local state.
// Failures map to deterministic exit codes.
package cli
