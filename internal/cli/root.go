package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/serveropenmc/openmc/internal/cache"
	"github.com/serveropenmc/openmc/internal/config"
	"github.com/serveropenmc/openmc/internal/github"
	"github.com/serveropenmc/openmc/internal/logging"
	"github.com/serveropenmc/openmc/internal/output"
	"github.com/serveropenmc/openmc/internal/redact"
	"github.com/serveropenmc/openmc/internal/store"
)

const version = "0.3.0"

// apiVersion pins the GitHub REST API version requested by every command.
const apiVersion = "2022-11-28"

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRateLimited  = 3
	ExitRuntimeError = 4
)

// Command annotations controlling what the root pre-run sets up.
const (
	annotationSetup = "openmc/setup"
	setupNone       = "none"       // config, version: nothing to open
	setupNoCleanup  = "no-cleanup" // open the cache but leave expired entries
)

var (
	flagOwner    string
	flagRepo     string
	flagOrg      string
	flagFormat   string
	flagOut      string
	flagBackend  string
	flagLocale   string
	flagLogLevel string
	flagAPIURL   string
	flagCoalesce bool
)

var rootCmd = &cobra.Command{
	Use:   "openmc",
	Short: "Cached GitHub data for the OpenMC community site",
	Long: "openmc fetches contributors, releases, commits and repository statistics from the GitHub API,\n" +
		"keeps them in an expiring cache, and renders release notes for the website changelog.",
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
	// execute prints errors itself, with credentials masked.
	SilenceErrors: true,
}

// app holds what the root pre-run built for the running command.
var app struct {
	cfg    config.Config
	logger *slog.Logger
	kv     store.KV
	cache  *cache.Store
	gh     *github.Client
}

// exitError carries the exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// fail classifies err for the exit code.
func fail(err error) error {
	if err == nil {
		return nil
	}
	if github.IsRateLimit(err) {
		return &exitError{code: ExitRateLimited, err: err}
	}
	return &exitError{code: ExitRuntimeError, err: err}
}

func usageError(format string, args ...any) error {
	return &exitError{code: ExitUsageError, err: fmt.Errorf(format, args...)}
}

// Run executes the root command and returns an exit code.
func Run() int {
	return execute(context.Background(), os.Args[1:])
}

func execute(ctx context.Context, args []string) int {
	defer closeApp()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", redact.Secrets(err.Error()))
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors
	return ExitUsageError
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagOwner, "owner", "", "Repository owner (default from config)")
	pf.StringVar(&flagRepo, "repo", "", "Repository name (default from config)")
	pf.StringVar(&flagOrg, "org", "", "Organization for org-wide commands")
	pf.StringVarP(&flagFormat, "format", "f", "", "Output format: text, json, markdown, html")
	pf.StringVarP(&flagOut, "out", "o", "", "Write output to a file instead of stdout")
	pf.StringVar(&flagBackend, "cache-backend", "", "Cache backend: memory, file, redis, sqlite")
	pf.StringVar(&flagLocale, "locale", "", "Changelog label language (en, fr)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagAPIURL, "api-url", "", "GitHub API base URL")
	pf.BoolVar(&flagCoalesce, "coalesce", false, "Share one request between concurrent cache misses")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(contributorsCmd, repoCmd, statsRawCmd, commitsCmd, releasesCmd, orgReposCmd)
	rootCmd.AddCommand(changelogCmd, summaryCmd, linesCmd)
	rootCmd.AddCommand(watchCmd)
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagOwner != "" {
		m["owner"] = flagOwner
	}
	if flagRepo != "" {
		m["repo"] = flagRepo
	}
	if flagOrg != "" {
		m["org"] = flagOrg
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagBackend != "" {
		m["cache.backend"] = flagBackend
	}
	if flagLocale != "" {
		m["changelog.locale"] = flagLocale
	}
	if flagLogLevel != "" {
		m["log.level"] = flagLogLevel
	}
	if flagAPIURL != "" {
		m["github.apiUrl"] = flagAPIURL
	}
	if flagCoalesce {
		m["github.coalesce"] = strconv.FormatBool(flagCoalesce)
	}
	return m
}

func setup(cmd *cobra.Command, args []string) error {
	mode := cmd.Annotations[annotationSetup]
	if mode == setupNone {
		return nil
	}
	// Past flag parsing, errors are no longer about usage.
	cmd.SilenceUsage = true

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		return usageError("%w", err)
	}
	logger, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return usageError("%w", err)
	}

	ctx := cmd.Context()
	kv, err := store.Open(ctx, store.Config{
		Backend:    cfg.Cache.Backend,
		Dir:        cfg.Cache.Dir,
		RedisURL:   cfg.Cache.RedisURL,
		SQLitePath: cfg.Cache.SQLitePath,
	})
	if err != nil {
		return fail(fmt.Errorf("opening cache: %w", err))
	}
	cs := cache.New(kv, cache.WithLogger(logger))
	if mode != setupNoCleanup {
		res := cs.Cleanup(ctx)
		logger.Debug("startup cache cleanup", "backend", kv.Name(), "removed", res.Removed, "kept", res.Kept)
	}

	opts := []github.Option{
		github.WithAPIURL(cfg.GitHub.APIURL),
		github.WithToken(cfg.GitHub.Token),
		github.WithHTTPClient(&http.Client{Timeout: cfg.GitHub.Timeout}),
		github.WithLogger(logger),
		github.WithHeader("User-Agent", "openmc/"+version),
		github.WithHeader("X-GitHub-Api-Version", apiVersion),
	}
	if cfg.GitHub.Coalesce {
		opts = append(opts, github.WithCoalescing())
	}

	app.cfg = cfg
	app.logger = logger
	app.kv = kv
	app.cache = cs
	app.gh = github.NewClient(cs, opts...)
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	if err := closeApp(); err != nil {
		return fail(fmt.Errorf("closing cache: %w", err))
	}
	return nil
}

// closeApp releases the cache backend. A failed command skips the post-run
// hook, so execute calls it as well.
func closeApp() error {
	if app.kv == nil {
		return nil
	}
	err := app.kv.Close()
	app.kv = nil
	return err
}

// writeReport writes to --out when set, else to the command's stdout.
func writeReport(cmd *cobra.Command, report *output.Report) error {
	report.GeneratedAt = time.Now()
	if flagOut != "" {
		return fail(output.WriteReport(report, app.cfg.Format, flagOut))
	}
	w, err := output.GetWriter(app.cfg.Format)
	if err != nil {
		return usageError("%w", err)
	}
	return fail(w.Write(cmd.OutOrStdout(), report))
}

// target resolves the owner/repo for a command from an optional
// "owner/repo" argument, falling back to configuration.
func target(args []string) (owner, repo string, err error) {
	if len(args) == 0 {
		return app.cfg.Owner, app.cfg.Repo, nil
	}
	owner, repo, err = github.ParseRepo(args[0])
	if err != nil {
		return "", "", usageError("%w", err)
	}
	return owner, repo, nil
}

// checkFormat rejects output formats a command cannot produce.
func checkFormat(allowed ...string) error {
	for _, f := range allowed {
		if app.cfg.Format == f {
			return nil
		}
	}
	return usageError("format %q is not supported by this command (use one of %v)", app.cfg.Format, allowed)
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print openmc version",
	Annotations: map[string]string{annotationSetup: setupNone},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "openmc version %s\n", version)
	},
}
