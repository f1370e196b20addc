package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LiaBanuta/capstone-software-dev/internal/config"
	"github.com/LiaBanuta/capstone-software-dev/internal/domain"
	"github.com/LiaBanuta/capstone-software-dev/internal/gateway"
	"github.com/LiaBanuta/capstone-software-dev/internal/presenter"
	"github.com/LiaBanuta/capstone-software-dev/internal/usecase"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Samples pull request metrics and prints a summary",
	Long: `Searches the repository's pull requests within a date window, fetches the
details of up to a fixed number of them per metric and prints median, mean and
percentage summaries. Set GITHUB_TOKEN before running.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSample(cmd.Context()); err != nil {
			reportError(os.Stderr, err)
			os.Exit(1)
		}
	},
}

// reportError prints err, with a distinct hint when a metric collected nothing.
func reportError(w io.Writer, err error) {
	var empty *domain.EmptySampleError
	if errors.As(err, &empty) {
		fmt.Fprintf(w, "No observations were collected, so no summary can be computed: %v\n"+
			"Widen the date window or pass --skip-empty to report the other metrics anyway.\n", err)
		return
	}
	fmt.Fprintf(w, "Failed to sample metrics: %v\n", err)
}

func runSample(ctx context.Context) error {
	cfg, err := config.Load(veep, rootConfig.cfgFile)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Verbose)
	if err := cfg.Validate(); err != nil {
		return err
	}

	repo, err := cfg.Repo()
	if err != nil {
		return err
	}
	since, until, err := cfg.Window(time.Now())
	if err != nil {
		return err
	}
	backend, err := gateway.ParseBackend(cfg.Backend)
	if err != nil {
		return err
	}
	selections, err := buildSelections(cfg)
	if err != nil {
		return err
	}

	var cacheDir string
	if cfg.Cache {
		if cacheDir = cfg.CacheDir; cacheDir == "" {
			if cacheDir, err = gateway.DefaultCacheDir(); err != nil {
				return fmt.Errorf("failed to locate cache directory: %w", err)
			}
		}
	}

	// Inject dependencies and run the main business logic.
	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:    cfg.Token,
		Backend:  backend,
		CacheDir: cacheDir,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create GitHub gateway: %w", err)
	}
	reporter := usecase.NewReporter(githubGateway, logger, usecase.ReporterOptions{
		Concurrency: cfg.Concurrency,
		SkipEmpty:   cfg.SkipEmpty,
	})

	if cfg.Output == "text" {
		if err := presenter.WriteHeader(os.Stdout); err != nil {
			return err
		}
	}

	start := time.Now()
	reports, err := reporter.Run(ctx, repo, since, until, selections)
	if err != nil {
		return err
	}

	if cfg.Output == "json" {
		return presenter.WriteJSON(os.Stdout, reports)
	}
	return presenter.WriteText(os.Stdout, reports, time.Since(start))
}

// buildSelections resolves the configured metric names, or the whole
// catalogue when none are named.
func buildSelections(cfg *config.Config) ([]usecase.Selection, error) {
	names := cfg.Metrics
	if len(names) == 0 {
		for _, m := range usecase.Catalogue() {
			names = append(names, m.Name)
		}
	}

	selections := make([]usecase.Selection, 0, len(names))
	for _, name := range names {
		metric, err := usecase.LookupMetric(name)
		if err != nil {
			return nil, err
		}
		sample, err := cfg.Sample(metric.Name, metric.DefaultSample, metric.Policy)
		if err != nil {
			return nil, err
		}
		selections = append(selections, usecase.Selection{Metric: metric, Sample: sample})
	}
	return selections, nil
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	flags := sampleCmd.Flags()
	flags.StringP("repo", "r", "", "Target repository as owner/name (required unless set in config)")
	flags.String("since", "", "Start of the window, inclusive (YYYY-MM-DD)")
	flags.String("until", "", "End of the window, exclusive (YYYY-MM-DD)")
	flags.String("backend", "rest", "Search backend: rest or graphql")
	flags.Int("page-size", domain.MaxPageSize, "Search results per page")
	flags.Int("progress-interval", 50, "Report progress every N processed PRs")
	flags.Int("max-sample", 0, "Sample cap applied to every metric (0 keeps each metric's default)")
	flags.Int("concurrency", 1, "Number of metrics sampled at once")
	flags.Bool("skip-empty", false, "Report metrics with no observations instead of failing")
	flags.Bool("cache", false, "Cache GitHub responses on disk between runs")
	flags.String("cache-dir", "", "Directory for the response cache (default is the user cache dir)")
	flags.StringP("output", "o", "text", "Output format: text or json")
	flags.StringSlice("metrics", nil, "Metrics to sample (default all): cycle-time, response-time, iteration-count, review-coverage, comment-depth")

	for key, flag := range map[string]string{
		config.KeyRepository:       "repo",
		config.KeySince:            "since",
		config.KeyUntil:            "until",
		config.KeyBackend:          "backend",
		config.KeyPageSize:         "page-size",
		config.KeyProgressInterval: "progress-interval",
		config.KeyMaxSample:        "max-sample",
		config.KeyConcurrency:      "concurrency",
		config.KeySkipEmpty:        "skip-empty",
		config.KeyCache:            "cache",
		config.KeyCacheDir:         "cache-dir",
		config.KeyOutput:           "output",
		config.KeyMetrics:          "metrics",
	} {
		if err := veep.BindPFlag(key, flags.Lookup(flag)); err != nil {
			logrus.WithError(err).WithField("flag", flag).Fatal("config binding error")
		}
	}
}
