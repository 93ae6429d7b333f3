package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sagafalabella/scraper/internal/config"
	"sagafalabella/scraper/internal/container"
	"sagafalabella/scraper/internal/domain"
	"sagafalabella/scraper/internal/domain/task"
	"sagafalabella/scraper/internal/logging"
	"sagafalabella/scraper/internal/staging"
)

var (
	cfgFile  string
	verbose  bool
	runDate  string
	truncate bool
	resume   bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := exitCode(newRootCmd().ExecuteContext(ctx))
	if code != 0 {
		stop()
		os.Exit(code)
	}
}

// exitCode maps a command error to the process exit status. An interrupt
// exits 130 like a shell-killed process.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		log.Warn("🛑 Interrupted, nothing was flushed for the running stage")
		return 130
	default:
		log.Errorf("❌ %v", err)
		return 1
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sagafalabella",
		Short:         "Pet catalog scraper: scrape, enrich and persist storefront products",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&runDate, "date", "", "artifact date as YYYYMMDD (default today in the configured timezone)")

	rootCmd.AddCommand(
		stageCmd("scrape", "Traverse the catalog and write the raw artifact", domain.StageScrape),
		stageCmd("enrich", "Reconcile SKUs, read product pages and write the master artifact", domain.StageEnrich),
		persistCmd(),
		runCmd(),
		failuresCmd(),
		artifactsCmd(),
	)
	return rootCmd
}

// withContainer loads configuration, builds every dependency and hands them
// to fn together with the resolved run date.
func withContainer(cmd *cobra.Command, fn func(ctx context.Context, app *container.Container, date string) error) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if truncate {
		cfg.Sink.Truncate = true
	}

	logCloser, err := logging.Setup(cfg.Logging, verbose)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx := cmd.Context()
	app, err := container.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer app.Close()

	date := runDate
	if date == "" {
		date = domain.RunDate(time.Now(), app.Location)
	} else if date, err = domain.ParseRunDate(date); err != nil {
		return err
	}

	log.WithField("run_id", app.Service.RunID()).Infof("Starting %s for %s", cmd.Name(), date)
	err = fn(ctx, app, date)
	app.PushMetrics()
	return err
}

func stageCmd(name, short string, stage domain.Stage) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, date string) error {
				var err error
				switch stage {
				case domain.StageScrape:
					_, err = app.Service.Scrape(ctx, date)
				case domain.StageEnrich:
					_, err = app.Service.Enrich(ctx, date)
				}
				return err
			})
		},
	}
}

func persistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persist",
		Short: "Append the master artifact to the configured sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, date string) error {
				_, err := app.Service.Persist(ctx, date)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&truncate, "truncate", false, "empty the destination table before loading")
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run scrape, enrich and persist in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, date string) error {
				return app.Service.Run(ctx, date, resume)
			})
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "skip stages already completed for the date")
	cmd.Flags().BoolVar(&truncate, "truncate", false, "empty the destination table before loading")
	return cmd
}

func failuresCmd() *cobra.Command {
	var (
		taskType     string
		limit        int64
		clearJournal bool
	)

	cmd := &cobra.Command{
		Use:   "failures",
		Short: "List journaled listing and product page failures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, _ string) error {
				if app.Queue == nil {
					return errors.New("the failure journal needs redis.enabled=true")
				}

				types := task.TaskTypes
				if taskType != "" {
					types = []string{taskType}
				}

				out := cmd.OutOrStdout()
				for _, t := range types {
					if clearJournal {
						if err := app.Queue.Clear(ctx, t); err != nil {
							return err
						}
						continue
					}

					total, err := app.Queue.Len(ctx, t)
					if err != nil {
						return err
					}
					entries, err := app.Queue.ListTasks(ctx, t, limit)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s: %d journaled\n", t, total)
					for _, entry := range entries {
						fmt.Fprintf(out, "  %s %s\n", entry.ID, entry.Data)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&taskType, "type", "", "only this task type (PageFailureTask or DetailFailureTask)")
	cmd.Flags().Int64Var(&limit, "limit", 50, "entries to show per type (0 = all)")
	cmd.Flags().BoolVar(&clearJournal, "clear", false, "delete the journal instead of listing it")
	return cmd
}

func artifactsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect staging artifacts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "list [raw|master]",
		Short:     "List stored artifacts of a layer (both when omitted)",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(staging.LayerRaw), string(staging.LayerMaster)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, _ string) error {
				layers := []staging.Layer{staging.LayerRaw, staging.LayerMaster}
				if len(args) == 1 {
					layers = []staging.Layer{staging.Layer(args[0])}
				}
				for _, layer := range layers {
					paths, err := app.Artifacts.List(ctx, layer)
					if err != nil {
						return err
					}
					for _, p := range paths {
						fmt.Fprintln(cmd.OutOrStdout(), p)
					}
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a staging artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, func(ctx context.Context, app *container.Container, _ string) error {
				return app.Artifacts.Delete(ctx, args[0])
			})
		},
	})

	return cmd
}
