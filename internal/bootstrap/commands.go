package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chmouel/lazyplaylist/internal/buildinfo"
	"github.com/chmouel/lazyplaylist/internal/config"
	"github.com/chmouel/lazyplaylist/internal/editor"
	"github.com/chmouel/lazyplaylist/internal/git"
	"github.com/chmouel/lazyplaylist/internal/log"
	"github.com/chmouel/lazyplaylist/internal/menu"
	"github.com/chmouel/lazyplaylist/internal/metrics"
	"github.com/chmouel/lazyplaylist/internal/playlist"
	"github.com/chmouel/lazyplaylist/internal/progress"
	"github.com/chmouel/lazyplaylist/internal/utils"
	"github.com/chmouel/lazyplaylist/internal/validate"
	"github.com/chmouel/lazyplaylist/internal/watch"
	urfavecli "github.com/urfave/cli/v3"
)

var (
	loadCLIConfigFunc = loadCLIConfig
	newEditorFunc     = func(cfg *config.AppConfig) menu.Editor {
		return editor.NewLauncher(cfg.Editor, cfg.WorkDir)
	}
	now = time.Now
)

// NewCommand returns the root command. Without a subcommand it runs the
// interactive menu.
func NewCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:      "lazyplaylist",
		Usage:     "Manage a directory of M3U playlists kept in git",
		Version:   buildinfo.Get().Version,
		Flags:     globalFlags(),
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Action:    runMenu,

		EnableShellCompletion: true,

		Commands: []*urfavecli.Command{
			listCommand(),
			editCommand(),
			publishCommand(),
			validateCommand(),
			watchCommand(),
			versionCommand(),
		},
	}
}

// commandConfig loads the configuration for cmd and sets up the debug log.
func commandConfig(cmd *urfavecli.Command) (*config.AppConfig, error) {
	cfg, err := loadCLIConfigFunc(cmd.String("config-file"), cmd.String("work-dir"), cmd.StringSlice("config"))
	if err != nil {
		return nil, err
	}
	setupDebugLog(cmd.String("debug-log"), cfg.DebugLog)
	if err := applyThemeConfig(cfg, cmd.String("theme")); err != nil {
		return nil, err
	}
	log.Printf("config: work dir %s, primary %s, pattern %s", cfg.WorkDir, cfg.PrimaryFile, cfg.PlaylistPattern)
	return cfg, nil
}

// runMenu is the default action that shows the menu when no subcommand is given.
func runMenu(ctx context.Context, cmd *urfavecli.Command) error {
	cfg, err := commandConfig(cmd)
	if err != nil {
		return err
	}

	recorder := metrics.New(cfg.MetricsFile)
	gitSvc := git.NewService(cfg.WorkDir, stdout, menu.NewNotifier(stdout, cfg.Theme))
	ctrl := menu.New(menuConfig(cfg), menu.ListerFunc(playlist.List), newEditorFunc(cfg), gitSvc, stdin, stdout)
	ctrl.OnPublish(func(results []git.Result) {
		if err := recorder.ObservePublish(results, now()); err != nil {
			ctrl.Warn(err.Error(), "warn")
		}
	})
	return ctrl.Run(ctx)
}

func listCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "list",
		Usage: "Print the playlists in the work directory",
		Action: func(_ context.Context, cmd *urfavecli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			names, err := playlist.List(cfg.WorkDir, cfg.PlaylistPattern)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(stdout, name)
			}
			return nil
		},
	}
}

func editCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "edit",
		Usage: "Open the primary playlist in the editor",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return newEditorFunc(cfg).Open(ctx, cfg.PrimaryPath())
		},
	}
}

func publishCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "publish",
		Usage: "Stage the playlists and the aux file, commit and push",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			return runPublish(ctx, cfg)
		},
	}
}

// runPublish runs every publish step regardless of earlier exit statuses.
// Only a git binary that cannot be started fails the command.
func runPublish(ctx context.Context, cfg *config.AppConfig) error {
	gitSvc := newCLIGitService(cfg)
	results := gitSvc.Publish(ctx, git.PublishOptions{
		Pattern: cfg.PlaylistPattern,
		AuxFile: cfg.AuxFile,
		Message: git.CommitMessage(cfg.CommitPrefix, cfg.CommitTimeFormat, now()),
	})
	if err := metrics.New(cfg.MetricsFile).ObservePublish(results, now()); err != nil {
		cliNotify(err.Error(), "warn")
	}
	fmt.Fprintln(stdout, "Done.")

	for _, res := range results {
		if res.Err != nil {
			return fmt.Errorf("%s: %w", res.Command, res.Err)
		}
	}
	return nil
}

func validateCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "validate",
		Usage: "Probe the channels of the source playlists and keep the working ones",
		Flags: validateFlags(),
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			opts, err := validateOptions(cfg, cmd)
			if err != nil {
				return err
			}
			return runValidate(ctx, cfg, opts)
		},
	}
}

// validateOptions maps the configuration and the validate flags to a run.
func validateOptions(cfg *config.AppConfig, cmd *urfavecli.Command) (validate.Options, error) {
	opts := validate.Options{
		WorkDir:     cfg.WorkDir,
		Pattern:     cfg.PlaylistPattern,
		PrimaryFile: cfg.PrimaryFile,
		Sources:     cfg.Validate.Sources,
		Output:      cfg.OutputFile(),
		LogDir:      cfg.Validate.LogDir,
		Timeout:     cfg.Validate.Timeout,
		Concurrency: cfg.Validate.Concurrency,
		UserAgent:   cfg.Validate.UserAgent,
		MinBytes:    cfg.Validate.MinBytes,
		SkipProbe:   cmd.Bool("skip-probe"),
		Dedupe:      cmd.Bool("dedupe"),
		Groups:      cfg.Validate.Groups,
		Languages:   cfg.Validate.Languages,
		Countries:   cfg.Validate.Countries,
		RawDir:      cfg.Validate.RawDir,
		CSVDir:      cfg.Validate.CSVDir,
	}
	if sources := cmd.StringSlice("source"); len(sources) > 0 {
		opts.Sources = sources
	}
	if output := cmd.String("output"); output != "" {
		opts.Output = output
	}
	if groups := cmd.StringSlice("group"); len(groups) > 0 {
		opts.Groups = groups
	}
	if langs := cmd.StringSlice("lang"); len(langs) > 0 {
		opts.Languages = langs
	}
	if countries := cmd.StringSlice("country"); len(countries) > 0 {
		opts.Countries = countries
	}
	if dir := cmd.String("csv-dir"); dir != "" {
		opts.CSVDir = dir
	}

	opts.RemoteSources = validate.SplitURLs(cfg.Validate.RemoteSources...)
	if remote := cmd.StringSlice("remote"); len(remote) > 0 {
		opts.RemoteSources = validate.SplitURLs(remote...)
	}
	remoteList := cfg.Validate.RemoteList
	if path := cmd.String("remote-list"); path != "" {
		remoteList = path
	}
	if remoteList != "" {
		path, err := utils.ExpandPath(remoteList)
		if err != nil {
			return opts, err
		}
		urls, err := validate.ReadSourceList(path)
		if err != nil {
			return opts, fmt.Errorf("failed to read remote source list: %w", err)
		}
		opts.RemoteSources = append(opts.RemoteSources, urls...)
	}
	return opts, nil
}

func runValidate(ctx context.Context, cfg *config.AppConfig, opts validate.Options) error {
	var (
		report *validate.Report
		err    error
	)
	if isTerminal(stdout) {
		report, err = progress.Run(ctx, opts, cfg.Theme, stdin, stdout)
	} else {
		report, err = validate.New(opts, progress.Plain(stdout, 0)).Run(ctx)
	}
	if report != nil {
		report.WriteSummary(stdout)
		if merr := metrics.New(cfg.MetricsFile).ObserveValidate(report, now()); merr != nil {
			cliNotify(merr.Error(), "warn")
		}
	}
	return err
}

func watchCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "watch",
		Usage: "Print changes to the playlists until interrupted",
		Action: func(ctx context.Context, cmd *urfavecli.Command) error {
			cfg, err := commandConfig(cmd)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cfg)
		},
	}
}

func runWatch(ctx context.Context, cfg *config.AppConfig) error {
	w, err := watch.New(cfg.WorkDir, cfg.PlaylistPattern, cfg.WatchDebounce)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Watching %s for %s changes\n", cfg.WorkDir, cfg.PlaylistPattern)
	return w.Run(ctx, func(c watch.Change) {
		fmt.Fprintf(stdout, "%s %s\n", c.At.Format(time.TimeOnly), c)
	})
}

func versionCommand() *urfavecli.Command {
	return &urfavecli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(_ context.Context, _ *urfavecli.Command) error {
			fmt.Fprintln(stdout, buildinfo.Get().String())
			return nil
		},
	}
}
