// Package main provides the CLI entry point for scorebind.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/ndisidore/scorebind/internal/batch"
	"github.com/ndisidore/scorebind/internal/config"
	"github.com/ndisidore/scorebind/internal/discover"
	"github.com/ndisidore/scorebind/internal/progress"
	"github.com/ndisidore/scorebind/internal/query"
	"github.com/ndisidore/scorebind/internal/roundtrip"
	"github.com/ndisidore/scorebind/internal/stats"
	"github.com/ndisidore/scorebind/pkg/score"
	"github.com/ndisidore/scorebind/pkg/slogctx"
	"github.com/ndisidore/scorebind/pkg/xmlschema"
)

var (
	// errMissingArgs indicates a command was run without its path arguments.
	errMissingArgs = errors.New("missing arguments")
	// errUnknownProgress indicates an unsupported --progress mode.
	errUnknownProgress = errors.New("unknown progress mode")
	// errInvalidFlag indicates a flag value outside its accepted range.
	errInvalidFlag = errors.New("invalid flag value")
)

// app bundles dependencies so CLI action handlers become testable methods.
type app struct {
	getwd  func() (string, error)
	stdout io.Writer
	stderr io.Writer
	isTTY  bool
	format string        // resolved log format (pretty, json, text)
	cfg    config.Config // project configuration, overridden by flags
}

func main() {
	a := &app{
		getwd:  os.Getwd,
		stdout: os.Stdout,
		stderr: os.Stderr,
		isTTY:  term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("CI") == "",
		cfg:    config.Default(),
	}
	if err := a.command().Run(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:  "scorebind",
		Usage: "decode, check and rewrite MusicXML measures",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Usage:   "log format (auto, pretty, json, text)",
				Value:   "auto",
				Sources: cli.EnvVars("SCOREBIND_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("SCOREBIND_LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "config",
				Usage:   "project configuration file (default: " + config.FileName + " in the working directory)",
				Sources: cli.EnvVars("SCOREBIND_CONFIG"),
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "decode and validate every measure",
				ArgsUsage: "<path>...",
				Flags:     batchFlags(),
				Action:    a.validateAction,
			},
			{
				Name:      "roundtrip",
				Usage:     "check that every measure re-encodes unchanged",
				ArgsUsage: "<path>...",
				Flags:     batchFlags(),
				Action:    a.roundtripAction,
			},
			{
				Name:      "stats",
				Usage:     "tally measures and music-data kinds",
				ArgsUsage: "<path>...",
				Flags:     batchFlags(),
				Action:    a.statsAction,
			},
			{
				Name:      "inspect",
				Usage:     "list the measures of a score",
				ArgsUsage: "<file>",
				Flags: append(windowFlags(),
					&cli.BoolFlag{
						Name:  "lax",
						Usage: "skip content the measure model does not declare",
					},
					&cli.StringFlag{
						Name:  "where",
						Usage: `filter expression (e.g. 'implicit && notes == 0', '"barline" in kinds')`,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output format (text, json, yaml)",
						Value:   query.FormatText,
					},
				),
				Action: a.inspectAction,
			},
			{
				Name:      "normalize",
				Usage:     "re-encode a score through the measure binding",
				ArgsUsage: "<file>",
				Flags: append(windowFlags(),
					&cli.BoolFlag{
						Name:  "lax",
						Usage: "skip content the measure model does not declare",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output file (default: stdout)",
					},
					&cli.IntFlag{
						Name:  "indent",
						Usage: "spaces per nesting level (0 = compact)",
					},
					&cli.BoolFlag{
						Name:  "no-doctype",
						Usage: "omit the DOCTYPE declaration",
					},
				),
				Action: a.normalizeAction,
			},
		},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if err != nil {
				_, _ = fmt.Fprintf(a.stderr, "error: %v\n", err)
			}
		},
	}
}

// batchFlags returns the shared flag set for multi-file commands.
func batchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "lax",
			Usage: "skip content the measure model does not declare",
		},
		&cli.IntFlag{
			Name:    "parallelism",
			Aliases: []string{"j"},
			Usage:   "max concurrent files (0 = one per CPU)",
		},
		&cli.StringFlag{
			Name:  "progress",
			Usage: "progress output mode (auto, tui, plain, quiet)",
			Value: "auto",
		},
		&cli.BoolFlag{
			Name:  "boring",
			Usage: "use ASCII instead of emoji in TUI output",
		},
	}
}

// windowFlags returns the measure window flags.
func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "start-at",
			Usage: "keep measures from this number forward",
		},
		&cli.StringFlag{
			Name:  "stop-after",
			Usage: "keep measures up to and including this number",
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	a.format = cmd.String("format")
	if a.format == "auto" {
		if a.isTTY {
			a.format = "pretty"
		} else {
			a.format = "text"
		}
	}
	level, err := progress.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("invalid log level: %w", err)
	}
	logger, err := progress.NewLogger(a.stderr, a.format, level)
	if err != nil {
		return ctx, fmt.Errorf("initializing logger: %w", err)
	}
	slog.SetDefault(logger)
	ctx = slogctx.ContextWithLogger(ctx, logger)

	cfg, err := a.loadConfig(ctx, cmd.String("config"))
	if err != nil {
		return ctx, err
	}
	a.cfg = cfg
	return ctx, nil
}

// loadConfig reads path, or the project file in the working directory when
// path is empty. Without either, the defaults apply.
func (a *app) loadConfig(ctx context.Context, path string) (config.Config, error) {
	if path == "" {
		cwd, err := a.getwd()
		if err != nil {
			return config.Config{}, fmt.Errorf("getting working directory: %w", err)
		}
		found, ok := config.Find(cwd)
		if !ok {
			return config.Default(), nil
		}
		path = found
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("loading config: %w", err)
	}
	slogctx.FromContext(ctx).LogAttrs(ctx, slog.LevelDebug, "loaded config", slog.String("path", path))
	return cfg, nil
}

// parseFlags merges --lax over the configured decoder flags.
func (a *app) parseFlags(cmd *cli.Command) xmlschema.Flags {
	f := a.cfg.Parse.Flags()
	if cmd.IsSet("lax") {
		if cmd.Bool("lax") {
			f |= xmlschema.FlagLax
		} else {
			f &^= xmlschema.FlagLax
		}
	}
	return f
}

func (a *app) parallelism(cmd *cli.Command) (int, error) {
	n := a.cfg.Batch.Parallelism
	if cmd.IsSet("parallelism") {
		n = int(cmd.Int("parallelism"))
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: --parallelism %d must be >= 0", errInvalidFlag, n)
	}
	return n, nil
}

// collect expands the command's path arguments, honouring configured and
// .scorebindignore patterns.
func (a *app) collect(cmd *cli.Command) ([]string, error) {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: usage: scorebind %s <path>...", errMissingArgs, cmd.Name)
	}
	cwd, err := a.getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	ignore, err := discover.LoadIgnorePatterns(cwd)
	if err != nil && !errors.Is(err, discover.ErrNoIgnoreFile) {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	ignore = append(slices.Clone(a.cfg.Batch.Ignore), ignore...)
	files, err := discover.Collect(paths, ignore)
	if err != nil {
		return nil, fmt.Errorf("collecting files: %w", err)
	}
	return files, nil
}

// runBatch collects files and runs task over them with the selected display.
func (a *app) runBatch(ctx context.Context, cmd *cli.Command, task batch.Task) (int, error) {
	files, err := a.collect(cmd)
	if err != nil {
		return 0, err
	}
	parallelism, err := a.parallelism(cmd)
	if err != nil {
		return 0, err
	}
	display, err := a.selectDisplay(cmd.String("progress"), cmd.Bool("boring"))
	if err != nil {
		return 0, err
	}
	return len(files), batch.Run(ctx, batch.Input{
		Files:       files,
		Task:        task,
		Display:     display,
		Parallelism: parallelism,
	})
}

func (a *app) validateAction(ctx context.Context, cmd *cli.Command) error {
	reader := score.Reader{Flags: a.parseFlags(cmd)}
	n, err := a.runBatch(ctx, cmd, func(ctx context.Context, file string, events chan<- progress.Event) error {
		s, err := reader.ReadFile(ctx, file)
		if err != nil {
			return err
		}
		for _, p := range s.Parts {
			for _, m := range p.Measures {
				events <- progress.Event{Kind: progress.EventMeasure, Measure: m.Number().String(), Message: "part " + p.ID}
			}
		}
		return s.Validate()
	})
	if err != nil {
		return fmt.Errorf("validating: %w", err)
	}
	_, _ = fmt.Fprintf(a.stdout, "Validated %d file(s)\n", n)
	return nil
}

func (a *app) roundtripAction(ctx context.Context, cmd *cli.Command) error {
	flags := a.parseFlags(cmd) | xmlschema.FlagKeepDOM
	reader := score.Reader{Flags: flags}

	var (
		mu    sync.Mutex
		diffs = make(map[string][]roundtrip.Result)
	)
	n, err := a.runBatch(ctx, cmd, func(ctx context.Context, file string, events chan<- progress.Event) error {
		s, err := reader.ReadFile(ctx, file)
		if err != nil {
			return err
		}
		rep, err := roundtrip.CheckScore(ctx, s, flags, func(r roundtrip.Result) {
			if r.OK() {
				events <- progress.Event{Kind: progress.EventMeasure, Measure: r.Number, Message: "part " + r.Part}
				return
			}
			events <- progress.Event{Kind: progress.EventWarning, Measure: r.Number, Message: r.Err().Error()}
		})
		if err != nil {
			return err
		}
		if len(rep.Mismatches) > 0 {
			mu.Lock()
			diffs[file] = rep.Mismatches
			mu.Unlock()
		}
		return rep.Err()
	})

	files := make([]string, 0, len(diffs))
	for f := range diffs {
		files = append(files, f)
	}
	slices.Sort(files)
	for _, f := range files {
		for _, r := range diffs[f] {
			_, _ = fmt.Fprintf(a.stdout, "--- %s part %s measure %s\n%s", f, r.Part, r.Number, r.Diff)
		}
	}
	if err != nil {
		return fmt.Errorf("round trip: %w", err)
	}
	_, _ = fmt.Fprintf(a.stdout, "Round-tripped %d file(s)\n", n)
	return nil
}

func (a *app) statsAction(ctx context.Context, cmd *cli.Command) error {
	reader := score.Reader{Flags: a.parseFlags(cmd)}
	collector := stats.NewCollector()
	_, err := a.runBatch(ctx, cmd, func(ctx context.Context, file string, _ chan<- progress.Event) error {
		s, err := reader.ReadFile(ctx, file)
		if err != nil {
			return err
		}
		collector.Observe(file, s)
		return nil
	})
	stats.PrintReport(a.stdout, collector.Report())
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}
	return nil
}

// readWindow reads the single file argument and applies the measure window.
func (a *app) readWindow(ctx context.Context, cmd *cli.Command) (string, *score.Score, error) {
	path := cmd.Args().First()
	if path == "" {
		return "", nil, fmt.Errorf("%w: usage: scorebind %s <file>", errMissingArgs, cmd.Name)
	}
	s, err := score.Reader{Flags: a.parseFlags(cmd)}.ReadFile(ctx, path)
	if err != nil {
		return "", nil, err
	}
	opts := score.FilterOpts{
		StartAt:   cmd.String("start-at"),
		StopAfter: cmd.String("stop-after"),
	}
	if opts.IsZero() {
		return path, s, nil
	}
	s, err = s.Window(opts)
	if err != nil {
		return "", nil, fmt.Errorf("filtering measures: %w", err)
	}
	return path, s, nil
}

func (a *app) inspectAction(ctx context.Context, cmd *cli.Command) error {
	format := cmd.String("output")
	if !slices.Contains(query.Formats, format) {
		return fmt.Errorf("%w: --output %q", query.ErrUnknownFormat, format)
	}
	pred, err := query.Compile(cmd.String("where"))
	if err != nil {
		return err
	}
	path, s, err := a.readWindow(ctx, cmd)
	if err != nil {
		return err
	}
	rows, err := pred.Filter(query.Rows(path, s))
	if err != nil {
		return err
	}
	return query.Render(a.stdout, rows, format)
}

func (a *app) normalizeAction(ctx context.Context, cmd *cli.Command) error {
	indent := a.cfg.Write.Indent
	if cmd.IsSet("indent") {
		indent = int(cmd.Int("indent"))
	}
	if indent < 0 {
		return fmt.Errorf("%w: --indent %d must be >= 0", errInvalidFlag, indent)
	}
	path, s, err := a.readWindow(ctx, cmd)
	if err != nil {
		return err
	}
	opts := score.WriteOpts{Indent: indent, OmitDoctype: cmd.Bool("no-doctype")}

	out := cmd.String("out")
	if out == "" || out == "-" {
		return s.Encode(a.stdout, opts)
	}
	if err := s.WriteFile(out, opts); err != nil {
		return err
	}
	slogctx.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "normalized score",
		slog.String("source", path),
		slog.String("out", out),
		slog.Int("measures", s.MeasureCount()),
	)
	return nil
}

func (a *app) selectDisplay(mode string, boring bool) (progress.Display, error) {
	switch mode {
	case "auto":
		if a.isTTY && a.format == "pretty" {
			return &progress.TUI{Boring: boring}, nil
		}
		return &progress.Plain{}, nil
	case "tui":
		return &progress.TUI{Boring: boring}, nil
	case "plain":
		return &progress.Plain{}, nil
	case "quiet":
		return &progress.Quiet{}, nil
	default:
		return nil, fmt.Errorf("%w %q (valid: auto, tui, plain, quiet)", errUnknownProgress, mode)
	}
}
