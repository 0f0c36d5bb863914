package cmd

import (
	stdcontext "context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/codeglass/mypyscan/internal/buffer"
	"github.com/codeglass/mypyscan/internal/checker"
	"github.com/codeglass/mypyscan/internal/config"
	"github.com/codeglass/mypyscan/internal/discovery"
	"github.com/codeglass/mypyscan/internal/inspect"
	"github.com/codeglass/mypyscan/internal/mypy"
	"github.com/codeglass/mypyscan/internal/notify"
	"github.com/codeglass/mypyscan/internal/reporter"
)

// Exit codes
const (
	ExitSuccess     = 0 // No problems (or below fail-level threshold)
	ExitProblems    = 1 // Problems found at or above fail-level
	ExitConfigError = 2 // Discovery or config error
)

// scanConcurrency bounds how many config groups are scanned at once.
const scanConcurrency = 4

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "Type-check Python file(s) with mypy",
		ArgsUsage: "[FILE|DIR...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default: auto-discover)",
			},
			&cli.StringFlag{
				Name:    "mypy",
				Usage:   "mypy executable name or path",
				Sources: cli.EnvVars("MYPYSCAN_CHECKER_PATH"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json",
				Sources: cli.EnvVars("MYPYSCAN_OUTPUT_FORMAT"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path: stdout, stderr, or file path",
				Sources: cli.EnvVars("MYPYSCAN_OUTPUT_PATH"),
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Usage:   "Disable colored output",
				Sources: cli.EnvVars("NO_COLOR"),
			},
			&cli.StringFlag{
				Name:    "fail-level",
				Usage:   "Minimum severity to cause non-zero exit: error, warning, note, none",
				Sources: cli.EnvVars("MYPYSCAN_OUTPUT_FAIL_LEVEL"),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Usage:   "Glob pattern to exclude files (can be repeated)",
				Sources: cli.EnvVars("MYPYSCAN_SCAN_EXCLUDE"),
			},
			&cli.DurationFlag{
				Name:  "wait",
				Usage: "Wait up to this long for mypy to become available",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging to stderr",
			},
		},
		Action: runCheck,
	}
}

func runCheck(ctx stdcontext.Context, cmd *cli.Command) error {
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		// Default to current directory
		inputs = []string{"."}
	}

	files, err := discovery.Discover(inputs, discovery.Options{
		ExcludePatterns: cmd.StringSlice("exclude"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to discover files: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no Python files found")
		return cli.Exit("", ExitConfigError)
	}

	log := newLogger(cmd.Bool("verbose"))

	// Group files by their governing config so each group scans in one
	// checker invocation under its own settings.
	groups, err := groupByConfig(cmd, files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	firstCfg := groups[0].cfg

	avail := mypy.NewAvailability(firstCfg, log)
	if wait := cmd.Duration("wait"); wait > 0 {
		if err := avail.WaitUntilReady(ctx, wait); err != nil {
			fmt.Fprintln(os.Stderr, "Error: mypy did not become available")
			return cli.Exit("", ExitConfigError)
		}
	}

	store := buffer.NewStore()
	results := make(map[*buffer.Buffer][]checker.Problem)
	var resultsMu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(scanConcurrency)
	for _, group := range groups {
		eg.Go(func() error {
			buffers := make([]*buffer.Buffer, 0, len(group.files))
			for _, path := range group.files {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				buffers = append(buffers, store.Open(path, content))
			}

			notifier := notify.NewGate(notify.NewWriter(os.Stderr), group.cfg)
			svc := inspect.NewService(group.cfg, store, avail,
				mypy.NewRunner(group.cfg, log), log, notifier)

			scanned := svc.Scan(egCtx, buffers)

			resultsMu.Lock()
			for buf, problems := range scanned {
				results[buf] = problems
			}
			resultsMu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	collected := reporter.Collect(results)

	out, closeOut, err := openOutput(cmd, firstCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}
	defer closeOut()

	format := firstCfg.Output.Format
	if f := cmd.String("format"); f != "" {
		format = f
	}
	switch format {
	case "json":
		err = reporter.NewJSONReporter(out).Print(collected)
	default:
		color := colorEnabled(cmd, out)
		err = reporter.NewTextReporter(reporter.TextOptions{Color: &color}).Print(out, collected)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to write report: %v\n", err)
		return cli.Exit("", ExitConfigError)
	}

	if shouldFail(cmd, firstCfg, collected) {
		return cli.Exit("", ExitProblems)
	}
	return nil
}

// configGroup is a set of files governed by the same configuration.
type configGroup struct {
	cfg   *config.Config
	files []string
}

func groupByConfig(cmd *cli.Command, files []string) ([]configGroup, error) {
	if explicit := cmd.String("config"); explicit != "" {
		cfg, err := config.LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		applyFlags(cmd, cfg)
		return []configGroup{{cfg: cfg, files: files}}, nil
	}

	byPath := make(map[string]*configGroup)
	var order []string
	for _, file := range files {
		key := config.Discover(file)
		group, ok := byPath[key]
		if !ok {
			cfg, err := config.Load(file)
			if err != nil {
				return nil, fmt.Errorf("load config for %s: %w", file, err)
			}
			applyFlags(cmd, cfg)
			group = &configGroup{cfg: cfg}
			byPath[key] = group
			order = append(order, key)
		}
		group.files = append(group.files, file)
	}

	groups := make([]configGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byPath[key])
	}
	return groups, nil
}

func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if v := cmd.String("mypy"); v != "" {
		cfg.Checker.Path = v
	}
	if v := cmd.StringSlice("exclude"); len(v) > 0 {
		cfg.Scan.Exclude = append(cfg.Scan.Exclude, v...)
	}
	if v := cmd.String("fail-level"); v != "" {
		cfg.Output.FailLevel = v
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openOutput(cmd *cli.Command, cfg *config.Config) (io.Writer, func(), error) {
	path := cfg.Output.Path
	if p := cmd.String("output"); p != "" {
		path = p
	}
	switch path {
	case "", "stdout":
		return os.Stdout, func() {}, nil
	case "stderr":
		return os.Stderr, func() {}, nil
	default:
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open output %s: %w", path, err)
		}
		return f, func() { _ = f.Close() }, nil
	}
}

func colorEnabled(cmd *cli.Command, out io.Writer) bool {
	if cmd.Bool("no-color") {
		return false
	}
	f, ok := out.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func shouldFail(cmd *cli.Command, cfg *config.Config, files []reporter.FileProblems) bool {
	level := cfg.Output.FailLevel
	if v := cmd.String("fail-level"); v != "" {
		level = v
	}
	if level == "none" || level == "" {
		return false
	}
	threshold, err := checker.ParseSeverity(level)
	if err != nil {
		threshold = checker.SeverityError
	}
	for _, f := range files {
		for _, p := range f.Problems {
			if p.SuppressErrors {
				continue
			}
			if p.Severity.IsAtLeast(threshold) {
				return true
			}
		}
	}
	return false
}
