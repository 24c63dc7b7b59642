package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-debloat/pkg/candidates"
	"github.com/dd0wney/cluso-debloat/pkg/depgraph"
	"github.com/dd0wney/cluso-debloat/pkg/journal"
	"github.com/dd0wney/cluso-debloat/pkg/kconfig"
	"github.com/dd0wney/cluso-debloat/pkg/logging"
	"github.com/dd0wney/cluso-debloat/pkg/metrics"
	"github.com/dd0wney/cluso-debloat/pkg/pipeline"
	"github.com/dd0wney/cluso-debloat/pkg/profile"
	"github.com/dd0wney/cluso-debloat/pkg/report"
	"github.com/dd0wney/cluso-debloat/pkg/runner"
	"github.com/dd0wney/cluso-debloat/pkg/search"
)

// SnapshotFileName is the default model snapshot looked up under the source
// root.
const SnapshotFileName = "config_snapshot.json"

type options struct {
	srcRoot       string
	snapshotPath  string
	baseConfig    string
	output        string
	maxIterations int
	buildCmd      string
	bootCmd       string
	runtimeCmd    string
	buildDir      string
	profilePath   string
	logLevel      string
	metricsPort   int
	journalPath   string

	buildTimeout   time.Duration
	bootTimeout    time.Duration
	runtimeTimeout time.Duration
}

func main() {
	snapshotPath := flag.String("snapshot", "", "Model snapshot path (default <source-root>/"+SnapshotFileName+")")
	baseConfig := flag.String("base-config", "", "Base configuration file to start from")
	output := flag.String("output", "debloat_results.json", "Report output path")
	maxIterations := flag.Int("max-iterations", profile.DefaultMaxIterations, "Search iteration cap")
	buildCmd := flag.String("build-cmd", "make", "Build command")
	bootCmd := flag.String("boot-test", "", "Boot test command (skipped if empty)")
	runtimeCmd := flag.String("runtime-test", "", "Runtime test command (skipped if empty)")
	buildDir := flag.String("build-dir", "", "Build directory (default the source root)")
	profilePath := flag.String("profile", "", "YAML run profile")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	metricsPort := flag.Int("metrics-port", 0, "Prometheus exposition port (0 disables)")
	journalPath := flag.String("journal", "", "Candidate journal path (empty disables)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <source-root>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := options{
		srcRoot:       flag.Arg(0),
		snapshotPath:  *snapshotPath,
		baseConfig:    *baseConfig,
		output:        *output,
		maxIterations: *maxIterations,
		buildCmd:      *buildCmd,
		bootCmd:       *bootCmd,
		runtimeCmd:    *runtimeCmd,
		buildDir:      *buildDir,
		profilePath:   *profilePath,
		logLevel:      *logLevel,
		metricsPort:   *metricsPort,
		journalPath:   *journalPath,
	}
	if err := opts.applyProfile(explicitFlags()); err != nil {
		logger.Error("profile rejected", "error", err)
		os.Exit(1)
	}
	opts.fillDefaults()

	if err := run(logger, opts); err != nil {
		logger.Error("debloat run failed", "error", err)
		os.Exit(1)
	}
}

// explicitFlags returns the names of flags the user set on the command
// line; explicit flags win over profile values.
func explicitFlags() map[string]bool {
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyProfile overlays profile values for anything the command line left
// at its default.
func (o *options) applyProfile(explicit map[string]bool) error {
	if o.profilePath == "" {
		return nil
	}
	p, err := profile.Load(o.profilePath)
	if err != nil {
		return err
	}
	if !explicit["build-dir"] {
		o.buildDir = p.BuildDir
	}
	if !explicit["build-cmd"] {
		o.buildCmd = p.Commands.Build
	}
	if !explicit["boot-test"] {
		o.bootCmd = p.Commands.Boot
	}
	if !explicit["runtime-test"] {
		o.runtimeCmd = p.Commands.Runtime
	}
	if !explicit["max-iterations"] {
		o.maxIterations = p.Search.MaxIterations
	}
	if !explicit["journal"] {
		o.journalPath = p.JournalPath
	}
	o.buildTimeout = p.Timeouts.Build.Std()
	o.bootTimeout = p.Timeouts.Boot.Std()
	o.runtimeTimeout = p.Timeouts.Runtime.Std()
	return nil
}

func (o *options) fillDefaults() {
	if o.snapshotPath == "" {
		o.snapshotPath = filepath.Join(o.srcRoot, SnapshotFileName)
	}
	if o.buildDir == "" {
		o.buildDir = o.srcRoot
	}
}

func run(logger *slog.Logger, opts options) error {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	logger.Info("debloat starting",
		"run_id", runID,
		"source_root", opts.srcRoot,
		"snapshot", opts.snapshotPath,
		"max_iterations", opts.maxIterations,
	)

	componentLogger := logging.NewDefaultLogger()
	componentLogger.SetLevel(logging.ParseLevel(opts.logLevel))

	// Model
	model, err := kconfig.LoadSnapshot(opts.snapshotPath)
	if err != nil {
		return fmt.Errorf("load model snapshot: %w", err)
	}
	if opts.baseConfig != "" {
		base, err := kconfig.LoadConfigFile(opts.baseConfig, model.Prefix)
		if err != nil {
			return fmt.Errorf("load base config: %w", err)
		}
		model.ApplyConfig(base)
		logger.Info("base configuration applied", "path", opts.baseConfig, "entries", len(base))
	}

	// Graph and candidate groups
	graph := depgraph.Build(model.Options(), model.Choices())
	groups := candidates.Generate(model, graph)
	logger.Info("dependency graph built",
		"nodes", graph.NodeCount(),
		"edges", graph.EdgeCount(),
		"candidate_groups", len(groups),
	)

	// Metrics exposition
	var registry *metrics.Registry
	if opts.metricsPort > 0 {
		registry = metrics.NewRegistry()
		mux := http.NewServeMux()
		mux.Handle("/metrics", registry.Handler())
		addr := fmt.Sprintf(":%d", opts.metricsPort)
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("metrics exposition enabled", "addr", addr)
	}

	// Test runner and pipeline
	execRunner, err := runner.NewExecRunner(runner.Config{
		WorkDir:        opts.buildDir,
		BuildCmd:       opts.buildCmd,
		BootCmd:        opts.bootCmd,
		RuntimeCmd:     opts.runtimeCmd,
		BuildTimeout:   opts.buildTimeout,
		BootTimeout:    opts.bootTimeout,
		RuntimeTimeout: opts.runtimeTimeout,
	}, componentLogger)
	if err != nil {
		return fmt.Errorf("configure test runner: %w", err)
	}
	pipe := pipeline.New(model, execRunner, opts.buildDir, componentLogger, registry)

	// Candidate journal
	baseline := model.Values()
	var jrnl *journal.Journal
	if opts.journalPath != "" {
		jrnl, err = journal.Open(opts.journalPath, runID, len(baseline))
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer jrnl.Close()
		logger.Info("candidate journal enabled", "path", opts.journalPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := search.New(pipe, groups, graph.SelectorMap(), baseline, search.Options{
		MaxIterations: opts.maxIterations,
		Logger:        componentLogger,
		Metrics:       registry,
		Journal:       jrnl,
	})
	result, searchErr := engine.Run(ctx)

	// The report is written on every path: normal completion, interruption,
	// and baseline failure alike.
	recorder := report.NewRecorder(opts.output, model, componentLogger)
	results := report.Build(runID, startedAt, baseline, result)
	if err := recorder.Write(results); err != nil {
		if searchErr != nil {
			return errors.Join(searchErr, err)
		}
		return err
	}

	if searchErr != nil {
		return searchErr
	}
	if ctx.Err() != nil {
		logger.Warn("run interrupted, best-known state saved", "report", opts.output)
	}

	printSummary(results, opts.output, recorder.ConfigPath())
	return nil
}

func printSummary(r report.Results, reportPath, configPath string) {
	fmt.Printf("Debloating complete.\n")
	fmt.Printf("  Original size:  %d enabled options\n", r.BaseConfigSize)
	fmt.Printf("  Final size:     %d enabled options\n", r.FinalConfigSize)
	fmt.Printf("  Removed:        %d options (%.1f%%)\n", r.SymbolsRemoved, r.ReductionPercentage)
	fmt.Printf("  Tests run:      %d\n", r.TotalTests)
	fmt.Printf("  Report:         %s\n", reportPath)
	fmt.Printf("  Final config:   %s\n", configPath)
}
