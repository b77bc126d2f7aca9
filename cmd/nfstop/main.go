//go:build linux

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/srodi/nfstop-bpf/pkg/aggregate"
	"github.com/srodi/nfstop-bpf/pkg/config"
	"github.com/srodi/nfstop-bpf/pkg/names"
	"github.com/srodi/nfstop-bpf/pkg/rank"
	"github.com/srodi/nfstop-bpf/pkg/trace"
	"github.com/srodi/nfstop-bpf/pkg/types"
	"github.com/srodi/nfstop-bpf/pkg/ui"
)

const version = "0.1.0"

// renderQueueDepth bounds the window snapshots buffered between ingest and
// render so a slow terminal write never backpressures the tracer pipe for
// more than a couple of windows.
const renderQueueDepth = 2

func parseConfig() (config.Config, error) {
	configPath := flag.String("config", "", "optional YAML defaults file")
	interval := flag.Duration("interval", config.DefaultInterval, "sampling window length (e.g. 3s, 500ms)")
	groupView := flag.Bool("group", false, "rank by gid instead of uid")
	noNames := flag.Bool("no-names", false, "disable name resolution, show numeric ids")
	passwdMap := flag.String("passwd-map", config.DefaultPasswdMapPath, "uid map file in passwd format")
	groupMap := flag.String("group-map", config.DefaultGroupMapPath, "gid map file in group format")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Print(ui.Banner())
		fmt.Printf("nfstop %s\n", version)
		os.Exit(0)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	// Flags given on the command line win over file values.
	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["interval"] {
		cfg.Interval = *interval
	}
	if explicit["group"] {
		cfg.GroupView = *groupView
	}
	if explicit["no-names"] {
		cfg.NoNames = *noNames
	}
	if explicit["passwd-map"] {
		cfg.PasswdMapPath = *passwdMap
	}
	if explicit["group-map"] {
		cfg.GroupMapPath = *groupMap
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := parseConfig()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	resolver := names.Disabled()
	if !cfg.NoNames {
		resolver = names.Load(cfg.PasswdMapPath, cfg.GroupMapPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanupTerminal := enableSingleView()
	defer cleanupTerminal()

	fmt.Print(ui.Banner())

	if err := run(ctx, cfg, resolver, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("monitor stopped", "error", err)
	}
}

// renderJob is the immutable handoff between the ingest and render tasks.
type renderJob struct {
	kind   jobKind
	totals types.WindowTotals
	info   string
}

type jobKind int

const (
	jobWindow jobKind = iota
	jobReset
	jobInfo
)

// run wires the two pipeline tasks: ingest parses the tracer stream and owns
// the aggregator, render draws screens. The bounded FIFO channel preserves
// window ordering, and each table reflects exactly one flushed window.
func run(ctx context.Context, cfg config.Config, resolver *names.Resolver, in io.Reader, out io.Writer) error {
	jobs := make(chan renderJob, renderQueueDepth)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		return ingest(ctx, in, cfg.GroupView, jobs)
	})
	g.Go(func() error {
		return render(ctx, cfg, resolver, jobs, out)
	})
	return g.Wait()
}

// ingest drives the aggregator from the tracer stream. Stream EOF is the
// normal way a run ends: the tracer is the controlling parent and closing the
// pipe is its shutdown signal.
func ingest(ctx context.Context, in io.Reader, groupView bool, jobs chan<- renderJob) error {
	agg := aggregate.New(groupView)
	scanner := trace.NewScanner(in)

	for {
		ev, err := scanner.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading trace stream: %w", err)
		}

		var job renderJob
		switch ev.Kind {
		case trace.KindSample:
			agg.Observe(ev.Sample)
			continue
		case trace.KindWindowEnd:
			job = renderJob{kind: jobWindow, totals: agg.Flush()}
		case trace.KindScreenReset:
			job = renderJob{kind: jobReset}
		case trace.KindInfo:
			job = renderJob{kind: jobInfo, info: ev.Info}
		}

		select {
		case jobs <- job:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// render draws jobs in arrival order, re-detecting terminal geometry each
// cycle so resizes take effect at the next screen.
func render(ctx context.Context, cfg config.Config, resolver *names.Resolver, jobs <-chan renderJob, out io.Writer) error {
	renderer := ui.New(out, cfg.GroupView)
	windowSeconds := cfg.Interval.Seconds()
	label := func(id uint32) string { return resolver.Resolve(id, cfg.GroupView) }

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-jobs:
			if !ok {
				return nil
			}
			geo := ui.DetectGeometry()
			switch job.kind {
			case jobReset:
				renderer.Header(geo)
			case jobInfo:
				renderer.Info(job.info)
			case jobWindow:
				table := rank.Build(job.totals, windowSeconds, rank.VisibleRows(geo.Rows), label)
				renderer.Table(table, geo)
			}
		}
	}
}

func enableSingleView() func() {
	stdoutFD := int(os.Stdout.Fd())
	stdinFD := int(os.Stdin.Fd())
	if !term.IsTerminal(stdoutFD) {
		return func() {}
	}

	fmt.Print("\033[?1049h") // switch to alternate buffer
	fmt.Print("\033[?25l")   // hide cursor

	var restore []func()
	if term.IsTerminal(stdinFD) {
		if undoEcho, err := disableInputEcho(stdinFD); err != nil {
			log.Printf("unable to suppress stdin echo: %v", err)
		} else if undoEcho != nil {
			restore = append(restore, undoEcho)
		}
	}

	return func() {
		for i := len(restore) - 1; i >= 0; i-- {
			restore[i]()
		}
		fmt.Print("\033[?25h")   // show cursor
		fmt.Print("\033[?1049l") // restore main buffer
	}
}

// disableInputEcho turns off stdin echo so the alternate-screen view stays clean.
func disableInputEcho(fd int) (func(), error) {
	termState, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, err
	}

	updated := *termState
	updated.Lflag &^= unix.ECHO

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &updated); err != nil {
		return nil, err
	}

	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, termState)
	}, nil
}
