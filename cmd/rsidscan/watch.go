package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
	"github.com/ZanMander/Forensic-linguistics/internal/archive"
	"github.com/ZanMander/Forensic-linguistics/internal/config"
	"github.com/ZanMander/Forensic-linguistics/internal/report"
	"github.com/ZanMander/Forensic-linguistics/internal/watcher"
)

type watchFlags struct {
	format       string
	outputDir    string
	archive      bool
	skipExisting bool
}

func (c *cli) watchCmd() *cobra.Command {
	var f watchFlags

	cmd := &cobra.Command{
		Use:   "watch [dir...]",
		Short: "Analyze documents as they are saved",
		Long: `Watch monitors directories (default: watch.paths from the config) and
analyzes each document once it has been unchanged for the debounce interval.

A one-line summary is printed per document. With --output-dir the full
report is also written there. Report and archive settings are reloaded
when the config file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), f, args)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", "", "report format for --output-dir (default from config)")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "write a full report per analysis into this directory")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "store every analysis in the archive")
	cmd.Flags().BoolVar(&f.skipExisting, "skip-existing", false, "ignore documents already present at startup")
	return cmd
}

func (c *cli) runWatch(ctx context.Context, f watchFlags, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = c.cfg.Watch.Paths
	}
	if len(paths) == 0 {
		return usageErrorf("no directories to watch: pass them as arguments or set watch.paths")
	}
	if f.format != "" {
		if _, err := report.ParseFormat(f.format); err != nil {
			return usageErrorf("%v", err)
		}
	}
	if f.outputDir != "" {
		if err := os.MkdirAll(f.outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	var current atomic.Pointer[config.Config]
	current.Store(c.cfg)
	var reloadErrs <-chan error
	if loader := c.configLoader(); loader != nil {
		defer loader.Close()
		loader.OnChange(func(cfg *config.Config) {
			current.Store(cfg)
			c.log.Info("configuration reloaded", "format", cfg.Report.Format, "archive", cfg.Archive.Enabled)
		})
		reloadErrs = loader.Errors()
	}

	w, err := watcher.New(watcher.Options{
		Paths:        paths,
		Include:      c.cfg.Watch.IncludePatterns,
		Exclude:      c.cfg.Watch.ExcludePatterns,
		Debounce:     time.Duration(c.cfg.Watch.DebounceMs) * time.Millisecond,
		SkipExisting: f.skipExisting,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	archives := &archiveCache{}
	defer archives.Close()

	analyzer := analysis.New(analysis.Options{
		Workers:          1,
		MaxDocumentBytes: c.cfg.Analysis.MaxDocumentBytes,
	}, c.log)

	c.log.Info("watching", "paths", w.WatchedPaths(), "tracked", w.TrackedFiles())
	fmt.Fprintf(c.stderr, "Watching %s (Ctrl+C to stop)\n", strings.Join(paths, ", "))

	for {
		select {
		case <-ctx.Done():
			c.log.Info("watch stopped")
			return nil

		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			c.log.Warn("watcher error", "error", err)

		case err := <-reloadErrs:
			c.log.Warn("config reload failed", "error", err)

		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			cfg := current.Load()
			if err := c.handleWatchEvent(ctx, analyzer, archives, cfg, f, ev); err != nil {
				c.log.Error("analysis failed", "path", ev.Path, "error", err)
				fmt.Fprintf(c.stderr, "%s: %v\n", ev.Path, err)
			}
		}
	}
}

func (c *cli) handleWatchEvent(ctx context.Context, analyzer *analysis.Analyzer, archives *archiveCache,
	cfg *config.Config, f watchFlags, ev watcher.Event) error {
	log := c.log.With("path", ev.Path, "fingerprint", ev.Fingerprint())
	log.Debug("document stable", "size", ev.Size)

	res, err := analyzer.AnalyzeFile(ctx, ev.Path)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, report.Summary(res))

	if f.outputDir != "" {
		formatName := f.format
		if formatName == "" {
			formatName = cfg.Report.Format
		}
		format, err := report.ParseFormat(formatName)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		gen := report.NewGenerator(format).WithRuns(cfg.Report.ShowRuns).WithColor(false)
		if err := gen.Generate(res, &buf); err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(ev.Path), filepath.Ext(ev.Path))
		stamp := res.AnalyzedAt.Format("20060102T150405")
		out := filepath.Join(f.outputDir, name+"-"+stamp+extension(format))
		if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if f.archive || cfg.Archive.Enabled {
		store, err := archives.Get(cfg.ArchivePath())
		if err != nil {
			return err
		}
		if _, err := store.SaveResult(ctx, res); err != nil {
			return err
		}
		log.Debug("archived analysis", "run_id", res.RunID)
	}
	return nil
}

// configLoader returns a watching loader for the active config file, or
// nil when there is no file to watch.
func (c *cli) configLoader() *config.Loader {
	path := c.configPath
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	loader := config.NewLoader(path)
	if _, err := loader.Load(); err != nil {
		c.log.Warn("config reload disabled", "error", err)
		return nil
	}
	if err := loader.Watch(); err != nil {
		c.log.Warn("config reload disabled", "error", err)
		loader.Close()
		return nil
	}
	return loader
}

// archiveCache keeps one open archive, reopening it if a reload moves it.
type archiveCache struct {
	path  string
	store *archive.Store
}

func (a *archiveCache) Get(path string) (*archive.Store, error) {
	if a.store != nil && a.path == path {
		return a.store, nil
	}
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	store, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	a.path, a.store = path, store
	return store, nil
}

func (a *archiveCache) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
