package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ZanMander/Forensic-linguistics/internal/analysis"
	"github.com/ZanMander/Forensic-linguistics/internal/archive"
	"github.com/ZanMander/Forensic-linguistics/internal/report"
)

type analyzeFlags struct {
	format       string
	output       string
	csvPath      string
	runs         bool
	archive      bool
	validate     bool
	failOnDetect bool
}

func (c *cli) analyzeCmd() *cobra.Command {
	var f analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <file.docx>...",
		Short: "Analyze one or more documents",
		Long: `Analyze reads each document's revision marks, tracked changes and
metadata and prints a forensic report.

With several documents --output and --csv name directories; each report is
written there under the document's base name.`,
		Args: minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAnalyze(cmd.Context(), f, args)
		},
	}

	cmd.Flags().StringVarP(&f.format, "format", "f", "", "report format: text, json, markdown, html (default from config)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file, or directory for several documents (default: stdout)")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "also write RSID word counts as CSV to this path")
	cmd.Flags().BoolVar(&f.runs, "runs", false, "include the text of every RSID run")
	cmd.Flags().BoolVar(&f.archive, "archive", false, "store the results in the archive")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "validate the JSON payload against the report schema")
	cmd.Flags().BoolVar(&f.failOnDetect, "fail-on-detect", false, "exit with status 3 when misconduct is detected")
	return cmd
}

func (c *cli) runAnalyze(ctx context.Context, f analyzeFlags, paths []string) error {
	formatName := f.format
	if formatName == "" {
		formatName = c.cfg.Report.Format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return usageErrorf("%v", err)
	}
	multi := len(paths) > 1
	if multi {
		for _, dir := range []string{f.output, f.csvPath} {
			if dir == "" {
				continue
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
	}

	var store *archive.Store
	if f.archive || c.cfg.Archive.Enabled {
		if store, err = archive.Open(c.cfg.ArchivePath()); err != nil {
			return err
		}
		defer store.Close()
	}

	analyzer := analysis.New(analysis.Options{
		Workers:          c.cfg.Analysis.Workers,
		MaxDocumentBytes: c.cfg.Analysis.MaxDocumentBytes,
	}, c.log)

	var items []analysis.BatchItem
	if multi {
		if items, err = analyzer.AnalyzeBatch(ctx, paths); err != nil {
			return err
		}
	} else {
		res, err := analyzer.AnalyzeFile(ctx, paths[0])
		items = []analysis.BatchItem{{Path: paths[0], Result: res, Err: err}}
	}

	gen := report.NewGenerator(format).
		WithRuns(f.runs || c.cfg.Report.ShowRuns).
		WithColor(c.cfg.Report.Color && f.output == "" && isTerminal(c.stdout))

	var failed, detected int
	for _, item := range items {
		if item.Err != nil {
			failed++
			fmt.Fprintf(c.stderr, "%s: %v\n", item.Path, item.Err)
			continue
		}
		res := item.Result

		if err := c.emit(gen, f, res, item.Path, multi); err != nil {
			failed++
			fmt.Fprintf(c.stderr, "%s: %v\n", item.Path, err)
			continue
		}
		if store != nil {
			if _, err := store.SaveResult(ctx, res); err != nil {
				failed++
				fmt.Fprintf(c.stderr, "%s: archive: %v\n", item.Path, err)
				continue
			}
			c.log.Debug("archived analysis", "run_id", res.RunID, "fingerprint", res.Fingerprint)
		}
		if res.Misconduct.Detected {
			detected++
		}
		if multi {
			fmt.Fprintln(c.stderr, report.Summary(res))
		}
	}

	switch {
	case failed > 0:
		return &exitError{code: exitFailure, err: fmt.Errorf("%d of %d document(s) failed", failed, len(items))}
	case f.failOnDetect && detected > 0:
		return &exitError{code: exitDetected}
	}
	return nil
}

// emit writes the report, the optional CSV and runs schema validation for
// one result.
func (c *cli) emit(gen *report.Generator, f analyzeFlags, res *analysis.Result, path string, multi bool) error {
	if f.validate {
		data, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := report.ValidateJSON(data); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	if err := gen.Generate(res, &buf); err != nil {
		return err
	}
	if err := writeOutput(c.stdout, outputPath(f.output, path, extension(gen.Format()), multi), buf.Bytes()); err != nil {
		return err
	}

	if f.csvPath != "" {
		buf.Reset()
		if err := report.WriteCSV(&buf, res); err != nil {
			return err
		}
		if err := writeOutput(c.stdout, outputPath(f.csvPath, path, ".csv", multi), buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// outputPath resolves where a document's output goes. An empty result
// means stdout.
func outputPath(target, docPath, ext string, multi bool) string {
	if target == "" || target == "-" {
		return ""
	}
	if !multi {
		return target
	}
	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	return filepath.Join(target, base+ext)
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func extension(f report.Format) string {
	switch f {
	case report.FormatJSON:
		return ".json"
	case report.FormatMarkdown:
		return ".md"
	case report.FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
