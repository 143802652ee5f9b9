// Package analysis runs the full forensic pipeline over word-processing
// documents and produces the report payload.
package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ZanMander/Forensic-linguistics/internal/changes"
	"github.com/ZanMander/Forensic-linguistics/internal/docx"
	"github.com/ZanMander/Forensic-linguistics/internal/forensics"
	"github.com/ZanMander/Forensic-linguistics/internal/formatting"
	"github.com/ZanMander/Forensic-linguistics/internal/logging"
	"github.com/ZanMander/Forensic-linguistics/internal/metadata"
	"github.com/ZanMander/Forensic-linguistics/internal/rsid"
)

// ErrDocumentTooLarge is returned for inputs above Options.MaxDocumentBytes.
var ErrDocumentTooLarge = errors.New("document too large")

// DefaultMaxDocumentBytes is used when Options.MaxDocumentBytes is unset.
const DefaultMaxDocumentBytes = 100 << 20

// Options configures an Analyzer.
type Options struct {
	// Workers bounds concurrent documents in AnalyzeBatch.
	Workers int
	// MaxDocumentBytes rejects larger inputs before they are unzipped.
	MaxDocumentBytes int64
}

// PartStatus records which package parts were decoded.
type PartStatus struct {
	Present   []string `json:"present"`
	Missing   []string `json:"missing"`
	Malformed []string `json:"malformed"`
}

// Result is the report payload for one document.
type Result struct {
	RunID       string     `json:"run_id"`
	FileName    string     `json:"file_name"`
	Fingerprint string     `json:"fingerprint"`
	Size        int64      `json:"size"`
	AnalyzedAt  time.Time  `json:"analyzed_at"`
	Parts       PartStatus `json:"parts"`
	Degraded    bool       `json:"degraded"`
	Notes       []string   `json:"notes"`

	Metadata   metadata.Document  `json:"metadata"`
	Tracking   metadata.Tracking  `json:"tracking"`
	Events     []changes.Event    `json:"events"`
	RSID       *rsid.Extraction   `json:"rsid"`
	Formatting formatting.Profile `json:"formatting"`

	forensics.Findings
}

// Analyzer runs the pipeline. It holds no per-document state and is safe
// for concurrent use.
type Analyzer struct {
	opts Options
	log  *logging.Logger
	now  func() time.Time
}

// New creates an Analyzer. A nil logger discards output.
func New(opts Options, log *logging.Logger) *Analyzer {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MaxDocumentBytes <= 0 {
		opts.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Analyzer{
		opts: opts,
		log:  log.WithComponent("analysis"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// AnalyzeFile analyzes the document at path.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", docx.ErrDocumentFormat, path)
	}
	if info.Size() > a.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)",
			ErrDocumentTooLarge, path, info.Size(), a.opts.MaxDocumentBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return a.analyze(ctx, filepath.Base(path), data)
}

// AnalyzeReader stages r to a temporary file and analyzes it under name.
// The temporary file is removed before returning.
func (a *Analyzer) AnalyzeReader(ctx context.Context, name string, r io.Reader) (*Result, error) {
	tmp, err := os.CreateTemp("", "rsidscan-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(r, a.opts.MaxDocumentBytes+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	if n > a.opts.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrDocumentTooLarge, name, a.opts.MaxDocumentBytes)
	}

	res, err := a.AnalyzeFile(ctx, tmp.Name())
	if err != nil {
		return nil, err
	}
	res.FileName = name
	return res, nil
}

// BatchItem is the outcome of one document in a batch.
type BatchItem struct {
	Path   string
	Result *Result
	Err    error
}

// AnalyzeBatch analyzes paths concurrently, at most Options.Workers at a
// time. Items come back in input order and carry their own errors. The
// returned error is non-nil only if ctx was cancelled.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, paths []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i, p := range paths {
		items[i].Path = p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = a.AnalyzeFile(gctx, p)
			if items[i].Err != nil {
				a.log.Warn("document failed", "path", p, "error", items[i].Err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return items, ctx.Err()
}

func (a *Analyzer) analyze(ctx context.Context, name string, data []byte) (*Result, error) {
	sum := sha256.Sum256(data)
	res := &Result{
		RunID:       uuid.NewString(),
		FileName:    name,
		Fingerprint: hex.EncodeToString(sum[:]),
		Size:        int64(len(data)),
		AnalyzedAt:  a.now(),
		Notes:       []string{},
	}
	ctx = logging.ContextWithRunID(ctx, res.RunID)
	log := a.log.WithContext(ctx)

	pkg, err := docx.ReadBytes(data)
	if err != nil {
		log.Debug("archive rejected", "file", name, "error", err)
		return nil, err
	}
	res.Parts = PartStatus{
		Present:   nonNil(pkg.Present()),
		Missing:   nonNil(pkg.Missing),
		Malformed: nonNil(pkg.Malformed),
	}
	log.DebugContext(ctx, "package decoded",
		"file", name, "present", len(res.Parts.Present),
		"missing", len(res.Parts.Missing), "malformed", len(res.Parts.Malformed))

	body := pkg.Root(docx.PartBody)
	if body == nil {
		res.Degraded = true
		res.Notes = append(res.Notes, bodyNote(pkg))
	}
	for _, part := range pkg.Malformed {
		if part != docx.PartBody {
			res.Notes = append(res.Notes, fmt.Sprintf("part %q is malformed and was ignored", part))
		}
	}

	res.Metadata = metadata.Parse(pkg.Root(docx.PartCore), pkg.Root(docx.PartApp))
	res.Tracking = metadata.ParseTracking(pkg.Root(docx.PartSettings), body)
	log.Debug("metadata parsed",
		"creator", res.Metadata.Creator, "revision", res.Metadata.Revision,
		"rsid_count", res.Tracking.RSIDCount)

	res.RSID = rsid.Extract(body)
	log.Debug("rsids extracted",
		"rsids", len(res.RSID.Order), "paragraphs", len(res.RSID.Timeline),
		"runs", len(res.RSID.Runs), "words", res.RSID.TotalWords())

	res.Events = changes.Scan(body, pkg.Root(docx.PartComments), res.Metadata)
	log.Debug("changes scanned", "events", len(res.Events))

	res.Formatting = formatting.Analyze(body)
	log.Debug("formatting analyzed",
		"fonts", len(res.Formatting.Fonts.Values), "severity", res.Formatting.Severity)

	res.Findings = *forensics.Evaluate(forensics.EvaluateInput{
		Extraction:       res.RSID,
		Formatting:       res.Formatting,
		ChangeCount:      len(res.Events),
		TotalEditMinutes: res.Metadata.TotalTime,
		Styles:           pkg.Root(docx.PartStyles),
	})
	log.Debug("findings evaluated",
		"copy_paste", res.Typing.CopyPasteScore, "sessions", res.Sessions.Count,
		"completion", res.Completeness.Score, "confidence", res.Misconduct.Confidence,
		"detected", res.Misconduct.Detected)

	if len(res.RSID.Timeline) == 0 && !res.Degraded {
		res.Notes = append(res.Notes, "document body has no paragraphs")
	}
	return res, nil
}

func bodyNote(pkg *docx.Package) string {
	for _, part := range pkg.Malformed {
		if part == docx.PartBody {
			return "document body is malformed; results are neutral"
		}
	}
	return "document body is missing; results are neutral"
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
