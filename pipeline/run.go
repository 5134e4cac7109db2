package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/report"
	"github.com/lucasjlepore/lap-drift/tcx"
)

// Run reads every path in order and analyzes its laps. A source that cannot
// be read or parsed aborts the run; rejected and degenerate laps are logged,
// listed in Result.Warnings and left out of the report.
func Run(opts Options) (*Result, error) {
	if len(opts.Paths) == 0 {
		return nil, fmt.Errorf("at least one tcx path is required")
	}
	r := newRunner(opts.Analysis, opts.Logger)
	for _, path := range opts.Paths {
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("empty tcx path")
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", tcx.ErrMalformedSource, err)
		}
		if err := r.addSource(filepath.Base(path), data); err != nil {
			return nil, err
		}
	}
	return r.res, nil
}

// RunBytes analyzes in-memory sources and renders the export bundle without
// touching the filesystem.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf("at least one tcx source is required")
	}
	r := newRunner(opts.Analysis, opts.Logger)
	for i, src := range opts.Sources {
		name := filepath.Base(strings.TrimSpace(src.Name))
		if name == "" || name == "." {
			name = fmt.Sprintf("input_%d.tcx", i)
		}
		if err := r.addSource(name, src.Data); err != nil {
			return nil, err
		}
	}

	files, err := Artifacts(r.res, opts.Analysis)
	if err != nil {
		return nil, err
	}
	return &BytesResult{Result: r.res, Files: files}, nil
}

type runner struct {
	cfg     lapdrift.Config
	logger  *log.Logger
	res     *Result
	ordinal int
}

func newRunner(cfg lapdrift.Config, logger *log.Logger) *runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &runner{
		cfg:    cfg,
		logger: logger,
		res:    &Result{Report: &report.Report{}},
	}
}

func (r *runner) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.logger.Printf("warning: %s", msg)
	r.res.Warnings = append(r.res.Warnings, msg)
}

func (r *runner) addSource(name string, data []byte) error {
	parsed, err := tcx.Parse(name, bytes.NewReader(data))
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	summary := SourceSummary{
		Name:      name,
		SHA256:    hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(data)),
		LapCount:  parsed.LapCount,
		Rejected:  len(parsed.Rejected),
	}
	r.logger.Printf("%s: %d laps", name, parsed.LapCount)

	for _, rejected := range parsed.Rejected {
		r.warn("skipping %v", rejected)
	}
	for _, w := range parsed.Warnings {
		r.warn("%s", w)
	}

	for _, lap := range parsed.Laps {
		lap.Ordinal = r.ordinal + lap.Index
		m, err := lapdrift.AnalyzeLap(lap, r.cfg)
		if err != nil {
			if !errors.Is(err, lapdrift.ErrDegenerateMetric) {
				return fmt.Errorf("analyze %s lap %d: %w", name, lap.Index, err)
			}
			r.warn("skipping %v (zero distance and/or zero time?)", err)
			summary.Skipped++
			continue
		}
		for _, w := range m.Warnings {
			r.warn("%s", w)
		}
		r.res.Report.Add(m)
		summary.Analyzed++
	}

	r.ordinal += parsed.LapCount
	r.res.Sources = append(r.res.Sources, summary)
	return nil
}
