package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/internal/config"
	"github.com/lucasjlepore/lap-drift/pipeline"
	"github.com/lucasjlepore/lap-drift/report"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliOptions struct {
	paths     []string
	details   bool
	columns   bool
	localTime bool
	treadmill float64
	outDir    string
	overwrite bool
	notes     bool
}

func parseArgs(args []string, cfg config.Config, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	treadmill := &treadmillFlag{defaultPace: cfg.TreadmillPace}

	fs := flag.NewFlagSet("tcxdrift", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.details, "details", cfg.Details, "Write all computed columns instead of the summary")
	fs.BoolVar(&opts.columns, "columns", cfg.Columns, "Write a header row")
	fs.BoolVar(&opts.localTime, "local-time", cfg.LocalTime, "Convert lap times to the local zone of the lap's first position")
	fs.Var(treadmill, "treadmill", fmt.Sprintf("Treadmill mode: fixed pace in min/mile instead of measured distance (bare flag uses %g)", cfg.TreadmillPace))
	fs.StringVar(&opts.outDir, "out-dir", cfg.OutDir, "Also write the export bundle (csv, parquet, xlsx, html, manifest) to this directory")
	fs.BoolVar(&opts.overwrite, "overwrite", false, "Allow writing the bundle into a non-empty directory")
	fs.BoolVar(&opts.notes, "notes", false, "Print readable per-lap notes to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-details] [-columns] [-local-time=false] [-treadmill[=pace]] [-out-dir dir] file.tcx...\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.paths = fs.Args()
	if len(opts.paths) == 0 {
		fs.Usage()
		return opts, errors.New("at least one tcx file is required")
	}
	opts.treadmill = treadmill.pace
	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	envCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "tcxdrift: %v\n", err)
		return 2
	}
	opts, err := parseArgs(args, envCfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logger := log.New(stderr, "tcxdrift: ", 0)
	cfg := lapdrift.Config{TreadmillPace: opts.treadmill}
	if opts.localTime {
		lookup, err := lapdrift.NewTZFLookup()
		if err != nil {
			logger.Printf("local time disabled: %v", err)
		} else {
			cfg.Localizer = &lapdrift.Localizer{Lookup: lookup, Enabled: true}
		}
	}

	res, err := pipeline.Run(pipeline.Options{
		Paths:    opts.paths,
		Analysis: cfg,
		Logger:   logger,
	})
	if err != nil {
		fmt.Fprintf(stderr, "tcxdrift failed: %v\n", err)
		return 1
	}

	mode := report.Summary
	if opts.details {
		mode = report.Detailed
	}
	if err := res.Report.WriteCSV(stdout, mode, opts.columns); err != nil {
		fmt.Fprintf(stderr, "tcxdrift failed: write csv: %v\n", err)
		return 1
	}

	if opts.notes {
		for _, m := range res.Report.Rows {
			fmt.Fprintf(stderr, "\n%s\n", lapdrift.BuildLapNotes(m))
		}
	}

	if opts.outDir != "" {
		exported, err := pipeline.Export(res, cfg, opts.outDir, opts.overwrite)
		if err != nil {
			fmt.Fprintf(stderr, "tcxdrift failed: export: %v\n", err)
			return 1
		}
		logger.Printf("bundle written to %s (%d files)", exported.OutputDir, len(exported.Paths))
	}
	return 0
}

// treadmillFlag is an optional-value flag: a bare -treadmill selects the
// default pace, -treadmill=9.5 sets one explicitly, 0 turns it off.
type treadmillFlag struct {
	pace        float64
	defaultPace float64
}

func (f *treadmillFlag) String() string {
	if f == nil || f.pace == 0 {
		return ""
	}
	return strconv.FormatFloat(f.pace, 'f', -1, 64)
}

func (f *treadmillFlag) Set(s string) error {
	switch s {
	case "true":
		f.pace = f.defaultPace
		return nil
	case "false":
		f.pace = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("treadmill pace must be a non-negative number of minutes per mile, got %q", s)
	}
	f.pace = v
	return nil
}

func (f *treadmillFlag) IsBoolFlag() bool { return true }
