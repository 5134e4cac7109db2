package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/lucasjlepore/lap-drift/internal/config"
	"github.com/lucasjlepore/lap-drift/tcx"
	"github.com/lucasjlepore/lap-drift/zones"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "tcxzones: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("tcxzones", flag.ContinueOnError)
	fs.SetOutput(stderr)
	edgesFlag := fs.String("edges", cfg.ZoneEdges, "Comma-separated zone edges in bpm; each zone covers (low, high]")
	columns := fs.Bool("columns", cfg.Columns, "Write a header row")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [-edges 0,100,123,136,146,154,300] [-columns] file.tcx...\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	edges, err := zones.ParseEdges(*edgesFlag)
	if err != nil {
		fmt.Fprintf(stderr, "tcxzones: %v\n", err)
		return 2
	}

	files := make([]*tcx.File, 0, fs.NArg())
	for _, path := range fs.Args() {
		f, err := tcx.ParseFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "tcxzones failed: %v\n", err)
			return 1
		}
		for _, rejected := range f.Rejected {
			fmt.Fprintf(stderr, "tcxzones: skipping %v\n", rejected)
		}
		files = append(files, f)
	}

	dist, err := zones.Bin(zones.HeartRates(files...), edges)
	if err != nil {
		fmt.Fprintf(stderr, "tcxzones failed: %v\n", err)
		return 1
	}
	if dist.OutOfRange > 0 {
		fmt.Fprintf(stderr, "tcxzones: %d samples outside (%d, %d] bpm ignored\n", dist.OutOfRange, edges[0], edges[len(edges)-1])
	}
	if err := dist.WriteCSV(stdout, *columns); err != nil {
		fmt.Fprintf(stderr, "tcxzones failed: write csv: %v\n", err)
		return 1
	}
	return 0
}
