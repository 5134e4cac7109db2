package pipeline

import (
	"log"
	"time"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/report"
)

const (
	// ManifestFormatVersion identifies the export bundle layout.
	ManifestFormatVersion = "lapdrift_bundle_v1"
)

// Artifact names inside an export bundle.
const (
	LapsCSVName        = "laps.csv"
	SamplesParquetName = "samples.parquet"
	LapsXLSXName       = "laps.xlsx"
	DriftChartName     = "drift.html"
	NotesName          = "lap_notes.md"
	ManifestName       = "manifest.json"
)

// Options configures a run over TCX files on disk.
type Options struct {
	Paths    []string
	Analysis lapdrift.Config

	// Logger receives diagnostics as they happen. Nil discards them.
	Logger *log.Logger
}

// Source is one named TCX document held in memory.
type Source struct {
	Name string
	Data []byte
}

// BytesOptions configures a run over in-memory documents.
type BytesOptions struct {
	Sources  []Source
	Analysis lapdrift.Config
	Logger   *log.Logger
}

// Result is the outcome of a run.
type Result struct {
	Report   *report.Report  `json:"-"`
	Sources  []SourceSummary `json:"sources"`
	Warnings []string        `json:"warnings,omitempty"`
}

// SourceSummary counts what happened to the laps of one source.
type SourceSummary struct {
	Name      string `json:"name"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
	LapCount  int    `json:"lap_count"`
	Analyzed  int    `json:"analyzed"`
	Rejected  int    `json:"rejected"`
	Skipped   int    `json:"skipped"`
}

// BytesResult carries the run outcome plus the rendered bundle.
type BytesResult struct {
	*Result
	Files map[string][]byte
}

// ExportResult describes an export bundle written to disk.
type ExportResult struct {
	OutputDir    string   `json:"output_dir"`
	ManifestPath string   `json:"manifest_path"`
	Paths        []string `json:"paths"`
}

// Manifest describes an export bundle.
type Manifest struct {
	FormatVersion string          `json:"format_version"`
	RunID         string          `json:"run_id"`
	GeneratedAt   time.Time       `json:"generated_at"`
	Sources       []SourceSummary `json:"sources"`
	LapCount      int             `json:"lap_count"`
	AnalyzedLaps  int             `json:"analyzed_laps"`
	TreadmillPace float64         `json:"treadmill_pace_min_mile,omitempty"`
	LocalTime     bool            `json:"local_time"`
	Artifacts     []ArtifactInfo  `json:"artifacts"`
	Warnings      []string        `json:"warnings,omitempty"`
}

// ArtifactInfo identifies one file of the bundle.
type ArtifactInfo struct {
	Name      string `json:"name"`
	SHA256    string `json:"sha256"`
	SizeBytes int64  `json:"size_bytes"`
}
