package pipeline

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/report"
)

// Export renders the bundle for res and writes it into outDir.
func Export(res *Result, cfg lapdrift.Config, outDir string, overwrite bool) (*ExportResult, error) {
	if res == nil || res.Report == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	if strings.TrimSpace(outDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	files, err := Artifacts(res, cfg)
	if err != nil {
		return nil, err
	}
	if err := ensureOutputDir(outDir, overwrite); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := &ExportResult{OutputDir: outDir}
	for _, name := range names {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", name, err)
		}
		out.Paths = append(out.Paths, path)
		if name == ManifestName {
			out.ManifestPath = path
		}
	}
	return out, nil
}

// Artifacts renders every bundle file in memory, manifest included.
func Artifacts(res *Result, cfg lapdrift.Config) (map[string][]byte, error) {
	rep := res.Report
	files := make(map[string][]byte, 6)
	warnings := append([]string(nil), res.Warnings...)

	var csvBuf bytes.Buffer
	if err := rep.WriteCSV(&csvBuf, report.Detailed, true); err != nil {
		return nil, fmt.Errorf("write %s: %w", LapsCSVName, err)
	}
	files[LapsCSVName] = csvBuf.Bytes()

	parquetBytes, err := rep.MarshalSamplesParquet()
	switch {
	case errors.Is(err, report.ErrParquetUnsupported):
		warnings = append(warnings, fmt.Sprintf("%s not written: %v", SamplesParquetName, err))
	case err != nil:
		return nil, fmt.Errorf("write %s: %w", SamplesParquetName, err)
	default:
		files[SamplesParquetName] = parquetBytes
	}

	var xlsxBuf bytes.Buffer
	if err := rep.WriteXLSX(&xlsxBuf); err != nil {
		return nil, fmt.Errorf("write %s: %w", LapsXLSXName, err)
	}
	files[LapsXLSXName] = xlsxBuf.Bytes()

	var chartBuf bytes.Buffer
	if err := rep.WriteDriftChart(&chartBuf); err != nil {
		return nil, fmt.Errorf("write %s: %w", DriftChartName, err)
	}
	files[DriftChartName] = chartBuf.Bytes()

	files[NotesName] = []byte(buildNotes(rep))

	manifest := buildManifest(res, cfg, files, warnings)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestName, err)
	}
	files[ManifestName] = append(data, '\n')
	return files, nil
}

func buildManifest(res *Result, cfg lapdrift.Config, files map[string][]byte, warnings []string) Manifest {
	m := Manifest{
		FormatVersion: ManifestFormatVersion,
		RunID:         uuid.NewString(),
		GeneratedAt:   time.Now().UTC(),
		Sources:       res.Sources,
		AnalyzedLaps:  res.Report.Len(),
		TreadmillPace: cfg.TreadmillPace,
		LocalTime:     cfg.Localizer != nil && cfg.Localizer.Enabled,
		Warnings:      warnings,
	}
	for _, s := range res.Sources {
		m.LapCount += s.LapCount
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sum := sha256.Sum256(files[name])
		m.Artifacts = append(m.Artifacts, ArtifactInfo{
			Name:      name,
			SHA256:    hex.EncodeToString(sum[:]),
			SizeBytes: int64(len(files[name])),
		})
	}
	return m
}

func buildNotes(rep *report.Report) string {
	var b strings.Builder
	b.WriteString("# Lap notes\n")
	for _, m := range rep.Rows {
		b.WriteString("\n")
		b.WriteString(lapdrift.BuildLapNotes(m))
		b.WriteString("\n")
	}
	return b.String()
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite to allow)", path)
	}
	return nil
}
