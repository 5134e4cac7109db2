package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/internal/testutil"
	"github.com/lucasjlepore/lap-drift/report"
	"github.com/lucasjlepore/lap-drift/tcx"
)

func goodLap(hour string) string {
	return testutil.Lap("30", "30", true,
		testutil.TP("2024-03-02T"+hour+":00:00Z", 100, 0),
		testutil.TP("2024-03-02T"+hour+":00:10Z", 100, 10),
		testutil.TP("2024-03-02T"+hour+":00:20Z", 110, 20),
		testutil.TP("2024-03-02T"+hour+":00:30Z", 110, 30),
	)
}

const brokenLap = `<Lap>
  <TotalTimeSeconds>20</TotalTimeSeconds>
  <Track>
    <Trackpoint><Time>2024-03-02T09:00:00Z</Time><DistanceMeters>0</DistanceMeters><HeartRateBpm><Value>110</Value></HeartRateBpm></Trackpoint>
    <Trackpoint><Time>2024-03-02T09:00:10Z</Time><DistanceMeters>5</DistanceMeters></Trackpoint>
  </Track>
</Lap>`

func zeroHeartRateLap() string {
	return testutil.Lap("30", "30", true,
		testutil.TP("2024-03-02T12:00:00Z", 0, 0),
		testutil.TP("2024-03-02T12:00:10Z", 0, 10),
		testutil.TP("2024-03-02T12:00:20Z", 110, 20),
		testutil.TP("2024-03-02T12:00:30Z", 110, 30),
	)
}

func writeTCX(t *testing.T, dir, name, doc string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func lapIDs(rep *report.Report) []string {
	var out []string
	for _, m := range rep.Rows {
		out = append(out, fmt.Sprintf("%s#%d@%d", m.File, m.Index, m.Ordinal))
	}
	return out
}

func TestRunPreservesFileThenLapOrder(t *testing.T) {
	dir := t.TempDir()
	z := writeTCX(t, dir, "z.tcx", testutil.Document(goodLap("10"), goodLap("11")))
	a := writeTCX(t, dir, "a.tcx", testutil.Document(goodLap("08")))

	res, err := Run(Options{Paths: []string{z, a}})
	require.NoError(t, err)
	require.Equal(t, []string{"z.tcx#0@0", "z.tcx#1@1", "a.tcx#0@2"}, lapIDs(res.Report))
	require.Empty(t, res.Warnings)
	require.Len(t, res.Sources, 2)
	require.Equal(t, "z.tcx", res.Sources[0].Name)
	require.Equal(t, 2, res.Sources[0].Analyzed)
}

func TestRunMalformedLapContinues(t *testing.T) {
	dir := t.TempDir()
	mixed := writeTCX(t, dir, "mixed.tcx", testutil.Document(brokenLap, goodLap("10")))
	next := writeTCX(t, dir, "next.tcx", testutil.Document(goodLap("11")))

	var logs bytes.Buffer
	res, err := Run(Options{Paths: []string{mixed, next}, Logger: log.New(&logs, "", 0)})
	require.NoError(t, err)

	// Rejected laps still take an ordinal.
	require.Equal(t, []string{"mixed.tcx#1@1", "next.tcx#0@2"}, lapIDs(res.Report))
	require.Equal(t, 1, res.Sources[0].Rejected)
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "mixed.tcx lap 0")
	require.Contains(t, logs.String(), "warning: skipping mixed.tcx lap 0")
}

func TestRunMalformedSourceAborts(t *testing.T) {
	dir := t.TempDir()
	good := writeTCX(t, dir, "good.tcx", testutil.Document(goodLap("10")))
	bad := writeTCX(t, dir, "bad.tcx", "<TrainingCenterDatabase><Activities>")

	_, err := Run(Options{Paths: []string{good, bad}})
	require.ErrorIs(t, err, tcx.ErrMalformedSource)

	_, err = Run(Options{Paths: []string{good, filepath.Join(dir, "missing.tcx")}})
	require.ErrorIs(t, err, tcx.ErrMalformedSource)

	_, err = Run(Options{})
	require.Error(t, err)
}

func TestRunSkipsDegenerateLap(t *testing.T) {
	dir := t.TempDir()
	path := writeTCX(t, dir, "zero.tcx", testutil.Document(zeroHeartRateLap(), goodLap("13")))

	var logs bytes.Buffer
	res, err := Run(Options{Paths: []string{path}, Logger: log.New(&logs, "", 0)})
	require.NoError(t, err)
	require.Equal(t, []string{"zero.tcx#1@1"}, lapIDs(res.Report))
	require.Equal(t, 1, res.Sources[0].Skipped)
	require.Contains(t, logs.String(), lapdrift.ErrDegenerateMetric.Error())
}

func TestRunTreadmillMode(t *testing.T) {
	dir := t.TempDir()
	path := writeTCX(t, dir, "indoor.tcx", testutil.Document(goodLap("10")))

	res, err := Run(Options{Paths: []string{path}, Analysis: lapdrift.Config{TreadmillPace: 12}})
	require.NoError(t, err)
	require.Equal(t, 1, res.Report.Len())
	m := res.Report.Rows[0]
	require.InDelta(t, lapdrift.MetersPerMile/720, m.SpeedMps, 1e-12)
	require.Equal(t, m.SpeedMps, m.First.SpeedMps)
	require.Equal(t, m.SpeedMps, m.Second.SpeedMps)
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(BytesOptions{
		Sources: []Source{
			{Name: "/tmp/upload/morning.tcx", Data: []byte(testutil.Document(goodLap("07"), brokenLap))},
			{Name: "evening.tcx", Data: []byte(testutil.Document(goodLap("19")))},
		},
	})
	require.NoError(t, err)

	for _, name := range []string{LapsCSVName, SamplesParquetName, LapsXLSXName, DriftChartName, NotesName, ManifestName} {
		require.Contains(t, res.Files, name)
		require.NotEmpty(t, res.Files[name], name)
	}

	rows, err := csv.NewReader(bytes.NewReader(res.Files[LapsCSVName])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, report.Header(report.Detailed), rows[0])
	require.Equal(t, []string{"0", "morning.tcx"}, rows[1][:2])
	require.Equal(t, []string{"2", "evening.tcx"}, rows[2][:2])

	var manifest Manifest
	require.NoError(t, json.Unmarshal(res.Files[ManifestName], &manifest))
	_, err = uuid.Parse(manifest.RunID)
	require.NoError(t, err)
	require.Equal(t, ManifestFormatVersion, manifest.FormatVersion)
	require.Equal(t, 3, manifest.LapCount)
	require.Equal(t, 2, manifest.AnalyzedLaps)
	require.Len(t, manifest.Artifacts, 5)
	require.Len(t, manifest.Sources, 2)
	require.Equal(t, 1, manifest.Sources[0].Rejected)
	require.Len(t, manifest.Warnings, 1)

	require.True(t, strings.HasPrefix(string(res.Files[NotesName]), "# Lap notes"))
}

func TestExportWritesBundle(t *testing.T) {
	dir := t.TempDir()
	path := writeTCX(t, dir, "run.tcx", testutil.Document(goodLap("10")))
	res, err := Run(Options{Paths: []string{path}})
	require.NoError(t, err)

	outDir := filepath.Join(dir, "out")
	exported, err := Export(res, lapdrift.Config{}, outDir, false)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(outDir, ManifestName), exported.ManifestPath)
	require.Len(t, exported.Paths, 6)
	for _, p := range exported.Paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.Positive(t, info.Size())
	}

	_, err = Export(res, lapdrift.Config{}, outDir, false)
	require.ErrorContains(t, err, "not empty")

	_, err = Export(res, lapdrift.Config{}, outDir, true)
	require.NoError(t, err)
}
