//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	lapdrift "github.com/lucasjlepore/lap-drift"
	"github.com/lucasjlepore/lap-drift/pipeline"
	"github.com/lucasjlepore/lap-drift/report"
)

func main() {
	js.Global().Set("analyzeTcx", js.FuncOf(analyzeTcx))
	select {}
}

// analyzeTcx(files: Array<{name: string, bytes: Uint8Array}>, options: {treadmill_pace?: number})
func analyzeTcx(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return failure("expected arguments: files(Array<{name, bytes}>), options(object)")
	}
	filesArg := args[0]
	if filesArg.IsUndefined() || filesArg.IsNull() || filesArg.Get("length").Int() == 0 {
		return failure("at least one tcx file is required")
	}
	optsArg := js.Undefined()
	if len(args) > 1 {
		optsArg = args[1]
	}

	sources := make([]pipeline.Source, 0, filesArg.Get("length").Int())
	for i := 0; i < filesArg.Get("length").Int(); i++ {
		item := filesArg.Index(i)
		data := item.Get("bytes")
		if data.IsUndefined() || data.IsNull() || data.Get("length").Int() == 0 {
			return failure(fmt.Sprintf("file %d has no bytes", i))
		}
		buf := make([]byte, data.Get("length").Int())
		if n := js.CopyBytesToGo(buf, data); n == 0 {
			return failure(fmt.Sprintf("failed to read bytes of file %d from JS input", i))
		}
		sources = append(sources, pipeline.Source{
			Name: getString(item, "name", fmt.Sprintf("input_%d.tcx", i)),
			Data: buf,
		})
	}

	// No timezone polygons in the browser build; times stay in UTC.
	result, err := pipeline.RunBytes(pipeline.BytesOptions{
		Sources:  sources,
		Analysis: lapdrift.Config{TreadmillPace: getFloat(optsArg, "treadmill_pace")},
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	var summary bytes.Buffer
	if err := result.Report.WriteCSV(&summary, report.Summary, true); err != nil {
		return failure(fmt.Sprintf("write summary: %v", err))
	}

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":          true,
		"zip":         payload,
		"summary_csv": summary.String(),
		"warnings":    stringsToAny(result.Warnings),
		"files":       stringsToAny(fileNames),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
