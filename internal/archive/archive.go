// Package archive packages optimization tasks into a single zip,
// resampling the entries flagged for resize.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/resample"
)

// RootDir is the single top-level folder every archive entry lives
// under.
const RootDir = "optimized"

// ProgressFunc receives (completed, total) once per processed task.
type ProgressFunc func(completed, total int)

// Generate processes tasks strictly in order and returns the zip
// bytes. Tasks run one at a time so only one decoded raster is alive
// at once. A failed resample falls back to the original bytes — an
// asset is never dropped for one bad image; only zip-level failures
// abort.
func Generate(tasks []optimize.Task, onProgress ProgressFunc) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	total := len(tasks)

	for i, task := range tasks {
		data := task.Data
		resized := false
		if task.Resize {
			out, err := resample.Resample(task.Data, task.TargetWidth, task.TargetHeight)
			if err == nil {
				data = out
				resized = true
			}
		}

		entry := EntryName(task, resized)
		w, err := zw.Create(entry)
		if err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", entry, err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("archive: write %s: %w", entry, err)
		}

		if onProgress != nil {
			onProgress(i+1, total)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: close: %w", err)
	}
	return buf.Bytes(), nil
}

// EntryName returns the archive path for a task. Path separators in
// the logical name become nested folders under the root; re-encoded
// entries are renamed to the output format's extension.
func EntryName(task optimize.Task, resized bool) string {
	name := strings.ReplaceAll(task.RelativePath, "\\", "/")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = task.FileName
	}
	name = NormalizeName(name)
	if resized {
		name = name[:len(name)-len(path.Ext(name))] + ".webp"
	}
	return path.Join(RootDir, name)
}

// NormalizeName guarantees the name carries a recognized image
// extension.
func NormalizeName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".tga":
		return name
	}
	return name + ".png"
}
