package archive

import (
	"encoding/json"
	"os"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
)

// ManifestEntry summarizes one processed task.
type ManifestEntry struct {
	Entry          string `json:"entry"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	TargetWidth    int    `json:"target_width"`
	TargetHeight   int    `json:"target_height"`
	Resized        bool   `json:"resized"`
}

// WriteManifest writes a JSON summary of the task list next to the
// archive.
func WriteManifest(path string, tasks []optimize.Task) error {
	entries := make([]ManifestEntry, len(tasks))
	for i, task := range tasks {
		entries[i] = ManifestEntry{
			Entry:          EntryName(task, task.Resize),
			OriginalWidth:  task.OriginalWidth,
			OriginalHeight: task.OriginalHeight,
			TargetWidth:    task.TargetWidth,
			TargetHeight:   task.TargetHeight,
			Resized:        task.Resize,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
