package bundle

import (
	"os"
	"path/filepath"
	"strings"
)

// imageExts are the decodable input formats, in priority order for
// stem collisions: lossless formats win over lossy ones when two files
// share a stem.
var imageExts = map[string]int{
	".png":  0,
	".webp": 1,
	".tga":  2,
	".jpg":  3,
	".jpeg": 4,
}

// Index maps lowercase image stems to filesystem paths.
type Index struct {
	entries map[string]string
}

// BuildIndex scans root and its subdirectories for decodable images.
func BuildIndex(root string) *Index {
	idx := &Index{entries: make(map[string]string)}

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		prio, ok := imageExts[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		if existing, exists := idx.entries[stem]; exists {
			if prio >= imageExts[strings.ToLower(filepath.Ext(existing))] {
				return nil
			}
		}
		idx.entries[stem] = path
		return nil
	})

	return idx
}

// Resolve returns the filesystem path for an image name, or ("",
// false). Path prefixes and extension are ignored so atlas page names
// match however the bundle laid out its files.
func (idx *Index) Resolve(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(name)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
