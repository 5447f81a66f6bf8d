// Package bundle loads a skeletal-animation asset bundle from disk:
// the atlas descriptor, the analysis records the skeleton analyzer
// emitted, and the texture images.
package bundle

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/atlas"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/resample"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/unpack"
)

// Bundle is one fully loaded asset bundle ready for optimization.
type Bundle struct {
	Dir      string
	Regions  map[string]atlas.Region
	Analyses []optimize.AnimationAnalysis
	Entries  []unpack.Entry
}

// Images returns the loaded images in input order.
func (b *Bundle) Images() []optimize.LoadedImage {
	return unpack.Images(b.Entries)
}

// Load reads a bundle directory. analysisFile names the analyzer's
// JSON output. With unpackSprites set, the atlas regions are cut out
// of their pages and become the loaded images; otherwise every image
// file in the directory is loaded raw.
func Load(dir, analysisFile string, unpackSprites bool) (*Bundle, error) {
	analyses, err := optimize.ParseAnalysis(analysisFile)
	if err != nil {
		return nil, err
	}

	b := &Bundle{Dir: dir, Analyses: analyses}

	atlasPath, err := findAtlas(dir)
	if err == nil {
		raw, err := os.ReadFile(atlasPath)
		if err != nil {
			return nil, fmt.Errorf("bundle: read %s: %w", atlasPath, err)
		}
		b.Regions = atlas.Parse(string(raw))
	} else if unpackSprites {
		return nil, err
	}

	if unpackSprites {
		pages, err := loadPages(b.Regions, BuildIndex(dir))
		if err != nil {
			return nil, err
		}
		entries, err := unpack.Sprites(b.Regions, pages)
		if err != nil {
			return nil, err
		}
		b.Entries = entries
		return b, nil
	}

	entries, err := loadFiles(dir)
	if err != nil {
		return nil, err
	}
	b.Entries = entries
	return b, nil
}

// findAtlas returns the first .atlas file in dir, sorted by name.
func findAtlas(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.atlas"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("bundle: no .atlas file in %s", dir)
	}
	sort.Strings(matches)
	return matches[0], nil
}

// loadPages decodes every page image the regions reference.
func loadPages(regions map[string]atlas.Region, idx *Index) (map[string]*image.NRGBA, error) {
	pages := make(map[string]*image.NRGBA)
	for _, r := range regions {
		if _, done := pages[r.Page]; done {
			continue
		}
		path, ok := idx.Resolve(r.Page)
		if !ok {
			continue
		}
		img, err := decodeFile(path)
		if err != nil {
			return nil, err
		}
		pages[r.Page] = img
	}
	return pages, nil
}

// loadFiles reads every image file under dir as a raw LoadedImage,
// keyed by its slash-separated path relative to dir.
func loadFiles(dir string) ([]unpack.Entry, error) {
	var entries []unpack.Entry
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if _, ok := imageExts[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("bundle: read %s: %w", path, err)
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			// Undecodable image files are left out of the run rather
			// than failing it.
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		entries = append(entries, unpack.File(optimize.LoadedImage{
			Path:   filepath.ToSlash(rel),
			Name:   filepath.Base(path),
			Width:  cfg.Width,
			Height: cfg.Height,
			Data:   data,
		}))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func decodeFile(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundle: read %s: %w", path, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("bundle: decode %s: %w", path, err)
	}
	return resample.ToNRGBA(img), nil
}
