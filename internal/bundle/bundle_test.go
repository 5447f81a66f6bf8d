package bundle

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 20), uint8(y * 20), 100, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setupBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "page.png"), 8, 8)
	write(t, filepath.Join(dir, "skeleton.atlas"),
		"page.png\n"+
			"size: 8,8\n"+
			"hero\n"+
			"  xy: 0, 0\n"+
			"  size: 4, 4\n"+
			"sword\n"+
			"  xy: 4, 0\n"+
			"  size: 2, 6\n")
	write(t, filepath.Join(dir, "analysis.json"),
		`[{"animation":"walk","images":[{"key":"hero.webp","maxRenderWidth":2,"maxRenderHeight":2}]}]`)
	return dir
}

func TestLoad_SpriteMode(t *testing.T) {
	dir := setupBundle(t)

	b, err := Load(dir, filepath.Join(dir, "analysis.json"), true)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(b.Regions))
	}
	images := b.Images()
	if len(images) != 2 {
		t.Fatalf("expected 2 sprites, got %d", len(images))
	}
	if images[0].Path != "hero.webp" || images[0].Width != 4 || images[0].Height != 4 {
		t.Fatalf("unexpected first sprite: %+v", images[0])
	}
	if len(b.Analyses) != 1 || b.Analyses[0].Animation != "walk" {
		t.Fatalf("analysis not loaded: %+v", b.Analyses)
	}
}

func TestLoad_RawMode(t *testing.T) {
	dir := setupBundle(t)

	b, err := Load(dir, filepath.Join(dir, "analysis.json"), false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	images := b.Images()
	if len(images) != 1 {
		t.Fatalf("expected 1 raw image, got %+v", images)
	}
	img := images[0]
	if img.Path != "page.png" || img.Width != 8 || img.Height != 8 {
		t.Fatalf("unexpected raw image: %+v", img)
	}
	raw, _ := os.ReadFile(filepath.Join(dir, "page.png"))
	if !bytes.Equal(img.Data, raw) {
		t.Fatal("raw image bytes differ from file contents")
	}
}

func TestLoad_MissingAnalysis(t *testing.T) {
	dir := setupBundle(t)
	if _, err := Load(dir, filepath.Join(dir, "nope.json"), false); err == nil {
		t.Fatal("expected error for missing analysis file")
	}
}

func TestLoad_NoAtlasSpriteMode(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "analysis.json"), `[]`)
	if _, err := Load(dir, filepath.Join(dir, "analysis.json"), true); err == nil {
		t.Fatal("sprite mode without an atlas must fail")
	}
}

func TestBuildIndex_Priority(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tex.png"), 2, 2)
	write(t, filepath.Join(dir, "tex.jpg"), "placeholder")

	idx := BuildIndex(dir)
	if idx.Len() != 1 {
		t.Fatalf("expected 1 stem, got %d", idx.Len())
	}
	path, ok := idx.Resolve("subdir\\TEX.png")
	if !ok {
		t.Fatal("stem lookup failed")
	}
	if filepath.Ext(path) != ".png" {
		t.Fatalf("png should win over jpg, got %s", path)
	}
}
