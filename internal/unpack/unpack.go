// Package unpack cuts individual sprites out of decoded atlas pages
// and restores their pre-trim canvases.
package unpack

import (
	"fmt"
	"image"
	"path"
	"sort"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/atlas"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/resample"
)

// Kind distinguishes the two ways an input image can originate.
type Kind int

const (
	// KindFile is a raw image file shipped in the bundle.
	KindFile Kind = iota
	// KindSprite is a region cut out of an atlas page.
	KindSprite
)

// Entry ties a loaded image to its origin.
type Entry struct {
	Kind   Kind
	Image  optimize.LoadedImage
	Region *atlas.Region
}

// File wraps a raw bundle image in an Entry.
func File(img optimize.LoadedImage) Entry {
	return Entry{Kind: KindFile, Image: img}
}

// Sprites extracts every region from its decoded page, re-encodes the
// sprites in the output format and returns them in region-name order.
// Regions whose page image is missing are skipped.
func Sprites(regions map[string]atlas.Region, pages map[string]*image.NRGBA) ([]Entry, error) {
	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		region := regions[name]
		page, ok := pages[region.Page]
		if !ok {
			continue
		}

		sprite := Extract(region, page)
		data, err := resample.Encode(sprite)
		if err != nil {
			return nil, fmt.Errorf("unpack: encode %s: %w", name, err)
		}

		b := sprite.Bounds()
		rel := name
		if path.Ext(rel) == "" {
			rel += ".webp"
		}
		entries = append(entries, Entry{
			Kind: KindSprite,
			Image: optimize.LoadedImage{
				Path:   rel,
				Name:   path.Base(rel),
				Width:  b.Dx(),
				Height: b.Dy(),
				Data:   data,
			},
			Region: &region,
		})
	}
	return entries, nil
}

// Extract copies one region's pixels onto its pre-trim canvas. A
// rotated region was packed 90° clockwise; the copy rotates it back.
// The trim offset's Y component is measured from the bottom edge of
// the canvas.
func Extract(r atlas.Region, page *image.NRGBA) *image.NRGBA {
	w, h := r.Width, r.Height
	ow, oh := r.OriginalWidth, r.OriginalHeight
	if ow < w {
		ow = w
	}
	if oh < h {
		oh = h
	}

	dst := image.NewNRGBA(image.Rect(0, 0, ow, oh))
	dx, dy := r.OffsetX, oh-h-r.OffsetY

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if r.Rotated {
				// sprite (x,y) sits at page (X+h-1-y, Y+x)
				dst.SetNRGBA(dx+x, dy+y, page.NRGBAAt(r.X+h-1-y, r.Y+x))
			} else {
				dst.SetNRGBA(dx+x, dy+y, page.NRGBAAt(r.X+x, r.Y+y))
			}
		}
	}
	return dst
}

// Images strips the origin tags, keeping calculator input order.
func Images(entries []Entry) []optimize.LoadedImage {
	images := make([]optimize.LoadedImage, len(entries))
	for i, e := range entries {
		images[i] = e.Image
	}
	return images
}
