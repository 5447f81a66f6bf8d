// Package resample decodes an image, redraws it at a target size and
// re-encodes it as lossless WebP. It holds no shared state and is safe
// to call from many goroutines.
package resample

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Resample decodes src, scales it onto a cleared targetW×targetH
// surface and encodes the result. Corrupt input yields an error, never
// a panic; callers are expected to fall back to the original bytes.
func Resample(src []byte, targetW, targetH int) ([]byte, error) {
	if targetW < 1 || targetH < 1 {
		return nil, fmt.Errorf("resample: invalid target %dx%d", targetW, targetH)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("resample: decode: %w", err)
	}

	return Encode(Scale(img, targetW, targetH))
}

// Scale draws src into a fully transparent targetW×targetH raster with
// a premultiplied-alpha CatmullRom blit. Premultiplying before the
// filter prevents dark halo artifacts at transparent edges.
func Scale(src image.Image, targetW, targetH int) *image.NRGBA {
	n := ToNRGBA(src)
	b := n.Bounds()

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := n.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(n.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(n.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(n.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(n.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = n.Pix[si+3]
		}
	}

	// NewRGBA zeroes the buffer: every pixel the blit does not cover
	// stays transparent, not undefined.
	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	// Unpremultiply.
	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < targetH; y++ {
		for x := 0; x < targetW; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}

	return result
}

// Encode writes img in the fixed output format, lossless WebP.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("resample: webp encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ToNRGBA converts any image to NRGBA format.
func ToNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
