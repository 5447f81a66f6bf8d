package optimize

import (
	"fmt"
	"math"
)

// resizeTolerance is the per-axis shrink (in pixels) below which a
// resize is not worth the recompression.
const resizeTolerance = 2

// requirement is the running per-key maximum folded across all
// animations.
type requirement struct {
	width        float64
	height       float64
	maxScale     float64
	override     *float64
	overrideAnim string
}

// Calculate joins the per-animation analysis records against the
// loaded images and returns one task per referenced image, resize
// tasks first. Images no animation references are excluded. It is pure
// given its inputs and safe to call repeatedly with varying
// bufferPercent.
//
// The returned warnings flag overrides that disagree between
// animations referencing the same image; the last writer still wins.
func Calculate(results []AnimationAnalysis, images []LoadedImage, bufferPercent float64) ([]Task, []string) {
	known := make(map[string]bool, len(images))
	for _, img := range images {
		known[img.Path] = true
	}

	reqs := make(map[string]*requirement, len(images))
	var warnings []string

	for _, res := range results {
		for _, use := range res.Images {
			if !known[use.Key] {
				continue
			}
			req := reqs[use.Key]
			if req == nil {
				req = &requirement{maxScale: 1}
				reqs[use.Key] = req
			}
			req.width = math.Max(req.width, use.MaxRenderWidth)
			req.height = math.Max(req.height, use.MaxRenderHeight)
			scale := math.Max(use.MaxScaleX, use.MaxScaleY)
			if scale <= 0 {
				scale = 1
			}
			req.maxScale = math.Max(req.maxScale, scale)
			if use.OverridePercent != nil {
				if req.override != nil && *req.override != *use.OverridePercent {
					warnings = append(warnings, fmt.Sprintf(
						"optimize: %s: override %g%% from %q replaces %g%% from %q",
						use.Key, *use.OverridePercent, res.Animation, *req.override, req.overrideAnim))
				}
				v := *use.OverridePercent
				req.override = &v
				req.overrideAnim = res.Animation
			}
		}
	}

	var resized, unchanged []Task
	for _, img := range images {
		req, ok := reqs[img.Path]
		if !ok {
			// Dead asset: referenced by no animation.
			continue
		}
		task := Task{
			FileName:        img.Name,
			RelativePath:    img.Path,
			OriginalWidth:   img.Width,
			OriginalHeight:  img.Height,
			MaxScale:        req.maxScale,
			OverridePercent: req.override,
			Data:            img.Data,
		}
		if req.override != nil {
			// Override intent wins, including upscales.
			task.TargetWidth = int(math.Ceil(req.width))
			task.TargetHeight = int(math.Ceil(req.height))
			task.Resize = task.TargetWidth != img.Width || task.TargetHeight != img.Height
		} else {
			factor := 1 + bufferPercent/100
			tw := int(math.Ceil(math.Ceil(req.width) * factor))
			th := int(math.Ceil(math.Ceil(req.height) * factor))
			if tw > img.Width {
				tw = img.Width
			}
			if th > img.Height {
				th = img.Height
			}
			task.TargetWidth = tw
			task.TargetHeight = th
			task.Resize = img.Width-tw > resizeTolerance || img.Height-th > resizeTolerance
		}
		if task.Resize {
			resized = append(resized, task)
		} else {
			unchanged = append(unchanged, task)
		}
	}

	return append(resized, unchanged...), warnings
}
