// Package optimize decides, per input image, the smallest size it can
// be shipped at given the render extents observed across all
// animations.
package optimize

// LoadedImage is one input image the calculator may emit a task for.
// Path is the stable identity that analysis records join against;
// Width and Height are the logical render-reference size.
type LoadedImage struct {
	Path   string
	Name   string
	Width  int
	Height int
	Data   []byte
}

// ImageUsage is one referenced-image record from a single animation:
// the largest extents and scale factors observed across its keyframes,
// plus an optional user override target (a percentage marker whose
// resulting absolute extents are already folded into the max fields
// upstream).
type ImageUsage struct {
	Key             string   `json:"key"`
	MaxRenderWidth  float64  `json:"maxRenderWidth"`
	MaxRenderHeight float64  `json:"maxRenderHeight"`
	MaxScaleX       float64  `json:"maxScaleX,omitempty"`
	MaxScaleY       float64  `json:"maxScaleY,omitempty"`
	OverridePercent *float64 `json:"overridePercent,omitempty"`
}

// AnimationAnalysis groups the usage records of one animation, as
// emitted by the upstream skeleton analyzer.
type AnimationAnalysis struct {
	Animation string       `json:"animation"`
	Images    []ImageUsage `json:"images"`
}

// Task is the calculator's per-image output, consumed read-only by the
// archive generator.
type Task struct {
	FileName        string   `json:"fileName"`
	RelativePath    string   `json:"relativePath"`
	OriginalWidth   int      `json:"originalWidth"`
	OriginalHeight  int      `json:"originalHeight"`
	TargetWidth     int      `json:"targetWidth"`
	TargetHeight    int      `json:"targetHeight"`
	MaxScale        float64  `json:"maxScale"`
	Resize          bool     `json:"resize"`
	OverridePercent *float64 `json:"overridePercent,omitempty"`
	Data            []byte   `json:"-"`
}
